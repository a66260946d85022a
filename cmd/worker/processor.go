package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/bakeflow/pos-checkout/internal/aws"
	"github.com/bakeflow/pos-checkout/internal/checkout"
	"github.com/bakeflow/pos-checkout/internal/receipt"
	"github.com/bakeflow/pos-checkout/internal/sales"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()

// Processor handles SQS messages and performs post-sale work: the sale
// lifecycle transition, the printable receipt and the operational metrics.
type Processor struct {
	salesStore *sales.Store
	renderer   *receipt.Renderer
	metrics    *aws.Metrics
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, salesTable, shopName string) *Processor {
	return &Processor{
		salesStore: sales.NewStore(clients.DynamoDB, salesTable),
		renderer:   receipt.NewRenderer(shopName),
		metrics:    aws.NewMetrics(clients.CloudWatch),
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			logger.Error().Err(err).Msg("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg WorkerMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	logger.Info().
		Str("sale", msg.SaleID).
		Str("correlation", msg.CorrelationID).
		Msg("received sale message")

	sale, err := p.salesStore.Get(ctx, msg.SaleID)
	if err != nil {
		return fmt.Errorf("failed to fetch sale: %w", err)
	}
	if sale == nil {
		// Should never happen, DLQ if it does
		return fmt.Errorf("sale not found: %s", msg.SaleID)
	}

	// Move RECORDED -> RENDERING (idempotent)
	err = p.salesStore.UpdateStatus(ctx, msg.SaleID, sales.StatusRecorded, sales.StatusRendering)
	if err == sales.ErrStatusMismatch {
		// Already processed or competing worker:
		// If already COMPLETED -> treat as success.
		// If already FAILED -> fail permanently.
		// If already RENDERING -> another worker took it, swallow the duplicate.
		s2, err := p.salesStore.Get(ctx, msg.SaleID)
		if err != nil {
			return fmt.Errorf("failed to re-fetch sale after status mismatch: %w", err)
		}
		if s2 == nil {
			return fmt.Errorf("sale vanished after status mismatch: %s", msg.SaleID)
		}
		switch s2.Status {
		case sales.StatusCompleted:
			logger.Info().Str("sale", msg.SaleID).Msg("already completed")
			return nil
		case sales.StatusFailed:
			return fmt.Errorf("sale=%s is already FAILED", msg.SaleID)
		case sales.StatusRendering:
			logger.Info().Str("sale", msg.SaleID).Msg("duplicate rendering event")
			return nil
		default:
			return fmt.Errorf("unexpected status for sale=%s: %s", msg.SaleID, s2.Status)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to update status to RENDERING: %w", err)
	}

	if err := p.salesStore.IncrementAttempts(ctx, msg.SaleID); err != nil {
		logger.Warn().Err(err).Str("sale", msg.SaleID).Msg("attempt counter update failed")
	}

	pdf, err := p.renderer.Render(*sale)
	if err != nil {
		// leave the sale in RENDERING; the retry picks it up as a duplicate
		return fmt.Errorf("receipt render failed for sale=%s: %w", msg.SaleID, err)
	}
	logger.Info().Str("sale", msg.SaleID).Int("bytes", len(pdf)).Msg("receipt rendered")

	// Complete: RENDERING -> COMPLETED
	if err := p.salesStore.UpdateStatus(ctx, msg.SaleID, sales.StatusRendering, sales.StatusCompleted); err != nil {
		return fmt.Errorf("failed to update status to COMPLETED: %w", err)
	}

	// metrics are best effort, the sale is already complete
	if err := p.metrics.RecordSale(ctx, sale.Method, checkout.CentsToAmount(sale.TotalCents)); err != nil {
		logger.Warn().Err(err).Str("sale", msg.SaleID).Msg("metrics publish failed")
	}

	logger.Info().Str("sale", msg.SaleID).Msg("completed")
	return nil
}

package handlers

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bakeflow/pos-checkout/internal/aws"
	"github.com/bakeflow/pos-checkout/internal/gateway"
	"github.com/bakeflow/pos-checkout/internal/session"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

// GatewayAPI is the slice of the external retail API the handlers call.
// Tests substitute fakes.
type GatewayAPI interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginResult, error)
	ListProducts(ctx context.Context, token string, f gateway.ProductFilter) (*gateway.ProductPage, error)
	ListCategories(ctx context.Context, token string) ([]gateway.Category, error)
	GetCustomer(ctx context.Context, token string, id int) (*gateway.Customer, error)
	SubmitSale(ctx context.Context, token string, sale gateway.SaleSubmission) error
	ListExpenses(ctx context.Context, token string, f gateway.ExpenseFilter) (json.RawMessage, error)
	CreateExpense(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error)
	ExpenseSummary(ctx context.Context, token string) (json.RawMessage, error)
	TopSellingProducts(ctx context.Context, token string, count int) (json.RawMessage, error)
	CashierPerformance(ctx context.Context, token string) (json.RawMessage, error)
}

// HandlerConfig groups dependencies for the POS API handlers.
type HandlerConfig struct {
	Sessions         *session.Registry
	Gateway          GatewayAPI
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	SalesTable       string
	IdempotencyTable string
	QueueURL         string
	TTLWindow        time.Duration

	// per-client request budget; zero values disable the limiter
	RateLimit rate.Limit
	RateBurst int
}

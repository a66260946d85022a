package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bakeflow/pos-checkout/internal/aws"
	"github.com/bakeflow/pos-checkout/internal/checkout"
	"github.com/bakeflow/pos-checkout/internal/gateway"
	"github.com/bakeflow/pos-checkout/internal/idempotency"
	"github.com/bakeflow/pos-checkout/internal/permissions"
	"github.com/bakeflow/pos-checkout/internal/sales"
	"github.com/bakeflow/pos-checkout/internal/session"
	"github.com/bakeflow/pos-checkout/internal/validation"
)

// RegisterRoutes wires the whole POS API onto the engine.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	if cfg.RateLimit > 0 {
		r.Use(RateLimiter(cfg.RateLimit, cfg.RateBurst))
	}

	registerAuthRoutes(r, cfg, v)
	registerProxyRoutes(r, cfg)
	registerCheckoutRoutes(r, cfg, v)
}

func registerCheckoutRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	salesStore := sales.NewStore(cfg.DynamoDBClient, cfg.SalesTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)

	g := r.Group("/checkout",
		RequireSession(cfg.Sessions),
		RequirePermission(permissions.ProcessSales),
	)

	// --- cart slots ---

	g.GET("/carts", func(c *gin.Context) {
		s := sessionFrom(c)
		c.JSON(http.StatusOK, cartsView(s))
	})

	g.POST("/carts", func(c *gin.Context) {
		updateCheckout(c, cfg, func(s *session.Session) {
			s.Checkout.AddCart()
		})
	})

	g.POST("/carts/:index/activate", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cart_index"})
			return
		}
		updateCheckout(c, cfg, func(s *session.Session) {
			s.Checkout.SwitchCart(index)
		})
	})

	g.DELETE("/carts/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cart_index"})
			return
		}
		updateCheckout(c, cfg, func(s *session.Session) {
			s.Checkout.DeleteCart(index)
		})
	})

	// --- cart lines ---

	g.POST("/cart/items", func(c *gin.Context) {
		var req validation.AddItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		updateCheckout(c, cfg, func(s *session.Session) {
			s.Checkout.AddProduct(checkout.Product{
				ID:         req.ProductID,
				Name:       req.Name,
				ImageURL:   req.ImageURL,
				PriceCents: checkout.AmountToCents(req.Price),
			})
		})
	})

	g.PATCH("/cart/items/:productId", func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
			return
		}
		var req validation.UpdateQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		updateCheckout(c, cfg, func(s *session.Session) {
			s.Checkout.UpdateQuantity(productID, req.Delta)
		})
	})

	// --- sale context ---

	g.POST("/context", func(c *gin.Context) {
		var req validation.AttachCustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		s := sessionFrom(c)

		cust, err := cfg.Gateway.GetCustomer(c.Request.Context(), s.Token, req.CustomerID)
		if err != nil {
			logger.Error().Err(err).Int("customer", req.CustomerID).Msg("customer lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "customer_lookup_failed"})
			return
		}

		if err := cfg.Sessions.Update(s.ID, func(live *session.Session) {
			live.SaleCtx = checkout.CreditSale(cust.ID)
			live.Discount = cust.DiscountPercentage
		}); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session_gone"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"customer_id":         cust.ID,
			"customer_name":       cust.Name,
			"discount_percentage": cust.DiscountPercentage,
			"current_balance":     cust.CurrentBalance,
		})
	})

	g.DELETE("/context", func(c *gin.Context) {
		updateCheckout(c, cfg, func(s *session.Session) {
			s.SaleCtx = checkout.StandardSale()
			s.Discount = 0
		})
	})

	// --- preview and confirm ---

	g.POST("/preview", func(c *gin.Context) {
		var req validation.TenderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		s := sessionFrom(c)

		totals := checkout.ComputeTotals(s.Checkout.ActiveCart(), s.Discount)
		rec := checkout.Reconcile(totals, tenderFrom(req), s.SaleCtx)

		c.JSON(http.StatusOK, gin.H{
			"totals":         totalsView(totals),
			"reconciliation": reconciliationView(rec),
		})
	})

	g.POST("/confirm", func(c *gin.Context) {
		confirmSale(c, cfg, v, idempStore, salesStore, publisher)
	})
}

// confirmSale reconciles the active cart against the tender and, when the
// payment satisfies the sale context, journals the sale, submits it to the
// external API and enqueues post-sale work. Upstream failure preserves the
// cart so the operator can retry.
func confirmSale(c *gin.Context, cfg HandlerConfig, v *validatorv10.Validate, idempStore *idempotency.Store, salesStore *sales.Store, publisher *aws.Publisher) {
	ctx := c.Request.Context()

	var req validation.TenderRequest
	if err := validation.BindAndValidate(c, &req, v); err != nil {
		return
	}

	idempKey := c.GetHeader("Idempotency-Key")
	if idempKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
		return
	}

	// replay before any precondition: a duplicate of a finished confirm must
	// answer from the record even though the original cleared the cart
	if rec, err := idempStore.Get(ctx, idempKey); err == nil && rec != nil {
		replayRecord(c, rec)
		return
	}

	s := sessionFrom(c)
	cart := s.Checkout.ActiveCart()

	// blocked preconditions are not errors: the confirm action is simply
	// unavailable until the operator resolves them
	if len(cart) == 0 {
		c.JSON(http.StatusConflict, gin.H{"blocked": "empty_cart"})
		return
	}

	totals := checkout.ComputeTotals(cart, s.Discount)
	rec := checkout.Reconcile(totals, tenderFrom(req), s.SaleCtx)
	if !rec.CanConfirm {
		c.JSON(http.StatusConflict, gin.H{
			"blocked":   "insufficient_payment",
			"remaining": checkout.CentsToAmount(rec.RemainingCents),
		})
		return
	}

	saleID := uuid.NewString()
	now := time.Now().UTC()

	idempItem := map[string]interface{}{
		"idempotency_key": idempKey,
		"status":          idempotency.StatusInProgress,
		"created_at":      now.Format(time.RFC3339),
		"updated_at":      now.Format(time.RFC3339),
		"sale_id":         saleID,
	}

	entry := journalEntry(saleID, s, cart, totals, req, rec)

	err := salesStore.CreateWithIdempotencyTransaction(ctx, cfg.IdempotencyTable, idempItem, entry, cfg.TTLWindow)
	if err != nil {
		replayIdempotent(c, idempStore, idempKey, err)
		return
	}

	sub := gateway.SaleSubmission{
		SaleDetails:     saleLines(cart),
		PaymentMethod:   rec.Method,
		AmountPaid:      checkout.CentsToAmount(rec.TotalPaidCents),
		SplitCashAmount: req.CashAmount,
		SplitCardAmount: req.CardAmount,
	}
	if id, ok := s.SaleCtx.CustomerID(); ok {
		sub.CustomerID = &id
	}

	if err := cfg.Gateway.SubmitSale(ctx, s.Token, sub); err != nil {
		// terminal for this attempt: journal FAILED, cart untouched,
		// operator adjusts and retries with a fresh key
		logger.Error().Err(err).Str("sale", saleID).Msg("upstream sale submission failed")
		_ = idempStore.MarkFailed(ctx, idempKey, fmt.Sprintf("submit_failed: %v", err))
		_ = salesStore.UpdateStatus(ctx, saleID, sales.StatusRecorded, sales.StatusFailed)

		var ue *gateway.UpstreamError
		if errors.As(err, &ue) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "sale_rejected", "detail": ue.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "sale_submission_failed"})
		return
	}

	// sale accepted upstream; post-sale work (receipt, metrics) is async
	msgPayload, _ := json.Marshal(saleMessage{SaleID: saleID, IdempotencyKey: idempKey})
	attrs := map[string]string{
		"sale_id":        saleID,
		"correlation_id": c.GetHeader("X-Request-Id"),
	}
	if err := publisher.SendSaleMessage(ctx, string(msgPayload), attrs); err != nil {
		// the sale stands either way; the worker sweep can pick strays up later
		logger.Warn().Err(err).Str("sale", saleID).Msg("post-sale enqueue failed")
	}

	if err := cfg.Sessions.Update(s.ID, func(live *session.Session) {
		live.Checkout.ClearActive()
		live.SaleCtx = checkout.StandardSale()
		live.Discount = 0
	}); err != nil {
		logger.Warn().Err(err).Str("session", s.ID).Msg("post-sale session update failed")
	}

	body := gin.H{
		"sale_id":   saleID,
		"status":    sales.StatusRecorded,
		"method":    rec.Method,
		"change":    checkout.CentsToAmount(rec.ChangeCents),
		"remaining": checkout.CentsToAmount(rec.RemainingCents),
	}
	responseBody, _ := json.Marshal(body)
	_ = idempStore.MarkDone(ctx, idempKey, string(responseBody), http.StatusCreated)

	c.Header("Location", fmt.Sprintf("/sales/%s", saleID))
	c.JSON(http.StatusCreated, body)
}

// replayIdempotent resolves a failed journal transaction by inspecting the
// idempotency record: a finished request replays its stored response, an
// in-flight one reports 202.
func replayIdempotent(c *gin.Context, idempStore *idempotency.Store, key string, cause error) {
	rec, getErr := idempStore.Get(c.Request.Context(), key)
	if getErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": getErr.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction_failed_no_idempotency_record", "detail": cause.Error()})
		return
	}
	replayRecord(c, rec)
}

func replayRecord(c *gin.Context, rec *idempotency.Record) {
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"sale_id": rec.SaleID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "sale_id": rec.SaleID})
	case idempotency.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "sale_id": rec.SaleID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}

// saleMessage is the payload sent from API -> SQS -> worker.
type saleMessage struct {
	SaleID         string `json:"sale_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// --- helpers ---

// updateCheckout applies a session mutation and responds with the fresh
// carts view.
func updateCheckout(c *gin.Context, cfg HandlerConfig, fn func(*session.Session)) {
	s := sessionFrom(c)
	if err := cfg.Sessions.Update(s.ID, fn); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_gone"})
		return
	}
	fresh, err := cfg.Sessions.Get(s.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_gone"})
		return
	}
	c.JSON(http.StatusOK, cartsView(fresh))
}

func tenderFrom(req validation.TenderRequest) checkout.Tender {
	return checkout.Tender{
		CashCents: checkout.AmountToCents(req.CashAmount),
		CardCents: checkout.AmountToCents(req.CardAmount),
	}
}

func saleLines(cart checkout.Cart) []gateway.SaleLine {
	lines := make([]gateway.SaleLine, 0, len(cart))
	for _, ln := range cart {
		lines = append(lines, gateway.SaleLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
	}
	return lines
}

func journalEntry(saleID string, s session.Session, cart checkout.Cart, totals checkout.Totals, req validation.TenderRequest, rec checkout.Reconciliation) sales.Sale {
	entry := sales.Sale{
		SaleID:         saleID,
		SessionID:      s.ID,
		CashierName:    s.FullName,
		Method:         rec.Method,
		SubtotalCents:  totals.SubtotalCents,
		DiscountCents:  totals.DiscountCents,
		TotalCents:     totals.TotalCents,
		CashCents:      checkout.AmountToCents(req.CashAmount),
		CardCents:      checkout.AmountToCents(req.CardAmount),
		ChangeCents:    rec.ChangeCents,
		RemainingCents: rec.RemainingCents,
		Status:         sales.StatusRecorded,
	}
	if id, ok := s.SaleCtx.CustomerID(); ok {
		entry.CustomerID = id
	}
	for _, ln := range cart {
		entry.Lines = append(entry.Lines, sales.Line{
			ProductID:      ln.ProductID,
			Name:           ln.Name,
			Quantity:       ln.Quantity,
			UnitPriceCents: ln.UnitPriceCents,
		})
	}
	return entry
}

func cartsView(s session.Session) gin.H {
	totals := checkout.ComputeTotals(s.Checkout.ActiveCart(), s.Discount)
	view := gin.H{
		"carts":  s.Checkout.Carts,
		"active": s.Checkout.Active,
		"totals": totalsView(totals),
	}
	if id, ok := s.SaleCtx.CustomerID(); ok {
		view["customer_id"] = id
		view["discount_percentage"] = s.Discount
	}
	return view
}

func totalsView(t checkout.Totals) gin.H {
	return gin.H{
		"subtotal": checkout.CentsToAmount(t.SubtotalCents),
		"discount": checkout.CentsToAmount(t.DiscountCents),
		"total":    checkout.CentsToAmount(t.TotalCents),
	}
}

func reconciliationView(r checkout.Reconciliation) gin.H {
	return gin.H{
		"total_paid":  checkout.CentsToAmount(r.TotalPaidCents),
		"change":      checkout.CentsToAmount(r.ChangeCents),
		"remaining":   checkout.CentsToAmount(r.RemainingCents),
		"method":      r.Method,
		"can_confirm": r.CanConfirm,
	}
}

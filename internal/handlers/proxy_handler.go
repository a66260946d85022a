package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bakeflow/pos-checkout/internal/gateway"
	"github.com/bakeflow/pos-checkout/internal/permissions"
)

// registerProxyRoutes exposes slices of the external retail API to the
// terminal: the product catalog and categories for building carts, customer
// records for credit sales, and the back-office expense and dashboard
// passthroughs. Every route rides the caller's upstream token and its own
// permission bit.
func registerProxyRoutes(r *gin.Engine, cfg HandlerConfig) {
	g := r.Group("/", RequireSession(cfg.Sessions))

	g.GET("/products", RequirePermission(permissions.ProcessSales), func(c *gin.Context) {
		s := sessionFrom(c)

		f := gateway.ProductFilter{
			Search:     c.Query("search"),
			PageNumber: intQuery(c, "page", 1),
			PageSize:   intQuery(c, "size", 10),
		}
		if raw := c.Query("category"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_category"})
				return
			}
			f.CategoryID = &id
		}

		page, err := cfg.Gateway.ListProducts(c.Request.Context(), s.Token, f)
		if err != nil {
			logger.Error().Err(err).Msg("product listing failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "catalog_unavailable"})
			return
		}
		c.JSON(http.StatusOK, page)
	})

	g.GET("/customers/:id", RequirePermission(permissions.ManageCustomers), func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
			return
		}
		s := sessionFrom(c)

		cust, err := cfg.Gateway.GetCustomer(c.Request.Context(), s.Token, id)
		if err != nil {
			logger.Error().Err(err).Int("customer", id).Msg("customer lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "customer_lookup_failed"})
			return
		}
		c.JSON(http.StatusOK, cust)
	})

	g.GET("/categories", RequirePermission(permissions.ProcessSales), func(c *gin.Context) {
		s := sessionFrom(c)
		cats, err := cfg.Gateway.ListCategories(c.Request.Context(), s.Token)
		if err != nil {
			logger.Error().Err(err).Msg("category listing failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "categories_unavailable"})
			return
		}
		c.JSON(http.StatusOK, cats)
	})

	g.GET("/expenses", RequirePermission(permissions.ManageExpenses), func(c *gin.Context) {
		s := sessionFrom(c)
		f := gateway.ExpenseFilter{
			Search:     c.Query("search"),
			PageNumber: intQuery(c, "page", 1),
			PageSize:   intQuery(c, "size", 10),
		}
		page, err := cfg.Gateway.ListExpenses(c.Request.Context(), s.Token, f)
		if err != nil {
			logger.Error().Err(err).Msg("expense listing failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "expenses_unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json", page)
	})

	g.POST("/expenses", RequirePermission(permissions.ManageExpenses), func(c *gin.Context) {
		s := sessionFrom(c)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil || !json.Valid(payload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		created, err := cfg.Gateway.CreateExpense(c.Request.Context(), s.Token, payload)
		if err != nil {
			var ue *gateway.UpstreamError
			if errors.As(err, &ue) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "expense_rejected", "detail": ue.Message})
				return
			}
			logger.Error().Err(err).Msg("expense creation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "expenses_unavailable"})
			return
		}
		c.Data(http.StatusCreated, "application/json", created)
	})

	g.GET("/expenses/summary", RequirePermission(permissions.ManageExpenses), func(c *gin.Context) {
		s := sessionFrom(c)
		summary, err := cfg.Gateway.ExpenseSummary(c.Request.Context(), s.Token)
		if err != nil {
			logger.Error().Err(err).Msg("expense summary failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "expenses_unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json", summary)
	})

	g.GET("/dashboard/topselling", RequirePermission(permissions.AccessReports), func(c *gin.Context) {
		s := sessionFrom(c)
		out, err := cfg.Gateway.TopSellingProducts(c.Request.Context(), s.Token, intQuery(c, "count", 4))
		if err != nil {
			logger.Error().Err(err).Msg("top selling fetch failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "dashboard_unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json", out)
	})

	g.GET("/dashboard/cashierperformance", RequirePermission(permissions.AccessReports), func(c *gin.Context) {
		s := sessionFrom(c)
		out, err := cfg.Gateway.CashierPerformance(c.Request.Context(), s.Token)
		if err != nil {
			logger.Error().Err(err).Msg("cashier performance fetch failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "dashboard_unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json", out)
	})

	g.GET("/permissions", func(c *gin.Context) {
		s := sessionFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"granted": s.Permissions,
			"catalog": permissions.Catalog(),
		})
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

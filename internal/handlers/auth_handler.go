package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/bakeflow/pos-checkout/internal/gateway"
	"github.com/bakeflow/pos-checkout/internal/validation"
)

// registerAuthRoutes wires POST /login and POST /logout.
func registerAuthRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	r.POST("/login", func(c *gin.Context) {
		var req validation.LoginRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, err := cfg.Gateway.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
				return
			}
			logger.Error().Err(err).Msg("login upstream failure")
			c.JSON(http.StatusBadGateway, gin.H{"error": "auth_unavailable"})
			return
		}

		s := cfg.Sessions.Create(res.Token, res.FullName, res.Role, res.Permissions)
		logger.Info().Str("session", s.ID).Str("role", s.Role).Msg("session created")

		c.JSON(http.StatusOK, gin.H{
			"session_id":  s.ID,
			"full_name":   s.FullName,
			"role":        s.Role,
			"permissions": s.Permissions.String(),
			"image_url":   res.ImageURL,
		})
	})

	r.POST("/logout", func(c *gin.Context) {
		if id := c.GetHeader("X-Session-Id"); id != "" {
			cfg.Sessions.Clear(id)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

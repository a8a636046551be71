// Package gateway exposes the cart, quote and consent flows over HTTP.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/consent"
	"knife-atelier/internal/quote"
)

const (
	SessionHeader = "X-Session-ID"
	// SessionPrefix keeps web sessions apart from the other channels sharing the cart registry.
	SessionPrefix = "web:"
	sessionKey    = "session"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Gateway struct {
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
	carts    *cart.Sessions
	quotes   *quote.Service
	consents *consent.Store
	now      func() time.Time
}

func NewGateway(addr string, carts *cart.Sessions, quotes *quote.Service, consents *consent.Store, logger *zap.Logger) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// Forwarded headers are ignored until SetTrustedProxies names the proxies.
	_ = router.SetTrustedProxies(nil)
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	g := &Gateway{
		logger:   logger,
		router:   router,
		carts:    carts,
		quotes:   quotes,
		consents: consents,
		now:      time.Now,
	}
	g.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := g.router.Group("/api/v1")
	v1.Use(sessionMiddleware())
	{
		carts := v1.Group("/cart")
		{
			carts.GET("", g.getCart)
			carts.DELETE("", g.clearCart)
			carts.POST("/items", g.addItem)
			carts.PATCH("/items/:id", g.updateQuantity)
			carts.DELETE("/items/:id", g.removeItem)
			carts.POST("/toggle", g.toggleCart)
			carts.POST("/open", g.openCart)
			carts.POST("/close", g.closeCart)
			carts.GET("/summary", g.cartSummary)
			carts.GET("/export", g.exportCart)
		}

		v1.POST("/quote", g.submitQuote)

		v1.GET("/consent", g.getConsent)
		v1.PUT("/consent", g.putConsent)
	}
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until Shutdown is called.
func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SetTrustedProxies lists the reverse proxies whose forwarded client address is believed.
func (g *Gateway) SetTrustedProxies(proxies []string) error {
	return g.router.SetTrustedProxies(proxies)
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) store(c *gin.Context) *cart.Store {
	return g.carts.Get(c.Request.Context(), c.GetString(sessionKey))
}

func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(SessionHeader))
		if session == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + SessionHeader + " header"})
			return
		}
		c.Set(sessionKey, SessionPrefix+session)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

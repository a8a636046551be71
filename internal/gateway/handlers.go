package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/consent"
	"knife-atelier/internal/quote"
	"knife-atelier/internal/report"
	"knife-atelier/internal/storage"
)

func (g *Gateway) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, g.store(c).Snapshot())
}

func (g *Gateway) addItem(c *gin.Context) {
	var req cart.Candidate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return
	}

	store := g.store(c)
	store.AddItem(c.Request.Context(), req)
	c.JSON(http.StatusOK, store.Snapshot())
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (g *Gateway) updateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	store := g.store(c)
	store.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) removeItem(c *gin.Context) {
	store := g.store(c)
	store.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) clearCart(c *gin.Context) {
	store := g.store(c)
	store.Clear(c.Request.Context())
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) toggleCart(c *gin.Context) {
	store := g.store(c)
	store.Toggle(c.Request.Context())
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) openCart(c *gin.Context) {
	store := g.store(c)
	store.Open(c.Request.Context())
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) closeCart(c *gin.Context) {
	store := g.store(c)
	store.Close(c.Request.Context())
	c.JSON(http.StatusOK, store.Snapshot())
}

func (g *Gateway) cartSummary(c *gin.Context) {
	c.String(http.StatusOK, g.store(c).Summary())
}

func (g *Gateway) exportCart(c *gin.Context) {
	now := g.now()
	buf, err := report.CartWorkbook(g.store(c).Snapshot(), now)
	if err != nil {
		g.logger.Error("Failed to export cart",
			zap.String("session", c.GetString(sessionKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export cart"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.FileName(now)+`"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (g *Gateway) submitQuote(c *gin.Context) {
	var form quote.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	origin := quote.Origin{Session: c.GetString(sessionKey), ClientIP: c.ClientIP()}
	banner, err := g.quotes.Submit(c.Request.Context(), origin, form, g.store(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, banner)
	case errors.Is(err, quote.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, banner)
	case errors.Is(err, quote.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, banner)
	default:
		c.JSON(http.StatusBadGateway, banner)
	}
}

func (g *Gateway) getConsent(c *gin.Context) {
	rec, err := g.consents.Get(c.Request.Context(), c.GetString(sessionKey))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no consent recorded"})
		return
	}
	if err != nil {
		g.logger.Error("Failed to read consent", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read consent"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type consentRequest struct {
	Choice string `json:"choice" binding:"required"`
}

func (g *Gateway) putConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := g.consents.Save(c.Request.Context(), c.GetString(sessionKey), req.Choice)
	if err != nil {
		var status int
		if errors.Is(err, consent.ErrInvalidChoice) {
			status = http.StatusBadRequest
		} else {
			g.logger.Error("Failed to save consent", zap.Error(err))
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

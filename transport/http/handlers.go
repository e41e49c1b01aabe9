package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

type walletResponse struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Wallet handles the wallet fetch-or-create request. The response carries
// the current nonce, which the client signs before calling Login.
func (h *AuthHandlers) Wallet(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	wallet, err := h.authService.GetOrCreateWallet(c.Request.Context(), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
		case errors.Is(err, core.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, walletResponse{
		ID:        wallet.ID,
		Address:   wallet.Address,
		Nonce:     wallet.Nonce,
		CreatedAt: wallet.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: wallet.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// Login handles the login request.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, wallet, err := h.authService.Login(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
		case errors.Is(err, core.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not registered"})
		case errors.Is(err, core.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		case errors.Is(err, core.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		}
		return
	}

	// The rotated nonce is never exposed here; the next login round-trips
	// through the wallet endpoint again.
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"wallet": gin.H{
			"id":      wallet.ID,
			"address": wallet.Address,
		},
	})
}

// Me returns information about the authenticated wallet.
func (h *AuthHandlers) Me(c *gin.Context) {
	session, exists := SessionFromContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      session.WalletID,
		"address": session.Address,
	})
}

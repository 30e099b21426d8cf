package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/domain"
	"unitex/internal/service"
)

// ReferralService lo implementa service.ReferralService.
type ReferralService interface {
	MyCode(ctx context.Context, userID int64) (string, error)
	MyReferrals(ctx context.Context, userID int64) ([]domain.ReferredUser, error)
	Validate(ctx context.Context, code string) (*service.Referrer, error)
	Apply(ctx context.Context, userID int64, code string) (int, error)
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

type ReferralHandler struct {
	logger    *zap.Logger
	referrals ReferralService
}

func NewReferralHandler(logger *zap.Logger, referrals ReferralService) *ReferralHandler {
	return &ReferralHandler{logger: logger, referrals: referrals}
}

// MyCode maneja GET /referrals/my-code.
func (h *ReferralHandler) MyCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	code, err := h.referrals.MyCode(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "get referral code", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referralCode": code})
}

func (h *ReferralHandler) MyReferrals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	referred, err := h.referrals.MyReferrals(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list referrals", err)
		return
	}
	c.JSON(http.StatusOK, referred)
}

// Validate maneja GET /referrals/validate/:code. Un codigo desconocido no es un error.
func (h *ReferralHandler) Validate(c *gin.Context) {
	referrer, err := h.referrals.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, h.logger, "validate referral code", err)
		return
	}
	if referrer == nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "referrer": referrer})
}

// Apply maneja POST /referrals/apply.
func (h *ReferralHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "apply referral", err)
		return
	}
	awarded, err := h.referrals.Apply(c.Request.Context(), userID, req.Code)
	if err != nil {
		writeError(c, h.logger, "apply referral", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "xpAwarded": awarded})
}

func (h *ReferralHandler) Leaderboard(c *gin.Context) {
	entries, err := h.referrals.Leaderboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "referral leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

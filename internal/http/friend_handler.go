package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/domain"
)

// FriendshipService lo implementa service.FriendshipService.
type FriendshipService interface {
	Request(ctx context.Context, requesterID int64, addresseeRef string) (domain.Friendship, error)
	Accept(ctx context.Context, requestID string, callerID int64) error
	Reject(ctx context.Context, requestID string, callerID int64) error
	List(ctx context.Context, userID int64) ([]domain.UserSummary, error)
	Pending(ctx context.Context, userID int64) ([]domain.PendingRequest, error)
	Suggestions(ctx context.Context, userID int64) ([]domain.UserSummary, error)
	Status(ctx context.Context, userID int64, otherRef string) (domain.FriendshipView, error)
}

type FriendHandler struct {
	logger  *zap.Logger
	friends FriendshipService
}

func NewFriendHandler(logger *zap.Logger, friends FriendshipService) *FriendHandler {
	return &FriendHandler{logger: logger, friends: friends}
}

// Request maneja POST /friends/request/:ref.
func (h *FriendHandler) Request(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if _, err := h.friends.Request(c.Request.Context(), userID, c.Param("ref")); err != nil {
		writeError(c, h.logger, "friend request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Accept maneja PUT /friends/accept/:id.
func (h *FriendHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.friends.Accept(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, h.logger, "accept friend request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reject maneja PUT /friends/reject/:id.
func (h *FriendHandler) Reject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.friends.Reject(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, h.logger, "reject friend request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FriendHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friends, err := h.friends.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list friends", err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *FriendHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pending, err := h.friends.Pending(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list pending requests", err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *FriendHandler) Suggestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	suggestions, err := h.friends.Suggestions(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list suggestions", err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// Status maneja GET /friends/status/:ref.
func (h *FriendHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.friends.Status(c.Request.Context(), userID, c.Param("ref"))
	if err != nil {
		writeError(c, h.logger, "friendship status", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

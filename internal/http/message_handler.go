package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/domain"
)

// ConversationService lo implementa service.ConversationService.
type ConversationService interface {
	StartOrGet(ctx context.Context, callerID int64, otherRef string) (string, bool, error)
	Send(ctx context.Context, callerID int64, conversationID, content string) (domain.Message, error)
	List(ctx context.Context, callerID int64) ([]domain.Conversation, error)
	Messages(ctx context.Context, callerID int64, conversationID string) ([]domain.Message, error)
}

// MessageHandler mantiene dependencias para conversaciones y mensajes directos.
type MessageHandler struct {
	logger *zap.Logger
	convos ConversationService
}

// NewMessageHandler crea una instancia de MessageHandler.
func NewMessageHandler(logger *zap.Logger, convos ConversationService) *MessageHandler {
	return &MessageHandler{logger: logger, convos: convos}
}

var errMissingUserRef = errors.New("userId is required")

// userRef acepta el id numerico o el handle del otro usuario.
func userRef(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errMissingUserRef
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errMissingUserRef
	}
	return s, nil
}

// Start maneja POST /messages/start: 201 si crea la conversacion, 200 si ya existia.
func (h *MessageHandler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		UserID json.RawMessage `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "start conversation", err)
		return
	}
	ref, err := userRef(req.UserID)
	if err != nil {
		badRequest(c, h.logger, "start conversation", err)
		return
	}

	id, existing, err := h.convos.StartOrGet(c.Request.Context(), userID, ref)
	if err != nil {
		writeError(c, h.logger, "start conversation", err)
		return
	}
	status := http.StatusCreated
	if existing {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"conversationId": id, "existing": existing})
}

// Conversations maneja GET /messages/conversations.
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	convs, err := h.convos.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list conversations", err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

// Messages maneja GET /messages/conversations/:id.
func (h *MessageHandler) Messages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	msgs, err := h.convos.Messages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Send maneja POST /messages/conversations/:id.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "send message", err)
		return
	}
	msg, err := h.convos.Send(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		writeError(c, h.logger, "send message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/domain"
)

// VaultService lo implementa service.VaultService.
type VaultService interface {
	Save(ctx context.Context, userID, postID int64, note *string) (domain.VaultEntry, error)
	Unsave(ctx context.Context, userID, postID int64) error
	IsSaved(ctx context.Context, userID, postID int64) (bool, error)
	UpdateNote(ctx context.Context, userID int64, entryID string, note *string) (domain.VaultEntry, error)
	List(ctx context.Context, userID int64) ([]domain.VaultEntry, error)
}

type VaultHandler struct {
	logger *zap.Logger
	vault  VaultService
}

func NewVaultHandler(logger *zap.Logger, vault VaultService) *VaultHandler {
	return &VaultHandler{logger: logger, vault: vault}
}

var errInvalidPostParam = errors.New("postId must be numeric")

func postIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		return 0, errInvalidPostParam
	}
	return id, nil
}

func (h *VaultHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := h.vault.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list vault", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Save maneja POST /vault/save/:postId. El cuerpo es opcional.
func (h *VaultHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, err := postIDParam(c)
	if err != nil {
		badRequest(c, h.logger, "save to vault", err)
		return
	}
	var req struct {
		Note *string `json:"note"`
	}
	// el cuerpo es opcional; sin cuerpo (o vacio) se guarda sin nota
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, h.logger, "save to vault", err)
			return
		}
	}
	entry, err := h.vault.Save(c.Request.Context(), userID, postID, req.Note)
	if err != nil {
		writeError(c, h.logger, "save to vault", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Unsave maneja DELETE /vault/unsave/:postId.
func (h *VaultHandler) Unsave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, err := postIDParam(c)
	if err != nil {
		badRequest(c, h.logger, "unsave from vault", err)
		return
	}
	if err := h.vault.Unsave(c.Request.Context(), userID, postID); err != nil {
		writeError(c, h.logger, "unsave from vault", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Check maneja GET /vault/check/:postId.
func (h *VaultHandler) Check(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, err := postIDParam(c)
	if err != nil {
		badRequest(c, h.logger, "check vault", err)
		return
	}
	saved, err := h.vault.IsSaved(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, h.logger, "check vault", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// UpdateNote maneja PUT /vault/:id/note.
func (h *VaultHandler) UpdateNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Note *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update vault note", err)
		return
	}
	entry, err := h.vault.UpdateNote(c.Request.Context(), userID, c.Param("id"), req.Note)
	if err != nil {
		writeError(c, h.logger, "update vault note", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

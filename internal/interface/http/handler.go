package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devcore/rag-chat/internal/domain/chat"
	apperrors "github.com/devcore/rag-chat/pkg/errors"
)

// Handler wires the HTTP transport to the chat domain.
type Handler struct {
	chatSvc chat.Service
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc chat.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger.With("component", "http.handler"),
	}
}

// Query runs one chat turn.
func (h *Handler) Query(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.chatSvc.Query(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "query_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "not_found"):
			status = http.StatusNotFound
			code = "unknown_category"
		case apperrors.IsCode(err, "embedding_error"), apperrors.IsCode(err, "retrieval_error"):
			status = http.StatusBadGateway
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClearCache empties the semantic cache of one category.
func (h *Handler) ClearCache(c *gin.Context) {
	category := c.Param("category")
	if err := h.chatSvc.ClearCache(c.Request.Context(), category); err != nil {
		status := http.StatusInternalServerError
		code := "clear_failed"
		if apperrors.IsCode(err, "not_found") {
			status = http.StatusNotFound
			code = "unknown_category"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "category": category})
}

// Categories lists the configured knowledge bases.
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.chatSvc.Categories()})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediclic/vademecum-ai/internal/application/assistant"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/auth"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	svc    assistant.Service
	logger logging.Logger
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(svc assistant.Service, logger logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ChatHandler{svc: svc, logger: logger.Named("chat")}
}

type askRequest struct {
	Query string `json:"query" binding:"required"`
}

// Ask handles POST /chat/ask.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "query is required"))
		return
	}

	userID := c.GetString(auth.ContextUserID)
	ans, err := h.svc.Answer(c.Request.Context(), userID, req.Query)
	if err != nil {
		h.logger.Error("answer failed",
			logging.String("user_id", userID), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

package completion

import (
	"net/http"
	"strings"

	"github.com/ujjwalpathaak/ai-code-editor/internal/completion/api"
	"github.com/ujjwalpathaak/ai-code-editor/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	suggester Suggester
}

func NewHandler(suggester Suggester) *Handler {
	return &Handler{suggester: suggester}
}

type (
	CompletionRequest  = api.CompletionRequest
	CompletionResponse = api.CompletionResponse
)

func (h *Handler) Complete(c *gin.Context) {
	var form CompletionRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	suggestion, err := h.suggester.Suggest(c.Request.Context(), *form.Code)
	if err != nil {
		log.Warn().Err(err).Int("code_len", len(*form.Code)).Msg("completion failed")
		c.Error(errors.New(http.StatusInternalServerError, "AI model request failed", err))
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{Suggestion: strings.TrimSpace(suggestion)})
}

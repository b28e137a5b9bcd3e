package snippet

import (
	"net/http"
	"strconv"

	"github.com/ujjwalpathaak/ai-code-editor/internal/errors"
	"github.com/ujjwalpathaak/ai-code-editor/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SaveRequest carries the buffer to persist. code must be present but may be empty.
type SaveRequest struct {
	Code *string `json:"code" binding:"required"`
	User string  `json:"user" binding:"max=255"`
}

type SaveResponse struct {
	Message string `json:"message"`
	ID      uint64 `json:"id"`
}

func (h *Handler) Save(c *gin.Context) {
	var form SaveRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	snippet, err := h.service.Save(c.Request.Context(), *form.Code, form.User)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, SaveResponse{Message: "Code saved", ID: snippet.ID})
}

// Load answers 200 with a JSON null when the snippet doesn't exist
func (h *Handler) Load(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Snippet not found", err))
		return
	}

	snippet, err := h.service.Load(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if snippet == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, snippet)
}

func (h *Handler) List(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.List(c.Request.Context(), c.Query("user"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

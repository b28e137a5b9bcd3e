package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ujjwalpathaak/ai-code-editor/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSuggester struct {
	mock.Mock
}

func (m *MockSuggester) Suggest(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/ai-completion", handler.Complete)
	return router
}

func postCompletion(router *gin.Engine, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/ai-completion", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestComplete_Success tests a normal suggestion
func TestComplete_Success(t *testing.T) {
	suggester := new(MockSuggester)
	router := setupRouter(NewHandler(suggester))

	suggester.On("Suggest", mock.Anything, "let x = 1;").Return("  console.log(x);\n", nil)

	w := postCompletion(router, gin.H{"code": "let x = 1;"})

	assert.Equal(t, http.StatusOK, w.Code)
	var response CompletionResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "console.log(x);", response.Suggestion)
	suggester.AssertExpectations(t)
}

// TestComplete_Fallback tests that "no suggestion" is still a 200
func TestComplete_Fallback(t *testing.T) {
	suggester := new(MockSuggester)
	router := setupRouter(NewHandler(suggester))

	suggester.On("Suggest", mock.Anything, "").Return(NoSuggestion, nil)

	w := postCompletion(router, gin.H{"code": ""})

	assert.Equal(t, http.StatusOK, w.Code)
	var response CompletionResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, NoSuggestion, response.Suggestion)
}

// TestComplete_UpstreamFailure tests that a failed request answers with an error body
func TestComplete_UpstreamFailure(t *testing.T) {
	suggester := new(MockSuggester)
	router := setupRouter(NewHandler(suggester))

	suggester.On("Suggest", mock.Anything, "code").
		Return("", fmt.Errorf("%w: connection reset", ErrRequestFailed))

	w := postCompletion(router, gin.H{"code": "code"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "AI model request failed", response["error"])
	_, hasSuggestion := response["suggestion"]
	assert.False(t, hasSuggestion)
}

// TestComplete_MissingCode tests a body without code
func TestComplete_MissingCode(t *testing.T) {
	suggester := new(MockSuggester)
	router := setupRouter(NewHandler(suggester))

	w := postCompletion(router, gin.H{"text": "nope"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	suggester.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything)
}

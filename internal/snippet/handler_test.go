package snippet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Save(ctx context.Context, code, user string) (*Snippet, error) {
	args := m.Called(ctx, code, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snippet), args.Error(1)
}

func (m *MockService) Load(ctx context.Context, id uint64) (*Snippet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snippet), args.Error(1)
}

func (m *MockService) List(ctx context.Context, user string, page, pageSize int) (*PaginatedSnippets, error) {
	args := m.Called(ctx, user, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaginatedSnippets), args.Error(1)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/saveCode", handler.Save)
	router.GET("/loadCode/:id", handler.Load)
	router.GET("/snippets", handler.List)
	return router
}

// TestSave_Success tests saving the buffer
func TestSave_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Save", mock.Anything, "print(1)", "alice").
		Return(&Snippet{ID: 7, Code: "print(1)", User: "alice", Version: 1}, nil)

	body, _ := json.Marshal(gin.H{"code": "print(1)", "user": "alice"})
	req := httptest.NewRequest("POST", "/saveCode", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response SaveResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Code saved", response.Message)
	assert.Equal(t, uint64(7), response.ID)
	mockService.AssertExpectations(t)
}

// TestSave_EmptyCode tests that an empty buffer can still be saved
func TestSave_EmptyCode(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Save", mock.Anything, "", "bob").Return(&Snippet{ID: 1, User: "bob", Version: 1}, nil)

	body, _ := json.Marshal(gin.H{"code": "", "user": "bob"})
	req := httptest.NewRequest("POST", "/saveCode", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// TestSave_MissingCode tests saving without a code field
func TestSave_MissingCode(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	body, _ := json.Marshal(gin.H{"user": "alice"})
	req := httptest.NewRequest("POST", "/saveCode", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestSave_PersistenceFailure tests that store errors surface as 500
func TestSave_PersistenceFailure(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Save", mock.Anything, "x", "alice").Return(nil, assert.AnError)

	body, _ := json.Marshal(gin.H{"code": "x", "user": "alice"})
	req := httptest.NewRequest("POST", "/saveCode", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["error"])
}

// TestLoad_Success tests loading a snippet by id
func TestLoad_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Load", mock.Anything, uint64(7)).
		Return(&Snippet{ID: 7, Code: "print(1)", User: "alice", Version: 1, CreatedAt: time.Now()}, nil)

	req := httptest.NewRequest("GET", "/loadCode/7", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response Snippet
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "print(1)", response.Code)
	assert.Equal(t, "alice", response.User)
	assert.Equal(t, 1, response.Version)
	mockService.AssertExpectations(t)
}

// TestLoad_NotFound tests that a missing snippet is an empty result, not an error
func TestLoad_NotFound(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Load", mock.Anything, uint64(99)).Return(nil, nil)

	req := httptest.NewRequest("GET", "/loadCode/99", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

// TestLoad_InvalidID tests loading with a non numeric id
func TestLoad_InvalidID(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	req := httptest.NewRequest("GET", "/loadCode/not-a-number", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestLoad_StoreError tests a failing store on load
func TestLoad_StoreError(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("Load", mock.Anything, uint64(3)).Return(nil, assert.AnError)

	req := httptest.NewRequest("GET", "/loadCode/3", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestList_WithPagination tests listing a user's snippets
func TestList_WithPagination(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	result := &PaginatedSnippets{
		Data: []Snippet{{ID: 2, Code: "b", User: "alice", Version: 1}},
		Meta: SnippetsMeta{CurrentPage: 2, TotalPage: 2, Total: 16, PerPage: 15},
	}
	mockService.On("List", mock.Anything, "alice", 2, 15).Return(result, nil)

	req := httptest.NewRequest("GET", "/snippets?user=alice&page=2&per_page=15", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response PaginatedSnippets
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 1)
	assert.Equal(t, int64(16), response.Meta.Total)
	mockService.AssertExpectations(t)
}

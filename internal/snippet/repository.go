package snippet

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type SnippetRepository interface {
	Create(ctx context.Context, snippet *Snippet) error
	FindByID(ctx context.Context, id uint64) (*Snippet, error)
	ListByUser(ctx context.Context, user string, page, pageSize int) ([]Snippet, SnippetsMeta, error)
}

type SnippetRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new snippet repository
func NewRepository(db *gorm.DB) SnippetRepository {
	return &SnippetRepositoryImpl{db: db}
}

func (r *SnippetRepositoryImpl) Create(ctx context.Context, snippet *Snippet) error {
	snippet.CreatedAt = time.Now().UTC() // Use UTC for consistency
	return r.db.WithContext(ctx).Create(snippet).Error
}

// FindByID returns nil, nil when the snippet doesn't exist
func (r *SnippetRepositoryImpl) FindByID(ctx context.Context, id uint64) (*Snippet, error) {
	var snippet Snippet
	err := r.db.WithContext(ctx).First(&snippet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snippet, nil
}

type SnippetsMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func (r *SnippetRepositoryImpl) ListByUser(ctx context.Context, user string, page, pageSize int) ([]Snippet, SnippetsMeta, error) {
	snippets := []Snippet{}
	var totalRecords int64

	// count and page queries each get their own statement
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&Snippet{})
		if user != "" {
			query = query.Where("user_name = ?", user)
		}
		return query
	}

	// Count total records
	if err := scoped().Count(&totalRecords).Error; err != nil {
		return snippets, SnippetsMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := scoped().Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&snippets).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return snippets, SnippetsMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

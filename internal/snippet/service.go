package snippet

import (
	"context"
	"fmt"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/worker"
	"github.com/ujjwalpathaak/ai-code-editor/redis"

	"github.com/rs/zerolog/log"
)

type Service interface {
	Save(ctx context.Context, code, user string) (*Snippet, error)
	Load(ctx context.Context, id uint64) (*Snippet, error)
	List(ctx context.Context, user string, page, pageSize int) (*PaginatedSnippets, error)
}

type DefaultService struct {
	repository SnippetRepository
	cache      *redis.Cache
	pool       *worker.WorkerPool
	cacheTTL   time.Duration
}

func NewService(
	repository SnippetRepository,
	cache *redis.Cache,
	pool *worker.WorkerPool,
	cacheTTL time.Duration,
) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		pool:       pool,
		cacheTTL:   cacheTTL,
	}
}

func snippetKey(id uint64) string {
	return fmt.Sprintf("snippet:%d", id)
}

// listVersionKey is the version of one user's list, or of the unfiltered list when user is empty
func listVersionKey(user string) string {
	if user == "" {
		return "snippets:version"
	}
	return fmt.Sprintf("user:%s:snippets:version", user)
}

// Save always stores a fresh record with version 1, there is no per-user version history.
func (s *DefaultService) Save(ctx context.Context, code, user string) (*Snippet, error) {
	snippet := &Snippet{
		Code:    code,
		User:    user,
		Version: 1,
	}

	if err := s.repository.Create(ctx, snippet); err != nil {
		return nil, err
	}

	// increase cache key, so any new list fetch will get new version
	s.cache.IncrementVersion(ctx, listVersionKey(""))
	if user != "" {
		s.cache.IncrementVersion(ctx, listVersionKey(user))
	}

	return snippet, nil
}

// Load returns nil, nil when there is no snippet with that id
func (s *DefaultService) Load(ctx context.Context, id uint64) (*Snippet, error) {
	var cached Snippet
	if found, err := s.cache.Get(ctx, snippetKey(id), &cached); err != nil {
		log.Warn().Err(err).Uint64("snippet_id", id).Msg("snippet cache read failed")
	} else if found {
		return &cached, nil
	}

	snippet, err := s.repository.FindByID(ctx, id)
	if err != nil || snippet == nil {
		return nil, err
	}

	s.setCache(snippetKey(id), *snippet)
	return snippet, nil
}

type PaginatedSnippets struct {
	Data []Snippet    `json:"data"`
	Meta SnippetsMeta `json:"meta"`
}

func (s *DefaultService) List(ctx context.Context, user string, page, pageSize int) (*PaginatedSnippets, error) {
	// Get the current data version for this user's snippets
	v := s.cache.GetVersion(ctx, listVersionKey(user))
	cacheKey := fmt.Sprintf("snippets:u:%s:v:%d:p:%d:ps:%d", user, v, page, pageSize)

	var result PaginatedSnippets
	if found, _ := s.cache.Get(ctx, cacheKey, &result); found {
		return &result, nil
	}

	snippets, meta, err := s.repository.ListByUser(ctx, user, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedSnippets{Data: snippets, Meta: meta}

	s.setCache(cacheKey, result)
	return &result, nil
}

// setCache writes in the background; a failed cache write never fails the request.
func (s *DefaultService) setCache(key string, value any) {
	task := func(ctx context.Context) error {
		return s.cache.Set(ctx, key, value, s.cacheTTL)
	}

	if s.pool != nil {
		s.pool.Submit(task)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := task(ctx); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("snippet cache write failed")
		}
	}()
}

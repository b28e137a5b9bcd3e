package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/completion/api"
	"github.com/ujjwalpathaak/ai-code-editor/internal/snippet"
)

// SyncClient talks to the editor server's HTTP routes on behalf of a participant
type SyncClient struct {
	baseURL    string
	httpClient *http.Client
}

type Client interface {
	Complete(ctx context.Context, code string) (string, error)
	SaveSnippet(ctx context.Context, code, user string) (uint64, error)
	LoadSnippet(ctx context.Context, id uint64) (*snippet.Snippet, error)
}

// NewSyncClient builds a client for baseURL. A zero timeout means none.
func NewSyncClient(baseURL string, timeout time.Duration) *SyncClient {
	return &SyncClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete asks the server for the next line after code
func (s *SyncClient) Complete(ctx context.Context, code string) (string, error) {
	var payload api.CompletionResponse
	if err := s.do(ctx, http.MethodPost, "/ai-completion", api.CompletionRequest{Code: &code}, &payload); err != nil {
		return "", fmt.Errorf("ai completion: %w", err)
	}
	return payload.Suggestion, nil
}

// SaveSnippet stores code as a new snippet and returns its id
func (s *SyncClient) SaveSnippet(ctx context.Context, code, user string) (uint64, error) {
	var payload snippet.SaveResponse
	if err := s.do(ctx, http.MethodPost, "/saveCode", snippet.SaveRequest{Code: &code, User: user}, &payload); err != nil {
		return 0, fmt.Errorf("save snippet: %w", err)
	}
	return payload.ID, nil
}

// LoadSnippet returns nil without error when no snippet has that id
func (s *SyncClient) LoadSnippet(ctx context.Context, id uint64) (*snippet.Snippet, error) {
	var payload *snippet.Snippet
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/loadCode/%d", id), nil, &payload); err != nil {
		return nil, fmt.Errorf("load snippet %d: %w", id, err)
	}
	return payload, nil
}

func (s *SyncClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"editor server error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/completion/api"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// NoSuggestion is returned when the assistant answered but produced no text.
// It is a normal result, not an error.
const NoSuggestion = api.NoSuggestion

const instruction = "only suggest the next line in sequence \n "

var (
	// ErrRequestFailed covers transport errors, upstream error statuses,
	// timeouts and throttling. It never means "no suggestion".
	ErrRequestFailed = errors.New("AI model request failed")

	errNotConfigured = errors.New("assistant client not configured")
)

// Generator is the part of the genai client the gateway needs.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Suggester produces a next-line suggestion for a buffer
type Suggester interface {
	Suggest(ctx context.Context, code string) (string, error)
}

type Options struct {
	Model string
	// Rate is the sustained number of upstream calls per second, <= 0 means unlimited
	Rate  float64
	Burst int
	// Timeout bounds a single upstream call, 0 leaves it to the transport
	Timeout time.Duration
}

// Gateway forwards buffers to Gemini. It keeps no state between calls apart
// from the shared rate limiter.
type Gateway struct {
	generator Generator
	model     string
	limiter   *rate.Limiter
	timeout   time.Duration
}

func NewGateway(generator Generator, opts Options) *Gateway {
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Gateway{
		generator: generator,
		model:     opts.Model,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   opts.Timeout,
	}
}

func (g *Gateway) Suggest(ctx context.Context, code string) (string, error) {
	start := time.Now()
	suggestion, err := g.suggest(ctx, code)
	metricCompletionDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metricCompletions.WithLabelValues("failed").Inc()
	case suggestion == NoSuggestion:
		metricCompletions.WithLabelValues("empty").Inc()
	default:
		metricCompletions.WithLabelValues("suggested").Inc()
	}
	return suggestion, err
}

func (g *Gateway) suggest(ctx context.Context, code string) (string, error) {
	if g.generator == nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, errNotConfigured)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: throttled: %w", ErrRequestFailed, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.generator.GenerateContent(ctx, g.model, genai.Text(instruction+code), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	text := firstCandidateText(resp)
	if text == "" {
		log.Debug().Str("model", g.model).Msg("assistant returned no candidates")
		return NoSuggestion, nil
	}
	return text, nil
}

// firstCandidateText digs out candidates[0].content.parts[0].text, "" when any step is missing
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	part := candidate.Content.Parts[0]
	if part == nil {
		return ""
	}
	return part.Text
}

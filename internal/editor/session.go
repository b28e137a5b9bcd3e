package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/completion/api"

	"github.com/rs/zerolog/log"
)

const DefaultQuietPeriod = 2 * time.Second

// Completer asks the assistant for the next line of code
type Completer interface {
	Complete(ctx context.Context, code string) (string, error)
}

// Broadcaster sends the local buffer to the other participants
type Broadcaster interface {
	SendCodeUpdate(code string) error
}

// Surface is the editing widget the session reads the cursor from.
// Its methods are called with the session locked and must not call back into it.
type Surface interface {
	Cursor() Position
	SetCursor(Position)
}

type Options struct {
	QuietPeriod time.Duration
	// OnSuggestion is called with every suggestion that gets displayed
	OnSuggestion func(string)
}

// Session is the editing state of one local participant: the buffer, the
// pending suggestion and the debounce timer that asks for it.
type Session struct {
	mu         sync.Mutex
	buffer     string
	surface    Surface
	suggestion string
	// seq advances on every change of buffer or request; a response is shown only while its seq is current
	seq uint64

	completer    Completer
	broadcaster  Broadcaster
	debouncer    *Debouncer
	onSuggestion func(string)

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSession(completer Completer, broadcaster Broadcaster, opts Options) *Session {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		completer:    completer,
		broadcaster:  broadcaster,
		debouncer:    NewDebouncer(opts.QuietPeriod),
		onSuggestion: opts.OnSuggestion,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Attach marks the editing surface as ready; Accept is a no-op before that
func (s *Session) Attach(surface Surface) {
	s.mu.Lock()
	s.surface = surface
	s.mu.Unlock()
}

func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

func (s *Session) Suggestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestion
}

// Edit handles a local change. The suggestion is cleared right away, the
// new buffer is broadcast and the debounce timer restarts.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	s.buffer = text
	s.suggestion = ""
	s.seq++
	s.mu.Unlock()

	s.broadcast(text)
	s.debouncer.Trigger(s.requestSuggestion)
}

// ApplyRemote replaces the buffer with another participant's update.
// It is neither broadcast nor does it schedule a suggestion.
func (s *Session) ApplyRemote(text string) {
	s.mu.Lock()
	s.buffer = text
	s.suggestion = ""
	s.seq++
	s.mu.Unlock()
}

// Accept inserts the pending suggestion at the cursor and feeds the result
// back through the edit pipeline. It reports whether anything was inserted.
func (s *Session) Accept() bool {
	s.mu.Lock()
	if s.surface == nil || s.suggestion == "" {
		s.mu.Unlock()
		return false
	}

	buffer, cursor := Insert(s.buffer, s.surface.Cursor(), s.suggestion)
	s.buffer = buffer
	s.suggestion = ""
	s.seq++
	s.surface.SetCursor(cursor)
	s.mu.Unlock()

	s.broadcast(buffer)
	s.debouncer.Trigger(s.requestSuggestion)
	return true
}

// Close stops the debounce timer and abandons in-flight requests
func (s *Session) Close() {
	s.debouncer.Stop()
	s.cancel()
}

func (s *Session) broadcast(text string) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.SendCodeUpdate(text); err != nil {
		log.Warn().Err(err).Msg("failed to broadcast code update")
	}
}

// requestSuggestion runs on the debounce timer goroutine
func (s *Session) requestSuggestion() {
	if s.completer == nil {
		return
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	code := s.buffer
	s.suggestion = ""
	s.mu.Unlock()

	suggestion, err := s.completer.Complete(s.ctx, code)
	if err != nil {
		// the slot stays empty, the next edit tries again
		log.Warn().Err(err).Msg("error fetching AI suggestion")
		return
	}

	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" || suggestion == api.NoSuggestion {
		return
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("discarding stale suggestion")
		return
	}
	s.suggestion = suggestion
	notify := s.onSuggestion
	s.mu.Unlock()

	if notify != nil {
		notify(suggestion)
	}
}

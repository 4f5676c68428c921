// Package session turns edited diagram text into a live preview URL and,
// on submission, into a committed State holding the rendered SVG.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corbenferris/figjam-plantuml/internal/debounce"
	"github.com/corbenferris/figjam-plantuml/internal/events"
	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/render"
)

// DefaultDebounce is how long input must be quiet before the preview URL
// is recomputed.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrBusy is returned by Submit while an earlier submission is in flight.
	ErrBusy = errors.New("submission already in progress")

	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("session closed")
)

// State is the unit the host persists for a diagram node. It is only ever
// replaced as a whole.
type State struct {
	Text string `json:"text"`
	URL  string `json:"url"`
	Src  string `json:"src"`
}

// DefaultState is the state of a node that has never been edited.
func DefaultState(server string) State {
	return State{
		Text: plantuml.DefaultSource,
		URL:  plantuml.MustURL(plantuml.DefaultSource, server),
		Src:  plantuml.DefaultSVG,
	}
}

// Options configures a Session.
type Options struct {
	Server   string         // rendering service base URL; empty selects the public server
	Initial  State          // last committed state; zero value selects DefaultState
	Fetcher  render.Fetcher // nil selects a render.Client for Server
	Emitter  events.Emitter // receives PREVIEW, BUSY, ERROR, UPDATE_UML and CANCEL
	Debounce time.Duration  // zero selects DefaultDebounce
	Logger   *slog.Logger
}

// Session is one editing pass over a diagram node. At most one submission
// runs at a time; results that arrive after Close are dropped.
type Session struct {
	server  string
	fetcher render.Fetcher
	emitter events.Emitter
	logger  *slog.Logger
	preview *debounce.Debouncer[string]

	mu         sync.Mutex
	text       string
	previewURL string
	state      State
	busy       bool
	closed     bool
}

// New opens a session seeded with opts.Initial.
func New(opts Options) *Session {
	if opts.Initial == (State{}) {
		opts.Initial = DefaultState(opts.Server)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = render.NewClient(opts.Server, 0)
	}
	if opts.Emitter == nil {
		opts.Emitter = events.EmitterFunc(func(string, any) error { return nil })
	}

	s := &Session{
		server:  opts.Server,
		fetcher: opts.Fetcher,
		emitter: opts.Emitter,
		logger:  opts.Logger,
		text:    opts.Initial.Text,
		state:   opts.Initial,
	}
	s.previewURL = s.computeURL(opts.Initial.Text)
	s.preview = debounce.New(opts.Debounce, s.refreshPreview)
	return s
}

// Text returns the current editing buffer.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// PreviewURL returns the URL computed by the latest preview refresh.
func (s *Session) PreviewURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewURL
}

// State returns the last committed state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Input replaces the editing buffer with text and schedules a preview
// refresh once input has been quiet for the debounce interval.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.text = text
	s.mu.Unlock()

	s.preview.Call(text)
}

// RefreshPreview recomputes the preview URL now, skipping the debounce.
func (s *Session) RefreshPreview() {
	s.preview.Flush()
}

func (s *Session) refreshPreview(text string) {
	url := s.computeURL(text)
	if url == "" {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.previewURL = url
	s.mu.Unlock()

	s.emit(events.Preview, events.PreviewPayload{URL: url})
}

// computeURL never fails the caller: intermediate text while typing must
// not break the session, so encoder faults are only logged.
func (s *Session) computeURL(text string) string {
	url, err := plantuml.URL(text, s.server)
	if err != nil {
		s.logger.Warn("preview encode failed", "error", err, "bytes", len(text))
		return ""
	}
	return url
}

// Submit renders the current text and commits {text, url, src} as the new
// State, emitting UPDATE_UML. Failures emit ERROR, leave the State
// untouched and are returned. A call made while another is in flight
// returns ErrBusy without contacting the rendering service.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	text := s.text
	s.mu.Unlock()

	s.emit(events.Busy, events.BusyPayload{Busy: true})

	next, err := s.render(ctx, text)

	s.mu.Lock()
	s.busy = false
	closed := s.closed
	if err == nil && !closed {
		s.state = next
		s.previewURL = next.URL
	}
	s.mu.Unlock()

	if closed {
		s.logger.Debug("discarding submission result for closed session")
		return ErrClosed
	}

	s.emit(events.Busy, events.BusyPayload{Busy: false})
	if err != nil {
		s.emitError(err)
		return err
	}

	s.logger.Info("diagram committed", "url", next.URL, "svg_bytes", len(next.Src))
	s.emit(events.UpdateUML, next)
	return nil
}

func (s *Session) render(ctx context.Context, text string) (State, error) {
	url, err := plantuml.URL(text, s.server)
	if err != nil {
		return State{}, fmt.Errorf("encoding diagram: %w", err)
	}
	src, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return State{}, err
	}
	return State{Text: text, URL: url, Src: src}, nil
}

// Cancel abandons editing without committing and closes the session.
func (s *Session) Cancel() {
	if s.Closed() {
		return
	}
	s.emit(events.Cancel, nil)
	s.Close()
}

// Close tears the session down. Pending preview refreshes are cancelled and
// an in-flight submission's result will be discarded when it arrives.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.preview.Stop()
}

func (s *Session) emitError(err error) {
	payload := events.ErrorPayload{Message: err.Error()}

	var reqErr *render.RequestFailedError
	var tErr *render.TransportError
	switch {
	case errors.As(err, &reqErr):
		payload.Stack = reqErr.Body
	case errors.As(err, &tErr):
		payload.Stack = tErr.Err.Error()
	}

	s.logger.Warn("diagram submission failed", "error", err)
	s.emit(events.Error, payload)
}

func (s *Session) emit(name string, payload any) {
	if err := s.emitter.Emit(name, payload); err != nil {
		s.logger.Warn("emit failed", "event", name, "error", err)
	}
}

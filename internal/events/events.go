// Package events defines the messages exchanged between a diagram session
// and the surface hosting it. Hosts only see named events with JSON payloads.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Event names. The first four match the names the widget host has always
// used on its message channel.
const (
	ResizeWindow = "RESIZE_WINDOW"
	Cancel       = "CANCEL"
	UpdateUML    = "UPDATE_UML"
	Error        = "ERROR"

	// Preview carries a recomputed live-preview URL to the view.
	Preview = "PREVIEW"
	// Busy reports whether a submission is in flight.
	Busy = "BUSY"

	// Input and Submit flow from the view to the session.
	Input  = "INPUT"
	Submit = "SUBMIT"
)

// Window bounds applied to RESIZE_WINDOW payloads.
const (
	MinWidth  = 120
	MinHeight = 120
	MaxWidth  = 4096
	MaxHeight = 2160
)

// Event is one message on the channel.
type Event struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload accompanies ERROR. Stack carries optional diagnostic detail,
// such as the body returned by the rendering service.
type ErrorPayload struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// PreviewPayload accompanies PREVIEW.
type PreviewPayload struct {
	URL string `json:"url"`
}

// BusyPayload accompanies BUSY.
type BusyPayload struct {
	Busy bool `json:"busy"`
}

// InputPayload accompanies INPUT.
type InputPayload struct {
	Text string `json:"text"`
}

// WindowSize accompanies RESIZE_WINDOW.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Clamp bounds the size to the supported window range.
func (s WindowSize) Clamp() WindowSize {
	return WindowSize{
		Width:  min(max(s.Width, MinWidth), MaxWidth),
		Height: min(max(s.Height, MinHeight), MaxHeight),
	}
}

// New builds an Event, encoding payload as JSON. A nil payload yields an
// event without one.
func New(name string, payload any) (Event, error) {
	ev := Event{Name: name}
	if payload == nil {
		return ev, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", name, err)
	}
	ev.Payload = raw
	return ev, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", e.Name)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s: decoding payload: %w", e.Name, err)
	}
	return nil
}

// Emitter sends named events across the host boundary.
type Emitter interface {
	Emit(name string, payload any) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, payload any) error

func (f EmitterFunc) Emit(name string, payload any) error { return f(name, payload) }

// Handler receives events delivered by a Bus.
type Handler func(Event)

// Bus is an in-process event channel. Handlers run synchronously on the
// emitting goroutine, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
	order    map[string][]int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]map[int]Handler),
		order:    make(map[string][]int),
	}
}

// On subscribes h to events named name and returns a function removing
// the subscription.
func (b *Bus) On(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[int]Handler)
	}
	b.handlers[name][id] = h
	b.order[name] = append(b.order[name], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[name], id)
			ids := b.order[name]
			for i, v := range ids {
				if v == id {
					b.order[name] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit encodes payload and delivers the event to every subscriber of name.
func (b *Bus) Emit(name string, payload any) error {
	ev, err := New(name, payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	var hs []Handler
	for _, id := range b.order[name] {
		if h, ok := b.handlers[name][id]; ok {
			hs = append(hs, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
	return nil
}

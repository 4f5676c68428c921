package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) fn(v string) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestBurstCoalescesToLastValue(t *testing.T) {
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.fn)

	for _, v := range []string{"@", "@s", "@st", "@sta"} {
		d.Call(v)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	// Give a stray second dispatch time to show up.
	time.Sleep(150 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 call, got %d: %v", len(calls), calls)
	}
	if calls[0] != "@sta" {
		t.Errorf("expected last value %q, got %q", "@sta", calls[0])
	}
}

func TestSeparatedCallsFireSeparately(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.fn)

	d.Call("first")
	<-rec.fired
	d.Call("second")
	<-rec.fired

	calls := rec.snapshot()
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("unexpected calls: %v", calls)
	}
}

func TestStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.fn)

	d.Call("never")
	if !d.Pending() {
		t.Fatal("expected a pending dispatch")
	}
	d.Stop()
	d.Call("ignored")

	time.Sleep(100 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 0 {
		t.Errorf("expected no calls after Stop, got %v", calls)
	}
	if d.Pending() {
		t.Error("expected nothing pending after Stop")
	}
}

func TestFlushDispatchesImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.fn)

	d.Call("now")
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != "now" {
		t.Fatalf("expected flushed call, got %v", calls)
	}
	// Nothing left to flush.
	d.Flush()
	if calls := rec.snapshot(); len(calls) != 1 {
		t.Errorf("expected no second call, got %v", calls)
	}
	d.Stop()
}

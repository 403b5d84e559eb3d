package fence

import (
	"sync"
	"testing"
)

// TestPayloadCallFinishOnce tests that racing callFinish calls run the
// finalizer exactly once.
func TestPayloadCallFinishOnce(t *testing.T) {
	fin := &testFinalizer{}
	p := newPayload(fin)

	const goroutines = 64
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(goroutines)
	for range goroutines {
		go func() {
			defer done.Done()
			start.Wait()
			p.callFinish()
		}()
	}
	start.Done()
	done.Wait()

	if got := fin.finished.Load(); got != 1 {
		t.Errorf("Finish ran %d times, want 1", got)
	}
	if !p.finished() {
		t.Error("finished() = false after callFinish")
	}
}

// TestPayloadFinishedObserver tests the non-blocking observer.
func TestPayloadFinishedObserver(t *testing.T) {
	p := newPayload(&testFinalizer{})
	if p.finished() {
		t.Error("finished() = true before callFinish")
	}
	p.callFinish()
	if !p.finished() {
		t.Error("finished() = false after callFinish")
	}
}

// TestPayloadNilFinalizer tests that a nil finalizer means no payload.
func TestPayloadNilFinalizer(t *testing.T) {
	if p := newPayload(nil); p != nil {
		t.Errorf("newPayload(nil) = %v, want nil", p)
	}
}

// TestPayloadDiscard tests that discard claims the payload without
// running Finish.
func TestPayloadDiscard(t *testing.T) {
	fin := &testFinalizer{}
	p := newPayload(fin)

	p.discard()

	if got := fin.finished.Load(); got != 0 {
		t.Errorf("Finish ran %d times after discard, want 0", got)
	}
	if got := fin.discarded.Load(); got != 1 {
		t.Errorf("Discard ran %d times, want 1", got)
	}
	if !p.finished() {
		t.Error("finished() = false after discard")
	}

	// A later completion path must not run the finalizer either.
	p.callFinish()
	if got := fin.finished.Load(); got != 0 {
		t.Errorf("Finish ran %d times after discard+callFinish, want 0", got)
	}
}

// TestPayloadDiscardWithoutDiscarder tests discard on a finalizer that
// does not implement the optional interface.
func TestPayloadDiscardWithoutDiscarder(t *testing.T) {
	ran := false
	p := newPayload(finalizerFunc(func() { ran = true }))

	p.discard()

	if ran {
		t.Error("Finish ran during discard")
	}
	if !p.finished() {
		t.Error("finished() = false after discard")
	}
}

// finalizerFunc adapts a func to Finalizer.
type finalizerFunc func()

func (f finalizerFunc) Finish() { f() }

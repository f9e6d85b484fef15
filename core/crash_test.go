package core

import (
	"bytes"
	"sync"
	"testing"
	"time"
)

type fakeTerminal struct{ finis int }

func (f *fakeTerminal) Fini() { f.finis++ }

// stubCrash captures output and exit codes for the duration of a test
func stubCrash(t *testing.T) (*bytes.Buffer, chan int) {
	t.Helper()
	var buf bytes.Buffer
	codes := make(chan int, 1)

	oldOut, oldExit := crashOutput, crashExit
	crashOutput = &buf
	crashExit = func(code int) { codes <- code }
	t.Cleanup(func() {
		crashOutput, crashExit = oldOut, oldExit
		SetCrashTerminal(nil)
	})
	return &buf, codes
}

func TestHandleCrashNil(t *testing.T) {
	buf, codes := stubCrash(t)
	term := &fakeTerminal{}
	SetCrashTerminal(term)

	HandleCrash(nil)

	if buf.Len() != 0 || len(codes) != 0 || term.finis != 0 {
		t.Fatalf("nil recover must be a no-op: out=%q exits=%d finis=%d", buf.String(), len(codes), term.finis)
	}
}

func TestHandleCrashRestoresTerminal(t *testing.T) {
	buf, codes := stubCrash(t)
	term := &fakeTerminal{}
	SetCrashTerminal(term)

	HandleCrash("boom")

	if term.finis != 1 {
		t.Errorf("Fini calls = %d, want 1", term.finis)
	}
	if code := <-codes; code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("SFX CRASHED: boom")) {
		t.Errorf("missing crash banner: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("Stack Trace:")) {
		t.Errorf("missing stack trace: %q", buf.String())
	}

	// Terminal is released after the first crash
	HandleCrash("again")
	<-codes
	if term.finis != 1 {
		t.Errorf("Fini calls after second crash = %d, want 1", term.finis)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	_, codes := stubCrash(t)

	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("worker")
	})
	wg.Wait()

	select {
	case code := <-codes:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(time.Second):
		t.Fatal("panic in Go was not handled")
	}
}

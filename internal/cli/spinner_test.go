package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func quietSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, message)
	s.w = &buf
	return s, &buf
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, buf := quietSpinner(context.Background(), "Loading roster...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Loading roster...") {
		t.Errorf("spinner output %q lacks the message", out)
	}
	clear := "\r" + strings.Repeat(" ", len("Loading roster...")+4) + "\r"
	if !strings.HasSuffix(out, clear) {
		t.Errorf("spinner output %q should end by clearing the line", out)
	}
	if s.Cancelled() {
		t.Error("a spinner stopped by its caller is not cancelled")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Rendering svg...")

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
	if buf.Len() != 0 {
		t.Errorf("unstarted spinner wrote %q", buf.String())
	}
}

func TestSpinnerFailurePathStopsOnce(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// render and view stop with an error, then return; deferred cleanups
	// may stop again.
	s, _ := quietSpinner(context.Background(), "Loading roster...")
	s.Start()
	s.StopWithError("Could not load roster")
	s.Stop()
	s.StopWithSuccess("ignored")
}

func TestSpinnerCancelledWithCommand(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Launching browser...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after the command was cancelled")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
	s.Stop()
}

func TestSpinnerCancelledByTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s, _ := quietSpinner(ctx, "Capturing http://localhost:8080...")
	s.Start()
	<-ctx.Done()
	s.Stop()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after the deadline passed")
	}
}

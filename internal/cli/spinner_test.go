package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestChartSpinnerDrawsKind(t *testing.T) {
	var out syncBuffer
	s := newChartSpinner(context.Background(), &out, "radial")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if got := out.String(); !strings.Contains(got, "Rendering radial chart...") {
		t.Errorf("spinner output = %q, want the chart kind", got)
	}
	if got := out.String(); !strings.HasSuffix(got, "\r") {
		t.Errorf("Stop() should clear the line, output ends with %q", got[max(0, len(got)-8):])
	}
}

func TestBatchSpinnerStatus(t *testing.T) {
	s := newBatchSpinner(context.Background(), &syncBuffer{}, 3)
	if got := s.status(); got != "Rendering datasets 0/3" {
		t.Errorf("initial status = %q", got)
	}

	var wg sync.WaitGroup
	for _, name := range []string{"a.yaml", "b.toml"} {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.advance(name)
		}()
	}
	wg.Wait()

	got := s.status()
	if !strings.HasPrefix(got, "Rendering datasets 2/3 (") {
		t.Errorf("status after two datasets = %q", got)
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newChartSpinner(ctx, &syncBuffer{}, "hexbin")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after the render context was cancelled")
	}
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var out syncBuffer
	s := newBatchSpinner(context.Background(), &out, 1)
	s.Stop()
	s.Stop()
	if out.String() != "" {
		t.Errorf("unstarted spinner wrote %q", out.String())
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line while geometry is computed and rendered.
// A counted spinner (total > 0) also shows how many datasets have finished
// and which one finished last; advance is safe for concurrent use.
type spinner struct {
	out     io.Writer
	message string
	total   int

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	stop    sync.Once

	mu       sync.Mutex
	started  bool
	finished int
	last     string
	width    int
}

// newChartSpinner creates a spinner for rendering a single chart of kind.
// It stops drawing when ctx is cancelled.
func newChartSpinner(ctx context.Context, out io.Writer, kind string) *spinner {
	return newSpinner(ctx, out, fmt.Sprintf("Rendering %s chart...", kind), 0)
}

// newBatchSpinner creates a counted spinner over total datasets.
func newBatchSpinner(ctx context.Context, out io.Writer, total int) *spinner {
	return newSpinner(ctx, out, "Rendering datasets", total)
}

func newSpinner(ctx context.Context, out io.Writer, message string, total int) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		out:     out,
		message: message,
		total:   total,
		ctx:     sctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// advance records one finished dataset.
func (s *spinner) advance(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished++
	s.last = name
}

// status is the text drawn next to the frame.
func (s *spinner) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return s.message
	}
	text := fmt.Sprintf("%s %d/%d", s.message, s.finished, s.total)
	if s.last != "" {
		text += " (" + s.last + ")"
	}
	return text
}

func (s *spinner) draw(frame string) {
	text := s.status()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
	s.width = max(s.width, len(text)+2)
}

// Stop ends the animation and clears the line. It may be called more than once.
func (s *spinner) Stop() {
	s.cancel()
	s.stop.Do(func() { close(s.done) })

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.stopped
	}
	s.clearLine()
}

// StopWithError stops the spinner and prints msg as an error.
func (s *spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

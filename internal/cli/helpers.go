package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/recoverly/flowedit/internal/config"
	"github.com/recoverly/flowedit/internal/logging"
)

// SignalContext is cancelled on SIGINT or SIGTERM and remembers which signal
// arrived, so commands can tell an interrupt from a normal shutdown.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext starts watching for SIGINT and SIGTERM.
// Notification stops once the context is done, whatever the cause.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			sc.mu.Lock()
			sc.sig = s
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// NewLogger builds the application logger from the log settings.
// Logs go to w (stderr in the binary) so stdout stays free for command output.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level, cfg.Format == "json"), nil
}

func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

var errInterrupted = errors.New("interrupted")

// cancelReader stops handing out input once done is closed. A Read already
// blocked on the terminal returns after the next line, reporting errInterrupted.
type cancelReader struct {
	r    io.Reader
	done <-chan struct{}
}

func newCancelReader(r io.Reader, done <-chan struct{}) io.Reader {
	return &cancelReader{r: r, done: done}
}

func (c *cancelReader) Read(p []byte) (int, error) {
	if c.cancelled() {
		return 0, errInterrupted
	}
	n, err := c.r.Read(p)
	if c.cancelled() {
		return 0, errInterrupted
	}
	return n, err
}

func (c *cancelReader) cancelled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// isInterrupted reports errors that end a REPL quietly.
func isInterrupted(err error) bool {
	return errors.Is(err, errInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

// Package notify implements the Notifier port for terminal output.
package notify

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/term"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Terminal)(nil)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))
	modalStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f59e0b")).
			Padding(0, 1)
)

// acknowledgeLabel is the button text of the blocking notice.
const acknowledgeLabel = "了解 / OK"

// Terminal writes notifications to out. Blocking notifications wait for the
// operator to press Enter on in when in is an interactive terminal.
type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	in        io.Reader
	sanitizer *bluemonday.Policy
}

// NewTerminal creates a Terminal notifier. in may be nil, in which case
// blocking notifications never wait.
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{
		out:       out,
		in:        in,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Notify renders n. Backend-supplied text is stripped of markup first.
func (t *Terminal) Notify(ctx context.Context, n model.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	message := t.clean(n.Message)

	if n.Blocking {
		t.modal(ctx, t.clean(n.Title), message)
		return
	}

	_, _ = fmt.Fprintf(t.out, "%s %s\n", styleFor(n.Severity).Render(label(n)), message)
}

// clean strips markup from backend-supplied text, leaving plain text.
func (t *Terminal) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(t.sanitizer.Sanitize(s)))
}

func (t *Terminal) modal(ctx context.Context, title, message string) {
	var b strings.Builder
	if title != "" {
		b.WriteString(warningStyle.Render(title))
		b.WriteString("\n\n")
	}
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString("[ " + acknowledgeLabel + " ]")

	_, _ = fmt.Fprintln(t.out, modalStyle.Render(b.String()))

	if !isInteractive(t.in) {
		return
	}
	awaitEnter(ctx, t.in)
}

// deadlineReader is implemented by *os.File.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(time.Time) error
}

// awaitEnter blocks until a line is read from in or ctx is done. When ctx ends
// first and in supports read deadlines, the pending read is interrupted and
// the deadline cleared again, so no reader goroutine outlives the call.
// The returned channel is closed once the reader goroutine has exited.
func awaitEnter(ctx context.Context, in io.Reader) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = bufio.NewReader(in).ReadString('\n')
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if d, ok := in.(deadlineReader); ok && d.SetReadDeadline(time.Now()) == nil {
			<-done
			_ = d.SetReadDeadline(time.Time{})
		}
	}
	return done
}

func label(n model.Notification) string {
	if n.Status > 0 {
		return fmt.Sprintf("[%s %d]", n.Severity, n.Status)
	}
	return fmt.Sprintf("[%s]", n.Severity)
}

func styleFor(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityError:
		return errorStyle
	case model.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

// isInteractive reports whether r is a terminal the operator can answer on.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

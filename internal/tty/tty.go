// Package tty provides raw-mode terminal I/O for the host terminal interrupt. It knows
// nothing about the processor or its registers; it exposes a Console with a byte
// reader channel and a styled writer, and package host adapts that to TERM_INTR.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal, in which case raw-mode
// console I/O is unavailable and the caller should fall back to plain stdio.
var ErrNoTTY = errors.New("console: not a TTY")

// Console is a raw-mode terminal, grounded on the same term/x/sys-unix combination used
// for any other ioctl-driven serial console: MakeRaw to disable line buffering and
// echo, then a background reader goroutine that decouples terminal reads from whatever
// rate the virtual machine polls for a key.
type Console struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State

	mu  sync.Mutex
	buf []byte // pending keys, oldest first; capacity enforced by keyBufferSize

	keyCh chan byte
}

// keyBufferSize bounds how many unread keys Console retains; once full, ReadKey returns
// the oldest two in order and further keys block the reader goroutine until consumed.
const keyBufferSize = 2

// NewConsole puts sin into raw mode; Run starts the background reader. Callers must
// call Close to restore the terminal.
func NewConsole(sin, sout *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	c := &Console{
		in:    sin,
		out:   sout,
		fd:    fd,
		state: saved,
		keyCh: make(chan byte, keyBufferSize),
	}

	return c, nil
}

// Run starts the background reader; it returns once ctx is cancelled or the terminal
// read fails.
func (c *Console) Run(ctx context.Context) {
	r := bufio.NewReader(c.in)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := r.ReadByte()
		if err != nil {
			return
		}

		select {
		case c.keyCh <- b:
		case <-ctx.Done():
			return
		}

		c.mu.Lock()
		if len(c.buf) < keyBufferSize {
			c.buf = append(c.buf, b)
		}
		c.mu.Unlock()
	}
}

// ReadKey returns the oldest buffered key and true, or false if none is pending. It
// never blocks -- a program polling TERM_INTR's read-key sub-op expects an immediate
// answer, not a wait for the next keystroke.
func (c *Console) ReadKey() (byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) == 0 {
		return 0, false
	}

	b := c.buf[0]
	c.buf = c.buf[1:]

	// Free this key's slot in keyCh so a blocked reader goroutine can take the next key.
	select {
	case <-c.keyCh:
	default:
	}

	return b, true
}

// Write implements io.Writer against the raw terminal.
func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

// Goto moves the cursor to a 1-based (row, col).
func (c *Console) Goto(row, col int) error {
	_, err := fmt.Fprintf(c.out, "\x1b[%d;%dH", row, col)
	return err
}

// Clear erases the visible screen.
func (c *Console) Clear() error {
	_, err := fmt.Fprint(c.out, "\x1b[2J")
	return err
}

// SetStyle applies an SGR parameter (e.g. 1 for bold, 7 for reverse video).
func (c *Console) SetStyle(sgr int) error {
	_, err := fmt.Fprintf(c.out, "\x1b[%dm", sgr)
	return err
}

// SetCursorShape selects one of the DECSCUSR cursor shapes (1-6).
func (c *Console) SetCursorShape(shape int) error {
	_, err := fmt.Fprintf(c.out, "\x1b[%d q", shape)
	return err
}

// Size returns the terminal's (rows, cols).
func (c *Console) Size() (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(c.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}

	return int(ws.Row), int(ws.Col), nil
}

// Close restores the terminal to its saved state.
func (c *Console) Close() error {
	_ = c.in.SetReadDeadline(time.Now())
	return term.Restore(c.fd, c.state)
}

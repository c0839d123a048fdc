package sshplay

import (
	"io"
	"sync"

	"github.com/charmbracelet/ssh"
	"github.com/gdamore/tcell/v2"
)

const readChunk = 256

// sessionTty lets tcell drive a terminal on the far side of an SSH channel.
// Reads come from a pump goroutine so Drain can release a blocked Read, which
// tcell relies on when the screen is finalised.
type sessionTty struct {
	rw   io.ReadWriter
	done <-chan struct{}
	in   chan []byte

	mu       sync.Mutex
	size     tcell.WindowSize
	onResize func()
	drained  chan struct{}
	started  bool

	pending []byte
}

// newSessionTty wraps rw. done ends the read pump; resizes may be nil.
func newSessionTty(rw io.ReadWriter, done <-chan struct{}, win ssh.Window, resizes <-chan ssh.Window) *sessionTty {
	t := &sessionTty{
		rw:      rw,
		done:    done,
		in:      make(chan []byte, 8),
		size:    windowSize(win),
		drained: make(chan struct{}),
	}
	if resizes != nil {
		go t.watchResizes(resizes)
	}
	return t
}

func windowSize(win ssh.Window) tcell.WindowSize {
	return tcell.WindowSize{
		Width:       win.Width,
		Height:      win.Height,
		PixelWidth:  win.WidthPixels,
		PixelHeight: win.HeightPixels,
	}
}

func (t *sessionTty) watchResizes(resizes <-chan ssh.Window) {
	for win := range resizes {
		t.mu.Lock()
		t.size = windowSize(win)
		cb := t.onResize
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}

func (t *sessionTty) pump() {
	defer close(t.in)
	for {
		buf := make([]byte, readChunk)
		n, err := t.rw.Read(buf)
		if n > 0 {
			select {
			case t.in <- buf[:n]:
			case <-t.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (t *sessionTty) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.drained:
		t.drained = make(chan struct{})
	default:
	}
	if !t.started {
		t.started = true
		go t.pump()
	}
	return nil
}

// Read returns (0, nil) once drained so tcell's input loop can notice it is
// being stopped.
func (t *sessionTty) Read(b []byte) (int, error) {
	if len(t.pending) > 0 {
		n := copy(b, t.pending)
		t.pending = t.pending[n:]
		return n, nil
	}

	t.mu.Lock()
	drained := t.drained
	t.mu.Unlock()

	select {
	case data, ok := <-t.in:
		if !ok {
			return 0, io.EOF
		}
		n := copy(b, data)
		t.pending = data[n:]
		return n, nil
	case <-drained:
		return 0, nil
	}
}

func (t *sessionTty) Write(b []byte) (int, error) {
	return t.rw.Write(b)
}

// Close leaves the channel open; it belongs to the SSH session.
func (t *sessionTty) Close() error {
	return nil
}

func (t *sessionTty) Drain() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.drained:
	default:
		close(t.drained)
	}
	return nil
}

func (t *sessionTty) Stop() error {
	return nil
}

func (t *sessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onResize = cb
	t.mu.Unlock()
}

func (t *sessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size, nil
}

var _ tcell.Tty = (*sessionTty)(nil)

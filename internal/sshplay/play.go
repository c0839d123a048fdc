// Package sshplay serves a game session to each SSH connection, drawn with
// the terminal UI over the session's channel.
package sshplay

import (
	"context"
	"fmt"
	"io"
	"log"
	"taprush/internal/sessions"
	"taprush/internal/termui"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/gdamore/tcell/v2"
)

const fallbackTerm = "xterm-256color"

// Middleware gives every SSH session with a PTY its own game.
func Middleware(store *sessions.Store) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			pty, winCh, ok := s.Pty()
			if !ok {
				fmt.Fprintln(s, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			log.Printf("[SSH] New game session: user=%s, terminal=%s, size=%dx%d\n",
				s.User(), pty.Term, pty.Window.Width, pty.Window.Height)

			if err := Play(s.Context(), store, s, s.User(), pty, winCh); err != nil {
				log.Printf("[SSH] Game error for %s: %v\n", s.User(), err)
			}

			log.Printf("[SSH] Session ended: user=%s\n", s.User())
			next(s)
		}
	}
}

// Play runs one game over rw until the player quits, ctx ends or the session
// is swept. The game session is removed when Play returns.
func Play(ctx context.Context, store *sessions.Store, rw io.ReadWriter, player string, pty ssh.Pty, resizes <-chan ssh.Window) error {
	sess, err := store.Create(player)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer store.Delete(sess.Code)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tty := newSessionTty(rw, ctx.Done(), pty.Window, resizes)
	screen, err := newScreen(tty, pty.Term)
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising screen: %w", err)
	}
	defer screen.Fini()

	go func() {
		select {
		case <-sess.Closed():
			cancel()
		case <-ctx.Done():
		}
	}()

	ui := termui.New(screen, sess)
	ui.SetTitle("session " + sess.Code)
	ui.SetBadges(sess.Badges)
	ui.Run(ctx)
	return nil
}

func newScreen(tty tcell.Tty, term string) (tcell.Screen, error) {
	ti, err := tcell.LookupTerminfo(term)
	if err != nil {
		log.Printf("[SSH] Unknown terminal %q, using %s\n", term, fallbackTerm)
		ti, err = tcell.LookupTerminfo(fallbackTerm)
		if err != nil {
			return nil, fmt.Errorf("looking up terminfo: %w", err)
		}
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(tty, ti)
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	return screen, nil
}

// Package port defines the interaction capabilities the chart core asks
// of its host: a text prompt and a yes/no confirmation.
package port

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks for a line of text. ok is false when the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, message string) (value string, ok bool, err error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Port combines both capabilities.
type Port interface {
	Prompter
	Confirmer
}

// Scripted answers prompts from a fixed queue and cancels once the queue is
// empty. Confirmations return a fixed answer.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	confirm bool
	asked   []string
}

// NewScripted returns a port that answers prompts with answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: append([]string(nil), answers...)}
}

// Confirming returns a port whose confirmations answer yes.
func Confirming(yes bool) *Scripted {
	return &Scripted{confirm: yes}
}

// WithConfirm sets the confirmation answer.
func (s *Scripted) WithConfirm(yes bool) *Scripted {
	s.mu.Lock()
	s.confirm = yes
	s.mu.Unlock()
	return s
}

func (s *Scripted) Prompt(ctx context.Context, message string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, message)
	if len(s.answers) == 0 {
		return "", false, nil
	}
	v := s.answers[0]
	s.answers = s.answers[1:]
	return v, true, nil
}

func (s *Scripted) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, message)
	return s.confirm, nil
}

// Asked returns every message shown so far.
func (s *Scripted) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}

// Terminal prompts on out and reads answers line by line from in.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Prompt treats end of input before any text as a cancel.
func (t *Terminal) Prompt(ctx context.Context, message string) (string, bool, error) {
	line, ok, err := t.readLine(ctx, message+" ")
	if err != nil || !ok {
		return "", false, err
	}
	return line, true, nil
}

func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	line, ok, err := t.readLine(ctx, message+" [y/N] ")
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) readLine(ctx context.Context, prompt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprint(t.out, prompt); err != nil {
		return "", false, fmt.Errorf("write prompt: %w", err)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", false, nil
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

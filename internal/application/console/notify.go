package console

import (
	"context"
	"sync"
)

// NoticeKind tells the page how to style a notice
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-facing message raised by an operation
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Notifier surfaces notices to the user
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Confirmer asks the user to confirm an irreversible action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Answer is a Confirmer with a pre-recorded answer, e.g. from a submitted form
type Answer bool

func (a Answer) Confirm(context.Context, string) bool { return bool(a) }

// Discard drops every notice
type Discard struct{}

func (Discard) Notify(context.Context, Notice) {}

// Flash queues notices until the next render drains them
type Flash struct {
	mu      sync.Mutex
	notices []Notice
}

func (f *Flash) Notify(_ context.Context, n Notice) {
	f.mu.Lock()
	f.notices = append(f.notices, n)
	f.mu.Unlock()
}

// Drain returns and clears the queued notices
func (f *Flash) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	return out
}

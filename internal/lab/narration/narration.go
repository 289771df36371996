// Package narration reads lesson text aloud through an external speech service,
// one narration at a time.
package narration

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBusy is returned when a narration is already playing. The request is dropped, not queued.
	ErrBusy = errors.New("narration already in progress")
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New("narration text is empty")
)

// Clip is the outcome of one narration.
type Clip struct {
	Text     string        `json:"text"`
	Audio    []byte        `json:"audio,omitempty"`
	MIMEType string        `json:"mime_type,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Narrator turns text into speech and returns once the speech is done.
type Narrator interface {
	Speak(ctx context.Context, text string) (Clip, error)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(ctx context.Context, text string) (Clip, error)

// Speak calls f.
func (f NarratorFunc) Speak(ctx context.Context, text string) (Clip, error) {
	return f(ctx, text)
}

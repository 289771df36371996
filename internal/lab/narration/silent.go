package narration

import (
	"context"
	"strings"
	"time"
)

// DefaultWordsPerMinute is a calm reading pace for children.
const DefaultWordsPerMinute = 130

const minSilentDuration = time.Second

// Silent is a narrator without a speech backend. It returns no audio, only how
// long reading the text aloud would take, so the gate still paces requests.
type Silent struct {
	WordsPerMinute int
}

// Speak estimates the reading time of text.
func (s Silent) Speak(ctx context.Context, text string) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	return Clip{Text: text, Duration: ReadingTime(text, s.WordsPerMinute)}, nil
}

// ReadingTime estimates how long text takes to read at wpm words per minute.
func ReadingTime(text string, wpm int) time.Duration {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Minute / time.Duration(wpm)
	if d < minSilentDuration {
		return minSilentDuration
	}
	return d
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/models"
	"ohms_lab/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ErrUnknownScript is returned when a narration key names no script or character.
var ErrUnknownScript = errors.New("unknown narration script")

// NarrationRequest names either free text or a lesson script key such as
// "theory" or "character.voltage". Script wins when both are set.
type NarrationRequest struct {
	Text   string
	Script string
}

type NarrationService struct {
	store     *sessionStore
	eventRepo repository.EventRepo
	content   *lesson.Content
}

func NewNarrationService(store *sessionStore, eventRepo repository.EventRepo, content *lesson.Content) *NarrationService {
	return &NarrationService{store: store, eventRepo: eventRepo, content: content}
}

// Narrate resolves the text and plays it through the session's narration gate.
// narration.ErrBusy means the request was dropped.
func (s *NarrationService) Narrate(ctx context.Context, sessionID string, req NarrationRequest) (narration.Result, error) {
	ctx, span := startSpan(ctx, "narration/narrate", sessionID, attribute.String("script", req.Script))
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return narration.Result{}, err
	}
	text, err := s.resolve(req)
	if err != nil {
		spanError(span, err)
		return narration.Result{}, err
	}

	res, err := sess.Narrate(ctx, text)
	if err != nil {
		if !errors.Is(err, narration.ErrBusy) {
			spanError(span, err)
		}
		return res, err
	}
	span.SetAttributes(attribute.Bool("failed", res.Failed))

	desc := "Narration played"
	if res.Failed {
		desc = "Narration failed"
	}
	if err := s.eventRepo.Append(ctx, models.LabEvent{
		SessionID:   sessionID,
		Type:        models.EventNarration,
		Description: desc,
		Metadata: map[string]any{
			"script":      req.Script,
			"failed":      res.Failed,
			"duration_ms": res.Clip.Duration.Milliseconds(),
		},
	}); err != nil {
		spanError(span, err)
	}
	return res, nil
}

func (s *NarrationService) resolve(req NarrationRequest) (string, error) {
	key := strings.TrimSpace(req.Script)
	if key == "" {
		return req.Text, nil
	}
	if s.content == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownScript, key)
	}
	text, ok := s.content.Narration(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScript, key)
	}
	return text, nil
}

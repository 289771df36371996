package service

import (
	"context"
	"fmt"
	"io"

	"ohms_lab/internal/chart"
	"ohms_lab/internal/lab"
	"ohms_lab/internal/logger"
	"ohms_lab/internal/models"
	"ohms_lab/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LabService runs lab operations against live sessions and logs each one.
type LabService struct {
	store     *sessionStore
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewLabService(store *sessionStore, eventRepo repository.EventRepo, log *logger.Logger) *LabService {
	return &LabService{store: store, eventRepo: eventRepo, log: log}
}

// Snapshot returns the session's current state.
func (s *LabService) Snapshot(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	sess, err := s.store.get(sessionID)
	if err != nil {
		return models.LabSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SelectSection switches the visible section. The lab itself is untouched.
func (s *LabService) SelectSection(ctx context.Context, sessionID, section string) (models.LabSnapshot, error) {
	ctx, span := startSpan(ctx, "lab/select-section", sessionID, attribute.String("section", section))
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	sec, err := lab.ParseSection(section)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	prev, err := sess.SelectSection(ctx, sec)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}

	s.append(ctx, models.LabEvent{
		SessionID:   sessionID,
		Type:        models.EventSectionChange,
		Description: fmt.Sprintf("Section changed to %s", sec),
		Metadata:    map[string]any{"from": prev, "to": sec},
	})
	return sess.Snapshot(), nil
}

// SetCircuit moves the voltage and resistance sliders.
func (s *LabService) SetCircuit(ctx context.Context, sessionID string, voltage, resistance float64) (models.LabSnapshot, error) {
	ctx, span := startSpan(ctx, "lab/set-circuit", sessionID,
		attribute.Float64("voltage", voltage),
		attribute.Float64("resistance", resistance),
	)
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	st, err := sess.SetCircuit(ctx, voltage, resistance)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}

	s.append(ctx, models.LabEvent{
		SessionID:   sessionID,
		Type:        models.EventCircuitChange,
		Description: fmt.Sprintf("%g V / %g Ω", st.Voltage, st.Resistance),
		Metadata: map[string]any{
			"voltage":    st.Voltage,
			"resistance": st.Resistance,
			"current":    st.Current,
		},
	})
	return sess.Snapshot(), nil
}

// TriggerShort starts the short-circuit demonstration. The transition itself
// is logged by the session's short-circuit hook.
func (s *LabService) TriggerShort(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	_, span := startSpan(ctx, "lab/short-circuit/trigger", sessionID)
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	if err := sess.TriggerShort(); err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// ResetShort replaces the blown fuse.
func (s *LabService) ResetShort(ctx context.Context, sessionID string) (models.LabSnapshot, error) {
	_, span := startSpan(ctx, "lab/short-circuit/reset", sessionID)
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	if err := sess.ResetShort(); err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// ToggleQuiz shows or hides one quiz answer.
func (s *LabService) ToggleQuiz(ctx context.Context, sessionID, itemID string) (models.LabSnapshot, error) {
	ctx, span := startSpan(ctx, "lab/quiz/toggle", sessionID, attribute.String("item", itemID))
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}
	shown, err := sess.ToggleQuiz(ctx, itemID)
	if err != nil {
		spanError(span, err)
		return models.LabSnapshot{}, err
	}

	verb := "hidden"
	if shown {
		verb = "revealed"
	}
	s.append(ctx, models.LabEvent{
		SessionID:   sessionID,
		Type:        models.EventQuizToggle,
		Description: fmt.Sprintf("Answer %s %s", itemID, verb),
		Metadata:    map[string]any{"item": itemID, "revealed": shown},
	})
	return sess.Snapshot(), nil
}

// CircuitChart renders the session's I-U chart as SVG.
func (s *LabService) CircuitChart(ctx context.Context, sessionID string, w io.Writer) error {
	_, span := startSpan(ctx, "lab/chart", sessionID)
	defer span.End()

	sess, err := s.store.get(sessionID)
	if err != nil {
		spanError(span, err)
		return err
	}
	if err := chart.RenderIV(w, sess.Circuit()); err != nil {
		spanError(span, err)
		return err
	}
	return nil
}

// append logs an activity event. Log write failures never fail the lab operation.
func (s *LabService) append(ctx context.Context, ev models.LabEvent) {
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "session_id", ev.SessionID, "type", ev.Type)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ohms_lab/internal/lab"
	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lab/shortcircuit"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/logger"
	"ohms_lab/internal/models"
	"ohms_lab/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

const defaultTokenTTL = 2 * time.Hour

// ErrInvalidToken is returned for tokens that fail signature, method or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionService creates and ends lab sessions.
type SessionService struct {
	store     *sessionStore
	eventRepo repository.EventRepo
	secret    []byte
	tokenTTL  time.Duration
	content   *lesson.Content
	narrator  narration.Narrator
	clock     clockz.Clock
	log       *logger.Logger
}

func NewSessionService(store *sessionStore, eventRepo repository.EventRepo, opts Options) *SessionService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &SessionService{
		store:     store,
		eventRepo: eventRepo,
		secret:    []byte(opts.TokenSecret),
		tokenTTL:  ttl,
		content:   opts.Content,
		narrator:  opts.Narrator,
		clock:     opts.Clock,
		log:       opts.Log,
	}
}

// Create opens a session and returns its signed token with the initial snapshot.
func (s *SessionService) Create(ctx context.Context) (string, models.LabSnapshot, error) {
	id := uuid.NewString()
	ctx, span := startSpan(ctx, "session/create", id)
	defer span.End()

	token, err := s.issueToken(id)
	if err != nil {
		spanError(span, err)
		return "", models.LabSnapshot{}, fmt.Errorf("issue token: %w", err)
	}

	cfg := lab.Config{
		ID:             id,
		Narrator:       s.narrator,
		Clock:          s.clock,
		Log:            s.log,
		OnShortCircuit: s.logShortCircuit,
	}
	if s.content != nil {
		cfg.Quiz = s.content.QuizItems()
	}
	sess := lab.NewSession(ctx, cfg)
	s.store.put(sess)

	if err := s.eventRepo.Append(ctx, models.LabEvent{
		SessionID:   id,
		OccurredAt:  s.clock.Now().UTC(),
		Type:        models.EventSessionStart,
		Description: "Session started",
	}); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "session_id", id, "type", models.EventSessionStart)
	}
	s.log.Infow("session_created", "session_id", id)
	return token, sess.Snapshot(), nil
}

// ParseToken validates the token and returns the session id it carries.
func (s *SessionService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

// End closes a session. Ending an unknown session returns ErrSessionNotFound.
func (s *SessionService) End(ctx context.Context, sessionID string) error {
	return s.end(ctx, sessionID, "ended")
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	return s.store.len()
}

func (s *SessionService) end(ctx context.Context, sessionID, reason string) error {
	ctx, span := startSpan(ctx, "session/end", sessionID)
	defer span.End()

	sess := s.store.remove(sessionID)
	if sess == nil {
		spanError(span, ErrSessionNotFound)
		return ErrSessionNotFound
	}
	sess.Close(ctx)

	if err := s.eventRepo.Append(ctx, models.LabEvent{
		SessionID:   sessionID,
		OccurredAt:  s.clock.Now().UTC(),
		Type:        models.EventSessionEnd,
		Description: "Session " + reason,
		Metadata:    map[string]any{"reason": reason},
	}); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "session_id", sessionID, "type", models.EventSessionEnd)
	}
	s.log.Infow("session_ended", "session_id", sessionID, "reason", reason)
	return nil
}

// logShortCircuit records every demonstration transition, the timer-driven
// fuse blow included.
func (s *SessionService) logShortCircuit(sessionID string, t shortcircuit.Transition) {
	ev := models.LabEvent{
		SessionID:  sessionID,
		OccurredAt: t.At.UTC(),
		Metadata:   map[string]any{"from": t.From, "to": t.To},
	}
	switch t.To {
	case shortcircuit.Shorted:
		ev.Type, ev.Description = models.EventShortTriggered, "Short circuit triggered"
	case shortcircuit.Blown:
		ev.Type, ev.Description = models.EventFuseBlown, "Fuse blown"
	case shortcircuit.Normal:
		ev.Type, ev.Description = models.EventFuseReset, "Fuse replaced"
	default:
		return
	}
	if err := s.eventRepo.Append(context.Background(), ev); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "session_id", sessionID, "type", ev.Type)
	}
}

// issueToken signs a session token.
func (s *SessionService) issueToken(sessionID string) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		SessionID: sessionID,
	})
	return token.SignedString(s.secret)
}

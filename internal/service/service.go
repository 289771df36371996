package service

import (
	"context"
	"io"
	"time"

	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/logger"
	"ohms_lab/internal/models"
	"ohms_lab/internal/repository"

	"github.com/zoobzio/clockz"
)

// Sessions issues anonymous lab sessions and the bearer tokens that address them.
type Sessions interface {
	Create(ctx context.Context) (string, models.LabSnapshot, error)
	ParseToken(accessToken string) (string, error)
	End(ctx context.Context, sessionID string) error
	Count() int
}

// Lab exposes one session's lab operations. Each returns the resulting snapshot.
type Lab interface {
	Snapshot(ctx context.Context, sessionID string) (models.LabSnapshot, error)
	SelectSection(ctx context.Context, sessionID, section string) (models.LabSnapshot, error)
	SetCircuit(ctx context.Context, sessionID string, voltage, resistance float64) (models.LabSnapshot, error)
	TriggerShort(ctx context.Context, sessionID string) (models.LabSnapshot, error)
	ResetShort(ctx context.Context, sessionID string) (models.LabSnapshot, error)
	ToggleQuiz(ctx context.Context, sessionID, itemID string) (models.LabSnapshot, error)
	CircuitChart(ctx context.Context, sessionID string, w io.Writer) error
}

// Narration reads lesson text aloud for a session.
type Narration interface {
	Narrate(ctx context.Context, sessionID string, req NarrationRequest) (narration.Result, error)
}

// Lessons serves the static lesson content.
type Lessons interface {
	Lesson() *lesson.Content
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.LabEvent, error)
}

// Janitor evicts idle sessions in the background.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Sessions
	Lab
	Narration
	Lessons
	EventLog
	Janitor
}

// Options carries the runtime settings the services need.
type Options struct {
	TokenSecret string
	TokenTTL    time.Duration
	SessionTTL  time.Duration
	Content     *lesson.Content
	Narrator    narration.Narrator
	Clock       clockz.Clock
	Log         *logger.Logger
}

// NewService wires the repository layer and the session store into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockz.RealClock
	}
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	store := newSessionStore()
	sessions := NewSessionService(store, repos.EventRepo, opts)
	return &Service{
		Sessions:  sessions,
		Lab:       NewLabService(store, repos.EventRepo, opts.Log),
		Narration: NewNarrationService(store, repos.EventRepo, opts.Content),
		Lessons:   staticLessons{content: opts.Content},
		EventLog:  NewEventLogService(repos.EventRepo),
		Janitor:   NewJanitorService(sessions, opts.SessionTTL, opts.Clock, opts.Log),
	}
}

type staticLessons struct {
	content *lesson.Content
}

func (s staticLessons) Lesson() *lesson.Content { return s.content }

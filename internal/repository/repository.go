package repository

import (
	"context"
	"database/sql"
	"time"

	"ohms_lab/internal/models"
)

// EventFilter narrows List. Zero values mean "no filter".
type EventFilter struct {
	From      time.Time
	To        time.Time
	Type      string
	SessionID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.LabEvent) error
	List(ctx context.Context, f EventFilter) ([]models.LabEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}

package cron

import (
	"context"
	"errors"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
)

// SessionJobs contains session persistence jobs
type SessionJobs struct {
	sessionService session.SessionService
	interval       time.Duration
}

func NewSessionJobs(sessionService session.SessionService, interval time.Duration) *SessionJobs {
	return &SessionJobs{
		sessionService: sessionService,
		interval:       interval,
	}
}

// RegisterJobs registers the autosave job
func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("autosave_session", j.interval, j.AutoSave)
}

// AutoSave persists the session if it changed since the last save. Having
// nothing loaded yet is not a failure.
func (j *SessionJobs) AutoSave(ctx context.Context) error {
	err := j.sessionService.AutoSave(ctx)
	if errors.Is(err, session.ErrNoDataset) {
		return nil
	}
	return err
}

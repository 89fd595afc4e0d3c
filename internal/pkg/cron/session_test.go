package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type autoSaver struct {
	session.SessionService
	err   error
	calls int
}

func (a *autoSaver) AutoSave(ctx context.Context) error {
	a.calls++
	return a.err
}

func TestSessionJobs_AutoSave(t *testing.T) {
	svc := &autoSaver{}
	jobs := NewSessionJobs(svc, time.Minute)
	s := NewScheduler(context.Background())
	require.NoError(t, jobs.RegisterJobs(s))

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, svc.calls)

	svc.err = session.ErrNoDataset
	assert.NoError(t, jobs.AutoSave(context.Background()))

	svc.err = errors.New("db down")
	assert.Error(t, s.RunOnce(context.Background()))
}

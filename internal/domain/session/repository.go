package session

import "context"

type SessionRepository interface {
	Save(ctx context.Context, snapshot Snapshot) error
	GetByID(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}

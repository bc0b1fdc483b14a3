// Package marker persists the session marker: the last-known user profile,
// stored durably on the client.
//
// The marker is a heuristic, not a credential. Its presence means "a refresh
// cookie probably still exists server-side, an auto-login is worth trying".
// It must never be treated as proof of a valid session, and no token of any
// kind is ever stored alongside it.
package marker

import (
	"context"
	"time"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
)

// storageKey is the fixed key the marker record lives under.
const storageKey = "auth_user"

// Record is the persisted marker payload.
type Record struct {
	User    api.User  `json:"user"`
	SavedAt time.Time `json:"saved_at"`
}

// Repository stores at most one marker record.
//
// Get returns (nil, nil) when no marker exists; absence is a normal state,
// not an error. Clear is idempotent.
type Repository interface {
	Get(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Clear(ctx context.Context) error
}

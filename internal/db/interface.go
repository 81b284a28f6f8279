package db

import (
	"context"
)

var _ DbInterface = (*Database)(nil)

// DbInterface is the persistence the service needs: the referrer captured
// from an inbound link survives restarts.
type DbInterface interface {
	Ping(ctx context.Context) error
	LoadReferrer(ctx context.Context) (string, error)
	SaveReferrer(ctx context.Context, referrer string) error
}

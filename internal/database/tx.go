package database

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn as one unit of work. The ctx passed to fn must be used
// for every store call that should join the unit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sequential runs fn directly. Writes made before a failure stay applied.
type Sequential struct{}

func (Sequential) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MongoTx wraps fn in a multi-document transaction. Requires a replica set.
type MongoTx struct {
	Client *mongo.Client
}

func (m MongoTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

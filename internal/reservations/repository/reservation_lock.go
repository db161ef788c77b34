package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"courtbook/pkg/config"
	"courtbook/pkg/model"
)

const LockCollectionName = "Reservation_locks"

// ReservationLockRepository provides the advisory locks that serialize
// reservation creation per court.
type ReservationLockRepository interface {
	Acquire(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoReservationLockRepository struct {
	collection *mongo.Collection
}

func NewReservationLockRepository(cfg *config.Config) ReservationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document. A duplicate key error means another
// request holds the lock for the same court.
func (r *mongoReservationLockRepository) Acquire(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	lock.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return nil, err
	}
	return lock, nil
}

func (r *mongoReservationLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

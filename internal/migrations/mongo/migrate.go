package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"courtbook/internal/migrations/mongo/validators"
	"courtbook/pkg/model"
)

var (
	CourtsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "active", Value: 1},
		}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "court_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "holder_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// TTL reaps advisory locks orphaned by crashed requests. expires_at is
	// set to a few seconds ahead at acquisition; expireAfterSeconds 0 means
	// "expire at the stored instant".
	ReservationLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running courtbook Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Courts": {
			Indexes:   CourtsIndexes,
			Validator: validators.CourtValidator,
		},
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Reservation_locks": {
			Indexes: ReservationLocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedCourts(ctx, db); err != nil {
		return fmt.Errorf("failed to seed courts: %w", err)
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts = opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator != nil {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}

// seedCourts populates the catalog on a fresh database so the engine is
// usable out of the box. Catalog management beyond this belongs to the
// surrounding application.
func seedCourts(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("Courts")

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	seeds := []any{
		model.Court{Name: "Court A", Category: model.CategoryTennis, Active: true, CreatedAt: now},
		model.Court{Name: "Court B", Category: model.CategoryTennis, Active: true, CreatedAt: now},
		model.Court{Name: "Main Hall", Category: model.CategoryBasketball, Active: true, CreatedAt: now},
		model.Court{Name: "Beach Arena", Category: model.CategoryVolleyball, Active: true, CreatedAt: now},
	}

	if _, err := coll.InsertMany(ctx, seeds); err != nil {
		return err
	}
	fmt.Printf("🌱 Seeded %d courts\n", len(seeds))
	return nil
}

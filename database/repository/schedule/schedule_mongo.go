package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"glowbook/config"
	"glowbook/database"
	"glowbook/models"
)

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs a repository over the schedules collection.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database(config.AppConfig.MongoDBName)
	return &MongoScheduleRepo{coll: db.Collection("schedules")}
}

func (repo *MongoScheduleRepo) Get(ctx context.Context, providerID string) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var schedule models.Schedule
	if err := repo.coll.FindOne(ctx, bson.M{"provider_id": providerID}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching schedule for provider %s: %w", providerID, err)
	}
	return &schedule, nil
}

func (repo *MongoScheduleRepo) GetOrCreate(ctx context.Context, providerID string) (*models.Schedule, error) {
	schedule, err := repo.Get(ctx, providerID)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Upsert so two concurrent first accesses converge on one document.
	seed := models.DefaultSchedule(providerID, config.AppConfig.DefaultTimezone)
	filter := bson.M{"provider_id": providerID}
	update := bson.M{"$setOnInsert": seed}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Schedule
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("error seeding default schedule for provider %s: %w", providerID, err)
	}
	return &out, nil
}

func (repo *MongoScheduleRepo) Replace(ctx context.Context, schedule *models.Schedule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	schedule.Version++
	schedule.UpdatedAt = time.Now()

	filter := bson.M{"provider_id": schedule.ProviderID}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctx, filter, schedule, opts); err != nil {
		return fmt.Errorf("error replacing schedule for provider %s: %w", schedule.ProviderID, err)
	}
	return nil
}

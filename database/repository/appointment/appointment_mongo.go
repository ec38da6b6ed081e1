package appointmentRepo

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

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
// Besides the appointments collection it maintains calendar_days, one
// document per provider+date that every booking transaction writes; see
// CreateIfFree.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
	days *mongo.Collection
}

// NewMongoAppointmentRepo constructs a repository over the appointments
// collection.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database(config.AppConfig.MongoDBName)
	repo := &MongoAppointmentRepo{
		coll: db.Collection("appointments"),
		days: db.Collection("calendar_days"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoAppointmentRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	_, _ = repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: unique,
	})
	_, _ = repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
	})
	_, _ = repo.days.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "date", Value: 1}},
		Options: unique,
	})
}

func activeStatusFilter() bson.M {
	return bson.M{"$in": []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}}
}

func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (repo *MongoAppointmentRepo) ListActive(ctx context.Context, providerID, date string) ([]models.Appointment, error) {
	return repo.listActive(ctx, bson.M{
		"provider_id": providerID,
		"date":        date,
		"status":      activeStatusFilter(),
	})
}

func (repo *MongoAppointmentRepo) ListActiveRange(ctx context.Context, providerID, from, to string) ([]models.Appointment, error) {
	return repo.listActive(ctx, bson.M{
		"provider_id": providerID,
		"date":        bson.M{"$gte": from, "$lte": to},
		"status":      activeStatusFilter(),
	})
}

func (repo *MongoAppointmentRepo) ListActiveFrom(ctx context.Context, providerID, from string) ([]models.Appointment, error) {
	return repo.listActive(ctx, bson.M{
		"provider_id": providerID,
		"date":        bson.M{"$gte": from},
		"status":      activeStatusFilter(),
	})
}

func (repo *MongoAppointmentRepo) listActive(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// CreateIfFree re-reads the provider's active appointments and inserts the
// new one inside a single mongo transaction. The guard sees exactly the
// data the insert will commit against.
//
// Mongo transactions run at snapshot isolation and detect write conflicts
// only on documents both transactions touch, so two racing inserts of
// distinct appointment documents would not conflict on their own. Every
// booking transaction therefore first bumps the provider's calendar_days
// document for the target date: both racers write that one document, mongo
// aborts the later transaction with a transient write conflict, and
// WithTransaction retries it on a fresh snapshot where the winner's insert
// is visible and the guard rejects it.
func (repo *MongoAppointmentRepo) CreateIfFree(ctx context.Context, appt *models.Appointment, guard Guard) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := repo.days.UpdateOne(sc,
			calendarDayFilter(appt.ProviderID, appt.Date),
			calendarDayBump(),
			options.Update().SetUpsert(true),
		); err != nil {
			return nil, fmt.Errorf("error locking calendar day: %w", err)
		}

		cursor, err := repo.coll.Find(sc, bson.M{
			"provider_id": appt.ProviderID,
			"date":        appt.Date,
			"status":      activeStatusFilter(),
		})
		if err != nil {
			return nil, fmt.Errorf("error fetching active appointments: %w", err)
		}
		var active []models.Appointment
		if err := cursor.All(sc, &active); err != nil {
			return nil, fmt.Errorf("error decoding active appointments: %w", err)
		}

		if err := guard(active); err != nil {
			return nil, err
		}

		if _, err := repo.coll.InsertOne(sc, appt); err != nil {
			return nil, fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil, nil
	}

	_, err = sess.WithTransaction(ctx, txnFn, options.Transaction())
	return err
}

// calendarDayFilter addresses the single shared document all booking
// transactions for a provider+date must write. A unique index on
// (provider_id, date) keeps concurrent upserts from creating duplicates.
func calendarDayFilter(providerID, date string) bson.M {
	return bson.M{"provider_id": providerID, "date": date}
}

func calendarDayBump() bson.M {
	return bson.M{"$inc": bson.M{"version": 1}}
}

func (repo *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, allowedFrom []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": allowedFrom}}
	update := bson.M{"$set": bson.M{"status": to}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Appointment
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating appointment %s: %w", id, err)
	}

	// Distinguish a missing appointment from one in a disallowed state.
	if _, getErr := repo.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrBadState
}

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"popbot/domain/run"
)

// runDocument is the MongoDB document structure for run records.
type runDocument struct {
	ID             string    `bson:"_id"`
	Map            string    `bson:"map"`
	Difficulty     string    `bson:"difficulty"`
	Mode           string    `bson:"mode"`
	StartedAt      time.Time `bson:"started_at"`
	FinishedAt     time.Time `bson:"finished_at"`
	StepsCompleted int       `bson:"steps_completed"`
	StepsPlanned   int       `bson:"steps_planned"`
	FinalCurrency  int       `bson:"final_currency"`
	Outcome        string    `bson:"outcome"`
	Error          string    `bson:"error,omitempty"`
}

// MongoRunRepository implements run.Repository using MongoDB.
type MongoRunRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoRunRepository creates a new MongoDB-based run repository.
func NewMongoRunRepository(db *MongoDB, logger *slog.Logger) *MongoRunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoRunRepository{
		collection: db.Collection("run"),
		logger:     logger,
	}
}

// Save stores a run record, replacing any existing record with the same ID.
func (r *MongoRunRepository) Save(ctx context.Context, rec *run.Record) error {
	doc := recordToDocument(rec)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	r.logger.Debug("Saved run record", "id", rec.ID, "map", rec.Map, "outcome", rec.Outcome)
	return nil
}

// ListRecent retrieves the most recently started runs, newest first.
func (r *MongoRunRepository) ListRecent(ctx context.Context, limit int) ([]*run.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find run records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*run.Record
	for cursor.Next(ctx) {
		var doc runDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}
		records = append(records, documentToRecord(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return records, nil
}

func recordToDocument(rec *run.Record) *runDocument {
	return &runDocument{
		ID:             rec.ID,
		Map:            rec.Map,
		Difficulty:     rec.Difficulty,
		Mode:           rec.Mode,
		StartedAt:      rec.StartedAt,
		FinishedAt:     rec.FinishedAt,
		StepsCompleted: rec.StepsCompleted,
		StepsPlanned:   rec.StepsPlanned,
		FinalCurrency:  rec.FinalCurrency,
		Outcome:        string(rec.Outcome),
		Error:          rec.Error,
	}
}

func documentToRecord(doc *runDocument) *run.Record {
	return &run.Record{
		ID:             doc.ID,
		Map:            doc.Map,
		Difficulty:     doc.Difficulty,
		Mode:           doc.Mode,
		StartedAt:      doc.StartedAt,
		FinishedAt:     doc.FinishedAt,
		StepsCompleted: doc.StepsCompleted,
		StepsPlanned:   doc.StepsPlanned,
		FinalCurrency:  doc.FinalCurrency,
		Outcome:        run.Outcome(doc.Outcome),
		Error:          doc.Error,
	}
}

// Ensure MongoRunRepository implements run.Repository
var _ run.Repository = (*MongoRunRepository)(nil)

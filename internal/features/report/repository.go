package report

import (
	"context"

	"go-hrops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportLogRepository interface {
	Create(ctx context.Context, log *ReportLog) error
	Update(ctx context.Context, log *ReportLog) error
	List(ctx context.Context, limit int64) ([]ReportLog, error)
	LastSuccessfulRun(ctx context.Context) (*ReportLog, error)
}

type ReportLogRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportLogRepository(mongodb *database.MongodbDB) ReportLogRepository {
	return &ReportLogRepositoryImpl{
		Collection: mongodb.DB.Collection("report_logs"),
	}
}

func (r *ReportLogRepositoryImpl) Create(ctx context.Context, log *ReportLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *ReportLogRepositoryImpl) Update(ctx context.Context, log *ReportLog) error {
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": log.ID}, log)
	return err
}

func (r *ReportLogRepositoryImpl) List(ctx context.Context, limit int64) ([]ReportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"start_time": -1}).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []ReportLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *ReportLogRepositoryImpl) LastSuccessfulRun(ctx context.Context) (*ReportLog, error) {
	opts := options.FindOne().SetSort(bson.M{"start_time": -1})

	var log ReportLog
	err := r.Collection.FindOne(ctx, bson.M{"status": "success"}, opts).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

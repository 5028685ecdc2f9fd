package purchase

import (
	"context"
	"time"

	"go-hrops/internal/common/models"
	"go-hrops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PurchaseRepository interface {
	Create(ctx context.Context, req *PurchaseRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*PurchaseRequest, error)
	List(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]PurchaseRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error
}

type PurchaseRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPurchaseRepository(mongodb *database.MongodbDB) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		Collection: mongodb.DB.Collection("purchase_requests"),
	}
}

func (r *PurchaseRepositoryImpl) Create(ctx context.Context, req *PurchaseRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.Collection.InsertOne(ctx, req)
	return err
}

func (r *PurchaseRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*PurchaseRequest, error) {
	var req PurchaseRequest
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *PurchaseRepositoryImpl) List(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]PurchaseRequest, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["tenant_id"] = tenantID

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []PurchaseRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PurchaseRepositoryImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

package leave

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

type LeaveRepository interface {
	Create(ctx context.Context, req *LeaveRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*LeaveRequest, error)
	List(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error

	GetBalance(ctx context.Context, tenantID, memberID primitive.ObjectID, year int) (*LeaveBalance, error)
	AddUsedDays(ctx context.Context, tenantID, memberID primitive.ObjectID, year int, days float64) error
}

type LeaveRepositoryImpl struct {
	Requests *mongo.Collection
	Balances *mongo.Collection
}

func NewLeaveRepository(mongodb *database.MongodbDB) LeaveRepository {
	return &LeaveRepositoryImpl{
		Requests: mongodb.DB.Collection("leave_requests"),
		Balances: mongodb.DB.Collection("leave_balances"),
	}
}

func (r *LeaveRepositoryImpl) Create(ctx context.Context, req *LeaveRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.Requests.InsertOne(ctx, req)
	return err
}

func (r *LeaveRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.Requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepositoryImpl) List(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]LeaveRequest, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["tenant_id"] = tenantID

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := r.Requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []LeaveRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *LeaveRepositoryImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	_, err := r.Requests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

// GetBalance upserts the year row on first read so every member always has a
// balance to report against.
func (r *LeaveRepositoryImpl) GetBalance(ctx context.Context, tenantID, memberID primitive.ObjectID, year int) (*LeaveBalance, error) {
	filter := bson.M{"tenant_id": tenantID, "member_id": memberID, "year": year}

	var balance LeaveBalance
	err := r.Balances.FindOne(ctx, filter).Decode(&balance)
	if err == nil {
		return &balance, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	balance = LeaveBalance{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		MemberID:  memberID,
		Year:      year,
		Allowance: defaultAnnualAllowance,
		Used:      0,
		UpdatedAt: time.Now(),
	}
	if _, err := r.Balances.InsertOne(ctx, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *LeaveRepositoryImpl) AddUsedDays(ctx context.Context, tenantID, memberID primitive.ObjectID, year int, days float64) error {
	filter := bson.M{"tenant_id": tenantID, "member_id": memberID, "year": year}
	update := bson.M{
		"$inc": bson.M{"used": days},
		"$set": bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"allowance": float64(defaultAnnualAllowance),
		},
	}
	_, err := r.Balances.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

package approval

import (
	"context"
	"time"

	"go-hrops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PolicyRepository interface {
	Create(ctx context.Context, policy *ApprovalPolicy) error
	GetByID(ctx context.Context, tenantID primitive.ObjectID, id string) (*ApprovalPolicy, error)
	// ListActive returns active policies for a tenant+module ordered by
	// priority descending, then creation time ascending. The order is the
	// matcher's tie-break contract.
	ListActive(ctx context.Context, tenantID primitive.ObjectID, module Module) ([]ApprovalPolicy, error)
	List(ctx context.Context, tenantID primitive.ObjectID) ([]ApprovalPolicy, error)
	Update(ctx context.Context, tenantID primitive.ObjectID, id string, policy *ApprovalPolicy) error
	SetActive(ctx context.Context, tenantID primitive.ObjectID, id string, active bool) error
	Delete(ctx context.Context, tenantID primitive.ObjectID, id string) error
	CountByTenant(ctx context.Context, tenantID primitive.ObjectID) (int64, error)
}

type PolicyRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPolicyRepository(mongodb *database.MongodbDB) PolicyRepository {
	return &PolicyRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_policies"),
	}
}

func (r *PolicyRepositoryImpl) Create(ctx context.Context, policy *ApprovalPolicy) error {
	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
	}
	policy.CreatedAt = time.Now()
	policy.UpdatedAt = policy.CreatedAt

	_, err := r.Collection.InsertOne(ctx, policy)
	return err
}

func (r *PolicyRepositoryImpl) GetByID(ctx context.Context, tenantID primitive.ObjectID, id string) (*ApprovalPolicy, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var policy ApprovalPolicy
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}).Decode(&policy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *PolicyRepositoryImpl) ListActive(ctx context.Context, tenantID primitive.ObjectID, module Module) ([]ApprovalPolicy, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.Collection.Find(ctx, bson.M{
		"tenant_id": tenantID,
		"module":    module,
		"is_active": true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var policies []ApprovalPolicy
	if err = cursor.All(ctx, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *PolicyRepositoryImpl) List(ctx context.Context, tenantID primitive.ObjectID) ([]ApprovalPolicy, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "module", Value: 1},
		{Key: "priority", Value: -1},
	})

	cursor, err := r.Collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var policies []ApprovalPolicy
	if err = cursor.All(ctx, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *PolicyRepositoryImpl) Update(ctx context.Context, tenantID primitive.ObjectID, id string, policy *ApprovalPolicy) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":            policy.Name,
			"is_active":       policy.IsActive,
			"priority":        policy.Priority,
			"min_days":        policy.MinDays,
			"max_days":        policy.MaxDays,
			"min_amount":      policy.MinAmount,
			"max_amount":      policy.MaxAmount,
			"criteria_script": policy.CriteriaScript,
			"levels":          policy.Levels,
			"updated_at":      time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID}, update)
	return err
}

func (r *PolicyRepositoryImpl) SetActive(ctx context.Context, tenantID primitive.ObjectID, id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "tenant_id": tenantID},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}},
	)
	return err
}

func (r *PolicyRepositoryImpl) Delete(ctx context.Context, tenantID primitive.ObjectID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	return err
}

func (r *PolicyRepositoryImpl) CountByTenant(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
}

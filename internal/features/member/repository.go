package member

import (
	"context"
	"fmt"
	"time"

	"go-hrops/internal/common/models"
	"go-hrops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	FindByEmailGlobal(ctx context.Context, email string) (*models.Member, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Member, error)
	List(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	// Approver queries: active, non-deleted members excluding one id.
	FindWithHRAccess(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error)
	FindWithFinanceAccess(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error)
	FindAdmins(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error)
}

type MemberRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewMemberRepository(mongodb *database.MongodbDB) MemberRepository {
	return &MemberRepositoryImpl{
		Collection: mongodb.DB.Collection("members"),
	}
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, member *models.Member) error {
	if member.TenantID.IsZero() {
		return fmt.Errorf("tenant id missing on member")
	}
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	_, err := r.Collection.InsertOne(ctx, member)
	return err
}

func (r *MemberRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var member models.Member
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepositoryImpl) FindByEmailGlobal(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	// No tenant filter, used for login
	err := r.Collection.FindOne(ctx, bson.M{"email": email, "deleted": false}).Decode(&member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepositoryImpl) List(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"tenant_id": tenantID, "deleted": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updated_at"] = time.Now()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	return err
}

func (r *MemberRepositoryImpl) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"deleted":    true,
		"deleted_at": now,
		"status":     models.MemberStatusInactive,
		"updated_at": now,
	}})
	return err
}

func (r *MemberRepositoryImpl) findApprovers(ctx context.Context, tenantID, exclude primitive.ObjectID, extra bson.M) ([]models.Member, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"status":    models.MemberStatusActive,
		"deleted":   false,
		"_id":       bson.M{"$ne": exclude},
	}
	for k, v := range extra {
		filter[k] = v
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepositoryImpl) FindWithHRAccess(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.findApprovers(ctx, tenantID, exclude, bson.M{"has_hr_access": true})
}

func (r *MemberRepositoryImpl) FindWithFinanceAccess(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.findApprovers(ctx, tenantID, exclude, bson.M{"has_finance_access": true})
}

func (r *MemberRepositoryImpl) FindAdmins(ctx context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.findApprovers(ctx, tenantID, exclude, bson.M{"$or": []bson.M{
		{"is_admin": true},
		{"is_owner": true},
	}})
}

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

type StepRepository interface {
	BulkInsert(ctx context.Context, steps []ApprovalStep) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*ApprovalStep, error)
	ListByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) ([]ApprovalStep, error)
	CurrentPending(ctx context.Context, module Module, entityID primitive.ObjectID) (*ApprovalStep, error)
	CountPending(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error)
	CountByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error)
	// ResolveStep is the CAS primitive: the step moves out of PENDING only if
	// it is still PENDING. Returns ErrStepAlreadyProcessed when another actor
	// won the race.
	ResolveStep(ctx context.Context, id primitive.ObjectID, status StepStatus, approverID primitive.ObjectID, notes string) error
	// RejectCascade runs the CAS rejection and the skip of all remaining
	// pending steps of the entity as one session transaction.
	RejectCascade(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, notes string) error
	// ApproveAllPending is the admin bypass: every pending step of the entity
	// becomes APPROVED, stamped with the admin id.
	ApproveAllPending(ctx context.Context, module Module, entityID, adminID primitive.ObjectID, notes string) (int64, error)
	DeleteByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) error
}

type StepRepositoryImpl struct {
	Collection *mongo.Collection
	client     *mongo.Client
}

func NewStepRepository(mongodb *database.MongodbDB) StepRepository {
	return &StepRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_steps"),
		client:     mongodb.Client(),
	}
}

func (r *StepRepositoryImpl) BulkInsert(ctx context.Context, steps []ApprovalStep) error {
	docs := make([]interface{}, 0, len(steps))
	for i := range steps {
		if steps[i].ID.IsZero() {
			steps[i].ID = primitive.NewObjectID()
		}
		steps[i].CreatedAt = time.Now()
		docs = append(docs, steps[i])
	}

	_, err := r.Collection.InsertMany(ctx, docs)
	return err
}

func (r *StepRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*ApprovalStep, error) {
	var step ApprovalStep
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&step)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStepNotFound
		}
		return nil, err
	}
	return &step, nil
}

func (r *StepRepositoryImpl) ListByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) ([]ApprovalStep, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level_order", Value: 1}})

	cursor, err := r.Collection.Find(ctx, bson.M{"module": module, "entity_id": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var steps []ApprovalStep
	if err = cursor.All(ctx, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *StepRepositoryImpl) CurrentPending(ctx context.Context, module Module, entityID primitive.ObjectID) (*ApprovalStep, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "level_order", Value: 1}})

	var step ApprovalStep
	err := r.Collection.FindOne(ctx, bson.M{
		"module":    module,
		"entity_id": entityID,
		"status":    StepStatusPending,
	}, opts).Decode(&step)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &step, nil
}

func (r *StepRepositoryImpl) CountPending(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{
		"module":    module,
		"entity_id": entityID,
		"status":    StepStatusPending,
	})
}

func (r *StepRepositoryImpl) CountByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"module": module, "entity_id": entityID})
}

func (r *StepRepositoryImpl) ResolveStep(ctx context.Context, id primitive.ObjectID, status StepStatus, approverID primitive.ObjectID, notes string) error {
	now := time.Now()
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StepStatusPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"approver_id": approverID,
			"action_at":   now,
			"notes":       notes,
		}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrStepAlreadyProcessed
	}
	return nil
}

func (r *StepRepositoryImpl) RejectCascade(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, notes string) error {
	session, err := r.client.StartSession()
	if err != nil {
		// Standalone deployments have no sessions; fall back to sequential
		// statements. The CAS still guarantees at-most-once on the step
		// itself, and the skip update only touches PENDING rows.
		if err := r.ResolveStep(ctx, step.ID, StepStatusRejected, approverID, notes); err != nil {
			return err
		}
		return r.skipPending(ctx, step.Module, step.EntityID)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.ResolveStep(sc, step.ID, StepStatusRejected, approverID, notes); err != nil {
			return nil, err
		}
		return nil, r.skipPending(sc, step.Module, step.EntityID)
	})
	return err
}

func (r *StepRepositoryImpl) skipPending(ctx context.Context, module Module, entityID primitive.ObjectID) error {
	_, err := r.Collection.UpdateMany(ctx,
		bson.M{"module": module, "entity_id": entityID, "status": StepStatusPending},
		bson.M{"$set": bson.M{"status": StepStatusSkipped, "action_at": time.Now()}},
	)
	return err
}

func (r *StepRepositoryImpl) ApproveAllPending(ctx context.Context, module Module, entityID, adminID primitive.ObjectID, notes string) (int64, error) {
	res, err := r.Collection.UpdateMany(ctx,
		bson.M{"module": module, "entity_id": entityID, "status": StepStatusPending},
		bson.M{"$set": bson.M{
			"status":      StepStatusApproved,
			"approver_id": adminID,
			"action_at":   time.Now(),
			"notes":       notes,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *StepRepositoryImpl) DeleteByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"module": module, "entity_id": entityID})
	return err
}

package purchase

import (
	"context"
	"fmt"

	"go-hrops/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Resolver struct {
	Repo PurchaseRepository
}

func NewPurchaseResolver(repo PurchaseRepository) approval.EntityResolver {
	return &Resolver{Repo: repo}
}

func (r *Resolver) Module() approval.Module {
	return approval.ModulePurchaseRequest
}

func (r *Resolver) Resolve(ctx context.Context, entityID primitive.ObjectID) (*approval.EntityMeta, error) {
	req, err := r.Repo.FindByID(ctx, entityID)
	if err != nil || req == nil {
		return nil, err
	}
	return &approval.EntityMeta{
		Title:       fmt.Sprintf("%s (%.2f %s)", req.Title, req.Amount, req.Currency),
		RequesterID: req.MemberID,
	}, nil
}

package asset

import (
	"context"
	"fmt"

	"go-hrops/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Resolver struct {
	Repo AssetRepository
}

func NewAssetResolver(repo AssetRepository) approval.EntityResolver {
	return &Resolver{Repo: repo}
}

func (r *Resolver) Module() approval.Module {
	return approval.ModuleAssetRequest
}

func (r *Resolver) Resolve(ctx context.Context, entityID primitive.ObjectID) (*approval.EntityMeta, error) {
	req, err := r.Repo.FindByID(ctx, entityID)
	if err != nil || req == nil {
		return nil, err
	}
	return &approval.EntityMeta{
		Title:       fmt.Sprintf("%s request: %s", req.Type, req.Description),
		RequesterID: req.MemberID,
	}, nil
}

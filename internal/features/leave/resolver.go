package leave

import (
	"context"
	"fmt"

	"go-hrops/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver lets the approval engine describe leave requests in events without
// importing this package.
type Resolver struct {
	Repo LeaveRepository
}

func NewLeaveResolver(repo LeaveRepository) approval.EntityResolver {
	return &Resolver{Repo: repo}
}

func (r *Resolver) Module() approval.Module {
	return approval.ModuleLeaveRequest
}

func (r *Resolver) Resolve(ctx context.Context, entityID primitive.ObjectID) (*approval.EntityMeta, error) {
	req, err := r.Repo.FindByID(ctx, entityID)
	if err != nil || req == nil {
		return nil, err
	}
	return &approval.EntityMeta{
		Title:       fmt.Sprintf("%s leave, %.1f day(s)", req.Type, req.Days),
		RequesterID: req.MemberID,
	}, nil
}

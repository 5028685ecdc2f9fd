package member

import (
	"context"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory answers the approval engine's eligibility, authorization and
// addressing questions from the member collection.
type Directory struct {
	Repo MemberRepository
}

func NewDirectory(repo MemberRepository) *Directory {
	return &Directory{Repo: repo}
}

// HasApproverForRole reports whether at least one approver exists for a role,
// excluding the requester. EMPLOYEE is never an approver role.
func (d *Directory) HasApproverForRole(ctx context.Context, role approval.ApproverRole, tenantID, requesterID primitive.ObjectID) (bool, error) {
	switch role {
	case approval.RoleManager:
		requester, err := d.Repo.FindByID(ctx, requesterID)
		if err != nil {
			return false, err
		}
		return requester != nil && requester.ManagerID != nil, nil

	case approval.RoleHRManager:
		members, err := d.Repo.FindWithHRAccess(ctx, tenantID, requesterID)
		if err != nil {
			return false, err
		}
		return len(members) > 0, nil

	case approval.RoleFinanceManager:
		members, err := d.Repo.FindWithFinanceAccess(ctx, tenantID, requesterID)
		if err != nil {
			return false, err
		}
		return len(members) > 0, nil

	case approval.RoleDirector:
		members, err := d.Repo.FindAdmins(ctx, tenantID, requesterID)
		if err != nil {
			return false, err
		}
		return len(members) > 0, nil
	}

	return false, nil
}

// CanMemberApprove maps a step's required role onto the acting member's
// capabilities. Members of another tenant are always denied; admins bypass
// the role checks within their own tenant. Denial is a value with a
// user-facing reason; only a missing member is an error.
func (d *Directory) CanMemberApprove(ctx context.Context, memberID primitive.ObjectID, step *approval.ApprovalStep) (approval.Authorization, error) {
	actor, err := d.Repo.FindByID(ctx, memberID)
	if err != nil {
		return approval.Authorization{}, err
	}
	if actor == nil {
		return approval.Authorization{}, approval.ErrMemberNotFound
	}
	if actor.TenantID != step.TenantID {
		return approval.Authorization{Reason: "this step belongs to another organization"}, nil
	}

	if actor.IsAdmin {
		return approval.Authorization{CanApprove: true}, nil
	}

	switch step.RequiredRole {
	case approval.RoleManager:
		requester, err := d.Repo.FindByID(ctx, step.RequesterID)
		if err != nil {
			return approval.Authorization{}, err
		}
		if requester == nil {
			return approval.Authorization{}, approval.ErrMemberNotFound
		}
		if requester.ManagerID != nil && *requester.ManagerID == actor.ID {
			return approval.Authorization{CanApprove: true}, nil
		}
		return approval.Authorization{Reason: "only the requester's direct manager can approve this step"}, nil

	case approval.RoleHRManager:
		if actor.HasHRAccess {
			return approval.Authorization{CanApprove: true}, nil
		}
		return approval.Authorization{Reason: "HR access is required to approve this step"}, nil

	case approval.RoleFinanceManager:
		if actor.HasFinanceAccess {
			return approval.Authorization{CanApprove: true}, nil
		}
		return approval.Authorization{Reason: "Finance access is required to approve this step"}, nil

	case approval.RoleDirector:
		// Admins are handled above; everyone else is denied.
		return approval.Authorization{Reason: "only an admin can approve a director-level step"}, nil
	}

	return approval.Authorization{Reason: "this step cannot be approved by members"}, nil
}

// GetApproversForRole resolves the members a notification for a level should
// reach, excluding the requester.
func (d *Directory) GetApproversForRole(ctx context.Context, role approval.ApproverRole, tenantID, requesterID primitive.ObjectID) ([]approval.Approver, error) {
	switch role {
	case approval.RoleManager:
		requester, err := d.Repo.FindByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester == nil || requester.ManagerID == nil {
			return nil, nil
		}
		manager, err := d.Repo.FindByID(ctx, *requester.ManagerID)
		if err != nil || manager == nil {
			return nil, err
		}
		return []approval.Approver{toApprover(*manager)}, nil

	case approval.RoleHRManager:
		members, err := d.Repo.FindWithHRAccess(ctx, tenantID, requesterID)
		if err != nil {
			return nil, err
		}
		return toApprovers(members), nil

	case approval.RoleFinanceManager:
		members, err := d.Repo.FindWithFinanceAccess(ctx, tenantID, requesterID)
		if err != nil {
			return nil, err
		}
		return toApprovers(members), nil

	case approval.RoleDirector:
		members, err := d.Repo.FindAdmins(ctx, tenantID, requesterID)
		if err != nil {
			return nil, err
		}
		return toApprovers(members), nil
	}

	return nil, nil
}

func (d *Directory) MemberName(ctx context.Context, id primitive.ObjectID) (string, error) {
	member, err := d.Repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", approval.ErrMemberNotFound
	}
	return member.Name, nil
}

func toApprover(m models.Member) approval.Approver {
	return approval.Approver{ID: m.ID, Email: m.Email, Name: m.Name}
}

func toApprovers(members []models.Member) []approval.Approver {
	out := make([]approval.Approver, 0, len(members))
	for _, m := range members {
		out = append(out, toApprover(m))
	}
	return out
}

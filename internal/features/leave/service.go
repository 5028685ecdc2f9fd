package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/audit"
	"go-hrops/internal/features/member"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateLeaveInput struct {
	Type      LeaveType `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

type LeaveService interface {
	CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreateLeaveInput) (*LeaveRequest, error)
	GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*LeaveRequest, error)
	ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]LeaveRequest, error)
	Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error)
	Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error
	GetBalance(ctx context.Context, tenantID, memberID primitive.ObjectID, year int) (*LeaveBalance, error)
}

type LeaveServiceImpl struct {
	Repo            LeaveRepository
	MemberRepo      member.MemberRepository
	ApprovalService approval.ApprovalService
	AuditService    audit.AuditService
	Logger          *zap.Logger
}

func NewLeaveService(
	repo LeaveRepository,
	memberRepo member.MemberRepository,
	approvalService approval.ApprovalService,
	auditService audit.AuditService,
	logger *zap.Logger,
) LeaveService {
	return &LeaveServiceImpl{
		Repo:            repo,
		MemberRepo:      memberRepo,
		ApprovalService: approvalService,
		AuditService:    auditService,
		Logger:          logger,
	}
}

// businessDays counts Monday-Friday between start and end inclusive.
func businessDays(start, end time.Time) float64 {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// CreateRequest persists the leave request and starts its approval chain. When
// no policy matches, the request is auto-approved and the balance is charged
// immediately.
func (s *LeaveServiceImpl) CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreateLeaveInput) (*LeaveRequest, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, errors.New("end date must not be before start date")
	}

	days := businessDays(input.StartDate, input.EndDate)
	if days == 0 {
		return nil, errors.New("the requested range contains no working days")
	}

	if input.Type != LeaveTypeUnpaid {
		year := input.StartDate.Year()
		balance, err := s.Repo.GetBalance(ctx, tenantID, memberID, year)
		if err != nil {
			return nil, err
		}
		if remaining := balance.Allowance - balance.Used; days > remaining {
			return nil, fmt.Errorf("insufficient leave balance: %.1f day(s) remaining", math.Max(remaining, 0))
		}
	}

	req := &LeaveRequest{
		TenantID:  tenantID,
		MemberID:  memberID,
		Type:      input.Type,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Days:      days,
		Reason:    input.Reason,
		Status:    models.RequestStatusPending,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	policy, err := s.ApprovalService.FindApplicablePolicy(ctx, tenantID, approval.ModuleLeaveRequest, approval.MatchInput{
		Days: &days,
		EntityData: map[string]interface{}{
			"type":   string(input.Type),
			"days":   days,
			"reason": input.Reason,
		},
	})
	if err != nil {
		return nil, err
	}

	if policy == nil {
		if err := s.finalizeApproved(ctx, req); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.ApprovalService.InitializeChain(ctx, approval.ModuleLeaveRequest, req.ID, policy, tenantID, memberID); err != nil {
			return nil, err
		}
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "leave_requests", req.ID.Hex(), map[string]models.Change{
		"leave": {New: fmt.Sprintf("%s %.1f day(s)", req.Type, req.Days)},
	})

	return req, nil
}

func (s *LeaveServiceImpl) GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*LeaveRequest, error) {
	req, err := s.Repo.FindByID(ctx, id)
	if err != nil || req == nil {
		return req, err
	}
	if req.TenantID != tenantID {
		return nil, nil
	}
	if m, err := s.MemberRepo.FindByID(ctx, req.MemberID); err == nil && m != nil {
		req.MemberName = m.Name
	}
	return req, nil
}

func (s *LeaveServiceImpl) ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]LeaveRequest, error) {
	return s.Repo.List(ctx, tenantID, filter, limit, skip)
}

// Decide routes an approve/reject through the approval engine and projects the
// outcome back onto the request row.
func (s *LeaveServiceImpl) Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error) {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("leave request not found")
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("leave request is already %s", req.Status)
	}

	result, err := s.ApprovalService.ProcessEntityApproval(ctx, approval.ModuleLeaveRequest, id, approverID, action, notes)
	if err != nil {
		return nil, err
	}
	if !result.StepProcessed {
		return result, nil
	}

	if action == approval.ActionReject {
		if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusRejected); err != nil {
			return nil, err
		}
	} else if result.IsChainComplete && result.AllApproved {
		if err := s.finalizeApproved(ctx, req); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *LeaveServiceImpl) finalizeApproved(ctx context.Context, req *LeaveRequest) error {
	if err := s.Repo.UpdateStatus(ctx, req.ID, models.RequestStatusApproved); err != nil {
		return err
	}
	req.Status = models.RequestStatusApproved

	if req.Type == LeaveTypeUnpaid {
		return nil
	}
	if err := s.Repo.AddUsedDays(ctx, req.TenantID, req.MemberID, req.StartDate.Year(), req.Days); err != nil {
		s.Logger.Error("failed to charge leave balance",
			zap.String("request_id", req.ID.Hex()),
			zap.Error(err))
		return err
	}
	return nil
}

// Cancel withdraws a still-pending request. The approval chain is removed so
// approvers no longer see orphaned steps.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if req == nil {
		return errors.New("leave request not found")
	}
	if req.MemberID != memberID {
		return errors.New("only the requester can cancel a leave request")
	}
	if req.Status != models.RequestStatusPending {
		return fmt.Errorf("cannot cancel a request that is already %s", req.Status)
	}

	if err := s.ApprovalService.DeleteApprovalChain(ctx, approval.ModuleLeaveRequest, id); err != nil {
		return err
	}
	if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusCancelled); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "leave_requests", id.Hex(), map[string]models.Change{
		"status": {Old: string(models.RequestStatusPending), New: string(models.RequestStatusCancelled)},
	})
	return nil
}

func (s *LeaveServiceImpl) GetBalance(ctx context.Context, tenantID, memberID primitive.ObjectID, year int) (*LeaveBalance, error) {
	return s.Repo.GetBalance(ctx, tenantID, memberID, year)
}

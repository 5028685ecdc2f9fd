package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/member"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryLeaveRepo struct {
	requests []LeaveRequest
	balances map[string]*LeaveBalance
}

func balanceKey(tenantID, memberID primitive.ObjectID, year int) string {
	return fmt.Sprintf("%s/%s/%d", tenantID.Hex(), memberID.Hex(), year)
}

func (r *memoryLeaveRepo) Create(_ context.Context, req *LeaveRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	r.requests = append(r.requests, *req)
	return nil
}

func (r *memoryLeaveRepo) FindByID(_ context.Context, id primitive.ObjectID) (*LeaveRequest, error) {
	for i := range r.requests {
		if r.requests[i].ID == id {
			req := r.requests[i]
			return &req, nil
		}
	}
	return nil, nil
}

func (r *memoryLeaveRepo) List(_ context.Context, tenantID primitive.ObjectID, _ bson.M, _, _ int64) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, req := range r.requests {
		if req.TenantID == tenantID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *memoryLeaveRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	for i := range r.requests {
		if r.requests[i].ID == id {
			r.requests[i].Status = status
		}
	}
	return nil
}

func (r *memoryLeaveRepo) GetBalance(_ context.Context, tenantID, memberID primitive.ObjectID, year int) (*LeaveBalance, error) {
	if r.balances == nil {
		r.balances = map[string]*LeaveBalance{}
	}
	key := balanceKey(tenantID, memberID, year)
	if b, ok := r.balances[key]; ok {
		copied := *b
		return &copied, nil
	}
	b := &LeaveBalance{TenantID: tenantID, MemberID: memberID, Year: year, Allowance: defaultAnnualAllowance}
	r.balances[key] = b
	copied := *b
	return &copied, nil
}

func (r *memoryLeaveRepo) AddUsedDays(ctx context.Context, tenantID, memberID primitive.ObjectID, year int, days float64) error {
	if _, err := r.GetBalance(ctx, tenantID, memberID, year); err != nil {
		return err
	}
	r.balances[balanceKey(tenantID, memberID, year)].Used += days
	return nil
}

// stubApproval overrides only the engine calls the leave service makes; the
// embedded interface panics on anything unexpected.
type stubApproval struct {
	approval.ApprovalService

	policy       *approval.ApprovalPolicy
	result       *approval.ProcessResult
	chainStarted bool
	chainDeleted bool
}

func (s *stubApproval) FindApplicablePolicy(context.Context, primitive.ObjectID, approval.Module, approval.MatchInput) (*approval.ApprovalPolicy, error) {
	return s.policy, nil
}

func (s *stubApproval) InitializeChain(context.Context, approval.Module, primitive.ObjectID, *approval.ApprovalPolicy, primitive.ObjectID, primitive.ObjectID) ([]approval.ApprovalStep, error) {
	s.chainStarted = true
	return nil, nil
}

func (s *stubApproval) ProcessEntityApproval(context.Context, approval.Module, primitive.ObjectID, primitive.ObjectID, approval.Action, string) (*approval.ProcessResult, error) {
	return s.result, nil
}

func (s *stubApproval) DeleteApprovalChain(context.Context, approval.Module, primitive.ObjectID) error {
	s.chainDeleted = true
	return nil
}

type stubMembers struct {
	member.MemberRepository
}

func (stubMembers) FindByID(context.Context, primitive.ObjectID) (*models.Member, error) {
	return &models.Member{Name: "Test Member"}, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(context.Context, models.AuditAction, string, string, map[string]models.Change) error {
	return nil
}

func (noopAudit) ListLogs(context.Context, map[string]interface{}, int64, int64) ([]models.AuditLog, error) {
	return nil, nil
}

func newLeaveService(repo *memoryLeaveRepo, engine *stubApproval) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		Repo:            repo,
		MemberRepo:      stubMembers{},
		ApprovalService: engine,
		AuditService:    noopAudit{},
		Logger:          zap.NewNop(),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  float64
	}{
		{"single weekday", date(2026, time.March, 2), date(2026, time.March, 2), 1},
		{"full work week", date(2026, time.March, 2), date(2026, time.March, 6), 5},
		{"spanning a weekend", date(2026, time.March, 6), date(2026, time.March, 9), 2},
		{"weekend only", date(2026, time.March, 7), date(2026, time.March, 8), 0},
		{"two full weeks", date(2026, time.March, 2), date(2026, time.March, 13), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := businessDays(tt.start, tt.end); got != tt.want {
				t.Errorf("businessDays() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateRequestStartsChain(t *testing.T) {
	repo := &memoryLeaveRepo{}
	engine := &stubApproval{policy: &approval.ApprovalPolicy{Name: "Short leave"}}
	svc := newLeaveService(repo, engine)

	req, err := svc.CreateRequest(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 4),
		Reason:    "family trip",
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	if req.Days != 3 {
		t.Errorf("Days = %v, want 3", req.Days)
	}
	if req.Status != models.RequestStatusPending {
		t.Errorf("Status = %s, want PENDING", req.Status)
	}
	if !engine.chainStarted {
		t.Error("a matching policy must start an approval chain")
	}
}

func TestCreateRequestAutoApprovesWithoutPolicy(t *testing.T) {
	tenantID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{}
	engine := &stubApproval{policy: nil}
	svc := newLeaveService(repo, engine)

	req, err := svc.CreateRequest(context.Background(), tenantID, memberID, CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 3),
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	if req.Status != models.RequestStatusApproved {
		t.Errorf("Status = %s, want APPROVED when no policy matches", req.Status)
	}
	if engine.chainStarted {
		t.Error("no chain should start without a policy")
	}

	balance, _ := repo.GetBalance(context.Background(), tenantID, memberID, 2026)
	if balance.Used != 2 {
		t.Errorf("balance used = %v, want 2 after auto-approval", balance.Used)
	}
}

func TestCreateRequestRejectsInsufficientBalance(t *testing.T) {
	tenantID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{balances: map[string]*LeaveBalance{
		balanceKey(tenantID, memberID, 2026): {
			TenantID: tenantID, MemberID: memberID, Year: 2026,
			Allowance: 25, Used: 24,
		},
	}}
	svc := newLeaveService(repo, &stubApproval{})

	_, err := svc.CreateRequest(context.Background(), tenantID, memberID, CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 4),
	})
	if err == nil {
		t.Fatal("expected an insufficient-balance error")
	}
	if len(repo.requests) != 0 {
		t.Error("no request row should be created when the balance check fails")
	}
}

func TestCreateRequestUnpaidSkipsBalanceCheck(t *testing.T) {
	tenantID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{balances: map[string]*LeaveBalance{
		balanceKey(tenantID, memberID, 2026): {
			TenantID: tenantID, MemberID: memberID, Year: 2026,
			Allowance: 25, Used: 25,
		},
	}}
	engine := &stubApproval{policy: nil}
	svc := newLeaveService(repo, engine)

	req, err := svc.CreateRequest(context.Background(), tenantID, memberID, CreateLeaveInput{
		Type:      LeaveTypeUnpaid,
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 6),
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	if req.Status != models.RequestStatusApproved {
		t.Errorf("Status = %s, want APPROVED", req.Status)
	}

	balance, _ := repo.GetBalance(context.Background(), tenantID, memberID, 2026)
	if balance.Used != 25 {
		t.Errorf("unpaid leave must not charge the balance, used = %v", balance.Used)
	}
}

func TestCreateRequestInvalidRange(t *testing.T) {
	svc := newLeaveService(&memoryLeaveRepo{}, &stubApproval{})

	_, err := svc.CreateRequest(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 4),
		EndDate:   date(2026, time.March, 2),
	})
	if err == nil {
		t.Error("expected an error for an inverted date range")
	}

	_, err = svc.CreateRequest(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 7),
		EndDate:   date(2026, time.March, 8),
	})
	if err == nil {
		t.Error("expected an error for a weekend-only range")
	}
}

func TestDecideFinalApprovalChargesBalance(t *testing.T) {
	tenantID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{}
	_ = repo.Create(context.Background(), &LeaveRequest{
		TenantID: tenantID, MemberID: memberID,
		Type:      LeaveTypeAnnual,
		StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 4),
		Days: 3, Status: models.RequestStatusPending,
	})
	id := repo.requests[0].ID

	engine := &stubApproval{result: &approval.ProcessResult{
		ChainExists: true, StepProcessed: true, IsChainComplete: true, AllApproved: true,
		Summary: &approval.ChainSummary{Status: approval.ChainStatusApproved},
	}}
	svc := newLeaveService(repo, engine)

	result, err := svc.Decide(context.Background(), tenantID, id, primitive.NewObjectID(), approval.ActionApprove, "ok")
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if !result.AllApproved {
		t.Fatal("expected the engine result to pass through")
	}

	updated, _ := repo.FindByID(context.Background(), id)
	if updated.Status != models.RequestStatusApproved {
		t.Errorf("request status = %s, want APPROVED", updated.Status)
	}
	balance, _ := repo.GetBalance(context.Background(), tenantID, memberID, 2026)
	if balance.Used != 3 {
		t.Errorf("balance used = %v, want 3 after final approval", balance.Used)
	}
}

func TestDecideRejectFlipsStatus(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{}
	_ = repo.Create(context.Background(), &LeaveRequest{
		TenantID: tenantID, MemberID: primitive.NewObjectID(),
		Type: LeaveTypeAnnual, Days: 2, Status: models.RequestStatusPending,
		StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 3),
	})
	id := repo.requests[0].ID

	engine := &stubApproval{result: &approval.ProcessResult{
		ChainExists: true, StepProcessed: true, IsChainComplete: true,
		Summary: &approval.ChainSummary{Status: approval.ChainStatusRejected},
	}}
	svc := newLeaveService(repo, engine)

	if _, err := svc.Decide(context.Background(), tenantID, id, primitive.NewObjectID(), approval.ActionReject, "no cover"); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	updated, _ := repo.FindByID(context.Background(), id)
	if updated.Status != models.RequestStatusRejected {
		t.Errorf("request status = %s, want REJECTED", updated.Status)
	}
}

func TestDecideLeavesStatusWhenStepNotProcessed(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{}
	_ = repo.Create(context.Background(), &LeaveRequest{
		TenantID: tenantID, MemberID: primitive.NewObjectID(),
		Type: LeaveTypeAnnual, Days: 1, Status: models.RequestStatusPending,
		StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 2),
	})
	id := repo.requests[0].ID

	engine := &stubApproval{result: &approval.ProcessResult{
		ChainExists: true, StepProcessed: false, Error: "not authorized",
	}}
	svc := newLeaveService(repo, engine)

	result, err := svc.Decide(context.Background(), tenantID, id, primitive.NewObjectID(), approval.ActionApprove, "")
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if result.StepProcessed {
		t.Fatal("expected an unprocessed result")
	}

	updated, _ := repo.FindByID(context.Background(), id)
	if updated.Status != models.RequestStatusPending {
		t.Errorf("request status = %s, want unchanged PENDING", updated.Status)
	}
}

func TestCancel(t *testing.T) {
	tenantID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	repo := &memoryLeaveRepo{}
	_ = repo.Create(context.Background(), &LeaveRequest{
		TenantID: tenantID, MemberID: memberID,
		Type: LeaveTypeAnnual, Days: 1, Status: models.RequestStatusPending,
		StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 2),
	})
	id := repo.requests[0].ID

	engine := &stubApproval{}
	svc := newLeaveService(repo, engine)

	if err := svc.Cancel(context.Background(), tenantID, id, primitive.NewObjectID()); err == nil {
		t.Error("a non-requester must not be able to cancel")
	}

	if err := svc.Cancel(context.Background(), tenantID, id, memberID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !engine.chainDeleted {
		t.Error("cancelling must remove the approval chain")
	}

	updated, _ := repo.FindByID(context.Background(), id)
	if updated.Status != models.RequestStatusCancelled {
		t.Errorf("request status = %s, want CANCELLED", updated.Status)
	}

	if err := svc.Cancel(context.Background(), tenantID, id, memberID); err == nil {
		t.Error("a cancelled request must not cancel again")
	}
}

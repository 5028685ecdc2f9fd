package approval

import (
	"context"
	"sort"
	"sync"
	"time"

	common_models "go-hrops/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// In-memory doubles mirroring the Mongo repositories' contracts, including
// the CAS semantics of ResolveStep.

type fakePolicyRepo struct {
	policies []ApprovalPolicy
}

func (f *fakePolicyRepo) Create(_ context.Context, policy *ApprovalPolicy) error {
	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
	}
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = time.Now()
	}
	f.policies = append(f.policies, *policy)
	return nil
}

func (f *fakePolicyRepo) GetByID(_ context.Context, tenantID primitive.ObjectID, id string) (*ApprovalPolicy, error) {
	for i := range f.policies {
		if f.policies[i].ID.Hex() == id && f.policies[i].TenantID == tenantID {
			p := f.policies[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePolicyRepo) ListActive(_ context.Context, tenantID primitive.ObjectID, module Module) ([]ApprovalPolicy, error) {
	var result []ApprovalPolicy
	for _, p := range f.policies {
		if p.TenantID == tenantID && p.Module == module && p.IsActive {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakePolicyRepo) List(_ context.Context, tenantID primitive.ObjectID) ([]ApprovalPolicy, error) {
	var result []ApprovalPolicy
	for _, p := range f.policies {
		if p.TenantID == tenantID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePolicyRepo) Update(_ context.Context, tenantID primitive.ObjectID, id string, policy *ApprovalPolicy) error {
	for i := range f.policies {
		if f.policies[i].ID.Hex() == id && f.policies[i].TenantID == tenantID {
			updated := *policy
			updated.ID = f.policies[i].ID
			updated.TenantID = tenantID
			f.policies[i] = updated
		}
	}
	return nil
}

func (f *fakePolicyRepo) SetActive(_ context.Context, tenantID primitive.ObjectID, id string, active bool) error {
	for i := range f.policies {
		if f.policies[i].ID.Hex() == id && f.policies[i].TenantID == tenantID {
			f.policies[i].IsActive = active
		}
	}
	return nil
}

func (f *fakePolicyRepo) Delete(_ context.Context, tenantID primitive.ObjectID, id string) error {
	for i := range f.policies {
		if f.policies[i].ID.Hex() == id && f.policies[i].TenantID == tenantID {
			f.policies = append(f.policies[:i], f.policies[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakePolicyRepo) CountByTenant(_ context.Context, tenantID primitive.ObjectID) (int64, error) {
	var n int64
	for _, p := range f.policies {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type fakeStepRepo struct {
	mu    sync.Mutex
	steps []ApprovalStep
}

func (f *fakeStepRepo) BulkInsert(_ context.Context, steps []ApprovalStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, s := range steps {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		s.CreatedAt = now
		f.steps = append(f.steps, s)
	}
	return nil
}

func (f *fakeStepRepo) FindByID(_ context.Context, id primitive.ObjectID) (*ApprovalStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.steps {
		if f.steps[i].ID == id {
			s := f.steps[i]
			return &s, nil
		}
	}
	return nil, ErrStepNotFound
}

func (f *fakeStepRepo) ListByEntity(_ context.Context, module Module, entityID primitive.ObjectID) ([]ApprovalStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []ApprovalStep
	for _, s := range f.steps {
		if s.Module == module && s.EntityID == entityID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LevelOrder < result[j].LevelOrder })
	return result, nil
}

func (f *fakeStepRepo) CurrentPending(ctx context.Context, module Module, entityID primitive.ObjectID) (*ApprovalStep, error) {
	steps, _ := f.ListByEntity(ctx, module, entityID)
	for i := range steps {
		if steps[i].Status == StepStatusPending {
			s := steps[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStepRepo) CountPending(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error) {
	steps, _ := f.ListByEntity(ctx, module, entityID)
	var n int64
	for _, s := range steps {
		if s.Status == StepStatusPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeStepRepo) CountByEntity(ctx context.Context, module Module, entityID primitive.ObjectID) (int64, error) {
	steps, _ := f.ListByEntity(ctx, module, entityID)
	return int64(len(steps)), nil
}

func (f *fakeStepRepo) ResolveStep(_ context.Context, id primitive.ObjectID, status StepStatus, approverID primitive.ObjectID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.steps {
		if f.steps[i].ID == id {
			if f.steps[i].Status != StepStatusPending {
				return ErrStepAlreadyProcessed
			}
			now := time.Now()
			f.steps[i].Status = status
			f.steps[i].ApproverID = &approverID
			f.steps[i].ActionAt = &now
			f.steps[i].Notes = notes
			return nil
		}
	}
	return ErrStepNotFound
}

func (f *fakeStepRepo) RejectCascade(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, notes string) error {
	if err := f.ResolveStep(ctx, step.ID, StepStatusRejected, approverID, notes); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i := range f.steps {
		if f.steps[i].Module == step.Module && f.steps[i].EntityID == step.EntityID && f.steps[i].Status == StepStatusPending {
			f.steps[i].Status = StepStatusSkipped
			f.steps[i].ActionAt = &now
		}
	}
	return nil
}

func (f *fakeStepRepo) ApproveAllPending(_ context.Context, module Module, entityID, adminID primitive.ObjectID, notes string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var n int64
	for i := range f.steps {
		if f.steps[i].Module == module && f.steps[i].EntityID == entityID && f.steps[i].Status == StepStatusPending {
			f.steps[i].Status = StepStatusApproved
			f.steps[i].ApproverID = &adminID
			f.steps[i].ActionAt = &now
			f.steps[i].Notes = notes
			n++
		}
	}
	return n, nil
}

func (f *fakeStepRepo) DeleteByEntity(_ context.Context, module Module, entityID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.steps[:0]
	for _, s := range f.steps {
		if !(s.Module == module && s.EntityID == entityID) {
			kept = append(kept, s)
		}
	}
	f.steps = kept
	return nil
}

type fakeEligibility struct {
	roles map[ApproverRole]bool
}

func (f *fakeEligibility) HasApproverForRole(_ context.Context, role ApproverRole, _, _ primitive.ObjectID) (bool, error) {
	return f.roles[role], nil
}

type fakeAuthorizer struct {
	allow  bool
	reason string
}

func (f *fakeAuthorizer) CanMemberApprove(_ context.Context, _ primitive.ObjectID, _ *ApprovalStep) (Authorization, error) {
	return Authorization{CanApprove: f.allow, Reason: f.reason}, nil
}

type fakeDirectory struct {
	approvers map[ApproverRole][]Approver
	names     map[primitive.ObjectID]string
}

func (f *fakeDirectory) GetApproversForRole(_ context.Context, role ApproverRole, _, _ primitive.ObjectID) ([]Approver, error) {
	return f.approvers[role], nil
}

func (f *fakeDirectory) MemberName(_ context.Context, id primitive.ObjectID) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", ErrMemberNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakePublisher) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) last() *Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	e := f.events[len(f.events)-1]
	return &e
}

type fakeAudit struct{}

func (fakeAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (fakeAudit) ListLogs(context.Context, map[string]interface{}, int64, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService(policyRepo *fakePolicyRepo, stepRepo *fakeStepRepo, eligibility *fakeEligibility, authorizer *fakeAuthorizer, publisher *fakePublisher) *ApprovalServiceImpl {
	if policyRepo == nil {
		policyRepo = &fakePolicyRepo{}
	}
	if stepRepo == nil {
		stepRepo = &fakeStepRepo{}
	}
	if eligibility == nil {
		eligibility = &fakeEligibility{roles: map[ApproverRole]bool{}}
	}
	if authorizer == nil {
		authorizer = &fakeAuthorizer{allow: true}
	}
	if publisher == nil {
		publisher = &fakePublisher{}
	}
	return &ApprovalServiceImpl{
		PolicyRepo:   policyRepo,
		StepRepo:     stepRepo,
		Eligibility:  eligibility,
		Authorizer:   authorizer,
		Directory:    &fakeDirectory{approvers: map[ApproverRole][]Approver{}, names: map[primitive.ObjectID]string{}},
		Publisher:    publisher,
		Resolvers:    map[Module]EntityResolver{},
		AuditService: fakeAudit{},
		Logger:       zap.NewNop(),
	}
}

func floatPtr(v float64) *float64 { return &v }

package approval

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFindApplicablePolicyBounds(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	short := &ApprovalPolicy{
		TenantID: tenantID, Module: ModuleLeaveRequest, Name: "Short leave",
		IsActive: true, Priority: 10,
		MinDays: floatPtr(0), MaxDays: floatPtr(2),
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	}
	long := &ApprovalPolicy{
		TenantID: tenantID, Module: ModuleLeaveRequest, Name: "Extended leave",
		IsActive: true, Priority: 5,
		MinDays: floatPtr(2),
		Levels:  []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}, {LevelOrder: 2, Role: RoleHRManager}},
	}
	_ = repo.Create(ctx, short)
	_ = repo.Create(ctx, long)

	tests := []struct {
		name string
		days float64
		want string
	}{
		{"half day falls in short band", 0.5, "Short leave"},
		{"upper bound inclusive, higher priority wins overlap", 2, "Short leave"},
		{"above short band", 3, "Extended leave"},
		{"open max admits large values", 30, "Extended leave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := tt.days
			got, err := svc.FindApplicablePolicy(ctx, tenantID, ModuleLeaveRequest, MatchInput{Days: &days})
			if err != nil {
				t.Fatalf("FindApplicablePolicy() error = %v", err)
			}
			if got == nil {
				t.Fatalf("expected a policy for %v days, got none", tt.days)
			}
			if got.Name != tt.want {
				t.Errorf("matched %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestFindApplicablePolicyNoMatch(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_ = repo.Create(ctx, &ApprovalPolicy{
		TenantID: tenantID, Module: ModuleLeaveRequest, Name: "Narrow band",
		IsActive: true, Priority: 1,
		MinDays: floatPtr(5), MaxDays: floatPtr(10),
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	})

	days := 2.0
	got, err := svc.FindApplicablePolicy(ctx, tenantID, ModuleLeaveRequest, MatchInput{Days: &days})
	if err != nil {
		t.Fatalf("FindApplicablePolicy() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected no match outside every band, got %q", got.Name)
	}
}

func TestFindApplicablePolicyNilValueReturnsFirstActive(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_ = repo.Create(ctx, &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "Low priority",
		IsActive: true, Priority: 1,
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	})
	_ = repo.Create(ctx, &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "High priority",
		IsActive: true, Priority: 9,
		MinAmount: floatPtr(1000),
		Levels:    []ApprovalLevel{{LevelOrder: 1, Role: RoleFinanceManager}},
	})

	got, err := svc.FindApplicablePolicy(ctx, tenantID, ModulePurchaseRequest, MatchInput{})
	if err != nil {
		t.Fatalf("FindApplicablePolicy() error = %v", err)
	}
	if got == nil || got.Name != "High priority" {
		t.Errorf("nil value should return the first active policy by priority, got %v", got)
	}
}

func TestFindApplicablePolicyTieBreakByCreation(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	older := &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "Older",
		IsActive: true, Priority: 5,
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	}
	newer := &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "Newer",
		IsActive: true, Priority: 5,
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	}
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer.CreatedAt = time.Now()
	_ = repo.Create(ctx, newer)
	_ = repo.Create(ctx, older)

	amount := 50.0
	got, err := svc.FindApplicablePolicy(ctx, tenantID, ModulePurchaseRequest, MatchInput{Amount: &amount})
	if err != nil {
		t.Fatalf("FindApplicablePolicy() error = %v", err)
	}
	if got == nil || got.Name != "Older" {
		t.Errorf("equal priority should break ties by creation time, got %v", got)
	}
}

func TestFindApplicablePolicyCriteriaScript(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_ = repo.Create(ctx, &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "Hardware only",
		IsActive: true, Priority: 10,
		CriteriaScript: `match := entity.category == "HARDWARE"`,
		Levels:         []ApprovalLevel{{LevelOrder: 1, Role: RoleFinanceManager}},
	})
	_ = repo.Create(ctx, &ApprovalPolicy{
		TenantID: tenantID, Module: ModulePurchaseRequest, Name: "Catch-all",
		IsActive: true, Priority: 1,
		Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
	})

	amount := 100.0

	got, err := svc.FindApplicablePolicy(ctx, tenantID, ModulePurchaseRequest, MatchInput{
		Amount:     &amount,
		EntityData: map[string]interface{}{"category": "HARDWARE"},
	})
	if err != nil {
		t.Fatalf("FindApplicablePolicy() error = %v", err)
	}
	if got == nil || got.Name != "Hardware only" {
		t.Errorf("script should admit hardware purchases, got %v", got)
	}

	got, err = svc.FindApplicablePolicy(ctx, tenantID, ModulePurchaseRequest, MatchInput{
		Amount:     &amount,
		EntityData: map[string]interface{}{"category": "TRAVEL"},
	})
	if err != nil {
		t.Fatalf("FindApplicablePolicy() error = %v", err)
	}
	if got == nil || got.Name != "Catch-all" {
		t.Errorf("script mismatch should fall through to the next policy, got %v", got)
	}
}

func TestValidatePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  ApprovalPolicy
		wantErr bool
	}{
		{
			name: "valid",
			policy: ApprovalPolicy{Name: "p", Levels: []ApprovalLevel{
				{LevelOrder: 1, Role: RoleManager}, {LevelOrder: 2, Role: RoleHRManager},
			}},
		},
		{
			name:    "no levels",
			policy:  ApprovalPolicy{Name: "p"},
			wantErr: true,
		},
		{
			name: "gap in level order",
			policy: ApprovalPolicy{Name: "p", Levels: []ApprovalLevel{
				{LevelOrder: 1, Role: RoleManager}, {LevelOrder: 3, Role: RoleHRManager},
			}},
			wantErr: true,
		},
		{
			name: "employee cannot approve",
			policy: ApprovalPolicy{Name: "p", Levels: []ApprovalLevel{
				{LevelOrder: 1, Role: RoleEmployee},
			}},
			wantErr: true,
		},
		{
			name: "inverted day bounds",
			policy: ApprovalPolicy{Name: "p",
				MinDays: floatPtr(5), MaxDays: floatPtr(2),
				Levels: []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePolicy(&tt.policy)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitializeChainFiltersIneligibleLevels(t *testing.T) {
	tenantID := primitive.NewObjectID()
	entityID := primitive.NewObjectID()
	requesterID := primitive.NewObjectID()

	stepRepo := &fakeStepRepo{}
	eligibility := &fakeEligibility{roles: map[ApproverRole]bool{
		RoleManager:   false,
		RoleHRManager: true,
	}}
	svc := newTestService(nil, stepRepo, eligibility, nil, nil)

	policy := &ApprovalPolicy{
		Levels: []ApprovalLevel{
			{LevelOrder: 1, Role: RoleManager},
			{LevelOrder: 2, Role: RoleHRManager},
		},
	}

	steps, err := svc.InitializeChain(context.Background(), ModuleLeaveRequest, entityID, policy, tenantID, requesterID)
	if err != nil {
		t.Fatalf("InitializeChain() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 surviving step, got %d", len(steps))
	}
	if steps[0].RequiredRole != RoleHRManager {
		t.Errorf("surviving role = %s, want HR_MANAGER", steps[0].RequiredRole)
	}
	if steps[0].LevelOrder != 1 {
		t.Errorf("surviving step must be renumbered to 1, got %d", steps[0].LevelOrder)
	}
	if steps[0].Status != StepStatusPending {
		t.Errorf("new step status = %s, want PENDING", steps[0].Status)
	}
}

func TestInitializeChainDirectorFallback(t *testing.T) {
	tenantID := primitive.NewObjectID()
	entityID := primitive.NewObjectID()
	requesterID := primitive.NewObjectID()

	stepRepo := &fakeStepRepo{}
	eligibility := &fakeEligibility{roles: map[ApproverRole]bool{}}
	svc := newTestService(nil, stepRepo, eligibility, nil, nil)

	policy := &ApprovalPolicy{
		Levels: []ApprovalLevel{
			{LevelOrder: 1, Role: RoleManager},
			{LevelOrder: 2, Role: RoleFinanceManager},
		},
	}

	steps, err := svc.InitializeChain(context.Background(), ModulePurchaseRequest, entityID, policy, tenantID, requesterID)
	if err != nil {
		t.Fatalf("InitializeChain() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected the synthesized director step, got %d steps", len(steps))
	}
	if steps[0].RequiredRole != RoleDirector {
		t.Errorf("fallback role = %s, want DIRECTOR", steps[0].RequiredRole)
	}
	if steps[0].LevelOrder != 1 {
		t.Errorf("fallback level order = %d, want 1", steps[0].LevelOrder)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name          string
		statuses      []StepStatus
		wantStatus    ChainStatus
		wantCurrent   int
		wantCompleted int
	}{
		{"empty chain", nil, ChainStatusNotStarted, 0, 0},
		{"all pending", []StepStatus{StepStatusPending, StepStatusPending}, ChainStatusPending, 1, 0},
		{"mid chain", []StepStatus{StepStatusApproved, StepStatusPending}, ChainStatusPending, 2, 1},
		{"all approved", []StepStatus{StepStatusApproved, StepStatusApproved}, ChainStatusApproved, 0, 2},
		{"rejection wins", []StepStatus{StepStatusApproved, StepStatusRejected, StepStatusSkipped}, ChainStatusRejected, 2, 3},
		{"rejected with skips counts all resolved", []StepStatus{StepStatusRejected, StepStatusSkipped, StepStatusSkipped}, ChainStatusRejected, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var steps []ApprovalStep
			for i, status := range tt.statuses {
				steps = append(steps, ApprovalStep{LevelOrder: i + 1, Status: status})
			}

			got := summarize(steps)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.CurrentStep != tt.wantCurrent {
				t.Errorf("CurrentStep = %d, want %d", got.CurrentStep, tt.wantCurrent)
			}
			if got.CompletedSteps != tt.wantCompleted {
				t.Errorf("CompletedSteps = %d, want %d", got.CompletedSteps, tt.wantCompleted)
			}
			if got.TotalSteps != len(tt.statuses) {
				t.Errorf("TotalSteps = %d, want %d", got.TotalSteps, len(tt.statuses))
			}
		})
	}
}

func TestSeedDefaultPoliciesIdempotent(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &fakePolicyRepo{}
	svc := newTestService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	if err := svc.SeedDefaultPolicies(ctx, tenantID); err != nil {
		t.Fatalf("SeedDefaultPolicies() error = %v", err)
	}
	first, _ := repo.CountByTenant(ctx, tenantID)
	if first == 0 {
		t.Fatal("expected seeded policies")
	}

	if err := svc.SeedDefaultPolicies(ctx, tenantID); err != nil {
		t.Fatalf("SeedDefaultPolicies() second run error = %v", err)
	}
	second, _ := repo.CountByTenant(ctx, tenantID)
	if second != first {
		t.Errorf("reseeding changed policy count from %d to %d", first, second)
	}
}

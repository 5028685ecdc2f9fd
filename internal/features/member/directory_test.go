package member

import (
	"context"
	"testing"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryMemberRepo keeps members in a slice; the approver queries mirror the
// Mongo filters (active, not deleted, excluding one id).
type memoryMemberRepo struct {
	members []models.Member
}

func (r *memoryMemberRepo) Create(_ context.Context, member *models.Member) error {
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	r.members = append(r.members, *member)
	return nil
}

func (r *memoryMemberRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Member, error) {
	for i := range r.members {
		if r.members[i].ID == id && !r.members[i].Deleted {
			m := r.members[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memoryMemberRepo) FindByEmailGlobal(_ context.Context, email string) (*models.Member, error) {
	for i := range r.members {
		if r.members[i].Email == email && !r.members[i].Deleted {
			m := r.members[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memoryMemberRepo) FindByIDs(_ context.Context, ids []string) ([]models.Member, error) {
	var out []models.Member
	for _, id := range ids {
		for _, m := range r.members {
			if m.ID.Hex() == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (r *memoryMemberRepo) List(_ context.Context, tenantID primitive.ObjectID) ([]models.Member, error) {
	var out []models.Member
	for _, m := range r.members {
		if m.TenantID == tenantID && !m.Deleted {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMemberRepo) Update(context.Context, primitive.ObjectID, bson.M) error { return nil }

func (r *memoryMemberRepo) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	for i := range r.members {
		if r.members[i].ID == id {
			r.members[i].Deleted = true
		}
	}
	return nil
}

func (r *memoryMemberRepo) approversWhere(tenantID, exclude primitive.ObjectID, pred func(models.Member) bool) []models.Member {
	var out []models.Member
	for _, m := range r.members {
		if m.TenantID == tenantID && m.ID != exclude && !m.Deleted && m.Status == models.MemberStatusActive && pred(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *memoryMemberRepo) FindWithHRAccess(_ context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.approversWhere(tenantID, exclude, func(m models.Member) bool { return m.HasHRAccess }), nil
}

func (r *memoryMemberRepo) FindWithFinanceAccess(_ context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.approversWhere(tenantID, exclude, func(m models.Member) bool { return m.HasFinanceAccess }), nil
}

func (r *memoryMemberRepo) FindAdmins(_ context.Context, tenantID, exclude primitive.ObjectID) ([]models.Member, error) {
	return r.approversWhere(tenantID, exclude, func(m models.Member) bool { return m.IsAdmin }), nil
}

func addMember(t *testing.T, repo *memoryMemberRepo, m models.Member) models.Member {
	t.Helper()
	if m.Status == "" {
		m.Status = models.MemberStatusActive
	}
	if err := repo.Create(context.Background(), &m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return m
}

func TestHasApproverForRole(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &memoryMemberRepo{}
	dir := NewDirectory(repo)
	ctx := context.Background()

	manager := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Manager", Email: "manager@test"})
	admin := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Admin", Email: "admin@test", IsAdmin: true})
	hr := addMember(t, repo, models.Member{TenantID: tenantID, Name: "HR", Email: "hr@test", HasHRAccess: true})
	managed := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Managed", Email: "managed@test", ManagerID: &manager.ID})
	orphan := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Orphan", Email: "orphan@test"})

	_ = admin

	tests := []struct {
		name      string
		role      approval.ApproverRole
		requester primitive.ObjectID
		want      bool
	}{
		{"manager exists for managed member", approval.RoleManager, managed.ID, true},
		{"no manager for orphan", approval.RoleManager, orphan.ID, false},
		{"hr manager present", approval.RoleHRManager, managed.ID, true},
		{"hr requester excluded from own level", approval.RoleHRManager, hr.ID, false},
		{"no finance manager", approval.RoleFinanceManager, managed.ID, false},
		{"director resolved from admins", approval.RoleDirector, managed.ID, true},
		{"employee is never an approver role", approval.RoleEmployee, managed.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.HasApproverForRole(ctx, tt.role, tenantID, tt.requester)
			if err != nil {
				t.Fatalf("HasApproverForRole() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasApproverForRole(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestCanMemberApprove(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &memoryMemberRepo{}
	dir := NewDirectory(repo)
	ctx := context.Background()

	manager := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Manager", Email: "manager@test"})
	otherManager := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Other", Email: "other@test"})
	admin := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Admin", Email: "admin@test", IsAdmin: true})
	hr := addMember(t, repo, models.Member{TenantID: tenantID, Name: "HR", Email: "hr@test", HasHRAccess: true})
	finance := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Finance", Email: "finance@test", HasFinanceAccess: true})
	requester := addMember(t, repo, models.Member{TenantID: tenantID, Name: "Requester", Email: "req@test", ManagerID: &manager.ID})

	step := func(role approval.ApproverRole) *approval.ApprovalStep {
		return &approval.ApprovalStep{
			TenantID:     tenantID,
			RequesterID:  requester.ID,
			RequiredRole: role,
			Status:       approval.StepStatusPending,
		}
	}

	tests := []struct {
		name  string
		actor primitive.ObjectID
		step  *approval.ApprovalStep
		want  bool
	}{
		{"direct manager approves manager step", manager.ID, step(approval.RoleManager), true},
		{"unrelated manager denied", otherManager.ID, step(approval.RoleManager), false},
		{"admin bypasses role check", admin.ID, step(approval.RoleManager), true},
		{"hr access approves hr step", hr.ID, step(approval.RoleHRManager), true},
		{"finance denied on hr step", finance.ID, step(approval.RoleHRManager), false},
		{"finance access approves finance step", finance.ID, step(approval.RoleFinanceManager), true},
		{"non-admin denied on director step", manager.ID, step(approval.RoleDirector), false},
		{"admin approves director step", admin.ID, step(approval.RoleDirector), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.CanMemberApprove(ctx, tt.actor, tt.step)
			if err != nil {
				t.Fatalf("CanMemberApprove() error = %v", err)
			}
			if got.CanApprove != tt.want {
				t.Errorf("CanApprove = %v (reason %q), want %v", got.CanApprove, got.Reason, tt.want)
			}
			if !got.CanApprove && got.Reason == "" {
				t.Error("a denial must carry a reason")
			}
		})
	}
}

func TestCanMemberApproveUnknownMember(t *testing.T) {
	repo := &memoryMemberRepo{}
	dir := NewDirectory(repo)

	_, err := dir.CanMemberApprove(context.Background(), primitive.NewObjectID(), &approval.ApprovalStep{
		RequiredRole: approval.RoleManager,
	})
	if err == nil {
		t.Fatal("expected an error for an unknown member")
	}
}

func TestGetApproversForRoleExcludesRequester(t *testing.T) {
	tenantID := primitive.NewObjectID()
	repo := &memoryMemberRepo{}
	dir := NewDirectory(repo)
	ctx := context.Background()

	hr1 := addMember(t, repo, models.Member{TenantID: tenantID, Name: "HR One", Email: "hr1@test", HasHRAccess: true})
	hr2 := addMember(t, repo, models.Member{TenantID: tenantID, Name: "HR Two", Email: "hr2@test", HasHRAccess: true})

	approvers, err := dir.GetApproversForRole(ctx, approval.RoleHRManager, tenantID, hr1.ID)
	if err != nil {
		t.Fatalf("GetApproversForRole() error = %v", err)
	}
	if len(approvers) != 1 || approvers[0].ID != hr2.ID {
		t.Errorf("approvers = %+v, want only HR Two", approvers)
	}
}

func TestCanMemberApproveOtherTenant(t *testing.T) {
	repo := &memoryMemberRepo{}
	dir := NewDirectory(repo)
	ctx := context.Background()

	tenantA := primitive.NewObjectID()
	tenantB := primitive.NewObjectID()
	adminA := addMember(t, repo, models.Member{TenantID: tenantA, Name: "Admin A", Email: "admin-a@test", IsAdmin: true})
	hrA := addMember(t, repo, models.Member{TenantID: tenantA, Name: "HR A", Email: "hr-a@test", HasHRAccess: true})

	foreignStep := &approval.ApprovalStep{
		TenantID:     tenantB,
		RequesterID:  primitive.NewObjectID(),
		RequiredRole: approval.RoleHRManager,
		Status:       approval.StepStatusPending,
	}

	for _, actor := range []models.Member{adminA, hrA} {
		got, err := dir.CanMemberApprove(ctx, actor.ID, foreignStep)
		if err != nil {
			t.Fatalf("CanMemberApprove() error = %v", err)
		}
		if got.CanApprove {
			t.Errorf("%s must not approve a step of another tenant", actor.Name)
		}
		if got.Reason == "" {
			t.Error("cross-tenant denial must carry a reason")
		}
	}

	ownStep := &approval.ApprovalStep{
		TenantID:     tenantA,
		RequesterID:  primitive.NewObjectID(),
		RequiredRole: approval.RoleHRManager,
		Status:       approval.StepStatusPending,
	}
	got, err := dir.CanMemberApprove(ctx, adminA.ID, ownStep)
	if err != nil {
		t.Fatalf("CanMemberApprove() error = %v", err)
	}
	if !got.CanApprove {
		t.Errorf("admin must still approve within their own tenant, denied with %q", got.Reason)
	}
}

package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrops/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func chainTestApp(svc ApprovalService, claims *utils.UserClaims) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(utils.UserClaimsKey, claims)
		return c.Next()
	})
	controller := NewApprovalController(svc)
	app.Get("/api/approvals/:module/:id/chain", controller.GetChain)
	app.Get("/api/approvals/:module/:id/summary", controller.GetChainSummary)
	app.Post("/api/approvals/:module/:id/bypass", controller.BypassApproval)
	app.Post("/api/approvals/:module/:id/:action", controller.ProcessApproval)
	return app
}

func claimsFor(memberID, tenantID primitive.ObjectID, admin bool) *utils.UserClaims {
	return &utils.UserClaims{MemberID: memberID.Hex(), TenantID: tenantID.Hex(), IsAdmin: admin}
}

func TestChainEndpointsHideOtherTenants(t *testing.T) {
	tenantA := primitive.NewObjectID()
	tenantB := primitive.NewObjectID()
	entityID := primitive.NewObjectID()

	stepRepo := &fakeStepRepo{}
	svc := newTestService(nil, stepRepo, nil, nil, nil)
	_ = stepRepo.BulkInsert(context.Background(), []ApprovalStep{{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantA,
		Module:       ModuleLeaveRequest,
		EntityID:     entityID,
		RequesterID:  primitive.NewObjectID(),
		LevelOrder:   1,
		RequiredRole: RoleManager,
		Status:       StepStatusPending,
	}})

	app := chainTestApp(svc, claimsFor(primitive.NewObjectID(), tenantB, true))
	base := "/api/approvals/LEAVE_REQUEST/" + entityID.Hex()

	requests := []*http.Request{
		httptest.NewRequest(fiber.MethodGet, base+"/chain", nil),
		httptest.NewRequest(fiber.MethodGet, base+"/summary", nil),
		httptest.NewRequest(fiber.MethodPost, base+"/bypass", nil),
		httptest.NewRequest(fiber.MethodPost, base+"/approve", nil),
	}
	for _, req := range requests {
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s error = %v", req.Method, req.URL.Path, err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404 for another tenant's chain", req.Method, req.URL.Path, resp.StatusCode)
		}
	}

	chain, _ := stepRepo.ListByEntity(context.Background(), ModuleLeaveRequest, entityID)
	if chain[0].Status != StepStatusPending {
		t.Errorf("step status = %s, a cross-tenant caller must not touch the chain", chain[0].Status)
	}
}

func TestChainEndpointsServeOwnTenant(t *testing.T) {
	tenantID := primitive.NewObjectID()
	entityID := primitive.NewObjectID()

	stepRepo := &fakeStepRepo{}
	svc := newTestService(nil, stepRepo, nil, nil, nil)
	_ = stepRepo.BulkInsert(context.Background(), []ApprovalStep{{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		Module:       ModuleLeaveRequest,
		EntityID:     entityID,
		RequesterID:  primitive.NewObjectID(),
		LevelOrder:   1,
		RequiredRole: RoleManager,
		Status:       StepStatusPending,
	}})

	app := chainTestApp(svc, claimsFor(primitive.NewObjectID(), tenantID, true))
	base := "/api/approvals/LEAVE_REQUEST/" + entityID.Hex()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, base+"/chain", nil))
	if err != nil {
		t.Fatalf("GET chain error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET chain status = %d, want 200", resp.StatusCode)
	}
	var chain []ApprovalStep
	if err := json.NewDecoder(resp.Body).Decode(&chain); err != nil {
		t.Fatalf("decoding chain: %v", err)
	}
	if len(chain) != 1 || chain[0].TenantID != tenantID {
		t.Errorf("chain = %+v, want the tenant's single step", chain)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, base+"/bypass", nil))
	if err != nil {
		t.Fatalf("POST bypass error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("POST bypass status = %d, want 200", resp.StatusCode)
	}

	steps, _ := stepRepo.ListByEntity(context.Background(), ModuleLeaveRequest, entityID)
	if steps[0].Status != StepStatusApproved {
		t.Errorf("step status = %s, want APPROVED after same-tenant bypass", steps[0].Status)
	}
}

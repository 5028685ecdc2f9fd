package main

import (
	"context"

	common_models "go-hrops/internal/common/models"
	"go-hrops/internal/config"
	"go-hrops/internal/database"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/audit"
	"go-hrops/internal/features/member"
	"go-hrops/internal/features/organization"
	"go-hrops/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// noopPublisher drops events; seeding happens before anyone listens.
type noopPublisher struct{}

func (noopPublisher) Publish(approval.Event) {}

type demoMember struct {
	email   string
	name    string
	admin   bool
	owner   bool
	hr      bool
	finance bool
	managed bool
}

// Seed provisions a demo tenant with a full approver hierarchy and the
// default policy set.
func Seed(
	lc fx.Lifecycle,
	orgRepo organization.OrganizationRepository,
	memberRepo member.MemberRepository,
	approvalService approval.ApprovalService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding demo tenant...")

				const slug = "demo-org"
				if existing, err := orgRepo.FindBySlug(ctx, slug); err == nil && existing != nil {
					logger.Info("Demo organization exists, skipping")
					return
				}

				ownerID := primitive.NewObjectID()
				org := &common_models.Organization{
					Name:    "Demo Organization",
					Slug:    slug,
					Plan:    "standard",
					OwnerID: ownerID,
				}
				if err := orgRepo.Create(ctx, org); err != nil {
					logger.Error("Failed to create organization", zap.Error(err))
					return
				}

				hashed, _ := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)

				seedMembers := []demoMember{
					{email: "owner@demo.test", name: "Olive Owner", admin: true, owner: true},
					{email: "manager@demo.test", name: "Morgan Manager", managed: false},
					{email: "hr@demo.test", name: "Harper HR", hr: true},
					{email: "finance@demo.test", name: "Frankie Finance", finance: true},
					{email: "employee@demo.test", name: "Emery Employee", managed: true},
				}

				var managerID primitive.ObjectID
				for _, sm := range seedMembers {
					m := &common_models.Member{
						TenantID: org.ID,
						Email:    sm.email,
						Name:     sm.name,
						Password: string(hashed),
						Status:   common_models.MemberStatusActive,
						IsAdmin:  sm.admin,
						IsOwner:  sm.owner,
					}
					if sm.owner {
						m.ID = ownerID
					}
					if sm.hr {
						m.HasHRAccess = true
					}
					if sm.finance {
						m.HasFinanceAccess = true
					}
					if sm.managed && !managerID.IsZero() {
						id := managerID
						m.ManagerID = &id
					}
					if err := memberRepo.Create(ctx, m); err != nil {
						logger.Error("Failed to create member", zap.String("email", sm.email), zap.Error(err))
						return
					}
					if sm.email == "manager@demo.test" {
						managerID = m.ID
					}
					logger.Info("Created member", zap.String("email", sm.email))
				}

				ctx := context.WithValue(ctx, common_models.TenantIDKey, org.ID.Hex())
				if err := approvalService.SeedDefaultPolicies(ctx, org.ID); err != nil {
					logger.Error("Failed to seed default policies", zap.Error(err))
					return
				}

				logger.Info("Demo tenant seeded", zap.String("tenant_id", org.ID.Hex()))
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,

			organization.NewOrganizationRepository,
			member.NewMemberRepository,
			audit.NewAuditRepository,
			approval.NewPolicyRepository,
			approval.NewStepRepository,

			member.NewDirectory,

			func(d *member.Directory) approval.EligibilityOracle { return d },
			func(d *member.Directory) approval.AuthorizationOracle { return d },
			func(d *member.Directory) approval.ApproverDirectory { return d },
			func(r member.MemberRepository) audit.MemberFinder { return r },
			func() approval.EventPublisher { return noopPublisher{} },

			audit.NewAuditService,
			fx.Annotate(
				approval.NewApprovalService,
				fx.ParamTags(``, ``, ``, ``, ``, ``, `group:"entity_resolvers"`, ``, ``),
			),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}

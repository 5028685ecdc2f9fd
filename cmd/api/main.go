package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-hrops/internal/common/api"
	"go-hrops/internal/config"
	"go-hrops/internal/database"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/asset"
	"go-hrops/internal/features/audit"
	"go-hrops/internal/features/auth"
	"go-hrops/internal/features/email"
	"go-hrops/internal/features/leave"
	"go-hrops/internal/features/member"
	"go-hrops/internal/features/notification"
	"go-hrops/internal/features/organization"
	"go-hrops/internal/features/purchase"
	"go-hrops/internal/features/report"
	"go-hrops/internal/features/settings"
	"go-hrops/internal/features/system"
	"go-hrops/internal/logger"
	"go-hrops/internal/middleware"

	_ "go-hrops/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// AsResolver tags an entity resolver constructor for the approval engine's
// polymorphic lookup group.
func AsResolver(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"entity_resolvers"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// @title           HR Ops API
// @version         1.0
// @description     Multi-tenant HR and operations approval platform.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			organization.NewOrganizationRepository,
			member.NewMemberRepository,
			audit.NewAuditRepository,
			approval.NewPolicyRepository,
			approval.NewStepRepository,
			leave.NewLeaveRepository,
			purchase.NewPurchaseRepository,
			asset.NewAssetRepository,
			notification.NewNotificationRepository,
			email.NewEmailRepository,
			settings.NewSettingsRepository,
			report.NewReportLogRepository,

			// Member directory backs the approval oracles
			member.NewDirectory,

			// Websocket hub and event dispatcher
			system.NewHub,
			notification.NewDispatcher,

			// Interface adapters to satisfy Fx and break import cycles
			func(d *member.Directory) approval.EligibilityOracle { return d },
			func(d *member.Directory) approval.AuthorizationOracle { return d },
			func(d *member.Directory) approval.ApproverDirectory { return d },
			func(r member.MemberRepository) audit.MemberFinder { return r },
			func(h *system.Hub) notification.Broadcaster { return h },
			func(d *notification.Dispatcher) approval.EventPublisher { return d },

			// Initialize Service
			audit.NewAuditService,
			fx.Annotate(
				approval.NewApprovalService,
				fx.ParamTags(``, ``, ``, ``, ``, ``, `group:"entity_resolvers"`, ``, ``),
			),
			auth.NewAuthService,
			member.NewMemberService,
			leave.NewLeaveService,
			purchase.NewPurchaseService,
			asset.NewAssetService,
			notification.NewNotificationService,
			settings.NewSettingsService,
			email.NewEmailService,
			report.NewReportService,
			report.NewScheduler,

			// Entity resolvers feed approval event metadata
			AsResolver(leave.NewLeaveResolver),
			AsResolver(purchase.NewPurchaseResolver),
			AsResolver(asset.NewAssetResolver),

			// Initialize Controller
			auth.NewAuthController,
			member.NewMemberController,
			audit.NewAuditController,
			approval.NewApprovalController,
			leave.NewLeaveController,
			purchase.NewPurchaseController,
			asset.NewAssetController,
			notification.NewNotificationController,
			settings.NewSettingsController,
			report.NewReportController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(member.NewMemberApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(approval.NewApprovalApi),
			AsRoute(leave.NewLeaveApi),
			AsRoute(purchase.NewPurchaseApi),
			AsRoute(asset.NewAssetApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(report.NewReportApi),
			AsRoute(system.NewWebSocketApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start. OnStop hooks run in reverse order, so
			// the dispatcher hook is appended before StartServer: the HTTP
			// server stops first and no request can publish to a closed
			// dispatcher.
			RegisterAllRoutesWithAnnotation,
			func(lc fx.Lifecycle, dispatcher *notification.Dispatcher) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						dispatcher.Close()
						return nil
					},
				})
			},
			func(lc fx.Lifecycle, scheduler *report.Scheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.Start()
					},
					OnStop: func(ctx context.Context) error {
						scheduler.Stop()
						return nil
					},
				})
			},
			StartServer,
		),
	)

	app.Run()
}

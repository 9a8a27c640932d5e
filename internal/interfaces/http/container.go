package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	billingUsecases "github.com/staffhub/staffhub/internal/application/billing/usecases"
	catalogUsecases "github.com/staffhub/staffhub/internal/application/catalog/usecases"
	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/domain/webhook"
	"github.com/staffhub/staffhub/internal/infrastructure/adapters"
	"github.com/staffhub/staffhub/internal/infrastructure/auth"
	"github.com/staffhub/staffhub/internal/infrastructure/cache"
	"github.com/staffhub/staffhub/internal/infrastructure/config"
	"github.com/staffhub/staffhub/internal/infrastructure/email"
	"github.com/staffhub/staffhub/internal/infrastructure/lock"
	"github.com/staffhub/staffhub/internal/infrastructure/metrics"
	infraPayment "github.com/staffhub/staffhub/internal/infrastructure/payment"
	"github.com/staffhub/staffhub/internal/infrastructure/permission"
	"github.com/staffhub/staffhub/internal/infrastructure/ratelimit"
	"github.com/staffhub/staffhub/internal/infrastructure/repository"
	"github.com/staffhub/staffhub/internal/infrastructure/scheduler"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
	"github.com/staffhub/staffhub/internal/shared/clock"
	shareddb "github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Container wires repositories, use cases, handlers and background jobs from
// the loaded configuration. Every command builds one; only the server serves
// its engine.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	clock  clock.Clock

	// Repositories
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	paymentRepo      payment.PaymentRepository
	invoiceRepo      invoice.InvoiceRepository
	webhookRepo      webhook.Repository

	// Infrastructure services
	metrics  *metrics.Metrics
	gateway  *infraPayment.RazorpayGateway
	locker   billingUsecases.Locker
	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer
	notifier billingUsecases.Notifier
	audit    billingUsecases.AuditRecorder

	// Use cases
	lifecycle *billingUsecases.Lifecycle
	billing   *billingUseCases
	catalog   *catalogUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware        *middleware.AuthMiddleware
	permissionMiddleware  *middleware.PermissionMiddleware
	entitlementMiddleware *middleware.EntitlementMiddleware
	rateLimiter           *middleware.TenantRateLimiter

	scheduler *scheduler.BillingScheduler
}

type billingUseCases struct {
	registerTrial *billingUsecases.RegisterTrialUseCase
	getCurrent    *billingUsecases.GetCurrentSubscriptionUseCase
	createOrder   *billingUsecases.CreateOrderUseCase
	settle        *billingUsecases.SettleCaptureUseCase
	verifyPayment *billingUsecases.VerifyPaymentUseCase
	ingestWebhook *billingUsecases.IngestWebhookUseCase
	changePlan    *billingUsecases.ChangePlanUseCase
	cancel        *billingUsecases.CancelSubscriptionUseCase
	reactivate    *billingUsecases.ReactivateUseCase
	entitlement   *billingUsecases.CheckEntitlementUseCase
	listInvoices  *billingUsecases.ListInvoicesUseCase
	reconcile     *billingUsecases.ReconcilePaymentsUseCase
}

type catalogUseCases struct {
	list       *catalogUsecases.ListPlansUseCase
	get        *catalogUsecases.GetPlanUseCase
	create     *catalogUsecases.CreatePlanUseCase
	update     *catalogUsecases.UpdatePlanUseCase
	deactivate *catalogUsecases.DeactivatePlanUseCase
	seed       *catalogUsecases.SeedPlansUseCase
}

type allHandlers struct {
	billing *handlers.BillingHandler
	plan    *handlers.PlanHandler
	webhook *handlers.WebhookHandler
	trial   *handlers.TrialHandler
	hr      *handlers.HRHandler
}

// NewContainer builds the object graph. Redis is optional: without it locks
// are process-local and checkout is not rate limited.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		clock:  clock.Real(),
	}

	if err := c.initInfrastructure(); err != nil {
		c.Shutdown()
		return nil, err
	}
	c.initBilling()
	c.initCatalog()
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	if c.cfg.Redis.Enabled {
		client, err := initRedis(c.cfg, c.log)
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.subscriptionRepo = repository.NewSubscriptionRepository(c.db, c.log)
	c.planRepo = cache.NewCachedPlanRepository(
		repository.NewPlanRepository(c.db, c.log),
		c.cfg.Billing.PlanCacheSize,
		c.cfg.Billing.PlanCacheTTL(),
		c.log,
	)
	c.paymentRepo = repository.NewPaymentRepository(c.db, c.log)
	c.invoiceRepo = repository.NewInvoiceRepository(c.db, c.log)
	c.webhookRepo = repository.NewWebhookEventRepository(c.db, c.log)

	c.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	c.metrics.RegisterSubscriptionGauge(c.subscriptionRepo, c.log)

	c.gateway = infraPayment.NewRazorpayGateway(infraPayment.RazorpayConfig{
		BaseURL:       c.cfg.Gateway.BaseURL,
		KeyID:         c.cfg.Gateway.KeyID,
		KeySecret:     c.cfg.Gateway.KeySecret,
		WebhookSecret: c.cfg.Gateway.WebhookSecret,
		Timeout:       c.cfg.Gateway.Timeout(),
	}, c.log)
	c.gateway.SetLatencyObserver(c.metrics.ObserveGatewayCall)

	if c.redis != nil {
		c.locker = lock.NewRedisLocker(
			c.redis,
			time.Duration(c.cfg.Redis.LockTTLSeconds)*time.Second,
			time.Duration(c.cfg.Redis.LockWaitSeconds)*time.Second,
			c.log,
		)
		c.rateLimiter = middleware.NewTenantRateLimiter(
			ratelimit.NewRedisRateLimiter(c.redis),
			ratelimit.RateLimitConfig{
				RequestsPerMinute: c.cfg.Billing.OrderRateLimitPerMinute,
				RequestsPerHour:   c.cfg.Billing.OrderRateLimitPerHour,
			},
			c.log,
		)
	} else {
		c.locker = lock.NewKeyedMutex()
	}

	enforcer, err := permission.NewEnforcer(c.db, c.cfg.Permission.ModelPath, c.log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := permission.InitBillingPermissions(enforcer, c.log); err != nil {
		return fmt.Errorf("failed to install billing permissions: %w", err)
	}
	c.enforcer = enforcer

	c.jwtSvc = auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.Issuer)

	notifiers := adapters.MultiNotifier{adapters.NewLogNotifier(c.log)}
	if c.cfg.Email.Enabled {
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host:        c.cfg.Email.SMTPHost,
			Port:        c.cfg.Email.SMTPPort,
			Username:    c.cfg.Email.SMTPUser,
			Password:    c.cfg.Email.SMTPPassword,
			FromAddress: c.cfg.Email.FromAddress,
			FromName:    c.cfg.Email.FromName,
			BaseURL:     c.cfg.Server.BaseURL,
		})
		notifiers = append(notifiers, email.NewBillingNotifier(
			sender,
			adapters.NewEmployeeRecipientResolver(c.db),
			c.cfg.Server.BaseURL,
			c.log,
		))
	}
	c.notifier = notifiers
	c.audit = adapters.NewGormAuditRecorder(c.db, c.log)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())

	return client, nil
}

func (c *Container) initBilling() {
	c.lifecycle = billingUsecases.NewLifecycle(
		c.subscriptionRepo,
		c.planRepo,
		adapters.NewEmployeeSeatCounter(c.db, c.log),
		c.locker,
		shareddb.NewTransactionManager(c.db),
		c.clock,
		c.cfg.Billing.GracePeriod(),
		c.log,
	)
	c.lifecycle.SetMetrics(c.metrics)

	uc := &billingUseCases{}
	uc.registerTrial = billingUsecases.NewRegisterTrialUseCase(c.subscriptionRepo, c.planRepo, c.lifecycle, c.log)
	uc.getCurrent = billingUsecases.NewGetCurrentSubscriptionUseCase(
		c.lifecycle, c.paymentRepo, c.cfg.Billing.RecentPaymentsLimit, c.log,
	)
	uc.createOrder = billingUsecases.NewCreateOrderUseCase(c.lifecycle, c.paymentRepo, c.gateway, c.log)
	uc.settle = billingUsecases.NewSettleCaptureUseCase(c.lifecycle, c.paymentRepo, c.invoiceRepo, c.gateway, c.log)
	uc.settle.SetTaxRate(decimal.NewFromFloat(c.cfg.Billing.TaxRate))
	uc.verifyPayment = billingUsecases.NewVerifyPaymentUseCase(c.gateway, c.paymentRepo, uc.settle, c.log)
	uc.verifyPayment.SetMetrics(c.metrics)
	uc.ingestWebhook = billingUsecases.NewIngestWebhookUseCase(
		c.gateway, c.lifecycle, c.paymentRepo, c.webhookRepo, uc.settle, c.log,
	)
	uc.changePlan = billingUsecases.NewChangePlanUseCase(c.lifecycle, c.log)
	uc.cancel = billingUsecases.NewCancelSubscriptionUseCase(c.lifecycle, c.log)
	uc.reactivate = billingUsecases.NewReactivateUseCase(c.lifecycle, c.log)
	uc.entitlement = billingUsecases.NewCheckEntitlementUseCase(c.lifecycle, c.log)
	uc.listInvoices = billingUsecases.NewListInvoicesUseCase(c.invoiceRepo, c.log)
	uc.reconcile = billingUsecases.NewReconcilePaymentsUseCase(
		c.lifecycle, c.paymentRepo, c.cfg.Billing.StalePaymentAge(), c.log,
	)

	for _, se := range []interface {
		SetNotifier(billingUsecases.Notifier)
		SetAuditRecorder(billingUsecases.AuditRecorder)
	}{uc.registerTrial, uc.createOrder, uc.settle, uc.ingestWebhook, uc.changePlan, uc.cancel, uc.reactivate} {
		se.SetNotifier(c.notifier)
		se.SetAuditRecorder(c.audit)
	}

	c.billing = uc
	c.scheduler = scheduler.NewBillingScheduler(uc.reconcile, c.cfg.Billing.ReconcileCron, c.log)
}

func (c *Container) initCatalog() {
	c.catalog = &catalogUseCases{
		list:       catalogUsecases.NewListPlansUseCase(c.planRepo, c.log),
		get:        catalogUsecases.NewGetPlanUseCase(c.planRepo, c.log),
		create:     catalogUsecases.NewCreatePlanUseCase(c.planRepo, c.clock, c.log),
		update:     catalogUsecases.NewUpdatePlanUseCase(c.planRepo, c.clock, c.log),
		deactivate: catalogUsecases.NewDeactivatePlanUseCase(c.planRepo, c.clock, c.log),
		seed:       catalogUsecases.NewSeedPlansUseCase(c.planRepo, c.clock, c.log),
	}
}

func (c *Container) initHandlers() {
	c.hdlrs = &allHandlers{
		billing: handlers.NewBillingHandler(
			c.billing.getCurrent,
			c.billing.createOrder,
			c.billing.verifyPayment,
			c.billing.changePlan,
			c.billing.cancel,
			c.billing.reactivate,
			c.billing.listInvoices,
			c.log,
		),
		plan: handlers.NewPlanHandler(
			c.catalog.list,
			c.catalog.get,
			c.catalog.create,
			c.catalog.update,
			c.catalog.deactivate,
			c.log,
		),
		webhook: handlers.NewWebhookHandler(c.billing.ingestWebhook, c.log),
		trial:   handlers.NewTrialHandler(c.billing.registerTrial, c.log),
		hr:      handlers.NewHRHandler(),
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, c.log)
	c.entitlementMiddleware = middleware.NewEntitlementMiddleware(c.billing.entitlement, c.log)
}

// Engine returns the Gin engine. Call SetupRoutes first.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// JWT returns the token service, used by the CLI to mint development tokens.
func (c *Container) JWT() *auth.JWTService {
	return c.jwtSvc
}

// Reconciler returns the stale-order sweep for one-shot runs.
func (c *Container) Reconciler() *billingUsecases.ReconcilePaymentsUseCase {
	return c.billing.reconcile
}

// PlanSeeder returns the catalog upsert used at startup and by the CLI.
func (c *Container) PlanSeeder() *catalogUsecases.SeedPlansUseCase {
	return c.catalog.seed
}

// StartScheduler starts the cron-driven reconciliation sweep.
func (c *Container) StartScheduler(ctx context.Context) error {
	return c.scheduler.Start(ctx)
}

// Shutdown stops background jobs and releases connections. The database is
// owned by the caller.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}

package provider

import (
	"github.com/talowa-app/internal/authz"
	"github.com/talowa-app/internal/cache"
	"github.com/talowa-app/internal/config"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/queue"
	"github.com/talowa-app/internal/repository"
	"github.com/talowa-app/internal/service"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	ReferralCodeRepo repository.ReferralCodeRepository
	ReferralRepo     repository.ReferralRepository
	RoleChangeRepo   repository.RoleChangeRepository
	PaymentRepo      repository.MembershipPaymentRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CaptchaService      *service.CaptchaService
	ReferralCodeService *service.ReferralCodeService
	ChainService        *service.ReferralChainService
	RoleService         *service.RoleService
	ActivationService   *service.ActivationService
	OrphanService       *service.OrphanService
	StatsService        *service.ReferralStatsService
	PaymentService      *service.PaymentService
	NotificationService *service.NotificationService
	MemberService       *service.MemberService
}

// NewContainer builds the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ReferralCodeRepo = repository.NewReferralCodeRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.RoleChangeRepo = repository.NewRoleChangeRepository(db)
	c.PaymentRepo = repository.NewMembershipPaymentRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	referralCfg := c.Config.Referral

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.NotificationService = service.NewNotificationService(c.QueueClient, c.NotificationRepo)
	c.ReferralCodeService = service.NewReferralCodeService(c.ReferralCodeRepo, c.UserRepo, referralCfg.CodeSuffixLength, referralCfg.CodeMaxAttempts)
	c.ChainService = service.NewReferralChainService(c.UserRepo, c.ReferralCodeRepo, c.ReferralRepo)
	c.RoleService = service.NewRoleService(c.UserRepo, c.RoleChangeRepo, c.NotificationService, referralCfg.ZonalTeamSize)
	c.ActivationService = service.NewActivationService(c.UserRepo, c.ReferralRepo, c.RoleService)
	c.OrphanService = service.NewOrphanService(c.UserRepo, c.ChainService, c.NotificationService, referralCfg.OrphanRadiusKm, referralCfg.AdminUserID)
	c.StatsService = service.NewReferralStatsService(c.UserRepo, c.ReferralRepo, c.RoleService, referralCfg.StatsRecentLimit)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.UserRepo, c.ActivationService, c.Config.Payment.WebhookSecret)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ChainService)
	c.MemberService = service.NewMemberService(c.UserRepo, c.ReferralRepo)
}

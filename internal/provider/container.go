package provider

import (
	"github.com/haatbazar/internal/authz"
	"github.com/haatbazar/internal/cache"
	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/payment/sslcommerz"
	"github.com/haatbazar/internal/queue"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	AdminRepo         repository.AdminRepository
	CustomerRepo      repository.CustomerRepository
	RiderRepo         repository.RiderRepository
	AddressRepo       repository.AddressRepository
	PaymentMethodRepo repository.PaymentMethodRepository
	ProductRepo       repository.ProductRepository
	TagRepo           repository.TagRepository
	CartRepo          repository.CartRepository
	WishlistRepo      repository.WishlistRepository
	OrderRepo         repository.OrderRepository
	PaymentRepo       repository.PaymentRepository
	ShippingRepo      repository.ShippingRepository
	CouponRepo        repository.CouponRepository
	CouponRedeemRepo  repository.CouponRedeemRepository
	ReviewRepo        repository.ReviewRepository
	SearchHistoryRepo repository.SearchHistoryRepository
	DeliveryRepo      repository.DeliveryRepository

	// Services
	Authz                *authz.Service
	AuthService          *service.AuthService
	UserAuthService      *service.UserAuthService
	CaptchaService       *service.CaptchaService
	CustomerService      *service.CustomerService
	AdminService         *service.AdminService
	ProductService       *service.ProductService
	TagService           *service.TagService
	CartService          *service.CartService
	WishlistService      *service.WishlistService
	AddressService       *service.AddressService
	PaymentMethodService *service.PaymentMethodService
	CouponService        *service.CouponService
	OrderService         *service.OrderService
	PaymentService       *service.PaymentService
	ReviewService        *service.ReviewService
	SearchService        *service.SearchService
	DeliveryService      *service.DeliveryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.RiderRepo = repository.NewRiderRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.PaymentMethodRepo = repository.NewPaymentMethodRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.TagRepo = repository.NewTagRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.WishlistRepo = repository.NewWishlistRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.ShippingRepo = repository.NewShippingRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponRedeemRepo = repository.NewCouponRedeemRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.SearchHistoryRepo = repository.NewSearchHistoryRepository(db)
	c.DeliveryRepo = repository.NewDeliveryRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.Authz = authzService
	if err := c.Authz.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.UserRepo, c.AdminRepo, c.CaptchaService, c.Config.JWT.SecretKey, c.Config.JWT.ExpireMinutes)
	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.CustomerRepo, c.RiderRepo, c.Config.UserJWT.SecretKey, c.Config.UserJWT.ExpireMinutes)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo, c.UserRepo)
	c.AdminService = service.NewAdminService(c.AdminRepo, c.UserRepo)
	c.TagService = service.NewTagService(c.TagRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.TagRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.WishlistService = service.NewWishlistService(c.WishlistRepo, c.ProductRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.PaymentMethodService = service.NewPaymentMethodService(c.PaymentMethodRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponRedeemRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.AddressRepo, c.PaymentRepo, c.PaymentMethodRepo, c.CouponRepo, c.CouponRedeemRepo, c.ShippingRepo, c.CouponService, c.QueueClient, c.Config.Order.PaymentExpireMinutes)
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.PaymentRepo, c.CustomerRepo, c.AddressRepo, c.OrderService, gatewayConfig(&c.Config.Gateway))
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo, c.OrderRepo)
	c.SearchService = service.NewSearchService(c.ProductRepo, c.SearchHistoryRepo)
	c.DeliveryService = service.NewDeliveryService(c.DeliveryRepo, c.RiderRepo, c.UserRepo, c.OrderRepo, c.OrderService)
}

// gatewayConfig 将应用配置转换为网关客户端配置，未配置商户号时返回 nil。
func gatewayConfig(cfg *config.GatewayConfig) *sslcommerz.Config {
	if cfg == nil || cfg.StoreID == "" {
		return nil
	}
	return &sslcommerz.Config{
		StoreID:       cfg.StoreID,
		StorePassword: cfg.StorePassword,
		Sandbox:       cfg.Sandbox,
		SuccessURL:    cfg.SuccessURL,
		FailURL:       cfg.FailURL,
		CancelURL:     cfg.CancelURL,
		IPNURL:        cfg.IPNURL,
	}
}

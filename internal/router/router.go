package router

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haatbazar/internal/cache"
	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/constants"
	adminhandlers "github.com/haatbazar/internal/http/handlers/admin"
	publichandlers "github.com/haatbazar/internal/http/handlers/public"
	riderhandlers "github.com/haatbazar/internal/http/handlers/rider"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/provider"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/骑手/后台分组）
	publicHandler := publichandlers.New(c)
	riderHandler := riderhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/products/:id/reviews", publicHandler.ListProductReviews)
			public.GET("/products/:id/rating", publicHandler.ProductRatingStats)
			public.GET("/tags", publicHandler.ListTags)
			public.GET("/search", publicHandler.SearchProducts)
		}

		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), publicHandler.LoginCustomer)
			auth.POST("/rider/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), publicHandler.LoginRider)
		}

		// 支付网关回调（由网关服务端/浏览器发起，不带用户令牌）
		payments := apiV1.Group("/payments/sslcommerz")
		{
			payments.POST("/ipn", publicHandler.PaymentIPN)
			payments.POST("/success", publicHandler.PaymentSuccessReturn)
			payments.POST("/fail", publicHandler.PaymentFailReturn)
			payments.POST("/cancel", publicHandler.PaymentCancelReturn)
			payments.GET("/success", publicHandler.PaymentSuccessReturn)
			payments.GET("/fail", publicHandler.PaymentFailReturn)
			payments.GET("/cancel", publicHandler.PaymentCancelReturn)
		}

		// 顾客接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.PUT("/me/password", publicHandler.ChangePassword)

			customer := user.Group("")
			customer.Use(RequireCustomer())
			{
				customer.GET("/me", publicHandler.Profile)
				customer.PUT("/me/profile", publicHandler.UpdateProfile)
				customer.GET("/me/search-history", publicHandler.SearchHistoryList)
				customer.DELETE("/me/search-history", publicHandler.ClearSearchHistory)

				customer.GET("/cart", publicHandler.GetCart)
				customer.POST("/cart/items", publicHandler.AddCartItem)
				customer.PUT("/cart/items/:product_id", publicHandler.UpdateCartItem)
				customer.DELETE("/cart/items/:product_id", publicHandler.RemoveCartItem)
				customer.DELETE("/cart", publicHandler.ClearCart)
				customer.GET("/cart/totals", publicHandler.CartTotals)
				customer.POST("/coupons/validate", publicHandler.ValidateCoupon)

				customer.GET("/wishlist", publicHandler.GetWishlist)
				customer.POST("/wishlist/items", publicHandler.AddWishlistItem)
				customer.DELETE("/wishlist/items/:product_id", publicHandler.RemoveWishlistItem)

				customer.GET("/addresses", publicHandler.ListAddresses)
				customer.POST("/addresses", publicHandler.CreateAddress)
				customer.PUT("/addresses/:id", publicHandler.UpdateAddress)
				customer.POST("/addresses/:id/default", publicHandler.SetDefaultAddress)
				customer.DELETE("/addresses/:id", publicHandler.DeleteAddress)

				customer.GET("/payment-methods", publicHandler.ListPaymentMethods)
				customer.POST("/payment-methods", publicHandler.CreatePaymentMethod)
				customer.POST("/payment-methods/:id/default", publicHandler.SetDefaultPaymentMethod)
				customer.DELETE("/payment-methods/:id", publicHandler.DeletePaymentMethod)

				customer.POST("/orders", publicHandler.Checkout)
				customer.GET("/orders", publicHandler.ListOrders)
				customer.GET("/orders/:order_no", publicHandler.GetOrder)
				customer.POST("/orders/:order_no/cancel", publicHandler.CancelOrder)
				customer.POST("/orders/:order_no/payment/session", publicHandler.CreatePaymentSession)
				customer.GET("/orders/:order_no/payment", publicHandler.GetPayment)

				customer.POST("/products/:id/reviews", publicHandler.SubmitReview)
				customer.DELETE("/products/:id/reviews", publicHandler.DeleteReview)
			}

			// 骑手接口
			riderGroup := user.Group("/rider")
			riderGroup.Use(RequireRider())
			{
				riderGroup.GET("/assignments", riderHandler.ListAssignments)
				riderGroup.POST("/assignments/:assignment_no/accept", riderHandler.AcceptAssignment)
				riderGroup.POST("/assignments/:assignment_no/reject", riderHandler.RejectAssignment)
				riderGroup.POST("/assignments/:assignment_no/start", riderHandler.StartAssignment)
				riderGroup.POST("/assignments/:assignment_no/deliver", riderHandler.DeliverAssignment)
			}
		}

		// 后台接口
		apiV1.POST("/admin/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.Login)
		apiV1.GET("/admin/captcha", adminHandler.Captcha)

		admin := apiV1.Group("/admin")
		admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
		admin.Use(AdminRBACMiddleware(c.Authz))
		{
			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/products/:id/tags/:tag_id", adminHandler.AttachProductTag)
			admin.DELETE("/products/:id/tags/:tag_id", adminHandler.DetachProductTag)

			admin.GET("/tags", adminHandler.ListTags)
			admin.POST("/tags", adminHandler.CreateTag)
			admin.PUT("/tags/:id", adminHandler.UpdateTag)
			admin.DELETE("/tags/:id", adminHandler.DeleteTag)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:order_no", adminHandler.GetOrder)
			admin.GET("/orders/:order_no/trail", adminHandler.OrderTrail)
			admin.PATCH("/orders/:order_no/status", adminHandler.UpdateOrderStatus)
			admin.PUT("/orders/:order_no/shipping", adminHandler.UpsertShipping)
			admin.POST("/orders/:order_no/assignments", adminHandler.AssignOrder)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.GET("/coupons/:id", adminHandler.GetCoupon)
			admin.PUT("/coupons/:id", adminHandler.UpdateCoupon)
			admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)
			admin.GET("/coupon-redeems", adminHandler.ListCouponRedeems)

			admin.GET("/customers", adminHandler.ListCustomers)
			admin.GET("/customers/:id", adminHandler.GetCustomer)

			admin.GET("/riders", adminHandler.ListRiders)
			admin.POST("/riders", adminHandler.CreateRider)
			admin.PUT("/riders/:id", adminHandler.UpdateRider)
			admin.GET("/assignments", adminHandler.ListAssignments)

			admin.GET("/admins", adminHandler.ListAdmins)
			admin.POST("/admins", adminHandler.CreateAdmin)
			admin.PUT("/admins/:id/role", adminHandler.UpdateAdminRole)
			admin.DELETE("/admins/:id", adminHandler.RemoveAdmin)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

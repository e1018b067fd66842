package public

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/payment/sslcommerz"
	"github.com/haatbazar/internal/provider"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testStorePassword = "haatbazar_test@ssl"

func setupPaymentHandlerTest(t *testing.T) (*Handler, *service.OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Address{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatus{},
		&models.Payment{},
		&models.PaymentMethod{},
		&models.Coupon{},
		&models.CouponRedeem{},
		&models.ShippingInfo{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	redeemRepo := repository.NewCouponRedeemRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	couponSvc := service.NewCouponService(couponRepo, redeemRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, paymentRepo, methodRepo, couponRepo, redeemRepo, shippingRepo, couponSvc, nil, 15)

	gatewayCfg := &sslcommerz.Config{
		StoreID:       "haatbazar_test",
		StorePassword: testStorePassword,
		Sandbox:       true,
		SuccessURL:    "https://shop.example.com/pay/success",
		FailURL:       "https://shop.example.com/pay/fail",
		CancelURL:     "https://shop.example.com/pay/cancel",
		IPNURL:        "https://shop.example.com/api/v1/payments/sslcommerz/ipn",
	}
	paymentSvc := service.NewPaymentService(orderRepo, paymentRepo, repository.NewCustomerRepository(db), addressRepo, orderSvc, gatewayCfg)

	container := &provider.Container{
		Config: &config.Config{
			Gateway: config.GatewayConfig{
				FrontendFailURL:    "https://shop.example.com/checkout/failed",
				FrontendSuccessURL: "https://shop.example.com/checkout/done",
				FrontendCancelURL:  "https://shop.example.com/checkout/cancelled",
			},
		},
		OrderService:   orderSvc,
		PaymentService: paymentSvc,
	}
	return New(container), orderSvc, db
}

func signedGatewayForm(fields map[string]string) url.Values {
	form := url.Values{}
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		form.Set(key, value)
		keys = append(keys, key)
	}
	sort.Strings(keys)
	form.Set("verify_key", strings.Join(keys, ","))

	params := map[string]string{}
	for _, key := range keys {
		params[key] = fields[key]
	}
	passSum := md5.Sum([]byte(testStorePassword))
	params["store_passwd"] = hex.EncodeToString(passSum[:])

	sorted := make([]string, 0, len(params))
	for key := range params {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	pairs := make([]string, 0, len(sorted))
	for _, key := range sorted {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, params[key]))
	}
	sum := md5.Sum([]byte(strings.Join(pairs, "&")))
	form.Set("verify_sign", hex.EncodeToString(sum[:]))
	return form
}

func seedPendingOrder(t *testing.T, orderSvc *service.OrderService, db *gorm.DB, customerID uint) *models.Order {
	t.Helper()
	product := &models.Product{
		Name:  "Turmeric Powder 500g",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Stock: 5,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	address := &models.Address{CustomerID: customerID, Line1: "House 3, Road 9", City: "Dhaka", IsDefault: true}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	cart := &models.Cart{CustomerID: customerID, IsActive: true}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if err := db.Create(&models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	order, err := orderSvc.Checkout(customerID, service.CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeMobile,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return order
}

func postForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentIPNUnknownOrderReturns200(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := setupPaymentHandlerTest(t)
	r := gin.New()
	r.POST("/ipn", h.PaymentIPN)

	form := signedGatewayForm(map[string]string{
		"tran_id": "ord_unknown_order",
		"status":  "FAILED",
	})
	w := postForm(t, r, "/ipn", form)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown order, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Fatalf("expected ignored marker in body, got %s", w.Body.String())
	}
}

func TestPaymentIPNTamperedSignatureReturns400(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, orderSvc, db := setupPaymentHandlerTest(t)
	order := seedPendingOrder(t, orderSvc, db, 601)
	r := gin.New()
	r.POST("/ipn", h.PaymentIPN)

	form := signedGatewayForm(map[string]string{
		"tran_id": order.OrderNo,
		"status":  "FAILED",
	})
	form.Set("status", "VALID")
	w := postForm(t, r, "/ipn", form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered signature, got %d", w.Code)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPending {
		t.Fatalf("expected order untouched, got %s", reloaded.Status)
	}
}

func TestPaymentFailReturnAppliesStateBeforeRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, orderSvc, db := setupPaymentHandlerTest(t)
	order := seedPendingOrder(t, orderSvc, db, 602)
	r := gin.New()
	r.POST("/fail", h.PaymentFailReturn)

	form := signedGatewayForm(map[string]string{
		"tran_id": order.OrderNo,
		"status":  "FAILED",
	})
	w := postForm(t, r, "/fail", form)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", w.Code)
	}
	location := w.Header().Get("Location")
	if !strings.Contains(location, "checkout/failed") || !strings.Contains(location, order.OrderNo) {
		t.Fatalf("unexpected redirect target: %s", location)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled order after fail return, got %s", reloaded.Status)
	}
	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %s", payment.Status)
	}

	var stock models.Product
	if err := db.Where("name = ?", "Turmeric Powder 500g").First(&stock).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", stock.Stock)
	}
}

package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/payment/sslcommerz"
	"github.com/haatbazar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func gatewayTestConfig() *sslcommerz.Config {
	return &sslcommerz.Config{
		StoreID:       "haatbazar_test",
		StorePassword: "haatbazar_test@ssl",
		Sandbox:       true,
		SuccessURL:    "https://shop.example.com/pay/success",
		FailURL:       "https://shop.example.com/pay/fail",
		CancelURL:     "https://shop.example.com/pay/cancel",
		IPNURL:        "https://shop.example.com/api/v1/payments/sslcommerz/ipn",
	}
}

func setupPaymentServiceTest(t *testing.T, cfg *sslcommerz.Config) (*PaymentService, *OrderService, *gorm.DB) {
	t.Helper()
	orderSvc, db := setupOrderServiceTest(t)
	svc := NewPaymentService(
		repository.NewOrderRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewAddressRepository(db),
		orderSvc,
		cfg,
	)
	return svc, orderSvc, db
}

// signedCallbackForm 构造带合法 verify_sign 的网关回调表单
func signedCallbackForm(password string, fields map[string]string) url.Values {
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
	passSum := md5.Sum([]byte(password))
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

func seedPaidableOrder(t *testing.T, orderSvc *OrderService, db *gorm.DB, customerID uint, couponCode string) (*models.Order, *models.Product) {
	t.Helper()
	product, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(100), 5, 2)
	order, err := orderSvc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		CouponCode: couponCode,
		MethodType: constants.PaymentMethodTypeMobile,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return order, product
}

func TestHandleIPNFailureCancelsOrder(t *testing.T) {
	cfg := gatewayTestConfig()
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	customerID := uint(501)

	now := time.Now()
	coupon := &models.Coupon{
		Code:      "SAVE50",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
		IsActive:  true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, product := seedPaidableOrder(t, orderSvc, db, customerID, "SAVE50")

	form := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "FAILED",
	})
	result, err := svc.HandleIPN(context.Background(), form)
	if err != nil {
		t.Fatalf("failed IPN errored: %v", err)
	}
	if result.OrderStatus != constants.OrderStatusCancelled || result.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("unexpected callback result: %+v", result)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled order, got %s", reloaded.Status)
	}

	var stock models.Product
	if err := db.First(&stock, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", stock.Stock)
	}

	var redeems int64
	if err := db.Model(&models.CouponRedeem{}).Where("order_id = ?", order.ID).Count(&redeems).Error; err != nil {
		t.Fatalf("count redeems failed: %v", err)
	}
	if redeems != 0 {
		t.Fatalf("expected redeem reversed, got %d rows", redeems)
	}
	var reloadedCoupon models.Coupon
	if err := db.First(&reloadedCoupon, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloadedCoupon.UsedCount != 0 {
		t.Fatalf("expected used_count 0, got %d", reloadedCoupon.UsedCount)
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %s", payment.Status)
	}

	// 重复投递同一失败通知是幂等的
	again, err := svc.HandleIPN(context.Background(), form)
	if err != nil {
		t.Fatalf("redelivered IPN errored: %v", err)
	}
	if again.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("unexpected redelivery result: %+v", again)
	}
	if err := db.First(&stock, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("expected stock unchanged on redelivery, got %d", stock.Stock)
	}
}

func TestHandleIPNCancelRestoresPendingOrder(t *testing.T) {
	cfg := gatewayTestConfig()
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	order, product := seedPaidableOrder(t, orderSvc, db, 502, "")

	form := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "CANCELLED",
	})
	result, err := svc.HandleIPN(context.Background(), form)
	if err != nil {
		t.Fatalf("cancel IPN errored: %v", err)
	}
	if result.OrderStatus != constants.OrderStatusCancelled || result.PaymentStatus != constants.PaymentStatusCancelled {
		t.Fatalf("unexpected callback result: %+v", result)
	}

	var stock models.Product
	if err := db.First(&stock, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", stock.Stock)
	}
}

func validatorStub(t *testing.T, amount string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"VALID","tran_id":"%s","val_id":"%s","amount":"%s","currency":"BDT"}`,
			r.URL.Query().Get("val_id"), r.URL.Query().Get("val_id"), amount)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHandleIPNSuccessMarksOrderPaid(t *testing.T) {
	cfg := gatewayTestConfig()
	cfg.BaseURL = validatorStub(t, "200.00").URL
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	order, _ := seedPaidableOrder(t, orderSvc, db, 503, "")

	form := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "VALID",
		"val_id":  "VAL-20250901-01",
	})
	result, err := svc.HandleIPN(context.Background(), form)
	if err != nil {
		t.Fatalf("success IPN errored: %v", err)
	}
	if result.OrderStatus != constants.OrderStatusPaid || result.PaymentStatus != constants.PaymentStatusSuccess {
		t.Fatalf("unexpected callback result: %+v", result)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPaid || reloaded.PaidAt == nil {
		t.Fatalf("expected paid order with paid_at, got %+v", reloaded)
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusSuccess || payment.ProviderRef != "VAL-20250901-01" {
		t.Fatalf("unexpected payment: status=%s ref=%s", payment.Status, payment.ProviderRef)
	}

	var trail []models.OrderStatus
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&trail).Error; err != nil {
		t.Fatalf("load trail failed: %v", err)
	}
	if len(trail) != 2 || trail[1].Status != constants.OrderStatusPaid || trail[1].AdminID != constants.SystemActorID {
		t.Fatalf("unexpected trail: %+v", trail)
	}

	// IPN 先到、回跳重放：重复成功通知只补记元数据
	again, err := svc.HandleIPN(context.Background(), form)
	if err != nil {
		t.Fatalf("redelivered success IPN errored: %v", err)
	}
	if again.PaymentStatus != constants.PaymentStatusSuccess {
		t.Fatalf("unexpected redelivery result: %+v", again)
	}
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&trail).Error; err != nil {
		t.Fatalf("reload trail failed: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected no extra trail entries, got %d", len(trail))
	}
}

func TestHandleIPNFailureAfterSuccessKeepsOrderPaid(t *testing.T) {
	cfg := gatewayTestConfig()
	cfg.BaseURL = validatorStub(t, "200.00").URL
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	order, product := seedPaidableOrder(t, orderSvc, db, 504, "")

	success := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "VALID",
		"val_id":  "VAL-20250901-02",
	})
	if _, err := svc.HandleIPN(context.Background(), success); err != nil {
		t.Fatalf("success IPN errored: %v", err)
	}

	failed := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "FAILED",
	})
	result, err := svc.HandleIPN(context.Background(), failed)
	if err != nil {
		t.Fatalf("late failed IPN errored: %v", err)
	}
	if result.PaymentStatus != constants.PaymentStatusSuccess {
		t.Fatalf("expected terminal success to win, got %+v", result)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPaid {
		t.Fatalf("expected order to stay paid, got %s", reloaded.Status)
	}
	var stock models.Product
	if err := db.First(&stock, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 3 {
		t.Fatalf("expected reserved stock untouched, got %d", stock.Stock)
	}
}

func TestHandleIPNConflictingTerminalStates(t *testing.T) {
	cfg := gatewayTestConfig()
	cfg.BaseURL = validatorStub(t, "200.00").URL
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	order, _ := seedPaidableOrder(t, orderSvc, db, 505, "")

	// 支付已被并发回调置为失败后成功通知不得改写终态
	if err := db.Model(&models.Payment{}).Where("order_id = ?", order.ID).
		Update("status", constants.PaymentStatusFailed).Error; err != nil {
		t.Fatalf("force failed payment: %v", err)
	}
	success := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "VALID",
		"val_id":  "VAL-20250901-03",
	})
	_, err := svc.HandleIPN(context.Background(), success)
	var transition *IllegalTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if transition.From != constants.PaymentStatusFailed {
		t.Fatalf("expected transition from failed, got %+v", transition)
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusFailed {
		t.Fatalf("expected payment to remain failed, got %s", payment.Status)
	}
}

func TestHandleIPNRejectsBadInput(t *testing.T) {
	cfg := gatewayTestConfig()
	svc, orderSvc, db := setupPaymentServiceTest(t, cfg)
	order, _ := seedPaidableOrder(t, orderSvc, db, 506, "")

	// 签名被篡改
	tampered := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": order.OrderNo,
		"status":  "FAILED",
	})
	tampered.Set("status", "VALID")
	if _, err := svc.HandleIPN(context.Background(), tampered); !errors.Is(err, ErrCallbackSignInvalid) {
		t.Fatalf("expected ErrCallbackSignInvalid, got %v", err)
	}

	// 未知订单：验签通过但不落账
	unknown := signedCallbackForm(cfg.StorePassword, map[string]string{
		"tran_id": "ord_unknown",
		"status":  "FAILED",
	})
	if _, err := svc.HandleIPN(context.Background(), unknown); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPending {
		t.Fatalf("expected order untouched, got %s", reloaded.Status)
	}
}

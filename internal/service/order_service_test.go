package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	couponSvc := NewCouponService(couponRepo, redeemRepo)

	svc := NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, paymentRepo, methodRepo, couponRepo, redeemRepo, shippingRepo, couponSvc, nil, 15)
	return svc, db
}

func seedCheckoutFixture(t *testing.T, db *gorm.DB, customerID uint, price decimal.Decimal, stock, quantity int) (*models.Product, *models.Address) {
	t.Helper()
	product := &models.Product{
		Name:  "Miniket Rice 25kg",
		Price: models.NewMoneyFromDecimal(price),
		Stock: stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	address := &models.Address{
		CustomerID: customerID,
		Line1:      "House 12, Road 5",
		City:       "Dhaka",
		IsDefault:  true,
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	cart := &models.Cart{CustomerID: customerID, IsActive: true}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if quantity > 0 {
		item := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: quantity}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}
	return product, address
}

func TestCheckoutCreatesOrderAndReservesStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(101)
	product, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(100), 5, 2)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.OrderNo == "" {
		t.Fatalf("expected order no to be generated")
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected subtotal 200, got %s", order.Subtotal)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total 200, got %s", order.TotalAmount)
	}
	if order.ExpiresAt == nil || !order.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", order.ExpiresAt)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(order.Items))
	}
	if order.Items[0].ProductName != product.Name {
		t.Fatalf("expected product name snapshot %q, got %q", product.Name, order.Items[0].ProductName)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock 3 after reservation, got %d", reloaded.Stock)
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusInitiated {
		t.Fatalf("expected initiated payment, got %s", payment.Status)
	}

	var cart models.Cart
	if err := db.Where("customer_id = ? AND is_active = ?", customerID, true).First(&cart).Error; err == nil {
		t.Fatalf("expected cart to be retired after checkout")
	}

	var trail []models.OrderStatus
	if err := db.Where("order_id = ?", order.ID).Find(&trail).Error; err != nil {
		t.Fatalf("load status trail failed: %v", err)
	}
	if len(trail) != 1 || trail[0].Status != constants.OrderStatusPending {
		t.Fatalf("expected single pending trail entry, got %+v", trail)
	}
}

func TestCheckoutOutOfStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(102)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(50), 1, 3)

	_, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeMobile,
	})
	var oos *OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("expected OutOfStockError, got %v", err)
	}
	if oos.Available != 1 {
		t.Fatalf("expected available 1, got %d", oos.Available)
	}
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected errors.Is to match ErrOutOfStock")
	}

	// 事务回滚后不应留下订单
	var count int64
	db.Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no order after rollback, got %d", count)
	}
}

func TestCheckoutWithFixedCoupon(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(103)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(150), 10, 2)

	now := time.Now()
	coupon := &models.Coupon{
		Code:      "WELCOME50",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
		IsActive:  true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		CouponCode: "WELCOME50",
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout with coupon failed: %v", err)
	}
	if !order.DiscountAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected discount 50, got %s", order.DiscountAmount)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total 250, got %s", order.TotalAmount)
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatalf("expected coupon id %d on order, got %v", coupon.ID, order.CouponID)
	}

	var redeem models.CouponRedeem
	if err := db.Where("order_id = ?", order.ID).First(&redeem).Error; err != nil {
		t.Fatalf("load redeem failed: %v", err)
	}
	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(104)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(10), 5, 0)

	_, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutRejectsUnknownMethodType(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)
	_, err := svc.Checkout(1, CheckoutInput{AddressID: 1, MethodType: "bitcoin"})
	if !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("expected ErrPaymentMethodInvalid, got %v", err)
	}
}

func TestCheckoutAddressNotOwned(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	_, address := seedCheckoutFixture(t, db, 105, decimal.NewFromInt(20), 5, 1)

	// 其他顾客的地址不可用
	_, err := svc.Checkout(999, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if !errors.Is(err, ErrAddressNotOwned) {
		t.Fatalf("expected ErrAddressNotOwned, got %v", err)
	}
}

func TestCancelByCustomerRestoresStockAndCoupon(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(106)
	product, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(200), 4, 2)

	now := time.Now()
	coupon := &models.Coupon{
		Code:      "CANCEL20",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
		IsActive:  true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		CouponCode: "CANCEL20",
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	canceled, err := svc.CancelByCustomer(order.OrderNo, customerID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", canceled.Status)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 4 {
		t.Fatalf("expected stock restored to 4, got %d", reloaded.Stock)
	}

	var redeemCount int64
	db.Model(&models.CouponRedeem{}).Where("order_id = ?", order.ID).Count(&redeemCount)
	if redeemCount != 0 {
		t.Fatalf("expected redeem removed, got %d", redeemCount)
	}
	var reloadedCoupon models.Coupon
	if err := db.First(&reloadedCoupon, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloadedCoupon.UsedCount != 0 {
		t.Fatalf("expected used count back to 0, got %d", reloadedCoupon.UsedCount)
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusCancelled {
		t.Fatalf("expected cancelled payment, got %s", payment.Status)
	}
}

func TestCancelByCustomerRejectsPaidOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(107)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(30), 5, 1)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if _, err := svc.UpdateStatus(order.OrderNo, constants.OrderStatusPaid, 1); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	_, err = svc.CancelByCustomer(order.OrderNo, customerID)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	var ite *IllegalTransitionError
	if !errors.As(err, &ite) || ite.From != constants.OrderStatusPaid {
		t.Fatalf("expected transition error from paid, got %v", err)
	}
}

func TestUpdateStatusFullLifecycle(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(108)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(80), 5, 1)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	paid, err := svc.UpdateStatus(order.OrderNo, constants.OrderStatusPaid, 7)
	if err != nil {
		t.Fatalf("transition to paid failed: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("load payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusSuccess {
		t.Fatalf("expected success payment after offline confirm, got %s", payment.Status)
	}

	if _, err := svc.UpdateStatus(order.OrderNo, constants.OrderStatusShipped, 7); err != nil {
		t.Fatalf("transition to shipped failed: %v", err)
	}
	if _, err := svc.UpdateStatus(order.OrderNo, constants.OrderStatusDelivered, 7); err != nil {
		t.Fatalf("transition to delivered failed: %v", err)
	}

	// 已送达订单不可再取消
	_, err = svc.UpdateStatus(order.OrderNo, constants.OrderStatusCancelled, 7)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	trail, err := svc.Trail(order.OrderNo)
	if err != nil {
		t.Fatalf("trail failed: %v", err)
	}
	if len(trail) != 4 {
		t.Fatalf("expected 4 trail entries, got %d", len(trail))
	}
	if trail[1].AdminID != 7 {
		t.Fatalf("expected admin id 7 on paid trail entry, got %d", trail[1].AdminID)
	}
}

func TestUpdateStatusSkipsStage(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(109)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(10), 5, 1)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// pending 不可直接跳到 shipped
	_, err = svc.UpdateStatus(order.OrderNo, constants.OrderStatusShipped, 1)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestHandleTimeoutCancel(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(110)
	product, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(60), 3, 1)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// 未过期订单保持不变
	if err := svc.HandleTimeoutCancel(order.ID); err != nil {
		t.Fatalf("timeout handler failed: %v", err)
	}
	var untouched models.Order
	if err := db.First(&untouched, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if untouched.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending before expiry, got %s", untouched.Status)
	}

	past := time.Now().Add(-time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}
	if err := svc.HandleTimeoutCancel(order.ID); err != nil {
		t.Fatalf("timeout cancel failed: %v", err)
	}

	var canceled models.Order
	if err := db.First(&canceled, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled after expiry, got %s", canceled.Status)
	}
	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock restored to 3, got %d", reloaded.Stock)
	}

	// 已取消订单重复投递无副作用
	if err := svc.HandleTimeoutCancel(order.ID); err != nil {
		t.Fatalf("second timeout delivery failed: %v", err)
	}
}

func TestUpsertShipping(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	customerID := uint(111)
	_, address := seedCheckoutFixture(t, db, customerID, decimal.NewFromInt(40), 5, 1)

	order, err := svc.Checkout(customerID, CheckoutInput{
		AddressID:  address.ID,
		MethodType: constants.PaymentMethodTypeCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// 待支付订单不可登记配送信息
	_, err = svc.UpsertShipping(order.OrderNo, ShippingInput{CourierService: "Pathao"})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for pending order, got %v", err)
	}

	if _, err := svc.UpdateStatus(order.OrderNo, constants.OrderStatusPaid, 1); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	info, err := svc.UpsertShipping(order.OrderNo, ShippingInput{
		CourierService: "Pathao Courier",
		TrackingID:     "PC-1001",
	})
	if err != nil {
		t.Fatalf("upsert shipping failed: %v", err)
	}
	if info.ID == 0 || info.TrackingID != "PC-1001" {
		t.Fatalf("unexpected shipping info: %+v", info)
	}

	updated, err := svc.UpsertShipping(order.OrderNo, ShippingInput{
		CourierService: "Pathao Courier",
		TrackingID:     "PC-1002",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if updated.ID != info.ID {
		t.Fatalf("expected same shipping row, got %d vs %d", updated.ID, info.ID)
	}

	var count int64
	db.Model(&models.ShippingInfo{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected single shipping row, got %d", count)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusPaid, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusPaid, constants.OrderStatusShipped, true},
		{constants.OrderStatusPaid, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPaid, constants.OrderStatusDelivered, false},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusCancelled, false},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPaid, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCheckoutConcurrentDoesNotOversell(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	product := &models.Product{
		Name:  "Hilsha Fish 1kg",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(1200)),
		Stock: 1,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	customers := []uint{701, 702}
	addressIDs := make(map[uint]uint, len(customers))
	for _, customerID := range customers {
		address := &models.Address{CustomerID: customerID, Line1: "Flat 4B, Banani", City: "Dhaka", IsDefault: true}
		if err := db.Create(address).Error; err != nil {
			t.Fatalf("create address failed: %v", err)
		}
		addressIDs[customerID] = address.ID
		cart := &models.Cart{CustomerID: customerID, IsActive: true}
		if err := db.Create(cart).Error; err != nil {
			t.Fatalf("create cart failed: %v", err)
		}
		if err := db.Create(&models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}).Error; err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	results := make(chan error, len(customers))
	for _, customerID := range customers {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Checkout(id, CheckoutInput{
				AddressID:  addressIDs[id],
				MethodType: constants.PaymentMethodTypeCOD,
			})
			results <- err
		}(customerID)
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		}
	}
	if successes > 1 {
		t.Fatalf("expected at most one successful checkout, got %d", successes)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 1-successes {
		t.Fatalf("expected stock %d after %d checkouts, got %d", 1-successes, successes, reloaded.Stock)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != int64(successes) {
		t.Fatalf("expected %d orders, got %d", successes, orderCount)
	}
}

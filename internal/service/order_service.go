package service

import (
	"errors"
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/queue"
	"github.com/haatbazar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	addressRepo   repository.AddressRepository
	paymentRepo   repository.PaymentRepository
	methodRepo    repository.PaymentMethodRepository
	couponRepo    repository.CouponRepository
	redeemRepo    repository.CouponRedeemRepository
	shippingRepo  repository.ShippingRepository
	couponService *CouponService
	queueClient   *queue.Client
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, addressRepo repository.AddressRepository, paymentRepo repository.PaymentRepository, methodRepo repository.PaymentMethodRepository, couponRepo repository.CouponRepository, redeemRepo repository.CouponRedeemRepository, shippingRepo repository.ShippingRepository, couponService *CouponService, queueClient *queue.Client, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		addressRepo:   addressRepo,
		paymentRepo:   paymentRepo,
		methodRepo:    methodRepo,
		couponRepo:    couponRepo,
		redeemRepo:    redeemRepo,
		shippingRepo:  shippingRepo,
		couponService: couponService,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
	}
}

func (s *OrderService) resolveExpireMinutes() int {
	if s.expireMinutes > 0 {
		return s.expireMinutes
	}
	return 15
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	AddressID  uint
	CouponCode string
	MethodType string
	MethodID   *uint
}

func validMethodType(methodType string) bool {
	switch methodType {
	case constants.PaymentMethodTypeCreditCard,
		constants.PaymentMethodTypeDebitCard,
		constants.PaymentMethodTypeMobile,
		constants.PaymentMethodTypeCOD:
		return true
	}
	return false
}

// Checkout 将顾客当前购物车结算为订单
// 锁库存、核销优惠券、建立支付记录与初始状态轨迹在同一事务内完成
func (s *OrderService) Checkout(customerID uint, input CheckoutInput) (*models.Order, error) {
	if !validMethodType(input.MethodType) {
		return nil, ErrPaymentMethodInvalid
	}

	address, err := s.addressRepo.GetByIDAndCustomer(input.AddressID, customerID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotOwned
	}

	if input.MethodID != nil {
		method, err := s.methodRepo.GetByIDAndCustomer(*input.MethodID, customerID)
		if err != nil {
			return nil, err
		}
		if method == nil {
			return nil, ErrPaymentMethodNotFound
		}
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// 以当前商品价格为准生成快照
	productIDs := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		product, ok := productByID[cartItem.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if cartItem.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    cartItem.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
	}

	subtotalMoney := models.NewMoneyFromDecimal(subtotal)
	discount := models.Money{Decimal: decimal.Zero}
	var quote *CouponQuote
	if strings.TrimSpace(input.CouponCode) != "" {
		quote, err = s.couponService.Validate(input.CouponCode, customerID, subtotalMoney)
		if err != nil {
			return nil, err
		}
		discount = quote.Discount
	}

	expireMinutes := s.resolveExpireMinutes()
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)
	total := models.NewMoneyFromDecimal(subtotal.Sub(discount.Decimal))

	order := &models.Order{
		OrderNo:        generateOrderNo(),
		CustomerID:     customerID,
		AddressID:      address.ID,
		Status:         constants.OrderStatusPending,
		Subtotal:       subtotalMoney,
		DiscountAmount: discount,
		TotalAmount:    total,
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if quote != nil {
		order.CouponID = &quote.Coupon.ID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		for _, item := range items {
			affected, err := productRepo.ReserveStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				available := 0
				if current, err := productRepo.GetByID(item.ProductID); err == nil && current != nil {
					available = current.Stock
				}
				return &OutOfStockError{ProductID: item.ProductID, Available: available}
			}
		}

		if err := orderRepo.Create(order, items); err != nil {
			return err
		}
		if err := appendStatusTrail(orderRepo, order.ID, constants.SystemActorID, constants.OrderStatusPending, now); err != nil {
			return err
		}

		payment := &models.Payment{
			OrderID:    order.ID,
			MethodID:   input.MethodID,
			MethodType: input.MethodType,
			Amount:     total,
			Status:     constants.PaymentStatusInitiated,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}

		if quote != nil {
			redeemRepo := s.redeemRepo.WithTx(tx)
			couponRepo := s.couponRepo.WithTx(tx)
			redeem := &models.CouponRedeem{
				CouponID:       quote.Coupon.ID,
				OrderID:        order.ID,
				CustomerID:     customerID,
				DiscountAmount: discount,
				CreatedAt:      now,
			}
			if err := redeemRepo.Create(redeem); err != nil {
				return err
			}
			affected, err := couponRepo.IncrementUsedCount(quote.Coupon.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				// 校验后、落库前被并发兑换占满
				return ErrCouponUsageLimit
			}
		}

		return cartRepo.Retire(cart.ID)
	})
	if err != nil {
		var oos *OutOfStockError
		if errors.As(err, &oos) {
			return nil, oos
		}
		if errors.Is(err, ErrCouponUsageLimit) {
			return nil, err
		}
		return nil, ErrOrderCreateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, time.Duration(expireMinutes)*time.Minute); err != nil {
			logger.Errorw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
			full, fetchErr := s.orderRepo.GetByID(order.ID)
			if fetchErr != nil || full == nil {
				logger.Errorw("order_fetch_for_timeout_rollback_failed",
					"order_id", order.ID,
					"order_no", order.OrderNo,
					"error", fetchErr,
				)
			} else if cancelErr := s.cancelTx(full, constants.SystemActorID); cancelErr != nil {
				logger.Errorw("order_timeout_rollback_cancel_failed",
					"order_id", order.ID,
					"order_no", order.OrderNo,
					"error", cancelErr,
				)
			}
			return nil, ErrQueueUnavailable
		}
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// cancelTx 在单个事务内取消订单并回滚其副作用
func (s *OrderService) cancelTx(order *models.Order, adminID uint) error {
	now := time.Now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		return s.cancelInTx(tx, order, adminID, now)
	})
}

// cancelInTx 在既有事务内取消订单：回补库存、撤销优惠券兑换、关闭未完成支付
func (s *OrderService) cancelInTx(tx *gorm.DB, order *models.Order, adminID uint, now time.Time) error {
	orderRepo := s.orderRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	paymentRepo := s.paymentRepo.WithTx(tx)

	updates := map[string]interface{}{
		"canceled_at": now,
		"updated_at":  now,
	}
	if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, updates); err != nil {
		return err
	}
	if err := appendStatusTrail(orderRepo, order.ID, adminID, constants.OrderStatusCancelled, now); err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if order.CouponID != nil {
		redeemRepo := s.redeemRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)
		if err := redeemRepo.DeleteByOrderID(order.ID); err != nil {
			return err
		}
		if err := couponRepo.DecrementUsedCount(*order.CouponID); err != nil {
			return err
		}
	}

	payment, err := paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		return err
	}
	if payment != nil && payment.Status == constants.PaymentStatusInitiated {
		if err := paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
			"status":     constants.PaymentStatusCancelled,
			"updated_at": now,
		}); err != nil {
			return err
		}
	}
	return nil
}

// CancelByCustomer 顾客取消未支付订单
func (s *OrderService) CancelByCustomer(orderNo string, customerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndCustomer(orderNo, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, &IllegalTransitionError{From: order.Status, To: constants.OrderStatusCancelled}
	}
	if err := s.cancelTx(order, constants.SystemActorID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// UpdateStatus 管理员流转订单状态
func (s *OrderService) UpdateStatus(orderNo, target string, adminID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(order.Status, target) {
		return nil, &IllegalTransitionError{From: order.Status, To: target}
	}

	if target == constants.OrderStatusCancelled {
		if err := s.cancelTx(order, adminID); err != nil {
			return nil, err
		}
		return s.orderRepo.GetByID(order.ID)
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if target == constants.OrderStatusPaid {
		updates["paid_at"] = now
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
			return err
		}
		if err := appendStatusTrail(orderRepo, order.ID, adminID, target, now); err != nil {
			return err
		}
		if target == constants.OrderStatusPaid {
			// 线下确认收款（如货到付款）同步登记支付成功
			paymentRepo := s.paymentRepo.WithTx(tx)
			payment, err := paymentRepo.GetByOrderID(order.ID)
			if err != nil {
				return err
			}
			if payment != nil && payment.Status == constants.PaymentStatusInitiated {
				if err := paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
					"status":     constants.PaymentStatusSuccess,
					"paid_at":    now,
					"updated_at": now,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// HandleTimeoutCancel 处理超时未支付订单（队列触发）
func (s *OrderService) HandleTimeoutCancel(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	if order.Status != constants.OrderStatusPending {
		return nil
	}
	if order.ExpiresAt != nil && time.Now().Before(*order.ExpiresAt) {
		return nil
	}
	if err := s.cancelTx(order, constants.SystemActorID); err != nil {
		return err
	}
	logger.Infow("order_timeout_canceled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return nil
}

// GetForCustomer 顾客查询自己的订单
func (s *OrderService) GetForCustomer(orderNo string, customerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndCustomer(orderNo, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Get 管理员查询订单
func (s *OrderService) Get(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForCustomer 顾客分页查询订单
func (s *OrderService) ListForCustomer(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByCustomer(filter)
}

// ListAdmin 管理员分页查询订单
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// Trail 查询订单状态轨迹
func (s *OrderService) Trail(orderNo string) ([]models.OrderStatus, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.orderRepo.ListStatusTrail(order.ID)
}

// ShippingInput 配送信息输入
type ShippingInput struct {
	CourierService    string
	TrackingID        string
	EstimatedDelivery *time.Time
	Notes             string
}

// UpsertShipping 登记或更新订单配送信息
func (s *OrderService) UpsertShipping(orderNo string, input ShippingInput) (*models.ShippingInfo, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPaid && order.Status != constants.OrderStatusShipped {
		return nil, &IllegalTransitionError{From: order.Status, To: constants.OrderStatusShipped}
	}

	info, err := s.shippingRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		info = &models.ShippingInfo{OrderID: order.ID}
	}
	info.CourierService = strings.TrimSpace(input.CourierService)
	info.TrackingID = strings.TrimSpace(input.TrackingID)
	info.EstimatedDelivery = input.EstimatedDelivery
	info.Notes = input.Notes

	if info.ID == 0 {
		if err := s.shippingRepo.Create(info); err != nil {
			return nil, err
		}
	} else {
		if err := s.shippingRepo.Update(info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// markDelivered 骑手送达后由配送服务调用，将订单置为已送达
func (s *OrderService) markDelivered(tx *gorm.DB, orderID uint, now time.Time) error {
	orderRepo := s.orderRepo.WithTx(tx)
	order, err := orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if !CanTransition(order.Status, constants.OrderStatusDelivered) {
		return &IllegalTransitionError{From: order.Status, To: constants.OrderStatusDelivered}
	}
	if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusDelivered, map[string]interface{}{"updated_at": now}); err != nil {
		return err
	}
	return appendStatusTrail(orderRepo, order.ID, constants.SystemActorID, constants.OrderStatusDelivered, now)
}

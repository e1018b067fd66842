package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/payment/sslcommerz"
	"github.com/haatbazar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService 支付服务（SSLCommerz 网关）
type PaymentService struct {
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	addressRepo  repository.AddressRepository
	orderService *OrderService
	gatewayCfg   *sslcommerz.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, customerRepo repository.CustomerRepository, addressRepo repository.AddressRepository, orderService *OrderService, gatewayCfg *sslcommerz.Config) *PaymentService {
	return &PaymentService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		orderService: orderService,
		gatewayCfg:   gatewayCfg,
	}
}

// SessionResult 支付会话结果
type SessionResult struct {
	OrderNo        string `json:"order_no"`
	SessionKey     string `json:"session_key"`
	GatewayPageURL string `json:"gateway_page_url"`
}

// InitiateSession 为待支付订单发起网关支付会话
func (s *PaymentService) InitiateSession(ctx context.Context, orderNo string, customerID uint) (*SessionResult, error) {
	if s.gatewayCfg == nil {
		return nil, ErrGatewayUnavailable
	}

	order, err := s.orderRepo.GetByOrderNoAndCustomer(orderNo, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, &IllegalTransitionError{From: order.Status, To: constants.OrderStatusPaid}
	}

	payment, err := s.paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != constants.PaymentStatusInitiated {
		return nil, ErrPaymentInvalid
	}
	if payment.MethodType == constants.PaymentMethodTypeCOD {
		// 货到付款不走在线网关
		return nil, ErrPaymentInvalid
	}

	customer, err := s.customerRepo.GetByID(order.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	address, err := s.addressRepo.GetByIDAndCustomer(order.AddressID, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	input := sslcommerz.CreateInput{
		OrderNo:       order.OrderNo,
		Amount:        order.TotalAmount.String(),
		Currency:      payment.Currency,
		ProductName:   order.OrderNo,
		CustomerPhone: customer.Phone,
		AddressLine:   address.Line1,
		City:          address.City,
		PostalCode:    address.PostalCode,
		Country:       address.Country,
	}
	if customer.User != nil {
		input.CustomerName = customer.User.FullName
		input.CustomerEmail = customer.User.Email
	}

	result, err := sslcommerz.CreateSession(ctx, s.gatewayCfg, input)
	if err != nil {
		logger.Errorw("payment_session_create_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, ErrGatewayUnavailable
	}

	now := time.Now()
	if err := s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
		"session_key": result.SessionKey,
		"updated_at":  now,
	}); err != nil {
		return nil, ErrPaymentUpdateFailed
	}

	return &SessionResult{
		OrderNo:        order.OrderNo,
		SessionKey:     result.SessionKey,
		GatewayPageURL: result.GatewayPageURL,
	}, nil
}

// CallbackResult 回调处理结果
type CallbackResult struct {
	OrderNo       string
	OrderStatus   string
	PaymentStatus string
}

// HandleIPN 处理网关异步通知（最终支付状态以 IPN 为准，可重复投递）
func (s *PaymentService) HandleIPN(ctx context.Context, form url.Values) (*CallbackResult, error) {
	if s.gatewayCfg == nil {
		return nil, ErrGatewayUnavailable
	}
	if err := sslcommerz.VerifyCallback(s.gatewayCfg, form); err != nil {
		return nil, ErrCallbackSignInvalid
	}

	orderNo := strings.TrimSpace(form.Get("tran_id"))
	status := strings.ToUpper(strings.TrimSpace(form.Get("status")))
	valID := strings.TrimSpace(form.Get("val_id"))

	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	payment, err := s.paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	now := time.Now()
	payload := callbackPayload(form)

	// 已经成功的支付只补记回调元数据
	if payment.Status == constants.PaymentStatusSuccess {
		if err := s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
			"provider_payload": payload,
			"callback_at":      now,
			"updated_at":       now,
		}); err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		return &CallbackResult{OrderNo: order.OrderNo, OrderStatus: order.Status, PaymentStatus: payment.Status}, nil
	}

	switch status {
	case constants.SSLCommerzStatusValid, constants.SSLCommerzStatusValidated:
		validation, err := sslcommerz.ValidateTransaction(ctx, s.gatewayCfg, valID)
		if err != nil {
			logger.Errorw("payment_validation_request_failed",
				"order_no", order.OrderNo,
				"val_id", valID,
				"error", err,
			)
			return nil, ErrGatewayUnavailable
		}
		if !validation.Valid() {
			return nil, ErrPaymentInvalid
		}
		if !amountMatches(payment.Amount, validation.Amount) {
			logger.Warnw("payment_amount_mismatch",
				"order_no", order.OrderNo,
				"expected", payment.Amount.String(),
				"reported", validation.Amount,
			)
			return nil, ErrPaymentInvalid
		}
		if err := s.markSuccess(order, payment, valID, payload, now); err != nil {
			return nil, err
		}
		return &CallbackResult{OrderNo: order.OrderNo, OrderStatus: constants.OrderStatusPaid, PaymentStatus: constants.PaymentStatusSuccess}, nil

	case constants.SSLCommerzStatusFailed:
		return s.markFailure(order, payment, constants.PaymentStatusFailed, payload, now)

	case constants.SSLCommerzStatusCancelled:
		return s.markFailure(order, payment, constants.PaymentStatusCancelled, payload, now)
	}

	return nil, ErrPaymentInvalid
}

// markFailure 在单个事务内登记支付失败/取消，并取消仍待支付的订单（回补库存、撤销兑换）
// 支付记录以条件更新裁决先写者：重复通知在同一终态下幂等，终态冲突视为非法流转
func (s *PaymentService) markFailure(order *models.Order, payment *models.Payment, terminal string, payload models.JSON, now time.Time) (*CallbackResult, error) {
	orderStatus := order.Status
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)

		affected, err := paymentRepo.UpdateFieldsFromStatus(payment.ID, constants.PaymentStatusInitiated, map[string]interface{}{
			"status":           terminal,
			"provider_payload": payload,
			"callback_at":      now,
			"updated_at":       now,
		})
		if err != nil {
			return ErrPaymentUpdateFailed
		}
		if affected == 0 {
			current, err := paymentRepo.GetByID(payment.ID)
			if err != nil {
				return err
			}
			if current != nil && current.Status == terminal {
				// 重复通知，终态一致即幂等
				return nil
			}
			status := ""
			if current != nil {
				status = current.Status
			}
			return &IllegalTransitionError{From: status, To: terminal}
		}

		if order.Status == constants.OrderStatusPending {
			if err := s.orderService.cancelInTx(tx, order, constants.SystemActorID, now); err != nil {
				return err
			}
			orderStatus = constants.OrderStatusCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CallbackResult{OrderNo: order.OrderNo, OrderStatus: orderStatus, PaymentStatus: terminal}, nil
}

// markSuccess 在单个事务内登记支付成功并将订单置为已支付
// 条件更新保证并发回调下只有先写者能离开 initiated 状态
func (s *PaymentService) markSuccess(order *models.Order, payment *models.Payment, valID string, payload models.JSON, now time.Time) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)

		affected, err := paymentRepo.UpdateFieldsFromStatus(payment.ID, constants.PaymentStatusInitiated, map[string]interface{}{
			"status":           constants.PaymentStatusSuccess,
			"provider_ref":     valID,
			"provider_payload": payload,
			"paid_at":          now,
			"callback_at":      now,
			"updated_at":       now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			current, err := paymentRepo.GetByID(payment.ID)
			if err != nil {
				return err
			}
			if current != nil && current.Status == constants.PaymentStatusSuccess {
				return nil
			}
			status := ""
			if current != nil {
				status = current.Status
			}
			return &IllegalTransitionError{From: status, To: constants.PaymentStatusSuccess}
		}

		if order.Status != constants.OrderStatusPending {
			// 订单已流转（如已被取消），保留支付记录供人工对账
			logger.Warnw("payment_success_on_non_pending_order",
				"order_no", order.OrderNo,
				"order_status", order.Status,
			)
			return nil
		}
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusPaid, map[string]interface{}{
			"paid_at":    now,
			"updated_at": now,
		}); err != nil {
			return err
		}
		return appendStatusTrail(orderRepo, order.ID, constants.SystemActorID, constants.OrderStatusPaid, now)
	})
}

// HandleReturn 处理网关浏览器回跳（success/fail/cancel）
// 与 IPN 同一套处理：先验签，再幂等落账；最终状态仍以 IPN 为准
func (s *PaymentService) HandleReturn(ctx context.Context, form url.Values) (*CallbackResult, error) {
	return s.HandleIPN(ctx, form)
}

// GetByOrder 查询订单的支付记录
func (s *PaymentService) GetByOrder(orderNo string, customerID uint) (*models.Payment, error) {
	order, err := s.orderRepo.GetByOrderNoAndCustomer(orderNo, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	payment, err := s.paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func callbackPayload(form url.Values) models.JSON {
	payload := models.JSON{}
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		payload[key] = values[0]
	}
	return payload
}

func amountMatches(expected models.Money, reported string) bool {
	parsed, err := decimal.NewFromString(strings.TrimSpace(reported))
	if err != nil {
		return false
	}
	return expected.Decimal.Round(2).Equal(parsed.Round(2))
}

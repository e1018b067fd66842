package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// 配送指派状态常量
const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusAccepted  = "accepted"
	AssignmentStatusInTransit = "in_transit"
	AssignmentStatusRejected  = "rejected"
	AssignmentStatusDelivered = "delivered"
)

// 优惠券类型常量
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// 收款方式类型常量
const (
	PaymentMethodTypeCreditCard = "credit_card"
	PaymentMethodTypeDebitCard  = "debit_card"
	PaymentMethodTypeMobile     = "mobile_banking"
	PaymentMethodTypeCOD        = "cash_on_delivery"
)

// 管理员角色常量
const (
	RoleSuperadmin = "superadmin"
	RoleProduct    = "product"
	RoleSales      = "sales"
)

// SSLCommerz 回调常量
const (
	SSLCommerzStatusValid     = "VALID"
	SSLCommerzStatusValidated = "VALIDATED"
	SSLCommerzStatusFailed    = "FAILED"
	SSLCommerzStatusCancelled = "CANCELLED"
)

// 状态轨迹系统操作者哨兵值（非管理员触发的流转）
const SystemActorID = 0

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "hb"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 常用字段长度上限
const (
	MaxSearchQueryLen = 100
	MaxTagNameLen     = 50
)

package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page     int
	PageSize int
	Search   string
	TagID    uint
	InStock  bool
	OrderBy  string
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReviewListFilter 查询评价列表的过滤条件
type ReviewListFilter struct {
	Page      int
	PageSize  int
	ProductID uint
	MinRating int
}

// CouponRedeemListFilter 查询优惠券核销记录的过滤条件
type CouponRedeemListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	CouponID   uint
}

// AssignmentListFilter 查询配送指派列表的过滤条件
type AssignmentListFilter struct {
	Page     int
	PageSize int
	RiderID  uint
	OrderID  uint
	Status   string
}

// CustomerListFilter 查询顾客列表的过滤条件
type CustomerListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:review_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	reviewRepo := repository.NewReviewRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	return NewReviewService(reviewRepo, productRepo, orderRepo), db
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, customerID, productID uint) {
	t.Helper()
	order := &models.Order{
		OrderNo:    fmt.Sprintf("HB%d", time.Now().UnixNano()),
		CustomerID: customerID,
		AddressID:  1,
		Status:     constants.OrderStatusDelivered,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:     order.ID,
		ProductID:   productID,
		ProductName: "seeded",
		Quantity:    1,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
}

func seedReviewProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  "Miniket Rice 25kg",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(1850)),
		Stock: 10,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestSubmitReviewRequiresDeliveredOrder(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)

	_, err := svc.Submit(1, product.ID, 5, "great rice")
	if !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("expected ErrReviewNotEligible, got %v", err)
	}

	// 未送达订单不解锁评价资格
	order := &models.Order{
		OrderNo:    "HB-PENDING-1",
		CustomerID: 1,
		AddressID:  1,
		Status:     constants.OrderStatusPaid,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := db.Create(&models.OrderItem{OrderID: order.ID, ProductID: product.ID, ProductName: "x", Quantity: 1}).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	_, err = svc.Submit(1, product.ID, 5, "great rice")
	if !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("expected ErrReviewNotEligible for undelivered order, got %v", err)
	}
}

func TestSubmitReviewAndOverwrite(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)
	seedDeliveredOrder(t, db, 1, product.ID)

	review, err := svc.Submit(1, product.ID, 4, "good quality")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if review.Rating != 4 || review.Comment != "good quality" {
		t.Fatalf("unexpected review: %+v", review)
	}

	// 重复提交覆盖原评价
	updated, err := svc.Submit(1, product.ID, 2, "quality dropped")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if updated.ID != review.ID {
		t.Fatalf("expected same review row, got %d vs %d", updated.ID, review.ID)
	}
	var count int64
	db.Model(&models.Review{}).Where("product_id = ?", product.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected single review, got %d", count)
	}
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)
	seedDeliveredOrder(t, db, 1, product.ID)

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Submit(1, product.ID, rating, ""); !errors.Is(err, ErrReviewInvalid) {
			t.Fatalf("rating %d: expected ErrReviewInvalid, got %v", rating, err)
		}
	}
	if _, err := svc.Submit(1, 9999, 3, ""); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDeleteReview(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)
	seedDeliveredOrder(t, db, 1, product.ID)

	if _, err := svc.Submit(1, product.ID, 5, "keeper"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := svc.Delete(1, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(1, product.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewStats(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)
	seedDeliveredOrder(t, db, 1, product.ID)
	seedDeliveredOrder(t, db, 2, product.ID)

	if _, err := svc.Submit(1, product.ID, 5, ""); err != nil {
		t.Fatalf("submit first failed: %v", err)
	}
	if _, err := svc.Submit(2, product.ID, 3, ""); err != nil {
		t.Fatalf("submit second failed: %v", err)
	}

	stats, err := svc.Stats(product.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 2 {
		t.Fatalf("expected count 2, got %d", stats.Count)
	}
	if stats.Average < 3.99 || stats.Average > 4.01 {
		t.Fatalf("expected average 4.0, got %f", stats.Average)
	}
	expected := [5]int64{0, 0, 1, 0, 1}
	if stats.Histogram != expected {
		t.Fatalf("expected histogram %v, got %v", expected, stats.Histogram)
	}

	if _, err := svc.Stats(9999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestReviewStatsHistogramCountsPerRating(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db)
	ratings := []int{5, 5, 4, 1}
	for i, rating := range ratings {
		customerID := uint(i + 1)
		seedDeliveredOrder(t, db, customerID, product.ID)
		if _, err := svc.Submit(customerID, product.ID, rating, ""); err != nil {
			t.Fatalf("submit rating %d failed: %v", rating, err)
		}
	}

	stats, err := svc.Stats(product.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 4 {
		t.Fatalf("expected count 4, got %d", stats.Count)
	}
	expected := [5]int64{1, 0, 0, 1, 2}
	if stats.Histogram != expected {
		t.Fatalf("expected histogram %v, got %v", expected, stats.Histogram)
	}
}

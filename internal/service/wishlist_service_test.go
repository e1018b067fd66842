package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWishlistServiceTest(t *testing.T) (*WishlistService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wishlist_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Wishlist{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	wishlistRepo := repository.NewWishlistRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewWishlistService(wishlistRepo, productRepo), db
}

func TestWishlistAddAndRemove(t *testing.T) {
	svc, db := setupWishlistServiceTest(t)
	product := &models.Product{
		Name:  "Walton Primo X10",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(18999)),
		Stock: 5,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	wishlist, err := svc.AddItem(1, product.ID)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(wishlist.Items) != 1 || wishlist.Items[0].ProductID != product.ID {
		t.Fatalf("unexpected wishlist items: %+v", wishlist.Items)
	}

	// 重复添加拒绝
	if _, err := svc.AddItem(1, product.ID); !errors.Is(err, ErrWishlistItemExists) {
		t.Fatalf("expected ErrWishlistItemExists, got %v", err)
	}

	wishlist, err = svc.RemoveItem(1, product.ID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	if len(wishlist.Items) != 0 {
		t.Fatalf("expected empty wishlist, got %+v", wishlist.Items)
	}

	if _, err := svc.RemoveItem(1, product.ID); !errors.Is(err, ErrWishlistItemNotFound) {
		t.Fatalf("expected ErrWishlistItemNotFound, got %v", err)
	}
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	svc, _ := setupWishlistServiceTest(t)
	if _, err := svc.AddItem(1, 404); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestWishlistGetCreatesEmpty(t *testing.T) {
	svc, _ := setupWishlistServiceTest(t)
	wishlist, err := svc.Get(9)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if wishlist.ID == 0 || len(wishlist.Items) != 0 {
		t.Fatalf("unexpected wishlist: %+v", wishlist)
	}

	again, err := svc.Get(9)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != wishlist.ID {
		t.Fatalf("expected same wishlist, got %d vs %d", again.ID, wishlist.ID)
	}

	// 移除不存在条目时报错
	if _, err := svc.RemoveItem(10, 1); !errors.Is(err, ErrWishlistItemNotFound) {
		t.Fatalf("expected ErrWishlistItemNotFound, got %v", err)
	}
}

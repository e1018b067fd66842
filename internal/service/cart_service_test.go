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

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewCartService(cartRepo, productRepo), db
}

func seedCartProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Stock: 10,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestGetOrCreateCart(t *testing.T) {
	svc, _ := setupCartServiceTest(t)

	cart, err := svc.GetOrCreate(1)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if cart.ID == 0 || !cart.IsActive {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	again, err := svc.GetOrCreate(1)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("expected same cart, got %d vs %d", again.ID, cart.ID)
	}
}

func TestAddCartItemAccumulatesQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedCartProduct(t, db, "Turmeric Powder 500g")

	cart, err := svc.AddItem(1, product.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart items: %+v", cart.Items)
	}

	cart, err = svc.AddItem(1, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected accumulated quantity 5, got %+v", cart.Items)
	}
}

func TestAddCartItemValidation(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedCartProduct(t, db, "Jamdani Saree")

	if _, err := svc.AddItem(1, product.ID, 0); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if _, err := svc.AddItem(1, 9999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateCartItem(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedCartProduct(t, db, "Cookware Set")

	if _, err := svc.AddItem(1, product.ID, 4); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	cart, err := svc.UpdateItem(1, product.ID, 2)
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v", cart.Items)
	}

	// 数量置 0 即移除
	cart, err = svc.UpdateItem(1, product.ID, 0)
	if err != nil {
		t.Fatalf("remove via zero quantity failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}

	if _, err := svc.UpdateItem(1, product.ID, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
	if _, err := svc.UpdateItem(1, product.ID, -1); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid for negative quantity, got %v", err)
	}
}

func TestUpdateCartItemWithoutCart(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	if _, err := svc.UpdateItem(77, 1, 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestClearCart(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	first := seedCartProduct(t, db, "Item A")
	second := seedCartProduct(t, db, "Item B")

	if _, err := svc.AddItem(1, first.ID, 1); err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if _, err := svc.AddItem(1, second.ID, 2); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	if err := svc.Clear(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cart, err := svc.GetOrCreate(1)
	if err != nil {
		t.Fatalf("reload cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", cart.Items)
	}

	// 无购物车时清空是幂等的
	if err := svc.Clear(999); err != nil {
		t.Fatalf("clear without cart failed: %v", err)
	}
}

func TestCartTotalsUsesLivePrices(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	first := seedCartProduct(t, db, "Miniket Rice 5kg")
	second := seedCartProduct(t, db, "Turmeric Powder")

	if _, err := svc.AddItem(1, first.ID, 3); err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if _, err := svc.AddItem(1, second.ID, 2); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	totals, err := svc.Totals(1)
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if totals.UniqueItems != 2 || totals.TotalUnits != 5 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if !totals.TotalPrice.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total 500, got %s", totals.TotalPrice)
	}

	// 改价后合计按当前售价重新计算
	if err := db.Model(&models.Product{}).Where("id = ?", first.ID).
		Update("price", models.NewMoneyFromDecimal(decimal.NewFromInt(150))).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	totals, err = svc.Totals(1)
	if err != nil {
		t.Fatalf("totals after reprice failed: %v", err)
	}
	if !totals.TotalPrice.Decimal.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("expected total 650 after reprice, got %s", totals.TotalPrice)
	}
}

func TestCartTotalsEmptyCart(t *testing.T) {
	svc, _ := setupCartServiceTest(t)

	totals, err := svc.Totals(42)
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if totals.UniqueItems != 0 || totals.TotalUnits != 0 || !totals.TotalPrice.Decimal.IsZero() {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

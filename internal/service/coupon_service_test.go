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

func setupCouponServiceTest(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:coupon_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponRedeem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	couponRepo := repository.NewCouponRepository(db)
	redeemRepo := repository.NewCouponRedeemRepository(db)
	return NewCouponService(couponRepo, redeemRepo), db
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now().Add(-time.Hour)
	}
	if coupon.ValidTo.IsZero() {
		coupon.ValidTo = time.Now().Add(time.Hour)
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return &coupon
}

func money(v int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(v))
}

func TestValidateFixedCoupon(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	seedCoupon(t, db, models.Coupon{
		Code:     "TAKA100",
		Type:     constants.CouponTypeFixed,
		Value:    money(100),
		IsActive: true,
	})

	quote, err := svc.Validate("TAKA100", 1, money(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount 100, got %s", quote.Discount)
	}
}

func TestValidateFixedCouponCappedAtSubtotal(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	seedCoupon(t, db, models.Coupon{
		Code:     "TAKA500",
		Type:     constants.CouponTypeFixed,
		Value:    money(500),
		IsActive: true,
	})

	quote, err := svc.Validate("TAKA500", 1, money(200))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected discount capped at 200, got %s", quote.Discount)
	}
}

func TestValidatePercentCouponWithCap(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	seedCoupon(t, db, models.Coupon{
		Code:        "PCT15",
		Type:        constants.CouponTypePercent,
		Value:       money(15),
		MaxDiscount: money(120),
		IsActive:    true,
	})

	// 15% of 600 = 90，低于上限
	quote, err := svc.Validate("PCT15", 1, money(600))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected discount 90, got %s", quote.Discount)
	}

	// 15% of 2000 = 300，受上限 120 约束
	quote, err = svc.Validate("PCT15", 1, money(2000))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected discount capped at 120, got %s", quote.Discount)
	}
}

func TestValidateCouponRejections(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	now := time.Now()

	seedCoupon(t, db, models.Coupon{Code: "OFF", Type: constants.CouponTypeFixed, Value: money(10), IsActive: false})
	seedCoupon(t, db, models.Coupon{
		Code: "SOON", Type: constants.CouponTypeFixed, Value: money(10), IsActive: true,
		ValidFrom: now.Add(time.Hour), ValidTo: now.Add(2 * time.Hour),
	})
	seedCoupon(t, db, models.Coupon{
		Code: "GONE", Type: constants.CouponTypeFixed, Value: money(10), IsActive: true,
		ValidFrom: now.Add(-2 * time.Hour), ValidTo: now.Add(-time.Hour),
	})
	seedCoupon(t, db, models.Coupon{
		Code: "MIN1000", Type: constants.CouponTypeFixed, Value: money(10), MinAmount: money(1000), IsActive: true,
	})
	seedCoupon(t, db, models.Coupon{
		Code: "LIMITED", Type: constants.CouponTypeFixed, Value: money(10), UsageLimit: 2, UsedCount: 2, IsActive: true,
	})

	cases := []struct {
		code string
		want error
	}{
		{"MISSING", ErrCouponNotFound},
		{"", ErrCouponNotFound},
		{"OFF", ErrCouponInactive},
		{"SOON", ErrCouponNotStarted},
		{"GONE", ErrCouponExpired},
		{"MIN1000", ErrCouponMinAmount},
		{"LIMITED", ErrCouponUsageLimit},
	}
	for _, c := range cases {
		_, err := svc.Validate(c.code, 1, money(500))
		if !errors.Is(err, c.want) {
			t.Fatalf("Validate(%q) = %v, want %v", c.code, err, c.want)
		}
	}
}

func TestValidatePerUserLimit(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code: "ONCE", Type: constants.CouponTypeFixed, Value: money(10), PerUserLimit: 1, IsActive: true,
	})

	redeem := &models.CouponRedeem{CouponID: coupon.ID, OrderID: 1, CustomerID: 42, DiscountAmount: money(10)}
	if err := db.Create(redeem).Error; err != nil {
		t.Fatalf("create redeem failed: %v", err)
	}

	_, err := svc.Validate("ONCE", 42, money(500))
	if !errors.Is(err, ErrCouponPerUserLimit) {
		t.Fatalf("expected ErrCouponPerUserLimit, got %v", err)
	}

	// 其他顾客不受影响
	if _, err := svc.Validate("ONCE", 43, money(500)); err != nil {
		t.Fatalf("expected other customer to pass, got %v", err)
	}
}

func TestCreateCouponValidation(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	now := time.Now()

	valid := CreateCouponInput{
		Code:      "NEW10",
		Type:      constants.CouponTypeFixed,
		Value:     money(10),
		ValidFrom: now,
		ValidTo:   now.Add(time.Hour),
		IsActive:  true,
	}
	created, err := svc.Create(valid)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected coupon id to be assigned")
	}

	// 重复 code 拒绝
	if _, err := svc.Create(valid); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for duplicate code, got %v", err)
	}

	bad := []CreateCouponInput{
		{Code: "", Type: constants.CouponTypeFixed, Value: money(10), ValidFrom: now, ValidTo: now.Add(time.Hour)},
		{Code: "X1", Type: "buy-one-get-one", Value: money(10), ValidFrom: now, ValidTo: now.Add(time.Hour)},
		{Code: "X2", Type: constants.CouponTypeFixed, Value: money(0), ValidFrom: now, ValidTo: now.Add(time.Hour)},
		{Code: "X3", Type: constants.CouponTypeFixed, Value: money(10), ValidFrom: now.Add(time.Hour), ValidTo: now},
	}
	for i, input := range bad {
		if _, err := svc.Create(input); !errors.Is(err, ErrCouponInvalid) {
			t.Fatalf("case %d: expected ErrCouponInvalid, got %v", i, err)
		}
	}

	var count int64
	db.Model(&models.Coupon{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected single coupon row, got %d", count)
	}
}

func TestUpdateCoupon(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code: "EDIT", Type: constants.CouponTypeFixed, Value: money(10), IsActive: true,
	})

	newValue := money(25)
	inactive := false
	updated, err := svc.Update(coupon.ID, UpdateCouponInput{Value: &newValue, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Value.Equal(decimal.NewFromInt(25)) || updated.IsActive {
		t.Fatalf("unexpected coupon after update: %+v", updated)
	}

	zero := money(0)
	if _, err := svc.Update(coupon.ID, UpdateCouponInput{Value: &zero}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for zero value, got %v", err)
	}

	if _, err := svc.Update(9999, UpdateCouponInput{}); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestDeleteCoupon(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code: "DROP", Type: constants.CouponTypeFixed, Value: money(10), IsActive: true,
	})

	if err := svc.Delete(coupon.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(coupon.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound after delete, got %v", err)
	}
	if err := svc.Delete(coupon.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound on repeat delete, got %v", err)
	}
}

func TestValidateCouponCodeCaseInsensitive(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	seedCoupon(t, db, models.Coupon{
		Code:     "SAVE10",
		Type:     constants.CouponTypePercent,
		Value:    money(10),
		IsActive: true,
	})

	quote, err := svc.Validate("save10", 1, money(1000))
	if err != nil {
		t.Fatalf("lowercase code rejected: %v", err)
	}
	if !quote.Discount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount 100, got %s", quote.Discount)
	}

	if _, err := svc.Validate("Save10", 1, money(1000)); err != nil {
		t.Fatalf("mixed-case code rejected: %v", err)
	}
}

func TestIncrementUsedCountGuardsUsageLimit(t *testing.T) {
	_, db := setupCouponServiceTest(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code:       "LASTONE",
		Type:       constants.CouponTypeFixed,
		Value:      money(50),
		IsActive:   true,
		UsageLimit: 1,
	})
	repo := repository.NewCouponRepository(db)

	affected, err := repo.IncrementUsedCount(coupon.ID)
	if err != nil {
		t.Fatalf("first increment failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected first increment to win, affected=%d", affected)
	}

	// 上限占满后条件更新不再生效
	affected, err = repo.IncrementUsedCount(coupon.ID)
	if err != nil {
		t.Fatalf("second increment errored: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected guarded increment to affect 0 rows, affected=%d", affected)
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", reloaded.UsedCount)
	}

	// 无上限的券不受守卫影响
	unlimited := seedCoupon(t, db, models.Coupon{
		Code:     "NOLIMIT",
		Type:     constants.CouponTypeFixed,
		Value:    money(50),
		IsActive: true,
	})
	if affected, err = repo.IncrementUsedCount(unlimited.ID); err != nil || affected != 1 {
		t.Fatalf("expected unlimited increment to succeed, affected=%d err=%v", affected, err)
	}
}

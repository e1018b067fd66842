package cache

import (
	"context"
	"fmt"
	"time"
)

const ratingStatsCacheTTL = 10 * time.Minute

// RatingStatsSnapshot 商品评分快照
type RatingStatsSnapshot struct {
	ProductID uint     `json:"product_id"`
	Count     int64    `json:"count"`
	Average   float64  `json:"average"`
	Histogram [5]int64 `json:"histogram"`
	UpdatedAt int64    `json:"updated_at"`
}

func ratingStatsKey(productID uint) string {
	return fmt.Sprintf("rating:product:%d", productID)
}

// GetRatingStats 获取商品评分快照
func GetRatingStats(ctx context.Context, productID uint) (*RatingStatsSnapshot, bool, error) {
	if productID == 0 {
		return nil, false, nil
	}
	var snapshot RatingStatsSnapshot
	hit, err := GetJSON(ctx, ratingStatsKey(productID), &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// SetRatingStats 写入商品评分快照
func SetRatingStats(ctx context.Context, snapshot *RatingStatsSnapshot) error {
	if snapshot == nil || snapshot.ProductID == 0 {
		return nil
	}
	snapshot.UpdatedAt = time.Now().Unix()
	return SetJSON(ctx, ratingStatsKey(snapshot.ProductID), snapshot, ratingStatsCacheTTL)
}

// DelRatingStats 删除商品评分快照（评价变更时失效）
func DelRatingStats(ctx context.Context, productID uint) error {
	if productID == 0 {
		return nil
	}
	return Del(ctx, ratingStatsKey(productID))
}

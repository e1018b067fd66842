package service

import (
	"context"
	"strings"

	"github.com/haatbazar/internal/cache"
	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, orderRepo: orderRepo}
}

// Submit 提交评价：仅限已签收订单中的商品，重复提交覆盖原评价
func (s *ReviewService) Submit(customerID, productID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrReviewInvalid
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	eligible, err := s.orderRepo.HasDeliveredOrderWithProduct(customerID, productID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrReviewNotEligible
	}

	comment = strings.TrimSpace(comment)
	review, err := s.reviewRepo.GetByCustomerAndProduct(customerID, productID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		review = &models.Review{
			CustomerID: customerID,
			ProductID:  productID,
			Rating:     rating,
			Comment:    comment,
		}
		if err := s.reviewRepo.Create(review); err != nil {
			return nil, err
		}
		s.invalidateStats(productID)
		return review, nil
	}

	review.Rating = rating
	review.Comment = comment
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	s.invalidateStats(productID)
	return review, nil
}

// invalidateStats 评价变更后失效评分缓存
func (s *ReviewService) invalidateStats(productID uint) {
	if err := cache.DelRatingStats(context.Background(), productID); err != nil {
		logger.Warnw("review_stats_cache_invalidate_failed",
			"product_id", productID,
			"error", err,
		)
	}
}

// Delete 顾客删除自己的评价
func (s *ReviewService) Delete(customerID, productID uint) error {
	review, err := s.reviewRepo.GetByCustomerAndProduct(customerID, productID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if err := s.reviewRepo.Delete(review.ID, customerID); err != nil {
		return err
	}
	s.invalidateStats(productID)
	return nil
}

// ListByProduct 分页查询商品评价
func (s *ReviewService) ListByProduct(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.ListByProduct(filter)
}

// Stats 商品评分汇总（优先读缓存）
func (s *ReviewService) Stats(productID uint) (*repository.RatingStats, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	ctx := context.Background()
	if snapshot, hit, err := cache.GetRatingStats(ctx, productID); err == nil && hit {
		return &repository.RatingStats{Count: snapshot.Count, Average: snapshot.Average, Histogram: snapshot.Histogram}, nil
	}

	stats, err := s.reviewRepo.StatsByProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetRatingStats(ctx, &cache.RatingStatsSnapshot{
		ProductID: productID,
		Count:     stats.Count,
		Average:   stats.Average,
		Histogram: stats.Histogram,
	}); err != nil {
		logger.Warnw("review_stats_cache_set_failed",
			"product_id", productID,
			"error", err,
		)
	}
	return stats, nil
}

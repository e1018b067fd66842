package public

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
	"github.com/haatbazar/internal/repository"
	"github.com/haatbazar/internal/service"
)

// ReviewRequest 评价提交请求
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid product id")
		return 0, false
	}
	return uint(id), true
}

// SubmitReview 提交或更新商品评价
func (h *Handler) SubmitReview(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.ReviewService.Submit(customerID, productID, req.Rating, req.Comment)
	if err != nil {
		respondWithMappedError(c, err, reviewErrorRules, http.StatusInternalServerError, "failed to submit review")
		return
	}

	response.Success(c, review)
}

// DeleteReview 删除自己的商品评价
func (h *Handler) DeleteReview(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := h.ReviewService.Delete(customerID, productID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			response.NotFound(c, "review not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete review", err)
		return
	}

	response.NoContent(c)
}

// ListProductReviews 商品评价列表
func (h *Handler) ListProductReviews(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.QueryPagination(c)
	minRating, _ := strconv.Atoi(c.Query("min_rating"))

	reviews, total, err := h.ReviewService.ListByProduct(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: productID,
		MinRating: minRating,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list reviews", err)
		return
	}

	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// ProductRatingStats 商品评分统计
func (h *Handler) ProductRatingStats(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	stats, err := h.ReviewService.Stats(productID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load rating stats", err)
		return
	}

	response.Success(c, stats)
}

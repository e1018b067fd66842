package service

import (
	"strings"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// SearchService 商品搜索服务（记录顾客搜索历史）
type SearchService struct {
	productRepo repository.ProductRepository
	historyRepo repository.SearchHistoryRepository
}

// NewSearchService 创建搜索服务
func NewSearchService(productRepo repository.ProductRepository, historyRepo repository.SearchHistoryRepository) *SearchService {
	return &SearchService{productRepo: productRepo, historyRepo: historyRepo}
}

// Search 搜索商品；已登录顾客（customerID > 0）追加一条搜索历史
func (s *SearchService) Search(customerID uint, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	query := strings.TrimSpace(filter.Search)
	if query == "" || len(query) > constants.MaxSearchQueryLen {
		return nil, 0, ErrSearchQueryInvalid
	}
	filter.Search = query

	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}

	if customerID > 0 {
		if err := s.historyRepo.Create(&models.SearchHistory{
			CustomerID: customerID,
			Query:      query,
		}); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

// History 查询顾客最近的搜索历史
func (s *SearchService) History(customerID uint, limit int) ([]models.SearchHistory, error) {
	return s.historyRepo.ListByCustomer(customerID, limit)
}

// ClearHistory 清空顾客搜索历史
func (s *SearchService) ClearHistory(customerID uint) error {
	return s.historyRepo.ClearByCustomer(customerID)
}

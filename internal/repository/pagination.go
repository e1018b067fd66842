package repository

import "gorm.io/gorm"

// maxPageSize 仓储层单页上限，防止超大分页拖垮数据库
const maxPageSize = 200

// applyPagination 应用分页参数，统一收敛非法页码与偏移量
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

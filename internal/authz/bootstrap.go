package authz

import (
	"fmt"

	"github.com/haatbazar/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// superadmin 拥有全部后台权限；product 管商品目录；sales 管订单履约
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleSuperadmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
		{
			Role: constants.RoleProduct,
			Policies: []Policy{
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/products/:id/tags", Action: "*"},
				{Object: "/admin/products/:id/tags/:tag_id", Action: "*"},
				{Object: "/admin/tags", Action: "*"},
				{Object: "/admin/tags/:id", Action: "*"},
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:order_no", Action: "GET"},
			},
		},
		{
			Role: constants.RoleSales,
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:order_no", Action: "GET"},
				{Object: "/admin/orders/:order_no/status", Action: "PATCH"},
				{Object: "/admin/orders/:order_no/shipping", Action: "*"},
				{Object: "/admin/orders/:order_no/assignments", Action: "*"},
				{Object: "/admin/coupons", Action: "*"},
				{Object: "/admin/coupons/:id", Action: "*"},
				{Object: "/admin/coupon-redeems", Action: "GET"},
				{Object: "/admin/customers", Action: "GET"},
				{Object: "/admin/riders", Action: "*"},
				{Object: "/admin/riders/:id", Action: "*"},
				{Object: "/admin/assignments", Action: "GET"},
				{Object: "/admin/products", Action: "GET"},
				{Object: "/admin/products/:id", Action: "GET"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}

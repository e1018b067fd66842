package public

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, status int, detail string, err error) {
	handlershared.RespondError(c, status, detail, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getCustomerID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "customer_id")
}

// optionalCustomerID 读取可选的顾客身份，未登录时返回 0。
func optionalCustomerID(c *gin.Context) uint {
	value, exists := c.Get("customer_id")
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

// parseDate 解析 YYYY-MM-DD 日期参数。
func parseDate(c *gin.Context, value string) (*time.Time, bool) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", nil)
		return nil, false
	}
	return &parsed, true
}

func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request payload", nil)
		return false
	}
	return true
}

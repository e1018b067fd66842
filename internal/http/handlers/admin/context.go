package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	handlershared "github.com/haatbazar/internal/http/handlers/shared"
	"github.com/haatbazar/internal/http/response"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, status int, detail string, err error) {
	handlershared.RespondError(c, status, detail, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}

func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request payload", nil)
		return false
	}
	return true
}

func uintParam(c *gin.Context, name, detail string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, detail)
		return 0, false
	}
	return uint(id), true
}

package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/PiGomoku/pi-gomoku-backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RequireAdminKey 校验 X-Admin-Key 请求头。
// 未配置密钥时管理接口整体关闭，比对使用常数时间比较。
func RequireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.Cfg.Admin.Key
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "管理接口未启用"})
			return
		}
		provided := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "管理密钥无效"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hey-granth/silo/pkg/configs"
)

// PrincipalKey 认证中间件写入 gin 上下文的 principal 键.
const PrincipalKey = "principal"

// AuthMiddleware 从 Bearer JWT 中解析稳定的 principal（sub 声明）.
// 凭证的真正核验由上游身份服务完成，这里信任其结果；配置了 secret 时
// 校验 HMAC 签名以保证头部在自托管部署中未被篡改.
//   - 支持通过配置跳过某些路径（如 /metrics、分享访问入口）
//   - 开发模式可允许 X-User 头兜底（由 auth.dev_allow_header 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		principal, ok := principalFromBearer(c.GetHeader("Authorization"), conf.Secret)
		if !ok && conf.DevAllowHeader {
			principal = strings.TrimSpace(c.GetHeader("X-User"))
			ok = principal != ""
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// principalFromBearer 解析 Authorization 头中的 Bearer JWT 并返回 sub 声明.
func principalFromBearer(header, secret string) (string, bool) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return "", false
	}

	var (
		parsed *jwt.Token
		err    error
	)

	if secret != "" {
		parsed, err = jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	} else {
		// 未配置密钥：签名已由上游网关核验，这里只取声明
		parsed, _, err = jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	}

	if err != nil || parsed == nil {
		return "", false
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}

	return sub, true
}

// Principal 从 gin 上下文中取出已认证的 principal.
func Principal(c *gin.Context) string {
	if v, ok := c.Get(PrincipalKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

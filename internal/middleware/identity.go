package middleware

import (
	"net/http"
	"strings"

	"github.com/raquelxaviert/micangaria-sub002/internal/dto"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	// Шлюз кладёт идентификатор покупательской сессии сюда после своей
	// аутентификации; ядро ему доверяет.
	HeaderSessionID = "X-Session-ID"

	CtxHolderID = "holder_id"
)

// HolderRequired требует идентификатор холдера на всех покупательских
// маршрутах. Вебхук провайдера сюда не подключается: он аутентифицируется
// подписью.
func HolderRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		holder := strings.TrimSpace(c.GetHeader(HeaderSessionID))
		if holder == "" {
			if cookie, err := c.Cookie("checkout_session"); err == nil {
				holder = strings.TrimSpace(cookie)
			}
		}
		if holder == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing session id"))
			return
		}

		c.Set(CtxHolderID, holder)
		c.Request = c.Request.WithContext(service.WithHolderID(c.Request.Context(), holder))
		c.Next()
	}
}

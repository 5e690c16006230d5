// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tecnova-catalog/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := ""

		// Handle cases like "pt-BR,pt;q=0.9,en;q=0.8": first supported wins
		for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
			tag := strings.TrimSpace(strings.Split(part, ";")[0])
			if lang = i18n.Normalize(tag); lang != "" {
				break
			}
		}
		if lang == "" {
			lang = i18n.DefaultLanguage()
		}

		// Set language in context
		c.Set("lang", lang)
		c.Next()
	}
}

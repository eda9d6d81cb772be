// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/utils"
)

var langAliases = map[string]string{
	"zh-hant": "zh_TW",
	"zh-tw":   "zh_TW",
	"zh_tw":   "zh_TW",
	"en-us":   "en",
	"en-gb":   "en",
}

// I18nMiddleware picks the first Accept-Language entry with a loaded
// locale. Everything else falls back to en.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ContextKeyLang, negotiateLang(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func negotiateLang(header string) string {
	supported := make(map[string]bool)
	for _, lang := range i18n.GetSupportedLanguages() {
		supported[lang] = true
	}

	// e.g. "zh-TW,zh;q=0.9,en;q=0.8"
	for _, entry := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(entry, ";", 2)[0])
		if tag == "" {
			continue
		}
		if alias, ok := langAliases[strings.ToLower(tag)]; ok {
			tag = alias
		}
		if supported[tag] {
			return tag
		}
	}
	return "en"
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flarexio/cms/locale"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"

	LocaleCookie = "lang"
	LocaleKey    = "locale"
)

// RequestID propagates or assigns the X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LocaleResolver picks the visitor locale from the lang query parameter,
// then the lang cookie, then Accept-Language. An explicit choice through the
// query is remembered in the cookie for a year.
func LocaleResolver(m *locale.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved := resolveLocale(c, m)
		c.Set(LocaleKey, resolved)
		c.Next()
	}
}

func resolveLocale(c *gin.Context, m *locale.Matcher) string {
	if lang := c.Query("lang"); lang != "" {
		if resolved, ok := m.Match(lang); ok {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(LocaleCookie, resolved, 365*24*60*60, "/", "", false, false)
			return resolved
		}
	}

	if lang, err := c.Cookie(LocaleCookie); err == nil && lang != "" {
		if resolved, ok := m.Match(lang); ok {
			return resolved
		}
	}

	resolved, _ := m.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
	return resolved
}

// RequestLocale returns the locale chosen by LocaleResolver.
func RequestLocale(c *gin.Context) string {
	return c.GetString(LocaleKey)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/utils"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-secret")

	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		principal, _ := utils.GetPrincipalFromContext(c)
		c.String(http.StatusOK, principal)
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredSetsPrincipal(t *testing.T) {
	r := newAuthEngine()

	token, err := utils.GenerateJWT("acct_licensee", "", 1)
	require.NoError(t, err)

	w := doRequest(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acct_licensee", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/me", "garbage").Code)
}

func TestAuthRequiredRejectsLedgerPrincipal(t *testing.T) {
	r := newAuthEngine()

	token, err := utils.GenerateJWT("ledger", "admin", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/me", token).Code)
}

func TestAdminRequired(t *testing.T) {
	r := newAuthEngine()

	user, _ := utils.GenerateJWT("acct_user", "", 1)
	admin, _ := utils.GenerateJWT("acct_admin", RoleAdmin, 1)

	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin", user).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/admin", admin).Code)
}

func TestExtractResource(t *testing.T) {
	assert.Equal(t, "patents", extractResourceType("/v1/patents/12/auction"))
	id := extractResourceID("/v1/patents/12/auction")
	require.NotNil(t, id)
	assert.Equal(t, uint64(12), *id)
	assert.Nil(t, extractResourceID("/v1/disclosures"))
}

func TestRateLimiterKeysByPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 1)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("principal", c.GetHeader("X-Principal"))
		c.Next()
	}, rl.Middleware())
	r.POST("/w", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(principal string) int {
		req := httptest.NewRequest(http.MethodPost, "/w", nil)
		req.Header.Set("X-Principal", principal)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusNoContent, send("b"))
}

func TestNegotiateLang(t *testing.T) {
	require.NoError(t, i18n.Initialize("en"))

	assert.Equal(t, "zh_TW", negotiateLang("zh-TW,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "zh_TW", negotiateLang("zh-Hant"))
	assert.Equal(t, "en", negotiateLang("fr-FR,de;q=0.5"))
	assert.Equal(t, "en", negotiateLang("fr, en-GB;q=0.7"))
	assert.Equal(t, "en", negotiateLang(""))
}

func TestWriteLimiterSkipsReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newWriteLimiter(0, 1)

	r := gin.New()
	r.Use(rl.Middleware())
	r.Any("/r", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(method string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/r", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send(http.MethodGet))
	assert.Equal(t, http.StatusNoContent, send(http.MethodGet))
	assert.Equal(t, http.StatusNoContent, send(http.MethodPut))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost))
}

func TestEvictIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("acct_a")

	rl.evictIdle(time.Now())
	assert.Len(t, rl.visitors, 1)

	rl.evictIdle(time.Now().Add(visitorIdleTTL + time.Second))
	assert.Empty(t, rl.visitors)
}

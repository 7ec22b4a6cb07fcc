package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("", AuthMiddleware())
	if len(roles) > 0 {
		group.Use(RoleAuthMiddleware(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetInt64(ContextUserID), "role": c.GetString(ContextUserRole)})
	})
	return engine
}

func request(t *testing.T, engine *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	require.NoError(t, utils.ConfigureJWT("middleware-test-secret", 0))
	token, _, err := utils.GenerateAccessToken(5, "Awa", "Server")
	require.NoError(t, err)
	engine := newTestEngine()

	rec := request(t, engine, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":5,"role":"server"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, request(t, engine, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, engine, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, engine, "Bearer not-a-jwt").Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	require.NoError(t, utils.ConfigureJWT("middleware-test-secret", 0))
	cashierToken, _, err := utils.GenerateAccessToken(2, "Moussa", "cashier")
	require.NoError(t, err)
	adminToken, _, err := utils.GenerateAccessToken(1, "Boss", "admin")
	require.NoError(t, err)

	engine := newTestEngine("admin")
	rec := request(t, engine, "Bearer "+cashierToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	assert.Equal(t, http.StatusOK, request(t, engine, "Bearer "+adminToken).Code)
}

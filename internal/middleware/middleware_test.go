package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/middleware/requestid"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

type recordingObserver struct {
	paths    []string
	statuses []int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.paths = append(r.paths, path)
	r.statuses = append(r.statuses, status)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRBAC(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}}
	router := gin.New()
	router.GET("/students/:id", JWT(validator), RBAC(string(models.RoleAdmin), RoleSelf), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/students/student-1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/students/student-1", "bad").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/students/student-1", "good").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/students/student-2", "good").Code)

	admin := stubValidator{claims: &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}}
	adminRouter := gin.New()
	adminRouter.GET("/students/:id", JWT(admin), RBAC(string(models.RoleAdmin), RoleSelf), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, serve(adminRouter, http.MethodGet, "/students/student-2", "good").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleInstructor}}
	router := gin.New()
	router.GET("/me", OptionalJWT(validator), func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.UserID)
	})

	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/me", "").Body.String())
	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/me", "bad").Body.String())
	assert.Equal(t, "u1", serve(router, http.MethodGet, "/me", "good").Body.String())
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	recorder := &recordingAudit{err: errors.New("db down")}
	router := gin.New()
	router.PUT("/students/:id", Audit(recorder, nil, models.AuditActionUpdate, "student"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/students", Audit(recorder, nil, models.AuditActionCreate, "student"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPut, "/students/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/students", "").Code)

	require.Len(t, recorder.logs, 1)
	log := recorder.logs[0]
	assert.Equal(t, models.AuditActionUpdate, log.Action)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "abc", *log.ResourceID)
	assert.Nil(t, log.UserID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(log.NewValues, &body))
	assert.Equal(t, "/students/:id", body["path"])
}

func TestMetricsUsesRouteTemplates(t *testing.T) {
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer, "/metrics"))
	router.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/courses/42", "")
	serve(router, http.MethodGet, "/metrics", "")
	serve(router, http.MethodGet, "/nope", "")

	assert.Equal(t, []string{"/courses/:id", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}

func TestResponseMetaCarriesRequestIDAndCacheHit(t *testing.T) {
	var captured map[string]interface{}
	router := gin.New()
	router.Use(requestid.Middleware(), WithResponseMeta())
	router.GET("/courses", func(c *gin.Context) {
		SetCacheHit(c, true)
		captured = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set(requestid.Header, "req-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, captured)
	assert.Equal(t, "req-123", captured["request_id"])
	assert.Equal(t, true, captured[cacheHitKey])
	assert.Contains(t, captured, "processing_time_ms")
}

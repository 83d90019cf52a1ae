package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "middleware-test-secret-middleware-test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "healthportal-test",
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwt := newJWT()
	pair, err := jwt.GenerateTokenPair(&domain.Claims{AccountID: uuid.New(), Role: domain.RoleHospital})
	if err != nil {
		t.Fatalf("generating tokens: %v", err)
	}

	r := gin.New()
	r.GET("/private", Authenticate(jwt), RequireRole(domain.RoleHospital), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.String(http.StatusOK, string(claims.Role))
	})
	r.GET("/gov", Authenticate(jwt), RequireRole(domain.RoleGovernment), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/private", "", http.StatusUnauthorized},
		{"wrong scheme", "/private", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"garbage token", "/private", "Bearer not-a-token", http.StatusUnauthorized},
		{"refresh token", "/private", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"valid", "/private", "Bearer " + pair.AccessToken, http.StatusOK},
		{"wrong portal", "/gov", "Bearer " + pair.AccessToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := serve(r, req)
	if w.Body.String() != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("caller id not propagated: body %q header %q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(w.Body.String()); err != nil {
		t.Errorf("generated id %q is not a uuid", w.Body.String())
	}
}

func TestLogger_LabelsByRouteTemplate(t *testing.T) {
	m := metrics.NewCollector("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Logger(zap.NewNop(), m))
	r.GET("/patients/:nid", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/patients/277-265-681-8", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/patients/111", nil))

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/patients/:nid", "200"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if testutil.ToFloat64(m.InFlightGauge) != 0 {
		t.Error("in-flight gauge not released")
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 2)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(l))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	if serve(r, other).Code != http.StatusOK {
		t.Error("limit leaked across clients")
	}

	now = now.Add(time.Second)
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "10.0.0.1:1234"
	if serve(r, again).Code != http.StatusOK {
		t.Error("bucket did not refill")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-builder/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(false))
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.SignJWT(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"}})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	router := gin.New()
	router.Use(Auth(false))
	var seen string
	router.GET("/whoami", func(c *gin.Context) {
		seen = UserIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if seen != "user-42" {
		t.Fatalf("expected user-42, got %q", seen)
	}
}

func TestAuthDevHeaderOnlyInDev(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		name    string
		devLike bool
		want    int
	}{
		{name: "dev", devLike: true, want: http.StatusOK},
		{name: "production", devLike: false, want: http.StatusUnauthorized},
	} {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth(tc.devLike))
			router.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("X-User-Id", "dev-user")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

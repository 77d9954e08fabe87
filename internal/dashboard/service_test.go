package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/applications"
	"resume-builder/internal/certificates"
	"resume-builder/internal/credits"
	"resume-builder/internal/notifications"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/object/local"
)

type failingCounter struct{}

func (failingCounter) Count(context.Context, string) (int, error) {
	return 0, errors.New("db down")
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	rs := resumes.NewService(resumes.NewMemoryRepo())
	cs := certificates.NewService(certificates.NewMemoryRepo(), local.New(t.TempDir()))
	as := applications.NewService(applications.NewMemoryRepo(), rs)
	cr := credits.NewService()
	ns := notifications.NewService(notifications.NewMemoryRepo())

	_, _ = rs.Create(ctx, "user-1", resumes.CreateInput{Title: "Backend"})
	_, _ = rs.Create(ctx, "user-1", resumes.CreateInput{Title: "Frontend"})
	_, _ = cs.Create(ctx, "user-1", certificates.Input{Name: "CKA"})
	_, _ = as.Create(ctx, "user-1", applications.Input{Company: "Acme", Position: "Eng"})
	_, _ = as.Create(ctx, "user-1", applications.Input{Company: "Globex", Position: "Eng", Status: applications.StatusOffer})
	_ = ns.Notify(ctx, "user-1", "info", "Welcome", "Hello")
	if _, err := cr.Consume(ctx, "user-1", 8, "test"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	return &Service{Resumes: rs, Certificates: cs, Applications: as, Credits: cr, Notifications: ns}
}

func TestOverviewAggregates(t *testing.T) {
	svc := newTestService(t)
	out, err := svc.Overview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.Resumes != 2 || out.Certificates != 1 {
		t.Fatalf("unexpected counts %+v", out)
	}
	if out.Applications.Total != 2 || out.Applications.ByStatus[applications.StatusOffer] != 1 || len(out.Applications.Recent) != 2 {
		t.Fatalf("unexpected applications %+v", out.Applications)
	}
	if out.Credits.Balance != credits.DefaultBalance-8 || !out.Credits.Low {
		t.Fatalf("unexpected credits %+v", out.Credits)
	}
	if out.UnreadNotifications != 1 {
		t.Fatalf("expected 1 unread, got %d", out.UnreadNotifications)
	}
}

func TestOverviewPropagatesFailure(t *testing.T) {
	svc := newTestService(t)
	svc.Certificates = failingCounter{}
	if _, err := svc.Overview(context.Background(), "user-1"); err == nil || !strings.Contains(err.Error(), "count certificates") {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}

func TestHandlerOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", middleware.Auth(true))
	NewHandler(newTestService(t)).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"resumes":2`) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("X-User-Id", "user-2")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"resumes":0`) {
		t.Fatalf("expected empty overview for other user, got %s", resp.Body.String())
	}
}

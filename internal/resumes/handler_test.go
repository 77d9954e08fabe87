package resumes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth(true))
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandlerCreateGetUpdate(t *testing.T) {
	r := newTestRouter()

	resp := do(r, http.MethodPost, "/api/v1/resumes", `{"title":"Main","template":"bold","data":{"summary":"Hello"}}`, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created ResumeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = do(r, http.MethodGet, "/api/v1/resumes/"+created.ID, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body := `{"title":"Renamed","expectedUpdatedAt":"` + created.UpdatedAt.Format(time.RFC3339Nano) + `"}`
	resp = do(r, http.MethodPut, "/api/v1/resumes/"+created.ID, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	stale := `{"title":"Stale","expectedUpdatedAt":"` + created.UpdatedAt.Add(-time.Hour).Format(time.RFC3339Nano) + `"}`
	resp = do(r, http.MethodPut, "/api/v1/resumes/"+created.ID, stale, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"conflict"`) {
		t.Fatalf("expected conflict code, got %s", resp.Body.String())
	}
}

func TestHandlerIfUnmodifiedSince(t *testing.T) {
	r := newTestRouter()
	resp := do(r, http.MethodPost, "/api/v1/resumes", `{}`, nil)
	var created ResumeResponse
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	past := created.UpdatedAt.Add(-time.Hour).Format(http.TimeFormat)
	resp = do(r, http.MethodPut, "/api/v1/resumes/"+created.ID, `{"title":"x"}`, map[string]string{"If-Unmodified-Since": past})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}

	current := created.UpdatedAt.Format(http.TimeFormat)
	resp = do(r, http.MethodPut, "/api/v1/resumes/"+created.ID, `{"title":"x"}`, map[string]string{"If-Unmodified-Since": current})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerValidationAndNotFound(t *testing.T) {
	r := newTestRouter()

	resp := do(r, http.MethodPost, "/api/v1/resumes", `{"template":"neon"}`, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	resp = do(r, http.MethodGet, "/api/v1/resumes/8b0b3f7e-1111-4222-8333-444455556666", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	resp = do(r, http.MethodPost, "/api/v1/resumes/import", `{"data":{}}`, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for schema violation, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "personalInfo") {
		t.Fatalf("expected field details, got %s", resp.Body.String())
	}
}

func TestHandlerTemplatesAndList(t *testing.T) {
	r := newTestRouter()
	resp := do(r, http.MethodGet, "/api/v1/resumes/templates", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"timeline"`) {
		t.Fatalf("unexpected templates response %d %s", resp.Code, resp.Body.String())
	}

	do(r, http.MethodPost, "/api/v1/resumes", `{"title":"One","data":{"personalInfo":{"fullName":"Ada"}}}`, nil)
	resp = do(r, http.MethodGet, "/api/v1/resumes?limit=10", "", nil)
	var page struct {
		Items []ResumeSummary `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].FullName != "Ada" {
		t.Fatalf("unexpected list %+v", page.Items)
	}
}

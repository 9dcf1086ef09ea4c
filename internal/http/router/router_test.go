package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/auth"
	"github.com/straye-as/progress-api/internal/config"
	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/http/handler"
	"github.com/straye-as/progress-api/internal/http/middleware"
	"github.com/straye-as/progress-api/internal/http/router"
	"github.com/straye-as/progress-api/internal/report"
	"github.com/straye-as/progress-api/internal/repository"
	"github.com/straye-as/progress-api/internal/service"
	"github.com/straye-as/progress-api/internal/storage"
	"github.com/straye-as/progress-api/internal/testutil"
)

const (
	testJWTSecret = "router-test-secret"
	testAPIKey    = "router-test-key"
)

type apiEnv struct {
	server    *httptest.Server
	tokens    *auth.TokenValidator
	managerID uuid.UUID
	project   *domain.Project
	v1        *domain.ProjectVersion
}

func newAPIEnv(t *testing.T, rateLimit config.RateLimitConfig) *apiEnv {
	t.Helper()
	log := zap.NewNop()
	db := testutil.SetupTestDB(t)

	// The public base URL is only known once the server is listening
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store, err := storage.NewLocalStorage(t.TempDir(), server.URL, storage.NewSigner("signing-secret"))
	require.NoError(t, err)

	cfg := &config.Config{
		App:       config.AppConfig{Environment: "test"},
		Auth:      config.AuthConfig{JWTSecret: testJWTSecret, APIKey: testAPIKey},
		Storage:   config.StorageConfig{UploadSlotTTL: 900, DownloadURLTTL: 3600, MaxUploadSizeMB: 1, VerifyConcurrent: 2},
		Dashboard: config.DashboardConfig{DeadlineLookaheadDays: 7, ActivityLookbackDays: 7, ActivityLimit: 10},
		Security:  config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		RateLimit: rateLimit,
		Server:    config.ServerConfig{EnableSwagger: true},
	}

	resolver := storage.NewResolver(store, nil, cfg.Storage.DownloadURLTTLDuration(), log)
	versions := repository.NewVersionRepository(db)
	uploads := service.NewUploadService(repository.NewUploadSlotRepository(db), store, resolver, &cfg.Storage, log)
	distribution := service.NewDistributionService(report.NewRenderer("Straye"), store, resolver, nil, &cfg.Distribution, log)

	rt := router.NewRouter(cfg, log,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		router.Handlers{
			Health:      handler.NewHealthHandler(db, nil, log),
			Project:     handler.NewProjectHandler(service.NewProjectService(repository.NewProjectRepository(db), versions, uploads, log), log),
			DailyReport: handler.NewDailyReportHandler(service.NewReportService(versions, uploads, distribution, log), log),
			Blockage:    handler.NewBlockageHandler(service.NewBlockageService(versions, uploads, log), log),
			Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(versions, &cfg.Dashboard, log), log),
			Upload:      handler.NewUploadHandler(uploads, cfg.Storage.MaxUploadSizeMB, log),
		},
	)
	mux.Handle("/", rt.Setup())

	env := &apiEnv{
		server:    server,
		tokens:    auth.NewTokenValidator(&cfg.Auth),
		managerID: uuid.New(),
	}
	env.project, env.v1 = testutil.CreateTestProject(t, db, env.managerID, testutil.GlassPanelsSheet())
	return env
}

func (e *apiEnv) token(t *testing.T, id uuid.UUID, role domain.UserRole) string {
	t.Helper()
	tok, err := e.tokens.IssueToken(&auth.UserContext{UserID: id, DisplayName: string(role), Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) managerToken(t *testing.T) string {
	return e.token(t, e.managerID, domain.RoleProjectManager)
}

func (e *apiEnv) reviewerToken(t *testing.T) string {
	return e.token(t, uuid.New(), domain.RoleHeadOfPlanning)
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *apiEnv) projectPath(suffix string) string {
	return "/api/v1/projects/" + e.project.ID.String() + suffix
}

func TestRouter_Health(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp = env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])

	resp = env.do(t, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SwaggerDocument(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	resp := env.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		BasePath    string                     `json:"basePath"`
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}](t, resp)
	assert.Equal(t, "Straye Progress API", doc.Info.Title)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/projects/{id}/daily-report")
	assert.Contains(t, doc.Paths, "/projects/{id}/blockages/{blockageId}/close")
	assert.Contains(t, doc.Definitions, "domain.ValidationResultDTO")

	resp = env.do(t, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	resp := env.do(t, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/projects", nil)
	require.NoError(t, err)
	req.Header.Set("x-api-key", testAPIKey)
	resp, err = env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "API key callers see every project")
	page := decode[domain.PaginatedResponse](t, resp)
	assert.EqualValues(t, 1, page.Total)
}

func TestRouter_DailyReportLifecycle(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	manager := env.managerToken(t)
	reviewer := env.reviewerToken(t)

	dailyReport := map[string]interface{}{
		"baseVersionId": env.v1.ID,
		"entries": []map[string]interface{}{{
			"lineItemId": "glass-panels",
			"sheet2": []map[string]interface{}{{
				"subItemId":          "north-face",
				"yesterdaySupplied":  25,
				"yesterdayInstalled": 30,
			}},
		}},
	}

	resp := env.do(t, http.MethodPost, env.projectPath("/daily-report/validate"), manager, dailyReport)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[domain.ValidationResultDTO](t, resp).Valid)

	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report"), reviewer, dailyReport)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report"), manager, dailyReport)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	submitted := decode[domain.TransitionResult](t, resp)
	require.NotNil(t, submitted.Version)
	assert.Equal(t, domain.ReportStatusPending, submitted.Version.YesterdayReportStatus)
	assert.Equal(t, 225.0, submitted.Version.Sheet1[0].SubItems[0].TotalSupplied, "staged deltas are not committed yet")

	// A second submission against the old base is stale
	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report"), manager, dailyReport)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	apiErr := decode[domain.APIError](t, resp)
	assert.True(t, apiErr.Retryable)

	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report/reject"), reviewer,
		map[string]interface{}{"baseVersionId": submitted.Version.ID, "comment": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "rejection needs a comment")

	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report/approve"), reviewer,
		map[string]interface{}{"baseVersionId": submitted.Version.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[domain.TransitionResult](t, resp)
	require.NotNil(t, approved.Version)
	assert.Equal(t, domain.ReportStatusApproved, approved.Version.YesterdayReportStatus)
	assert.Equal(t, 250.0, approved.Version.Sheet1[0].SubItems[0].TotalSupplied)
	assert.Equal(t, 230.0, approved.Version.Sheet1[0].SubItems[0].TotalInstalled)
	assert.NotEmpty(t, approved.Warnings, "no queue is configured in this environment")

	resp = env.do(t, http.MethodGet, env.projectPath("/versions"), manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.ProjectVersionSummaryDTO](t, resp), 3)

	resp = env.do(t, http.MethodGet, env.projectPath(fmt.Sprintf("/versions/%d", env.v1.ID)), manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 225.0, decode[domain.ProjectVersionDTO](t, resp).Sheet1[0].SubItems[0].TotalSupplied)
}

func TestRouter_ValidationErrors(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	manager := env.managerToken(t)

	resp := env.do(t, http.MethodPost, env.projectPath("/daily-report"), manager, map[string]interface{}{
		"baseVersionId": env.v1.ID,
		"entries": []map[string]interface{}{{
			"lineItemId": "glass-panels",
			"sheet2":     []map[string]interface{}{{"yesterdaySupplied": 1}},
		}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiErr := decode[domain.APIError](t, resp)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "entries[0].sheet2[0].subItemId")

	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report"), manager, map[string]interface{}{
		"baseVersionId": env.v1.ID,
		"entries": []map[string]interface{}{{
			"lineItemId": "glass-panels",
			"sheet2":     []map[string]interface{}{{"subItemId": "north-face", "yesterdaySupplied": 26}},
		}},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "delta above the remaining quantity")
	apiErr = decode[domain.APIError](t, resp)
	assert.NotEmpty(t, apiErr.Errors)

	resp = env.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid", manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/projects/"+uuid.NewString(), manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/projects?reportStatus=DONE", manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ProjectVisibility(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	other := env.token(t, uuid.New(), domain.RoleProjectManager)

	resp := env.do(t, http.MethodGet, env.projectPath(""), other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/projects", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[domain.PaginatedResponse](t, resp).Total)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/managers", other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/managers", env.reviewerToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.ManagerRollupDTO](t, resp), 1)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/deadlines?days=7", env.managerToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.DeadlineAlertDTO](t, resp), 1)
}

func TestRouter_CreateProject(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	body := map[string]interface{}{
		"name":             "Bjørvika Office",
		"projectManagerId": env.managerID,
		"clientName":       "Oslo Eiendom",
		"status":           "PLANNED",
		"priority":         "HIGH",
		"sheet1": []map[string]interface{}{{
			"itemName":      "Curtain Wall",
			"unit":          "m2",
			"totalQuantity": 100,
		}},
	}

	resp := env.do(t, http.MethodPost, "/api/v1/projects", env.managerToken(t), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/projects", env.reviewerToken(t), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.ProjectVersionDTO](t, resp)
	assert.Equal(t, "/api/v1/projects/"+created.ProjectID.String(), resp.Header.Get("Location"))
	assert.Equal(t, 1, created.VersionNumber)
}

func TestRouter_UploadRoundTrip(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	manager := env.managerToken(t)

	resp := env.do(t, http.MethodPost, "/api/v1/uploads", manager, map[string]interface{}{
		"fileName":    "crane.jpg",
		"contentType": "image/jpeg",
		"folder":      "blockages",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	slot := decode[domain.UploadSlotDTO](t, resp)
	require.Equal(t, http.MethodPut, slot.Method)

	put := func(body string) int {
		req, err := http.NewRequest(http.MethodPut, slot.UploadURL, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "image/jpeg")
		r, err := env.server.Client().Do(req)
		require.NoError(t, err)
		defer r.Body.Close()
		return r.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, put("crane-photo"))
	assert.Equal(t, http.StatusConflict, put("again"), "slots accept one upload")

	resp = env.do(t, http.MethodPost, "/api/v1/files/resolve", manager, map[string]interface{}{"keys": []string{slot.UploadKey}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	urls := decode[[]domain.DownloadURLDTO](t, resp)
	require.Len(t, urls, 1)

	u, err := url.Parse(urls[0].URL)
	require.NoError(t, err)
	dl, err := env.server.Client().Get(env.server.URL + u.RequestURI())
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "crane-photo", string(data))
	assert.Equal(t, "image/jpeg", dl.Header.Get("Content-Type"))

	// Blockage referencing the uploaded photo, then closing it
	resp = env.do(t, http.MethodPost, env.projectPath("/daily-report"), manager, map[string]interface{}{
		"baseVersionId": env.v1.ID,
		"entries": []map[string]interface{}{{
			"lineItemId": "glass-panels",
			"blockages": []map[string]interface{}{{
				"type":          "CLIENT",
				"category":      "Access",
				"severity":      "HIGH",
				"description":   "Crane access blocked",
				"weatherReport": "Clear",
				"openDate":      time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
				"photos":        []map[string]interface{}{{"storageKey": slot.UploadKey, "fileName": "crane.jpg", "fileType": "image/jpeg"}},
			}},
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	submitted := decode[domain.TransitionResult](t, resp)

	resp = env.do(t, http.MethodGet, env.projectPath("/blockages?status=OPEN"), manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blockages := decode[[]domain.BlockageDTO](t, resp)
	require.Len(t, blockages, 1)

	resp = env.do(t, http.MethodGet, env.projectPath("/blockages?status=MAYBE"), manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	closePath := env.projectPath("/blockages/" + blockages[0].ID + "/close")
	resp = env.do(t, http.MethodPost, closePath, manager, map[string]interface{}{"baseVersionId": submitted.Version.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decode[domain.ProjectVersionDTO](t, resp)

	resp = env.do(t, http.MethodPost, closePath, manager, map[string]interface{}{"baseVersionId": closed.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_UploadTooLarge(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	resp := env.do(t, http.MethodPost, "/api/v1/uploads", env.managerToken(t), map[string]interface{}{
		"fileName":    "plan.pdf",
		"contentType": "application/pdf",
		"folder":      "documents",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	slot := decode[domain.UploadSlotDTO](t, resp)

	req, err := http.NewRequest(http.MethodPut, slot.UploadURL, bytes.NewReader(bytes.Repeat([]byte("x"), 1024*1024+10)))
	require.NoError(t, err)
	r, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, r.StatusCode)
}

func TestRouter_RateLimit(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 100,
		WhitelistPaths:        []string{"/health"},
	})

	for i := 0; i < 5; i++ {
		resp := env.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "whitelisted paths are never limited")
	}

	var last *http.Response
	for i := 0; i < 3; i++ {
		last = env.do(t, http.MethodGet, "/api/v1/projects", "", nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.Equal(t, "60", last.Header.Get("Retry-After"))
	apiErr := decode[domain.APIError](t, last)
	assert.Equal(t, domain.ErrorTypeRateLimited, apiErr.Type)
}

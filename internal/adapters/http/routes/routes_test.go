package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"membertracker/docs"
	"membertracker/internal/adapters/http/middleware"
	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/adapters/persistence/repositories"
	"membertracker/internal/config"
	"membertracker/internal/core/domain"
	"membertracker/internal/core/services"
	"membertracker/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testAPI struct {
	t   *testing.T
	app *fiber.App
	cfg *config.Config
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), config.GormConfig(nil))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "test",
		JWT: config.JWTConfig{
			Secret:          "api-access",
			RefreshSecret:   "api-refresh",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Cookie: config.CookieConfig{AccessName: "access_token", RefreshName: "refresh_token"},
	}

	tx := repositories.NewTransactor(db)
	memberRepo := repositories.NewMemberRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	commRepo := repositories.NewCommunicationRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	policy := domain.NewDefaultPolicy(domain.DefaultPolicyConfig())

	email := services.NewEmailService(nil, nil, config.MailConfig{Enabled: false})
	dispatcher := services.NewDispatcher(deliveryRepo, email, config.DispatchConfig{Workers: 1})
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	authService := services.NewAuthService(userRepo, tokenRepo, cfg)
	paymentService := services.NewPaymentService(tx, memberRepo, paymentRepo, policy)
	commService := services.NewCommunicationService(tx, commRepo, deliveryRepo, memberRepo, policy, dispatcher)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, Services{
		Auth:          authService,
		User:          services.NewUserService(userRepo),
		Member:        services.NewMemberService(memberRepo, paymentRepo, email, dispatcher),
		Payment:       paymentService,
		Communication: commService,
		Dashboard:     services.NewDashboardService(memberRepo, paymentRepo, commRepo),
		Cron:          services.NewCronService(paymentService, commService, authService, config.SchedulerConfig{ReminderThreshold: 2}),
	}, cfg)

	return &testAPI{t: t, app: app, cfg: cfg}
}

func (a *testAPI) token(role domain.UserRole) string {
	a.t.Helper()
	token, err := jwt.GenerateAccessToken(1, "staff@example.com", string(role), a.cfg.JWT.Secret, time.Minute)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token, body string) (int, apiResponse, *http.Response) {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)

	var out apiResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out, resp
}

func TestAuthorization(t *testing.T) {
	api := newTestAPI(t)

	status, _, _ := api.do(http.MethodGet, "/api/v1/members", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = api.do(http.MethodGet, "/api/v1/members", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = api.do(http.MethodGet, "/api/v1/members", api.token(domain.RoleMember), "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = api.do(http.MethodGet, "/api/v1/members", api.token(domain.RoleStaff), "")
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = api.do(http.MethodGet, "/api/v1/admin/jobs", api.token(domain.RoleStaff), "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPaymentMethodsArePublic(t *testing.T) {
	api := newTestAPI(t)

	status, body, resp := api.do(http.MethodGet, "/api/v1/payments/methods", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "public")

	var methods []map[string]string
	require.NoError(t, json.Unmarshal(body.Data, &methods))
	assert.Len(t, methods, 6)
}

func TestMemberAndPaymentFlow(t *testing.T) {
	api := newTestAPI(t)
	staff := api.token(domain.RoleStaff)

	status, body, _ := api.do(http.MethodPost, "/api/v1/members", staff,
		`{"name":"Meron Haile","email":"meron@example.com","phone":"555-123-4567"}`)
	require.Equal(t, http.StatusCreated, status, body.Error)
	var member services.MemberView
	require.NoError(t, json.Unmarshal(body.Data, &member))
	assert.Equal(t, "meron@example.com", member.Email)

	status, body, _ = api.do(http.MethodPost, "/api/v1/members", staff, `{"name":"Bad","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MEMBER_003", body.Code)

	period := domain.PeriodOf(time.Now()).String()
	payment := `{"memberId":` + jsonUint(member.ID) + `,"amount":"25.00","period":"` + period + `","paymentMethod":"CASH"}`

	status, body, _ = api.do(http.MethodPost, "/api/v1/payments/record", staff, payment)
	require.Equal(t, http.StatusCreated, status, body.Error)

	status, body, _ = api.do(http.MethodPost, "/api/v1/payments/record", staff, payment)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "MEMBER_004", body.Code)

	status, _, _ = api.do(http.MethodGet, "/api/v1/members/"+jsonUint(member.ID)+"/payment-status", staff, "")
	assert.Equal(t, http.StatusOK, status)

	status, body, _ = api.do(http.MethodGet, "/api/v1/members/9999", staff, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MEMBER_006", body.Code)

	status, body, _ = api.do(http.MethodDelete, "/api/v1/members/"+jsonUint(member.ID), staff, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "MEMBER_007", body.Code)

	status, _, resp := api.do(http.MethodGet, "/api/v1/members/export.csv", staff, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	csv, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "Meron Haile")
}

func TestSendCommunicationIsAccepted(t *testing.T) {
	api := newTestAPI(t)
	staff := api.token(domain.RoleStaff)

	status, body, _ := api.do(http.MethodPost, "/api/v1/members", staff, `{"name":"Yonas","email":"yonas@example.com"}`)
	require.Equal(t, http.StatusCreated, status, body.Error)
	var member services.MemberView
	require.NoError(t, json.Unmarshal(body.Data, &member))

	status, body, _ = api.do(http.MethodPost, "/api/v1/communications/send", staff,
		`{"title":"Choir practice","messageContent":"See you Friday","type":"ANNOUNCEMENT","memberIds":[`+jsonUint(member.ID)+`]}`)
	assert.Equal(t, http.StatusAccepted, status, body.Error)

	status, body, _ = api.do(http.MethodPost, "/api/v1/communications/send", staff,
		`{"title":"Empty","messageContent":"Nobody","type":"ANNOUNCEMENT","memberIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "COMMUNICATION_002", body.Code)
}

func TestAdminJobs(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token(domain.RoleAdmin)

	status, body, _ := api.do(http.MethodGet, "/api/v1/admin/jobs", admin, "")
	require.Equal(t, http.StatusOK, status)
	var names []string
	require.NoError(t, json.Unmarshal(body.Data, &names))
	assert.Contains(t, names, services.JobMissedCounters)

	status, _, _ = api.do(http.MethodPost, "/api/v1/admin/jobs/"+services.JobMissedCounters+"/run", admin, "")
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = api.do(http.MethodPost, "/api/v1/admin/jobs/vacuum/run", admin, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func jsonUint(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestEveryAPIRouteIsDocumented(t *testing.T) {
	api := newTestAPI(t)

	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))

	documented := 0
	for _, route := range api.app.GetRoutes(true) {
		if !strings.HasPrefix(route.Path, "/api/v1") {
			continue
		}
		switch route.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			continue
		}

		path := swaggerPath(strings.TrimPrefix(route.Path, "/api/v1"))
		methods, ok := spec.Paths[path]
		if assert.True(t, ok, "%s %s is not documented", route.Method, path) {
			_, ok = methods[strings.ToLower(route.Method)]
			assert.True(t, ok, "%s %s is not documented", route.Method, path)
			documented++
		}
	}
	assert.Greater(t, documented, 40)
}

// swaggerPath turns a fiber route path into its swagger form
func swaggerPath(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + strings.TrimPrefix(part, ":") + "}"
		}
	}
	return strings.Join(parts, "/")
}

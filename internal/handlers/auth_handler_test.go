package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn             func(email, password, firstName, lastName string) (*models.User, error)
	getUserByIDFn            func(id string) (*models.User, error)
	attemptLoginFn           func(email, password string) (*models.User, error)
	updatePlanningDefaultsFn func(userID string, defaults models.PlanningDefaults) (*models.User, error)
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdatePlanningDefaults(userID string, defaults models.PlanningDefaults) (*models.User, error) {
	if m.updatePlanningDefaultsFn != nil {
		return m.updatePlanningDefaultsFn(userID, defaults)
	}
	return &models.User{Planning: defaults}, nil
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type auditCall struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	calls []auditCall
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.calls = append(m.calls, auditCall{userID, action, resourceType, resourceID})
}

// --- test helpers ---

const testUserID = "0190a0b2-7c3e-7a2b-9d1e-1234567890ab"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func testTokens() *middleware.TokenIssuer {
	return middleware.NewTokenIssuer("test-secret", time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectUserID(testUserID), handler.GetProfile)
	r.PUT("/profile/planning", injectUserID(testUserID), handler.UpdatePlanningDefaults)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newRequestWithKey(method, path, body, apiKey string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func testUser(email string) *models.User {
	return &models.User{Base: models.Base{ID: testUserID}, Email: email, FirstName: "John", LastName: "Doe"}
}

// --- tests ---

func TestAuthHandler_RegisterIssuesToken(t *testing.T) {
	var gotEmail, gotFirst string
	userSvc := &mockUserService{
		createUserFn: func(email, _, firstName, _ string) (*models.User, error) {
			gotEmail, gotFirst = email, firstName
			return testUser(email), nil
		},
	}
	tokens := testTokens()
	r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, tokens))

	rec := doRequest(r, "POST", "/auth/register",
		`{"email":"jo@example.com","password":"password123","first_name":"Jo","last_name":"Doe"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotEmail != "jo@example.com" || gotFirst != "Jo" {
		t.Errorf("service received email=%q first=%q", gotEmail, gotFirst)
	}

	result := parseJSON(t, rec)
	token, _ := result["token"].(string)
	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("expected a verifiable token, got %v", err)
	}
	if claims.UserID != testUserID {
		t.Errorf("token subject = %s, want %s", claims.UserID, testUserID)
	}
	if user := result["user"].(map[string]interface{}); user["id"] != testUserID {
		t.Errorf("unexpected user %v", user)
	}
}

func TestAuthHandler_CredentialErrors(t *testing.T) {
	duplicate := &mockUserService{
		createUserFn: func(_, _, _, _ string) (*models.User, error) { return nil, apperrors.ErrDuplicateEmail },
	}
	badLogin := &mockUserService{
		attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrInvalidCredentials },
	}

	cases := []struct {
		name     string
		users    *mockUserService
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"register without email", &mockUserService{}, "/auth/register", `{"password":"password123"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"register with short password", &mockUserService{}, "/auth/register", `{"email":"jo@example.com","password":"short"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"register with malformed email", &mockUserService{}, "/auth/register", `{"email":"jo","password":"password123"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"register duplicate", duplicate, "/auth/register", `{"email":"jo@example.com","password":"password123"}`, http.StatusConflict, "DUPLICATE_EMAIL"},
		{"login with empty body", &mockUserService{}, "/auth/login", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"login rejected", badLogin, "/auth/login", `{"email":"jo@example.com","password":"nope"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupAuthRouter(NewAuthHandler(tc.users, &mockAuditService{}, testTokens()))

			rec := doRequest(r, "POST", tc.path, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), tc.wantErr)
		})
	}
}

func TestAuthHandler_LoginReturnsUserAndToken(t *testing.T) {
	userSvc := &mockUserService{
		attemptLoginFn: func(email, _ string) (*models.User, error) { return testUser(email), nil },
	}
	r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, testTokens()))

	rec := doRequest(r, "POST", "/auth/login", `{"email":"jo@example.com","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if token, _ := result["token"].(string); token == "" {
		t.Error("expected a token")
	}
	if user := result["user"].(map[string]interface{}); user["email"] != "jo@example.com" {
		t.Errorf("unexpected user %v", user)
	}
}

func TestAuthHandler_GetProfile(t *testing.T) {
	profile := &mockUserService{
		getUserByIDFn: func(id string) (*models.User, error) {
			u := testUser("jo@example.com")
			u.ID = id
			u.Planning.Priority = "live-within-means"
			return u, nil
		},
	}

	r := setupAuthRouter(NewAuthHandler(profile, &mockAuditService{}, testTokens()))
	rec := doRequest(r, "GET", "/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["first_name"] != "John" || user["planning"].(map[string]interface{})["priority"] != "live-within-means" {
		t.Errorf("unexpected profile %v", user)
	}

	unauthenticated := gin.New()
	unauthenticated.GET("/profile", NewAuthHandler(profile, &mockAuditService{}, testTokens()).GetProfile)
	if rec := doRequest(unauthenticated, "GET", "/profile", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a user in context, got %d", rec.Code)
	}

	missing := &mockUserService{
		getUserByIDFn: func(string) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
	}
	r = setupAuthRouter(NewAuthHandler(missing, &mockAuditService{}, testTokens()))
	if rec := doRequest(r, "GET", "/profile", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a deleted user, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdatePlanningDefaults(t *testing.T) {
	t.Run("stores defaults and audits", func(t *testing.T) {
		var got models.PlanningDefaults
		userSvc := &mockUserService{
			updatePlanningDefaultsFn: func(userID string, defaults models.PlanningDefaults) (*models.User, error) {
				if userID != testUserID {
					t.Errorf("unexpected user %s", userID)
				}
				got = defaults
				user := testUser("test@example.com")
				user.Planning = defaults
				return user, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, testTokens()))

		rec := doRequest(r, "PUT", "/profile/planning",
			`{"priority":"increase-savings","life_stage":"student"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Priority != "increase-savings" || got.LifeStage != "student" || got.LivingSituation != "" {
			t.Errorf("unexpected defaults %+v", got)
		}
		planning := parseJSON(t, rec)["user"].(map[string]interface{})["planning"].(map[string]interface{})
		if planning["priority"] != "increase-savings" {
			t.Errorf("expected priority in response, got %v", planning)
		}
		if len(audit.calls) != 1 || audit.calls[0].action != "UPDATE_PLANNING_DEFAULTS" || audit.calls[0].resourceID != testUserID {
			t.Errorf("unexpected audit calls %+v", audit.calls)
		}
	})

	t.Run("rejects unknown priority before the service", func(t *testing.T) {
		userSvc := &mockUserService{
			updatePlanningDefaultsFn: func(string, models.PlanningDefaults) (*models.User, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, testTokens()))

		rec := doRequest(r, "PUT", "/profile/planning", `{"priority":"yolo"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_PRIORITY")
		if len(audit.calls) != 0 {
			t.Errorf("expected no audit, got %+v", audit.calls)
		}
	})

	t.Run("rejects unknown living situation", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, testTokens()))

		rec := doRequest(r, "PUT", "/profile/planning", `{"living_situation":"castle"}`)

		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_PROFILE")
	})
}

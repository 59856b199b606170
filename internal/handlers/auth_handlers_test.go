package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eshop-backend/internal/models"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB, *stubPublisher) {
	db := initTestDB(t)
	pub := &stubPublisher{}
	h := &AuthHandler{
		DB:            db,
		JWTSecret:     []byte("test-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Producer:      pub,
	}
	return h, db, pub
}

func registerUser(t *testing.T, h *AuthHandler, e *echo.Echo, email, password string) {
	body := map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": password,
		"street":   "42 Main St",
		"city":     "Springfield",
		"zip":      "12345",
		"country":  "US",
		"phone":    "555-0101",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/register", body)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister(t *testing.T) {
	h, db, pub := newAuthHandler(t)
	e := echo.New()

	registerUser(t, h, e, "user@example.com", "password123")

	var user models.User
	require.NoError(t, db.Where("email = ?", "user@example.com").First(&user).Error)
	require.Equal(t, "user", user.Role)
	require.NotEqual(t, "password123", user.PasswordHash)

	require.Len(t, pub.events, 1)
	require.Equal(t, "user_registered", pub.events[0]["type"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	registerUser(t, h, e, "user@example.com", "password123")

	body := map[string]string{"name": "Other", "email": "user@example.com", "password": "different"}
	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/register", body)
	err := h.Register(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestRegisterMissingFields(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/register", map[string]string{"email": "user@example.com"})
	err := h.Register(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestLogin(t *testing.T) {
	h, db, _ := newAuthHandler(t)
	e := echo.New()

	registerUser(t, h, e, "user@example.com", "password123")

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "user@example.com", "password": "password123"})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IsAdmin      bool   `json:"is_admin"`
	}
	require.NoError(t, decodeBody(rec, &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.False(t, resp.IsAdmin)

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.False(t, stored.Revoked)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	registerUser(t, h, e, "user@example.com", "password123")

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "user@example.com", "password": "wrong"})
	err := h.Login(c)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestLoginUnknownEmail(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "nobody@example.com", "password": "password123"})
	err := h.Login(c)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestLogOutRevokesRefreshToken(t *testing.T) {
	h, db, _ := newAuthHandler(t)
	e := echo.New()

	registerUser(t, h, e, "user@example.com", "password123")

	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "user@example.com", "password": "password123"})
	require.NoError(t, h.Login(c))

	var resp struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, decodeBody(rec, &resp))

	rec2, c2 := doJSONRequest(t, e, http.MethodPost, "/api/v1/logout", nil)
	c2.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: resp.RefreshToken})
	require.NoError(t, h.LogOut(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.True(t, stored.Revoked)
}

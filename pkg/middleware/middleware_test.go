package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/bookstore-service/pkg/auth"
	md "github.com/Astemirdum/bookstore-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newEcho(tokens *auth.Manager, roles ...string) *echo.Echo {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		name, _ := auth.GetUserName(c.Request().Context())
		return c.String(http.StatusOK, name)
	}, md.JwtAuthentication(tokens), md.RequireRoles(roles...))
	return e
}

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()
	tokens := auth.NewManager("secret", time.Hour)
	valid, _, err := tokens.Generate("jdoe", "admin")
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "ok",
			header:       "Bearer " + valid,
			expectedCode: http.StatusOK,
			expectedBody: "jdoe",
		},
		{
			name:         "no header",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "not bearer",
			header:       "Basic abc",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"Invalid Authorization Header"}`,
		},
		{
			name:         "bad token",
			header:       "Bearer abc.def.ghi",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"JwtAccessDenied"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEcho(tokens, "admin")
			r := httptest.NewRequest(http.MethodGet, "/private", http.NoBody)
			if tt.header != "" {
				r.Header.Set(md.AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()
	tokens := auth.NewManager("secret", time.Hour)
	librarian, _, err := tokens.Generate("lib", "librarian")
	require.NoError(t, err)
	manager, _, err := tokens.Generate("mgr", "Manager")
	require.NoError(t, err)

	e := newEcho(tokens, "admin", "manager")

	r := httptest.NewRequest(http.MethodGet, "/private", http.NoBody)
	r.Header.Set(md.AuthorizationHeader, "Bearer "+librarian)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/private", http.NoBody)
	r.Header.Set(md.AuthorizationHeader, "Bearer "+manager)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "mgr", w.Body.String())
}

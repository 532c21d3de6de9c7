package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/config"
)

func TestLocalProvider(t *testing.T) {
	p := NewLocalAuthProvider("MOCK-TOKEN", internal.NopLogger())
	u, err := p.Validate(context.Background(), "MOCK-TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = p.Validate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = NewLocalAuthProvider("", internal.NopLogger()).Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTProvider(t *testing.T) {
	p := NewJWTAuthProvider("s3cret", internal.NopLogger())
	tok, err := p.Issue(internal.User{ID: "user-42", Name: "Ada"}, time.Hour)
	require.NoError(t, err)

	u, err := p.Validate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", u.ID)
	assert.Equal(t, "Ada", u.Name)

	expired, err := p.Issue(internal.User{ID: "user-42"}, -time.Minute)
	require.NoError(t, err)
	_, err = p.Validate(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewJWTAuthProvider("different", internal.NopLogger()).Issue(internal.User{ID: "x"}, time.Hour)
	require.NoError(t, err)
	_, err = p.Validate(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = p.Validate(context.Background(), none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewProvider(t *testing.T) {
	_, ok := NewProvider(&config.Config{Env: "development", AuthToken: "t"}, internal.NopLogger()).(*LocalAuthProvider)
	assert.True(t, ok)
	_, ok = NewProvider(&config.Config{Env: "production", JWTSecret: "s"}, internal.NopLogger()).(*JWTAuthProvider)
	assert.True(t, ok)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(NewLocalAuthProvider("MOCK-TOKEN", internal.NopLogger())))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID)
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer", "/me", "Bearer MOCK-TOKEN", http.StatusOK},
		{"query token", "/me?token=MOCK-TOKEN", "", http.StatusOK},
		{"wrong token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"missing", "/me", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	op := Operator{ID: uuid.New(), Name: "Dana", Role: RoleAdmin}
	raw, err := SignToken(op, testSecret)
	require.NoError(t, err)

	got, err := OperatorFromToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, op, *got)
	assert.True(t, got.IsAdmin())
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := SignToken(Operator{ID: uuid.New()}, testSecret)
	require.NoError(t, err)

	_, err = OperatorFromToken(raw, []byte("other-secret"))
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	op := Operator{ID: uuid.New(), Name: "Kim", Role: "cashier"}
	raw, err := SignToken(op, testSecret)
	require.NoError(t, err)

	e := echo.New()
	handler := Middleware(testSecret)(func(c echo.Context) error {
		got, ok := FromEchoContext(c)
		require.True(t, ok)
		assert.Equal(t, op.ID, got.ID)
		return c.NoContent(http.StatusOK)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("access token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: raw})
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

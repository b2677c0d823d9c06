package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
	calls int
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	f.calls++
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, echo.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, echo.ErrNotFound
}

func newAuthFixture(t *testing.T, role entities.UserRole) (*AuthMiddleware, *fakeUserRepo, *jwt.Manager, *entities.User) {
	t.Helper()

	user := &entities.User{
		ID:    uuid.New(),
		Email: "dev@meetsync.io",
		Role:  role,
	}
	repo := &fakeUserRepo{users: map[uuid.UUID]*entities.User{user.ID: user}}
	tokens := jwt.NewManager("test-secret", time.Hour)
	mw := NewAuthMiddleware(tokens, repo, cache.NewMemoryStore(), zap.NewNop())
	return mw, repo, tokens, user
}

func invoke(mw *AuthMiddleware, token string, extra ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	wrapped := handler
	for i := len(extra) - 1; i >= 0; i-- {
		wrapped = extra[i](wrapped)
	}
	wrapped = mw.EchoAuth()(wrapped)

	if err := wrapped(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestEchoAuth_ResolvesUserAndCaches(t *testing.T) {
	mw, repo, tokens, user := newAuthFixture(t, entities.UserRoleMember)

	token, err := tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	rec := invoke(mw, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.calls)

	// second request is served from the session cache
	rec = invoke(mw, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.calls)
}

func TestEchoAuth_MissingToken(t *testing.T) {
	mw, _, _, _ := newAuthFixture(t, entities.UserRoleMember)

	rec := invoke(mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEchoAuth_BadToken(t *testing.T) {
	mw, _, _, _ := newAuthFixture(t, entities.UserRoleMember)

	rec := invoke(mw, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEchoAuth_UnknownUser(t *testing.T) {
	mw, _, tokens, _ := newAuthFixture(t, entities.UserRoleMember)

	token, err := tokens.GenerateAccessToken(uuid.New(), "ghost@meetsync.io", "member")
	require.NoError(t, err)

	rec := invoke(mw, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw, _, tokens, user := newAuthFixture(t, entities.UserRoleMember)

	token, err := tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	rec := invoke(mw, token, mw.RequireRole(entities.UserRoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	mwAdmin, _, tokensAdmin, admin := newAuthFixture(t, entities.UserRoleSuperAdmin)
	adminToken, err := tokensAdmin.GenerateAccessToken(admin.ID, admin.Email, string(admin.Role))
	require.NoError(t, err)

	rec = invoke(mwAdmin, adminToken, mwAdmin.RequireRole(entities.UserRoleSuperAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/internal/usecase/relay"
	"github.com/meetsync-team/meetsync/pkg/config"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

type stubRelay struct{}

func (stubRelay) Handle(context.Context, string, []byte) (*relay.Result, error) {
	return &relay.Result{Ignored: true}, nil
}

func (stubRelay) Retry(context.Context, *entities.User, uuid.UUID) (*relay.Result, error) {
	return &relay.Result{Forwarded: true}, nil
}

// newRouterEcho wires the route surface the way main does, including the
// global CORS middleware.
func newRouterEcho(t *testing.T) *echo.Echo {
	t.Helper()

	logger := zap.NewNop()
	cfg := &config.Config{}
	cfg.Server.Environment = "test"

	tokens := jwt.NewManager("test-secret", time.Hour)
	auth := middleware.NewAuthMiddleware(tokens, nil, cache.NewMemoryStore(), logger)

	rt := NewRouter(
		cfg,
		auth,
		NewWebhookHandler(stubRelay{}, logger),
		NewCallbackHandler(nil, logger),
		NewCrmHandler(nil, logger),
		NewMeetingHandler(nil, nil, logger),
		NewAdminHandler(stubRelay{}, logger),
	)

	e := echo.New()
	e.Use(echomw.CORS())
	rt.Setup(e)
	return e
}

func TestCORS_PreflightAnsweredOnAllSurfaces(t *testing.T) {
	e := newRouterEcho(t)

	paths := []string{
		"/webhooks/user/ep-token",
		"/webhooks/org/ep-token",
		"/webhooks/global/ep-token",
		"/webhooks/n8n/callback",
		"/crm/call",
		"/crm/test-connection",
		"/crm/credentials",
		"/meetings/match-type",
		"/meetings/" + uuid.NewString() + "/prepare-payload",
		"/admin/meetings/" + uuid.NewString() + "/retry-forward",
	}

	for _, path := range paths {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin), path)
	}
}

func TestCORS_ActualResponseCarriesAllowOrigin(t *testing.T) {
	e := newRouterEcho(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/org/ep-token",
		strings.NewReader(`{"data":{"event_type":"call.speak.started"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderOrigin, "https://dashboard.telnyx.com")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

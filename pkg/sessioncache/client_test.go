package sessioncache_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/core/services"
	"github.com/SscSPs/chat_backend/internal/handlers"
	"github.com/SscSPs/chat_backend/internal/platform/config"
	"github.com/SscSPs/chat_backend/internal/repositories/database/memory"
	"github.com/SscSPs/chat_backend/pkg/sessioncache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type capturingNotifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *capturingNotifier) SendPasswordReset(_ context.Context, _, _, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *capturingNotifier) QueueWelcome(string, string) {}

func (n *capturingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[len(n.tokens)-1]
}

type ClientTestSuite struct {
	suite.Suite
	ctx      context.Context
	server   *httptest.Server
	sessions portssvc.SessionSvc
	notifier *capturingNotifier
	store    *sessioncache.SQLiteStore
	client   *sessioncache.Client
	requests atomic.Int64
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctx = context.Background()
	suite.requests.Store(0)

	repo := memory.NewUserRepository()
	suite.notifier = &capturingNotifier{}
	suite.sessions = services.NewSessionService("client-test-secret-client-test-secret", "chat-backend", time.Hour)
	container := &portssvc.ServiceContainer{
		Auth:               services.NewAuthService(repo, suite.sessions, suite.notifier),
		User:               services.NewUserService(repo),
		Session:            suite.sessions,
		GoogleOAuthHandler: services.NewGoogleOAuthHandlerService(&config.Config{}),
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		suite.requests.Add(1)
		c.Next()
	})
	handlers.RegisterRoutes(r, &config.Config{ClientURL: "http://client.test", IsProduction: true}, container, handlers.RouteDeps{})
	suite.server = httptest.NewServer(r)

	store, err := sessioncache.OpenSQLite(suite.ctx, ":memory:")
	suite.Require().NoError(err)
	suite.store = store
	suite.client = sessioncache.New(suite.server.URL+"/api", store)
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
	suite.Require().NoError(suite.store.Close())
}

func (suite *ClientTestSuite) TestRegisterPersistsSession() {
	user, err := suite.client.Register(suite.ctx, "Alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)
	suite.Equal("alice@example.com", user.Email)
	suite.True(suite.client.IsAuthenticated())

	token, err := suite.store.Get(suite.ctx, "token")
	suite.Require().NoError(err)
	suite.Equal(suite.client.Token(), token)

	// A fresh client on the same store picks the session up.
	other := sessioncache.New(suite.server.URL+"/api", suite.store)
	scrubbed, err := other.Restore(suite.ctx, "http://client.test/chat")
	suite.Require().NoError(err)
	suite.Equal("http://client.test/chat", scrubbed)
	suite.True(other.IsAuthenticated())
	suite.Equal(user.ID, other.User().ID)
}

func (suite *ClientTestSuite) TestLoginFailureLeavesCacheEmpty() {
	_, err := suite.client.Register(suite.ctx, "Alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.client.Logout(suite.ctx))

	_, err = suite.client.Login(suite.ctx, "alice@example.com", "wrong1")
	var apiErr *sessioncache.APIError
	suite.Require().True(errors.As(err, &apiErr))
	suite.Equal(http.StatusUnauthorized, apiErr.Status)
	suite.Equal("Invalid credentials", apiErr.Message)
	suite.False(suite.client.IsAuthenticated())
}

func (suite *ClientTestSuite) TestRestoreDropsRejectedSession() {
	suite.Require().NoError(suite.store.Set(suite.ctx, "token", "not-a-valid-token"))
	suite.Require().NoError(suite.store.Set(suite.ctx, "user", `{"id":"x"}`))

	_, err := suite.client.Restore(suite.ctx, "http://client.test/")
	suite.Error(err)
	suite.False(suite.client.IsAuthenticated())

	token, err := suite.store.Get(suite.ctx, "token")
	suite.Require().NoError(err)
	suite.Empty(token)
}

func (suite *ClientTestSuite) TestRestoreSkipsVerificationOnResetPage() {
	suite.Require().NoError(suite.store.Set(suite.ctx, "token", "stale"))

	_, err := suite.client.Restore(suite.ctx, "http://client.test/reset-password?token=abc")
	suite.Require().NoError(err)
	suite.Zero(suite.requests.Load())
}

func (suite *ClientTestSuite) TestForgotAndResetPassword() {
	_, err := suite.client.Register(suite.ctx, "Alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.client.Logout(suite.ctx))

	msg, err := suite.client.ForgotPassword(suite.ctx, "alice@example.com")
	suite.Require().NoError(err)
	suite.Equal(services.ForgotPasswordMessage, msg)

	user, err := suite.client.ResetPassword(suite.ctx, suite.notifier.last(), "secret2")
	suite.Require().NoError(err)
	suite.Equal("alice@example.com", user.Email)
	suite.True(suite.client.IsAuthenticated())

	_, err = suite.client.Login(suite.ctx, "alice@example.com", "secret2")
	suite.NoError(err)
}

func (suite *ClientTestSuite) TestResetPasswordRejectsMalformedTokenLocally() {
	for _, token := range []string{"", "abc", strings.Repeat("g", 64), strings.Repeat("a", 63)} {
		_, err := suite.client.ResetPassword(suite.ctx, token, "secret2")
		suite.ErrorIs(err, sessioncache.ErrMalformedResetToken, token)
	}
	suite.Zero(suite.requests.Load())
}

func (suite *ClientTestSuite) TestCompleteExternalLoginScrubsToken() {
	res, err := suite.client.Register(suite.ctx, "Alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)
	token := suite.client.Token()
	suite.Require().NoError(suite.client.Logout(suite.ctx))

	fresh := sessioncache.New(suite.server.URL+"/api", suite.store)
	scrubbed, err := fresh.Restore(suite.ctx, "http://client.test/auth/success?token="+token+"&next=chat")
	suite.Require().NoError(err)
	suite.Equal("http://client.test/auth/success?next=chat", scrubbed)
	suite.True(fresh.IsAuthenticated())
	suite.Equal(res.ID, fresh.User().ID)

	_, err = fresh.CompleteExternalLogin(suite.ctx, "http://client.test/auth/success")
	suite.ErrorIs(err, sessioncache.ErrNoSessionToken)
}

func (suite *ClientTestSuite) TestLogoutClearsEvenWhenServerUnreachable() {
	_, err := suite.client.Register(suite.ctx, "Alice", "alice@example.com", "secret1")
	suite.Require().NoError(err)

	suite.server.Close()
	suite.Require().NoError(suite.client.Logout(suite.ctx))
	suite.False(suite.client.IsAuthenticated())

	token, err := suite.store.Get(suite.ctx, "token")
	suite.Require().NoError(err)
	suite.Empty(token)
}

package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/chat_backend/internal/apperrors"
	"github.com/SscSPs/chat_backend/internal/core/domain"
	portssvc "github.com/SscSPs/chat_backend/internal/core/ports/services"
	"github.com/SscSPs/chat_backend/internal/core/services"
	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/repositories/database/memory"
	"github.com/SscSPs/chat_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type AuthServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	clock    *fakeClock
	repo     *memory.UserRepository
	notifier *MockNotifier
	sessions portssvc.SessionSvc
	service  portssvc.AuthSvcFacade
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	suite.repo = memory.NewUserRepository()
	suite.notifier = new(MockNotifier)
	suite.notifier.On("QueueWelcome", mock.Anything, mock.Anything).Maybe()
	suite.sessions = services.NewSessionService(testSecret, "chat-backend", 7*24*time.Hour, services.WithSessionClock(suite.clock.Now))
	suite.service = services.NewAuthService(suite.repo, suite.sessions, suite.notifier, services.WithAuthClock(suite.clock.Now))
}

func (suite *AuthServiceTestSuite) register(name, email, password string) *dto.AuthResult {
	res, err := suite.service.Register(suite.ctx, dto.RegisterRequest{Name: name, Email: email, Password: password})
	suite.Require().NoError(err)
	return res
}

func (suite *AuthServiceTestSuite) requestReset(email string) string {
	suite.notifier.On("SendPasswordReset", mock.Anything, domain.NormalizeEmail(email), mock.Anything, mock.Anything).Return(nil).Once()
	msg, err := suite.service.ForgotPassword(suite.ctx, dto.ForgotPasswordRequest{Email: email})
	suite.Require().NoError(err)
	suite.Equal(services.ForgotPasswordMessage, msg)
	return suite.notifier.lastResetToken()
}

func assertValidationMessage(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *apperrors.AppError
	if assert.True(t, errors.As(err, &appErr), "expected AppError, got %v", err) {
		assert.Equal(t, message, appErr.Message)
	}
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// --- Register ---

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	res := suite.register("  Alice  ", "Alice@Example.COM", "secret1")

	suite.NotEmpty(res.Token)
	suite.Equal("alice@example.com", res.User.Email)
	suite.Equal("Alice", res.User.Name)
	suite.Equal("local", res.User.AuthProvider)
	suite.NotEmpty(res.User.ProfileImage)

	stored, err := suite.repo.FindUserByEmail(suite.ctx, "alice@example.com")
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.PasswordHash)
	suite.NotEqual("secret1", *stored.PasswordHash)
	suite.Nil(stored.ExternalID)
	suite.True(stored.IsActive)

	userID, err := suite.sessions.Verify(suite.ctx, res.Token)
	suite.Require().NoError(err)
	suite.Equal(stored.UserID, userID)
	suite.notifier.AssertCalled(suite.T(), "QueueWelcome", "alice@example.com", "Alice")
}

func (suite *AuthServiceTestSuite) TestRegister_Validation() {
	tests := []struct {
		name string
		req  dto.RegisterRequest
		msg  string
	}{
		{"missing name", dto.RegisterRequest{Email: "a@example.com", Password: "secret1"}, "Please provide all required fields"},
		{"blank name", dto.RegisterRequest{Name: "   ", Email: "a@example.com", Password: "secret1"}, "Please provide all required fields"},
		{"missing email", dto.RegisterRequest{Name: "A", Password: "secret1"}, "Please provide all required fields"},
		{"missing password", dto.RegisterRequest{Name: "A", Email: "a@example.com"}, "Please provide all required fields"},
		{"short password", dto.RegisterRequest{Name: "A", Email: "a@example.com", Password: "12345"}, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.Register(suite.ctx, tt.req)
			assertValidationMessage(suite.T(), err, tt.msg)
		})
	}
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmailIsConflict() {
	suite.register("Alice", "alice@example.com", "secret1")
	_, err := suite.service.Register(suite.ctx, dto.RegisterRequest{Name: "Other", Email: "ALICE@example.com", Password: "secret2"})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// --- Login ---

func (suite *AuthServiceTestSuite) TestRegisterThenLogin() {
	reg := suite.register("Bob", "bob@example.com", "hunter22")
	suite.clock.Advance(time.Minute)

	res, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: " BOB@example.com ", Password: "hunter22"})
	suite.Require().NoError(err)
	suite.Equal(reg.User.ID, res.User.ID)
	suite.Require().NotNil(res.User.LastLogin)
	suite.Equal(suite.clock.Now(), *res.User.LastLogin)
}

func (suite *AuthServiceTestSuite) TestLogin_InvalidCredentialsAreUniform() {
	suite.register("Bob", "bob@example.com", "hunter22")

	inactive := suite.register("Eve", "eve@example.com", "hunter22")
	u, err := suite.repo.FindUserByID(suite.ctx, inactive.User.ID)
	suite.Require().NoError(err)
	u.IsActive = false
	suite.Require().NoError(suite.repo.UpdateUser(suite.ctx, *u))

	for name, req := range map[string]dto.LoginRequest{
		"unknown email":  {Email: "nobody@example.com", Password: "hunter22"},
		"wrong password": {Email: "bob@example.com", Password: "wrong-pass"},
		"inactive user":  {Email: "eve@example.com", Password: "hunter22"},
	} {
		suite.Run(name, func() {
			_, err := suite.service.Login(suite.ctx, req)
			suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
		})
	}
}

func (suite *AuthServiceTestSuite) TestLogin_ExternalAccountHasNoPassword() {
	_, err := suite.service.CompleteExternalLogin(suite.ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, Subject: "g-1", Email: "g@example.com", Name: "G",
	})
	suite.Require().NoError(err)

	_, err = suite.service.Login(suite.ctx, dto.LoginRequest{Email: "g@example.com", Password: "anything"})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_MissingFields() {
	_, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "bob@example.com"})
	assertValidationMessage(suite.T(), err, "Please provide email and password")
}

// --- Forgot / Reset password ---

func (suite *AuthServiceTestSuite) TestForgotPassword_StoresOnlyDigest() {
	reg := suite.register("Carol", "carol@example.com", "oldpass1")
	token := suite.requestReset("carol@example.com")

	suite.True(utils.IsWellFormedResetToken(token))
	stored, err := suite.repo.FindUserByID(suite.ctx, reg.User.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.ResetTokenDigest)
	suite.Equal(utils.DigestResetToken(token), *stored.ResetTokenDigest)
	suite.NotEqual(token, *stored.ResetTokenDigest)
	suite.Require().NotNil(stored.ResetTokenExpiresAt)
	suite.Equal(suite.clock.Now().Add(time.Hour), *stored.ResetTokenExpiresAt)
}

func (suite *AuthServiceTestSuite) TestForgotPassword_UnknownAndInactiveGetGenericMessage() {
	inactive := suite.register("Eve", "eve@example.com", "hunter22")
	u, err := suite.repo.FindUserByID(suite.ctx, inactive.User.ID)
	suite.Require().NoError(err)
	u.IsActive = false
	suite.Require().NoError(suite.repo.UpdateUser(suite.ctx, *u))

	for _, email := range []string{"nobody@example.com", "eve@example.com"} {
		msg, err := suite.service.ForgotPassword(suite.ctx, dto.ForgotPasswordRequest{Email: email})
		suite.Require().NoError(err)
		suite.Equal(services.ForgotPasswordMessage, msg)
	}
	suite.notifier.AssertNotCalled(suite.T(), "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestForgotPassword_DispatchFailureRollsBack() {
	reg := suite.register("Dan", "dan@example.com", "oldpass1")
	suite.notifier.On("SendPasswordReset", mock.Anything, "dan@example.com", "Dan", mock.Anything).
		Return(errors.New("smtp down")).Once()

	_, err := suite.service.ForgotPassword(suite.ctx, dto.ForgotPasswordRequest{Email: "dan@example.com"})
	suite.ErrorIs(err, apperrors.ErrNotificationDispatch)

	stored, err := suite.repo.FindUserByID(suite.ctx, reg.User.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.ResetTokenDigest)
	suite.Nil(stored.ResetTokenExpiresAt)

	_, err = suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: suite.notifier.lastResetToken(), Password: "newpass1"})
	suite.ErrorIs(err, apperrors.ErrInvalidOrExpiredToken)
}

func (suite *AuthServiceTestSuite) TestForgotPassword_MissingEmail() {
	_, err := suite.service.ForgotPassword(suite.ctx, dto.ForgotPasswordRequest{Email: "  "})
	assertValidationMessage(suite.T(), err, "Please provide email address")
}

func (suite *AuthServiceTestSuite) TestResetPassword_IsSingleUse() {
	suite.register("Erin", "erin@example.com", "oldpass1")
	token := suite.requestReset("erin@example.com")

	res, err := suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: token, Password: "newpass1"})
	suite.Require().NoError(err)
	suite.NotEmpty(res.Token)

	_, err = suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: token, Password: "newpass2"})
	suite.ErrorIs(err, apperrors.ErrInvalidOrExpiredToken)
}

func (suite *AuthServiceTestSuite) TestResetPassword_ExpiredTokenFails() {
	suite.register("Fay", "fay@example.com", "oldpass1")
	token := suite.requestReset("fay@example.com")

	suite.clock.Advance(time.Hour)
	_, err := suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: token, Password: "newpass1"})
	suite.ErrorIs(err, apperrors.ErrInvalidOrExpiredToken)

	_, err = suite.service.Login(suite.ctx, dto.LoginRequest{Email: "fay@example.com", Password: "oldpass1"})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestResetPassword_NewRequestSupersedesOld() {
	suite.register("Gus", "gus@example.com", "oldpass1")
	first := suite.requestReset("gus@example.com")
	second := suite.requestReset("gus@example.com")
	suite.NotEqual(first, second)

	_, err := suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: first, Password: "newpass1"})
	suite.ErrorIs(err, apperrors.ErrInvalidOrExpiredToken)
	_, err = suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: second, Password: "newpass1"})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestResetPassword_Validation() {
	_, err := suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Password: "newpass1"})
	assertValidationMessage(suite.T(), err, "Please provide token and new password")

	_, err = suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: "abc", Password: "123"})
	assertValidationMessage(suite.T(), err, "Password must be at least 6 characters")

	_, err = suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: "unknown", Password: "newpass1"})
	suite.ErrorIs(err, apperrors.ErrInvalidOrExpiredToken)
}

// TestFullPasswordResetScenario walks register, login, forgot, reset and both logins afterwards.
func (suite *AuthServiceTestSuite) TestFullPasswordResetScenario() {
	reg := suite.register("Hana", "hana@example.com", "original1")

	_, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "hana@example.com", Password: "original1"})
	suite.Require().NoError(err)

	token := suite.requestReset("hana@example.com")
	suite.clock.Advance(10 * time.Minute)

	reset, err := suite.service.ResetPassword(suite.ctx, dto.ResetPasswordRequest{Token: token, Password: "changed22"})
	suite.Require().NoError(err)
	suite.Equal(reg.User.ID, reset.User.ID)

	_, err = suite.service.Login(suite.ctx, dto.LoginRequest{Email: "hana@example.com", Password: "original1"})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)

	res, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "hana@example.com", Password: "changed22"})
	suite.Require().NoError(err)
	suite.Equal(reg.User.ID, res.User.ID)

	stored, err := suite.repo.FindUserByID(suite.ctx, reg.User.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.ResetTokenDigest)
	suite.Nil(stored.ResetTokenExpiresAt)
}

// --- External login ---

func (suite *AuthServiceTestSuite) TestCompleteExternalLogin_CreatesThenReuses() {
	profile := domain.ExternalProfile{
		Provider: domain.ProviderGoogle, Subject: "g-42", Email: "Ivy@Example.com", Name: "Ivy", Picture: "https://img/ivy.png",
	}
	first, err := suite.service.CompleteExternalLogin(suite.ctx, profile)
	suite.Require().NoError(err)
	suite.Equal("ivy@example.com", first.User.Email)
	suite.Equal("google", first.User.AuthProvider)
	suite.Equal("https://img/ivy.png", first.User.ProfileImage)

	stored, err := suite.repo.FindUserByExternalID(suite.ctx, "g-42")
	suite.Require().NoError(err)
	suite.Nil(stored.PasswordHash)
	suite.NotNil(stored.LastLoginAt)

	second, err := suite.service.CompleteExternalLogin(suite.ctx, profile)
	suite.Require().NoError(err)
	suite.Equal(first.User.ID, second.User.ID)
}

func (suite *AuthServiceTestSuite) TestCompleteExternalLogin_EmailOwnedByPasswordAccount() {
	suite.register("Jo", "jo@example.com", "secret1")
	_, err := suite.service.CompleteExternalLogin(suite.ctx, domain.ExternalProfile{
		Provider: domain.ProviderGoogle, Subject: "g-7", Email: "jo@example.com", Name: "Jo",
	})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AuthServiceTestSuite) TestCompleteExternalLogin_InactiveUser() {
	res, err := suite.service.CompleteExternalLogin(suite.ctx, domain.ExternalProfile{Provider: domain.ProviderGoogle, Subject: "g-9", Email: "k@example.com"})
	suite.Require().NoError(err)
	suite.Equal("k", res.User.Name)

	u, err := suite.repo.FindUserByID(suite.ctx, res.User.ID)
	suite.Require().NoError(err)
	u.IsActive = false
	suite.Require().NoError(suite.repo.UpdateUser(suite.ctx, *u))

	_, err = suite.service.CompleteExternalLogin(suite.ctx, domain.ExternalProfile{Provider: domain.ProviderGoogle, Subject: "g-9", Email: "k@example.com"})
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

// --- Sessions ---

func (suite *AuthServiceTestSuite) TestVerifySession() {
	reg := suite.register("Lee", "lee@example.com", "secret1")

	user, err := suite.service.VerifySession(suite.ctx, reg.Token)
	suite.Require().NoError(err)
	suite.Equal(reg.User.ID, user.UserID)

	_, err = suite.service.VerifySession(suite.ctx, "garbage")
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)

	user.IsActive = false
	suite.Require().NoError(suite.repo.UpdateUser(suite.ctx, *user))
	_, err = suite.service.VerifySession(suite.ctx, reg.Token)
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)

	orphan, _, err := suite.sessions.Issue(suite.ctx, "no-such-user")
	suite.Require().NoError(err)
	_, err = suite.service.VerifySession(suite.ctx, orphan)
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func (suite *AuthServiceTestSuite) TestLogoutKeepsCredentialValid() {
	reg := suite.register("Max", "max@example.com", "secret1")
	suite.NoError(suite.service.Logout(suite.ctx, reg.User.ID))

	_, err := suite.service.VerifySession(suite.ctx, reg.Token)
	suite.NoError(err)
}

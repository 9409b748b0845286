package services

import (
	"context"
	"net/http"
	"testing"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	"streamdash/internal/infrastructure/repositories/memory"
	apperrors "streamdash/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newUserServiceForTest(t *testing.T) (ports.UserService, *recordingPublisher) {
	t.Helper()
	publisher := &recordingPublisher{}
	service := NewUserService(
		memory.NewMemoryUserRepository(),
		publisher,
		zaptest.NewLogger(t).Sugar(),
	)
	return service, publisher
}

func TestUserService_CreateHashesPassword(t *testing.T) {
	service, publisher := newUserServiceForTest(t)

	created, err := service.Create(context.Background(), "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleViewer, created.Role, "role defaults to viewer")
	assert.Equal(t, domain.UserStatusActive, created.Status)
	assert.Equal(t, []string{"view"}, created.Permissions)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "secret123", created.PasswordHash)

	assert.Equal(t, []string{"user:created"}, publisher.names())
}

func TestUserService_CreateDuplicates(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	_, err = service.Create(ctx, "alice2", "alice@example.com", "secret123", "", "👤")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "User with this email already exists", appErr.Message)

	_, err = service.Create(ctx, "alice", "alice2@example.com", "secret123", "", "👤")
	appErr = apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "User with this username already exists", appErr.Message)
}

func TestUserService_ConcurrentCreateSameEmail(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	// Both creates pass validation and hash their passwords before the
	// insert; the repository decides who wins.
	results := make(chan error, 2)
	for _, username := range []string{"first", "second"} {
		go func(name string) {
			_, err := service.Create(ctx, name, "same@example.com", "secret123", "", "👤")
			results <- err
		}(username)
	}

	var succeeded int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			succeeded++
			continue
		}
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr, "loser must fail with the duplicate error, got %v", err)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		assert.Equal(t, "User with this email already exists", appErr.Message)
	}
	assert.Equal(t, 1, succeeded, "exactly one create may commit")

	_, total, err := service.List(ctx, domain.UserFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUserService_CreateValidation(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     domain.UserRole
	}{
		{"short username", "ab", "ok@example.com", "secret123", ""},
		{"bad email", "alice", "not-an-email", "secret123", ""},
		{"short password", "alice", "ok@example.com", "123", ""},
		{"unknown role", "alice", "ok@example.com", "secret123", "superuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.username, tt.email, tt.password, tt.role, "👤")
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)
	require.Nil(t, created.LastLogin)

	user, err := service.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	require.NotNil(t, user.LastLogin, "login must stamp LastLogin")
}

func TestUserService_AuthenticateRejections(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "alice@example.com", "wrong-password")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	assert.Equal(t, "Invalid credentials", appErr.Message)

	_, err = service.Authenticate(ctx, "nobody@example.com", "secret123")
	appErr = apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	assert.Equal(t, "Invalid credentials", appErr.Message, "unknown email must not be distinguishable")
}

func TestUserService_AuthenticateSuspended(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	status := domain.UserStatusSuspended
	_, err = service.Update(ctx, created.ID, domain.UserPatch{Status: &status}, "")
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "alice@example.com", "secret123")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.Equal(t, "Account is suspended", appErr.Message)
}

func TestUserService_UpdateKeepingOwnIdentity(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	// Re-submitting your own username and email is not a duplicate.
	username := "alice"
	email := "alice@example.com"
	_, err = service.Update(ctx, created.ID, domain.UserPatch{Username: &username, Email: &email}, "")
	assert.NoError(t, err)
}

func TestUserService_UpdateDuplicateOfOtherUser(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)
	bob, err := service.Create(ctx, "bob", "bob@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	taken := "alice"
	_, err = service.Update(ctx, bob.ID, domain.UserPatch{Username: &taken}, "")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "User with this username already exists", appErr.Message)
}

func TestUserService_UpdatePasswordRehashes(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "alice", "alice@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, domain.UserPatch{}, "newsecret456")
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "alice@example.com", "secret123")
	assert.Error(t, err, "old password must stop working")

	_, err = service.Authenticate(ctx, "alice@example.com", "newsecret456")
	assert.NoError(t, err)
}

func TestUserService_Stats(t *testing.T) {
	service, _ := newUserServiceForTest(t)
	ctx := context.Background()

	_, err := service.Create(ctx, "admin", "admin@example.com", "secret123", domain.RoleAdmin, "👑")
	require.NoError(t, err)
	viewer, err := service.Create(ctx, "viewer", "viewer@example.com", "secret123", "", "👤")
	require.NoError(t, err)

	status := domain.UserStatusSuspended
	_, err = service.Update(ctx, viewer.ID, domain.UserPatch{Status: &status}, "")
	require.NoError(t, err)

	report, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Active)
	assert.Equal(t, 1, report.Roles["admin"])
	assert.Equal(t, 1, report.Roles["viewer"])
	assert.Equal(t, 2, report.NewToday)
	assert.Equal(t, 14, report.LastWeekGrowth)
}

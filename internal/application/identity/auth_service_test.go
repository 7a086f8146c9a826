package identity

import (
	"context"
	"testing"
	"time"

	"github.com/facturo/backend/internal/application/access"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	userRepo  *MockUserRepository
	orgRepo   *MockOrganizationRepository
	privRepo  *MockPrivilegeRepository
	grantRepo *MockUserPrivilegeRepository
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	service   *AuthService
}

func newAuthFixture() *authFixture {
	logger := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough-123",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "facturo-test",
		MaxRefreshCount:        5,
	})

	f := &authFixture{
		userRepo:  new(MockUserRepository),
		orgRepo:   new(MockOrganizationRepository),
		privRepo:  new(MockPrivilegeRepository),
		grantRepo: new(MockUserPrivilegeRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt:       jwtService,
	}
	oracle := access.NewPrivilegeOracle(f.grantRepo, logger)
	f.service = NewAuthService(f.userRepo, f.orgRepo, f.privRepo, f.grantRepo, oracle, jwtService, f.blacklist, logger)
	return f
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(uuid.New(), "maria", "maria@example.com", hashPassword(t, password), identity.RoleUser)
	require.NoError(t, err)
	return user
}

func effectiveGrant(t *testing.T, userID uuid.UUID, resource, action string) identity.UserPrivilege {
	t.Helper()
	privilege, err := identity.NewPrivilege(resource, action, "")
	require.NoError(t, err)
	grant, err := identity.NewUserPrivilege(userID, privilege.ID, uuid.New(), nil)
	require.NoError(t, err)
	grant.Privilege = *privilege
	return *grant
}

func TestAuthService_Register(t *testing.T) {
	input := RegisterInput{
		OrganizationName: "Colmado Rosa",
		Username:         "rosa",
		Email:            "rosa@example.com",
		Password:         "secret-password",
	}

	t.Run("creates organization and owner", func(t *testing.T) {
		f := newAuthFixture()
		f.userRepo.On("FindByUsername", mock.Anything, "rosa").Return(nil, shared.ErrNotFound)
		f.userRepo.On("FindByEmail", mock.Anything, "rosa@example.com").Return(nil, shared.ErrNotFound)
		f.orgRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Organization")).Return(nil)
		f.userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
		f.privRepo.On("FindAllActive", mock.Anything).Return([]identity.Privilege{}, nil)

		result, err := f.service.Register(context.Background(), input)
		require.NoError(t, err)

		assert.Equal(t, "rosa", result.User.Username)
		assert.Equal(t, identity.RoleOwner, result.User.Role)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)

		claims, err := f.jwt.ValidateAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID.String(), claims.UserID)

		f.orgRepo.AssertExpectations(t)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("grants the owner the full privilege catalog", func(t *testing.T) {
		f := newAuthFixture()
		wildcard, err := identity.NewPrivilege(identity.WildcardResource, identity.WildcardAction, "")
		require.NoError(t, err)
		manage, err := identity.NewPrivilege("privilege", "manage", "")
		require.NoError(t, err)
		catalog := []identity.Privilege{*wildcard, *manage}

		f.userRepo.On("FindByUsername", mock.Anything, "rosa").Return(nil, shared.ErrNotFound)
		f.userRepo.On("FindByEmail", mock.Anything, "rosa@example.com").Return(nil, shared.ErrNotFound)
		f.orgRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Organization")).Return(nil)
		f.userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
		f.privRepo.On("FindAllActive", mock.Anything).Return(catalog, nil)

		var granted []uuid.UUID
		f.grantRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.UserPrivilege")).
			Run(func(args mock.Arguments) {
				grant := args.Get(1).(*identity.UserPrivilege)
				granted = append(granted, grant.PrivilegeID)
				// the owner is recorded as its own grantor, without expiry
				assert.Equal(t, grant.UserID, grant.GrantedBy)
				assert.Nil(t, grant.ExpiresAt)
			}).Return(nil)

		result, err := f.service.Register(context.Background(), input)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{wildcard.ID, manage.ID}, granted)

		claims, err := f.jwt.ValidateAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{wildcard.Name, manage.Name}, claims.Privileges)
	})

	t.Run("fails when the bootstrap grant cannot be written", func(t *testing.T) {
		f := newAuthFixture()
		manage, err := identity.NewPrivilege("privilege", "manage", "")
		require.NoError(t, err)

		f.userRepo.On("FindByUsername", mock.Anything, "rosa").Return(nil, shared.ErrNotFound)
		f.userRepo.On("FindByEmail", mock.Anything, "rosa@example.com").Return(nil, shared.ErrNotFound)
		f.orgRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Organization")).Return(nil)
		f.userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
		f.privRepo.On("FindAllActive", mock.Anything).Return([]identity.Privilege{*manage}, nil)
		f.grantRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.UserPrivilege")).
			Return(assert.AnError)

		_, err = f.service.Register(context.Background(), input)
		assert.True(t, shared.IsDomainError(err, "INTERNAL_ERROR"))
	})

	t.Run("rejects weak password", func(t *testing.T) {
		f := newAuthFixture()
		weak := input
		weak.Password = "short"

		_, err := f.service.Register(context.Background(), weak)
		assert.True(t, shared.IsDomainError(err, "WEAK_PASSWORD"))
	})

	t.Run("rejects taken username", func(t *testing.T) {
		f := newAuthFixture()
		existing := activeUser(t, "whatever-pass")
		f.userRepo.On("FindByUsername", mock.Anything, "rosa").Return(existing, nil)

		_, err := f.service.Register(context.Background(), input)
		assert.True(t, shared.IsDomainError(err, "USERNAME_TAKEN"))
	})

	t.Run("rejects taken email", func(t *testing.T) {
		f := newAuthFixture()
		existing := activeUser(t, "whatever-pass")
		f.userRepo.On("FindByUsername", mock.Anything, "rosa").Return(nil, shared.ErrNotFound)
		f.userRepo.On("FindByEmail", mock.Anything, "rosa@example.com").Return(existing, nil)

		_, err := f.service.Register(context.Background(), input)
		assert.True(t, shared.IsDomainError(err, "EMAIL_TAKEN"))
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("returns tokens with privilege snapshot", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		grants := []identity.UserPrivilege{
			effectiveGrant(t, user.ID, "bill", "create"),
			effectiveGrant(t, user.ID, "bill", "read"),
		}
		f.userRepo.On("FindByUsername", mock.Anything, "maria").Return(user, nil)
		f.grantRepo.On("FindForUser", mock.Anything, user.ID).Return(grants, nil)

		result, err := f.service.Login(context.Background(), LoginInput{Username: "maria", Password: "secret-password"})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"bill.create", "bill.read"}, result.User.Privileges)

		claims, err := f.jwt.ValidateAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bill.create", "bill.read"}, claims.Privileges)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		f.userRepo.On("FindByUsername", mock.Anything, "maria").Return(user, nil)

		_, err := f.service.Login(context.Background(), LoginInput{Username: "maria", Password: "wrong"})
		assert.True(t, shared.IsDomainError(err, "INVALID_CREDENTIALS"))
	})

	t.Run("rejects unknown username with same error", func(t *testing.T) {
		f := newAuthFixture()
		f.userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(context.Background(), LoginInput{Username: "ghost", Password: "secret-password"})
		assert.True(t, shared.IsDomainError(err, "INVALID_CREDENTIALS"))
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		user.Deactivate()
		f.userRepo.On("FindByUsername", mock.Anything, "maria").Return(user, nil)

		_, err := f.service.Login(context.Background(), LoginInput{Username: "maria", Password: "secret-password"})
		assert.True(t, shared.IsDomainError(err, "ACCOUNT_DEACTIVATED"))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	login := func(t *testing.T, f *authFixture, user *identity.User) *LoginResult {
		t.Helper()
		f.userRepo.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
		f.grantRepo.On("FindForUser", mock.Anything, user.ID).Return([]identity.UserPrivilege{}, nil)
		result, err := f.service.Login(context.Background(), LoginInput{Username: user.Username, Password: "secret-password"})
		require.NoError(t, err)
		return result
	}

	t.Run("issues a new pair", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		result := login(t, f, user)
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		refreshed, err := f.service.Refresh(context.Background(), RefreshInput{RefreshToken: result.Tokens.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEqual(t, result.Tokens.RefreshToken, refreshed.RefreshToken)
	})

	t.Run("rejects a revoked refresh token", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		result := login(t, f, user)

		claims, err := f.jwt.ValidateRefreshToken(result.Tokens.RefreshToken)
		require.NoError(t, err)
		require.NoError(t, f.blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

		_, err = f.service.Refresh(context.Background(), RefreshInput{RefreshToken: result.Tokens.RefreshToken})
		assert.True(t, shared.IsDomainError(err, "TOKEN_REVOKED"))
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.service.Refresh(context.Background(), RefreshInput{RefreshToken: "not-a-token"})
		assert.True(t, shared.IsDomainError(err, "TOKEN_INVALID"))
	})

	t.Run("rejects refresh for deactivated account", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		result := login(t, f, user)

		user.Deactivate()
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := f.service.Refresh(context.Background(), RefreshInput{RefreshToken: result.Tokens.RefreshToken})
		assert.True(t, shared.IsDomainError(err, "ACCOUNT_DEACTIVATED"))
	})

	t.Run("picks up current grants", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		f.userRepo.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
		f.grantRepo.On("FindForUser", mock.Anything, user.ID).Return([]identity.UserPrivilege{}, nil).Once()
		result, err := f.service.Login(context.Background(), LoginInput{Username: user.Username, Password: "secret-password"})
		require.NoError(t, err)

		// grant arrives after login; the refreshed token must carry it
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.grantRepo.On("FindForUser", mock.Anything, user.ID).
			Return([]identity.UserPrivilege{effectiveGrant(t, user.ID, "bill", "delete")}, nil)

		refreshed, err := f.service.Refresh(context.Background(), RefreshInput{RefreshToken: result.Tokens.RefreshToken})
		require.NoError(t, err)

		claims, err := f.jwt.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, []string{"bill.delete"}, claims.Privileges)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	user := activeUser(t, "secret-password")
	f.userRepo.On("FindByUsername", mock.Anything, user.Username).Return(user, nil)
	f.grantRepo.On("FindForUser", mock.Anything, user.ID).Return([]identity.UserPrivilege{}, nil)

	result, err := f.service.Login(context.Background(), LoginInput{Username: user.Username, Password: "secret-password"})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), LogoutInput{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}))

	accessClaims, err := f.jwt.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	revoked, err := f.blacklist.IsBlacklisted(context.Background(), accessClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	refreshClaims, err := f.jwt.ValidateRefreshToken(result.Tokens.RefreshToken)
	require.NoError(t, err)
	revoked, err = f.blacklist.IsBlacklisted(context.Background(), refreshClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	f := newAuthFixture()
	user := activeUser(t, "secret-password")
	f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.grantRepo.On("FindForUser", mock.Anything, user.ID).
		Return([]identity.UserPrivilege{effectiveGrant(t, user.ID, "item", "read")}, nil)

	info, err := f.service.GetCurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, info.Username)
	assert.Equal(t, []string{"item.read"}, info.Privileges)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("replaces hash and invalidates issued tokens", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		issuedAt := time.Now().Add(-time.Minute)
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		f.userRepo.On("Save", mock.Anything, user).Return(nil)

		err := f.service.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "secret-password",
			NewPassword: "brand-new-password",
		})
		require.NoError(t, err)

		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brand-new-password")))

		invalidated, err := f.blacklist.IsUserTokenInvalidated(context.Background(), user.ID.String(), issuedAt)
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "secret-password")
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err := f.service.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong",
			NewPassword: "brand-new-password",
		})
		assert.True(t, shared.IsDomainError(err, "INVALID_CREDENTIALS"))
	})

	t.Run("rejects weak replacement", func(t *testing.T) {
		f := newAuthFixture()
		err := f.service.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      uuid.New(),
			OldPassword: "secret-password",
			NewPassword: "short",
		})
		assert.True(t, shared.IsDomainError(err, "WEAK_PASSWORD"))
	})
}

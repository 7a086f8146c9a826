package identity

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/application/access"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService handles registration, authentication and token lifecycle
type AuthService struct {
	userRepo      identity.UserRepository
	orgRepo       identity.OrganizationRepository
	privilegeRepo identity.PrivilegeRepository
	grantRepo     identity.UserPrivilegeRepository
	oracle        *access.PrivilegeOracle
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	orgRepo identity.OrganizationRepository,
	privilegeRepo identity.PrivilegeRepository,
	grantRepo identity.UserPrivilegeRepository,
	oracle *access.PrivilegeOracle,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		orgRepo:       orgRepo,
		privilegeRepo: privilegeRepo,
		grantRepo:     grantRepo,
		oracle:        oracle,
		jwtService:    jwtService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Register creates a new organization together with its first user. The
// first user becomes the owner and is granted the full active privilege
// catalog, wildcard included; without that a fresh organization would have no
// one able to issue its first grant. Everyone after joins through user
// administration.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}

	if err := s.ensureCredentialsFree(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	org, err := identity.NewOrganization(input.OrganizationName)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	user, err := identity.NewUser(org.ID, input.Username, input.Email, string(hash), identity.RoleOwner)
	if err != nil {
		return nil, err
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		s.logger.Error("Failed to save organization", zap.Error(err))
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	privileges, err := s.grantFullCatalog(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to grant owner privileges", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to set up owner privileges")
	}

	s.logger.Info("Organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issueTokens(user, privileges)
}

// grantFullCatalog grants every active privilege to the user, self-granted and
// without expiry. Returns the granted privilege names for the token claims.
func (s *AuthService) grantFullCatalog(ctx context.Context, userID uuid.UUID) ([]string, error) {
	catalog, err := s.privilegeRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(catalog))
	for i := range catalog {
		grant, err := identity.NewUserPrivilege(userID, catalog[i].ID, userID, nil)
		if err != nil {
			return nil, err
		}
		if err := s.grantRepo.Save(ctx, grant); err != nil {
			return nil, err
		}
		names = append(names, catalog[i].Name)
	}
	return names, nil
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	privileges, err := s.oracle.EffectivePrivileges(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load user privileges", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user privileges")
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return s.issueTokens(user, privileges)
}

// Refresh exchanges a valid refresh token for a new pair. The privilege
// snapshot in the claims is refreshed from current grants.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, s.mapTokenError(err)
	}

	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Blacklist lookup failed", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	privileges, err := s.oracle.EffectivePrivileges(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load privileges during refresh", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user privileges")
	}

	pair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, privileges)
	if err != nil {
		return nil, s.mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return toTokenResult(pair), nil
}

// Logout revokes the presented tokens by blacklisting their identifiers for
// their remaining lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessToken != "" {
		if claims, err := s.jwtService.ValidateAccessToken(input.AccessToken); err == nil && claims.ID != "" {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to blacklist access token", zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
			}
		}
	}

	if input.RefreshToken != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken); err == nil && claims.ID != "" {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to blacklist refresh token", zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
			}
		}
	}

	return nil
}

// GetCurrentUser returns the authenticated user with its effective privileges
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	privileges, err := s.oracle.EffectivePrivileges(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load user privileges", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user privileges")
	}

	info := toUserInfo(user, privileges)
	return &info, nil
}

// ChangePassword replaces the user's credential after verifying the current
// one. All previously issued tokens are invalidated.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}
	if err := user.SetPasswordHash(string(hash)); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user after password change", zap.Error(err))
		return err
	}

	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate existing tokens", zap.Error(err))
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) ensureCredentialsFree(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	return nil
}

func (s *AuthService) issueTokens(user *identity.User, privileges []string) (*LoginResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Username:       user.Username,
		Privileges:     privileges,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &LoginResult{
		Tokens: *toTokenResult(pair),
		User:   toUserInfo(user, privileges),
	}, nil
}

func (s *AuthService) mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}

func toTokenResult(pair *auth.TokenPair) *TokenResult {
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

package identity

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/billing"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles user administration within an organization
type UserService struct {
	userRepo identity.UserRepository
	billRepo billing.BillRepository
	logger   *zap.Logger
}

// NewUserService creates a new user administration service
func NewUserService(userRepo identity.UserRepository, billRepo billing.BillRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		billRepo: billRepo,
		logger:   logger,
	}
}

// CreateUser creates a user in the organization
func (s *UserService) CreateUser(ctx context.Context, organizationID uuid.UUID, input CreateUserInput) (*UserInfo, error) {
	if len(input.Password) < minPasswordLength {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	role := input.Role
	if role == "" {
		role = identity.RoleUser
	}

	user, err := identity.NewUser(organizationID, input.Username, input.Email, string(hash), role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("organization_id", organizationID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := toUserInfo(user, nil)
	return &info, nil
}

// GetUser returns a user of the organization
func (s *UserService) GetUser(ctx context.Context, organizationID, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForOrganization(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	info := toUserInfo(user, nil)
	return &info, nil
}

// ListUsers returns a page of the organization's users
func (s *UserService) ListUsers(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[UserInfo], error) {
	var empty shared.Paginated[UserInfo]

	users, err := s.userRepo.FindAllForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}
	total, err := s.userRepo.CountForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}

	infos := make([]UserInfo, len(users))
	for i := range users {
		infos[i] = toUserInfo(&users[i], nil)
	}
	return shared.NewPaginated(infos, total, filter.Page, filter.Limit()), nil
}

// UpdateUser applies the non-nil fields of input to the user
func (s *UserService) UpdateUser(ctx context.Context, organizationID, id uuid.UUID, input UpdateUserInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForOrganization(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, *input.Email); err == nil {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := user.ChangeEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.Role != nil {
		if err := user.ChangeRole(*input.Role); err != nil {
			return nil, err
		}
	}
	if input.IsActive != nil {
		if *input.IsActive {
			user.Activate()
		} else {
			user.Deactivate()
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, err
	}

	info := toUserInfo(user, nil)
	return &info, nil
}

// DeleteUser removes a user. Deletion cascades to the user's bills, so it is
// refused unless force is set when bills exist.
func (s *UserService) DeleteUser(ctx context.Context, organizationID, id uuid.UUID, force bool) error {
	if _, err := s.userRepo.FindByIDForOrganization(ctx, organizationID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return err
	}

	billCount, err := s.billRepo.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if billCount > 0 && !force {
		return shared.NewDomainError("USER_HAS_BILLS", "User has bills; deleting removes them as well")
	}

	if err := s.userRepo.DeleteForOrganization(ctx, organizationID, id); err != nil {
		return err
	}

	s.logger.Info("User deleted",
		zap.String("organization_id", organizationID.String()),
		zap.String("user_id", id.String()),
		zap.Int64("cascaded_bills", billCount))
	return nil
}

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultPrivilegePairs is the seeded capability catalog. The wildcard pair
// is reserved for the scope-bypass grant and is seeded alongside it.
var defaultPrivilegePairs = [][2]string{
	{identity.WildcardResource, identity.WildcardAction},
	{"bill", "create"}, {"bill", "read"}, {"bill", "update"}, {"bill", "delete"},
	{"item", "create"}, {"item", "read"}, {"item", "update"}, {"item", "delete"},
	{"category", "create"}, {"category", "read"}, {"category", "update"}, {"category", "delete"},
	{"taxrate", "create"}, {"taxrate", "read"}, {"taxrate", "update"}, {"taxrate", "delete"},
	{"client", "create"}, {"client", "read"}, {"client", "update"}, {"client", "delete"},
	{"user", "create"}, {"user", "read"}, {"user", "update"}, {"user", "delete"},
	{"branch", "create"}, {"branch", "read"}, {"branch", "update"}, {"branch", "delete"},
	{"privilege", "read"}, {"privilege", "manage"},
	{"organization", "read"}, {"organization", "update"},
}

// PrivilegeService handles privilege definitions and user grants
type PrivilegeService struct {
	privilegeRepo identity.PrivilegeRepository
	grantRepo     identity.UserPrivilegeRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewPrivilegeService creates a new privilege administration service
func NewPrivilegeService(privilegeRepo identity.PrivilegeRepository, grantRepo identity.UserPrivilegeRepository, logger *zap.Logger) *PrivilegeService {
	return &PrivilegeService{
		privilegeRepo: privilegeRepo,
		grantRepo:     grantRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the service clock; used by tests
func (s *PrivilegeService) WithClock(now func() time.Time) *PrivilegeService {
	s.now = now
	return s
}

// CreatePrivilege defines a new privilege
func (s *PrivilegeService) CreatePrivilege(ctx context.Context, input CreatePrivilegeInput) (*identity.Privilege, error) {
	privilege, err := identity.NewPrivilege(input.Resource, input.Action, input.Description)
	if err != nil {
		return nil, err
	}

	if _, err := s.privilegeRepo.FindByResourceAction(ctx, privilege.Resource, privilege.Action); err == nil {
		return nil, shared.NewDomainError("PRIVILEGE_EXISTS", "A privilege for this resource and action already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.privilegeRepo.Save(ctx, privilege); err != nil {
		s.logger.Error("Failed to save privilege", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Privilege created", zap.String("name", privilege.Name))
	return privilege, nil
}

// GetPrivilege returns a privilege by ID
func (s *PrivilegeService) GetPrivilege(ctx context.Context, id uuid.UUID) (*identity.Privilege, error) {
	privilege, err := s.privilegeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRIVILEGE_NOT_FOUND", "Privilege not found")
		}
		return nil, err
	}
	return privilege, nil
}

// ListPrivileges returns a page of privilege definitions
func (s *PrivilegeService) ListPrivileges(ctx context.Context, filter shared.Filter) (shared.Paginated[identity.Privilege], error) {
	var empty shared.Paginated[identity.Privilege]

	privileges, err := s.privilegeRepo.FindAll(ctx, filter)
	if err != nil {
		return empty, err
	}
	total, err := s.privilegeRepo.Count(ctx, filter)
	if err != nil {
		return empty, err
	}
	return shared.NewPaginated(privileges, total, filter.Page, filter.Limit()), nil
}

// UpdatePrivilege updates the description or activation of a privilege.
// Deactivation is the soft-delete path: every grant of the privilege stops
// being effective immediately.
func (s *PrivilegeService) UpdatePrivilege(ctx context.Context, id uuid.UUID, description *string, isActive *bool) (*identity.Privilege, error) {
	privilege, err := s.GetPrivilege(ctx, id)
	if err != nil {
		return nil, err
	}

	if description != nil {
		privilege.Describe(*description)
	}
	if isActive != nil {
		if *isActive {
			privilege.Activate()
		} else {
			privilege.Deactivate()
		}
	}

	if err := s.privilegeRepo.Save(ctx, privilege); err != nil {
		s.logger.Error("Failed to save privilege", zap.Error(err))
		return nil, err
	}
	return privilege, nil
}

// Grant binds a privilege to a user. Re-granting an existing pair reactivates
// the grant and replaces its expiry.
func (s *PrivilegeService) Grant(ctx context.Context, grantedBy uuid.UUID, input GrantInput) (*identity.UserPrivilege, error) {
	privilege, err := s.GetPrivilege(ctx, input.PrivilegeID)
	if err != nil {
		return nil, err
	}
	if !privilege.IsActive {
		return nil, shared.NewDomainError("PRIVILEGE_INACTIVE", "Cannot grant a deactivated privilege")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry must be in the future")
	}

	grant, err := s.grantRepo.FindGrant(ctx, input.UserID, input.PrivilegeID)
	switch {
	case err == nil:
		grant.IsActive = true
		grant.GrantedBy = grantedBy
		grant.ExpiresAt = input.ExpiresAt
		grant.Touch()
	case errors.Is(err, shared.ErrNotFound):
		grant, err = identity.NewUserPrivilege(input.UserID, input.PrivilegeID, grantedBy, input.ExpiresAt)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.grantRepo.Save(ctx, grant); err != nil {
		s.logger.Error("Failed to save grant", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Privilege granted",
		zap.String("user_id", input.UserID.String()),
		zap.String("privilege", privilege.Name),
		zap.String("granted_by", grantedBy.String()))
	return grant, nil
}

// Revoke deactivates the grant binding a user to a privilege
func (s *PrivilegeService) Revoke(ctx context.Context, userID, privilegeID uuid.UUID) error {
	grant, err := s.grantRepo.FindGrant(ctx, userID, privilegeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("GRANT_NOT_FOUND", "User does not hold this privilege")
		}
		return err
	}

	grant.Revoke()
	if err := s.grantRepo.Save(ctx, grant); err != nil {
		s.logger.Error("Failed to save grant", zap.Error(err))
		return err
	}

	s.logger.Info("Privilege revoked",
		zap.String("user_id", userID.String()),
		zap.String("privilege_id", privilegeID.String()))
	return nil
}

// ListUserGrants lists a user's active grants, including expired ones; the
// read model marks effectiveness at the current instant
func (s *PrivilegeService) ListUserGrants(ctx context.Context, userID uuid.UUID) ([]identity.UserPrivilege, error) {
	return s.grantRepo.FindForUser(ctx, userID)
}

// SeedDefaults creates any missing privilege from the default catalog.
// Existing privileges are left untouched.
func (s *PrivilegeService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, pair := range defaultPrivilegePairs {
		_, err := s.privilegeRepo.FindByResourceAction(ctx, pair[0], pair[1])
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, err
		}

		privilege, err := identity.NewPrivilege(pair[0], pair[1], "")
		if err != nil {
			return created, err
		}
		if err := s.privilegeRepo.Save(ctx, privilege); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.logger.Info("Seeded default privileges", zap.Int("created", created))
	}
	return created, nil
}

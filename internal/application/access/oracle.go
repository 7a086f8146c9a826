package access

import (
	"context"
	"time"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrivilegeOracle answers yes/no privilege questions for a subject. Answers are
// computed against current grant state at call time; nothing is cached. Every
// lookup fails closed: a repository error yields a denial alongside the error.
type PrivilegeOracle struct {
	grantRepo identity.UserPrivilegeRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewPrivilegeOracle creates a new privilege oracle
func NewPrivilegeOracle(grantRepo identity.UserPrivilegeRepository, logger *zap.Logger) *PrivilegeOracle {
	return &PrivilegeOracle{
		grantRepo: grantRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Used by tests to pin expiry evaluation.
func (o *PrivilegeOracle) WithClock(now func() time.Time) *PrivilegeOracle {
	o.now = now
	return o
}

// IsGranted reports whether the subject holds an effective grant for the exact
// (resource, action) pair. The wildcard privilege does not satisfy this check;
// it only short-circuits branch membership in the scope resolver.
func (o *PrivilegeOracle) IsGranted(ctx context.Context, userID uuid.UUID, resource, action string) (bool, error) {
	grants, err := o.grantRepo.FindForUserByResourceAction(ctx, userID, resource, action)
	if err != nil {
		o.logger.Error("Privilege lookup failed",
			zap.String("user_id", userID.String()),
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err))
		return false, err
	}

	now := o.now()
	for i := range grants {
		if grants[i].IsEffective(now) {
			return true, nil
		}
	}
	return false, nil
}

// IsGrantedAny reports whether the subject holds at least one of the pairs
func (o *PrivilegeOracle) IsGrantedAny(ctx context.Context, userID uuid.UUID, pairs ...[2]string) (bool, error) {
	for _, pair := range pairs {
		granted, err := o.IsGranted(ctx, userID, pair[0], pair[1])
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
	}
	return false, nil
}

// IsGrantedAll reports whether the subject holds every one of the pairs
func (o *PrivilegeOracle) IsGrantedAll(ctx context.Context, userID uuid.UUID, pairs ...[2]string) (bool, error) {
	for _, pair := range pairs {
		granted, err := o.IsGranted(ctx, userID, pair[0], pair[1])
		if err != nil {
			return false, err
		}
		if !granted {
			return false, nil
		}
	}
	return true, nil
}

// HasWildcard reports whether the subject holds an effective grant of the
// reserved (all, all) privilege.
func (o *PrivilegeOracle) HasWildcard(ctx context.Context, userID uuid.UUID) (bool, error) {
	grants, err := o.grantRepo.FindForUserByResourceAction(ctx, userID, identity.WildcardResource, identity.WildcardAction)
	if err != nil {
		o.logger.Error("Wildcard lookup failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return false, err
	}

	now := o.now()
	for i := range grants {
		if grants[i].IsEffective(now) {
			return true, nil
		}
	}
	return false, nil
}

// EffectivePrivileges lists the names of every privilege the subject currently
// holds. Used when issuing tokens and by the profile endpoint.
func (o *PrivilegeOracle) EffectivePrivileges(ctx context.Context, userID uuid.UUID) ([]string, error) {
	grants, err := o.grantRepo.FindForUser(ctx, userID)
	if err != nil {
		o.logger.Error("Grant listing failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	now := o.now()
	names := make([]string, 0, len(grants))
	seen := make(map[string]struct{}, len(grants))
	for i := range grants {
		if !grants[i].IsEffective(now) {
			continue
		}
		name := grants[i].Privilege.Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

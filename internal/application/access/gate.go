package access

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Gate is the single admission point in front of every protected operation.
// It composes the privilege check and scope resolution; operation code behind
// it only ever sees an already-verified scope.
type Gate struct {
	oracle   *PrivilegeOracle
	resolver *ScopeResolver
	logger   *zap.Logger
}

// NewGate creates a new authorization gate
func NewGate(oracle *PrivilegeOracle, resolver *ScopeResolver, logger *zap.Logger) *Gate {
	return &Gate{
		oracle:   oracle,
		resolver: resolver,
		logger:   logger,
	}
}

// Admit resolves the scope first and propagates any scope failure unchanged,
// then consults the oracle for the exact (resource, action) pair. Only a
// subject standing in a valid scope can be refused for a missing privilege.
func (g *Gate) Admit(ctx context.Context, subject Subject, resource, action string, req shared.ScopeRequirement) (shared.Scope, error) {
	scope, err := g.resolver.Resolve(ctx, subject, req)
	if err != nil {
		g.logger.Info("Scope refused",
			zap.String("user_id", subject.UserID.String()),
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err))
		return shared.Scope{}, err
	}

	granted, err := g.oracle.IsGranted(ctx, subject.UserID, resource, action)
	if err != nil {
		return shared.Scope{}, err
	}
	if !granted {
		g.logger.Info("Operation refused",
			zap.String("user_id", subject.UserID.String()),
			zap.String("resource", resource),
			zap.String("action", action))
		return shared.Scope{}, shared.NewForbiddenError(resource, action)
	}
	return scope, nil
}

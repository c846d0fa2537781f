package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/bandejao/cantina-backend/api/middleware"
	"github.com/bandejao/cantina-backend/pkg/enums"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

// actorFromContext resolves the authenticated user's id and role seeded by
// the auth middleware.
func actorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return userID, role, nil
}

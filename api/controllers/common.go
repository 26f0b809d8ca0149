package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/middleware"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/internal/orders"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// actorFromContext reconstructs the authenticated actor seeded by the
// auth middleware.
func actorFromContext(ctx context.Context) (orders.Actor, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role := enums.MemberRole(middleware.RoleFromContext(ctx))
	if !role.IsValid() {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid actor role")
	}
	return orders.Actor{ID: userID, Role: role}, nil
}

func buyerIDFromContext(ctx context.Context) (uuid.UUID, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.ID, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").
			WithDetails(map[string]any{"param": param})
	}
	return id, nil
}

package orders

import (
	"github.com/google/uuid"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// Actor identifies who is requesting a status change.
type Actor struct {
	ID   uuid.UUID
	Role enums.MemberRole
}

// transitionTable is the single source of truth for role-gated status
// changes: {role × current status → allowed targets}. Admin bypasses the
// table entirely and may force any valid status.
var transitionTable = map[enums.MemberRole]map[enums.OrderStatus][]enums.OrderStatus{
	enums.MemberRoleBuyer: {
		enums.OrderStatusPending:   {enums.OrderStatusCancelled},
		enums.OrderStatusConfirmed: {enums.OrderStatusCancelled},
	},
	enums.MemberRoleSeller: {
		enums.OrderStatusPending:    {enums.OrderStatusConfirmed},
		enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing},
		enums.OrderStatusProcessing: {enums.OrderStatusShipped},
		enums.OrderStatusShipped:    {enums.OrderStatusOutForDelivery},
	},
	enums.MemberRoleSystem: {
		enums.OrderStatusPending: {enums.OrderStatusConfirmed},
	},
}

// Authorize decides whether the actor may move the order to the target
// status. Every status-mutating path goes through here; there is no other
// judge of transition legality.
func Authorize(actor Actor, order *models.Order, target enums.OrderStatus) error {
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if order.Status == target {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already in the requested status")
	}

	switch actor.Role {
	case enums.MemberRoleAdmin:
		return nil
	case enums.MemberRoleBuyer:
		if order.BuyerID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to this buyer")
		}
	case enums.MemberRoleSeller:
		if !order.ContainsSeller(actor.ID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "seller has no items in this order")
		}
	case enums.MemberRoleSystem:
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	for _, allowed := range transitionTable[actor.Role][order.Status] {
		if allowed == target {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
		WithDetails(map[string]any{
			"current": order.Status.String(),
			"target":  target.String(),
			"role":    actor.Role.String(),
		})
}

package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/responses"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/validators"
	paymentsvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/payments"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/logger"
)

type createGatewayOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// PaymentCreateOrder opens a gateway order for an unpaid order and hands
// the checkout session back to the client.
func PaymentCreateOrder(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createGatewayOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateGatewayOrder(r.Context(), buyerID, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// PaymentVerify authenticates the checkout callback and confirms the order.
func PaymentVerify(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentsvc.VerifyInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Verify(r.Context(), buyerID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type refundRequest struct {
	OrderID uuid.UUID        `json:"order_id" validate:"required"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Reason  string           `json:"reason" validate:"required,max=500"`
}

// PaymentRefund issues the gateway refund for a paid order. Sellers and
// admins only; ownership checks live in the service layer.
func PaymentRefund(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.Role != enums.MemberRoleSeller && actor.Role != enums.MemberRoleAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
			return
		}

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Refund(r.Context(), actor, payload.OrderID, payload.Amount, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

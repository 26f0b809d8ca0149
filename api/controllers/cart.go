package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/responses"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/api/validators"
	cartsvc "github.com/blackhawk-2003/Readjunction-Major-sub000/internal/cart"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/db/models"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/enums"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/logger"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/types"
)

// CartFetch returns the buyer's active cart, creating one on first use.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetCart(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Notes     *string   `json:"notes,omitempty"`
}

// CartAddItem puts a product in the cart, merging quantities when the
// product is already there.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), buyerID, cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type updateCartItemRequest struct {
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Notes    *string `json:"notes,omitempty"`
}

func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateItemQuantity(r.Context(), buyerID, productID, cartsvc.UpdateItemInput{
			Quantity: payload.Quantity,
			Notes:    payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), buyerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartToggleItem flips whether a line participates in checkout totals.
func CartToggleItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ToggleSelection(r.Context(), buyerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

func CartApplyCoupon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ApplyCoupon(r.Context(), buyerID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type setShippingRequest struct {
	Address types.Address `json:"address" validate:"required"`
	Method  string        `json:"method" validate:"required"`
}

func CartSetShipping(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setShippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseShippingMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method"))
			return
		}

		cart, err := svc.SetShipping(r.Context(), buyerID, cartsvc.SetShippingInput{
			Address: payload.Address,
			Method:  method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartClear drops all items and the coupon but keeps the shipping address.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Clear(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type cartResponse struct {
	ID              uuid.UUID            `json:"id"`
	BuyerID         uuid.UUID            `json:"buyer_id"`
	Items           []cartItemResponse   `json:"items"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	ShippingMethod  enums.ShippingMethod `json:"shipping_method"`
	PaymentMethod   enums.PaymentMethod  `json:"payment_method"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
	Totals          totalsResponse       `json:"totals"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type cartItemResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ProductName  string          `json:"product_name"`
	ProductImage *string         `json:"product_image,omitempty"`
	SellerName   string          `json:"seller_name"`
	IsSelected   bool            `json:"is_selected"`
	Notes        *string         `json:"notes,omitempty"`
	AddedAt      time.Time       `json:"added_at"`
}

type totalsResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemResponse{
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			SellerName:   item.SellerName,
			IsSelected:   item.IsSelected,
			Notes:        item.Notes,
			AddedAt:      item.AddedAt,
		})
	}
	return cartResponse{
		ID:              cart.ID,
		BuyerID:         cart.BuyerID,
		Items:           items,
		ShippingAddress: cart.ShippingAddress,
		ShippingMethod:  cart.ShippingMethod,
		PaymentMethod:   cart.PaymentMethod,
		CouponCode:      cart.CouponCode,
		Totals: totalsResponse{
			Subtotal: cart.Subtotal,
			Tax:      cart.Tax,
			Shipping: cart.Shipping,
			Discount: cart.Discount,
			Total:    cart.Total,
		},
		UpdatedAt: cart.UpdatedAt,
	}
}

package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/checkout"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
)

type addressPayload struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	ProvinceID string `json:"province_id"`
	CityID     string `json:"city_id"`
	Postcode   string `json:"postcode"`
}

type checkoutRequest struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	ProvinceID string `json:"province_id"`
	CityID     string `json:"city_id"`
	Postcode   string `json:"postcode"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Note       string `json:"note"`

	// ShipTo switches delivery to the alternate address block below.
	ShipTo   bool           `json:"ship_to"`
	Shipping addressPayload `json:"shipping"`

	ShippingService string `json:"shipping_service"`
}

func (req checkoutRequest) toSubmit() checkout.SubmitRequest {
	return checkout.SubmitRequest{
		CheckoutParams: order.CheckoutParams{
			Username:   req.Username,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Address1:   req.Address1,
			Address2:   req.Address2,
			ProvinceID: req.ProvinceID,
			CityID:     req.CityID,
			Postcode:   req.Postcode,
			Phone:      req.Phone,
			Email:      req.Email,
			Note:       req.Note,
			ShipTo:     req.ShipTo,
			Shipping: order.AddressSnapshot{
				FirstName:  req.Shipping.FirstName,
				LastName:   req.Shipping.LastName,
				Address1:   req.Shipping.Address1,
				Address2:   req.Shipping.Address2,
				Phone:      req.Shipping.Phone,
				Email:      req.Shipping.Email,
				ProvinceID: req.Shipping.ProvinceID,
				CityID:     req.Shipping.CityID,
				Postcode:   req.Shipping.Postcode,
			},
		},
		ShippingService: req.ShippingService,
	}
}

func (req checkoutRequest) validate() string {
	switch {
	case req.FirstName == "":
		return "first_name is required"
	case req.Address1 == "":
		return "address1 is required"
	case req.Phone == "":
		return "phone is required"
	case req.Email == "":
		return "email is required"
	case req.ShippingService == "":
		return "shipping_service is required"
	}
	if !req.ShipTo && req.CityID == "" {
		return "city_id is required"
	}
	if req.ShipTo && req.Shipping.CityID == "" {
		return "shipping.city_id is required"
	}
	return ""
}

// submitCheckout runs one checkout attempt end to end: quote, select, commit,
// open the payment session.
func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	b, ok := requireBuyer(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	res, err := h.checkout.Submit(r.Context(), b, req.toSubmit())
	if err != nil {
		var conflict *order.StockConflictError
		switch {
		case errors.Is(err, checkout.ErrCartEmpty):
			writeError(w, r, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &conflict):
			writeError(w, r, http.StatusConflict, conflict.Error())
		default:
			internalError(w, r, err)
		}
		return
	}

	switch res.State {
	case checkout.StateRejected:
		writeError(w, r, http.StatusBadRequest, res.Message)
	case checkout.StatePaymentPending:
		// The order is durable even though payment setup failed; hand the
		// code back so the client can retry payment out of band.
		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"status":     http.StatusAccepted,
			"message":    res.Message,
			"order_code": res.Order.Code,
		})
	default:
		writeJSON(w, r, http.StatusCreated, map[string]any{
			"order_code":   res.Order.Code,
			"redirect_url": res.RedirectURL,
		})
	}
}

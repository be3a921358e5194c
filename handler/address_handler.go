package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"session-hub/domain"
	"session-hub/validation"
)

// AddressHandler serves the protected address views. Address records are
// owned by the backend; responses are view-local, nothing is cached in the
// session store.
type AddressHandler struct {
	gw        domain.AddressGateway
	validator *validation.Validator
}

// NewAddressHandler creates the address handler.
func NewAddressHandler(gw domain.AddressGateway, v *validation.Validator) *AddressHandler {
	return &AddressHandler{gw: gw, validator: v}
}

// AddressListResponse is the address view payload. PrimaryCount lets the
// view place its primary marker without rescanning the records.
type AddressListResponse struct {
	Addresses    []domain.Address `json:"addresses"`
	PrimaryCount int              `json:"primaryCount"`
}

// List serves GET /addresses.
func (h *AddressHandler) List(c echo.Context) error {
	addresses, err := h.gw.ListAddresses(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}

	primary := 0
	for _, a := range addresses {
		if a.IsPrimary {
			primary++
		}
	}

	return c.JSON(http.StatusOK, AddressListResponse{
		Addresses:    addresses,
		PrimaryCount: primary,
	})
}

// Create serves POST /addresses.
func (h *AddressHandler) Create(c echo.Context) error {
	var form validation.AddressForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	if fields := h.validator.Check(form); fields != nil {
		return writeEnvelope(c, domain.NewValidationError(c.Request().URL.Path, fields))
	}

	created, err := h.gw.CreateAddress(c.Request().Context(), domain.Address{
		Street:      form.Street,
		City:        form.City,
		State:       form.State,
		PostalCode:  form.PostalCode,
		Country:     form.Country,
		PhoneNumber: form.PhoneNumber,
		IsPrimary:   form.IsPrimary,
		Type:        domain.AddressType(form.Type),
	})
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// Package handler implements the HTTP endpoints of the check-in
// service on top of Echo. Handlers bind and validate request payloads,
// delegate to repositories and services, and map sentinel errors onto
// HTTP statuses.
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound payloads.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator ready to be set on echo.Echo.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator. Struct tag violations surface as
// a 400 with the validator's message.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

package dto

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/labstack/echo/v4"
)

type CreateBookingRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

var ErrInvalidBody = errors.New("invalid request body")

// Decode reads a single JSON object into v, rejecting fields v does not declare.
// An empty body leaves v zeroed so required-field validation reports what is missing.
func Decode(c echo.Context, v any) error {
	if c.Request().Body == nil {
		return nil
	}
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return ErrInvalidBody
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrInvalidBody
	}
	return nil
}

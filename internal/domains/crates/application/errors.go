package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid crate input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidMeasurement) ||
		errors.Is(err, domain.ErrEmptyBookingRef) ||
		errors.Is(err, domain.ErrInvalidWeight) ||
		errors.Is(err, domain.ErrInvalidScore) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

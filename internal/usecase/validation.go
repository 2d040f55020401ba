package usecase

import (
	"fmt"
	"math"
	"strings"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
)

// ValidateQuantity checks that a servings count is positive.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", domainErrors.ErrValidation, quantity)
	}
	return nil
}

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("%w: coordinates must be numbers", domainErrors.ErrValidation)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", domainErrors.ErrValidation, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", domainErrors.ErrValidation, lng)
	}
	return nil
}

// ValidateOptionalCoordinates accepts both coordinates missing or both valid.
func ValidateOptionalCoordinates(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: latitude and longitude must be set together", domainErrors.ErrValidation)
	}
	return ValidateCoordinates(*lat, *lng)
}

// NormalizeItem trims an item label and rejects empty ones.
func NormalizeItem(item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", fmt.Errorf("%w: item is required", domainErrors.ErrValidation)
	}
	return item, nil
}

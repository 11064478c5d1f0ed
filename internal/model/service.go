package model

import (
	"errors"
	"strings"
)

// ErrValidation is returned when an entity fails validation.
var ErrValidation = errors.New("validation failed")

// Service is a salon service offered to customers.
type Service struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	DurationMinutes int     `json:"duration" yaml:"duration"` // minutes
	Price           float64 `json:"price" yaml:"price"`
	Description     string  `json:"description" yaml:"description"`
	Color           string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Validate checks required fields and ranges.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return validationError("service name is required")
	}
	if s.DurationMinutes <= 0 {
		return validationError("service duration must be positive")
	}
	if s.Price < 0 {
		return validationError("service price cannot be negative")
	}
	return nil
}

func validationError(msg string) error {
	return &fieldError{msg: msg}
}

type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Unwrap() error { return ErrValidation }

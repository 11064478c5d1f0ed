package model

import (
	"slices"
	"strings"
)

// Professional is a salon employee that performs services.
type Professional struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	AvatarURL   string   `json:"avatarUrl" yaml:"avatar_url"`
	Specialties []string `json:"specialties" yaml:"specialties"` // service IDs
}

// CanPerform reports whether specialties cover every given service ID.
func (p *Professional) CanPerform(serviceIDs ...string) bool {
	for _, id := range serviceIDs {
		if !slices.Contains(p.Specialties, id) {
			return false
		}
	}
	return true
}

// Validate checks required fields.
func (p *Professional) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return validationError("professional name is required")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored specialties.
func (p Professional) Clone() Professional {
	p.Specialties = slices.Clone(p.Specialties)
	return p
}

// Equal compares every field, specialties in order.
func (p Professional) Equal(o Professional) bool {
	return p.ID == o.ID && p.Name == o.Name && p.AvatarURL == o.AvatarURL && slices.Equal(p.Specialties, o.Specialties)
}

// Package catalog matches professionals against selected services.
package catalog

import "salonbook/internal/model"

// Eligible returns the professionals whose specialties cover every selected
// service. No professional is offered before a service is chosen.
func Eligible(professionals []model.Professional, selected []model.Service) []model.Professional {
	if len(selected) == 0 {
		return []model.Professional{}
	}

	ids := ServiceIDs(selected)
	result := make([]model.Professional, 0, len(professionals))
	for _, p := range professionals {
		if p.CanPerform(ids...) {
			result = append(result, p)
		}
	}
	return result
}

// IsEligible checks a single professional against the selection.
func IsEligible(p model.Professional, selected []model.Service) bool {
	return len(selected) > 0 && p.CanPerform(ServiceIDs(selected)...)
}

// ServiceIDs extracts identifiers in selection order.
func ServiceIDs(services []model.Service) []string {
	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID
	}
	return ids
}

// TotalDuration sums service durations in minutes.
func TotalDuration(services []model.Service) int {
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return total
}

// TotalPrice sums service prices.
func TotalPrice(services []model.Service) float64 {
	total := 0.0
	for _, s := range services {
		total += s.Price
	}
	return total
}

// FindService looks a service up by ID.
func FindService(services []model.Service, id string) (model.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return model.Service{}, false
}

// FindProfessional looks a professional up by ID.
func FindProfessional(professionals []model.Professional, id string) (model.Professional, bool) {
	for _, p := range professionals {
		if p.ID == id {
			return p, true
		}
	}
	return model.Professional{}, false
}

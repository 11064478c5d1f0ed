// Package report aggregates appointments for the admin screens.
package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// Period selects the appointments a report covers.
type Period string

const (
	PeriodAll    Period = "all"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	PeriodYear   Period = "year"
)

var ErrUnknownPeriod = errors.New("unknown report period")

// ParsePeriod accepts all, 30d, 90d and year. Empty means all.
func ParsePeriod(v string) (Period, error) {
	switch p := Period(v); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, Period30Days, Period90Days, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, v)
	}
}

// Since returns the start of the window ending at now. ok is false for
// PeriodAll.
func (p Period) Since(now time.Time) (since time.Time, ok bool) {
	switch p {
	case Period30Days:
		return now.AddDate(0, 0, -30), true
	case Period90Days:
		return now.AddDate(0, 0, -90), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Filter keeps appointments inside the period. Bounded periods cover
// [since, now]; PeriodAll keeps everything, future visits included.
func Filter(appointments []model.Appointment, p Period, now time.Time) []model.Appointment {
	since, bounded := p.Since(now)
	out := make([]model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if bounded && (a.Date.Before(since) || a.Date.After(now)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Ranked is one line of a ranking.
type Ranked struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// MonthCount is one point of the appointments-per-month series.
type MonthCount struct {
	Month slots.Month `json:"month"`
	Count int         `json:"count"`
}

// Summary is the reports screen.
type Summary struct {
	Period            Period       `json:"period"`
	From              *time.Time   `json:"from,omitempty"`
	To                time.Time    `json:"to"`
	TotalAppointments int          `json:"totalAppointments"`
	Revenue           float64      `json:"revenue"`
	DistinctClients   int          `json:"distinctClients"`
	AverageTicket     float64      `json:"averageTicket"`
	Services          []Ranked     `json:"services"`
	Professionals     []Ranked     `json:"professionals"`
	Clients           []Ranked     `json:"clients"`
	Monthly           []MonthCount `json:"monthly"`
}

// Build aggregates the appointments of the period.
func Build(appointments []model.Appointment, p Period, now time.Time) Summary {
	selected := Filter(appointments, p, now)

	s := Summary{Period: p, To: now}
	if since, ok := p.Since(now); ok {
		s.From = &since
	}

	services := newRanking()
	professionals := newRanking()
	clients := newRanking()
	for _, a := range selected {
		s.TotalAppointments++
		price := a.TotalPrice()
		s.Revenue += price
		services.add(a.Service.ID, a.Service.Name, price)
		professionals.add(a.Professional.ID, a.Professional.Name, price)
		clients.add(a.Client.ID, a.Client.Name, price)
	}
	s.DistinctClients = len(clients.items)
	if s.TotalAppointments > 0 {
		s.AverageTicket = s.Revenue / float64(s.TotalAppointments)
	}
	s.Services = services.sorted()
	s.Professionals = professionals.sorted()
	s.Clients = clients.sorted()
	s.Monthly = monthly(selected, s.From, now)
	return s
}

type ranking struct {
	items map[string]*Ranked
}

func newRanking() *ranking {
	return &ranking{items: make(map[string]*Ranked)}
}

func (r *ranking) add(id, name string, revenue float64) {
	item, ok := r.items[id]
	if !ok {
		item = &Ranked{ID: id, Name: name}
		r.items[id] = item
	}
	item.Count++
	item.Revenue += revenue
}

// sorted orders by count descending, then by name.
func (r *ranking) sorted() []Ranked {
	out := make([]Ranked, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	slices.SortFunc(out, func(a, b Ranked) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// monthly counts appointments per calendar month, zero-filling gaps.
func monthly(appointments []model.Appointment, from *time.Time, now time.Time) []MonthCount {
	if len(appointments) == 0 {
		return []MonthCount{}
	}

	counts := make(map[slots.Month]int)
	first, last := slots.MonthOf(appointments[0].Date), slots.MonthOf(appointments[0].Date)
	for _, a := range appointments {
		m := slots.MonthOf(a.Date)
		counts[m]++
		if m.Before(first) {
			first = m
		}
		if last.Before(m) {
			last = m
		}
	}
	if from != nil {
		first = slots.MonthOf(*from)
		last = slots.MonthOf(now)
	}

	var out []MonthCount
	for m := first; !last.Before(m); m = m.Next() {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out
}

// VisitCount returns how many appointments the client had up to and
// including at; it is the ordinal of the visit starting at that time.
func VisitCount(appointments []model.Appointment, clientID string, at time.Time) int {
	n := 0
	for _, a := range appointments {
		if a.Client.ID == clientID && !a.Date.After(at) {
			n++
		}
	}
	return n
}

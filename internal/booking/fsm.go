// Package booking implements the customer scheduling wizard as an explicit
// state machine with a pure transition function.
package booking

import (
	"errors"
	"slices"
	"time"

	"salonbook/internal/catalog"
	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// State represents the current step of the scheduling wizard.
type State string

const (
	StateChoosingServices     State = "choosing_services"
	StateChoosingProfessional State = "choosing_professional"
	StateChoosingDateTime     State = "choosing_datetime"
	StateConfirming           State = "confirming"
	StateCommitted            State = "committed"
	StateCancelled            State = "cancelled"
)

// MaxServices caps how many services one booking may combine.
const MaxServices = 2

var (
	ErrInvalidTransition = errors.New("transition not allowed in current state")
	ErrNoServices        = errors.New("select at least one service")
	ErrNotEligible       = errors.New("professional does not perform the selected services")
	ErrMonthInPast       = errors.New("cannot navigate before the current month")
	ErrDateInPast        = errors.New("cannot pick a day before today")
	ErrClosedDay         = errors.New("the salon does not operate on this day")
	ErrNoDate            = errors.New("pick a date first")
	ErrSlotUnavailable   = errors.New("time slot is not available")
	ErrIncomplete        = errors.New("selection is incomplete")
	ErrSubmitting        = errors.New("confirmation already in progress")
)

// transitions lists the allowed state moves.
var transitions = map[State][]State{
	StateChoosingServices:     {StateChoosingProfessional, StateCancelled},
	StateChoosingProfessional: {StateChoosingDateTime, StateChoosingServices, StateCancelled},
	StateChoosingDateTime:     {StateConfirming, StateChoosingProfessional, StateCancelled},
	StateConfirming:           {StateCommitted, StateChoosingDateTime, StateCancelled},
	StateCommitted:            {StateChoosingServices},
	StateCancelled:            {StateChoosingServices},
}

// CanTransition checks if moving between two states is allowed.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// Rules are the business constraints applied while picking a date and time.
type Rules struct {
	Hours slots.Hours
	// WorkingDays restricts selectable weekdays. Empty means every day.
	WorkingDays []time.Weekday
}

// DefaultRules uses the fixed business hours and no weekday restriction.
func DefaultRules() Rules {
	return Rules{Hours: slots.FixedHours}
}

func (r Rules) isWorkingDay(date time.Time) bool {
	return len(r.WorkingDays) == 0 || slices.Contains(r.WorkingDays, date.Weekday())
}

// Selection is the in-progress, not yet committed choice.
type Selection struct {
	Services     []model.Service     `json:"services"`
	Professional *model.Professional `json:"professional,omitempty"`
	Date         *time.Time          `json:"date,omitempty"`
	Time         *time.Time          `json:"time,omitempty"`
}

// HasService reports whether the service is selected.
func (s Selection) HasService(id string) bool {
	return slices.ContainsFunc(s.Services, func(svc model.Service) bool { return svc.ID == id })
}

// TotalDuration sums selected service durations in minutes.
func (s Selection) TotalDuration() int {
	return catalog.TotalDuration(s.Services)
}

// TotalPrice sums selected service prices.
func (s Selection) TotalPrice() float64 {
	return catalog.TotalPrice(s.Services)
}

// Complete reports whether the selection can be committed.
func (s Selection) Complete() bool {
	return len(s.Services) > 0 && s.Professional != nil && s.Date != nil && s.Time != nil
}

func (s Selection) clone() Selection {
	out := Selection{Services: slices.Clone(s.Services)}
	if s.Professional != nil {
		p := s.Professional.Clone()
		out.Professional = &p
	}
	if s.Date != nil {
		d := *s.Date
		out.Date = &d
	}
	if s.Time != nil {
		t := *s.Time
		out.Time = &t
	}
	return out
}

// Wizard is the complete wizard state. It is a value: Transition never
// mutates its input.
type Wizard struct {
	State      State       `json:"state"`
	Selection  Selection   `json:"selection"`
	Month      slots.Month `json:"month"`
	Today      time.Time   `json:"today"`
	Rules      Rules       `json:"-"`
	Submitting bool        `json:"submitting"`
	// Outcome records the terminal state the wizard just passed through
	// (committed or cancelled). Cleared by the next event.
	Outcome State `json:"outcome,omitempty"`
}

// New returns an empty wizard on the first step.
func New(today time.Time, rules Rules) Wizard {
	today = slots.StartOfDay(today)
	return Wizard{
		State: StateChoosingServices,
		Month: slots.MonthOf(today),
		Today: today,
		Rules: rules,
	}
}

// Event is an input to the wizard.
type Event interface {
	Name() string
}

type (
	ToggleService      struct{ Service model.Service }
	Proceed            struct{}
	SelectProfessional struct{ Professional model.Professional }
	NextMonth          struct{}
	PrevMonth          struct{}
	SelectDate         struct{ Date time.Time }
	SelectTime         struct{ Time time.Time }
	Back               struct{}
	BeginSubmit        struct{}
	SubmitSucceeded    struct{}
	SubmitFailed       struct{}
	Cancel             struct{}
)

func (ToggleService) Name() string      { return "toggle_service" }
func (Proceed) Name() string            { return "proceed" }
func (SelectProfessional) Name() string { return "select_professional" }
func (NextMonth) Name() string          { return "next_month" }
func (PrevMonth) Name() string          { return "prev_month" }
func (SelectDate) Name() string         { return "select_date" }
func (SelectTime) Name() string         { return "select_time" }
func (Back) Name() string               { return "back" }
func (BeginSubmit) Name() string        { return "begin_submit" }
func (SubmitSucceeded) Name() string    { return "submit_succeeded" }
func (SubmitFailed) Name() string       { return "submit_failed" }
func (Cancel) Name() string             { return "cancel" }

// Transition applies ev to w and returns the next wizard. On error the
// returned wizard equals w.
func Transition(w Wizard, ev Event) (Wizard, error) {
	next := w
	next.Selection = w.Selection.clone()
	next.Outcome = ""

	var err error
	switch e := ev.(type) {
	case ToggleService:
		err = next.toggleService(e.Service)
	case Proceed:
		err = next.proceed()
	case SelectProfessional:
		err = next.selectProfessional(e.Professional)
	case NextMonth:
		err = next.nextMonth()
	case PrevMonth:
		err = next.prevMonth()
	case SelectDate:
		err = next.selectDate(e.Date)
	case SelectTime:
		err = next.selectTime(e.Time)
	case Back:
		err = next.back()
	case BeginSubmit:
		err = next.beginSubmit()
	case SubmitSucceeded:
		err = next.finishSubmit(true)
	case SubmitFailed:
		err = next.finishSubmit(false)
	case Cancel:
		err = next.cancel()
	default:
		err = ErrInvalidTransition
	}
	if err != nil {
		return w, err
	}
	if next.Outcome != "" {
		if !CanTransition(w.State, next.Outcome) || !CanTransition(next.Outcome, next.State) {
			return w, ErrInvalidTransition
		}
	} else if !CanTransition(w.State, next.State) {
		return w, ErrInvalidTransition
	}
	return next, nil
}

func (w *Wizard) require(state State) error {
	if w.State != state {
		return ErrInvalidTransition
	}
	return nil
}

func (w *Wizard) toggleService(svc model.Service) error {
	if err := w.require(StateChoosingServices); err != nil {
		return err
	}

	if w.Selection.HasService(svc.ID) {
		w.Selection.Services = slices.DeleteFunc(w.Selection.Services, func(s model.Service) bool { return s.ID == svc.ID })
	} else {
		if len(w.Selection.Services) >= MaxServices {
			return nil
		}
		w.Selection.Services = append(w.Selection.Services, svc)
	}
	// Deeper choices are re-validated after any service change.
	w.clearProfessional()
	return nil
}

func (w *Wizard) proceed() error {
	if err := w.require(StateChoosingServices); err != nil {
		return err
	}
	if len(w.Selection.Services) == 0 {
		return ErrNoServices
	}
	w.State = StateChoosingProfessional
	return nil
}

func (w *Wizard) selectProfessional(p model.Professional) error {
	if err := w.require(StateChoosingProfessional); err != nil {
		return err
	}
	if !catalog.IsEligible(p, w.Selection.Services) {
		return ErrNotEligible
	}
	if w.Selection.Professional == nil || w.Selection.Professional.ID != p.ID {
		w.clearDateTime()
	}
	p = p.Clone()
	w.Selection.Professional = &p
	w.State = StateChoosingDateTime
	return nil
}

func (w *Wizard) nextMonth() error {
	if err := w.require(StateChoosingDateTime); err != nil {
		return err
	}
	w.Month = w.Month.Next()
	return nil
}

func (w *Wizard) prevMonth() error {
	if err := w.require(StateChoosingDateTime); err != nil {
		return err
	}
	prev := w.Month.Prev()
	if prev.Before(slots.MonthOf(w.Today)) {
		return ErrMonthInPast
	}
	w.Month = prev
	return nil
}

func (w *Wizard) selectDate(date time.Time) error {
	if err := w.require(StateChoosingDateTime); err != nil {
		return err
	}
	day := slots.StartOfDay(date)
	if day.Before(w.Today) {
		return ErrDateInPast
	}
	if !w.Rules.isWorkingDay(day) {
		return ErrClosedDay
	}
	w.Selection.Date = &day
	w.Selection.Time = nil
	w.Month = slots.MonthOf(day)
	return nil
}

func (w *Wizard) selectTime(t time.Time) error {
	if err := w.require(StateChoosingDateTime); err != nil {
		return err
	}
	if w.Selection.Date == nil {
		return ErrNoDate
	}
	if !slots.Contains(*w.Selection.Date, w.Selection.TotalDuration(), w.Rules.Hours, t) {
		return ErrSlotUnavailable
	}
	w.Selection.Time = &t
	w.State = StateConfirming
	return nil
}

func (w *Wizard) back() error {
	if w.Submitting {
		return ErrSubmitting
	}
	switch w.State {
	case StateChoosingProfessional:
		w.clearProfessional()
		w.State = StateChoosingServices
	case StateChoosingDateTime:
		w.State = StateChoosingProfessional
	case StateConfirming:
		w.State = StateChoosingDateTime
	default:
		return ErrInvalidTransition
	}
	return nil
}

func (w *Wizard) beginSubmit() error {
	if err := w.require(StateConfirming); err != nil {
		return err
	}
	if w.Submitting {
		return ErrSubmitting
	}
	if !w.Selection.Complete() {
		return ErrIncomplete
	}
	w.Submitting = true
	return nil
}

func (w *Wizard) finishSubmit(ok bool) error {
	if err := w.require(StateConfirming); err != nil {
		return err
	}
	if !w.Submitting {
		return ErrInvalidTransition
	}
	if !ok {
		w.Submitting = false
		return nil
	}
	w.reset(StateCommitted)
	return nil
}

func (w *Wizard) cancel() error {
	if w.Submitting {
		return ErrSubmitting
	}
	w.reset(StateCancelled)
	return nil
}

// reset passes through a terminal state back to an empty first step.
func (w *Wizard) reset(terminal State) {
	*w = New(w.Today, w.Rules)
	w.Outcome = terminal
}

func (w *Wizard) clearProfessional() {
	w.Selection.Professional = nil
	w.clearDateTime()
}

func (w *Wizard) clearDateTime() {
	w.Selection.Date = nil
	w.Selection.Time = nil
}

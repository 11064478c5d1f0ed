package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/catalog"
	"salonbook/internal/metrics"
	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// Business hours sources.
const (
	HoursFixed    = "fixed"
	HoursSettings = "settings"
)

var (
	ErrUnknownCommand      = errors.New("unknown command")
	ErrUnknownService      = errors.New("unknown service")
	ErrUnknownProfessional = errors.New("unknown professional")
	ErrBadInput            = errors.New("invalid input")
)

// CatalogReader reads the service and professional catalog.
type CatalogReader interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
}

// SettingsReader reads admin settings.
type SettingsReader interface {
	GetSettings(ctx context.Context) (model.Settings, error)
}

// Recorder persists a committed selection.
type Recorder interface {
	RecordAppointment(ctx context.Context, services []model.Service, professional model.Professional, start time.Time) (*model.Appointment, error)
}

// FlowConfig tunes the wizard orchestration.
type FlowConfig struct {
	HoursSource          string
	PreventDoubleBooking bool
}

// Command is an external wizard input referring to catalog items by ID.
type Command struct {
	Type           string `json:"type"`
	ServiceID      string `json:"serviceId,omitempty"`
	ProfessionalID string `json:"professionalId,omitempty"`
	Date           string `json:"date,omitempty"` // YYYY-MM-DD
	Time           string `json:"time,omitempty"` // HH:MM
}

// Flow drives sessions through the wizard and performs its side effects.
type Flow struct {
	catalog   CatalogReader
	settings  SettingsReader
	recorder  Recorder
	generator *slots.Generator
	cfg       FlowConfig
	now       func() time.Time
	logger    *zerolog.Logger
}

// NewFlow wires the wizard to its collaborators. checker is only consulted
// when double booking prevention is enabled.
func NewFlow(
	catalogReader CatalogReader,
	settings SettingsReader,
	recorder Recorder,
	checker slots.OccupancyChecker,
	cfg FlowConfig,
	logger *zerolog.Logger,
) *Flow {
	if !cfg.PreventDoubleBooking {
		checker = nil
	}
	if cfg.HoursSource == "" {
		cfg.HoursSource = HoursFixed
	}
	return &Flow{
		catalog:   catalogReader,
		settings:  settings,
		recorder:  recorder,
		generator: slots.NewGenerator(checker),
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock overrides the time source.
func (f *Flow) SetClock(now func() time.Time) {
	f.now = now
}

// Start opens a session and loads its catalog snapshot. When the catalog
// cannot be read the session is still returned with nothing to select.
func (f *Flow) Start(ctx context.Context) (*Session, error) {
	s := NewSession(f.now(), f.rules(ctx))

	services, err := f.catalog.ListServices(ctx)
	if err != nil {
		f.logger.Error().Err(err).Str("session", s.ID).Msg("load services failed")
		s.Services, s.Professionals = []model.Service{}, []model.Professional{}
		return s, fmt.Errorf("load services: %w", err)
	}
	professionals, err := f.catalog.ListProfessionals(ctx)
	if err != nil {
		f.logger.Error().Err(err).Str("session", s.ID).Msg("load professionals failed")
		s.Services, s.Professionals = []model.Service{}, []model.Professional{}
		return s, fmt.Errorf("load professionals: %w", err)
	}

	s.Services, s.Professionals = services, professionals
	f.logger.Debug().Str("session", s.ID).Int("services", len(services)).Int("professionals", len(professionals)).Msg("wizard session started")
	return s, nil
}

func (f *Flow) rules(ctx context.Context) Rules {
	rules := DefaultRules()
	if f.cfg.HoursSource != HoursSettings || f.settings == nil {
		return rules
	}

	st, err := f.settings.GetSettings(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("settings unavailable, using fixed business hours")
		return rules
	}
	hours, err := slots.HoursFromSettings(st)
	if err != nil {
		f.logger.Warn().Err(err).Msg("invalid settings hours, using fixed business hours")
		return rules
	}
	rules.Hours = hours
	rules.WorkingDays = st.WorkingDays
	return rules
}

// Handle resolves a command against the session snapshot and applies it.
func (f *Flow) Handle(ctx context.Context, s *Session, cmd Command) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Wizard.Today = slots.StartOfDay(f.now())
	s.UpdatedAt = f.now()

	ev, err := f.resolve(s, cmd)
	if err != nil {
		metrics.IncWizardEvent(cmd.Type, "rejected")
		return s.Wizard, err
	}

	if st, ok := ev.(SelectTime); ok {
		if err := f.checkOccupancy(ctx, s, st.Time); err != nil {
			metrics.IncWizardEvent(ev.Name(), "rejected")
			return s.Wizard, err
		}
	}

	next, err := Transition(s.Wizard, ev)
	if err != nil {
		metrics.IncWizardEvent(ev.Name(), "rejected")
		return s.Wizard, err
	}
	metrics.IncWizardEvent(ev.Name(), "applied")
	s.Wizard = next
	return next, nil
}

func (f *Flow) resolve(s *Session, cmd Command) (Event, error) {
	loc := f.now().Location()

	switch cmd.Type {
	case ToggleService{}.Name():
		svc, ok := catalog.FindService(s.Services, cmd.ServiceID)
		if !ok {
			return nil, ErrUnknownService
		}
		return ToggleService{Service: svc}, nil
	case Proceed{}.Name():
		return Proceed{}, nil
	case SelectProfessional{}.Name():
		p, ok := catalog.FindProfessional(s.Professionals, cmd.ProfessionalID)
		if !ok {
			return nil, ErrUnknownProfessional
		}
		return SelectProfessional{Professional: p}, nil
	case NextMonth{}.Name():
		return NextMonth{}, nil
	case PrevMonth{}.Name():
		return PrevMonth{}, nil
	case SelectDate{}.Name():
		date, err := time.ParseInLocation("2006-01-02", cmd.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadInput)
		}
		return SelectDate{Date: date}, nil
	case SelectTime{}.Name():
		if s.Wizard.Selection.Date == nil {
			return nil, ErrNoDate
		}
		clock, err := model.ParseClock(cmd.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: time must be HH:MM", ErrBadInput)
		}
		start := model.AtClock(*s.Wizard.Selection.Date, clock)
		return SelectTime{Time: start}, nil
	case Back{}.Name():
		return Back{}, nil
	case Cancel{}.Name():
		return Cancel{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

func (f *Flow) checkOccupancy(ctx context.Context, s *Session, start time.Time) error {
	sel := s.Wizard.Selection
	if sel.Professional == nil || sel.Date == nil {
		return nil
	}
	return f.slotFree(ctx, sel, s.Wizard.Rules.Hours, start)
}

func (f *Flow) slotFree(ctx context.Context, sel Selection, hours slots.Hours, start time.Time) error {
	available, err := f.generator.GenerateSlots(ctx, sel.Professional.ID, *sel.Date, sel.TotalDuration(), hours)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	for _, slot := range available {
		if slot.StartTime.Equal(start) {
			if !slot.Available {
				return ErrSlotUnavailable
			}
			return nil
		}
	}
	return nil
}

// recheckSlot repeats the occupancy check right before the write. Another
// session may have booked the slot after it was selected here.
func (f *Flow) recheckSlot(ctx context.Context, sel Selection, hours slots.Hours) error {
	if !f.cfg.PreventDoubleBooking || sel.Professional == nil || sel.Date == nil || sel.Time == nil {
		return nil
	}
	return f.slotFree(ctx, sel, hours, *sel.Time)
}

// EligibleProfessionals lists the professionals offered for the selection.
func (f *Flow) EligibleProfessionals(s *Session) []model.Professional {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Eligible(s.Professionals, s.Wizard.Selection.Services)
}

// AvailableTimes lists slots for the selected date and total duration.
func (f *Flow) AvailableTimes(ctx context.Context, s *Session) ([]slots.Slot, error) {
	w := s.Snapshot()
	if w.Selection.Professional == nil {
		return nil, ErrIncomplete
	}
	if w.Selection.Date == nil {
		return nil, ErrNoDate
	}
	return f.generator.GenerateSlots(ctx, w.Selection.Professional.ID, *w.Selection.Date, w.Selection.TotalDuration(), w.Rules.Hours)
}

// Confirm commits the selection. Only one confirmation may be outstanding
// per session; a failed write leaves the selection on the confirming step.
func (f *Flow) Confirm(ctx context.Context, s *Session) (*model.Appointment, error) {
	s.mu.Lock()
	s.Wizard.Today = slots.StartOfDay(f.now())
	next, err := Transition(s.Wizard, BeginSubmit{})
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.Wizard = next
	sel := next.Selection.clone()
	s.mu.Unlock()

	recordErr := f.recheckSlot(ctx, sel, next.Rules.Hours)
	var appt *model.Appointment
	if recordErr == nil {
		appt, recordErr = f.recorder.RecordAppointment(ctx, sel.Services, *sel.Professional, *sel.Time)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = f.now()

	if recordErr != nil {
		s.Wizard, _ = Transition(s.Wizard, SubmitFailed{})
		metrics.IncWizardEvent(SubmitFailed{}.Name(), "applied")
		f.logger.Error().Err(recordErr).Str("session", s.ID).Msg("confirm appointment failed")
		if errors.Is(recordErr, ErrSlotUnavailable) {
			return nil, recordErr
		}
		return nil, fmt.Errorf("record appointment: %w", recordErr)
	}

	s.Wizard, _ = Transition(s.Wizard, SubmitSucceeded{})
	metrics.IncWizardEvent(SubmitSucceeded{}.Name(), "applied")
	f.logger.Info().Str("session", s.ID).Str("appointment", appt.ID).Msg("appointment confirmed")
	return appt, nil
}

// Abandon discards the session's selection. Nothing was persisted, so no
// compensating action is needed. It fails with ErrSubmitting while a
// confirmation is outstanding, since that write may still land.
func (f *Flow) Abandon(s *Session) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Wizard.Submitting {
		return s.Wizard, ErrSubmitting
	}
	if next, err := Transition(s.Wizard, Cancel{}); err == nil {
		s.Wizard = next
	}
	return s.Wizard, nil
}

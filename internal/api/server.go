// Package api exposes the booking wizard and the salon admin screens over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"salonbook/internal/booking"
	"salonbook/internal/model"
	"salonbook/internal/report"
	"salonbook/internal/service"
	"salonbook/internal/storage"
)

const maxBodyBytes = 1 << 20

var (
	errSessionNotFound = errors.New("wizard session not found")
	errBadRequest      = errors.New("bad request")
)

// Catalog is the admin CRUD surface.
type Catalog interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	SaveService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, id string) error
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
	SaveProfessional(ctx context.Context, p *model.Professional) error
	DeleteProfessional(ctx context.Context, id string) error
	ListClients(ctx context.Context) ([]model.Client, error)
	SaveClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, id string) error
	ClientHistory(ctx context.Context, id string) (*model.Client, []model.Appointment, error)
}

// Appointments is the appointment book.
type Appointments interface {
	List(ctx context.Context) ([]model.Appointment, error)
	Upcoming(ctx context.Context) ([]model.Appointment, error)
	Cancel(ctx context.Context, id string) error
}

// Settings reads and writes the salon settings.
type Settings interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, st model.Settings) (model.Settings, error)
}

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Flow         *booking.Flow
	Sessions     *booking.SessionStore
	Catalog      Catalog
	Appointments Appointments
	Settings     Settings
	Store        Pinger
	// HoursSource picks the calendar rows: booking.HoursFixed or
	// booking.HoursSettings.
	HoursSource string
	RateLimit   RateLimit
	Metrics     bool
	Logger      *zerolog.Logger
}

// Server routes API requests.
type Server struct {
	Deps
	router *mux.Router
	now    func() time.Time
}

// NewServer builds the router.
func NewServer(d Deps) *Server {
	s := &Server{Deps: d, router: mux.NewRouter(), now: time.Now}
	s.routes()
	return s
}

// SetClock overrides the time source used by reports.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestLogger(s.Logger))
	if s.Metrics {
		r.Use(requestMetrics)
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(newRateLimiter(s.RateLimit).middleware)

	api.HandleFunc("/wizard", s.createWizard).Methods(http.MethodPost)
	api.HandleFunc("/wizard/{id}", s.getWizard).Methods(http.MethodGet)
	api.HandleFunc("/wizard/{id}", s.abandonWizard).Methods(http.MethodDelete)
	api.HandleFunc("/wizard/{id}/events", s.wizardEvent).Methods(http.MethodPost)
	api.HandleFunc("/wizard/{id}/professionals", s.wizardProfessionals).Methods(http.MethodGet)
	api.HandleFunc("/wizard/{id}/times", s.wizardTimes).Methods(http.MethodGet)
	api.HandleFunc("/wizard/{id}/confirm", s.confirmWizard).Methods(http.MethodPost)

	api.HandleFunc("/services", s.listServices).Methods(http.MethodGet)
	api.HandleFunc("/services", s.createService).Methods(http.MethodPost)
	api.HandleFunc("/services/{id}", s.updateService).Methods(http.MethodPut)
	api.HandleFunc("/services/{id}", s.deleteService).Methods(http.MethodDelete)

	api.HandleFunc("/professionals", s.listProfessionals).Methods(http.MethodGet)
	api.HandleFunc("/professionals", s.createProfessional).Methods(http.MethodPost)
	api.HandleFunc("/professionals/{id}", s.updateProfessional).Methods(http.MethodPut)
	api.HandleFunc("/professionals/{id}", s.deleteProfessional).Methods(http.MethodDelete)

	api.HandleFunc("/clients", s.listClients).Methods(http.MethodGet)
	api.HandleFunc("/clients", s.createClient).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}", s.getClient).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", s.updateClient).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", s.deleteClient).Methods(http.MethodDelete)

	api.HandleFunc("/appointments", s.listAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", s.cancelAppointment).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.saveSettings).Methods(http.MethodPut)

	api.HandleFunc("/reports", s.getReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/export", s.exportReport).Methods(http.MethodGet)
	api.HandleFunc("/birthdays", s.getBirthdays).Methods(http.MethodGet)
	api.HandleFunc("/calendar", s.getCalendar).Methods(http.MethodGet)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Internal failures are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

var badRequestErrors = []error{
	errBadRequest,
	model.ErrValidation,
	storage.ErrInvalid,
	report.ErrUnknownPeriod,
	service.ErrNoServices,
	booking.ErrInvalidTransition,
	booking.ErrNoServices,
	booking.ErrNotEligible,
	booking.ErrMonthInPast,
	booking.ErrDateInPast,
	booking.ErrClosedDay,
	booking.ErrNoDate,
	booking.ErrSlotUnavailable,
	booking.ErrIncomplete,
	booking.ErrUnknownCommand,
	booking.ErrUnknownService,
	booking.ErrUnknownProfessional,
	booking.ErrBadInput,
}

func statusFor(err error) int {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, errSessionNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, booking.ErrSubmitting) {
		return http.StatusConflict
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

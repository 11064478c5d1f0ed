package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"salonbook/internal/booking"
	"salonbook/internal/metrics"
	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// monthGrid is the date picker of the wizard's current month.
type monthGrid struct {
	Year         int          `json:"year"`
	Month        time.Month   `json:"month"`
	Days         int          `json:"days"`
	FirstWeekday time.Weekday `json:"firstWeekday"`
}

func newMonthGrid(m slots.Month) monthGrid {
	return monthGrid{Year: m.Year, Month: m.Month, Days: m.DaysIn(), FirstWeekday: m.FirstWeekday()}
}

type wizardResponse struct {
	ID            string               `json:"id"`
	Wizard        booking.Wizard       `json:"wizard"`
	Calendar      monthGrid            `json:"calendar"`
	Summary       booking.Summary      `json:"summary"`
	Services      []model.Service      `json:"services"`
	Professionals []model.Professional `json:"professionals"`
	// Notice carries a non-fatal problem, such as a catalog that could not
	// be loaded.
	Notice string `json:"notice,omitempty"`
}

func newWizardResponse(sess *booking.Session, w booking.Wizard) wizardResponse {
	return wizardResponse{
		ID:            sess.ID,
		Wizard:        w,
		Calendar:      newMonthGrid(w.Month),
		Summary:       w.Summary(),
		Services:      sess.Services,
		Professionals: sess.Professionals,
	}
}

type confirmResponse struct {
	Appointment *model.Appointment `json:"appointment"`
	Wizard      booking.Wizard     `json:"wizard"`
}

func (s *Server) session(r *http.Request) (*booking.Session, error) {
	sess := s.Sessions.Get(mux.Vars(r)["id"])
	if sess == nil {
		return nil, errSessionNotFound
	}
	return sess, nil
}

// createWizard handles POST /api/v1/wizard.
func (s *Server) createWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Flow.Start(r.Context())
	s.Sessions.Add(sess)
	metrics.SetActiveSessions(s.Sessions.Len())

	resp := newWizardResponse(sess, sess.Snapshot())
	if err != nil {
		resp.Notice = "catalog unavailable, try again later"
	}
	writeJSON(w, http.StatusCreated, resp)
}

// getWizard handles GET /api/v1/wizard/{id}.
func (s *Server) getWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardResponse(sess, sess.Snapshot()))
}

// wizardEvent handles POST /api/v1/wizard/{id}/events.
func (s *Server) wizardEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var cmd booking.Command
	if err := decodeJSON(r, &cmd); err != nil {
		s.writeError(w, r, err)
		return
	}
	next, err := s.Flow.Handle(r.Context(), sess, cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardResponse(sess, next))
}

// wizardProfessionals handles GET /api/v1/wizard/{id}/professionals.
func (s *Server) wizardProfessionals(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list := s.Flow.EligibleProfessionals(sess)
	if list == nil {
		list = []model.Professional{}
	}
	writeJSON(w, http.StatusOK, list)
}

// wizardTimes handles GET /api/v1/wizard/{id}/times[?available=true].
func (s *Server) wizardTimes(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	onlyAvailable := false
	if v := r.URL.Query().Get("available"); v != "" {
		if onlyAvailable, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: available must be a boolean", errBadRequest))
			return
		}
	}
	times, err := s.Flow.AvailableTimes(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if onlyAvailable {
		times = slots.GetAvailableSlots(times)
	}
	writeJSON(w, http.StatusOK, slots.ToSlotInfo(times))
}

// confirmWizard handles POST /api/v1/wizard/{id}/confirm.
func (s *Server) confirmWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	appt, err := s.Flow.Confirm(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, confirmResponse{Appointment: appt, Wizard: sess.Snapshot()})
}

// abandonWizard handles DELETE /api/v1/wizard/{id}.
func (s *Server) abandonWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.Flow.Abandon(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Sessions.Delete(sess.ID)
	metrics.SetActiveSessions(s.Sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

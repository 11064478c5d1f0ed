package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"salonbook/internal/booking"
	"salonbook/internal/model"
	"salonbook/internal/report"
	"salonbook/internal/slots"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// listAppointments handles GET /api/v1/appointments[?upcoming=true].
func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	list := s.Appointments.List
	if v := r.URL.Query().Get("upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: upcoming must be a boolean", errBadRequest))
			return
		}
		if upcoming {
			list = s.Appointments.Upcoming
		}
	}
	appts, err := list(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// cancelAppointment handles DELETE /api/v1/appointments/{id}.
func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.Appointments.Cancel(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.Settings.GetSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	var st model.Settings
	if err := decodeJSON(r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.Settings.SaveSettings(r.Context(), st)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) periodAppointments(r *http.Request) (report.Period, []model.Appointment, error) {
	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return "", nil, err
	}
	appts, err := s.Appointments.List(r.Context())
	if err != nil {
		return "", nil, err
	}
	return period, appts, nil
}

// getReport handles GET /api/v1/reports?period=.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	period, appts, err := s.periodAppointments(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Build(appts, period, s.now()))
}

// exportReport handles GET /api/v1/reports/export?period=.
func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	period, appts, err := s.periodAppointments(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.now()
	selected := report.Filter(appts, period, now)

	var buf bytes.Buffer
	if err := report.WriteExcel(&buf, report.Build(selected, report.PeriodAll, now), selected); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("salon-report-%s-%s.xlsx", period, now.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// getBirthdays handles GET /api/v1/birthdays[?month=1..12].
func (s *Server) getBirthdays(w http.ResponseWriter, r *http.Request) {
	month := s.now().Month()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			s.writeError(w, r, fmt.Errorf("%w: month must be 1-12", errBadRequest))
			return
		}
		month = time.Month(m)
	}
	clients, err := s.Catalog.ListClients(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.ListBirthdays(clients, month))
}

// getCalendar handles GET /api/v1/calendar?professional=&date=YYYY-MM-DD.
func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	professionalID := q.Get("professional")
	if professionalID == "" {
		s.writeError(w, r, fmt.Errorf("%w: professional is required", errBadRequest))
		return
	}
	anchor := s.now()
	if v := q.Get("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, anchor.Location())
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
			return
		}
		anchor = d
	}

	hours := slots.FixedHours
	if s.HoursSource == booking.HoursSettings {
		st, err := s.Settings.GetSettings(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if h, err := slots.HoursFromSettings(st); err == nil {
			hours = h
		}
	}

	appts, err := s.Appointments.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.BuildWeek(appts, professionalID, anchor, hours))
}

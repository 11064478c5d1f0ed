package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonbook/internal/booking"
	"salonbook/internal/config"
	"salonbook/internal/events"
	"salonbook/internal/model"
	"salonbook/internal/report"
	"salonbook/internal/service"
	"salonbook/internal/storage/memory"
)

// Wednesday.
var testNow = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	server *Server
	store  *memory.Store
	deps   Deps
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	clock := func() time.Time { return testNow }

	store := memory.NewSeeded(config.DefaultSeed(), testNow)
	bus := events.NewEventBus(&logger)
	appointments := service.NewAppointmentService(store, store, bus, "", &logger)
	appointments.SetClock(clock)
	catalog := service.NewCatalogService(store, store, &logger)
	settings := service.NewSettingsService(store, &logger)

	flow := booking.NewFlow(catalog, settings, appointments, appointments, booking.FlowConfig{}, &logger)
	flow.SetClock(clock)
	sessions := booking.NewSessionStore(time.Hour)
	sessions.SetClock(clock)

	d := Deps{
		Flow:         flow,
		Sessions:     sessions,
		Catalog:      catalog,
		Appointments: appointments,
		Settings:     settings,
		Store:        store,
		HoursSource:  booking.HoursFixed,
		Logger:       &logger,
	}
	for _, opt := range opts {
		opt(&d)
	}
	srv := NewServer(d)
	srv.SetClock(clock)
	return &testEnv{server: srv, store: store, deps: d}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type wizardBody struct {
	ID     string `json:"id"`
	Wizard struct {
		State     string `json:"state"`
		Selection struct {
			Services []model.Service `json:"services"`
		} `json:"selection"`
	} `json:"wizard"`
	Calendar monthGrid       `json:"calendar"`
	Summary  booking.Summary `json:"summary"`
	Services []model.Service `json:"services"`
	Notice   string          `json:"notice"`
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Error
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyz_BackendDown(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Store = downPinger{} })

	rec := env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWizard_BookingFlow(t *testing.T) {
	env := newTestEnv(t)
	before, err := env.store.ListAppointments(context.Background())
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[wizardBody](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "choosing_services", created.Wizard.State)
	assert.Len(t, created.Services, 6)
	assert.Empty(t, created.Notice)
	assert.Equal(t, monthGrid{Year: 2026, Month: time.March, Days: 31, FirstWeekday: time.Sunday}, created.Calendar)

	base := "/api/v1/wizard/" + created.ID
	steps := []struct {
		cmd   booking.Command
		state string
	}{
		{booking.Command{Type: "toggle_service", ServiceID: "1"}, "choosing_services"},
		{booking.Command{Type: "proceed"}, "choosing_professional"},
		{booking.Command{Type: "select_professional", ProfessionalID: "p1"}, "choosing_datetime"},
		{booking.Command{Type: "select_date", Date: "2026-03-12"}, "choosing_datetime"},
	}
	for _, step := range steps {
		rec = env.do(t, http.MethodPost, base+"/events", step.cmd)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", step.cmd.Type, rec.Body.String())
		assert.Equal(t, step.state, decode[wizardBody](t, rec).Wizard.State, step.cmd.Type)
	}

	rec = env.do(t, http.MethodGet, base+"/times", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	times := decode[[]map[string]any](t, rec)
	require.Len(t, times, 19)
	assert.Equal(t, "09:00", times[0]["start"])
	assert.Equal(t, "18:00", times[18]["start"])

	rec = env.do(t, http.MethodPost, base+"/events", booking.Command{Type: "select_time", Time: "14:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirming := decode[wizardBody](t, rec)
	assert.Equal(t, "confirming", confirming.Wizard.State)
	assert.InDelta(t, 120.0, confirming.Summary.TotalPrice, 0.001)
	assert.Equal(t, "14:00", confirming.Summary.Time)

	rec = env.do(t, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	confirmed := decode[struct {
		Appointment model.Appointment `json:"appointment"`
		Wizard      struct {
			State string `json:"state"`
		} `json:"wizard"`
	}](t, rec)
	assert.Equal(t, "1", confirmed.Appointment.Service.ID)
	assert.Equal(t, "p1", confirmed.Appointment.Professional.ID)
	assert.Equal(t, "c1", confirmed.Appointment.Client.ID)
	assert.True(t, confirmed.Appointment.Date.Equal(time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "choosing_services", confirmed.Wizard.State)

	after, err := env.store.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestWizard_PreventDoubleBooking(t *testing.T) {
	logger := zerolog.New(io.Discard)
	env := newTestEnv(t, func(d *Deps) {
		appointments := d.Appointments.(*service.AppointmentService)
		flow := booking.NewFlow(d.Catalog, d.Settings, appointments, appointments,
			booking.FlowConfig{PreventDoubleBooking: true}, &logger)
		flow.SetClock(func() time.Time { return testNow })
		d.Flow = flow
	})
	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	base := "/api/v1/wizard/" + decode[wizardBody](t, rec).ID
	for _, cmd := range []booking.Command{
		{Type: "toggle_service", ServiceID: "1"},
		{Type: "proceed"},
		{Type: "select_professional", ProfessionalID: "p1"},
		{Type: "select_date", Date: "2026-03-12"},
	} {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/events", cmd).Code, cmd.Type)
	}

	// p1 is booked 11:30-12:15 on that Thursday.
	rec = env.do(t, http.MethodGet, base+"/times", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 19)

	rec = env.do(t, http.MethodGet, base+"/times?available=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var starts []string
	for _, slot := range decode[[]map[string]any](t, rec) {
		starts = append(starts, slot["start"].(string))
	}
	assert.Len(t, starts, 16)
	assert.NotContains(t, starts, "11:00")
	assert.NotContains(t, starts, "12:00")
	assert.Contains(t, starts, "10:30")
	assert.Contains(t, starts, "12:30")

	rec = env.do(t, http.MethodPost, base+"/events", booking.Command{Type: "select_time", Time: "11:30"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, booking.ErrSlotUnavailable.Error(), errorOf(t, rec))

	rec = env.do(t, http.MethodGet, base+"/times?available=perhaps", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizard_MultiServiceBookingHoldsWholeDuration(t *testing.T) {
	logger := zerolog.New(io.Discard)
	env := newTestEnv(t, func(d *Deps) {
		appointments := d.Appointments.(*service.AppointmentService)
		flow := booking.NewFlow(d.Catalog, d.Settings, appointments, appointments,
			booking.FlowConfig{PreventDoubleBooking: true}, &logger)
		flow.SetClock(func() time.Time { return testNow })
		d.Flow = flow
	})

	startSession := func(serviceIDs ...string) string {
		t.Helper()
		rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		base := "/api/v1/wizard/" + decode[wizardBody](t, rec).ID
		var cmds []booking.Command
		for _, id := range serviceIDs {
			cmds = append(cmds, booking.Command{Type: "toggle_service", ServiceID: id})
		}
		cmds = append(cmds,
			booking.Command{Type: "proceed"},
			booking.Command{Type: "select_professional", ProfessionalID: "p1"},
			booking.Command{Type: "select_date", Date: "2026-03-16"},
		)
		for _, cmd := range cmds {
			require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/events", cmd).Code, cmd.Type)
		}
		return base
	}

	first := startSession("1", "5")
	rec := env.do(t, http.MethodPost, first+"/events", booking.Command{Type: "select_time", Time: "14:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, first+"/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	confirmed := decode[struct {
		Appointment model.Appointment `json:"appointment"`
	}](t, rec)
	assert.Equal(t, "1", confirmed.Appointment.Service.ID)
	assert.Equal(t, 105, confirmed.Appointment.DurationMinutes)
	assert.InDelta(t, 210.0, confirmed.Appointment.Price, 0.001)

	second := startSession("5")
	rec = env.do(t, http.MethodGet, second+"/times?available=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var starts []string
	for _, slot := range decode[[]map[string]any](t, rec) {
		starts = append(starts, slot["start"].(string))
	}
	assert.NotContains(t, starts, "15:00")
	assert.NotContains(t, starts, "15:30")
	assert.Contains(t, starts, "16:00")

	rec = env.do(t, http.MethodPost, second+"/events", booking.Command{Type: "select_time", Time: "15:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, booking.ErrSlotUnavailable.Error(), errorOf(t, rec))
}

func TestWizard_Errors(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/wizard/" + decode[wizardBody](t, rec).ID

	tests := []struct {
		name string
		body any
		want string
	}{
		{"proceed without services", booking.Command{Type: "proceed"}, booking.ErrNoServices.Error()},
		{"unknown command", booking.Command{Type: "teleport"}, "unknown command"},
		{"unknown service", booking.Command{Type: "toggle_service", ServiceID: "42"}, booking.ErrUnknownService.Error()},
		{"wrong step", booking.Command{Type: "select_date", Date: "2026-03-12"}, booking.ErrInvalidTransition.Error()},
		{"malformed json", `{"type":`, "bad request"},
		{"unknown field", `{"type":"proceed","extra":1}`, "bad request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, base+"/events", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorOf(t, rec), tt.want)
		})
	}

	rec = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "choosing_services", decode[wizardBody](t, rec).Wizard.State)

	rec = env.do(t, http.MethodGet, base+"/times", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizard_EligibleProfessionals(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	base := "/api/v1/wizard/" + decode[wizardBody](t, rec).ID

	rec = env.do(t, http.MethodGet, base+"/professionals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Professional](t, rec))

	env.do(t, http.MethodPost, base+"/events", booking.Command{Type: "toggle_service", ServiceID: "1"})
	env.do(t, http.MethodPost, base+"/events", booking.Command{Type: "toggle_service", ServiceID: "3"})

	rec = env.do(t, http.MethodGet, base+"/professionals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ids []string
	for _, p := range decode[[]model.Professional](t, rec) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p2", "p4"}, ids)
}

func TestWizard_AbandonAndUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	base := "/api/v1/wizard/" + decode[wizardBody](t, rec).ID

	rec = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.deps.Sessions.Len())

	rec = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/wizard/nope/events", booking.Command{Type: "proceed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenCatalog struct{}

func (brokenCatalog) ListServices(context.Context) ([]model.Service, error) {
	return nil, errors.New("timeout")
}

func (brokenCatalog) ListProfessionals(context.Context) ([]model.Professional, error) {
	return nil, errors.New("timeout")
}

func TestWizard_CatalogUnavailable(t *testing.T) {
	logger := zerolog.New(io.Discard)
	env := newTestEnv(t, func(d *Deps) {
		d.Flow = booking.NewFlow(brokenCatalog{}, nil, nil, nil, booking.FlowConfig{}, &logger)
	})

	rec := env.do(t, http.MethodPost, "/api/v1/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[wizardBody](t, rec)
	assert.NotEmpty(t, body.Notice)
	assert.Empty(t, body.Services)
	assert.Equal(t, "choosing_services", body.Wizard.State)
}

func TestServicesCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/services", model.Service{Name: "Escova Simples", DurationMinutes: 40, Price: 60})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Service](t, rec)
	require.NotEmpty(t, created.ID)

	created.Price = 70
	rec = env.do(t, http.MethodPut, "/api/v1/services/"+created.ID, created)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 70.0, decode[model.Service](t, rec).Price, 0.001)

	rec = env.do(t, http.MethodGet, "/api/v1/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Service](t, rec)
	require.Len(t, list, 7)
	assert.Equal(t, created.ID, list[6].ID)

	rec = env.do(t, http.MethodPost, "/api/v1/services", model.Service{Name: "", DurationMinutes: 30})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/services/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/services/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProfessional_AssignsAvatar(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/professionals", model.Professional{Name: "Paula Reis", Specialties: []string{"6"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[model.Professional](t, rec)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "https://picsum.photos/seed/"+p.ID+"/200/200", p.AvatarURL)
}

func TestGetClient_History(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/clients/c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Client       model.Client `json:"client"`
		Appointments []struct {
			ID    string    `json:"id"`
			Date  time.Time `json:"date"`
			Visit int       `json:"visit"`
		} `json:"appointments"`
	}](t, rec)
	assert.Equal(t, "Ana Silva", detail.Client.Name)
	require.NotEmpty(t, detail.Appointments)
	n := len(detail.Appointments)
	assert.Equal(t, n, detail.Appointments[0].Visit)
	assert.Equal(t, 1, detail.Appointments[n-1].Visit)
	for i := 1; i < n; i++ {
		assert.False(t, detail.Appointments[i].Date.After(detail.Appointments[i-1].Date))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/clients/zz", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppointments(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]model.Appointment](t, rec)
	assert.Len(t, all, 27)

	rec = env.do(t, http.MethodGet, "/api/v1/appointments?upcoming=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	upcoming := decode[[]model.Appointment](t, rec)
	assert.Less(t, len(upcoming), len(all))
	for _, a := range upcoming {
		assert.False(t, a.Date.Before(testNow), a.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/appointments?upcoming=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/appointments/a1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/appointments/a1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "09:00", decode[model.Settings](t, rec).OpeningTime)

	update := model.Settings{OpeningTime: "10:00", ClosingTime: "18:00", WorkingDays: []time.Weekday{6, 1, 1, 3}}
	rec = env.do(t, http.MethodPut, "/api/v1/settings", update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []time.Weekday{1, 3, 6}, decode[model.Settings](t, rec).WorkingDays)

	rec = env.do(t, http.MethodPut, "/api/v1/settings", model.Settings{OpeningTime: "18:00", ClosingTime: "10:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/reports?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[report.Summary](t, rec)
	assert.Equal(t, 27, s.TotalAppointments)
	assert.Equal(t, 7, s.DistinctClients)
	assert.NotEmpty(t, s.Services)

	rec = env.do(t, http.MethodGet, "/api/v1/reports?period=30d", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, decode[report.Summary](t, rec).TotalAppointments, 27)

	rec = env.do(t, http.MethodGet, "/api/v1/reports?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportReport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/reports/export?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "salon-report-all-20260311.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Appointments")
	require.NoError(t, err)
	assert.Len(t, rows, 28)
}

func TestBirthdays(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/birthdays", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[report.Birthdays](t, rec)
	assert.Equal(t, time.March, b.Current.Month)
	require.Len(t, b.Current.Clients, 1)
	assert.Equal(t, "c1", b.Current.Clients[0].ID)
	assert.Equal(t, time.April, b.Next[0].Month)

	rec = env.do(t, http.MethodGet, "/api/v1/birthdays?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendar(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar?professional=p1&date=2026-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	w := decode[report.Week](t, rec)
	require.Len(t, w.Days, 7)
	assert.Equal(t, "2026-03-08", w.Days[0].Date)

	monday := w.Days[1].Slots[2]
	assert.Equal(t, "10:00", monday.Time)
	var ids []string
	for _, a := range monday.Appointments {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, "cal1")

	rec = env.do(t, http.MethodGet, "/api/v1/calendar", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/calendar?professional=p1&date=11/03/2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.RateLimit = RateLimit{RequestsPerSecond: 0.001, Burst: 2} })

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/services", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/services", nil).Code)
	rec := env.do(t, http.MethodGet, "/api/v1/services", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code, "health checks are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Metrics = true })

	env.do(t, http.MethodGet, "/api/v1/services", nil)
	rec := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errSessionNotFound, http.StatusNotFound},
		{booking.ErrSlotUnavailable, http.StatusBadRequest},
		{booking.ErrSubmitting, http.StatusConflict},
		{model.ErrValidation, http.StatusBadRequest},
		{report.ErrUnknownPeriod, http.StatusBadRequest},
		{errors.New("disk I/O error"), http.StatusInternalServerError},
		{service.ErrNoClient, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

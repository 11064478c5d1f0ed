package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salonbook/internal/model"
	"salonbook/internal/slots"
)

var (
	corte     = model.Service{ID: "s1", Name: "Corte", DurationMinutes: 60, Price: 60}
	coloracao = model.Service{ID: "s2", Name: "Coloração", DurationMinutes: 120, Price: 100}

	juliana  = model.Professional{ID: "p1", Name: "Juliana"}
	fernanda = model.Professional{ID: "p2", Name: "Fernanda"}

	ana   = model.Client{ID: "c1", Name: "Ana", Birthday: "15/03/1990"}
	bia   = model.Client{ID: "c2", Name: "Bia", Birthday: "02/03/1985"}
	carla = model.Client{ID: "c3", Name: "Carla", Birthday: "20/07/1992"}

	now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
)

func appt(id string, s model.Service, p model.Professional, c model.Client, at time.Time) model.Appointment {
	return model.Appointment{ID: id, Service: s, Professional: p, Client: c, Date: at}
}

func day(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func fixture() []model.Appointment {
	return []model.Appointment{
		appt("a4", coloracao, juliana, carla, day(2025, time.June, 1, 10, 0)),
		appt("a3", corte, juliana, bia, day(2026, time.January, 15, 9, 0)),
		appt("a2", coloracao, fernanda, ana, day(2026, time.February, 20, 14, 0)),
		appt("a1", corte, juliana, ana, day(2026, time.March, 1, 10, 0)),
		appt("a5", corte, fernanda, bia, day(2026, time.March, 20, 11, 0)),
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodAll, false},
		{"all", PeriodAll, false},
		{"30d", Period30Days, false},
		{"90d", Period90Days, false},
		{"year", PeriodYear, false},
		{"week", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter(t *testing.T) {
	ids := func(list []model.Appointment) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a4", "a3", "a2", "a1", "a5"}, ids(Filter(fixture(), PeriodAll, now)))
	assert.Equal(t, []string{"a2", "a1"}, ids(Filter(fixture(), Period30Days, now)))
	assert.Equal(t, []string{"a3", "a2", "a1"}, ids(Filter(fixture(), Period90Days, now)))
	assert.Equal(t, []string{"a4", "a3", "a2", "a1"}, ids(Filter(fixture(), PeriodYear, now)))
}

func TestBuild_All(t *testing.T) {
	s := Build(fixture(), PeriodAll, now)

	assert.Nil(t, s.From)
	assert.Equal(t, 5, s.TotalAppointments)
	assert.InDelta(t, 380.0, s.Revenue, 0.001)
	assert.Equal(t, 3, s.DistinctClients)
	assert.InDelta(t, 76.0, s.AverageTicket, 0.001)

	assert.Equal(t, []Ranked{
		{ID: "s1", Name: "Corte", Count: 3, Revenue: 180},
		{ID: "s2", Name: "Coloração", Count: 2, Revenue: 200},
	}, s.Services)
	assert.Equal(t, []Ranked{
		{ID: "p1", Name: "Juliana", Count: 3, Revenue: 220},
		{ID: "p2", Name: "Fernanda", Count: 2, Revenue: 160},
	}, s.Professionals)

	require.Len(t, s.Clients, 3)
	assert.Equal(t, "Ana", s.Clients[0].Name, "ties are ordered by name")
	assert.Equal(t, "Bia", s.Clients[1].Name)
	assert.Equal(t, "Carla", s.Clients[2].Name)

	require.Len(t, s.Monthly, 10)
	assert.Equal(t, MonthCount{Month: slots.Month{Year: 2025, Month: time.June}, Count: 1}, s.Monthly[0])
	assert.Equal(t, 0, s.Monthly[1].Count)
	assert.Equal(t, MonthCount{Month: slots.Month{Year: 2026, Month: time.March}, Count: 2}, s.Monthly[9])
}

func TestBuild_Last30Days(t *testing.T) {
	s := Build(fixture(), Period30Days, now)

	require.NotNil(t, s.From)
	assert.Equal(t, now.AddDate(0, 0, -30), *s.From)
	assert.Equal(t, 2, s.TotalAppointments)
	assert.InDelta(t, 160.0, s.Revenue, 0.001)
	assert.Equal(t, 1, s.DistinctClients)
	assert.InDelta(t, 80.0, s.AverageTicket, 0.001)
	assert.Equal(t, []Ranked{{ID: "c1", Name: "Ana", Count: 2, Revenue: 160}}, s.Clients)
	assert.Equal(t, []MonthCount{
		{Month: slots.Month{Year: 2026, Month: time.February}, Count: 1},
		{Month: slots.Month{Year: 2026, Month: time.March}, Count: 1},
	}, s.Monthly)
}

func TestBuild_MultiServiceTotals(t *testing.T) {
	combo := model.NewAppointment("combo", []model.Service{corte, coloracao}, juliana, ana, day(2026, time.March, 2, 10, 0))
	s := Build([]model.Appointment{combo, appt("a1", corte, fernanda, bia, day(2026, time.March, 3, 10, 0))}, PeriodAll, now)

	assert.Equal(t, 2, s.TotalAppointments)
	assert.InDelta(t, 220.0, s.Revenue, 0.001)
	assert.InDelta(t, 110.0, s.AverageTicket, 0.001)
	assert.Equal(t, []Ranked{
		{ID: "p2", Name: "Fernanda", Count: 1, Revenue: 60},
		{ID: "p1", Name: "Juliana", Count: 1, Revenue: 160},
	}, s.Professionals)
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, PeriodAll, now)

	assert.Zero(t, s.TotalAppointments)
	assert.Zero(t, s.AverageTicket)
	assert.Empty(t, s.Services)
	assert.NotNil(t, s.Monthly)
	assert.Empty(t, s.Monthly)
}

func TestVisitCount(t *testing.T) {
	appts := fixture()

	assert.Equal(t, 1, VisitCount(appts, "c1", day(2026, time.February, 20, 14, 0)))
	assert.Equal(t, 2, VisitCount(appts, "c1", day(2026, time.March, 1, 10, 0)))
	assert.Equal(t, 0, VisitCount(appts, "c1", day(2026, time.January, 1, 0, 0)))
	assert.Equal(t, 2, VisitCount(appts, "c2", day(2026, time.December, 1, 0, 0)))
	assert.Equal(t, 0, VisitCount(appts, "missing", now))
}

func TestListBirthdays(t *testing.T) {
	dani := model.Client{ID: "c4", Name: "Dani", Birthday: "05/01/2000"}
	eva := model.Client{ID: "c5", Name: "Eva"}

	b := ListBirthdays([]model.Client{ana, carla, bia, dani, eva}, time.March)

	assert.Equal(t, time.March, b.Current.Month)
	assert.Equal(t, "March", b.Current.Name)
	assert.Equal(t, []model.Client{bia, ana}, b.Current.Clients)

	require.Len(t, b.Next, 2)
	assert.Equal(t, time.July, b.Next[0].Month)
	assert.Equal(t, []model.Client{carla}, b.Next[0].Clients)
	assert.Equal(t, time.January, b.Next[1].Month, "months wrap around after December")
	assert.Equal(t, []model.Client{dani}, b.Next[1].Clients)
}

func TestListBirthdays_NoneThisMonth(t *testing.T) {
	b := ListBirthdays([]model.Client{carla}, time.December)

	assert.NotNil(t, b.Current.Clients)
	assert.Empty(t, b.Current.Clients)
	require.Len(t, b.Next, 1)
	assert.Equal(t, time.July, b.Next[0].Month)
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, day(2026, time.March, 8, 0, 0), WeekStart(day(2026, time.March, 11, 15, 30)))
	assert.Equal(t, day(2026, time.March, 8, 0, 0), WeekStart(day(2026, time.March, 8, 9, 0)))
	assert.Equal(t, day(2026, time.March, 8, 0, 0), WeekStart(day(2026, time.March, 14, 23, 0)))
}

func TestBuildWeek(t *testing.T) {
	appts := []model.Appointment{
		appt("mon10", corte, juliana, ana, day(2026, time.March, 9, 10, 0)),
		appt("mon1015", corte, juliana, bia, day(2026, time.March, 9, 10, 15)),
		appt("sat1830", corte, juliana, ana, day(2026, time.March, 14, 18, 30)),
		appt("late", corte, juliana, ana, day(2026, time.March, 10, 19, 0)),
		appt("early", corte, juliana, ana, day(2026, time.March, 10, 8, 30)),
		appt("nextweek", corte, juliana, ana, day(2026, time.March, 15, 10, 0)),
		appt("other", corte, fernanda, ana, day(2026, time.March, 9, 10, 0)),
		model.NewAppointment("combo", []model.Service{corte, coloracao}, juliana, ana, day(2026, time.March, 11, 14, 0)),
	}

	w := BuildWeek(appts, "p1", day(2026, time.March, 11, 12, 0), slots.FixedHours)

	assert.Equal(t, day(2026, time.March, 8, 0, 0), w.Start)
	require.Len(t, w.Days, 7)
	assert.Equal(t, "2026-03-08", w.Days[0].Date)
	assert.Equal(t, "2026-03-14", w.Days[6].Date)

	monday := w.Days[1].Slots
	require.Len(t, monday, 20)
	assert.Equal(t, "09:00", monday[0].Time)
	assert.Equal(t, "18:30", monday[19].Time)
	require.Len(t, monday[2].Appointments, 2)
	assert.Equal(t, "mon10", monday[2].Appointments[0].ID)
	assert.Equal(t, "mon1015", monday[2].Appointments[1].ID)

	require.Len(t, w.Days[6].Slots[19].Appointments, 1)
	assert.Equal(t, "sat1830", w.Days[6].Slots[19].Appointments[0].ID)

	require.Len(t, w.Outside, 2)
	assert.Equal(t, "late", w.Outside[0].ID)
	assert.Equal(t, "early", w.Outside[1].ID)

	assert.True(t, monday[2].Busy)
	assert.True(t, monday[3].Busy)
	assert.True(t, monday[4].Busy, "10:15 appointment runs into 11:00")
	assert.False(t, monday[5].Busy)

	wednesday := w.Days[3].Slots
	require.Len(t, wednesday[10].Appointments, 1)
	assert.Equal(t, "combo", wednesday[10].Appointments[0].ID)
	for r := 10; r < 16; r++ {
		assert.True(t, wednesday[r].Busy, "row %s", wednesday[r].Time)
	}
	assert.False(t, wednesday[16].Busy)
	assert.False(t, wednesday[9].Busy)

	total := 0
	for _, d := range w.Days {
		for _, s := range d.Slots {
			total += len(s.Appointments)
		}
	}
	assert.Equal(t, 4, total)
}

func TestWriteExcel(t *testing.T) {
	appts := Filter(fixture(), PeriodAll, now)
	s := Build(appts, PeriodAll, now)

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, s, appts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Services", "Professionals", "Clients", "Appointments"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "380", v)

	v, err = f.GetCellValue("Services", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Corte", v)

	rows, err := f.GetRows("Appointments")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Date", "Time", "Client", "Service", "Professional", "Duration", "Price"}, rows[0])
	assert.Equal(t, []string{"01/06/2025", "10:00", "Carla", "Coloração", "Juliana", "120", "100"}, rows[1])
}

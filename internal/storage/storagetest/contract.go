// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/model"
	"salonbook/internal/storage"
)

// Run exercises a storage.Store built by newStore. Each subtest gets a fresh,
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("services", func(t *testing.T) { testServices(t, newStore(t)) })
	t.Run("professionals", func(t *testing.T) { testProfessionals(t, newStore(t)) })
	t.Run("clients", func(t *testing.T) { testClients(t, newStore(t)) })
	t.Run("appointments", func(t *testing.T) { testAppointments(t, newStore(t)) })
	t.Run("settings", func(t *testing.T) { testSettings(t, newStore(t)) })
}

func testServices(t *testing.T, s storage.Store) {
	ctx := context.Background()

	corte := &model.Service{Name: "Corte Feminino", DurationMinutes: 60, Price: 120}
	require.NoError(t, s.SaveService(ctx, corte))
	require.NotEmpty(t, corte.ID)

	escova := &model.Service{ID: "2", Name: "Escova Progressiva", DurationMinutes: 180, Price: 350}
	require.NoError(t, s.SaveService(ctx, escova))

	list, err := s.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, corte.ID, list[0].ID)
	assert.Equal(t, "2", list[1].ID)

	corte.Price = 130
	require.NoError(t, s.SaveService(ctx, corte))
	got, err := s.GetService(ctx, corte.ID)
	require.NoError(t, err)
	assert.Equal(t, 130.0, got.Price)

	list, err = s.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.DeleteService(ctx, corte.ID))
	_, err = s.GetService(ctx, corte.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteService(ctx, corte.ID), storage.ErrNotFound)
}

func testProfessionals(t *testing.T, s storage.Store) {
	ctx := context.Background()

	p := &model.Professional{Name: "Juliana Alves", Specialties: []string{"1", "2"}}
	require.NoError(t, s.SaveProfessional(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.Equal(t, storage.AvatarURL(p.ID), p.AvatarURL)

	withAvatar := &model.Professional{Name: "Fernanda Lima", AvatarURL: "https://example.com/f.png"}
	require.NoError(t, s.SaveProfessional(ctx, withAvatar))
	assert.Equal(t, "https://example.com/f.png", withAvatar.AvatarURL)

	got, err := s.GetProfessional(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got.Specialties)

	// Returned values are snapshots.
	got.Specialties[0] = "9"
	again, err := s.GetProfessional(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", again.Specialties[0])

	list, err := s.ListProfessionals(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.DeleteProfessional(ctx, p.ID))
	_, err = s.GetProfessional(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testClients(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.GetClient(ctx, "c1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	c := &model.Client{ID: "c1", Name: "Ana Silva", Birthday: "15/03/1990", Email: "ana.silva@example.com"}
	require.NoError(t, s.SaveClient(ctx, c))

	got, err := s.GetClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, *c, *got)

	list, err := s.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteClient(ctx, "c1"))
	list, err = s.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testAppointments(t *testing.T, s storage.Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	svc := model.Service{ID: "1", Name: "Corte Feminino", DurationMinutes: 60, Price: 120}
	pro := model.Professional{ID: "p1", Name: "Juliana Alves", Specialties: []string{"1"}}
	ana := model.Client{ID: "c1", Name: "Ana Silva"}
	carla := model.Client{ID: "c2", Name: "Carla Dias"}

	add := func(id string, c model.Client, at time.Time) {
		t.Helper()
		a := &model.Appointment{ID: id, Service: svc, Professional: pro, Client: c, Date: at}
		require.NoError(t, s.AddAppointment(ctx, a))
	}
	add("late", ana, base.Add(15*time.Hour))
	add("early", ana, base.Add(9*time.Hour))
	add("other", carla, base.Add(11*time.Hour))

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"early", "other", "late"}, ids(list))
	assert.Equal(t, "Corte Feminino", list[0].Service.Name)
	assert.True(t, list[0].Date.Equal(base.Add(9*time.Hour)))

	byClient, err := s.ListByClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "early"}, ids(byClient))

	none, err := s.ListByClient(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	window, err := s.ListByProfessional(ctx, "p1", base.Add(10*time.Hour), base.Add(16*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "late"}, ids(window))

	generated := &model.Appointment{Service: svc, Professional: pro, Client: ana, Date: base}
	require.NoError(t, s.AddAppointment(ctx, generated))
	assert.NotEmpty(t, generated.ID)

	got, err := s.GetAppointment(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.Client.ID)

	escova := model.Service{ID: "5", Name: "Escova", DurationMinutes: 45, Price: 90}
	combo := model.NewAppointment("combo", []model.Service{svc, escova}, pro, carla, base.Add(17*time.Hour))
	require.NoError(t, s.AddAppointment(ctx, &combo))
	got, err = s.GetAppointment(ctx, "combo")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Service.ID)
	assert.Equal(t, 105, got.DurationMinutes)
	assert.InDelta(t, 210.0, got.Price, 0.001)
	assert.True(t, got.EndTime().Equal(base.Add(17*time.Hour+105*time.Minute)))
	require.NoError(t, s.DeleteAppointment(ctx, "combo"))

	require.NoError(t, s.DeleteAppointment(ctx, "other"))
	_, err = s.GetAppointment(ctx, "other")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAppointment(ctx, "other"), storage.ErrNotFound)
}

func testSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()

	st, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), st)

	st.OpeningTime = "08:00"
	st.ToggleWorkingDay(time.Saturday)
	require.NoError(t, s.SaveSettings(ctx, st))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:00", got.OpeningTime)
	assert.NotContains(t, got.WorkingDays, time.Saturday)
}

func ids(list []model.Appointment) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"salonbook/internal/model"
	"salonbook/internal/storage"
)

var appointmentColumns = []string{"id", "starts_at", "service", "professional", "client", "duration_minutes", "price"}

func (s *Store) scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var (
		a                             model.Appointment
		startsAt                      int64
		service, professional, client string
	)
	if err := row.Scan(&a.ID, &startsAt, &service, &professional, &client, &a.DurationMinutes, &a.Price); err != nil {
		return a, err
	}
	if err := json.Unmarshal([]byte(service), &a.Service); err != nil {
		return a, fmt.Errorf("decode service: %w", err)
	}
	if err := json.Unmarshal([]byte(professional), &a.Professional); err != nil {
		return a, fmt.Errorf("decode professional: %w", err)
	}
	if err := json.Unmarshal([]byte(client), &a.Client); err != nil {
		return a, fmt.Errorf("decode client: %w", err)
	}
	a.Date = time.Unix(startsAt, 0).In(s.loc)
	return a, nil
}

func (s *Store) queryAppointments(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]model.Appointment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBuildQuery, op, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := s.scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrScanRow, op, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.queryAppointments(ctx, "ListAppointments",
		squirrel.Select(appointmentColumns...).From("appointments").OrderBy("starts_at ASC", "rowid ASC"))
}

func (s *Store) ListByClient(ctx context.Context, clientID string) ([]model.Appointment, error) {
	return s.queryAppointments(ctx, "ListByClient",
		squirrel.Select(appointmentColumns...).
			From("appointments").
			Where(squirrel.Eq{"client_id": clientID}).
			OrderBy("starts_at DESC", "rowid ASC"))
}

// ListByProfessional returns a professional's appointments starting in [from, to).
func (s *Store) ListByProfessional(ctx context.Context, professionalID string, from, to time.Time) ([]model.Appointment, error) {
	return s.queryAppointments(ctx, "ListByProfessional",
		squirrel.Select(appointmentColumns...).
			From("appointments").
			Where(squirrel.Eq{"professional_id": professionalID}).
			Where(squirrel.GtOrEq{"starts_at": from.Unix()}).
			Where(squirrel.Lt{"starts_at": to.Unix()}).
			OrderBy("starts_at ASC"))
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	query, args, err := squirrel.Select(appointmentColumns...).From("appointments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAppointment: %v", ErrBuildQuery, err)
	}
	a, err := s.scanAppointment(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("appointment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAppointment: %v", ErrScanRow, err)
	}
	return &a, nil
}

func (s *Store) AddAppointment(ctx context.Context, a *model.Appointment) error {
	if a == nil {
		return storage.ErrInvalid
	}
	if a.ID == "" {
		a.ID = storage.NewID()
	}
	return insertAppointment(ctx, s.db, a)
}

func insertAppointment(ctx context.Context, ex executor, a *model.Appointment) error {
	service, err := json.Marshal(a.Service)
	if err != nil {
		return fmt.Errorf("encode service: %w", err)
	}
	professional, err := json.Marshal(a.Professional)
	if err != nil {
		return fmt.Errorf("encode professional: %w", err)
	}
	client, err := json.Marshal(a.Client)
	if err != nil {
		return fmt.Errorf("encode client: %w", err)
	}

	query, args, err := squirrel.Insert("appointments").
		Columns("id", "starts_at", "client_id", "professional_id", "service", "professional", "client", "duration_minutes", "price").
		Values(a.ID, a.Date.Unix(), a.Client.ID, a.Professional.ID, string(service), string(professional), string(client), a.DurationMinutes, a.Price).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddAppointment: %v", ErrBuildQuery, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddAppointment: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "appointments", "appointment", id)
}

// Settings

func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	query, args, err := squirrel.Select("opening_time", "closing_time", "working_days").
		From("settings").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return model.Settings{}, fmt.Errorf("%w: GetSettings: %v", ErrBuildQuery, err)
	}

	var (
		st   model.Settings
		days string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&st.OpeningTime, &st.ClosingTime, &days)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("%w: GetSettings: %v", ErrScanRow, err)
	}
	if err := json.Unmarshal([]byte(days), &st.WorkingDays); err != nil {
		return model.Settings{}, fmt.Errorf("decode working days: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st model.Settings) error {
	return saveSettings(ctx, s.db, st)
}

func saveSettings(ctx context.Context, ex executor, st model.Settings) error {
	days := st.WorkingDays
	if days == nil {
		days = []time.Weekday{}
	}
	encoded, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode working days: %w", err)
	}

	query, args, err := squirrel.Insert("settings").
		Columns("id", "opening_time", "closing_time", "working_days").
		Values(1, st.OpeningTime, st.ClosingTime, string(encoded)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			opening_time = excluded.opening_time,
			closing_time = excluded.closing_time,
			working_days = excluded.working_days`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveSettings: %v", ErrBuildQuery, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveSettings: %v", ErrExecQuery, err)
	}
	return nil
}

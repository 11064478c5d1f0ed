package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"salonbook/internal/model"
	"salonbook/internal/storage"
)

// Services

var serviceColumns = []string{"id", "name", "duration", "price", "description", "color"}

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var svc model.Service
	err := row.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.Description, &svc.Color)
	return svc, err
}

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	query, args, err := squirrel.Select(serviceColumns...).From("services").OrderBy("rowid").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices: %v", ErrBuildQuery, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListServices: %v", ErrScanRow, err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	query, args, err := squirrel.Select(serviceColumns...).From("services").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService: %v", ErrBuildQuery, err)
	}
	svc, err := scanService(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("service", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService: %v", ErrScanRow, err)
	}
	return &svc, nil
}

func (s *Store) SaveService(ctx context.Context, svc *model.Service) error {
	if svc == nil {
		return storage.ErrInvalid
	}
	if svc.ID == "" {
		svc.ID = storage.NewID()
	}
	return upsertService(ctx, s.db, svc)
}

func upsertService(ctx context.Context, ex executor, svc *model.Service) error {
	query, args, err := squirrel.Insert("services").
		Columns(serviceColumns...).
		Values(svc.ID, svc.Name, svc.DurationMinutes, svc.Price, svc.Description, svc.Color).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			duration = excluded.duration,
			price = excluded.price,
			description = excluded.description,
			color = excluded.color`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveService: %v", ErrBuildQuery, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveService: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "services", "service", id)
}

func (s *Store) deleteByID(ctx context.Context, table, kind, id string) error {
	query, args, err := squirrel.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrBuildQuery, kind, err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrExecQuery, kind, err)
	}
	return requireAffected(res, kind, id)
}

// Professionals

var professionalColumns = []string{"id", "name", "avatar_url", "specialties"}

func scanProfessional(row interface{ Scan(...any) error }) (model.Professional, error) {
	var (
		p           model.Professional
		specialties string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.AvatarURL, &specialties); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(specialties), &p.Specialties); err != nil {
		return p, fmt.Errorf("decode specialties: %w", err)
	}
	if p.Specialties == nil {
		p.Specialties = []string{}
	}
	return p, nil
}

func (s *Store) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	query, args, err := squirrel.Select(professionalColumns...).From("professionals").OrderBy("rowid").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListProfessionals: %v", ErrBuildQuery, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListProfessionals: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	out := []model.Professional{}
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListProfessionals: %v", ErrScanRow, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProfessional(ctx context.Context, id string) (*model.Professional, error) {
	query, args, err := squirrel.Select(professionalColumns...).From("professionals").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional: %v", ErrBuildQuery, err)
	}
	p, err := scanProfessional(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("professional", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional: %v", ErrScanRow, err)
	}
	return &p, nil
}

func (s *Store) SaveProfessional(ctx context.Context, p *model.Professional) error {
	if p == nil {
		return storage.ErrInvalid
	}
	storage.PrepareProfessional(p)
	return upsertProfessional(ctx, s.db, p)
}

func upsertProfessional(ctx context.Context, ex executor, p *model.Professional) error {
	specialties := p.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	encoded, err := json.Marshal(specialties)
	if err != nil {
		return fmt.Errorf("encode specialties: %w", err)
	}

	query, args, err := squirrel.Insert("professionals").
		Columns(professionalColumns...).
		Values(p.ID, p.Name, p.AvatarURL, string(encoded)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			specialties = excluded.specialties`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveProfessional: %v", ErrBuildQuery, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveProfessional: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) DeleteProfessional(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "professionals", "professional", id)
}

// Clients

var clientColumns = []string{"id", "name", "birthday", "whatsapp", "email"}

func scanClient(row interface{ Scan(...any) error }) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Name, &c.Birthday, &c.WhatsApp, &c.Email)
	return c, err
}

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	query, args, err := squirrel.Select(clientColumns...).From("clients").OrderBy("rowid").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListClients: %v", ErrBuildQuery, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListClients: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListClients: %v", ErrScanRow, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	query, args, err := squirrel.Select(clientColumns...).From("clients").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetClient: %v", ErrBuildQuery, err)
	}
	c, err := scanClient(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("client", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetClient: %v", ErrScanRow, err)
	}
	return &c, nil
}

func (s *Store) SaveClient(ctx context.Context, c *model.Client) error {
	if c == nil {
		return storage.ErrInvalid
	}
	if c.ID == "" {
		c.ID = storage.NewID()
	}
	return upsertClient(ctx, s.db, c)
}

func upsertClient(ctx context.Context, ex executor, c *model.Client) error {
	query, args, err := squirrel.Insert("clients").
		Columns(clientColumns...).
		Values(c.ID, c.Name, c.Birthday, c.WhatsApp, c.Email).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			birthday = excluded.birthday,
			whatsapp = excluded.whatsapp,
			email = excluded.email`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveClient: %v", ErrBuildQuery, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveClient: %v", ErrExecQuery, err)
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "clients", "client", id)
}

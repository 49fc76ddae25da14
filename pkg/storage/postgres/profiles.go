package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nordweb/portal/pkg/api"
)

const profileColumns = `id, email, full_name, company, phone, role, password_hash, created_at, updated_at`

func scanCredentials(row pgx.Row) (*api.Credentials, error) {
	var c api.Credentials
	var role string
	err := row.Scan(
		&c.Profile.ID, &c.Profile.Email, &c.Profile.FullName, &c.Profile.Company, &c.Profile.Phone,
		&role, &c.PasswordHash, &c.Profile.CreatedAt, &c.Profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Profile.Role = api.Role(role)
	c.Profile.CreatedAt = utc(c.Profile.CreatedAt)
	c.Profile.UpdatedAt = utc(c.Profile.UpdatedAt)
	return &c, nil
}

func (s *Store) CreateProfile(ctx context.Context, cred *api.Credentials) error {
	p := cred.Profile
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Email, p.FullName, p.Company, p.Phone, string(p.Role), cred.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapError(err, "inserting profile")
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*api.Profile, error) {
	c, err := s.GetCredentials(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c.Profile, nil
}

func (s *Store) GetCredentials(ctx context.Context, id string) (*api.Credentials, error) {
	c, err := scanCredentials(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "querying profile")
	}
	return c, nil
}

func (s *Store) GetCredentialsByEmail(ctx context.Context, email string) (*api.Credentials, error) {
	c, err := scanCredentials(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = $1`, api.NormalizeEmail(email)))
	if err != nil {
		return nil, mapError(err, "querying profile by email")
	}
	return c, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *api.Profile) error {
	return s.execOne(ctx, "updating profile", `
		UPDATE profiles
		SET full_name = $2, company = $3, phone = $4, role = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.FullName, p.Company, p.Phone, string(p.Role), p.UpdatedAt)
}

func (s *Store) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return s.execOne(ctx, "updating password",
		`UPDATE profiles SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (s *Store) ListProfiles(ctx context.Context) ([]*api.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError(err, "listing profiles")
	}
	creds, err := collect(rows, "profile", func(r pgx.Rows) (*api.Credentials, error) {
		return scanCredentials(r)
	})
	if err != nil {
		return nil, err
	}
	out := make([]*api.Profile, len(creds))
	for i, c := range creds {
		out[i] = &c.Profile
	}
	return out, nil
}

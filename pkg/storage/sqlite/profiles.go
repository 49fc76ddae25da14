package sqlite

import (
	"context"

	"github.com/nordweb/portal/pkg/api"
)

const profileColumns = `id, email, full_name, company, phone, role, password_hash, created_at, updated_at`

func scanCredentials(row scanner) (*api.Credentials, error) {
	var c api.Credentials
	var role, created, updated string
	err := row.Scan(
		&c.Profile.ID, &c.Profile.Email, &c.Profile.FullName, &c.Profile.Company, &c.Profile.Phone,
		&role, &c.PasswordHash, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	c.Profile.Role = api.Role(role)
	if c.Profile.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.Profile.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateProfile(ctx context.Context, cred *api.Credentials) error {
	p := cred.Profile
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Email, p.FullName, p.Company, p.Phone, string(p.Role), cred.PasswordHash,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
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
	c, err := scanCredentials(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		return nil, mapError(err, "querying profile")
	}
	return c, nil
}

func (s *Store) GetCredentialsByEmail(ctx context.Context, email string) (*api.Credentials, error) {
	c, err := scanCredentials(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = ?`, api.NormalizeEmail(email)))
	if err != nil {
		return nil, mapError(err, "querying profile by email")
	}
	return c, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *api.Profile) error {
	return s.execOne(ctx, "updating profile", `
		UPDATE profiles
		SET full_name = ?, company = ?, phone = ?, role = ?, updated_at = ?
		WHERE id = ?
	`, p.FullName, p.Company, p.Phone, string(p.Role), formatTime(p.UpdatedAt), p.ID)
}

func (s *Store) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return s.execOne(ctx, "updating password",
		`UPDATE profiles SET password_hash = ? WHERE id = ?`, hash, id)
}

func (s *Store) ListProfiles(ctx context.Context) ([]*api.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError(err, "listing profiles")
	}
	creds, err := collect(rows, "profile", scanCredentials)
	if err != nil {
		return nil, err
	}
	out := make([]*api.Profile, len(creds))
	for i, c := range creds {
		out[i] = &c.Profile
	}
	return out, nil
}

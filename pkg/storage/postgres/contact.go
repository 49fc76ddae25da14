package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nordweb/portal/pkg/api"
)

func (s *Store) CreateContactMessage(ctx context.Context, m *api.ContactMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_messages (
			id, name, email, phone, company, subject, message, remote_addr, delivered, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.Name, m.Email, m.Phone, m.Company, m.Subject, m.Message, m.RemoteAddr, m.Delivered, m.CreatedAt)
	if err != nil {
		return mapError(err, "inserting contact message")
	}
	return nil
}

func (s *Store) MarkContactDelivered(ctx context.Context, id string) error {
	return s.execOne(ctx, "marking contact message delivered",
		`UPDATE contact_messages SET delivered = TRUE WHERE id = $1`, id)
}

func (s *Store) ListContactMessages(ctx context.Context) ([]*api.ContactMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, phone, company, subject, message, remote_addr, delivered, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, mapError(err, "listing contact messages")
	}
	return collect(rows, "contact message", func(r pgx.Rows) (*api.ContactMessage, error) {
		var m api.ContactMessage
		err := r.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Company, &m.Subject,
			&m.Message, &m.RemoteAddr, &m.Delivered, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = utc(m.CreatedAt)
		return &m, nil
	})
}

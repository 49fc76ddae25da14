package sqlite

import (
	"context"

	"github.com/nordweb/portal/pkg/api"
)

func (s *Store) CreateContactMessage(ctx context.Context, m *api.ContactMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (
			id, name, email, phone, company, subject, message, remote_addr, delivered, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Email, m.Phone, m.Company, m.Subject, m.Message, m.RemoteAddr, m.Delivered, formatTime(m.CreatedAt))
	if err != nil {
		return mapError(err, "inserting contact message")
	}
	return nil
}

func (s *Store) MarkContactDelivered(ctx context.Context, id string) error {
	return s.execOne(ctx, "marking contact message delivered",
		`UPDATE contact_messages SET delivered = 1 WHERE id = ?`, id)
}

func (s *Store) ListContactMessages(ctx context.Context) ([]*api.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, subject, message, remote_addr, delivered, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, mapError(err, "listing contact messages")
	}
	return collect(rows, "contact message", func(r scanner) (*api.ContactMessage, error) {
		var m api.ContactMessage
		var created string
		err := r.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Company, &m.Subject,
			&m.Message, &m.RemoteAddr, &m.Delivered, &created)
		if err != nil {
			return nil, err
		}
		m.CreatedAt, err = parseTime(created)
		return &m, err
	})
}

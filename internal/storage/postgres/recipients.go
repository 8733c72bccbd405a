package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobcompass/internal/storage"
)

func (s *Store) ListWithCriteria(ctx context.Context) ([]storage.RecipientWithCriteria, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.chat_id, r.full_name, r.city, r.desired_position, r.skills, r.base_resume, r.created_at,
		        c.id, c.recipient_id, c.position, c.city, c.min_salary, c.remote, c.freshness_days, c.employment, c.experience
		 FROM recipients r
		 JOIN search_criteria c ON c.recipient_id = r.id
		 ORDER BY r.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query recipients with criteria: %w", err)
	}
	defer rows.Close()

	var result []storage.RecipientWithCriteria
	for rows.Next() {
		var rc storage.RecipientWithCriteria
		err := rows.Scan(
			&rc.Recipient.ID, &rc.Recipient.ChatID, &rc.Recipient.FullName, &rc.Recipient.City,
			&rc.Recipient.DesiredPosition, &rc.Recipient.Skills, &rc.Recipient.BaseResume, &rc.Recipient.CreatedAt,
			&rc.Criteria.ID, &rc.Criteria.RecipientID, &rc.Criteria.Position, &rc.Criteria.City,
			&rc.Criteria.MinSalary, &rc.Criteria.Remote, &rc.Criteria.FreshnessDays,
			&rc.Criteria.Employment, &rc.Criteria.Experience,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recipient with criteria: %w", err)
		}
		result = append(result, rc)
	}

	return result, rows.Err()
}

func (s *Store) GetByChatID(ctx context.Context, chatID string) (*storage.Recipient, error) {
	var r storage.Recipient
	err := s.pool.QueryRow(ctx,
		`SELECT id, chat_id, full_name, city, desired_position, skills, base_resume, created_at
		 FROM recipients WHERE chat_id = $1`,
		chatID,
	).Scan(&r.ID, &r.ChatID, &r.FullName, &r.City, &r.DesiredPosition, &r.Skills, &r.BaseResume, &r.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipient by chat id: %w", err)
	}

	return &r, nil
}

func (s *Store) CriteriaFor(ctx context.Context, recipientID int64) (*storage.SearchCriteria, error) {
	var c storage.SearchCriteria
	err := s.pool.QueryRow(ctx,
		`SELECT id, recipient_id, position, city, min_salary, remote, freshness_days, employment, experience
		 FROM search_criteria WHERE recipient_id = $1`,
		recipientID,
	).Scan(&c.ID, &c.RecipientID, &c.Position, &c.City, &c.MinSalary, &c.Remote, &c.FreshnessDays, &c.Employment, &c.Experience)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query search criteria: %w", err)
	}

	return &c, nil
}

func (s *Store) SaveProfile(ctx context.Context, r *storage.Recipient) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO recipients (chat_id, full_name, city, desired_position, skills, base_resume)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (chat_id) DO UPDATE
		 SET full_name = EXCLUDED.full_name,
		     city = EXCLUDED.city,
		     desired_position = EXCLUDED.desired_position,
		     skills = EXCLUDED.skills,
		     base_resume = EXCLUDED.base_resume
		 RETURNING id, created_at`,
		r.ChatID, r.FullName, r.City, r.DesiredPosition, r.Skills, r.BaseResume,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save recipient profile: %w", err)
	}

	return nil
}

func (s *Store) SaveCriteria(ctx context.Context, c *storage.SearchCriteria) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO search_criteria (recipient_id, position, city, min_salary, remote, freshness_days, employment, experience)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (recipient_id) DO UPDATE
		 SET position = EXCLUDED.position,
		     city = EXCLUDED.city,
		     min_salary = EXCLUDED.min_salary,
		     remote = EXCLUDED.remote,
		     freshness_days = EXCLUDED.freshness_days,
		     employment = EXCLUDED.employment,
		     experience = EXCLUDED.experience
		 RETURNING id`,
		c.RecipientID, c.Position, c.City, c.MinSalary, c.Remote, c.FreshnessDays, c.Employment, c.Experience,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("save search criteria: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/jackc/pgx/v5/pgtype"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		s.TokenHash, s.UserID, timestamptz(s.ExpiresAt), timestamptz(s.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) FindSession(ctx context.Context, userID, tokenHash string) (domain.Session, error) {
	var (
		s                    domain.Session
		expiresAt, createdAt pgtype.Timestamptz
	)
	err := r.q.QueryRow(ctx,
		`SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE user_id = $1 AND token_hash = $2`,
		userID, tokenHash,
	).Scan(&s.TokenHash, &s.UserID, &expiresAt, &createdAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.ExpiresAt = expiresAt.Time.UTC()
	s.CreatedAt = createdAt.Time.UTC()
	return s, nil
}

func (r *sessionsRepo) ConsumeSession(ctx context.Context, userID, tokenHash string, now time.Time) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND token_hash = $2 AND expires_at > $3`,
		userID, tokenHash, timestamptz(now),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, timestamptz(now))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledger/internal/directory/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveUser(ctx context.Context, u *models.User) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, role = EXCLUDED.role`,
		uuid.UUID(u.ID), u.Email, u.FullName, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveOrganization(ctx context.Context, o *models.Organization) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO organizations (id, owner_id, name, compliance_score, score_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, name = EXCLUDED.name`,
		uuid.UUID(o.ID), uuid.UUID(o.OwnerID), o.Name, o.ComplianceScore, o.ScoreUpdatedAt, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u    models.User
		uid  uuid.UUID
		role string
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, email, full_name, role, created_at FROM users WHERE id = $1`,
		uuid.UUID(userID),
	).Scan(&uid, &u.Email, &u.FullName, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Role = id.Role(role)
	return &u, nil
}

func (s *PostgresStore) FindOrganization(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	var (
		o          models.Organization
		oid, owner uuid.UUID
		scoredAt   sql.NullTime
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, owner_id, name, compliance_score, score_updated_at, created_at
		FROM organizations WHERE id = $1`,
		uuid.UUID(orgID),
	).Scan(&oid, &owner, &o.Name, &o.ComplianceScore, &scoredAt, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find organization: %w", err)
	}
	o.ID = id.OrganizationID(oid)
	o.OwnerID = id.UserID(owner)
	if scoredAt.Valid {
		t := scoredAt.Time
		o.ScoreUpdatedAt = &t
	}
	return &o, nil
}

func (s *PostgresStore) ListOrganizationIDs(ctx context.Context) ([]id.OrganizationID, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `SELECT id FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []id.OrganizationID
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		out = append(out, id.OrganizationID(u))
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetComplianceScore(ctx context.Context, orgID id.OrganizationID, score float64, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE organizations SET compliance_score = $2, score_updated_at = $3 WHERE id = $1`,
		uuid.UUID(orgID), score, at,
	)
	if err != nil {
		return fmt.Errorf("set compliance score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set compliance score: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

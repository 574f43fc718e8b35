package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ledger/internal/consent/models"
	"ledger/internal/platform/postgres"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/platform/tx"
)

const consentColumns = `id, user_id, organization_id, data_types, purpose, purpose_description,
	status, granted_at, expires_at, revoked_at, revoke_reason`

// PostgresStore persists consents in the consents table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, c *models.Consent) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO consents (`+consentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(c.ID), uuid.UUID(c.UserID), uuid.UUID(c.OrganizationID),
		pq.Array(dataTypeStrings(c.DataTypes)), string(c.Purpose), c.PurposeDescription,
		string(c.Status), c.GrantedAt, c.ExpiresAt, c.RevokedAt, c.RevokeReason,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, consentID id.ConsentID) (*models.Consent, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+consentColumns+` FROM consents WHERE id = $1`, uuid.UUID(consentID))
	c, err := scanConsent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find consent: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByUserAndOrganization(ctx context.Context, userID id.UserID, orgID id.OrganizationID) ([]*models.Consent, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+consentColumns+` FROM consents
		WHERE user_id = $1 AND organization_id = $2
		ORDER BY granted_at DESC, id`,
		uuid.UUID(userID), uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	return collectConsents(rows)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error) {
	return s.list(ctx, "user_id", uuid.UUID(userID), filter, page)
}

func (s *PostgresStore) ListByOrganization(ctx context.Context, orgID id.OrganizationID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error) {
	return s.list(ctx, "organization_id", uuid.UUID(orgID), filter, page)
}

func (s *PostgresStore) list(ctx context.Context, ownerColumn string, owner uuid.UUID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error) {
	where := []string{ownerColumn + " = $1"}
	args := []any{owner}
	if filter.Status != nil {
		switch *filter.Status {
		case models.StatusActive:
			args = append(args, filter.AsOf)
			where = append(where, fmt.Sprintf("status = 'active' AND (expires_at IS NULL OR expires_at > $%d)", len(args)))
		case models.StatusExpired:
			args = append(args, filter.AsOf)
			where = append(where, fmt.Sprintf("(status = 'expired' OR (status = 'active' AND expires_at <= $%d))", len(args)))
		default:
			where = append(where, "status = 'revoked'")
		}
	}
	clause := strings.Join(where, " AND ")
	exec := tx.Exec(ctx, s.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM consents WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count consents: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := exec.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM consents WHERE %s ORDER BY granted_at DESC, id LIMIT $%d OFFSET $%d`,
		consentColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list consents: %w", err)
	}
	consents, err := collectConsents(rows)
	if err != nil {
		return nil, 0, err
	}
	return consents, total, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, so the validate and
// mutate callbacks observe and change the same committed state.
func (s *PostgresStore) Execute(ctx context.Context, consentID id.ConsentID, validate func(*models.Consent) error, mutate func(*models.Consent)) (*models.Consent, error) {
	var result *models.Consent
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		exec := tx.Exec(txCtx, s.db)
		row := exec.QueryRowContext(txCtx,
			`SELECT `+consentColumns+` FROM consents WHERE id = $1 FOR UPDATE`, uuid.UUID(consentID))
		c, err := scanConsent(row)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock consent: %w", err)
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		if _, err := exec.ExecContext(txCtx, `
			UPDATE consents SET status = $2, expires_at = $3, revoked_at = $4, revoke_reason = $5
			WHERE id = $1`,
			uuid.UUID(c.ID), string(c.Status), c.ExpiresAt, c.RevokedAt, c.RevokeReason,
		); err != nil {
			return fmt.Errorf("update consent: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireDue is one conditional UPDATE, so concurrent sweeps never double count.
func (s *PostgresStore) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE consents SET status = 'expired'
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1`, asOf)
	if err != nil {
		return 0, fmt.Errorf("expire consents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire consents: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*models.Consent, error) {
	var (
		c                    models.Consent
		cid, uid, oid        uuid.UUID
		dataTypes            []string
		purpose, status      string
		expiresAt, revokedAt sql.NullTime
	)
	if err := row.Scan(&cid, &uid, &oid, pq.Array(&dataTypes), &purpose, &c.PurposeDescription,
		&status, &c.GrantedAt, &expiresAt, &revokedAt, &c.RevokeReason); err != nil {
		return nil, err
	}
	c.ID = id.ConsentID(cid)
	c.UserID = id.UserID(uid)
	c.OrganizationID = id.OrganizationID(oid)
	c.Purpose = id.Purpose(purpose)
	c.Status = models.Status(status)
	c.DataTypes = make([]id.DataType, len(dataTypes))
	for i, dt := range dataTypes {
		c.DataTypes[i] = id.DataType(dt)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return &c, nil
}

func collectConsents(rows *sql.Rows) ([]*models.Consent, error) {
	defer rows.Close()
	var out []*models.Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return out, nil
}

func dataTypeStrings(dts []id.DataType) []string {
	out := make([]string, len(dts))
	for i, dt := range dts {
		out[i] = string(dt)
	}
	return out
}

package violation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ledger/internal/compliance/models"
	"ledger/internal/platform/postgres"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/platform/tx"
)

const violationColumns = `id, organization_id, rule_id, access_event_id, severity, impact_score, status,
	description, detected_at, resolved_at, resolved_by, resolution_notes`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create relies on UNIQUE (rule_id, access_event_id): a concurrent or
// repeated scan inserts nothing and reports false.
func (s *PostgresStore) Create(ctx context.Context, v *models.Violation) (bool, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO compliance_violations (`+violationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (rule_id, access_event_id) DO NOTHING`,
		uuid.UUID(v.ID), uuid.UUID(v.OrganizationID), uuid.UUID(v.RuleID), nullEventID(v.AccessEventID),
		string(v.Severity), v.ImpactScore, string(v.Status), v.Description, v.DetectedAt,
		v.ResolvedAt, nullUserID(v.ResolvedBy), v.ResolutionNotes,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return false, sentinel.ErrConflict
		}
		return false, fmt.Errorf("create violation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create violation: %w", err)
	}
	return n == 1, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, violationID id.ViolationID) (*models.Violation, error) {
	v, err := scanViolation(tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+violationColumns+` FROM compliance_violations WHERE id = $1`, uuid.UUID(violationID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find violation: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context, orgID id.OrganizationID, filter models.ViolationFilter, page id.Page) ([]*models.Violation, int, error) {
	where := []string{"organization_id = $1"}
	args := []any{uuid.UUID(orgID)}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, string(*filter.Severity))
		where = append(where, fmt.Sprintf("severity = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")
	exec := tx.Exec(ctx, s.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM compliance_violations WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count violations: %w", err)
	}
	args = append(args, page.Limit(), page.Offset())
	rows, err := exec.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM compliance_violations WHERE %s ORDER BY detected_at DESC, id LIMIT $%d OFFSET $%d`,
		violationColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list violations: %w", err)
	}
	out, err := collectViolations(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresStore) ListUnresolved(ctx context.Context, orgID id.OrganizationID) ([]*models.Violation, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+violationColumns+` FROM compliance_violations
		WHERE organization_id = $1 AND status <> 'resolved'
		ORDER BY detected_at DESC, id`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list unresolved violations: %w", err)
	}
	return collectViolations(rows)
}

func (s *PostgresStore) Count(ctx context.Context, orgID id.OrganizationID) (int, error) {
	var n int
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM compliance_violations WHERE organization_id = $1`, uuid.UUID(orgID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count violations: %w", err)
	}
	return n, nil
}

// Execute locks the row for the duration of validate and mutate. Only the
// status and resolution columns are written back.
func (s *PostgresStore) Execute(ctx context.Context, violationID id.ViolationID, validate func(*models.Violation) error, mutate func(*models.Violation)) (*models.Violation, error) {
	var result *models.Violation
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		exec := tx.Exec(txCtx, s.db)
		v, err := scanViolation(exec.QueryRowContext(txCtx,
			`SELECT `+violationColumns+` FROM compliance_violations WHERE id = $1 FOR UPDATE`, uuid.UUID(violationID)))
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock violation: %w", err)
		}
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)
		if _, err := exec.ExecContext(txCtx, `
			UPDATE compliance_violations
			SET status = $2, resolved_at = $3, resolved_by = $4, resolution_notes = $5
			WHERE id = $1`,
			uuid.UUID(v.ID), string(v.Status), v.ResolvedAt, nullUserID(v.ResolvedBy), v.ResolutionNotes,
		); err != nil {
			return fmt.Errorf("update violation: %w", err)
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanViolation(row rowScanner) (*models.Violation, error) {
	var (
		v                   models.Violation
		vid, oid, rid       uuid.UUID
		eventID, resolvedBy uuid.NullUUID
		severity, status    string
		resolvedAt          sql.NullTime
	)
	if err := row.Scan(&vid, &oid, &rid, &eventID, &severity, &v.ImpactScore, &status,
		&v.Description, &v.DetectedAt, &resolvedAt, &resolvedBy, &v.ResolutionNotes); err != nil {
		return nil, err
	}
	v.ID = id.ViolationID(vid)
	v.OrganizationID = id.OrganizationID(oid)
	v.RuleID = id.RuleID(rid)
	v.Severity = models.Severity(severity)
	v.Status = models.ViolationStatus(status)
	if eventID.Valid {
		eid := id.AccessEventID(eventID.UUID)
		v.AccessEventID = &eid
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		v.ResolvedAt = &t
	}
	if resolvedBy.Valid {
		u := id.UserID(resolvedBy.UUID)
		v.ResolvedBy = &u
	}
	return &v, nil
}

func collectViolations(rows *sql.Rows) ([]*models.Violation, error) {
	defer rows.Close()
	out := make([]*models.Violation, 0)
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return out, nil
}

func nullEventID(eid *id.AccessEventID) uuid.NullUUID {
	if eid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*eid), Valid: true}
}

func nullUserID(uid *id.UserID) uuid.NullUUID {
	if uid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*uid), Valid: true}
}

package rule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/platform/tx"
)

const ruleColumns = `id, name, description, rule_type, severity, jurisdiction, active, created_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ensure inserts r unless its name is taken, then reads back whichever rule
// holds the name.
func (s *PostgresStore) Ensure(ctx context.Context, r *models.Rule) (*models.Rule, error) {
	exec := tx.Exec(ctx, s.db)
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO compliance_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO NOTHING`,
		uuid.UUID(r.ID), r.Name, r.Description, string(r.Type), string(r.Severity), r.Jurisdiction, r.Active, r.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("ensure rule: %w", err)
	}
	stored, err := scanRule(exec.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM compliance_rules WHERE name = $1`, r.Name))
	if err != nil {
		return nil, fmt.Errorf("read rule %s: %w", r.Name, err)
	}
	return stored, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ruleID id.RuleID) (*models.Rule, error) {
	r, err := scanRule(tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM compliance_rules WHERE id = $1`, uuid.UUID(ruleID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find rule: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*models.Rule, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM compliance_rules WHERE active ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()
	out := make([]*models.Rule, 0)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		r                  models.Rule
		rid                uuid.UUID
		ruleType, severity string
	)
	if err := row.Scan(&rid, &r.Name, &r.Description, &ruleType, &severity, &r.Jurisdiction, &r.Active, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ID = id.RuleID(rid)
	r.Type = models.RuleType(ruleType)
	r.Severity = models.Severity(severity)
	return &r, nil
}

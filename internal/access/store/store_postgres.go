package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ledger/internal/access/models"
	"ledger/internal/platform/postgres"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
	"ledger/pkg/platform/tx"
)

const eventColumns = `id, user_id, organization_id, consent_id, principal, data_type, action, purpose,
	client_ip, user_agent, agent_summary, authorized, occurred_at`

// PostgresStore persists access events in the access_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, e *models.AccessEvent) error {
	var consentID *uuid.UUID
	if e.ConsentID != nil {
		u := uuid.UUID(*e.ConsentID)
		consentID = &u
	}
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO access_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(e.ID), uuid.UUID(e.UserID), uuid.UUID(e.OrganizationID), consentID,
		e.Principal, string(e.DataType), string(e.Action), string(e.Purpose),
		e.ClientIP, e.UserAgent, e.AgentSummary, e.Authorized, e.OccurredAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save access event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, eventID id.AccessEventID) (*models.AccessEvent, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM access_events WHERE id = $1`, uuid.UUID(eventID))
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find access event: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error) {
	return s.list(ctx, "user_id", uuid.UUID(userID), r, page)
}

func (s *PostgresStore) ListByOrganization(ctx context.Context, orgID id.OrganizationID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error) {
	return s.list(ctx, "organization_id", uuid.UUID(orgID), r, page)
}

func (s *PostgresStore) list(ctx context.Context, ownerColumn string, owner uuid.UUID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error) {
	where := []string{ownerColumn + " = $1"}
	args := []any{owner}
	if r.From != nil {
		args = append(args, *r.From)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if r.To != nil {
		args = append(args, *r.To)
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")
	exec := tx.Exec(ctx, s.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_events WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count access events: %w", err)
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := exec.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM access_events WHERE %s ORDER BY occurred_at DESC, id LIMIT $%d OFFSET $%d`,
		eventColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list access events: %w", err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *PostgresStore) ListUnauthorized(ctx context.Context, filter models.UnauthorizedFilter, limit int) ([]*models.AccessEvent, error) {
	where := []string{"authorized = false"}
	var args []any
	if filter.OrganizationID != nil {
		args = append(args, uuid.UUID(*filter.OrganizationID))
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	query := `SELECT ` + eventColumns + ` FROM access_events WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY occurred_at DESC, id`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unauthorized access: %w", err)
	}
	return collectEvents(rows)
}

func (s *PostgresStore) ListByOrganizationSince(ctx context.Context, orgID id.OrganizationID, since time.Time) ([]*models.AccessEvent, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM access_events
		WHERE organization_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC, id`,
		uuid.UUID(orgID), since)
	if err != nil {
		return nil, fmt.Errorf("list access window: %w", err)
	}
	return collectEvents(rows)
}

func (s *PostgresStore) CountByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error) {
	var n int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_events WHERE organization_id = $1`, uuid.UUID(orgID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count access events: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountAuthorizedByOrganization(ctx context.Context, orgID id.OrganizationID) (int, error) {
	var n int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_events WHERE organization_id = $1 AND authorized`, uuid.UUID(orgID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count authorized access: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.AccessEvent, error) {
	var (
		e                       models.AccessEvent
		eid, uid, oid           uuid.UUID
		consentID               uuid.NullUUID
		dataType, action, purps string
	)
	if err := row.Scan(&eid, &uid, &oid, &consentID, &e.Principal, &dataType, &action, &purps,
		&e.ClientIP, &e.UserAgent, &e.AgentSummary, &e.Authorized, &e.OccurredAt); err != nil {
		return nil, err
	}
	e.ID = id.AccessEventID(eid)
	e.UserID = id.UserID(uid)
	e.OrganizationID = id.OrganizationID(oid)
	e.DataType = id.DataType(dataType)
	e.Action = id.Action(action)
	e.Purpose = id.Purpose(purps)
	if consentID.Valid {
		cid := id.ConsentID(consentID.UUID)
		e.ConsentID = &cid
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*models.AccessEvent, error) {
	defer rows.Close()
	out := make([]*models.AccessEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access events: %w", err)
	}
	return out, nil
}

// AngelaMos | 2026
// repository.go

package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

var errLeadNotFound = core.NotFoundError("lead")

const insertChunkSize = 500

type Repository interface {
	InsertBatch(ctx context.Context, uploadedBy, fileName string, rows []NewRow) (int, error)
	UnassignedIDs(ctx context.Context, managerID string, limit int) ([]string, error)
	Claim(ctx context.Context, leadID, managerID, telecallerID string, at time.Time) (bool, error)
	Reassign(ctx context.Context, leadID, managerID, telecallerID string, at time.Time) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	UpdateProgress(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id, managerID string) error
	DeleteMany(ctx context.Context, ids []string, managerID string) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// ListFilter narrows a lead listing. Zero values do not restrict.
type ListFilter struct {
	Scope        access.LeadScope
	Assignment   Assignment
	Status       Status
	FollowupFrom *time.Time
}

type repository struct {
	db core.TxDB
}

func NewRepository(db core.TxDB) Repository {
	return &repository{db: db}
}

const leadColumns = `
	l.id, l.seq, l.name, l.phone, l.uploaded_by, l.assigned_to, l.assigned_at,
	l.status, l.first_call_date, l.next_followup_date, l.notes, l.call_count,
	l.last_contacted_at, l.source_file_name, l.tvr_form_id, l.created_at,
	l.updated_at,
	a.first_name AS "assignee.first_name",
	a.last_name  AS "assignee.last_name",
	a.user_name  AS "assignee.user_name",
	u.first_name AS "uploader.first_name",
	u.last_name  AS "uploader.last_name",
	u.user_name  AS "uploader.user_name"`

const leadFrom = `
	FROM leads l
	LEFT JOIN users a ON a.id = l.assigned_to
	LEFT JOIN users u ON u.id = l.uploaded_by`

type leadInsert struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	Phone          string `db:"phone"`
	UploadedBy     string `db:"uploaded_by"`
	SourceFileName string `db:"source_file_name"`
}

// InsertBatch writes every row in one transaction, so the reported count is
// the persisted count.
func (r *repository) InsertBatch(
	ctx context.Context,
	uploadedBy, fileName string,
	rows []NewRow,
) (int, error) {
	query := `
		INSERT INTO leads (id, name, phone, uploaded_by, source_file_name)
		VALUES (:id, :name, :phone, :uploaded_by, :source_file_name)`

	inserted := 0
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += insertChunkSize {
			end := min(start+insertChunkSize, len(rows))

			batch := make([]leadInsert, 0, end-start)
			for _, row := range rows[start:end] {
				batch = append(batch, leadInsert{
					ID:             uuid.New().String(),
					Name:           row.Name,
					Phone:          row.Phone,
					UploadedBy:     uploadedBy,
					SourceFileName: fileName,
				})
			}

			result, err := tx.NamedExecContext(ctx, query, batch)
			if err != nil {
				return err
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert leads: %w", err)
	}

	return inserted, nil
}

func (r *repository) UnassignedIDs(
	ctx context.Context,
	managerID string,
	limit int,
) ([]string, error) {
	query := `
		SELECT id FROM leads
		WHERE uploaded_by = $1 AND assigned_to IS NULL
		ORDER BY seq
		LIMIT $2`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, managerID, limit); err != nil {
		return nil, fmt.Errorf("list unassigned leads: %w", err)
	}

	return ids, nil
}

// Claim assigns one lead only if it is still unassigned and owned by the
// manager. It reports whether this call won the lead.
func (r *repository) Claim(
	ctx context.Context,
	leadID, managerID, telecallerID string,
	at time.Time,
) (bool, error) {
	query := `
		UPDATE leads
		SET assigned_to = $3, assigned_at = $4, updated_at = NOW()
		WHERE id = $1 AND uploaded_by = $2 AND assigned_to IS NULL`

	result, err := r.db.ExecContext(ctx, query, leadID, managerID, telecallerID, at)
	if err != nil {
		return false, fmt.Errorf("claim lead: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim lead: %w", err)
	}

	return rows == 1, nil
}

func (r *repository) Reassign(
	ctx context.Context,
	leadID, managerID, telecallerID string,
	at time.Time,
) error {
	query := `
		UPDATE leads
		SET assigned_to = $3, assigned_at = $4, updated_at = NOW()
		WHERE id = $1 AND uploaded_by = $2`

	result, err := r.db.ExecContext(ctx, query, leadID, managerID, telecallerID, at)
	if err != nil {
		return fmt.Errorf("reassign lead: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign lead: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("reassign lead: %w", errLeadNotFound)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := "SELECT " + leadColumns + leadFrom + " WHERE l.id = $1"

	var lead Lead
	err := r.db.GetContext(ctx, &lead, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lead: %w", errLeadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	return &lead, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if !filter.Scope.All {
		if filter.Scope.UploadedBy != "" {
			conditions = append(conditions, fmt.Sprintf("l.uploaded_by = $%d", argIdx))
			args = append(args, filter.Scope.UploadedBy)
			argIdx++
		}
		if filter.Scope.AssignedTo != "" {
			conditions = append(conditions, fmt.Sprintf("l.assigned_to = $%d", argIdx))
			args = append(args, filter.Scope.AssignedTo)
			argIdx++
		}
		if len(conditions) == 0 {
			return []Lead{}, nil
		}
	}

	switch filter.Assignment {
	case AssignmentAssigned:
		conditions = append(conditions, "l.assigned_to IS NOT NULL")
	case AssignmentUnassigned:
		conditions = append(conditions, "l.assigned_to IS NULL")
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	order := "l.created_at DESC, l.seq DESC"
	if filter.FollowupFrom != nil {
		conditions = append(conditions, fmt.Sprintf("l.next_followup_date >= $%d", argIdx))
		args = append(args, *filter.FollowupFrom)
		order = "l.next_followup_date ASC, l.seq"
	}

	query := "SELECT " + leadColumns + leadFrom
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + order

	leads := []Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	return leads, nil
}

// UpdateProgress writes the call outcome fields. The assignee guard makes a
// concurrent reassignment win over a stale telecaller write.
func (r *repository) UpdateProgress(ctx context.Context, lead *Lead) error {
	query := `
		UPDATE leads
		SET status = $3, first_call_date = $4, next_followup_date = $5,
		    notes = $6, call_count = $7, last_contacted_at = $8,
		    updated_at = NOW()
		WHERE id = $1 AND assigned_to = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &lead.UpdatedAt, query,
		lead.ID,
		lead.AssignedToID(),
		lead.Status,
		lead.FirstCallDate,
		lead.NextFollowupDate,
		lead.Notes,
		lead.CallCount,
		lead.LastContactedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update lead: %w", errLeadNotFound)
	}
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id, managerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND uploaded_by = $2`,
		id, managerID,
	)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete lead: %w", errLeadNotFound)
	}

	return nil
}

// DeleteMany removes the subset of ids owned by the manager and skips the
// rest.
func (r *repository) DeleteMany(
	ctx context.Context,
	ids []string,
	managerID string,
) (int64, error) {
	query, args, err := sqlx.In(
		`DELETE FROM leads WHERE id IN (?) AND uploaded_by = ?`,
		ids,
		managerID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete leads: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete leads: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete leads: %w", err)
	}

	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM leads GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	counts := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// AngelaMos | 2026
// repository.go

package tvr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

var (
	errFormNotFound = core.NotFoundError("TVR form")
	errLeadNotFound = core.NotFoundError("lead")
	errFormExists   = core.NewAppError(
		core.ErrDuplicateKey,
		"a TVR form already exists for this lead",
		http.StatusConflict,
		"CONFLICT",
	)
)

// LeadGuard vets the owning lead inside the write transaction.
type LeadGuard func(lead LeadRef) error

type Repository interface {
	Create(ctx context.Context, form *Form, guard LeadGuard) error
	GetByID(ctx context.Context, id string) (*Form, error)
	List(ctx context.Context, scope access.LeadScope, params ListParams) ([]Form, int, error)
	Update(ctx context.Context, form *Form) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.TxDB
}

func NewRepository(db core.TxDB) Repository {
	return &repository{db: db}
}

const formFields = `
	customer_name, mobile_number, mother_name, spouse_name, education,
	personal_email, official_email, current_address, house_type,
	years_at_current_address, years_at_current_city, current_landmark,
	permanent_address, same_address, office_name, office_address,
	office_landmark, designation, current_company_exp, total_work_exp,
	senior_mobile, loan_amount, tenure, refs, existing_loans, credit_cards,
	ref_person_name, banking_password, payslip_password, aadhar_password,
	bt_docs_passwords`

const formColumns = `
	f.id, f.lead_id, f.customer_name, f.mobile_number, f.mother_name,
	f.spouse_name, f.education, f.personal_email, f.official_email,
	f.current_address, f.house_type, f.years_at_current_address,
	f.years_at_current_city, f.current_landmark, f.permanent_address,
	f.same_address, f.office_name, f.office_address, f.office_landmark,
	f.designation, f.current_company_exp, f.total_work_exp, f.senior_mobile,
	f.loan_amount, f.tenure, f.refs, f.existing_loans, f.credit_cards,
	f.ref_person_name, f.banking_password, f.payslip_password,
	f.aadhar_password, f.bt_docs_passwords, f.created_at, f.updated_at,
	l.name        AS "lead.name",
	l.phone       AS "lead.phone",
	l.uploaded_by AS "lead.uploaded_by",
	l.assigned_to AS "lead.assigned_to"`

const formFrom = `
	FROM tvr_forms f
	JOIN leads l ON l.id = f.lead_id`

func namedFields() string {
	names := strings.Split(formFields, ",")
	for i, n := range names {
		names[i] = ":" + strings.TrimSpace(n)
	}
	return strings.Join(names, ", ")
}

func setFields() string {
	names := strings.Split(formFields, ",")
	for i, n := range names {
		n = strings.TrimSpace(n)
		names[i] = n + " = :" + n
	}
	return strings.Join(names, ", ")
}

// Create inserts the form and links it from its lead in one transaction.
// The lead row is locked first so two creates for the same lead serialize.
func (r *repository) Create(ctx context.Context, form *Form, guard LeadGuard) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var lead struct {
			LeadRef
			TVRFormID *string `db:"tvr_form_id"`
		}
		err := tx.GetContext(ctx, &lead, `
			SELECT name, phone, uploaded_by, assigned_to, tvr_form_id
			FROM leads WHERE id = $1
			FOR UPDATE`, form.LeadID)
		if errors.Is(err, sql.ErrNoRows) {
			return errLeadNotFound
		}
		if err != nil {
			return err
		}

		if guard != nil {
			if err := guard(lead.LeadRef); err != nil {
				return err
			}
		}
		if lead.TVRFormID != nil {
			return errFormExists
		}

		form.ID = uuid.New().String()
		form.Lead = lead.LeadRef

		query, args, err := sqlx.Named(
			"INSERT INTO tvr_forms (id, lead_id, "+formFields+")"+
				" VALUES (:id, :lead_id, "+namedFields()+")"+
				" RETURNING created_at, updated_at",
			form,
		)
		if err != nil {
			return err
		}
		if err := tx.QueryRowxContext(ctx, tx.Rebind(query), args...).
			Scan(&form.CreatedAt, &form.UpdatedAt); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE leads SET tvr_form_id = $1, updated_at = NOW() WHERE id = $2`,
			form.ID, form.LeadID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("create TVR form: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Form, error) {
	query := "SELECT " + formColumns + formFrom + " WHERE f.id = $1"

	var form Form
	err := r.db.GetContext(ctx, &form, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get TVR form: %w", errFormNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get TVR form: %w", err)
	}

	return &form, nil
}

func scopeClause(scope access.LeadScope) (string, []any) {
	if scope.All {
		return "", nil
	}

	var conditions []string
	var args []any
	if scope.UploadedBy != "" {
		args = append(args, scope.UploadedBy)
		conditions = append(conditions, fmt.Sprintf("l.uploaded_by = $%d", len(args)))
	}
	if scope.AssignedTo != "" {
		args = append(args, scope.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("l.assigned_to = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return " WHERE FALSE", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *repository) List(
	ctx context.Context,
	scope access.LeadScope,
	params ListParams,
) ([]Form, int, error) {
	where, args := scopeClause(scope)

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*)"+formFrom+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count TVR forms: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s%s%s ORDER BY f.created_at DESC LIMIT $%d OFFSET $%d",
		formColumns, formFrom, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset())

	forms := []Form{}
	if err := r.db.SelectContext(ctx, &forms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list TVR forms: %w", err)
	}

	return forms, total, nil
}

// Update replaces every form field. The lead link is immutable.
func (r *repository) Update(ctx context.Context, form *Form) error {
	query, args, err := sqlx.Named(
		"UPDATE tvr_forms SET "+setFields()+", updated_at = NOW()"+
			" WHERE id = :id RETURNING updated_at",
		form,
	)
	if err != nil {
		return fmt.Errorf("update TVR form: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&form.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update TVR form: %w", errFormNotFound)
	}
	if err != nil {
		return fmt.Errorf("update TVR form: %w", err)
	}

	return nil
}

// Delete removes the form and clears its lead's back-reference together.
func (r *repository) Delete(ctx context.Context, id string) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var leadID string
		err := tx.GetContext(ctx, &leadID,
			`SELECT lead_id FROM tvr_forms WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errFormNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE leads SET tvr_form_id = NULL, updated_at = NOW() WHERE id = $1`,
			leadID,
		); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM tvr_forms WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete TVR form: %w", err)
	}

	return nil
}

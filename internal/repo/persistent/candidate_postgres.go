package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/postgres"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	candidatesTable = "candidates"

	// Columns
	idColumn                         = "id"
	tokenColumn                      = "token"
	clientNameColumn                 = "client_name"
	subClientNameColumn              = "sub_client_name"
	candidateNameColumn              = "candidate_name"
	employeeIDColumn                 = "employee_id"
	phoneNumberColumn                = "phone_number"
	alternatePhoneColumn             = "alternate_phone"
	addressColumn                    = "address"
	pincodeColumn                    = "pincode"
	areaNameColumn                   = "area_name"
	cityColumn                       = "city"
	stateColumn                      = "state"
	posStartDateColumn               = "pos_start_date"
	posEndDateColumn                 = "pos_end_date"
	residentTypeColumn               = "resident_type"
	relationshipWithRespondentColumn = "relationship_with_respondent"
	typeOfIDColumn                   = "type_of_id"
	statusColumn                     = "status"
	createdAtColumn                  = "created_at"
	submittedAtColumn                = "submitted_at"

	// rows per INSERT; 21 params each keeps us far below the 65535 bind limit
	insertChunkSize = 500
)

var detailColumns = []string{
	clientNameColumn,
	subClientNameColumn,
	candidateNameColumn,
	employeeIDColumn,
	phoneNumberColumn,
	alternatePhoneColumn,
	addressColumn,
	pincodeColumn,
	areaNameColumn,
	cityColumn,
	stateColumn,
	posStartDateColumn,
	posEndDateColumn,
	residentTypeColumn,
	relationshipWithRespondentColumn,
	typeOfIDColumn,
}

type CandidateRepo struct {
	*postgres.Postgres
}

func NewCandidateRepo(pg *postgres.Postgres) *CandidateRepo {
	return &CandidateRepo{pg}
}

func (r *CandidateRepo) CreateBatch(ctx context.Context, candidates []*entity.Candidate) error {
	executor := r.GetExecutor(ctx)

	for start := 0; start < len(candidates); start += insertChunkSize {
		end := min(start+insertChunkSize, len(candidates))

		builder := r.Builder.
			Insert(candidatesTable).
			Columns(append([]string{idColumn, tokenColumn}, append(detailColumns, statusColumn, createdAtColumn)...)...)

		for _, c := range candidates[start:end] {
			values := append([]any{c.ID, c.Token}, detailValues(c.Details)...)
			values = append(values, c.Status, c.CreatedAt)
			builder = builder.Values(values...)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("CandidateRepo - CreateBatch - r.Builder.ToSql: %w", err)
		}

		_, err = executor.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("CandidateRepo - CreateBatch - executor.Exec: %w", err)
		}
	}

	return nil
}

func (r *CandidateRepo) GetByToken(ctx context.Context, token string) (*entity.Candidate, error) {
	sql, args, err := r.selectCandidate().
		Where(squirrel.Eq{tokenColumn: token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CandidateRepo - GetByToken - r.Builder.ToSql: %w", err)
	}

	c, err := scanCandidate(r.GetExecutor(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("CandidateRepo - GetByToken: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("CandidateRepo - GetByToken - executor.QueryRow: %w", err)
	}

	return c, nil
}

func (r *CandidateRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error) {
	sql, args, err := r.selectCandidate().
		Where(squirrel.Eq{"c." + idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CandidateRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	c, err := scanCandidate(r.GetExecutor(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("CandidateRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("CandidateRepo - GetByID - executor.QueryRow: %w", err)
	}

	return c, nil
}

// List returns every candidate, most recently submitted first; never submitted
// records follow in import order.
func (r *CandidateRepo) List(ctx context.Context) ([]*entity.Candidate, error) {
	sql, args, err := r.selectCandidate().
		OrderBy(submittedAtColumn+" DESC NULLS LAST", "c."+createdAtColumn+" ASC", "c."+idColumn+" ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CandidateRepo - List - r.Builder.ToSql: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("CandidateRepo - List - executor.Query: %w", err)
	}
	defer rows.Close()

	candidates := make([]*entity.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("CandidateRepo - List - rows.Scan: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CandidateRepo - List - rows.Err: %w", err)
	}

	return candidates, nil
}

func (r *CandidateRepo) MarkSubmitted(
	ctx context.Context,
	token string,
	details entity.Details,
	submittedAt time.Time,
) (uuid.UUID, error) {
	set := make(map[string]any, len(detailColumns)+2)
	for i, v := range detailValues(details) {
		set[detailColumns[i]] = v
	}
	set[statusColumn] = entity.CandidateSubmitted
	set[submittedAtColumn] = submittedAt

	sql, args, err := r.Builder.
		Update(candidatesTable).
		SetMap(set).
		Where(squirrel.And{
			squirrel.Eq{tokenColumn: token},
			squirrel.Eq{statusColumn: entity.CandidatePending},
		}).
		Suffix("RETURNING " + idColumn).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var id uuid.UUID
	err = executor.QueryRow(ctx, sql, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted - executor.QueryRow: %w", err)
	}

	// nothing matched: unknown token or the transition already happened
	sql, args, err = r.Builder.
		Select(statusColumn).
		From(candidatesTable).
		Where(squirrel.Eq{tokenColumn: token}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted - r.Builder.ToSql: %w", err)
	}

	var status entity.CandidateStatus
	err = executor.QueryRow(ctx, sql, args...).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted: %w", errs.ErrRecordNotFound)
		}
		return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted - executor.QueryRow: %w", err)
	}

	return uuid.Nil, fmt.Errorf("CandidateRepo - MarkSubmitted: %w", errs.ErrAlreadySubmitted)
}

func (r *CandidateRepo) selectCandidate() squirrel.SelectBuilder {
	columns := []string{"c." + idColumn, tokenColumn}
	columns = append(columns, detailColumns...)
	columns = append(columns,
		statusColumn,
		"c."+createdAtColumn,
		submittedAtColumn,
		"(SELECT count(*) FROM "+photosTable+" p WHERE p."+photoCandidateIDColumn+" = c."+idColumn+")",
	)

	return r.Builder.Select(columns...).From(candidatesTable + " c")
}

func scanCandidate(row pgx.Row) (*entity.Candidate, error) {
	var c entity.Candidate

	err := row.Scan(
		&c.ID,
		&c.Token,
		&c.ClientName,
		&c.SubClientName,
		&c.CandidateName,
		&c.EmployeeID,
		&c.PhoneNumber,
		&c.AlternatePhone,
		&c.Address,
		&c.Pincode,
		&c.AreaName,
		&c.City,
		&c.State,
		&c.POSStartDate,
		&c.POSEndDate,
		&c.ResidentType,
		&c.RelationshipWithRespondent,
		&c.TypeOfID,
		&c.Status,
		&c.CreatedAt,
		&c.SubmittedAt,
		&c.PhotoCount,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// detailValues follows the order of detailColumns.
func detailValues(d entity.Details) []any {
	return []any{
		d.ClientName,
		d.SubClientName,
		d.CandidateName,
		d.EmployeeID,
		d.PhoneNumber,
		d.AlternatePhone,
		d.Address,
		d.Pincode,
		d.AreaName,
		d.City,
		d.State,
		d.POSStartDate,
		d.POSEndDate,
		d.ResidentType,
		d.RelationshipWithRespondent,
		d.TypeOfID,
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samSKIF/EmployeeRewards-sub009/survey"
)

// SurveyRepository implements survey.Repository on PostgreSQL.
type SurveyRepository struct {
	db *DB
}

// NewSurveyRepository creates the repository.
func NewSurveyRepository(db *DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

const surveyColumns = `
	id, organization_id, title, description, status, is_anonymous,
	is_mandatory, start_date, end_date, total_recipients, created_by,
	created_at, updated_at`

// CreateWithQuestions persists a survey and its questions in one
// transaction.
func (r *SurveyRepository) CreateWithQuestions(ctx context.Context, s *survey.Survey, questions []survey.Question) (*survey.Survey, error) {
	var created *survey.Survey
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
            INSERT INTO surveys (
                organization_id, title, description, status, is_anonymous,
                is_mandatory, start_date, end_date, total_recipients, created_by
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            RETURNING` + surveyColumns
		row := r.db.conn(txCtx).QueryRow(txCtx, query,
			s.OrganizationID, s.Title, s.Description, s.Status, s.IsAnonymous,
			s.IsMandatory, s.StartDate, s.EndDate, s.TotalRecipients, s.CreatedBy)

		stored, err := scanSurvey(row)
		if err != nil {
			return err
		}

		b := &pgx.Batch{}
		stmt := `
            INSERT INTO survey_questions (
                survey_id, question_text, question_type, is_required,
                options, question_order, branching_logic
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for _, q := range questions {
			b.Queue(stmt, stored.ID, q.Text, q.Type, q.IsRequired, q.Options, q.Order, q.BranchingLogic)
		}

		br := r.db.conn(txCtx).(pgx.Tx).SendBatch(txCtx, b)
		defer br.Close()
		for range questions {
			if _, err := br.Exec(); err != nil {
				return mapConstraintError(err, "survey question order values must be unique")
			}
		}
		if err := br.Close(); err != nil {
			return err
		}

		created = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the survey scoped to the organization, or nil when absent.
func (r *SurveyRepository) GetByID(ctx context.Context, organizationID, id int) (*survey.Survey, error) {
	query := `SELECT` + surveyColumns + ` FROM surveys WHERE organization_id = $1 AND id = $2`
	s, err := scanSurvey(r.db.conn(ctx).QueryRow(ctx, query, organizationID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// GetQuestions returns the survey's questions in question order.
func (r *SurveyRepository) GetQuestions(ctx context.Context, surveyID int) ([]survey.Question, error) {
	query := `
        SELECT id, survey_id, question_text, question_type, is_required,
               options, question_order, branching_logic
        FROM survey_questions
        WHERE survey_id = $1
        ORDER BY question_order ASC`
	rows, err := r.db.conn(ctx).Query(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query survey questions: %w", err)
	}
	defer rows.Close()

	var out []survey.Question
	for rows.Next() {
		var q survey.Question
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &q.IsRequired,
			&q.Options, &q.Order, &q.BranchingLogic); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Update persists the full updated survey and returns the stored row.
func (r *SurveyRepository) Update(ctx context.Context, s *survey.Survey) (*survey.Survey, error) {
	query := `
        UPDATE surveys SET
            title = $1, description = $2, status = $3, is_anonymous = $4,
            is_mandatory = $5, start_date = $6, end_date = $7,
            total_recipients = $8, updated_at = now()
        WHERE id = $9
        RETURNING` + surveyColumns
	row := r.db.conn(ctx).QueryRow(ctx, query,
		s.Title, s.Description, s.Status, s.IsAnonymous,
		s.IsMandatory, s.StartDate, s.EndDate, s.TotalRecipients, s.ID)

	updated, err := scanSurvey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("survey %d vanished during update", s.ID)
	}
	return updated, err
}

// Delete soft-deletes the survey.
func (r *SurveyRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.conn(ctx).Exec(ctx,
		`UPDATE surveys SET status = 'deleted', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("survey %d vanished during delete", id)
	}
	return nil
}

// CreateResponseWithAnswers persists a response and its answers in one
// transaction.
func (r *SurveyRepository) CreateResponseWithAnswers(ctx context.Context, resp *survey.Response, answers []survey.Answer) (*survey.Response, error) {
	var created *survey.Response
	err := r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
            INSERT INTO survey_responses (survey_id, user_id, completed_at, time_to_complete)
            VALUES ($1, $2, $3, $4)
            RETURNING id, survey_id, user_id, completed_at, time_to_complete`
		var stored survey.Response
		err := r.db.conn(txCtx).QueryRow(txCtx, query,
			resp.SurveyID, resp.UserID, resp.CompletedAt, resp.TimeToComplete).
			Scan(&stored.ID, &stored.SurveyID, &stored.UserID, &stored.CompletedAt, &stored.TimeToComplete)
		if err != nil {
			return mapConstraintError(err, fmt.Sprintf("a response to survey %d already exists for this user", resp.SurveyID))
		}

		b := &pgx.Batch{}
		stmt := `INSERT INTO survey_answers (response_id, question_id, answer_value) VALUES ($1, $2, $3)`
		for _, a := range answers {
			b.Queue(stmt, stored.ID, a.QuestionID, a.Value)
		}

		br := r.db.conn(txCtx).(pgx.Tx).SendBatch(txCtx, b)
		defer br.Close()
		for range answers {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}

		created = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUserResponse returns the user's response to a survey, or nil when the
// user has not responded.
func (r *SurveyRepository) GetUserResponse(ctx context.Context, surveyID, userID int) (*survey.Response, error) {
	query := `
        SELECT id, survey_id, user_id, completed_at, time_to_complete
        FROM survey_responses
        WHERE survey_id = $1 AND user_id = $2`
	var resp survey.Response
	err := r.db.conn(ctx).QueryRow(ctx, query, surveyID, userID).
		Scan(&resp.ID, &resp.SurveyID, &resp.UserID, &resp.CompletedAt, &resp.TimeToComplete)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user response: %w", err)
	}
	return &resp, nil
}

// CountResponses returns the number of responses submitted to a survey.
func (r *SurveyRepository) CountResponses(ctx context.Context, surveyID int) (int, error) {
	var count int
	err := r.db.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM survey_responses WHERE survey_id = $1`, surveyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}

func scanSurvey(row pgx.Row) (*survey.Survey, error) {
	var s survey.Survey
	err := row.Scan(
		&s.ID, &s.OrganizationID, &s.Title, &s.Description, &s.Status,
		&s.IsAnonymous, &s.IsMandatory, &s.StartDate, &s.EndDate,
		&s.TotalRecipients, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan survey row: %w", err)
	}
	return &s, nil
}

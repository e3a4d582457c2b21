package survey

import "context"

// Repository is the persistence seam of the survey slice. CreateWithQuestions
// and CreateResponseWithAnswers are atomic: either the whole aggregate is
// written or nothing is.
type Repository interface {
	// CreateWithQuestions persists a survey and its questions atomically and
	// returns the stored survey.
	CreateWithQuestions(ctx context.Context, s *Survey, questions []Question) (*Survey, error)
	// GetByID returns the survey scoped to the organization, or nil when
	// absent. Soft-deleted surveys are still returned; the service decides
	// their visibility.
	GetByID(ctx context.Context, organizationID, id int) (*Survey, error)
	// GetQuestions returns the survey's questions ordered by their order
	// field.
	GetQuestions(ctx context.Context, surveyID int) ([]Question, error)
	// Update persists the full updated survey and returns the stored row.
	Update(ctx context.Context, s *Survey) (*Survey, error)
	// Delete soft-deletes the survey (status set to deleted).
	Delete(ctx context.Context, id int) error
	// CreateResponseWithAnswers persists a response and its answers
	// atomically and returns the stored response.
	CreateResponseWithAnswers(ctx context.Context, r *Response, answers []Answer) (*Response, error)
	// GetUserResponse returns the user's response to a survey, or nil when
	// the user has not responded.
	GetUserResponse(ctx context.Context, surveyID, userID int) (*Response, error)
	// CountResponses returns the number of responses submitted to a survey.
	CountResponses(ctx context.Context, surveyID int) (int, error)
}

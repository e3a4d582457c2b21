package survey

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
	"github.com/samSKIF/EmployeeRewards-sub009/event"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
)

// Service enforces the survey authoring and response-submission rules.
// Events are published strictly after the corresponding persistence call
// succeeds; on any error path no event is published.
type Service struct {
	repo Repository
	bus  *eventbus.Bus
	now  func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the service clock, used by tests to pin the response
// validity window.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService constructs the survey domain service around an injected
// repository and the process-wide bus.
func NewService(repo Repository, bus *eventbus.Bus, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		bus:  bus,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a survey with its questions, then publishes
// survey.survey_created. New surveys always start as drafts.
func (s *Service) Create(ctx context.Context, in CreateInput, organizationID, createdBy int) (*Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	questions := make([]Question, len(in.Questions))
	for i, q := range in.Questions {
		questions[i] = Question{
			Text:           q.Text,
			Type:           q.Type,
			IsRequired:     q.IsRequired,
			Options:        q.Options,
			Order:          q.Order,
			BranchingLogic: q.BranchingLogic,
		}
	}

	created, err := s.repo.CreateWithQuestions(ctx, &Survey{
		OrganizationID:  organizationID,
		Title:           in.Title,
		Description:     in.Description,
		Status:          StatusDraft,
		IsAnonymous:     in.IsAnonymous,
		IsMandatory:     in.IsMandatory,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		TotalRecipients: in.TotalRecipients,
		CreatedBy:       createdBy,
	}, questions)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, Created{Survey: created, CreatedBy: createdBy})
	return created, nil
}

// Update edits a survey. Draft surveys accept any field change; published
// surveys only accept the transition to closed; closed and deleted surveys
// accept nothing. An update that changes nothing is an idempotent no-op.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput, organizationID, updatedBy int) (*Survey, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case StatusDraft:
		if in.Status != nil && *in.Status != StatusDraft {
			return nil, domainerr.StateTransitionError{
				Entity: "survey",
				From:   string(StatusDraft),
				To:     string(*in.Status),
				Reason: fmt.Sprintf("draft surveys cannot be moved to %q through update; use the dedicated operation", *in.Status),
			}
		}
	case StatusPublished:
		if !in.onlyClosesStatus() {
			return nil, domainerr.StateTransitionError{
				Entity: "survey",
				From:   string(StatusPublished),
				Reason: "cannot modify published surveys except to close them",
			}
		}
	default:
		return nil, domainerr.StateTransitionError{
			Entity: "survey",
			From:   string(current.Status),
			Reason: fmt.Sprintf("%s surveys cannot be modified", current.Status),
		}
	}

	next, changed := in.apply(current)
	if len(changed) == 0 {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, Updated{
		Survey:        updated,
		PreviousData:  current,
		UpdatedFields: changed,
		UpdatedBy:     updatedBy,
	})
	return updated, nil
}

// Publish transitions a draft survey with at least one question to
// published.
func (s *Service) Publish(ctx context.Context, id, organizationID, publishedBy int) (*Survey, error) {
	current, err := s.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusDraft {
		return nil, domainerr.StateTransitionError{
			Entity: "survey",
			From:   string(current.Status),
			To:     string(StatusPublished),
		}
	}

	questions, err := s.repo.GetQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load questions for survey %d: %w", id, err)
	}
	if len(questions) == 0 {
		return nil, domainerr.StateTransitionError{
			Entity: "survey",
			From:   string(StatusDraft),
			To:     string(StatusPublished),
			Reason: "survey cannot be published without questions",
		}
	}

	next := *current
	next.Status = StatusPublished
	published, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, Published{Survey: published, PublishedBy: publishedBy})
	return published, nil
}

// Delete soft-deletes a draft survey.
func (s *Service) Delete(ctx context.Context, id, organizationID, deletedBy int) error {
	current, err := s.load(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return domainerr.StateTransitionError{
			Entity: "survey",
			From:   string(current.Status),
			To:     string(StatusDeleted),
			Reason: "only draft surveys can be deleted",
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, organizationID, Deleted{SurveyID: id, Survey: current, DeletedBy: deletedBy})
	return nil
}

// SubmitResponse validates and persists a response. userID is nil for
// unauthenticated submissions; responses to anonymous surveys never store
// the user id even when one is known.
func (s *Service) SubmitResponse(ctx context.Context, in SubmitResponseInput, userID *int, organizationID int) (*Response, error) {
	srv, err := s.load(ctx, organizationID, in.SurveyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if srv.Status != StatusPublished {
		return nil, domainerr.NotAvailableError{Reason: fmt.Sprintf("survey %d is not accepting responses", srv.ID)}
	}
	if srv.StartDate != nil && now.Before(*srv.StartDate) {
		return nil, domainerr.NotAvailableError{Reason: fmt.Sprintf("survey %d has not started yet", srv.ID)}
	}
	if srv.EndDate != nil && now.After(*srv.EndDate) {
		return nil, domainerr.NotAvailableError{Reason: fmt.Sprintf("survey %d has already ended", srv.ID)}
	}

	if userID != nil && !srv.IsAnonymous {
		prev, err := s.repo.GetUserResponse(ctx, srv.ID, *userID)
		if err != nil {
			return nil, fmt.Errorf("check previous response: %w", err)
		}
		if prev != nil {
			return nil, domainerr.ConflictError{Reason: fmt.Sprintf("user %d has already responded to survey %d", *userID, srv.ID)}
		}
	}

	questions, err := s.repo.GetQuestions(ctx, srv.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions for survey %d: %w", srv.ID, err)
	}
	if err := validateAnswers(in.Answers, questions); err != nil {
		return nil, err
	}

	respondent := userID
	if srv.IsAnonymous {
		respondent = nil
	}
	answers := make([]Answer, len(in.Answers))
	for i, a := range in.Answers {
		answers[i] = Answer{QuestionID: a.QuestionID, Value: a.Value}
	}

	resp, err := s.repo.CreateResponseWithAnswers(ctx, &Response{
		SurveyID:       srv.ID,
		UserID:         respondent,
		CompletedAt:    now,
		TimeToComplete: in.TimeToComplete,
	}, answers)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, ResponseSubmitted{
		SurveyID:       srv.ID,
		ResponseID:     resp.ID,
		UserID:         respondent,
		IsAnonymous:    userID == nil || srv.IsAnonymous,
		TimeToComplete: in.TimeToComplete,
	})
	return resp, nil
}

// Get returns one survey scoped to the organization. Soft-deleted surveys
// are reported as not found.
func (s *Service) Get(ctx context.Context, organizationID, id int) (*Survey, error) {
	return s.load(ctx, organizationID, id)
}

// Questions returns a survey's questions.
func (s *Service) Questions(ctx context.Context, organizationID, id int) ([]Question, error) {
	if _, err := s.load(ctx, organizationID, id); err != nil {
		return nil, err
	}
	return s.repo.GetQuestions(ctx, id)
}

// load fetches a survey and hides soft-deleted rows behind NotFoundError.
func (s *Service) load(ctx context.Context, organizationID, id int) (*Survey, error) {
	srv, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("load survey %d: %w", id, err)
	}
	if srv == nil || srv.Status == StatusDeleted {
		return nil, domainerr.NotFoundError{Entity: "survey", ID: strconv.Itoa(id)}
	}
	return srv, nil
}

// publish fires the event after a successful persistence call. A publish
// failure never fails the caller: the business transaction is already
// complete.
func (s *Service) publish(ctx context.Context, organizationID int, payload event.Payload) {
	evt, err := event.New(event.OrgID(organizationID), payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to construct domain event", "error", err)
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish domain event",
			"eventID", evt.ID,
			"eventType", evt.Type,
			"error", err)
	}
}

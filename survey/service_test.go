package survey_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
	"github.com/samSKIF/EmployeeRewards-sub009/event"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
	"github.com/samSKIF/EmployeeRewards-sub009/survey"
	"github.com/samSKIF/EmployeeRewards-sub009/testutil"
)

// fakeRepo satisfies survey.Repository through overridable function fields.
type fakeRepo struct {
	createFn          func(ctx context.Context, s *survey.Survey, questions []survey.Question) (*survey.Survey, error)
	getByIDFn         func(ctx context.Context, organizationID, id int) (*survey.Survey, error)
	getQuestionsFn    func(ctx context.Context, surveyID int) ([]survey.Question, error)
	updateFn          func(ctx context.Context, s *survey.Survey) (*survey.Survey, error)
	deleteFn          func(ctx context.Context, id int) error
	createResponseFn  func(ctx context.Context, r *survey.Response, answers []survey.Answer) (*survey.Response, error)
	getUserResponseFn func(ctx context.Context, surveyID, userID int) (*survey.Response, error)
	countResponsesFn  func(ctx context.Context, surveyID int) (int, error)

	updateCalls int
}

func (r *fakeRepo) CreateWithQuestions(ctx context.Context, s *survey.Survey, questions []survey.Question) (*survey.Survey, error) {
	return r.createFn(ctx, s, questions)
}

func (r *fakeRepo) GetByID(ctx context.Context, organizationID, id int) (*survey.Survey, error) {
	return r.getByIDFn(ctx, organizationID, id)
}

func (r *fakeRepo) GetQuestions(ctx context.Context, surveyID int) ([]survey.Question, error) {
	if r.getQuestionsFn == nil {
		return nil, nil
	}
	return r.getQuestionsFn(ctx, surveyID)
}

func (r *fakeRepo) Update(ctx context.Context, s *survey.Survey) (*survey.Survey, error) {
	r.updateCalls++
	return r.updateFn(ctx, s)
}

func (r *fakeRepo) Delete(ctx context.Context, id int) error {
	return r.deleteFn(ctx, id)
}

func (r *fakeRepo) CreateResponseWithAnswers(ctx context.Context, resp *survey.Response, answers []survey.Answer) (*survey.Response, error) {
	return r.createResponseFn(ctx, resp, answers)
}

func (r *fakeRepo) GetUserResponse(ctx context.Context, surveyID, userID int) (*survey.Response, error) {
	if r.getUserResponseFn == nil {
		return nil, nil
	}
	return r.getUserResponseFn(ctx, surveyID, userID)
}

func (r *fakeRepo) CountResponses(ctx context.Context, surveyID int) (int, error) {
	if r.countResponsesFn == nil {
		return 0, nil
	}
	return r.countResponsesFn(ctx, surveyID)
}

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func storedSurvey(status survey.Status) *survey.Survey {
	return &survey.Survey{
		ID:             5,
		OrganizationID: 1,
		Title:          "Quarterly pulse",
		Status:         status,
		CreatedBy:      99,
	}
}

func storedQuestions() []survey.Question {
	return []survey.Question{
		{ID: 21, SurveyID: 5, Text: "How satisfied are you?", Type: survey.QuestionRating, IsRequired: true, Order: 1},
		{ID: 22, SurveyID: 5, Text: "Anything to add?", Type: survey.QuestionLongText, Order: 2},
	}
}

type SurveyServiceSuite struct {
	suite.Suite
	ctx      context.Context
	bus      *eventbus.Bus
	repo     *fakeRepo
	recorder *testutil.Recorder
	service  *survey.Service
}

func TestSurveyServiceSuite(t *testing.T) {
	suite.Run(t, new(SurveyServiceSuite))
}

func (s *SurveyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = eventbus.New()
	s.repo = &fakeRepo{}
	s.recorder = testutil.NewRecorder()
	s.service = survey.NewService(s.repo, s.bus, survey.WithClock(fixedClock))

	for _, eventType := range []string{
		event.TypeSurveyCreated,
		event.TypeSurveyUpdated,
		event.TypeSurveyPublished,
		event.TypeSurveyDeleted,
		event.TypeSurveyResponseSubmitted,
		event.TypeSurveyAnalyticsGenerated,
	} {
		_, err := s.bus.Subscribe(eventType, s.recorder.Handle, "test-recorder", eventbus.WithPriority(100))
		s.Require().NoError(err)
	}
}

func (s *SurveyServiceSuite) createInput() survey.CreateInput {
	return survey.CreateInput{
		Title: "Quarterly pulse",
		Questions: []survey.QuestionInput{
			{Text: "How satisfied are you?", Type: survey.QuestionRating, IsRequired: true, Order: 1},
		},
	}
}

func (s *SurveyServiceSuite) TestCreate_AlwaysStartsAsDraft() {
	// GIVEN
	s.repo.createFn = func(_ context.Context, srv *survey.Survey, questions []survey.Question) (*survey.Survey, error) {
		s.Equal(survey.StatusDraft, srv.Status)
		s.Len(questions, 1)
		out := *srv
		out.ID = 5
		return &out, nil
	}

	// WHEN
	created, err := s.service.Create(s.ctx, s.createInput(), 1, 99)

	// THEN
	s.Require().NoError(err)
	s.Equal(survey.StatusDraft, created.Status)
	s.Len(s.recorder.EventsOfType(event.TypeSurveyCreated), 1)
}

func (s *SurveyServiceSuite) TestCreate_RejectsDuplicateQuestionOrder() {
	in := s.createInput()
	in.Questions = append(in.Questions, survey.QuestionInput{
		Text: "Second question", Type: survey.QuestionYesNo, Order: 1,
	})

	_, err := s.service.Create(s.ctx, in, 1, 99)

	s.Require().ErrorAs(err, &domainerr.ValidationError{})
	s.Empty(s.recorder.Events())
}

func (s *SurveyServiceSuite) TestCreate_RejectsEndDateBeforeStartDate() {
	in := s.createInput()
	start := fixedNow
	end := fixedNow.Add(-time.Hour)
	in.StartDate = &start
	in.EndDate = &end

	_, err := s.service.Create(s.ctx, in, 1, 99)

	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("end_date", verr.Field)
}

func (s *SurveyServiceSuite) TestUpdate_DraftAcceptsFieldChanges() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}
	s.repo.updateFn = func(_ context.Context, srv *survey.Survey) (*survey.Survey, error) {
		out := *srv
		return &out, nil
	}
	newTitle := "Annual pulse"

	updated, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Title: &newTitle}, 1, 99)

	s.Require().NoError(err)
	s.Equal("Annual pulse", updated.Title)
	events := s.recorder.EventsOfType(event.TypeSurveyUpdated)
	s.Require().Len(events, 1)
	s.Equal([]string{"title"}, events[0].Data.(survey.Updated).UpdatedFields)
}

func (s *SurveyServiceSuite) TestUpdate_NoChangeIsIdempotentNoOp() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}
	sameTitle := "Quarterly pulse"

	updated, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Title: &sameTitle}, 1, 99)

	s.Require().NoError(err)
	s.Equal(5, updated.ID)
	s.Zero(s.repo.updateCalls)
	s.Empty(s.recorder.Events())
}

func (s *SurveyServiceSuite) TestUpdate_DraftCannotBePublishedThroughUpdate() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}
	published := survey.StatusPublished

	_, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Status: &published}, 1, 99)

	s.ErrorAs(err, &domainerr.StateTransitionError{})
}

func (s *SurveyServiceSuite) TestUpdate_PublishedOnlyAcceptsClose() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusPublished), nil
	}
	newTitle := "Renamed"

	// WHEN editing a field on a published survey
	_, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Title: &newTitle}, 1, 99)

	// THEN
	var terr domainerr.StateTransitionError
	s.Require().ErrorAs(err, &terr)
	s.Equal("cannot modify published surveys except to close them", terr.Error())

	// WHEN closing it
	s.repo.updateFn = func(_ context.Context, srv *survey.Survey) (*survey.Survey, error) {
		out := *srv
		return &out, nil
	}
	closed := survey.StatusClosed
	updated, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Status: &closed}, 1, 99)

	// THEN
	s.Require().NoError(err)
	s.Equal(survey.StatusClosed, updated.Status)
}

func (s *SurveyServiceSuite) TestUpdate_ClosedAcceptsNothing() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusClosed), nil
	}
	newTitle := "Renamed"

	_, err := s.service.Update(s.ctx, 5, survey.UpdateInput{Title: &newTitle}, 1, 99)
	s.ErrorAs(err, &domainerr.StateTransitionError{})
}

func (s *SurveyServiceSuite) TestPublish_RequiresDraftWithQuestions() {
	// GIVEN a draft without questions
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}

	// WHEN
	_, err := s.service.Publish(s.ctx, 5, 1, 99)

	// THEN
	var terr domainerr.StateTransitionError
	s.Require().ErrorAs(err, &terr)
	s.Equal("survey cannot be published without questions", terr.Error())
	s.Empty(s.recorder.Events())
}

func (s *SurveyServiceSuite) TestPublish_TransitionsDraftToPublished() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}
	s.repo.getQuestionsFn = func(context.Context, int) ([]survey.Question, error) {
		return storedQuestions(), nil
	}
	s.repo.updateFn = func(_ context.Context, srv *survey.Survey) (*survey.Survey, error) {
		out := *srv
		return &out, nil
	}

	published, err := s.service.Publish(s.ctx, 5, 1, 99)

	s.Require().NoError(err)
	s.Equal(survey.StatusPublished, published.Status)
	s.Len(s.recorder.EventsOfType(event.TypeSurveyPublished), 1)
}

func (s *SurveyServiceSuite) TestPublish_RejectsNonDraft() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusClosed), nil
	}

	_, err := s.service.Publish(s.ctx, 5, 1, 99)
	s.ErrorAs(err, &domainerr.StateTransitionError{})
}

func (s *SurveyServiceSuite) TestDelete_OnlyDrafts() {
	// GIVEN a published survey
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusPublished), nil
	}

	// WHEN / THEN
	var terr domainerr.StateTransitionError
	s.Require().ErrorAs(s.service.Delete(s.ctx, 5, 1, 99), &terr)
	s.Equal("only draft surveys can be deleted", terr.Error())

	// GIVEN a draft
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}
	s.repo.deleteFn = func(context.Context, int) error { return nil }

	// WHEN / THEN
	s.Require().NoError(s.service.Delete(s.ctx, 5, 1, 99))
	s.Len(s.recorder.EventsOfType(event.TypeSurveyDeleted), 1)
}

func (s *SurveyServiceSuite) TestGet_DeletedSurveyIsNotFound() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDeleted), nil
	}

	_, err := s.service.Get(s.ctx, 1, 5)
	s.ErrorAs(err, &domainerr.NotFoundError{})
}

func (s *SurveyServiceSuite) publishedSurvey() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusPublished), nil
	}
	s.repo.getQuestionsFn = func(context.Context, int) ([]survey.Question, error) {
		return storedQuestions(), nil
	}
	s.repo.createResponseFn = func(_ context.Context, resp *survey.Response, _ []survey.Answer) (*survey.Response, error) {
		out := *resp
		out.ID = 31
		return &out, nil
	}
}

func answersFor(all bool) []survey.AnswerInput {
	answers := []survey.AnswerInput{
		{QuestionID: 21, Value: json.RawMessage(`4`)},
	}
	if all {
		answers = append(answers, survey.AnswerInput{QuestionID: 22, Value: json.RawMessage(`"more coffee"`)})
	}
	return answers
}

func (s *SurveyServiceSuite) TestSubmitResponse_PersistsThenPublishes() {
	// GIVEN
	s.publishedSurvey()
	userID := 7

	// WHEN
	resp, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{
		SurveyID:       5,
		Answers:        answersFor(true),
		TimeToComplete: 42,
	}, &userID, 1)

	// THEN
	s.Require().NoError(err)
	s.Equal(31, resp.ID)
	s.Require().NotNil(resp.UserID)
	s.Equal(7, *resp.UserID)

	events := s.recorder.EventsOfType(event.TypeSurveyResponseSubmitted)
	s.Require().Len(events, 1)
	payload := events[0].Data.(survey.ResponseSubmitted)
	s.False(payload.IsAnonymous)
	s.Equal(42, payload.TimeToComplete)
}

func (s *SurveyServiceSuite) TestSubmitResponse_RejectsUnpublishedSurvey() {
	s.repo.getByIDFn = func(context.Context, int, int) (*survey.Survey, error) {
		return storedSurvey(survey.StatusDraft), nil
	}

	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(false)}, nil, 1)
	s.ErrorAs(err, &domainerr.NotAvailableError{})
}

func (s *SurveyServiceSuite) TestSubmitResponse_EnforcesValidityWindow() {
	// GIVEN a published survey whose window is in the future
	s.publishedSurvey()
	base := s.repo.getByIDFn
	start := fixedNow.Add(24 * time.Hour)
	s.repo.getByIDFn = func(ctx context.Context, organizationID, id int) (*survey.Survey, error) {
		srv, err := base(ctx, organizationID, id)
		if err != nil {
			return nil, err
		}
		srv.StartDate = &start
		return srv, nil
	}

	// WHEN / THEN
	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(false)}, nil, 1)
	s.ErrorAs(err, &domainerr.NotAvailableError{})

	// GIVEN a window that already closed
	end := fixedNow.Add(-24 * time.Hour)
	s.repo.getByIDFn = func(ctx context.Context, organizationID, id int) (*survey.Survey, error) {
		srv, err := base(ctx, organizationID, id)
		if err != nil {
			return nil, err
		}
		srv.EndDate = &end
		return srv, nil
	}

	// WHEN / THEN
	_, err = s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(false)}, nil, 1)
	s.ErrorAs(err, &domainerr.NotAvailableError{})
}

func (s *SurveyServiceSuite) TestSubmitResponse_DuplicateByKnownUserIsConflict() {
	s.publishedSurvey()
	s.repo.getUserResponseFn = func(context.Context, int, int) (*survey.Response, error) {
		return &survey.Response{ID: 30, SurveyID: 5}, nil
	}
	userID := 7

	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(true)}, &userID, 1)
	s.ErrorAs(err, &domainerr.ConflictError{})
	s.Empty(s.recorder.Events())
}

func (s *SurveyServiceSuite) TestSubmitResponse_AnonymousSurveySkipsDuplicateCheckAndDropsUserID() {
	// GIVEN an anonymous published survey and a known user who already responded
	s.publishedSurvey()
	base := s.repo.getByIDFn
	s.repo.getByIDFn = func(ctx context.Context, organizationID, id int) (*survey.Survey, error) {
		srv, err := base(ctx, organizationID, id)
		if err != nil {
			return nil, err
		}
		srv.IsAnonymous = true
		return srv, nil
	}
	s.repo.getUserResponseFn = func(context.Context, int, int) (*survey.Response, error) {
		s.Fail("the duplicate check must not run for anonymous surveys")
		return nil, nil
	}
	userID := 7

	// WHEN
	resp, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(true)}, &userID, 1)

	// THEN the stored response and the event carry no user id
	s.Require().NoError(err)
	s.Nil(resp.UserID)

	events := s.recorder.EventsOfType(event.TypeSurveyResponseSubmitted)
	s.Require().Len(events, 1)
	payload := events[0].Data.(survey.ResponseSubmitted)
	s.Nil(payload.UserID)
	s.True(payload.IsAnonymous)
}

func (s *SurveyServiceSuite) TestSubmitResponse_MissingRequiredAnswerNamesTheQuestion() {
	s.publishedSurvey()

	// WHEN answering only the optional question
	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{
		SurveyID: 5,
		Answers:  []survey.AnswerInput{{QuestionID: 22, Value: json.RawMessage(`"hi"`)}},
	}, nil, 1)

	// THEN the error points at the unanswered required question
	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Reason, "question 21")
	s.Contains(verr.Reason, "How satisfied are you?")
}

func (s *SurveyServiceSuite) TestSubmitResponse_EmptyRequiredAnswerIsRejected() {
	s.publishedSurvey()

	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{
		SurveyID: 5,
		Answers:  []survey.AnswerInput{{QuestionID: 21, Value: json.RawMessage(`null`)}},
	}, nil, 1)

	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Reason, "empty answer")
}

func (s *SurveyServiceSuite) TestSubmitResponse_ForeignQuestionIsRejected() {
	s.publishedSurvey()

	answers := answersFor(true)
	answers = append(answers, survey.AnswerInput{QuestionID: 999, Value: json.RawMessage(`1`)})
	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answers}, nil, 1)

	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Reason, "does not belong to this survey")
}

func (s *SurveyServiceSuite) TestAnalyticsHandler_RepublishesCountAfterSubmission() {
	// GIVEN the analytics handler wired the way the application wires it
	handlers := survey.NewHandlers(s.bus, s.repo)
	s.Require().NoError(handlers.Initialize())
	defer handlers.Cleanup()

	s.publishedSurvey()
	s.repo.countResponsesFn = func(context.Context, int) (int, error) { return 12, nil }

	// WHEN
	_, err := s.service.SubmitResponse(s.ctx, survey.SubmitResponseInput{SurveyID: 5, Answers: answersFor(true)}, nil, 1)
	s.Require().NoError(err)

	// THEN
	events := s.recorder.EventsOfType(event.TypeSurveyAnalyticsGenerated)
	s.Require().Len(events, 1)
	payload := events[0].Data.(survey.AnalyticsGenerated)
	s.Equal(5, payload.SurveyID)
	s.Equal(12, payload.ResponseCount)
}

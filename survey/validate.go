package survey

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
)

const maxTitleLength = 200

// QuestionInput is the authoring shape for one question.
type QuestionInput struct {
	Text           string          `json:"question_text"`
	Type           QuestionType    `json:"question_type"`
	IsRequired     bool            `json:"is_required"`
	Options        []string        `json:"options,omitempty"`
	Order          int             `json:"order"`
	BranchingLogic json.RawMessage `json:"branching_logic,omitempty"`
}

// CreateInput is the validated shape for creating a survey with its
// questions.
type CreateInput struct {
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	IsAnonymous     bool            `json:"is_anonymous"`
	IsMandatory     bool            `json:"is_mandatory"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	TotalRecipients int             `json:"total_recipients"`
	Questions       []QuestionInput `json:"questions"`
}

// Validate checks the schema rules for survey creation: title present, at
// least one question, unique question order values, coherent date window.
func (in CreateInput) Validate() error {
	if l := len(strings.TrimSpace(in.Title)); l < 1 || l > maxTitleLength {
		return domainerr.ValidationError{Field: "title", Reason: fmt.Sprintf("length must be between 1 and %d", maxTitleLength)}
	}
	if len(in.Questions) == 0 {
		return domainerr.ValidationError{Field: "questions", Reason: "a survey needs at least one question"}
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return domainerr.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}

	seenOrders := make(map[int]bool, len(in.Questions))
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return domainerr.ValidationError{Field: fmt.Sprintf("questions[%d].question_text", i), Reason: "must not be empty"}
		}
		if !q.Type.Valid() {
			return domainerr.ValidationError{Field: fmt.Sprintf("questions[%d].question_type", i), Reason: fmt.Sprintf("unknown question type %q", q.Type)}
		}
		if seenOrders[q.Order] {
			return domainerr.ValidationError{Field: fmt.Sprintf("questions[%d].order", i), Reason: fmt.Sprintf("order %d is used by another question", q.Order)}
		}
		seenOrders[q.Order] = true
	}
	return nil
}

// UpdateInput carries the fields a survey update may change. Nil fields are
// left untouched.
type UpdateInput struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Status          *Status    `json:"status,omitempty"`
	IsAnonymous     *bool      `json:"is_anonymous,omitempty"`
	IsMandatory     *bool      `json:"is_mandatory,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	TotalRecipients *int       `json:"total_recipients,omitempty"`
}

// Validate checks the schema rules for survey update.
func (in UpdateInput) Validate() error {
	if in.Title != nil {
		if l := len(strings.TrimSpace(*in.Title)); l < 1 || l > maxTitleLength {
			return domainerr.ValidationError{Field: "title", Reason: fmt.Sprintf("length must be between 1 and %d", maxTitleLength)}
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case StatusDraft, StatusPublished, StatusClosed, StatusDeleted:
		default:
			return domainerr.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *in.Status)}
		}
	}
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return domainerr.ValidationError{Field: "end_date", Reason: "must be after start_date"}
	}
	return nil
}

// onlyClosesStatus reports whether the update's sole effect is moving the
// status to closed, the one edit a published survey permits.
func (in UpdateInput) onlyClosesStatus() bool {
	if in.Status == nil || *in.Status != StatusClosed {
		return false
	}
	return in.Title == nil && in.Description == nil && in.IsAnonymous == nil &&
		in.IsMandatory == nil && in.StartDate == nil && in.EndDate == nil &&
		in.TotalRecipients == nil
}

// apply copies the non-nil fields onto a copy of cur and returns it together
// with the list of fields whose value actually changed.
func (in UpdateInput) apply(cur *Survey) (Survey, []string) {
	next := *cur
	var changed []string

	if in.Title != nil && *in.Title != next.Title {
		next.Title = *in.Title
		changed = append(changed, "title")
	}
	if in.Description != nil && *in.Description != next.Description {
		next.Description = *in.Description
		changed = append(changed, "description")
	}
	if in.Status != nil && *in.Status != next.Status {
		next.Status = *in.Status
		changed = append(changed, "status")
	}
	if in.IsAnonymous != nil && *in.IsAnonymous != next.IsAnonymous {
		next.IsAnonymous = *in.IsAnonymous
		changed = append(changed, "is_anonymous")
	}
	if in.IsMandatory != nil && *in.IsMandatory != next.IsMandatory {
		next.IsMandatory = *in.IsMandatory
		changed = append(changed, "is_mandatory")
	}
	if in.StartDate != nil && !equalDates(in.StartDate, next.StartDate) {
		next.StartDate = in.StartDate
		changed = append(changed, "start_date")
	}
	if in.EndDate != nil && !equalDates(in.EndDate, next.EndDate) {
		next.EndDate = in.EndDate
		changed = append(changed, "end_date")
	}
	if in.TotalRecipients != nil && *in.TotalRecipients != next.TotalRecipients {
		next.TotalRecipients = *in.TotalRecipients
		changed = append(changed, "total_recipients")
	}
	return next, changed
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// AnswerInput is one answered question in a submission.
type AnswerInput struct {
	QuestionID int             `json:"question_id"`
	Value      json.RawMessage `json:"answer_value"`
}

// SubmitResponseInput is the shape for submitting a survey response.
type SubmitResponseInput struct {
	SurveyID       int           `json:"survey_id"`
	Answers        []AnswerInput `json:"answers"`
	TimeToComplete int           `json:"time_to_complete"`
}

// validateAnswers cross-checks a submission against the survey's questions:
// every answered question must belong to the survey, no question may be
// answered twice, and every required question must have a non-empty answer.
func validateAnswers(answers []AnswerInput, questions []Question) error {
	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[int]bool, len(answers))
	for i, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return domainerr.ValidationError{
				Field:  fmt.Sprintf("answers[%d].question_id", i),
				Reason: fmt.Sprintf("question %d does not belong to this survey", a.QuestionID),
			}
		}
		if answered[a.QuestionID] {
			return domainerr.ValidationError{
				Field:  fmt.Sprintf("answers[%d].question_id", i),
				Reason: fmt.Sprintf("question %d is answered more than once", a.QuestionID),
			}
		}
		answered[a.QuestionID] = true

		if q.IsRequired && emptyAnswer(a.Value) {
			return domainerr.ValidationError{
				Field:  fmt.Sprintf("answers[%d].answer_value", i),
				Reason: fmt.Sprintf("required question %d (%q) has an empty answer", q.ID, q.Text),
			}
		}
	}

	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			return domainerr.ValidationError{
				Field:  "answers",
				Reason: fmt.Sprintf("required question %d (%q) has no answer", q.ID, q.Text),
			}
		}
	}
	return nil
}

func emptyAnswer(v json.RawMessage) bool {
	s := strings.TrimSpace(string(v))
	return s == "" || s == "null" || s == `""` || s == "[]"
}

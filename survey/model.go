// Package survey implements the survey authoring and response-submission
// slice: schema and business-rule validation, the survey status state
// machine, and event publication after each successful mutation.
package survey

import (
	"encoding/json"
	"time"
)

// Status is the survey lifecycle state. Permitted transitions:
// draft -> published -> closed, and draft -> deleted. Nothing else.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusDeleted   Status = "deleted"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionShortText      QuestionType = "short_text"
	QuestionLongText       QuestionType = "long_text"
	QuestionRating         QuestionType = "rating"
	QuestionScale          QuestionType = "scale"
	QuestionNPS            QuestionType = "nps"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionDate           QuestionType = "date"
	QuestionTime           QuestionType = "time"
	QuestionNumber         QuestionType = "number"
	QuestionEmail          QuestionType = "email"
	QuestionPhone          QuestionType = "phone"
	QuestionFileUpload     QuestionType = "file_upload"
	QuestionRanking        QuestionType = "ranking"
	QuestionMatrix         QuestionType = "matrix"
	QuestionSlider         QuestionType = "slider"
)

var questionTypes = map[QuestionType]bool{
	QuestionSingleChoice:   true,
	QuestionMultipleChoice: true,
	QuestionDropdown:       true,
	QuestionShortText:      true,
	QuestionLongText:       true,
	QuestionRating:         true,
	QuestionScale:          true,
	QuestionNPS:            true,
	QuestionYesNo:          true,
	QuestionDate:           true,
	QuestionTime:           true,
	QuestionNumber:         true,
	QuestionEmail:          true,
	QuestionPhone:          true,
	QuestionFileUpload:     true,
	QuestionRanking:        true,
	QuestionMatrix:         true,
	QuestionSlider:         true,
}

// Valid reports whether the question type is known.
func (t QuestionType) Valid() bool { return questionTypes[t] }

// Survey is the aggregate root.
type Survey struct {
	ID              int        `json:"id"`
	OrganizationID  int        `json:"organization_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          Status     `json:"status"`
	IsAnonymous     bool       `json:"is_anonymous"`
	IsMandatory     bool       `json:"is_mandatory"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	TotalRecipients int        `json:"total_recipients"`
	CreatedBy       int        `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Question belongs to a survey. Order is unique within the survey.
type Question struct {
	ID             int             `json:"id"`
	SurveyID       int             `json:"survey_id"`
	Text           string          `json:"question_text"`
	Type           QuestionType    `json:"question_type"`
	IsRequired     bool            `json:"is_required"`
	Options        []string        `json:"options,omitempty"`
	Order          int             `json:"order"`
	BranchingLogic json.RawMessage `json:"branching_logic,omitempty"`
}

// Response is one submission. UserID is nil for anonymous responses.
type Response struct {
	ID             int       `json:"id"`
	SurveyID       int       `json:"survey_id"`
	UserID         *int      `json:"user_id,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
	TimeToComplete int       `json:"time_to_complete"`
}

// Answer is one question's answer within a response. The value shape depends
// on the question type, so it is kept as raw JSON.
type Answer struct {
	ID         int             `json:"id"`
	ResponseID int             `json:"response_id"`
	QuestionID int             `json:"question_id"`
	Value      json.RawMessage `json:"answer_value"`
}

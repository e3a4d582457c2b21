package survey

import (
	"time"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
)

// Created is published after a survey and its questions are persisted.
type Created struct {
	Survey    *Survey `json:"survey"`
	CreatedBy int     `json:"created_by"`
}

func (Created) EventType() string { return event.TypeSurveyCreated }

// Updated is published after an update that changed at least one field.
type Updated struct {
	Survey        *Survey  `json:"survey"`
	PreviousData  *Survey  `json:"previous_data"`
	UpdatedFields []string `json:"updated_fields"`
	UpdatedBy     int      `json:"updated_by"`
}

func (Updated) EventType() string { return event.TypeSurveyUpdated }

// Published is published when a draft survey transitions to published.
type Published struct {
	Survey      *Survey `json:"survey"`
	PublishedBy int     `json:"published_by"`
}

func (Published) EventType() string { return event.TypeSurveyPublished }

// Deleted is published after a draft survey is soft-deleted.
type Deleted struct {
	SurveyID  int     `json:"survey_id"`
	Survey    *Survey `json:"survey"`
	DeletedBy int     `json:"deleted_by"`
}

func (Deleted) EventType() string { return event.TypeSurveyDeleted }

// ResponseSubmitted is published after a response and its answers are
// persisted. UserID is nil for anonymous submissions.
type ResponseSubmitted struct {
	SurveyID       int  `json:"survey_id"`
	ResponseID     int  `json:"response_id"`
	UserID         *int `json:"user_id,omitempty"`
	IsAnonymous    bool `json:"is_anonymous"`
	TimeToComplete int  `json:"time_to_complete"`
}

func (ResponseSubmitted) EventType() string { return event.TypeSurveyResponseSubmitted }

// AnalyticsGenerated is derived by the analytics handler after each
// submission.
type AnalyticsGenerated struct {
	SurveyID      int       `json:"survey_id"`
	ResponseCount int       `json:"response_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func (AnalyticsGenerated) EventType() string { return event.TypeSurveyAnalyticsGenerated }

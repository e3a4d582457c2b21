package survey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
)

// Handlers owns the survey slice's event subscriptions.
type Handlers struct {
	bus    *eventbus.Bus
	repo   Repository
	subIDs []string
}

// NewHandlers constructs the handler set. The repository is used by the
// analytics handler to recount responses.
func NewHandlers(bus *eventbus.Bus, repo Repository) *Handlers {
	return &Handlers{bus: bus, repo: repo}
}

// Initialize registers all survey handlers.
func (h *Handlers) Initialize() error {
	subs := []struct {
		eventType    string
		handler      eventbus.Handler
		subscriberID string
		priority     int
	}{
		{event.TypeSurveyCreated, h.audit, "survey-audit", 10},
		{event.TypeSurveyUpdated, h.audit, "survey-audit", 10},
		{event.TypeSurveyPublished, h.audit, "survey-audit", 10},
		{event.TypeSurveyDeleted, h.audit, "survey-audit", 10},
		{event.TypeSurveyResponseSubmitted, h.generateAnalytics, "survey-analytics", 20},
	}
	for _, s := range subs {
		id, err := h.bus.Subscribe(s.eventType, s.handler, s.subscriberID, eventbus.WithPriority(s.priority))
		if err != nil {
			h.Cleanup()
			return fmt.Errorf("subscribe %s to %s: %w", s.subscriberID, s.eventType, err)
		}
		h.subIDs = append(h.subIDs, id)
	}
	return nil
}

// Cleanup drops every subscription Initialize registered.
func (h *Handlers) Cleanup() {
	for _, id := range h.subIDs {
		h.bus.Unsubscribe(id)
	}
	h.subIDs = nil
}

func (h *Handlers) audit(ctx context.Context, evt event.Event) error {
	switch data := evt.Data.(type) {
	case Created:
		slog.InfoContext(ctx, "Survey created",
			"eventID", evt.ID,
			"surveyID", data.Survey.ID,
			"title", data.Survey.Title,
			"createdBy", data.CreatedBy)
	case Updated:
		slog.InfoContext(ctx, "Survey updated",
			"eventID", evt.ID,
			"surveyID", data.Survey.ID,
			"updatedFields", data.UpdatedFields,
			"updatedBy", data.UpdatedBy)
	case Published:
		slog.InfoContext(ctx, "Survey published",
			"eventID", evt.ID,
			"surveyID", data.Survey.ID,
			"publishedBy", data.PublishedBy)
	case Deleted:
		slog.InfoContext(ctx, "Survey deleted",
			"eventID", evt.ID,
			"surveyID", data.SurveyID,
			"deletedBy", data.DeletedBy)
	default:
		return fmt.Errorf("unexpected payload %T on %s", evt.Data, evt.Type)
	}
	return nil
}

// generateAnalytics recounts responses after each submission and republishes
// the result as survey.analytics_generated.
func (h *Handlers) generateAnalytics(ctx context.Context, evt event.Event) error {
	data, ok := evt.Data.(ResponseSubmitted)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", evt.Data, evt.Type)
	}

	count, err := h.repo.CountResponses(ctx, data.SurveyID)
	if err != nil {
		return fmt.Errorf("count responses for survey %d: %w", data.SurveyID, err)
	}

	derived, err := event.New(evt.OrganizationID, AnalyticsGenerated{
		SurveyID:      data.SurveyID,
		ResponseCount: count,
		GeneratedAt:   evt.Timestamp,
	})
	if err != nil {
		return err
	}
	return h.bus.Publish(ctx, derived)
}

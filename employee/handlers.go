package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
)

// Handlers owns the employee slice's event subscriptions. Initialize wires
// them at process start; Cleanup drops them. Handlers perform side effects
// only and must never influence the originating transaction.
type Handlers struct {
	bus    *eventbus.Bus
	subIDs []string
}

// NewHandlers constructs the handler set for the given bus.
func NewHandlers(bus *eventbus.Bus) *Handlers {
	return &Handlers{bus: bus}
}

// Initialize registers all employee handlers. Calling it again after Cleanup
// re-registers the same set.
func (h *Handlers) Initialize() error {
	subs := []struct {
		eventType    string
		handler      eventbus.Handler
		subscriberID string
		priority     int
	}{
		// The change detector runs before the audit logger so derived events
		// land in history close to their source.
		{event.TypeEmployeeUpdated, h.detectProfileChanges, "employee-change-detector", 5},
		{event.TypeEmployeeCreated, h.audit, "employee-audit", 10},
		{event.TypeEmployeeUpdated, h.audit, "employee-audit", 10},
		{event.TypeEmployeeDeactivated, h.audit, "employee-audit", 10},
		{event.TypeEmployeeDeactivated, h.logOffboardingTasks, "employee-offboarding", 20},
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

// audit writes a structured audit line for each lifecycle transition.
func (h *Handlers) audit(ctx context.Context, evt event.Event) error {
	switch data := evt.Data.(type) {
	case Created:
		slog.InfoContext(ctx, "Employee created",
			"eventID", evt.ID,
			"employeeID", data.Employee.ID,
			"email", data.Employee.Email,
			"createdBy", data.CreatedBy)
	case Updated:
		slog.InfoContext(ctx, "Employee updated",
			"eventID", evt.ID,
			"employeeID", data.Employee.ID,
			"updatedFields", data.UpdatedFields,
			"updatedBy", data.UpdatedBy)
	case Deactivated:
		slog.InfoContext(ctx, "Employee deactivated",
			"eventID", evt.ID,
			"employeeID", data.EmployeeID,
			"reason", data.Reason,
			"deactivatedBy", data.DeactivatedBy)
	default:
		return fmt.Errorf("unexpected payload %T on %s", evt.Data, evt.Type)
	}
	return nil
}

// detectProfileChanges republishes role and department transitions as their
// own catalogue events when an update touched those fields.
func (h *Handlers) detectProfileChanges(ctx context.Context, evt event.Event) error {
	data, ok := evt.Data.(Updated)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", evt.Data, evt.Type)
	}

	for _, field := range data.UpdatedFields {
		switch field {
		case "role_type":
			derived, err := event.New(evt.OrganizationID, RoleChanged{
				EmployeeID:   data.Employee.ID,
				PreviousRole: data.PreviousData.RoleType,
				NewRole:      data.Employee.RoleType,
				ChangedBy:    data.UpdatedBy,
			})
			if err != nil {
				return err
			}
			if err := h.bus.Publish(ctx, derived); err != nil {
				return err
			}
		case "department":
			derived, err := event.New(evt.OrganizationID, DepartmentChanged{
				EmployeeID:         data.Employee.ID,
				PreviousDepartment: data.PreviousData.Department,
				NewDepartment:      data.Employee.Department,
				ChangedBy:          data.UpdatedBy,
			})
			if err != nil {
				return err
			}
			if err := h.bus.Publish(ctx, derived); err != nil {
				return err
			}
		}
	}
	return nil
}

// logOffboardingTasks surfaces the derived offboarding checklist.
func (h *Handlers) logOffboardingTasks(ctx context.Context, evt event.Event) error {
	data, ok := evt.Data.(Deactivated)
	if !ok {
		return fmt.Errorf("unexpected payload %T on %s", evt.Data, evt.Type)
	}
	for _, task := range data.OffboardingTasks {
		slog.InfoContext(ctx, "Offboarding task generated",
			"employeeID", data.EmployeeID,
			"category", task.Category,
			"task", task.Task,
			"dueDate", task.DueDate)
	}
	return nil
}

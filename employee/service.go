package employee

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

// Offboarding task due-date offsets per dependency category.
const (
	postsTaskDue        = 7 * 24 * time.Hour
	leaveTaskDue        = 3 * 24 * time.Hour
	recognitionsTaskDue = 5 * 24 * time.Hour
)

// Service enforces the employee lifecycle business rules. Events are
// published strictly after the corresponding persistence call succeeds; on
// any error path no event is published.
type Service struct {
	repo Repository
	bus  *eventbus.Bus
	now  func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the service clock, used by tests to pin time-window
// checks.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService constructs the employee domain service around an injected
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

// Create validates and persists a new employee, then publishes
// employee.created.
func (s *Service) Create(ctx context.Context, in CreateInput, organizationID, createdBy int) (*Employee, error) {
	now := s.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, organizationID, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if exists {
		return nil, domainerr.ConflictError{Reason: fmt.Sprintf("employee with email %q already exists", in.Email)}
	}

	exists, err = s.repo.NameExists(ctx, organizationID, in.Name, in.Surname)
	if err != nil {
		return nil, fmt.Errorf("check name uniqueness: %w", err)
	}
	if exists {
		return nil, domainerr.ConflictError{Reason: fmt.Sprintf("employee named %q %q already exists", in.Name, in.Surname)}
	}

	emp, err := s.repo.Insert(ctx, InsertEmployee{
		OrganizationID: organizationID,
		Email:          in.Email,
		Username:       in.Username,
		Password:       in.Password,
		Name:           in.Name,
		Surname:        in.Surname,
		JobTitle:       in.JobTitle,
		Department:     in.Department,
		Location:       in.Location,
		AvatarURL:      in.AvatarURL,
		RoleType:       in.RoleType,
		HireDate:       in.HireDate,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, Created{
		Employee:         emp,
		CreatedBy:        createdBy,
		WelcomeEmailSent: false,
	})
	return emp, nil
}

// Update applies the changed fields to an existing employee. When the input
// matches the current state it is an idempotent no-op: no persistence call,
// no event.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput, organizationID, updatedBy int) (*Employee, error) {
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("load employee %d: %w", id, err)
	}
	if current == nil {
		return nil, domainerr.NotFoundError{Entity: "employee", ID: strconv.Itoa(id)}
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
		Employee:      updated,
		PreviousData:  current,
		UpdatedFields: changed,
		UpdatedBy:     updatedBy,
	})
	return updated, nil
}

// Deactivate soft-deletes an employee. Outstanding dependencies become
// offboarding tasks on the published event; they never block the
// deactivation itself.
func (s *Service) Deactivate(ctx context.Context, id int, reason string, organizationID, deactivatedBy int) (*Employee, error) {
	current, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("load employee %d: %w", id, err)
	}
	if current == nil {
		return nil, domainerr.NotFoundError{Entity: "employee", ID: strconv.Itoa(id)}
	}
	if current.Status == StatusInactive {
		return nil, domainerr.ConflictError{Reason: fmt.Sprintf("employee %d is already inactive", id)}
	}

	deps, err := s.repo.Dependencies(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check dependencies for employee %d: %w", id, err)
	}
	now := s.now()
	tasks := offboardingTasks(deps, now)

	emp, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, organizationID, Deactivated{
		EmployeeID:       id,
		Employee:         emp,
		DeactivatedBy:    deactivatedBy,
		Reason:           reason,
		EffectiveDate:    now,
		OffboardingTasks: tasks,
	})
	return emp, nil
}

// List returns employees for the validated filters.
func (s *Service) List(ctx context.Context, organizationID int, f Filters) ([]Employee, error) {
	return s.repo.List(ctx, organizationID, f)
}

// Get returns one employee scoped to the organization.
func (s *Service) Get(ctx context.Context, organizationID, id int) (*Employee, error) {
	emp, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, domainerr.NotFoundError{Entity: "employee", ID: strconv.Itoa(id)}
	}
	return emp, nil
}

func offboardingTasks(deps Dependencies, now time.Time) []OffboardingTask {
	var tasks []OffboardingTask
	if deps.HasActivePosts {
		tasks = append(tasks, OffboardingTask{
			Task:     "Reassign or archive the employee's open posts",
			Category: "posts",
			DueDate:  now.Add(postsTaskDue),
		})
	}
	if deps.HasActiveLeave {
		tasks = append(tasks, OffboardingTask{
			Task:     "Resolve the employee's pending leave requests",
			Category: "leave",
			DueDate:  now.Add(leaveTaskDue),
		})
	}
	if deps.HasOpenRecognitions {
		tasks = append(tasks, OffboardingTask{
			Task:     "Close out the employee's open recognitions",
			Category: "recognitions",
			DueDate:  now.Add(recognitionsTaskDue),
		})
	}
	return tasks
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

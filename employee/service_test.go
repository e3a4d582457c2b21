package employee_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
	"github.com/samSKIF/EmployeeRewards-sub009/employee"
	"github.com/samSKIF/EmployeeRewards-sub009/event"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
	"github.com/samSKIF/EmployeeRewards-sub009/testutil"
)

// fakeRepo satisfies employee.Repository through overridable function fields.
type fakeRepo struct {
	insertFn       func(ctx context.Context, in employee.InsertEmployee) (*employee.Employee, error)
	getByIDFn      func(ctx context.Context, organizationID, id int) (*employee.Employee, error)
	emailExistsFn  func(ctx context.Context, organizationID int, email string) (bool, error)
	nameExistsFn   func(ctx context.Context, organizationID int, name, surname string) (bool, error)
	updateFn       func(ctx context.Context, emp *employee.Employee) (*employee.Employee, error)
	deactivateFn   func(ctx context.Context, id int) (*employee.Employee, error)
	dependenciesFn func(ctx context.Context, id int) (employee.Dependencies, error)
	listFn         func(ctx context.Context, organizationID int, f employee.Filters) ([]employee.Employee, error)

	updateCalls int
}

func (r *fakeRepo) Insert(ctx context.Context, in employee.InsertEmployee) (*employee.Employee, error) {
	return r.insertFn(ctx, in)
}

func (r *fakeRepo) GetByID(ctx context.Context, organizationID, id int) (*employee.Employee, error) {
	return r.getByIDFn(ctx, organizationID, id)
}

func (r *fakeRepo) EmailExists(ctx context.Context, organizationID int, email string) (bool, error) {
	if r.emailExistsFn == nil {
		return false, nil
	}
	return r.emailExistsFn(ctx, organizationID, email)
}

func (r *fakeRepo) NameExists(ctx context.Context, organizationID int, name, surname string) (bool, error) {
	if r.nameExistsFn == nil {
		return false, nil
	}
	return r.nameExistsFn(ctx, organizationID, name, surname)
}

func (r *fakeRepo) Update(ctx context.Context, emp *employee.Employee) (*employee.Employee, error) {
	r.updateCalls++
	return r.updateFn(ctx, emp)
}

func (r *fakeRepo) Deactivate(ctx context.Context, id int) (*employee.Employee, error) {
	return r.deactivateFn(ctx, id)
}

func (r *fakeRepo) Dependencies(ctx context.Context, id int) (employee.Dependencies, error) {
	if r.dependenciesFn == nil {
		return employee.Dependencies{}, nil
	}
	return r.dependenciesFn(ctx, id)
}

func (r *fakeRepo) List(ctx context.Context, organizationID int, f employee.Filters) ([]employee.Employee, error) {
	return r.listFn(ctx, organizationID, f)
}

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func storedEmployee() *employee.Employee {
	return &employee.Employee{
		ID:             11,
		OrganizationID: 1,
		Email:          "ada@example.com",
		Username:       "ada",
		Name:           "Ada",
		Surname:        "Lovelace",
		Department:     "Engineering",
		RoleType:       employee.RoleEmployee,
		Status:         employee.StatusActive,
	}
}

type EmployeeServiceSuite struct {
	suite.Suite
	ctx      context.Context
	bus      *eventbus.Bus
	repo     *fakeRepo
	recorder *testutil.Recorder
	service  *employee.Service
}

func TestEmployeeServiceSuite(t *testing.T) {
	suite.Run(t, new(EmployeeServiceSuite))
}

func (s *EmployeeServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = eventbus.New()
	s.repo = &fakeRepo{}
	s.recorder = testutil.NewRecorder()
	s.service = employee.NewService(s.repo, s.bus, employee.WithClock(fixedClock))

	for _, eventType := range []string{
		event.TypeEmployeeCreated,
		event.TypeEmployeeUpdated,
		event.TypeEmployeeDeactivated,
		event.TypeEmployeeRoleChanged,
		event.TypeEmployeeDepartmentChanged,
	} {
		_, err := s.bus.Subscribe(eventType, s.recorder.Handle, "test-recorder", eventbus.WithPriority(100))
		s.Require().NoError(err)
	}
}

func (s *EmployeeServiceSuite) createInput() employee.CreateInput {
	return employee.CreateInput{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct-horse",
		Name:     "Ada",
		Surname:  "Lovelace",
		RoleType: employee.RoleEmployee,
	}
}

func (s *EmployeeServiceSuite) TestCreate_PersistsThenPublishes() {
	// GIVEN
	s.repo.insertFn = func(_ context.Context, in employee.InsertEmployee) (*employee.Employee, error) {
		s.Equal(1, in.OrganizationID)
		s.Equal("ada@example.com", in.Email)
		return storedEmployee(), nil
	}

	// WHEN
	emp, err := s.service.Create(s.ctx, s.createInput(), 1, 99)

	// THEN
	s.Require().NoError(err)
	s.Equal(11, emp.ID)

	events := s.recorder.EventsOfType(event.TypeEmployeeCreated)
	s.Require().Len(events, 1)
	s.Require().NotNil(events[0].OrganizationID)
	s.Equal(1, *events[0].OrganizationID)

	payload := events[0].Data.(employee.Created)
	s.Equal(11, payload.Employee.ID)
	s.Equal(99, payload.CreatedBy)
	s.False(payload.WelcomeEmailSent)
}

func (s *EmployeeServiceSuite) TestCreate_DuplicateEmailIsConflictWithoutEvent() {
	// GIVEN
	s.repo.emailExistsFn = func(context.Context, int, string) (bool, error) { return true, nil }

	// WHEN
	_, err := s.service.Create(s.ctx, s.createInput(), 1, 99)

	// THEN
	s.Require().ErrorAs(err, &domainerr.ConflictError{})
	s.Empty(s.recorder.Events(), "no event may be published on a failed create")
	s.Empty(s.bus.History(0))
}

func (s *EmployeeServiceSuite) TestCreate_DuplicateNameIsConflict() {
	s.repo.nameExistsFn = func(context.Context, int, string, string) (bool, error) { return true, nil }

	_, err := s.service.Create(s.ctx, s.createInput(), 1, 99)
	s.ErrorAs(err, &domainerr.ConflictError{})
}

func (s *EmployeeServiceSuite) TestCreate_RejectsCorporateAdmin() {
	in := s.createInput()
	in.RoleType = employee.RoleCorporateAdmin

	_, err := s.service.Create(s.ctx, in, 1, 99)

	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("role_type", verr.Field)
	s.Empty(s.recorder.Events())
}

func (s *EmployeeServiceSuite) TestCreate_RejectsFutureHireDate() {
	in := s.createInput()
	future := fixedNow.Add(48 * time.Hour)
	in.HireDate = &future

	_, err := s.service.Create(s.ctx, in, 1, 99)

	var verr domainerr.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("hire_date", verr.Field)
}

func (s *EmployeeServiceSuite) TestUpdate_ChangedFieldsArePersistedAndPublished() {
	// GIVEN
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		return storedEmployee(), nil
	}
	s.repo.updateFn = func(_ context.Context, emp *employee.Employee) (*employee.Employee, error) {
		out := *emp
		return &out, nil
	}
	newTitle := "Staff Engineer"

	// WHEN
	emp, err := s.service.Update(s.ctx, 11, employee.UpdateInput{JobTitle: &newTitle}, 1, 99)

	// THEN
	s.Require().NoError(err)
	s.Equal("Staff Engineer", emp.JobTitle)

	events := s.recorder.EventsOfType(event.TypeEmployeeUpdated)
	s.Require().Len(events, 1)
	payload := events[0].Data.(employee.Updated)
	s.Equal([]string{"job_title"}, payload.UpdatedFields)
	s.Equal("", payload.PreviousData.JobTitle)
}

func (s *EmployeeServiceSuite) TestUpdate_NoChangeIsIdempotentNoOp() {
	// GIVEN input equal to the stored state
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		return storedEmployee(), nil
	}
	sameName := "Ada"
	sameDept := "Engineering"

	// WHEN
	emp, err := s.service.Update(s.ctx, 11, employee.UpdateInput{Name: &sameName, Department: &sameDept}, 1, 99)

	// THEN
	s.Require().NoError(err)
	s.Equal(11, emp.ID)
	s.Zero(s.repo.updateCalls, "no persistence call on a no-op update")
	s.Empty(s.recorder.Events(), "no event on a no-op update")
}

func (s *EmployeeServiceSuite) TestUpdate_UnknownEmployeeIsNotFound() {
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) { return nil, nil }
	name := "Ada"

	_, err := s.service.Update(s.ctx, 404, employee.UpdateInput{Name: &name}, 1, 99)
	s.ErrorAs(err, &domainerr.NotFoundError{})
}

func (s *EmployeeServiceSuite) TestUpdate_RoleAndDepartmentChangesAreRepublished() {
	// GIVEN the change detector wired the way the application wires it
	handlers := employee.NewHandlers(s.bus)
	s.Require().NoError(handlers.Initialize())
	defer handlers.Cleanup()

	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		return storedEmployee(), nil
	}
	s.repo.updateFn = func(_ context.Context, emp *employee.Employee) (*employee.Employee, error) {
		out := *emp
		return &out, nil
	}
	newRole := employee.RoleManager
	newDept := "Product"

	// WHEN
	_, err := s.service.Update(s.ctx, 11, employee.UpdateInput{RoleType: &newRole, Department: &newDept}, 1, 99)
	s.Require().NoError(err)

	// THEN both derived events were published
	roleEvents := s.recorder.EventsOfType(event.TypeEmployeeRoleChanged)
	s.Require().Len(roleEvents, 1)
	rolePayload := roleEvents[0].Data.(employee.RoleChanged)
	s.Equal(employee.RoleEmployee, rolePayload.PreviousRole)
	s.Equal(employee.RoleManager, rolePayload.NewRole)

	deptEvents := s.recorder.EventsOfType(event.TypeEmployeeDepartmentChanged)
	s.Require().Len(deptEvents, 1)
	deptPayload := deptEvents[0].Data.(employee.DepartmentChanged)
	s.Equal("Engineering", deptPayload.PreviousDepartment)
	s.Equal("Product", deptPayload.NewDepartment)
}

func (s *EmployeeServiceSuite) TestDeactivate_GeneratesOffboardingTasksWithDueDates() {
	// GIVEN every dependency category open
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		return storedEmployee(), nil
	}
	s.repo.dependenciesFn = func(context.Context, int) (employee.Dependencies, error) {
		return employee.Dependencies{HasActivePosts: true, HasActiveLeave: true, HasOpenRecognitions: true}, nil
	}
	s.repo.deactivateFn = func(context.Context, int) (*employee.Employee, error) {
		emp := storedEmployee()
		emp.Status = employee.StatusInactive
		return emp, nil
	}

	// WHEN
	_, err := s.service.Deactivate(s.ctx, 11, "left the company", 1, 99)
	s.Require().NoError(err)

	// THEN
	events := s.recorder.EventsOfType(event.TypeEmployeeDeactivated)
	s.Require().Len(events, 1)
	payload := events[0].Data.(employee.Deactivated)
	s.Equal("left the company", payload.Reason)
	s.Equal(fixedNow, payload.EffectiveDate)
	s.Require().Len(payload.OffboardingTasks, 3)

	due := map[string]time.Time{}
	for _, task := range payload.OffboardingTasks {
		due[task.Category] = task.DueDate
	}
	s.Equal(fixedNow.AddDate(0, 0, 7), due["posts"])
	s.Equal(fixedNow.AddDate(0, 0, 3), due["leave"])
	s.Equal(fixedNow.AddDate(0, 0, 5), due["recognitions"])
}

func (s *EmployeeServiceSuite) TestDeactivate_NoDependenciesMeansNoTasks() {
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		return storedEmployee(), nil
	}
	s.repo.deactivateFn = func(context.Context, int) (*employee.Employee, error) {
		emp := storedEmployee()
		emp.Status = employee.StatusInactive
		return emp, nil
	}

	_, err := s.service.Deactivate(s.ctx, 11, "", 1, 99)
	s.Require().NoError(err)

	events := s.recorder.EventsOfType(event.TypeEmployeeDeactivated)
	s.Require().Len(events, 1)
	s.Empty(events[0].Data.(employee.Deactivated).OffboardingTasks)
}

func (s *EmployeeServiceSuite) TestDeactivate_AlreadyInactiveIsConflict() {
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) {
		emp := storedEmployee()
		emp.Status = employee.StatusInactive
		return emp, nil
	}

	_, err := s.service.Deactivate(s.ctx, 11, "", 1, 99)
	s.ErrorAs(err, &domainerr.ConflictError{})
	s.Empty(s.recorder.Events())
}

func (s *EmployeeServiceSuite) TestGet_UnknownEmployeeIsNotFound() {
	s.repo.getByIDFn = func(context.Context, int, int) (*employee.Employee, error) { return nil, nil }

	_, err := s.service.Get(s.ctx, 1, 404)
	s.ErrorAs(err, &domainerr.NotFoundError{})
}

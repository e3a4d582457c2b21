package employee

import (
	"time"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
)

// Created is published after a new employee row is persisted.
type Created struct {
	Employee         *Employee `json:"employee"`
	CreatedBy        int       `json:"created_by"`
	WelcomeEmailSent bool      `json:"welcome_email_sent"`
}

func (Created) EventType() string { return event.TypeEmployeeCreated }

// Updated is published after an update that changed at least one field. It
// carries both the new entity and the previous state so subscribers can diff.
type Updated struct {
	Employee      *Employee `json:"employee"`
	PreviousData  *Employee `json:"previous_data"`
	UpdatedFields []string  `json:"updated_fields"`
	UpdatedBy     int       `json:"updated_by"`
}

func (Updated) EventType() string { return event.TypeEmployeeUpdated }

// Deactivated is published after an employee is soft-deleted.
type Deactivated struct {
	EmployeeID       int               `json:"employee_id"`
	Employee         *Employee         `json:"employee"`
	DeactivatedBy    int               `json:"deactivated_by"`
	Reason           string            `json:"reason"`
	EffectiveDate    time.Time         `json:"effective_date"`
	OffboardingTasks []OffboardingTask `json:"offboarding_tasks"`
}

func (Deactivated) EventType() string { return event.TypeEmployeeDeactivated }

// RoleChanged is derived from an Updated event whose changed fields include
// the role.
type RoleChanged struct {
	EmployeeID   int      `json:"employee_id"`
	PreviousRole RoleType `json:"previous_role"`
	NewRole      RoleType `json:"new_role"`
	ChangedBy    int      `json:"changed_by"`
}

func (RoleChanged) EventType() string { return event.TypeEmployeeRoleChanged }

// DepartmentChanged is derived from an Updated event whose changed fields
// include the department.
type DepartmentChanged struct {
	EmployeeID         int    `json:"employee_id"`
	PreviousDepartment string `json:"previous_department"`
	NewDepartment      string `json:"new_department"`
	ChangedBy          int    `json:"changed_by"`
}

func (DepartmentChanged) EventType() string { return event.TypeEmployeeDepartmentChanged }

// Package employee implements the employee lifecycle slice: validated domain
// operations over an injected repository, publishing typed events on the bus
// after each successful mutation.
package employee

import "time"

// RoleType is the employee's platform role.
type RoleType string

const (
	RoleEmployee       RoleType = "employee"
	RoleManager        RoleType = "manager"
	RoleAdmin          RoleType = "admin"
	RoleCorporateAdmin RoleType = "corporate_admin"
)

// Valid reports whether the role is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin, RoleCorporateAdmin:
		return true
	}
	return false
}

// Status is the employee's lifecycle status. Deactivation is a soft delete:
// the row is retained with StatusInactive.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Valid reports whether the status is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Employee is the directory entity. Email is unique within an organization.
type Employee struct {
	ID             int        `json:"id"`
	OrganizationID int        `json:"organization_id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Surname        string     `json:"surname,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Department     string     `json:"department,omitempty"`
	Location       string     `json:"location,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	RoleType       RoleType   `json:"role_type"`
	Status         Status     `json:"status"`
	HireDate       *time.Time `json:"hire_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// OffboardingTask is a derived follow-up generated when deactivating an
// employee with outstanding dependencies. It is a checklist item, never a
// blocking precondition.
type OffboardingTask struct {
	Task     string    `json:"task"`
	Category string    `json:"category"`
	DueDate  time.Time `json:"due_date"`
}

// Dependencies reports the open items discovered for an employee about to be
// deactivated.
type Dependencies struct {
	HasActivePosts      bool
	HasActiveLeave      bool
	HasOpenRecognitions bool
}

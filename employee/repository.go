package employee

import (
	"context"
	"time"
)

// InsertEmployee is the persistence shape for a new employee row.
type InsertEmployee struct {
	OrganizationID int
	Email          string
	Username       string
	Password       string
	Name           string
	Surname        string
	JobTitle       string
	Department     string
	Location       string
	AvatarURL      string
	RoleType       RoleType
	HireDate       *time.Time
}

// Repository is the persistence seam of the employee slice. The domain layer
// never touches storage directly; any implementation satisfying this
// interface is interchangeable.
type Repository interface {
	// Insert persists a new employee and returns the stored entity.
	Insert(ctx context.Context, in InsertEmployee) (*Employee, error)
	// GetByID returns the employee scoped to the organization, or nil when
	// absent.
	GetByID(ctx context.Context, organizationID, id int) (*Employee, error)
	// EmailExists reports whether the email is already used in the
	// organization.
	EmailExists(ctx context.Context, organizationID int, email string) (bool, error)
	// NameExists reports whether the name+surname combination is already
	// present in the organization. It is a softer duplicate signal than the
	// email check.
	NameExists(ctx context.Context, organizationID int, name, surname string) (bool, error)
	// Update persists the full updated entity and returns the stored row.
	Update(ctx context.Context, emp *Employee) (*Employee, error)
	// Deactivate soft-deletes the employee (status set to inactive) and
	// returns the updated entity.
	Deactivate(ctx context.Context, id int) (*Employee, error)
	// Dependencies discovers open posts, leave and recognitions for an
	// employee about to be deactivated.
	Dependencies(ctx context.Context, id int) (Dependencies, error)
	// List returns employees matching the validated filters.
	List(ctx context.Context, organizationID int, f Filters) ([]Employee, error)
}

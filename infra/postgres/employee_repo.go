package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/samSKIF/EmployeeRewards-sub009/employee"
)

// EmployeeRepository implements employee.Repository on PostgreSQL.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates the repository.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `
	id, organization_id, email, username, name, surname, job_title,
	department, location, avatar_url, role_type, status, hire_date,
	created_at, updated_at`

// Insert persists a new employee and returns the stored entity.
func (r *EmployeeRepository) Insert(ctx context.Context, in employee.InsertEmployee) (*employee.Employee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `
        INSERT INTO users (
            organization_id, email, username, password, name, surname,
            job_title, department, location, avatar_url, role_type, hire_date
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING` + employeeColumns
	row := r.db.conn(ctx).QueryRow(ctx, query,
		in.OrganizationID, in.Email, in.Username, string(hash), in.Name, in.Surname,
		in.JobTitle, in.Department, in.Location, in.AvatarURL, in.RoleType, in.HireDate)

	emp, err := scanEmployee(row)
	if err != nil {
		return nil, mapConstraintError(err, fmt.Sprintf("employee with email %q already exists", in.Email))
	}
	return emp, nil
}

// GetByID returns the employee scoped to the organization, or nil when
// absent.
func (r *EmployeeRepository) GetByID(ctx context.Context, organizationID, id int) (*employee.Employee, error) {
	query := `SELECT` + employeeColumns + ` FROM users WHERE organization_id = $1 AND id = $2`
	emp, err := scanEmployee(r.db.conn(ctx).QueryRow(ctx, query, organizationID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return emp, err
}

// EmailExists reports whether the email is already used in the organization.
func (r *EmployeeRepository) EmailExists(ctx context.Context, organizationID int, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE organization_id = $1 AND lower(email) = lower($2))`
	if err := r.db.conn(ctx).QueryRow(ctx, query, organizationID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// NameExists reports whether the name+surname combination is already present
// in the organization.
func (r *EmployeeRepository) NameExists(ctx context.Context, organizationID int, name, surname string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE organization_id = $1 AND lower(name) = lower($2) AND lower(surname) = lower($3))`
	if err := r.db.conn(ctx).QueryRow(ctx, query, organizationID, name, surname).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check name: %w", err)
	}
	return exists, nil
}

// Update persists the full updated entity and returns the stored row.
func (r *EmployeeRepository) Update(ctx context.Context, emp *employee.Employee) (*employee.Employee, error) {
	query := `
        UPDATE users SET
            name = $1, surname = $2, job_title = $3, department = $4,
            location = $5, avatar_url = $6, role_type = $7, hire_date = $8,
            updated_at = now()
        WHERE id = $9
        RETURNING` + employeeColumns
	row := r.db.conn(ctx).QueryRow(ctx, query,
		emp.Name, emp.Surname, emp.JobTitle, emp.Department,
		emp.Location, emp.AvatarURL, emp.RoleType, emp.HireDate, emp.ID)

	updated, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("employee %d vanished during update", emp.ID)
	}
	return updated, err
}

// Deactivate soft-deletes the employee and returns the updated entity.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id int) (*employee.Employee, error) {
	query := `
        UPDATE users SET status = 'inactive', updated_at = now()
        WHERE id = $1
        RETURNING` + employeeColumns
	emp, err := scanEmployee(r.db.conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("employee %d vanished during deactivation", id)
	}
	return emp, err
}

// Dependencies discovers open posts, leave requests and recognitions for an
// employee about to be deactivated.
func (r *EmployeeRepository) Dependencies(ctx context.Context, id int) (employee.Dependencies, error) {
	var deps employee.Dependencies
	query := `
        SELECT
            EXISTS(SELECT 1 FROM posts WHERE author_id = $1 AND status = 'active'),
            EXISTS(SELECT 1 FROM leave_requests WHERE user_id = $1 AND status = 'pending'),
            EXISTS(SELECT 1 FROM recognitions WHERE recipient_id = $1 AND status = 'open')`
	err := r.db.conn(ctx).QueryRow(ctx, query, id).
		Scan(&deps.HasActivePosts, &deps.HasActiveLeave, &deps.HasOpenRecognitions)
	if err != nil {
		return employee.Dependencies{}, fmt.Errorf("failed to check dependencies: %w", err)
	}
	return deps, nil
}

// List returns employees matching the validated filters. SortBy and
// SortOrder come from a whitelist, so interpolating them is safe.
func (r *EmployeeRepository) List(ctx context.Context, organizationID int, f employee.Filters) ([]employee.Employee, error) {
	query := `SELECT` + employeeColumns + `
        FROM users
        WHERE organization_id = $1
          AND status = $2
          AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR surname ILIKE '%' || $3 || '%' OR email ILIKE '%' || $3 || '%')
          AND ($4 = '' OR department = $4)
        ORDER BY ` + f.SortBy + ` ` + f.SortOrder + `
        LIMIT $5 OFFSET $6`
	rows, err := r.db.conn(ctx).Query(ctx, query,
		organizationID, f.Status, f.Search, f.Department, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.OrganizationID, &emp.Email, &emp.Username, &emp.Name,
		&emp.Surname, &emp.JobTitle, &emp.Department, &emp.Location,
		&emp.AvatarURL, &emp.RoleType, &emp.Status, &emp.HireDate,
		&emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan employee row: %w", err)
	}
	return &emp, nil
}

package employee

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxNameLength     = 100
	minPasswordLength = 8

	defaultListLimit = 50
	maxListLimit     = 100
)

// CreateInput is the validated shape for creating an employee. Controllers
// re-validate request bodies here as defense in depth.
type CreateInput struct {
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Name       string     `json:"name"`
	Surname    string     `json:"surname,omitempty"`
	JobTitle   string     `json:"job_title,omitempty"`
	Department string     `json:"department,omitempty"`
	Location   string     `json:"location,omitempty"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	RoleType   RoleType   `json:"role_type"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// Validate checks the schema rules for employee creation. The corporate_admin
// role is rejected here unconditionally: it can never be assigned through the
// ordinary create path, regardless of who the caller is.
func (in CreateInput) Validate(now time.Time) error {
	if !emailPattern.MatchString(in.Email) {
		return domainerr.ValidationError{Field: "email", Reason: fmt.Sprintf("%q is not a valid email address", in.Email)}
	}
	if l := len(strings.TrimSpace(in.Name)); l < 1 || l > maxNameLength {
		return domainerr.ValidationError{Field: "name", Reason: fmt.Sprintf("length must be between 1 and %d", maxNameLength)}
	}
	if len(in.Password) < minPasswordLength {
		return domainerr.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if in.RoleType == RoleCorporateAdmin {
		return domainerr.ValidationError{Field: "role_type", Reason: "corporate_admin cannot be assigned through employee creation"}
	}
	if !in.RoleType.Valid() {
		return domainerr.ValidationError{Field: "role_type", Reason: fmt.Sprintf("unknown role %q", in.RoleType)}
	}
	if in.HireDate != nil && in.HireDate.After(now) {
		return domainerr.ValidationError{Field: "hire_date", Reason: "must not be in the future"}
	}
	return nil
}

// UpdateInput carries the fields an update may change. Nil fields are left
// untouched.
type UpdateInput struct {
	Name       *string    `json:"name,omitempty"`
	Surname    *string    `json:"surname,omitempty"`
	JobTitle   *string    `json:"job_title,omitempty"`
	Department *string    `json:"department,omitempty"`
	Location   *string    `json:"location,omitempty"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	RoleType   *RoleType  `json:"role_type,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// Validate checks the schema rules for employee update.
func (in UpdateInput) Validate(now time.Time) error {
	if in.Name != nil {
		if l := len(strings.TrimSpace(*in.Name)); l < 1 || l > maxNameLength {
			return domainerr.ValidationError{Field: "name", Reason: fmt.Sprintf("length must be between 1 and %d", maxNameLength)}
		}
	}
	if in.RoleType != nil {
		if *in.RoleType == RoleCorporateAdmin {
			return domainerr.ValidationError{Field: "role_type", Reason: "corporate_admin cannot be assigned through employee update"}
		}
		if !in.RoleType.Valid() {
			return domainerr.ValidationError{Field: "role_type", Reason: fmt.Sprintf("unknown role %q", *in.RoleType)}
		}
	}
	if in.HireDate != nil && in.HireDate.After(now) {
		return domainerr.ValidationError{Field: "hire_date", Reason: "must not be in the future"}
	}
	return nil
}

// apply copies the non-nil fields onto a copy of cur and returns it together
// with the list of fields whose value actually changed.
func (in UpdateInput) apply(cur *Employee) (Employee, []string) {
	next := *cur
	var changed []string

	set := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, field)
		}
	}
	set("name", &next.Name, in.Name)
	set("surname", &next.Surname, in.Surname)
	set("job_title", &next.JobTitle, in.JobTitle)
	set("department", &next.Department, in.Department)
	set("location", &next.Location, in.Location)
	set("avatar_url", &next.AvatarURL, in.AvatarURL)

	if in.RoleType != nil && *in.RoleType != next.RoleType {
		next.RoleType = *in.RoleType
		changed = append(changed, "role_type")
	}
	if in.HireDate != nil && !equalDates(in.HireDate, next.HireDate) {
		next.HireDate = in.HireDate
		changed = append(changed, "hire_date")
	}
	return next, changed
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// RawFilters is the unvalidated list-query input as it arrives from the HTTP
// layer, everything still a string.
type RawFilters struct {
	Search     string
	Department string
	Status     string
	Limit      string
	Offset     string
	SortBy     string
	SortOrder  string
}

// Filters is the validated, defaulted list-query shape.
type Filters struct {
	Search     string
	Department string
	Status     Status
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

var sortableFields = map[string]bool{
	"name":       true,
	"surname":    true,
	"email":      true,
	"department": true,
	"hire_date":  true,
	"created_at": true,
}

// ValidateFilters coerces raw list-query parameters into Filters. It is a
// pure function: defaults are status=active, limit=50 (capped at 100),
// offset=0, sorted by name ascending.
func ValidateFilters(raw RawFilters) (Filters, error) {
	f := Filters{
		Search:     strings.TrimSpace(raw.Search),
		Department: strings.TrimSpace(raw.Department),
		Status:     StatusActive,
		Limit:      defaultListLimit,
		SortBy:     "name",
		SortOrder:  "asc",
	}

	if raw.Status != "" {
		st := Status(raw.Status)
		if !st.Valid() {
			return Filters{}, domainerr.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", raw.Status)}
		}
		f.Status = st
	}
	if raw.Limit != "" {
		n, err := strconv.Atoi(raw.Limit)
		if err != nil || n < 1 {
			return Filters{}, domainerr.ValidationError{Field: "limit", Reason: "must be a positive integer"}
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		f.Limit = n
	}
	if raw.Offset != "" {
		n, err := strconv.Atoi(raw.Offset)
		if err != nil || n < 0 {
			return Filters{}, domainerr.ValidationError{Field: "offset", Reason: "must be a non-negative integer"}
		}
		f.Offset = n
	}
	if raw.SortBy != "" {
		if !sortableFields[raw.SortBy] {
			return Filters{}, domainerr.ValidationError{Field: "sort_by", Reason: fmt.Sprintf("cannot sort by %q", raw.SortBy)}
		}
		f.SortBy = raw.SortBy
	}
	if raw.SortOrder != "" {
		if raw.SortOrder != "asc" && raw.SortOrder != "desc" {
			return Filters{}, domainerr.ValidationError{Field: "sort_order", Reason: `must be "asc" or "desc"`}
		}
		f.SortOrder = raw.SortOrder
	}
	return f, nil
}

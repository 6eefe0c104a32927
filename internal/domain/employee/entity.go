package employee

// EmployeeRef is the only view of an employee the leave module needs. The
// employee record itself (permanent or contractual, personal data) is owned
// by the employee module.
type EmployeeRef struct {
	ID       int64
	IsActive bool
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether an employee in this status still accrues leave.
func (s EmploymentStatus) IsActive() bool {
	return s == EmploymentStatusActive
}

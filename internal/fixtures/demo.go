package fixtures

import (
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
)

// DemoEmployee is a seeded employee for local runs on the memory driver.
type DemoEmployee struct {
	ID     int64
	Status employee.EmploymentStatus
}

// DemoEmployees returns the default employee roster: three active staff, one
// resigned and one terminated, so that provisioning and the year report both
// have something to skip.
func DemoEmployees() []DemoEmployee {
	return []DemoEmployee{
		{ID: 101, Status: employee.EmploymentStatusActive},
		{ID: 102, Status: employee.EmploymentStatusActive},
		{ID: 103, Status: employee.EmploymentStatusActive},
		{ID: 104, Status: employee.EmploymentStatusResigned},
		{ID: 105, Status: employee.EmploymentStatusTerminated},
	}
}

// DirectoryWriter is implemented by directories that accept seeded rows.
type DirectoryWriter interface {
	Put(id int64, status employee.EmploymentStatus)
}

// SeedDirectory writes the demo roster into dir.
func SeedDirectory(dir DirectoryWriter) int {
	employees := DemoEmployees()
	for _, e := range employees {
		dir.Put(e.ID, e.Status)
	}
	return len(employees)
}

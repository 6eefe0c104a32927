package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
)

// Directory is an in-memory employee.Directory.
type Directory struct {
	mu        sync.RWMutex
	employees map[int64]employee.EmploymentStatus
}

func NewDirectory() *Directory {
	return &Directory{employees: make(map[int64]employee.EmploymentStatus)}
}

// Put adds or updates an employee's status.
func (d *Directory) Put(id int64, status employee.EmploymentStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[id] = status
}

func (d *Directory) ListActive(_ context.Context) ([]employee.EmployeeRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	refs := make([]employee.EmployeeRef, 0, len(d.employees))
	for id, status := range d.employees {
		if status.IsActive() {
			refs = append(refs, employee.EmployeeRef{ID: id, IsActive: true})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (d *Directory) ListDepartedIDs(_ context.Context) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ids []int64
	for id, status := range d.employees {
		if !status.IsActive() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

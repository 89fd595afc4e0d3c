package rating

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"
)

type storeImpl struct {
	mu     sync.RWMutex
	layout grid.Layout
	now    func() time.Time
	order  []string
	byID   map[string]*employee.Employee
}

// NewRatingStore returns an empty store using layout for every position computation.
func NewRatingStore(layout grid.Layout) employee.RatingStore {
	return newStore(layout, time.Now)
}

func newStore(layout grid.Layout, now func() time.Time) *storeImpl {
	return &storeImpl{
		layout: layout,
		now:    now,
		byID:   make(map[string]*employee.Employee),
	}
}

// Load implements employee.RatingStore. On any validation failure the current
// employee set is left unchanged.
func (s *storeImpl) Load(rows []employee.ImportRow) error {
	var errs validator.ValidationErrors
	order := make([]string, 0, len(rows))
	byID := make(map[string]*employee.Employee, len(rows))
	loadedAt := s.now()

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			var rowErrs validator.ValidationErrors
			if errors.As(err, &rowErrs) {
				errs = append(errs, rowErrs...)
				continue
			}
			return err
		}

		id := strings.TrimSpace(row.EmployeeID)
		if _, dup := byID[id]; dup {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("row %d: Employee ID", row.RowIndex),
				Message: fmt.Sprintf("%s: %s", employee.ErrDuplicateEmployeeID.Error(), id),
			})
			continue
		}

		// Validate has already checked both ratings.
		perf, _ := grid.ParseRating(row.Performance)
		pot, _ := grid.ParseRating(row.Potential)
		pos := s.layout.Position(perf, pot)

		byID[id] = &employee.Employee{
			ID:                  id,
			Name:                strings.TrimSpace(row.Name),
			Performance:         perf,
			Potential:           pot,
			Position:            pos,
			OriginalPerformance: perf,
			OriginalPotential:   pot,
			OriginalPosition:    pos,
			Location:            strings.TrimSpace(row.Location),
			JobFunction:         strings.TrimSpace(row.JobFunction),
			JobLevel:            strings.TrimSpace(row.JobLevel),
			Tenure:              strings.TrimSpace(row.Tenure),
			Manager:             strings.TrimSpace(row.Manager),
			RowIndex:            row.RowIndex,
			UpdatedAt:           loadedAt,
		}
		order = append(order, id)
	}

	if len(errs) > 0 {
		return errs
	}

	s.mu.Lock()
	s.order = order
	s.byID = byID
	s.mu.Unlock()

	slog.Debug("Rating store loaded", "employees", len(order))
	return nil
}

// SetRating implements employee.RatingStore.
func (s *storeImpl) SetRating(id string, performance, potential grid.Rating) (employee.Employee, error) {
	if !performance.Valid() || !potential.Valid() {
		return employee.Employee{}, grid.ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.byID[id]
	if !ok {
		return employee.Employee{}, fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, id)
	}

	if emp.Performance != performance || emp.Potential != potential {
		emp.Performance = performance
		emp.Potential = potential
		emp.Position = s.layout.Position(performance, potential)
		emp.UpdatedAt = s.now()
	}
	return *emp, nil
}

// GetAll implements employee.RatingStore. Employees come back in import order.
func (s *storeImpl) GetAll() []employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]employee.Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// GetByID implements employee.RatingStore.
func (s *storeImpl) GetByID(id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.byID[id]
	if !ok {
		return employee.Employee{}, fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, id)
	}
	return *emp, nil
}

// Len implements employee.RatingStore.
func (s *storeImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Restore implements employee.RatingStore. Positions are recomputed from the
// rating pairs so a snapshot cannot smuggle in an inconsistent cell.
func (s *storeImpl) Restore(employees []employee.Employee) {
	order := make([]string, 0, len(employees))
	byID := make(map[string]*employee.Employee, len(employees))
	for _, e := range employees {
		e := e
		e.Position = s.layout.Position(e.Performance, e.Potential)
		e.OriginalPosition = s.layout.Position(e.OriginalPerformance, e.OriginalPotential)
		byID[e.ID] = &e
		order = append(order, e.ID)
	}

	s.mu.Lock()
	s.order = order
	s.byID = byID
	s.mu.Unlock()
}

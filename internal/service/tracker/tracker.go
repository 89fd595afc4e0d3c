package tracker

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
)

// EmployeeReader is the part of the rating store the tracker needs.
type EmployeeReader interface {
	GetByID(id string) (employee.Employee, error)
}

type Option func(*trackerImpl)

// WithDonutCell turns the tracker into a donut-mode tracker: only employees
// currently in cell may be placed, and cell is every placement's origin.
func WithDonutCell(cell grid.Position) Option {
	return func(t *trackerImpl) {
		t.kind = movement.KindDonut
		t.donutCell = cell
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *trackerImpl) {
		t.now = now
	}
}

type trackerImpl struct {
	mu        sync.RWMutex
	employees EmployeeReader
	layout    grid.Layout
	kind      movement.Kind
	donutCell grid.Position
	now       func() time.Time
	moves     map[string]movement.Movement
}

func NewTracker(employees EmployeeReader, layout grid.Layout, opts ...Option) movement.Tracker {
	t := &trackerImpl{
		employees: employees,
		layout:    layout,
		kind:      movement.KindRating,
		now:       time.Now,
		moves:     make(map[string]movement.Movement),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *trackerImpl) Kind() movement.Kind {
	return t.kind
}

// origin returns the position a movement for emp is measured from.
func (t *trackerImpl) origin(emp employee.Employee) (grid.Position, error) {
	if t.kind != movement.KindDonut {
		return emp.OriginalPosition, nil
	}
	if emp.Position != t.donutCell {
		return 0, fmt.Errorf("%w: %s is in %s", movement.ErrNotInDonutCell, emp.ID, t.layout.Label(emp.Position))
	}
	return t.donutCell, nil
}

// RecordMove implements movement.Tracker.
func (t *trackerImpl) RecordMove(employeeID string, newPosition grid.Position, note *string) (movement.Movement, bool, error) {
	if !newPosition.Valid() {
		return movement.Movement{}, false, fmt.Errorf("%w: %d", grid.ErrInvalidPosition, newPosition)
	}

	emp, err := t.employees.GetByID(employeeID)
	if err != nil {
		return movement.Movement{}, false, err
	}
	from, err := t.origin(emp)
	if err != nil {
		return movement.Movement{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, had := t.moves[employeeID]

	if newPosition == from {
		if had {
			delete(t.moves, employeeID)
			slog.Debug("Movement cleared", "kind", t.kind, "employee_id", employeeID)
		}
		return movement.Movement{}, false, nil
	}

	if had && existing.CurrentPosition == newPosition && (note == nil || *note == existing.Note) {
		return existing, true, nil
	}

	m := movement.Movement{
		EmployeeID:       employeeID,
		EmployeeName:     emp.Name,
		OriginalPosition: from,
		CurrentPosition:  newPosition,
		Description:      t.layout.Describe(from, newPosition),
		ModifiedAt:       t.now(),
	}
	if had {
		m.Note = existing.Note
	}
	if note != nil {
		m.Note = *note
	}
	t.moves[employeeID] = m

	slog.Debug("Movement recorded", "kind", t.kind, "employee_id", employeeID, "from", from, "to", newPosition)
	return m, true, nil
}

// SetNote implements movement.Tracker. Notes only live on active movements.
func (t *trackerImpl) SetNote(employeeID string, text string) (movement.Movement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.moves[employeeID]
	if !ok {
		return movement.Movement{}, fmt.Errorf("%w: %s", movement.ErrNoActiveMovement, employeeID)
	}
	if m.Note == text {
		return m, nil
	}
	m.Note = text
	m.ModifiedAt = t.now()
	t.moves[employeeID] = m
	return m, nil
}

// ListMovements implements movement.Tracker, ordered by employee ID.
func (t *trackerImpl) ListMovements() []movement.Movement {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]movement.Movement, 0, len(t.moves))
	for _, m := range t.moves {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func (t *trackerImpl) Get(employeeID string) (movement.Movement, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.moves[employeeID]
	return m, ok
}

// ClassifyBigMover implements movement.Tracker.
func (t *trackerImpl) ClassifyBigMover(m movement.Movement) bool {
	return t.layout.IsBigMove(m.OriginalPosition, m.CurrentPosition)
}

func (t *trackerImpl) Clear(employeeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.moves, employeeID)
}

func (t *trackerImpl) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moves = make(map[string]movement.Movement)
}

// Restore replaces all movements. Entries sitting at their origin are dropped
// and descriptions are regenerated from the layout.
func (t *trackerImpl) Restore(movements []movement.Movement) {
	moves := make(map[string]movement.Movement, len(movements))
	for _, m := range movements {
		if m.OriginalPosition == m.CurrentPosition {
			continue
		}
		m.Description = t.layout.Describe(m.OriginalPosition, m.CurrentPosition)
		moves[m.EmployeeID] = m
	}

	t.mu.Lock()
	t.moves = moves
	t.mu.Unlock()
}

func (t *trackerImpl) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.moves)
}

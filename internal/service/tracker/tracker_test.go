package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, id)
	}
	return e, nil
}

func newFixture() (fakeEmployees, *time.Time) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return fakeEmployees{
		"E": {ID: "E", Name: "Eve", Position: 2, OriginalPosition: 2},
		"C": {ID: "C", Name: "Cora", Position: 5, OriginalPosition: 5},
	}, &now
}

func newTestTracker(emps fakeEmployees, now *time.Time, opts ...Option) movement.Tracker {
	opts = append(opts, WithClock(func() time.Time { return *now }))
	return NewTracker(emps, grid.Standard(), opts...)
}

func strPtr(s string) *string { return &s }

func TestTracker_RecordMove_LowToHigh(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)
	layout := grid.Standard()

	m, active, err := tr.RecordMove("E", 9, nil)
	require.NoError(t, err)
	assert.True(t, active)

	list := tr.ListMovements()
	require.Len(t, list, 1)
	assert.Equal(t, "E", list[0].EmployeeID)
	assert.Equal(t, fmt.Sprintf("Moved from %s to %s", layout.Label(2), layout.Label(9)), list[0].Description)
	assert.Equal(t, "Moved from Inconsistent [L,M] to Star [H,H]", m.Description)
	assert.True(t, tr.ClassifyBigMover(list[0]))
}

func TestTracker_RecordMove_BackToOrigin(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, active, err := tr.RecordMove("E", 6, strPtr("promising"))
	require.NoError(t, err)
	assert.True(t, active)

	_, active, err = tr.RecordMove("E", 2, nil)
	require.NoError(t, err)
	assert.False(t, active)

	assert.Empty(t, tr.ListMovements())
	_, ok := tr.Get("E")
	assert.False(t, ok)
}

func TestTracker_RecordMove_NetDeltaOnly(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, _, err := tr.RecordMove("E", 6, nil)
	require.NoError(t, err)
	_, _, err = tr.RecordMove("E", 8, nil)
	require.NoError(t, err)

	m, ok := tr.Get("E")
	require.True(t, ok)
	assert.Equal(t, grid.Position(2), m.OriginalPosition)
	assert.Equal(t, grid.Position(8), m.CurrentPosition)
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_RecordMove_PreservesNote(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, _, err := tr.RecordMove("E", 6, strPtr("calibrated up"))
	require.NoError(t, err)

	m, _, err := tr.RecordMove("E", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "calibrated up", m.Note)

	m, _, err = tr.RecordMove("E", 4, strPtr("revised"))
	require.NoError(t, err)
	assert.Equal(t, "revised", m.Note)
}

func TestTracker_RecordMove_Idempotent(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	first, _, err := tr.RecordMove("E", 6, strPtr("n"))
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	second, _, err := tr.RecordMove("E", 6, strPtr("n"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_RecordMove_Errors(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, _, err := tr.RecordMove("missing", 3, nil)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, _, err = tr.RecordMove("E", 0, nil)
	assert.ErrorIs(t, err, grid.ErrInvalidPosition)

	_, _, err = tr.RecordMove("E", 10, nil)
	assert.ErrorIs(t, err, grid.ErrInvalidPosition)
}

func TestTracker_SetNote(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, err := tr.SetNote("E", "no move yet")
	assert.ErrorIs(t, err, movement.ErrNoActiveMovement)

	_, _, err = tr.RecordMove("E", 3, nil)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	m, err := tr.SetNote("E", "stretch assignment")
	require.NoError(t, err)
	assert.Equal(t, "stretch assignment", m.Note)
	assert.Equal(t, *now, m.ModifiedAt)

	got, ok := tr.Get("E")
	require.True(t, ok)
	assert.Equal(t, "stretch assignment", got.Note)
}

func TestTracker_ClassifyBigMover(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	cases := []struct {
		from, to grid.Position
		want     bool
	}{
		{1, 9, true},
		{9, 1, true},
		{4, 6, true},
		{8, 3, true},
		{2, 5, false},
		{5, 9, false},
		{7, 1, false},
		{1, 4, false},
		{6, 9, false},
		{5, 7, false},
	}
	for _, c := range cases {
		got := tr.ClassifyBigMover(movement.Movement{OriginalPosition: c.from, CurrentPosition: c.to})
		assert.Equal(t, c.want, got, "move %d -> %d", c.from, c.to)
	}
}

func TestTracker_Donut(t *testing.T) {
	emps, now := newFixture()
	donut := newTestTracker(emps, now, WithDonutCell(5))
	assert.Equal(t, movement.KindDonut, donut.Kind())

	_, _, err := donut.RecordMove("E", 9, nil)
	assert.ErrorIs(t, err, movement.ErrNotInDonutCell)

	m, active, err := donut.RecordMove("C", 9, strPtr("what if"))
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, grid.Position(5), m.OriginalPosition)
	assert.Equal(t, "Moved from Core Talent [M,M] to Star [H,H]", m.Description)

	_, active, err = donut.RecordMove("C", 5, nil)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 0, donut.Len())
}

func TestTracker_ClearResetRestore(t *testing.T) {
	emps, now := newFixture()
	tr := newTestTracker(emps, now)

	_, _, err := tr.RecordMove("E", 9, nil)
	require.NoError(t, err)
	tr.Clear("E")
	assert.Equal(t, 0, tr.Len())

	_, _, err = tr.RecordMove("E", 9, nil)
	require.NoError(t, err)
	tr.Reset()
	assert.Equal(t, 0, tr.Len())

	tr.Restore([]movement.Movement{
		{EmployeeID: "E", OriginalPosition: 2, CurrentPosition: 8, Note: "kept"},
		{EmployeeID: "C", OriginalPosition: 5, CurrentPosition: 5},
	})
	require.Equal(t, 1, tr.Len())
	m, ok := tr.Get("E")
	require.True(t, ok)
	assert.Equal(t, "kept", m.Note)
	assert.Equal(t, "Moved from Inconsistent [L,M] to High Impact [H,M]", m.Description)
}

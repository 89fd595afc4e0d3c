package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/workbook"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/events"
	anomalyService "github.com/ninebox-hr/ninebox-backend-go/internal/service/anomaly"
	exportService "github.com/ninebox-hr/ninebox-backend-go/internal/service/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/importer"
)

// Options carries the settings the coordinator needs beyond its collaborators.
type Options struct {
	ProductName string
	Now         func() time.Time
}

type sessionServiceImpl struct {
	mu sync.RWMutex

	layout   grid.Layout
	store    employee.RatingStore
	tracker  movement.Tracker
	donut    movement.Tracker
	detector anomaly.Detector
	scorer   anomaly.Scorer
	importer importer.ImportService
	exporter exportService.ExportService
	repo     session.SessionRepository
	hub      *events.Hub

	productName string
	now         func() time.Time

	id           string
	fileName     string
	sheet        workbook.Sheet
	loaded       bool
	importedAt   time.Time
	updatedAt    time.Time
	version      uint64
	savedVersion uint64
}

// NewSessionService wires the coordinator. repo and hub may be nil: without a
// repository snapshots cannot be saved, without a hub nothing is published.
func NewSessionService(
	layout grid.Layout,
	store employee.RatingStore,
	tracker movement.Tracker,
	donut movement.Tracker,
	detector anomaly.Detector,
	scorer anomaly.Scorer,
	importSvc importer.ImportService,
	exportSvc exportService.ExportService,
	repo session.SessionRepository,
	hub *events.Hub,
	opts Options,
) session.SessionService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &sessionServiceImpl{
		layout:      layout,
		store:       store,
		tracker:     tracker,
		donut:       donut,
		detector:    detector,
		scorer:      scorer,
		importer:    importSvc,
		exporter:    exportSvc,
		repo:        repo,
		hub:         hub,
		productName: opts.ProductName,
		now:         now,
	}
}

func (s *sessionServiceImpl) Layout() grid.Layout {
	return s.layout
}

func (s *sessionServiceImpl) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// touch marks the session dirty. Caller holds the write lock.
func (s *sessionServiceImpl) touch() {
	s.version++
	s.updatedAt = s.now()
}

func (s *sessionServiceImpl) publish(eventType session.EventType, subject string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(events.Event{
		Topic:   s.id,
		Type:    string(eventType),
		Subject: subject,
		Data:    data,
	})
}

// Import implements session.SessionService. The workbook is parsed before the
// lock is taken; a failed import leaves the previous dataset untouched.
func (s *sessionServiceImpl) Import(ctx context.Context, req session.ImportRequest) (session.ImportResponse, error) {
	parsed, err := s.importer.Import(ctx, req.Reader, req.FileName, req.SheetName)
	if err != nil {
		return session.ImportResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(parsed.Rows); err != nil {
		return session.ImportResponse{}, err
	}
	s.tracker.Reset()
	s.donut.Reset()

	s.id = uuid.NewString()
	s.fileName = req.FileName
	s.sheet = parsed.Sheet
	s.loaded = true
	s.importedAt = s.now()
	s.touch()

	slog.Info("Dataset imported", "session_id", s.id, "file", req.FileName, "employees", s.store.Len())

	resp := session.ImportResponse{
		SessionID: s.id,
		FileName:  req.FileName,
		SheetName: parsed.Sheet.Name,
		Employees: s.store.Len(),
		Columns:   append([]string(nil), parsed.Sheet.Header...),
	}
	s.publish(session.EventImported, "", resp)
	return resp, nil
}

func (s *sessionServiceImpl) Employees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, session.ErrNoDataset
	}

	all := s.store.GetAll()
	out := make([]employee.Employee, 0, len(all))
	for _, e := range all {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *sessionServiceImpl) Employee(ctx context.Context, id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return employee.Employee{}, session.ErrNoDataset
	}
	return s.store.GetByID(id)
}

// Move implements session.SessionService. The rating change and the tracker
// update happen under one lock; if the tracker rejects the move the rating is
// put back.
func (s *sessionServiceImpl) Move(ctx context.Context, req session.MoveRequest) (session.MoveResult, error) {
	if err := req.Validate(); err != nil {
		return session.MoveResult{}, err
	}
	target, err := req.Target(s.layout)
	if err != nil {
		return session.MoveResult{}, err
	}
	perf, pot, err := s.layout.Ratings(target)
	if err != nil {
		return session.MoveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return session.MoveResult{}, session.ErrNoDataset
	}

	before, err := s.store.GetByID(req.EmployeeID)
	if err != nil {
		return session.MoveResult{}, err
	}
	emp, err := s.store.SetRating(req.EmployeeID, perf, pot)
	if err != nil {
		return session.MoveResult{}, err
	}

	m, active, err := s.tracker.RecordMove(req.EmployeeID, emp.Position, req.Note)
	if err != nil {
		if _, rbErr := s.store.SetRating(req.EmployeeID, before.Performance, before.Potential); rbErr != nil {
			return session.MoveResult{}, fmt.Errorf("rollback rating: %v (original error: %w)", rbErr, err)
		}
		return session.MoveResult{}, err
	}

	if emp.Position != before.Position {
		if _, placed := s.donut.Get(req.EmployeeID); placed {
			s.donut.Clear(req.EmployeeID)
			s.publish(session.EventDonutCleared, req.EmployeeID, nil)
		}
	}
	s.touch()

	result := session.MoveResult{Employee: emp, Movement: m, Active: active}
	if active {
		result.BigMover = s.tracker.ClassifyBigMover(m)
		s.publish(session.EventMoveRecorded, req.EmployeeID, m)
	} else {
		s.publish(session.EventMoveCleared, req.EmployeeID, nil)
	}

	slog.Debug("Move recorded", "employee_id", req.EmployeeID, "position", emp.Position, "active", active)
	return result, nil
}

func (s *sessionServiceImpl) SetNote(ctx context.Context, req session.NoteRequest) (movement.Movement, error) {
	return s.setNote(req, s.tracker)
}

func (s *sessionServiceImpl) SetDonutNote(ctx context.Context, req session.NoteRequest) (movement.Movement, error) {
	return s.setNote(req, s.donut)
}

func (s *sessionServiceImpl) setNote(req session.NoteRequest, t movement.Tracker) (movement.Movement, error) {
	if err := req.Validate(); err != nil {
		return movement.Movement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return movement.Movement{}, session.ErrNoDataset
	}
	m, err := t.SetNote(req.EmployeeID, req.Note)
	if err != nil {
		return movement.Movement{}, err
	}
	s.touch()
	s.publish(session.EventNoteUpdated, req.EmployeeID, m)
	return m, nil
}

func (s *sessionServiceImpl) Movements(ctx context.Context) ([]movement.Movement, error) {
	return s.list(s.tracker)
}

func (s *sessionServiceImpl) DonutMovements(ctx context.Context) ([]movement.Movement, error) {
	return s.list(s.donut)
}

func (s *sessionServiceImpl) list(t movement.Tracker) ([]movement.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, session.ErrNoDataset
	}
	return t.ListMovements(), nil
}

// DonutMove places an employee in Donut mode. Ratings are never touched.
func (s *sessionServiceImpl) DonutMove(ctx context.Context, req session.MoveRequest) (session.MoveResult, error) {
	if err := req.Validate(); err != nil {
		return session.MoveResult{}, err
	}
	target, err := req.Target(s.layout)
	if err != nil {
		return session.MoveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return session.MoveResult{}, session.ErrNoDataset
	}

	emp, err := s.store.GetByID(req.EmployeeID)
	if err != nil {
		return session.MoveResult{}, err
	}
	m, active, err := s.donut.RecordMove(req.EmployeeID, target, req.Note)
	if err != nil {
		return session.MoveResult{}, err
	}
	s.touch()

	result := session.MoveResult{Employee: emp, Movement: m, Active: active}
	if active {
		result.BigMover = s.donut.ClassifyBigMover(m)
		s.publish(session.EventDonutRecorded, req.EmployeeID, m)
	} else {
		s.publish(session.EventDonutCleared, req.EmployeeID, nil)
	}
	return result, nil
}

func (s *sessionServiceImpl) Analyze(ctx context.Context, dimension anomaly.Dimension) ([]anomaly.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, session.ErrNoDataset
	}
	return s.detector.Analyze(dimension)
}

func (s *sessionServiceImpl) Report(ctx context.Context) (anomaly.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return anomaly.Report{}, session.ErrNoDataset
	}
	byDimension := s.detector.AnalyzeAll()
	records := anomalyService.Flatten(byDimension)
	return anomaly.Report{
		Records:      records,
		ByDimension:  byDimension,
		QualityScore: s.scorer.Score(records),
	}, nil
}

func (s *sessionServiceImpl) Score(ctx context.Context) (int, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return 0, err
	}
	return report.QualityScore, nil
}

// Export implements session.SessionService. Readers keep going while the
// file is written; moves wait.
func (s *sessionServiceImpl) Export(ctx context.Context, req export.ExportRequest) (export.Result, error) {
	if err := req.Validate(); err != nil {
		return export.Result{State: export.StateFailed, Path: req.Path, Err: err}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return export.Result{State: export.StateFailed, Path: req.Path, Err: session.ErrNoDataset}, session.ErrNoDataset
	}

	result, err := s.exporter.Export(ctx, s.sheet, s.store, s.tracker, s.donut, export.Options{
		ProductName: s.productName,
		Path:        req.Path,
		ExcludedIDs: req.ExcludedIDs,
		Now:         s.now(),
		NoOverwrite: req.NoOverwrite,
	})
	if err != nil {
		s.publish(session.EventExportFailed, "", err.Error())
		return result, err
	}
	s.publish(session.EventExported, "", result.Path)
	return result, nil
}

func (s *sessionServiceImpl) OpenExport(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := export.ValidatePath(path); err != nil {
		return nil, err
	}
	return s.exporter.Open(ctx, path)
}

func (s *sessionServiceImpl) Snapshot(ctx context.Context) (session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return session.Snapshot{}, session.ErrNoDataset
	}
	return s.snapshotLocked(), nil
}

func (s *sessionServiceImpl) snapshotLocked() session.Snapshot {
	return session.Snapshot{
		ID:             s.id,
		FileName:       s.fileName,
		Sheet:          s.sheet.Clone(),
		Employees:      s.store.GetAll(),
		Movements:      s.tracker.ListMovements(),
		DonutMovements: s.donut.ListMovements(),
		ImportedAt:     s.importedAt,
		UpdatedAt:      s.updatedAt,
	}
}

// Save persists the current state. Changes made while the write is in flight
// keep the session dirty.
func (s *sessionServiceImpl) Save(ctx context.Context) (session.Snapshot, error) {
	if s.repo == nil {
		return session.Snapshot{}, session.ErrPersistenceOff
	}

	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		return session.Snapshot{}, session.ErrNoDataset
	}
	snap := s.snapshotLocked()
	version := s.version
	s.mu.RUnlock()

	if err := s.repo.Save(ctx, snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("save session %s: %w", snap.ID, err)
	}

	s.mu.Lock()
	if s.id == snap.ID && version > s.savedVersion {
		s.savedVersion = version
	}
	s.mu.Unlock()

	slog.Info("Session saved", "session_id", snap.ID, "employees", len(snap.Employees), "movements", len(snap.Movements))
	s.publish(session.EventSnapshotSaved, "", snap.ID)
	return snap, nil
}

func (s *sessionServiceImpl) Restore(ctx context.Context, id string) error {
	if s.repo == nil {
		return session.ErrPersistenceOff
	}
	if err := validSnapshotID(id); err != nil {
		return err
	}

	snap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Restore(snap.Employees)
	s.tracker.Restore(snap.Movements)
	s.donut.Restore(snap.DonutMovements)

	s.id = snap.ID
	s.fileName = snap.FileName
	s.sheet = snap.Sheet.Clone()
	s.loaded = true
	s.importedAt = snap.ImportedAt
	s.updatedAt = snap.UpdatedAt
	s.version++
	s.savedVersion = s.version

	slog.Info("Session restored", "session_id", snap.ID, "employees", len(snap.Employees))
	s.publish(session.EventRestored, "", snap.ID)
	return nil
}

func (s *sessionServiceImpl) DeleteSnapshot(ctx context.Context, id string) error {
	if s.repo == nil {
		return session.ErrPersistenceOff
	}
	if err := validSnapshotID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Session snapshot deleted", "session_id", id)
	return nil
}

// validSnapshotID rejects ids that cannot name a stored snapshot.
func validSnapshotID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
	}
	return nil
}

// AutoSave saves only when something changed since the last save.
func (s *sessionServiceImpl) AutoSave(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	s.mu.RLock()
	dirty := s.loaded && s.version != s.savedVersion
	s.mu.RUnlock()

	if !dirty {
		return nil
	}
	_, err := s.Save(ctx)
	return err
}

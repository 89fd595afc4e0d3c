package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/employee"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/movement"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	"github.com/ninebox-hr/ninebox-backend-go/internal/handler/http/response"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/events"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/jwt"
)

const (
	maxUploadSize   = 32 << 20
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SessionHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	SetNote(w http.ResponseWriter, r *http.Request)
	ListMovements(w http.ResponseWriter, r *http.Request)
	DonutMove(w http.ResponseWriter, r *http.Request)
	SetDonutNote(w http.ResponseWriter, r *http.Request)
	ListDonutMovements(w http.ResponseWriter, r *http.Request)
	Anomalies(w http.ResponseWriter, r *http.Request)
	Score(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Snapshot(w http.ResponseWriter, r *http.Request)
	Restore(w http.ResponseWriter, r *http.Request)
	DeleteSnapshot(w http.ResponseWriter, r *http.Request)
	DownloadExport(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	sessionService session.SessionService
	hub            *events.Hub
	jwtService     jwt.Service
}

// NewSessionHandler builds the session handler. jwtService may be nil, in
// which case the event stream accepts any caller.
func NewSessionHandler(sessionService session.SessionService, hub *events.Hub, jwtService jwt.Service) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
		hub:            hub,
		jwtService:     jwtService,
	}
}

// Import implements SessionHandler.
func (h *sessionHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.sessionService.Import(r.Context(), session.ImportRequest{
		FileName:  fileHeader.Filename,
		SheetName: r.FormValue("sheet"),
		Reader:    file,
	})
	if err != nil {
		slog.Error("Import failed", "file", fileHeader.Filename, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Workbook imported", result)
}

// ListEmployees implements SessionHandler.
func (h *sessionHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	filter := employee.EmployeeFilter{Query: r.URL.Query().Get("q")}
	if p := r.URL.Query().Get("position"); p != "" {
		pos, err := strconv.Atoi(p)
		if err != nil {
			response.BadRequest(w, "position must be a number", nil)
			return
		}
		filter.Position = pos
	}

	emps, err := h.sessionService.Employees(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	layout := h.sessionService.Layout()
	out := make([]employee.EmployeeResponse, 0, len(emps))
	for _, e := range emps {
		out = append(out, employee.ToResponse(e, layout))
	}
	response.SuccessWithMeta(w, out, &response.Meta{
		TotalItems: len(out),
		SessionID:  h.sessionService.ID(),
	})
}

// GetEmployee implements SessionHandler.
func (h *sessionHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.sessionService.Employee(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employee.ToResponse(e, h.sessionService.Layout()))
}

func (h *sessionHandlerImpl) Move(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.sessionService.Move)
}

func (h *sessionHandlerImpl) DonutMove(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.sessionService.DonutMove)
}

func (h *sessionHandlerImpl) move(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req session.MoveRequest) (session.MoveResult, error)) {
	var req session.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Move decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, session.ToMoveResponse(result, h.sessionService.Layout()))
}

func (h *sessionHandlerImpl) SetNote(w http.ResponseWriter, r *http.Request) {
	h.setNote(w, r, h.sessionService.SetNote)
}

func (h *sessionHandlerImpl) SetDonutNote(w http.ResponseWriter, r *http.Request) {
	h.setNote(w, r, h.sessionService.SetDonutNote)
}

func (h *sessionHandlerImpl) setNote(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req session.NoteRequest) (movement.Movement, error)) {
	var req session.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetNote decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	m, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, movement.ToResponse(m, h.sessionService.Layout()))
}

func (h *sessionHandlerImpl) ListMovements(w http.ResponseWriter, r *http.Request) {
	h.listMovements(w, r, h.sessionService.Movements)
}

func (h *sessionHandlerImpl) ListDonutMovements(w http.ResponseWriter, r *http.Request) {
	h.listMovements(w, r, h.sessionService.DonutMovements)
}

func (h *sessionHandlerImpl) listMovements(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) ([]movement.Movement, error)) {
	moves, err := fn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	layout := h.sessionService.Layout()
	out := make([]movement.MovementResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, movement.ToResponse(m, layout))
	}
	response.SuccessWithMeta(w, out, &response.Meta{
		TotalItems: len(out),
		SessionID:  h.sessionService.ID(),
	})
}

// Anomalies implements SessionHandler. Without a dimension every dimension is
// analyzed and the quality score is included.
func (h *sessionHandlerImpl) Anomalies(w http.ResponseWriter, r *http.Request) {
	dim := r.URL.Query().Get("dimension")
	if dim == "" {
		report, err := h.sessionService.Report(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, anomaly.AnalysisResponse{
			Records: anomaly.ToResponses(report.Records),
			Score:   report.QualityScore,
		})
		return
	}

	dimension, err := anomaly.ParseDimension(dim)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	records, err := h.sessionService.Analyze(r.Context(), dimension)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	score, err := h.sessionService.Score(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, anomaly.AnalysisResponse{
		Dimension: string(dimension),
		Records:   anomaly.ToResponses(records),
		Score:     score,
	})
}

func (h *sessionHandlerImpl) Score(w http.ResponseWriter, r *http.Request) {
	score, err := h.sessionService.Score(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, map[string]int{"quality_score": score})
}

// Export implements SessionHandler.
func (h *sessionHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var req export.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Export decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.sessionService.Export(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Export written", export.ExportResponse{
		State:    string(result.State),
		Path:     result.Path,
		Rows:     result.Rows,
		Modified: result.Modified,
	})
}

// Snapshot implements SessionHandler: the current state is persisted and returned.
func (h *sessionHandlerImpl) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionService.Save(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Session saved", map[string]interface{}{
		"session_id": snap.ID,
		"updated_at": snap.UpdatedAt,
		"employees":  len(snap.Employees),
		"movements":  len(snap.Movements),
	})
}

func (h *sessionHandlerImpl) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sessionService.Restore(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Session restored", map[string]string{"session_id": id})
}

func (h *sessionHandlerImpl) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sessionService.DeleteSnapshot(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Session snapshot deleted", map[string]string{"session_id": id})
}

// DownloadExport streams a previously written export back to the caller.
func (h *sessionHandlerImpl) DownloadExport(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	rc, err := h.sessionService.OpenExport(r.Context(), path)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(path)}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Export download interrupted", "path", path, "error", err)
	}
}

// Stream handles the server-sent event connection carrying session state changes
func (h *sessionHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot set headers, so the token travels in the query string
	if h.jwtService != nil {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}
		if _, err := h.jwtService.ValidateStreamToken(tokenStr); err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	stream, cleanup := h.hub.Subscribe("")
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"session_id\":%q}\n\n", h.sessionService.ID())
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-stream:
			if !ok {
				return
			}
			data, err := json.Marshal(map[string]interface{}{
				"session_id":  event.Topic,
				"employee_id": event.Subject,
				"data":        event.Data,
			})
			if err != nil {
				slog.Warn("Failed to encode event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

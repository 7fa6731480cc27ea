package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createPartRequest struct {
	Title string `json:"title"`
}

type createSectionRequest struct {
	Title         string  `json:"title"`
	ReferenceLink *string `json:"reference_link"`
	DurationDays  *int    `json:"duration_days"`
}

type createStepRequest struct {
	Title                  string  `json:"title"`
	Kind                   string  `json:"kind"`
	ReferenceLink          *string `json:"reference_link"`
	PlannedDurationMinutes *int    `json:"planned_duration_minutes"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type reorderRequest struct {
	Level     string `json:"level"`
	ParentID  int64  `json:"parent_id"`
	ItemID    int64  `json:"item_id"`
	Direction string `json:"direction"`
}

// handleGetCurriculum handles GET /api/v1/curriculum
func (s *Server) handleGetCurriculum(w http.ResponseWriter, r *http.Request) {
	tree, err := s.deps.CurriculumTree.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTree(tree))
}

// handleCreatePart handles POST /api/v1/curriculum/parts
func (s *Server) handleCreatePart(w http.ResponseWriter, r *http.Request) {
	var req createPartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	part, err := s.deps.Curriculum.CreatePart(r.Context(), command.CreatePartCommand{Title: req.Title})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presentPart(part))
}

// handleCreateSection handles POST /api/v1/curriculum/parts/{id}/sections
func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	partID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req createSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	section, err := s.deps.Curriculum.CreateSection(r.Context(), command.CreateSectionCommand{
		PartID:        partID,
		Title:         req.Title,
		ReferenceLink: req.ReferenceLink,
		DurationDays:  req.DurationDays,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presentSection(section))
}

// handleCreateStep handles POST /api/v1/curriculum/sections/{id}/steps
func (s *Server) handleCreateStep(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req createStepRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	step, err := s.deps.Curriculum.CreateStep(r.Context(), command.CreateStepCommand{
		SectionID:              sectionID,
		Title:                  req.Title,
		Kind:                   req.Kind,
		ReferenceLink:          req.ReferenceLink,
		PlannedDurationMinutes: req.PlannedDurationMinutes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presentStep(step))
}

// handleRename handles PATCH /api/v1/curriculum/{level}/{id}
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	level, id, err := pathItem(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Curriculum.Rename(r.Context(), command.RenameCommand{Level: level, ID: id, Title: req.Title}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDelete handles DELETE /api/v1/curriculum/{level}/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	level, id, err := pathItem(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Curriculum.Delete(r.Context(), command.DeleteCommand{Level: level, ID: id}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReorder handles POST /api/v1/curriculum/reorder
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Reorder.Handle(r.Context(), command.ReorderCommand{
		Level:     curriculum.Level(req.Level),
		ParentID:  req.ParentID,
		ItemID:    req.ItemID,
		Direction: curriculum.Direction(req.Direction),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"moved": res.Moved})
}

// handleImport handles POST /api/v1/curriculum/import with a YAML body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, shared.WrapError("http", "Import", shared.ErrValidation, "cannot read body", err))
		return
	}
	onlyIfEmpty, _ := strconv.ParseBool(r.URL.Query().Get("only_if_empty"))

	res, err := s.deps.ImportCurriculum.Handle(r.Context(), command.ImportCurriculumCommand{
		Data:        data,
		OnlyIfEmpty: onlyIfEmpty,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"skipped":  res.Skipped,
		"parts":    res.Parts,
		"sections": res.Sections,
		"steps":    res.Steps,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION LIFECYCLE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type startInternshipRequest struct {
	TrainerID    int64 `json:"trainer_id"`
	TradePointID int64 `json:"trade_point_id"`
	WasLate      bool  `json:"was_late"`
}

type finishInternshipRequest struct {
	Issues  string `json:"issues"`
	Comment string `json:"comment"`
}

type completeTrainingRequest struct {
	SessionID int64 `json:"session_id"`
}

type stepResultRequest struct {
	ActorID  int64  `json:"actor_id"`
	MediaRef string `json:"media_ref"`
}

// handleListSessions handles GET /api/v1/trainees/{id}/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	traineeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sessions, err := s.deps.ListSessions.Handle(r.Context(), traineeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]*sessionView, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, presentSession(sess))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleStartInternship handles POST /api/v1/trainees/{id}/sessions
func (s *Server) handleStartInternship(w http.ResponseWriter, r *http.Request) {
	traineeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req startInternshipRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.StartInternship.Handle(r.Context(), command.StartInternshipCommand{
		TraineeID:    traineeID,
		TrainerID:    req.TrainerID,
		TradePointID: req.TradePointID,
		WasLate:      req.WasLate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presentSession(res.Session))
}

// handleFinishInternship handles POST /api/v1/sessions/{id}/finish
func (s *Server) handleFinishInternship(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req finishInternshipRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.FinishInternship.Handle(r.Context(), command.FinishInternshipCommand{
		SessionID: sessionID,
		Issues:    req.Issues,
		Comment:   req.Comment,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"finished": res.Finished,
		"session":  presentSession(res.Session),
	})
}

// handleCancelInternship handles POST /api/v1/sessions/{id}/cancel
func (s *Server) handleCancelInternship(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	session, err := s.deps.CancelInternship.Handle(r.Context(), command.CancelInternshipCommand{SessionID: sessionID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentSession(session))
}

// handleCompleteTraining handles POST /api/v1/trainees/{id}/training/complete
func (s *Server) handleCompleteTraining(w http.ResponseWriter, r *http.Request) {
	traineeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req completeTrainingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.CompleteTraining.Handle(r.Context(), command.CompleteTrainingCommand{
		SessionID: req.SessionID,
		TraineeID: traineeID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"session":     presentSession(res.Session),
		"frozen":      res.Frozen,
		"total_steps": res.TotalSteps,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleToggleStep handles POST /api/v1/sessions/{id}/steps/{stepID}/toggle
func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	sessionID, stepID, req, ok := s.stepRequest(w, r)
	if !ok {
		return
	}
	res, err := s.deps.RecordStep.Toggle(r.Context(), command.ToggleStepCommand{
		SessionID: sessionID,
		StepID:    stepID,
		ActorID:   req.ActorID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"is_passed": res.IsPassed})
}

// handleSubmitMedia handles POST /api/v1/sessions/{id}/steps/{stepID}/media
func (s *Server) handleSubmitMedia(w http.ResponseWriter, r *http.Request) {
	sessionID, stepID, req, ok := s.stepRequest(w, r)
	if !ok {
		return
	}
	err := s.deps.RecordStep.SubmitMedia(r.Context(), command.SubmitMediaCommand{
		SessionID: sessionID,
		StepID:    stepID,
		ActorID:   req.ActorID,
		MediaRef:  req.MediaRef,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"is_passed": true})
}

func (s *Server) stepRequest(w http.ResponseWriter, r *http.Request) (int64, int64, stepResultRequest, bool) {
	var req stepResultRequest
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return 0, 0, req, false
	}
	stepID, err := pathID(r, "stepID")
	if err != nil {
		s.writeError(w, r, err)
		return 0, 0, req, false
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return 0, 0, req, false
	}
	return sessionID, stepID, req, true
}

// handleSessionProgress handles GET /api/v1/sessions/{id}/progress
func (s *Server) handleSessionProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.deps.Progress.Session(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentSessionProgress(p))
}

// handleTraineeProgress handles GET /api/v1/trainees/{id}/progress
func (s *Server) handleTraineeProgress(w http.ResponseWriter, r *http.Request) {
	traineeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.deps.Progress.Trainee(r.Context(), traineeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presentTraineeProgress(p))
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON decodes the request body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return shared.WrapError("http", "Decode", shared.ErrValidation, "malformed JSON body", err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewDomainError("http", "Path", shared.ErrValidation, "invalid "+name)
	}
	return id, nil
}

var levelsByPath = map[string]curriculum.Level{
	"parts":    curriculum.LevelPart,
	"sections": curriculum.LevelSection,
	"steps":    curriculum.LevelStep,
}

func pathItem(r *http.Request) (curriculum.Level, int64, error) {
	level, ok := levelsByPath[r.PathValue("level")]
	if !ok {
		return "", 0, shared.NewDomainError("http", "Path", shared.ErrNotFound, "unknown curriculum level")
	}
	id, err := pathID(r, "id")
	if err != nil {
		return "", 0, err
	}
	return level, id, nil
}

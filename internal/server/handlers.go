package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/db"
	"github.com/jonathan/campaign-composer/internal/types"
)

// RunCreateRequest represents the request to create a new pipeline run
type RunCreateRequest struct {
	Name string `json:"name"` // optional display name
}

// RunCreateResponse represents the response for creating a run
type RunCreateResponse struct {
	RunID        string   `json:"run_id"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"created_at"`
	CurrentStage string   `json:"current_stage"`
	Stages       []string `json:"stages"`
}

// RunStatusResponse represents the state of a run's pipeline
type RunStatusResponse struct {
	RunID           string   `json:"run_id"`
	CurrentStage    string   `json:"current_stage"`
	CompletedStages []string `json:"completed_stages"`
	CanAdvance      bool     `json:"can_advance"`
}

// StageRunRequest carries the caller-supplied parameters for a stage execution
type StageRunRequest struct {
	Description  string `json:"description,omitempty"`   // describe
	AudienceHint string `json:"audience_hint,omitempty"` // describe (optional)
	ListID       string `json:"list_id,omitempty"`       // select_audience
	Goals        string `json:"goals,omitempty"`         // segment
	SegmentID    string `json:"segment_id,omitempty"`    // pitch
}

// StageRunResponse represents the response for executing a stage
type StageRunResponse struct {
	RunID      string `json:"run_id"`
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	DurationMs int    `json:"duration_ms"`
	Artifact   any    `json:"artifact"`
}

// SegmentEditRequest carries the editable segment fields. Absent fields are
// left unchanged.
type SegmentEditRequest struct {
	Name           *string `json:"name,omitempty"`
	MessagingAngle *string `json:"messaging_angle,omitempty"`
}

// handleCreateRun creates a new pipeline run with a fresh controller and store
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunCreateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Name == "" {
		req.Name = "untitled campaign"
	}

	// Persistence is write-through: without a database the run lives only in
	// the session registry.
	runID := uuid.New()
	if s.db != nil {
		id, err := s.db.CreateRun(r.Context(), req.Name)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to create run: "+err.Error())
			return
		}
		runID = id
	}

	s.sessions.add(runID, s.newController())

	var stages []string
	for _, info := range campaign.Stages() {
		stages = append(stages, string(info.ID))
	}

	s.jsonResponse(w, http.StatusCreated, RunCreateResponse{
		RunID:        runID.String(),
		Status:       "building",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		CurrentStage: string(campaign.StageDescribe),
		Stages:       stages,
	})
}

// handleGetRun returns the pipeline state for a run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	s.jsonResponse(w, http.StatusOK, s.runStatus(sess))
}

// handleAbandonRun marks the run abandoned and drops its session
func (s *Server) handleAbandonRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if s.db != nil {
		if err := s.db.CompleteRun(r.Context(), sess.runID, db.RunStatusAbandoned); err != nil {
			log.Printf("Warning: failed to mark run abandoned: %v", err)
		}
	}
	s.sessions.remove(sess.runID)

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"run_id": sess.runID.String(),
		"status": "abandoned",
	})
}

// handleRunStage executes one stage executor and stores its artifact
func (s *Server) handleRunStage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	stage, ok := s.parseStage(w, r)
	if !ok {
		return
	}

	var req StageRunRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	start := time.Now()
	artifact, err := sess.controller.RunStage(r.Context(), stage, stageInput(req))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.persistArtifact(r, sess, stage)

	s.jsonResponse(w, http.StatusOK, StageRunResponse{
		RunID:      sess.runID.String(),
		Stage:      string(stage),
		Status:     "completed",
		DurationMs: int(time.Since(start).Milliseconds()),
		Artifact:   artifact,
	})
}

// handleRunStageStream executes a stage while streaming progress events over SSE
func (s *Server) handleRunStageStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	stage, ok := s.parseStage(w, r)
	if !ok {
		return
	}

	var req StageRunRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The running event is flushed before the blocking call so clients see
	// progress immediately; the result follows when the executor returns.
	sse.WriteStage(string(stage), "running")

	artifact, runErr := sess.controller.RunStage(r.Context(), stage, stageInput(req))
	if runErr != nil {
		sse.WriteError(runErr.Error())
		return
	}
	s.persistArtifact(r, sess, stage)
	sse.WriteEvent("artifact", artifact) //nolint:errcheck
	sse.WriteStage(string(stage), "completed")
}

// handleGetArtifact returns the stored artifact for a stage
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	stage, ok := s.parseStage(w, r)
	if !ok {
		return
	}

	artifact, present := sess.controller.GetArtifact(stage)
	if !present {
		s.errorResponse(w, http.StatusNotFound, "No artifact for stage "+string(stage))
		return
	}

	updatedAt, _ := sess.controller.Store().UpdatedAt(stage)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":     sess.runID.String(),
		"stage":      string(stage),
		"artifact":   artifact,
		"updated_at": updatedAt.UTC().Format(time.RFC3339),
	})
}

// handleAdvance marks the current stage complete and moves forward
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if err := sess.controller.Advance(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.runStatus(sess))
}

// handleRetreat moves the pipeline back one stage
func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	sess.controller.Retreat()
	s.jsonResponse(w, http.StatusOK, s.runStatus(sess))
}

// handleGoTo jumps the pipeline to an arbitrary reachable stage
func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	stage, ok := s.parseStage(w, r)
	if !ok {
		return
	}

	if err := sess.controller.GoTo(stage); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.runStatus(sess))
}

// handleEditSegment applies a user edit to one segment of the plan
func (s *Server) handleEditSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid segment index")
		return
	}

	var req SegmentEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	patch := types.SegmentPatch{Name: req.Name, MessagingAngle: req.MessagingAngle}
	if err := sess.controller.EditSegment(index, patch); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.persistArtifact(r, sess, campaign.StageSegment)

	plan := sess.controller.Store().SegmentPlan()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":  sess.runID.String(),
		"segment": plan.Segments[index],
	})
}

// handleResetRun returns the run's pipeline to its initial state
func (s *Server) handleResetRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	sess.controller.Reset()
	s.jsonResponse(w, http.StatusOK, s.runStatus(sess))
}

// lookupSession resolves the run_id path value to a live session, writing the
// error response itself when resolution fails.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run_id format")
		return nil, false
	}

	sess, ok := s.sessions.get(runID)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return nil, false
	}
	return sess, true
}

// parseStage resolves the stage path value, writing the error response itself
// when the stage is unknown.
func (s *Server) parseStage(w http.ResponseWriter, r *http.Request) (campaign.StageID, bool) {
	stage := campaign.StageID(r.PathValue("stage"))
	if !stage.Valid() {
		s.errorResponse(w, http.StatusNotFound, "Unknown stage: "+string(stage))
		return stage, false
	}
	return stage, true
}

// stageInput maps the wire request onto the executor input contract.
func stageInput(req StageRunRequest) campaign.Input {
	return campaign.Input{
		Description:  req.Description,
		AudienceHint: req.AudienceHint,
		ListID:       req.ListID,
		Goals:        req.Goals,
		SegmentID:    req.SegmentID,
	}
}

// runStatus snapshots a session's pipeline state for responses.
func (s *Server) runStatus(sess *session) RunStatusResponse {
	var completed []string
	for _, id := range sess.controller.CompletedStages() {
		completed = append(completed, string(id))
	}
	return RunStatusResponse{
		RunID:           sess.runID.String(),
		CurrentStage:    string(sess.controller.CurrentStage()),
		CompletedStages: completed,
		CanAdvance:      sess.controller.CanAdvance(),
	}
}

// persistArtifact snapshots a stage's artifact to the database. Persistence is
// write-through and best-effort: the in-memory store stays authoritative.
func (s *Server) persistArtifact(r *http.Request, sess *session, stage campaign.StageID) {
	if s.db == nil {
		return
	}
	artifact, present := sess.controller.GetArtifact(stage)
	if !present {
		return
	}
	if err := s.db.SaveArtifact(r.Context(), sess.runID, string(stage), artifact); err != nil {
		log.Printf("Warning: failed to persist %s artifact: %v", stage, err)
	}
}

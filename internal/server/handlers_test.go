package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

// stubExecutor returns a canned artifact or error for one stage.
type stubExecutor struct {
	stage    campaign.StageID
	artifact any
	err      error
}

func (s *stubExecutor) Stage() campaign.StageID { return s.stage }

func (s *stubExecutor) Execute(_ context.Context, _ campaign.Input) (any, error) {
	return s.artifact, s.err
}

func testEssence() *types.Essence {
	return &types.Essence{
		ValuePropositions: []string{"saves time"},
		Tone:              "direct",
	}
}

// setupTestServer builds a server with stub executors and no database.
func setupTestServer(t *testing.T, executors ...campaign.Executor) *Server {
	t.Helper()
	if len(executors) == 0 {
		executors = []campaign.Executor{
			&stubExecutor{stage: campaign.StageDescribe, artifact: testEssence()},
		}
	}
	return &Server{
		sessions: newSessionRegistry(),
		newController: func() *campaign.Controller {
			return campaign.New(campaign.NewStore(), executors)
		},
	}
}

func createTestRun(t *testing.T, s *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`{"name":"test"}`)))
	w := httptest.NewRecorder()
	s.handleCreateRun(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp RunCreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.RunID
}

func TestHandleCreateRun(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`{"name":"spring launch"}`)))
	w := httptest.NewRecorder()
	s.handleCreateRun(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp RunCreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "building", resp.Status)
	assert.Equal(t, "describe", resp.CurrentStage)
	assert.Len(t, resp.Stages, 6)
}

func TestHandleGetRun_InvalidID(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/not-a-uuid", nil)
	req.SetPathValue("run_id", "not-a-uuid")
	w := httptest.NewRecorder()
	s.handleGetRun(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	s := setupTestServer(t)

	id := "11111111-1111-1111-1111-111111111111"
	req := httptest.NewRequest(http.MethodGet, "/runs/"+id, nil)
	req.SetPathValue("run_id", id)
	w := httptest.NewRecorder()
	s.handleGetRun(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRunStage(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	body, _ := json.Marshal(StageRunRequest{Description: "We sell onboarding software"})
	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/describe", bytes.NewReader(body))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "describe")
	w := httptest.NewRecorder()
	s.handleRunStage(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp StageRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "describe", resp.Stage)
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.Artifact)
}

func TestHandleRunStage_UnknownStage(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/bogus", bytes.NewReader([]byte(`{}`)))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "bogus")
	w := httptest.NewRecorder()
	s.handleRunStage(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRunStage_ExecutionFailure(t *testing.T) {
	s := setupTestServer(t, &stubExecutor{
		stage: campaign.StageDescribe,
		err:   errors.New("model unavailable"),
	})
	runID := createTestRun(t, s)

	body, _ := json.Marshal(StageRunRequest{Description: "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/describe", bytes.NewReader(body))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "describe")
	w := httptest.NewRecorder()
	s.handleRunStage(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "model unavailable")
}

func TestHandleAdvance_NotReady(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/advance", nil)
	req.SetPathValue("run_id", runID)
	w := httptest.NewRecorder()
	s.handleAdvance(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleAdvance_AfterStage(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	// Run describe so the completion predicate holds.
	body, _ := json.Marshal(StageRunRequest{Description: "We sell onboarding software"})
	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/describe", bytes.NewReader(body))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "describe")
	s.handleRunStage(httptest.NewRecorder(), req)

	advReq := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/advance", nil)
	advReq.SetPathValue("run_id", runID)
	w := httptest.NewRecorder()
	s.handleAdvance(w, advReq)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RunStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "select_audience", resp.CurrentStage)
	assert.Equal(t, []string{"describe"}, resp.CompletedStages)
}

func TestHandleRetreat(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/retreat", nil)
	req.SetPathValue("run_id", runID)
	w := httptest.NewRecorder()
	s.handleRetreat(w, req)

	// Retreating at the first stage is a no-op.
	require.Equal(t, http.StatusOK, w.Code)
	var resp RunStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "describe", resp.CurrentStage)
}

func TestHandleGoTo_Blocked(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/goto/pitch", nil)
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "pitch")
	w := httptest.NewRecorder()
	s.handleGoTo(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleGetArtifact_Missing(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/stages/describe/artifact", nil)
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "describe")
	w := httptest.NewRecorder()
	s.handleGetArtifact(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetArtifact_Present(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	body, _ := json.Marshal(StageRunRequest{Description: "We sell onboarding software"})
	runReq := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/describe", bytes.NewReader(body))
	runReq.SetPathValue("run_id", runID)
	runReq.SetPathValue("stage", "describe")
	s.handleRunStage(httptest.NewRecorder(), runReq)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/stages/describe/artifact", nil)
	req.SetPathValue("run_id", runID)
	req.SetPathValue("stage", "describe")
	w := httptest.NewRecorder()
	s.handleGetArtifact(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "describe", resp["stage"])
	assert.NotNil(t, resp["artifact"])
	assert.NotEmpty(t, resp["updated_at"])
}

func TestHandleEditSegment(t *testing.T) {
	plan := &types.SegmentPlan{
		Segments: []types.Segment{
			{ID: "seg_1", Name: "Old name", SizeEstimatePct: 50, Priority: types.PriorityHigh},
		},
	}
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	sess, ok := s.sessions.get(mustParseUUID(t, runID))
	require.True(t, ok)
	require.NoError(t, sess.controller.Store().Put(campaign.StageSegment, plan))

	newName := "Enterprise accounts"
	body, _ := json.Marshal(SegmentEditRequest{Name: &newName})
	req := httptest.NewRequest(http.MethodPatch, "/runs/"+runID+"/segments/0", bytes.NewReader(body))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("index", "0")
	w := httptest.NewRecorder()
	s.handleEditSegment(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := sess.controller.Store().SegmentPlan()
	assert.Equal(t, "Enterprise accounts", updated.Segments[0].Name)
	assert.Equal(t, "seg_1", updated.Segments[0].ID)
}

func TestHandleEditSegment_OutOfRange(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	newName := "whatever"
	body, _ := json.Marshal(SegmentEditRequest{Name: &newName})
	req := httptest.NewRequest(http.MethodPatch, "/runs/"+runID+"/segments/5", bytes.NewReader(body))
	req.SetPathValue("run_id", runID)
	req.SetPathValue("index", "5")
	w := httptest.NewRecorder()
	s.handleEditSegment(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleResetRun(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	body, _ := json.Marshal(StageRunRequest{Description: "We sell onboarding software"})
	runReq := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/stages/describe", bytes.NewReader(body))
	runReq.SetPathValue("run_id", runID)
	runReq.SetPathValue("stage", "describe")
	s.handleRunStage(httptest.NewRecorder(), runReq)

	req := httptest.NewRequest(http.MethodPost, "/runs/"+runID+"/reset", nil)
	req.SetPathValue("run_id", runID)
	w := httptest.NewRecorder()
	s.handleResetRun(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sess, _ := s.sessions.get(mustParseUUID(t, runID))
	_, present := sess.controller.GetArtifact(campaign.StageDescribe)
	assert.False(t, present)
}

func TestHandleAbandonRun(t *testing.T) {
	s := setupTestServer(t)
	runID := createTestRun(t, s)

	req := httptest.NewRequest(http.MethodDelete, "/runs/"+runID, nil)
	req.SetPathValue("run_id", runID)
	w := httptest.NewRecorder()
	s.handleAbandonRun(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, ok := s.sessions.get(mustParseUUID(t, runID))
	assert.False(t, ok)
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

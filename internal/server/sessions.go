package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/campaign-composer/internal/campaign"
)

// session pairs one in-memory pipeline controller with its persisted run record.
// The controller's store is authoritative; the database is write-through.
type session struct {
	runID      uuid.UUID
	controller *campaign.Controller
	createdAt  time.Time
}

// sessionRegistry tracks live pipeline sessions by run id.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[uuid.UUID]*session)}
}

func (r *sessionRegistry) add(runID uuid.UUID, controller *campaign.Controller) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := &session{
		runID:      runID,
		controller: controller,
		createdAt:  time.Now(),
	}
	r.sessions[runID] = sess
	return sess
}

func (r *sessionRegistry) get(runID uuid.UUID) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[runID]
	return sess, ok
}

func (r *sessionRegistry) remove(runID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, runID)
}

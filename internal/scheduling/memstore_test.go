package scheduling

import (
	"context"
	"sync"
	"time"

	"recruiting-service/internal/audit"
	"recruiting-service/internal/model"
	"recruiting-service/internal/queue"
)

// memStore is an in-memory Store used by the engine tests. InTx runs the
// callback directly; isolation is irrelevant in single-goroutine tests.
type memStore struct {
	mu         sync.Mutex
	nextID     uint
	candidates map[uint]*model.Candidate
	users      map[uint]*model.User
	interviews map[uint]*model.Interview
	blocks     []model.BusyBlock
	history    []model.CandidateStageHistory
	notes      map[uint][]string
}

func newMemStore() *memStore {
	return &memStore{
		candidates: make(map[uint]*model.Candidate),
		users:      make(map[uint]*model.User),
		interviews: make(map[uint]*model.Interview),
		notes:      make(map[uint][]string),
	}
}

func (s *memStore) addCandidate(tenantID, id uint, stage string) {
	s.candidates[id] = &model.Candidate{ID: id, TenantID: tenantID, Stage: stage}
}

func (s *memStore) addUser(tenantID, id uint) {
	s.users[id] = &model.User{ID: id, TenantID: tenantID}
}

func (s *memStore) seedInterview(iv model.Interview) *model.Interview {
	s.nextID++
	iv.ID = s.nextID
	s.interviews[iv.ID] = &iv
	return &iv
}

func (s *memStore) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *memStore) GetCandidate(ctx context.Context, tenantID, id uint) (*model.Candidate, error) {
	c, ok := s.candidates[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) CountUsers(ctx context.Context, tenantID uint, ids []uint) (int64, error) {
	var count int64
	for _, id := range ids {
		if u, ok := s.users[id]; ok && u.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) GetInterview(ctx context.Context, tenantID, id uint) (*model.Interview, error) {
	iv, ok := s.interviews[id]
	if !ok || iv.TenantID != tenantID {
		return nil, nil
	}
	cp := *iv
	return &cp, nil
}

func (s *memStore) FindActiveInterview(ctx context.Context, tenantID, candidateID uint, after time.Time) (*model.Interview, error) {
	for _, iv := range s.interviews {
		if iv.TenantID == tenantID && iv.CandidateID == candidateID &&
			iv.Status == model.StatusScheduled && iv.Date.After(after) {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindStartingBefore(ctx context.Context, tenantID uint, before time.Time, excludeID uint) ([]model.Interview, error) {
	var out []model.Interview
	for _, iv := range s.interviews {
		if iv.TenantID != tenantID || iv.Status == model.StatusCancelled {
			continue
		}
		if excludeID != 0 && iv.ID == excludeID {
			continue
		}
		if iv.Date.Before(before) {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (s *memStore) CreateInterview(ctx context.Context, iv *model.Interview) error {
	s.nextID++
	iv.ID = s.nextID
	cp := *iv
	s.interviews[iv.ID] = &cp
	return nil
}

func (s *memStore) UpdateInterview(ctx context.Context, iv *model.Interview) error {
	cp := *iv
	s.interviews[iv.ID] = &cp
	return nil
}

func (s *memStore) CreateBusyBlocks(ctx context.Context, blocks []model.BusyBlock) error {
	s.blocks = append(s.blocks, blocks...)
	return nil
}

func (s *memStore) DeleteBusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) error {
	kept := s.blocks[:0]
	for _, b := range s.blocks {
		if b.TenantID == tenantID && b.Source == source && b.SourceID == sourceID {
			continue
		}
		kept = append(kept, b)
	}
	s.blocks = kept
	return nil
}

func (s *memStore) BusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) ([]model.BusyBlock, error) {
	var out []model.BusyBlock
	for _, b := range s.blocks {
		if b.TenantID == tenantID && b.Source == source && b.SourceID == sourceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) UpdateCandidateStage(ctx context.Context, tenantID, candidateID uint, stage string) error {
	if c, ok := s.candidates[candidateID]; ok && c.TenantID == tenantID {
		c.Stage = stage
	}
	return nil
}

func (s *memStore) CreateStageHistory(ctx context.Context, h *model.CandidateStageHistory) error {
	s.history = append(s.history, *h)
	return nil
}

func (s *memStore) AppendCandidateNote(ctx context.Context, tenantID, candidateID uint, note string) error {
	s.notes[candidateID] = append(s.notes[candidateID], note)
	return nil
}

// recordingQueue captures enqueued jobs.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []queuedJob
}

type queuedJob struct {
	queue   string
	payload interface{}
	opts    queue.JobOptions
}

func (q *recordingQueue) Enqueue(ctx context.Context, queueName string, payload interface{}, opts queue.JobOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, queuedJob{queue: queueName, payload: payload, opts: opts})
	return nil
}

func (q *recordingQueue) named(queueName string) []queuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queuedJob
	for _, j := range q.jobs {
		if j.queue == queueName {
			out = append(out, j)
		}
	}
	return out
}

// recordingAudit captures audit entries.
type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Record(ctx context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingSink captures lifecycle events, optionally failing every call.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (s *recordingSink) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
	return s.err
}

func (s *recordingSink) InterviewCreated(ctx context.Context, ev InterviewEvent) error {
	return s.record("created")
}

func (s *recordingSink) InterviewRescheduled(ctx context.Context, ev InterviewEvent) error {
	return s.record("rescheduled")
}

func (s *recordingSink) InterviewCancelled(ctx context.Context, ev InterviewEvent) error {
	return s.record("cancelled")
}

func (s *recordingSink) InterviewCompleted(ctx context.Context, ev InterviewEvent) error {
	return s.record("completed")
}

func (s *recordingSink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

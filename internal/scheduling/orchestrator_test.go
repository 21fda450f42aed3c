package scheduling

import (
	"context"
	"os"
	"testing"
	"time"

	"recruiting-service/internal/model"
	"recruiting-service/prometheus"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics("test")
	os.Exit(m.Run())
}

var (
	testNow  = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tomorrow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc          *Service
	store        *memStore
	queue        *recordingQueue
	audit        *recordingAudit
	automation   *recordingSink
	integrations *recordingSink
	side         *SideChannel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:        newMemStore(),
		queue:        &recordingQueue{},
		audit:        &recordingAudit{},
		automation:   &recordingSink{},
		integrations: &recordingSink{},
		side:         NewSideChannel(zap.NewNop()),
	}
	f.svc = NewService(f.store, f.queue, f.audit, f.automation, f.integrations,
		f.side, zap.NewNop(), WithClock(func() time.Time { return testNow }))

	// tenant 1 fixtures
	f.store.addCandidate(1, 100, "Applied")
	f.store.addCandidate(1, 101, "Applied")
	f.store.addCandidate(1, 102, "Applied")
	f.store.addUser(1, 10)
	f.store.addUser(1, 11)
	// tenant 2
	f.store.addCandidate(2, 200, "Applied")
	f.store.addUser(2, 20)
	return f
}

func (f *fixture) create(t *testing.T, in CreateInput) *model.Interview {
	t.Helper()
	iv, err := f.svc.Create(context.Background(), 1, 5, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return iv
}

func basicCreate(candidateID uint, interviewers []uint, start time.Time, mins int) CreateInput {
	return CreateInput{
		CandidateID:    candidateID,
		InterviewerIDs: interviewers,
		StartAt:        start,
		DurationMins:   mins,
	}
}

func TestCreateAcceptsDuplicateInterviewerIDs(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10, 10}, tomorrow, 30))
	if iv.Status != model.StatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", iv.Status)
	}
}

func TestCreateReservesBusyBlocks(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10, 11}, tomorrow, 45))

	if iv.Status != model.StatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", iv.Status)
	}
	blocks, _ := f.store.BusyBlocks(context.Background(), 1, model.BusyBlockSourceInterview, iv.ID)
	if len(blocks) != 2 {
		t.Fatalf("busy blocks = %d, want 2", len(blocks))
	}
	wantEnd := tomorrow.Add(45 * time.Minute)
	for _, b := range blocks {
		if !b.StartAt.Equal(tomorrow) || !b.EndAt.Equal(wantEnd) {
			t.Errorf("block window [%s, %s), want [%s, %s)", b.StartAt, b.EndAt, tomorrow, wantEnd)
		}
	}
	if got := f.audit.actions(); len(got) != 1 || got[0] != "interview.create" {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestCreateEnqueuesRemindersAndCalendarSync(t *testing.T) {
	f := newFixture(t)
	f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	reminders := f.queue.named("reminders")
	if len(reminders) != 2 {
		t.Fatalf("reminder jobs = %d, want 2 (24h and 1h)", len(reminders))
	}
	if sync := f.queue.named("calendar-sync"); len(sync) != 1 {
		t.Fatalf("calendar sync jobs = %d, want 1", len(sync))
	}
}

func TestCreateSkipsStaleReminders(t *testing.T) {
	f := newFixture(t)
	// interview two hours out: the 24h reminder would fire in the past
	soon := testNow.Add(2 * time.Hour)
	f.create(t, basicCreate(100, []uint{10}, soon, 30))

	reminders := f.queue.named("reminders")
	if len(reminders) != 1 {
		t.Fatalf("reminder jobs = %d, want 1 (24h skipped)", len(reminders))
	}
}

func TestCreateFansOutLifecycleEvents(t *testing.T) {
	f := newFixture(t)
	f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))
	f.side.Wait()

	if got := f.automation.seen(); len(got) != 1 || got[0] != "created" {
		t.Fatalf("automation events = %v", got)
	}
	if got := f.integrations.seen(); len(got) != 1 || got[0] != "created" {
		t.Fatalf("integration events = %v", got)
	}
}

func TestCreateRejectsSecondActiveInterview(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	// different interviewer, non-overlapping window: still rejected
	_, err := f.svc.Create(context.Background(), 1, 5,
		basicCreate(100, []uint{11}, tomorrow.Add(3*time.Hour), 30))
	if KindOf(err) != KindConflict {
		t.Fatalf("err = %v, want Conflict", err)
	}
	var e *Error
	if !asSchedulingError(err, &e) {
		t.Fatalf("err is not *Error: %v", err)
	}
	if e.Details["existing_interview_id"] != first.ID {
		t.Fatalf("details = %v, want existing_interview_id %d", e.Details, first.ID)
	}
}

func TestCreateRejectsOverlappingInterviewer(t *testing.T) {
	f := newFixture(t)
	f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	_, err := f.svc.Create(context.Background(), 1, 5,
		basicCreate(101, []uint{10}, tomorrow.Add(15*time.Minute), 30))
	if KindOf(err) != KindConflict {
		t.Fatalf("err = %v, want Conflict", err)
	}
}

func TestCreateAllowsBackToBack(t *testing.T) {
	f := newFixture(t)
	f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	// starts exactly when the first one ends
	if _, err := f.svc.Create(context.Background(), 1, 5,
		basicCreate(101, []uint{10}, tomorrow.Add(30*time.Minute), 30)); err != nil {
		t.Fatalf("back-to-back create failed: %v", err)
	}
}

func TestCreateUnknownCandidate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), 1, 5, basicCreate(999, []uint{10}, tomorrow, 30))
	if KindOf(err) != KindNotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestCreateCrossTenantCandidateLooksMissing(t *testing.T) {
	f := newFixture(t)
	// candidate 200 exists but belongs to tenant 2
	_, err := f.svc.Create(context.Background(), 1, 5, basicCreate(200, []uint{10}, tomorrow, 30))
	if KindOf(err) != KindNotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestCreateRejectsForeignInterviewer(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), 1, 5, basicCreate(100, []uint{10, 20}, tomorrow, 30))
	if KindOf(err) != KindBadRequest {
		t.Fatalf("err = %v, want BadRequest", err)
	}
}

func TestCreateValidatesWindow(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), 1, 5, basicCreate(100, []uint{10}, time.Time{}, 30)); KindOf(err) != KindBadRequest {
		t.Errorf("zero start: err = %v, want BadRequest", err)
	}
	if _, err := f.svc.Create(context.Background(), 1, 5, basicCreate(100, []uint{10}, tomorrow, 0)); KindOf(err) != KindBadRequest {
		t.Errorf("zero duration: err = %v, want BadRequest", err)
	}
}

func TestRescheduleMovesWindowAndBlocks(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	newStart := tomorrow.Add(4 * time.Hour)
	res, err := f.svc.Reschedule(context.Background(), 1, 5, iv.ID, RescheduleInput{
		StartAt: newStart, DurationMins: 60,
	})
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if res.HasConflicts {
		t.Fatalf("unexpected conflicts: %v", res.Conflicts)
	}
	if !res.Interview.Date.Equal(newStart) || res.Interview.DurationMins != 60 {
		t.Fatalf("interview window not updated: %+v", res.Interview)
	}
	if res.Interview.Status != model.StatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", res.Interview.Status)
	}

	blocks, _ := f.store.BusyBlocks(context.Background(), 1, model.BusyBlockSourceInterview, iv.ID)
	if len(blocks) != 1 {
		t.Fatalf("busy blocks = %d, want 1", len(blocks))
	}
	if !blocks[0].StartAt.Equal(newStart) || !blocks[0].EndAt.Equal(newStart.Add(time.Hour)) {
		t.Fatalf("block window not rewritten: %+v", blocks[0])
	}
	if notes := f.store.notes[100]; len(notes) != 1 {
		t.Fatalf("candidate notes = %v, want one reschedule note", notes)
	}
}

func TestRescheduleReturnsConflictsAsWarnings(t *testing.T) {
	f := newFixture(t)
	blocker := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))
	target := f.create(t, basicCreate(101, []uint{10}, tomorrow.Add(3*time.Hour), 30))

	// move onto the blocker's window: succeeds, but reports the collision
	res, err := f.svc.Reschedule(context.Background(), 1, 5, target.ID, RescheduleInput{
		StartAt: tomorrow.Add(15 * time.Minute), DurationMins: 30,
	})
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if !res.HasConflicts || len(res.Conflicts) != 1 {
		t.Fatalf("conflicts = %+v, want exactly one warning", res.Conflicts)
	}
	if res.Conflicts[0].InterviewID != blocker.ID {
		t.Fatalf("conflict id = %d, want %d", res.Conflicts[0].InterviewID, blocker.ID)
	}
}

func TestRescheduleRequiresReschedulableStatus(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))
	if _, err := f.svc.Complete(context.Background(), 1, 5, iv.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	_, err := f.svc.Reschedule(context.Background(), 1, 5, iv.ID, RescheduleInput{
		StartAt: tomorrow.Add(time.Hour), DurationMins: 30,
	})
	if KindOf(err) != KindBadRequest {
		t.Fatalf("err = %v, want BadRequest", err)
	}
}

func TestCancelReleasesBusyBlocks(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10, 11}, tomorrow, 30))

	cancelled, err := f.svc.Cancel(context.Background(), 1, 5, iv.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	blocks, _ := f.store.BusyBlocks(context.Background(), 1, model.BusyBlockSourceInterview, iv.ID)
	if len(blocks) != 0 {
		t.Fatalf("busy blocks = %d, want 0 after cancel", len(blocks))
	}
	f.side.Wait()
	found := false
	for _, ev := range f.automation.seen() {
		if ev == "cancelled" {
			found = true
		}
	}
	if !found {
		t.Fatalf("automation events = %v, want cancelled", f.automation.seen())
	}
}

func TestCompleteFiresIntegrationSync(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	done, err := f.svc.Complete(context.Background(), 1, 5, iv.ID, CompleteInput{HasFeedback: true, AvgRating: 4.5})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.StatusCompleted || !done.HasFeedback || done.AvgRating != 4.5 {
		t.Fatalf("completed interview = %+v", done)
	}
	f.side.Wait()
	found := false
	for _, ev := range f.integrations.seen() {
		if ev == "completed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("integration events = %v, want completed", f.integrations.seen())
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))
	if _, err := f.svc.Complete(context.Background(), 1, 5, iv.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), 1, 5, iv.ID); KindOf(err) != KindBadRequest {
		t.Fatalf("cancel after complete: err = %v, want BadRequest", err)
	}
}

func TestMarkNoShowSetsFlag(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	marked, err := f.svc.MarkNoShow(context.Background(), 1, 5, iv.ID)
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if marked.Status != model.StatusNoShow || !marked.IsNoShow {
		t.Fatalf("no-show interview = %+v", marked)
	}
}

func TestGetScopedToTenant(t *testing.T) {
	f := newFixture(t)
	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))

	if _, err := f.svc.Get(context.Background(), 2, iv.ID); KindOf(err) != KindNotFound {
		t.Fatalf("cross-tenant get: err = %v, want NotFound", err)
	}
}

func TestSinkFailureDoesNotAffectCreate(t *testing.T) {
	f := newFixture(t)
	f.automation.err = context.DeadlineExceeded
	f.integrations.err = context.DeadlineExceeded

	iv := f.create(t, basicCreate(100, []uint{10}, tomorrow, 30))
	f.side.Wait()
	if iv.Status != model.StatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED despite sink failures", iv.Status)
	}
}

func asSchedulingError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}

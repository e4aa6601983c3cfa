package scheduler

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
	bridgesvc "modbridge/internal/usecase/bridge"
)

var testDIDPattern = regexp.MustCompile(`^at://(did:[^/]+)`)

type fakeBridge struct {
	mu      sync.Mutex
	tenants []string
	results map[string]bridgesvc.PollResult
	pollErr map[string]error
	polled  []string
}

func (f *fakeBridge) ListEnabledTenants(context.Context) ([]string, error) {
	return f.tenants, nil
}

func (f *fakeBridge) PollEvents(_ context.Context, tenantID string) (bridgesvc.PollResult, error) {
	f.mu.Lock()
	f.polled = append(f.polled, tenantID)
	f.mu.Unlock()
	if err := f.pollErr[tenantID]; err != nil {
		return bridgesvc.PollResult{}, err
	}
	return f.results[tenantID], nil
}

func (f *fakeBridge) ClassifyEvent(event ozone.Event) bridgesvc.ClassifiedEvent {
	out := bridgesvc.ClassifiedEvent{
		Category: domainbridge.ClassifyEventType(event.Event.Type),
		Labels:   append([]string{}, event.Event.CreateLabelVals...),
	}
	switch event.Subject.Type {
	case ozone.SubjectTypeRepo:
		out.SubjectDID = event.Subject.DID
	case ozone.SubjectTypeRecord:
		out.SubjectURI = event.Subject.URI
		if m := testDIDPattern.FindStringSubmatch(event.Subject.URI); m != nil {
			out.SubjectDID = m[1]
		}
	}
	return out
}

func (f *fakeBridge) PoliciesForLabels(_ context.Context, _ string, labels []string) ([]string, error) {
	return domainbridge.LabelsToPolicies(domainbridge.DefaultMappings(), labels), nil
}

func (f *fakeBridge) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.polled)
}

type fakeQueue struct {
	mu       sync.Mutex
	items    []ports.ReviewQueueItem
	failNext int
}

func (q *fakeQueue) Enqueue(_ context.Context, item ports.ReviewQueueItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failNext > 0 {
		q.failNext--
		return errors.New("queue unavailable")
	}
	q.items = append(q.items, item)
	return nil
}

func (q *fakeQueue) snapshot() []ports.ReviewQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]ports.ReviewQueueItem, len(q.items))
	copy(out, q.items)
	return out
}

func eventOf(id int64, eventType string, subject ozone.Subject, labels ...string) ozone.Event {
	return ozone.Event{
		ID:      id,
		Event:   ozone.EventBody{Type: eventType, CreateLabelVals: labels},
		Subject: subject,
	}
}

func TestSchedulerRoutesQualifyingEvents(t *testing.T) {
	bridge := &fakeBridge{
		tenants: []string{"t1"},
		results: map[string]bridgesvc.PollResult{
			"t1": {Events: []ozone.Event{
				eventOf(1, ozone.EventTypeReport, ozone.RecordSubject("at://did:plc:C/app.bsky.feed.post/2", "")),
				eventOf(2, ozone.EventTypeLabel, ozone.RepoSubject("did:plc:D"), "spam"),
				eventOf(3, ozone.EventTypeEscalate, ozone.RepoSubject("did:plc:E")),
				eventOf(4, ozone.EventTypeTakedown, ozone.RepoSubject("did:plc:F")),
				eventOf(5, "tools.ozone.moderation.defs#modEventMute", ozone.RepoSubject("did:plc:G")),
				eventOf(6, ozone.EventTypeReport, ozone.RecordSubject("https://no-did-here", "")),
			}},
		},
	}
	queue := &fakeQueue{}

	s := New(Config{Interval: time.Minute, Enabled: true}, bridge, queue, nil)
	s.runCycle(context.Background())

	items := queue.snapshot()
	if len(items) != 3 {
		t.Fatalf("enqueued %d items, want 3: %+v", len(items), items)
	}

	if items[0].Reason != "Report received from external labeler" {
		t.Fatalf("report reason = %q", items[0].Reason)
	}
	if items[0].CorrelationID != "ozone-event-1" {
		t.Fatalf("report correlation = %q", items[0].CorrelationID)
	}
	if items[0].Source != "external-labeler" {
		t.Fatalf("source = %q", items[0].Source)
	}

	if !strings.Contains(items[1].Reason, "spam") {
		t.Fatalf("label reason = %q", items[1].Reason)
	}
	if len(items[1].PolicyIDs) != 1 || items[1].PolicyIDs[0] != "SPAM" {
		t.Fatalf("label policy ids = %v", items[1].PolicyIDs)
	}

	if items[2].Reason != "Escalated from external labeler" {
		t.Fatalf("escalate reason = %q", items[2].Reason)
	}

	for _, item := range items {
		if item.ID == "" || item.TenantID != "t1" || len(item.Payload) == 0 {
			t.Fatalf("malformed item: %+v", item)
		}
	}
}

func TestSchedulerDisabledReturnsImmediately(t *testing.T) {
	bridge := &fakeBridge{tenants: []string{"t1"}}

	s := New(Config{Interval: time.Millisecond, Enabled: false}, bridge, &fakeQueue{}, nil)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if bridge.pollCount() != 0 {
		t.Fatal("disabled scheduler polled tenants")
	}
}

func TestSchedulerContinuesAfterPollError(t *testing.T) {
	bridge := &fakeBridge{
		tenants: []string{"bad", "good"},
		pollErr: map[string]error{"bad": errors.New("labeler down")},
		results: map[string]bridgesvc.PollResult{
			"good": {Events: []ozone.Event{
				eventOf(7, ozone.EventTypeReport, ozone.RepoSubject("did:plc:H")),
			}},
		},
	}
	queue := &fakeQueue{}

	s := New(Config{Interval: time.Minute, Enabled: true}, bridge, queue, nil)
	s.runCycle(context.Background())

	if bridge.pollCount() != 2 {
		t.Fatalf("polled %d tenants, want both", bridge.pollCount())
	}
	if len(queue.snapshot()) != 1 {
		t.Fatalf("good tenant's event was not enqueued")
	}
}

func TestSchedulerEnqueueFailureSkipsEvent(t *testing.T) {
	bridge := &fakeBridge{
		tenants: []string{"t1"},
		results: map[string]bridgesvc.PollResult{
			"t1": {Events: []ozone.Event{
				eventOf(8, ozone.EventTypeReport, ozone.RepoSubject("did:plc:I")),
				eventOf(9, ozone.EventTypeReport, ozone.RepoSubject("did:plc:J")),
			}},
		},
	}
	queue := &fakeQueue{failNext: 1}

	s := New(Config{Interval: time.Minute, Enabled: true}, bridge, queue, nil)
	s.runCycle(context.Background())

	items := queue.snapshot()
	if len(items) != 1 {
		t.Fatalf("enqueued %d items, want the second event only", len(items))
	}
	if items[0].CorrelationID != "ozone-event-9" {
		t.Fatalf("surviving item = %q", items[0].CorrelationID)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	bridge := &fakeBridge{tenants: []string{"t1"}}
	ctx, cancel := context.WithCancel(context.Background())

	s := New(Config{Interval: 5 * time.Millisecond, Enabled: true}, bridge, &fakeQueue{}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	if bridge.pollCount() == 0 {
		t.Fatal("scheduler never polled before cancellation")
	}
}

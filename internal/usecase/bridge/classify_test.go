package bridge

import (
	"encoding/json"
	"testing"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/ozone"
)

func TestClassifyReportEventWithStrongRef(t *testing.T) {
	f := setupService(t)

	comment := json.RawMessage(`"please look at this"`)
	got := f.svc.ClassifyEvent(ozone.Event{
		ID: 11,
		Event: ozone.EventBody{
			Type:    "tools.ozone.moderation.defs#modEventReport",
			Comment: comment,
		},
		Subject: ozone.RecordSubject("at://did:plc:C/app.bsky.feed.post/2", "bafy123"),
	})

	if got.Category != domainbridge.CategoryReport {
		t.Fatalf("category = %q", got.Category)
	}
	if len(got.Labels) != 0 {
		t.Fatalf("labels = %v, want empty", got.Labels)
	}
	if got.Comment == nil || *got.Comment != "please look at this" {
		t.Fatalf("comment = %v", got.Comment)
	}
	if got.SubjectDID != "did:plc:C" {
		t.Fatalf("subject did = %q", got.SubjectDID)
	}
	if got.SubjectURI != "at://did:plc:C/app.bsky.feed.post/2" {
		t.Fatalf("subject uri = %q", got.SubjectURI)
	}
}

func TestClassifyLabelEventWithRepoRef(t *testing.T) {
	f := setupService(t)

	got := f.svc.ClassifyEvent(ozone.Event{
		Event: ozone.EventBody{
			Type:            "tools.ozone.moderation.defs#modEventLabel",
			CreateLabelVals: []string{"spam", "hate"},
		},
		Subject: ozone.RepoSubject("did:plc:D"),
	})

	if got.Category != domainbridge.CategoryLabel {
		t.Fatalf("category = %q", got.Category)
	}
	if len(got.Labels) != 2 {
		t.Fatalf("labels = %v", got.Labels)
	}
	if got.SubjectDID != "did:plc:D" || got.SubjectURI != "" {
		t.Fatalf("subject = %q / %q", got.SubjectDID, got.SubjectURI)
	}
}

func TestClassifyNonStringCommentIsDropped(t *testing.T) {
	f := setupService(t)

	got := f.svc.ClassifyEvent(ozone.Event{
		Event: ozone.EventBody{
			Type:    "tools.ozone.moderation.defs#modEventComment",
			Comment: json.RawMessage(`{"nested":"object"}`),
		},
		Subject: ozone.RepoSubject("did:plc:D"),
	})

	if got.Comment != nil {
		t.Fatalf("comment = %v, want nil for non-string", *got.Comment)
	}
	if got.Category != domainbridge.CategoryComment {
		t.Fatalf("category = %q", got.Category)
	}
}

func TestClassifyUnknownTypeAndBadURI(t *testing.T) {
	f := setupService(t)

	got := f.svc.ClassifyEvent(ozone.Event{
		Event:   ozone.EventBody{Type: "tools.ozone.moderation.defs#modEventMute"},
		Subject: ozone.RecordSubject("https://example.com/not-at-uri", ""),
	})

	if got.Category != domainbridge.CategoryNone {
		t.Fatalf("category = %q, want none", got.Category)
	}
	if got.SubjectDID != "" {
		t.Fatalf("subject did = %q, want empty for non-at uri", got.SubjectDID)
	}
	if got.SubjectURI != "https://example.com/not-at-uri" {
		t.Fatalf("subject uri = %q", got.SubjectURI)
	}
}

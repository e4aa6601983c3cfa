package bridge

import (
	"regexp"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/ozone"
)

// subjectDIDPattern pulls the repo DID out of an at:// record URI.
var subjectDIDPattern = regexp.MustCompile(`^at://(did:[^/]+)`)

// ClassifyEvent normalizes one inbound labeler event. Pure; no I/O.
func (s *Service) ClassifyEvent(event ozone.Event) ClassifiedEvent {
	out := ClassifiedEvent{
		Category: domainbridge.ClassifyEventType(event.Event.Type),
		Labels:   []string{},
	}
	if len(event.Event.CreateLabelVals) > 0 {
		out.Labels = append(out.Labels, event.Event.CreateLabelVals...)
	}
	if comment, ok := event.Event.CommentString(); ok {
		out.Comment = &comment
	}

	switch event.Subject.Type {
	case ozone.SubjectTypeRepo:
		out.SubjectDID = event.Subject.DID
	case ozone.SubjectTypeRecord:
		out.SubjectURI = event.Subject.URI
		if m := subjectDIDPattern.FindStringSubmatch(event.Subject.URI); m != nil {
			out.SubjectDID = m[1]
		}
	}
	return out
}

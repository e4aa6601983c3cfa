package bridge

import "testing"

func TestClassifyEventType(t *testing.T) {
	cases := []struct {
		eventType string
		want      Category
	}{
		{"tools.ozone.moderation.defs#modEventReport", CategoryReport},
		{"tools.ozone.moderation.defs#modEventTakedown", CategoryTakedown},
		{"tools.ozone.moderation.defs#modEventLabel", CategoryLabel},
		{"tools.ozone.moderation.defs#modEventComment", CategoryComment},
		{"tools.ozone.moderation.defs#modEventEscalate", CategoryEscalate},
		{"tools.ozone.moderation.defs#modEventMute", CategoryNone},
		{"", CategoryNone},
		{"modeventlabel", CategoryNone},
	}

	for _, tc := range cases {
		if got := ClassifyEventType(tc.eventType); got != tc.want {
			t.Fatalf("ClassifyEventType(%q) = %q, want %q", tc.eventType, got, tc.want)
		}
	}
}

func TestValidDirection(t *testing.T) {
	for _, d := range []Direction{DirectionInbound, DirectionOutbound, DirectionBoth} {
		if !ValidDirection(d) {
			t.Fatalf("ValidDirection(%s) = false", d)
		}
	}
	if ValidDirection("SIDEWAYS") {
		t.Fatal("ValidDirection(SIDEWAYS) = true")
	}
}

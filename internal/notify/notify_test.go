package notify

import (
	"context"
	"testing"
	"time"
)

func TestEventJSONRoundTrip(t *testing.T) {
	ev := Event{
		Kind:      "budget_alert",
		Title:     "Budgets",
		Message:   "budget \"food\" is close to its cap",
		Severity:  "medium",
		Timestamp: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := EventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != ev {
		t.Fatalf("round trip changed the event: %+v", back)
	}

	if _, err := EventFromJSON([]byte("{broken")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	sink := &MemorySink{}

	sink.Notify(ctx, Event{Kind: "goal_created"})
	sink.Notify(ctx, Event{Kind: "goal_achieved"})
	sink.Notify(ctx, Event{Kind: "goal_created"})

	if got := sink.Events(); len(got) != 3 {
		t.Fatalf("events = %d", len(got))
	}
	if got := sink.ByKind("goal_created"); len(got) != 2 {
		t.Fatalf("byKind = %d", len(got))
	}

	sink.Reset()
	if got := sink.Events(); len(got) != 0 {
		t.Fatalf("reset left %d events", len(got))
	}
}

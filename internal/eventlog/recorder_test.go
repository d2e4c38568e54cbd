package eventlog

import (
	"testing"
	"time"

	"github.com/assetlink/assetlink/internal/testutil/testlog"
)

func TestRecordPreservesInsertionOrder(t *testing.T) {
	testlog.Start(t)

	r := NewRecorder()
	r.Record(Event{Direction: DirectionSent, Text: "LOGIN|alice|pw", Status: StatusPending})
	r.Record(Event{Direction: DirectionReceived, Text: "LOGED|welcome", Status: StatusSuccess})
	r.Record(Event{Direction: DirectionSystem, Text: "connection closed", Status: StatusError})

	history := r.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 events, got %d", len(history))
	}
	if history[0].Direction != DirectionSent || history[1].Direction != DirectionReceived || history[2].Direction != DirectionSystem {
		t.Fatalf("order not preserved: %+v", history)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Fatalf("timestamps out of order at %d: %+v", i, history)
		}
	}
}

func TestRecordStampsZeroTimestamp(t *testing.T) {
	testlog.Start(t)

	r := NewRecorder()
	r.Record(Event{Direction: DirectionSent, Text: "LGOUT|", Status: StatusPending})
	if r.History()[0].Timestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.Record(Event{Direction: DirectionReceived, Text: "EXTLG", Status: StatusSuccess, Timestamp: fixed})
	if !r.History()[1].Timestamp.Equal(fixed) {
		t.Fatal("explicit timestamp overwritten")
	}
}

func TestObserverInvokedSynchronously(t *testing.T) {
	testlog.Start(t)

	r := NewRecorder()
	var seen []Event
	r.Subscribe(func(ev Event) {
		seen = append(seen, ev)
	})
	r.Record(Event{Direction: DirectionSent, Text: "SCODE|a@b.c", Status: StatusPending})
	if len(seen) != 1 || seen[0].Text != "SCODE|a@b.c" {
		t.Fatalf("observer missed event: %+v", seen)
	}

	r.Subscribe(nil)
	r.Record(Event{Direction: DirectionSystem, Text: "closed", Status: StatusError})
	if len(seen) != 1 {
		t.Fatalf("unsubscribed observer still invoked: %+v", seen)
	}
}

func TestHistorySnapshotIsolation(t *testing.T) {
	testlog.Start(t)

	r := NewRecorder()
	r.Record(Event{Direction: DirectionSent, Text: "original", Status: StatusPending})

	snap := r.History()
	snap[0].Text = "mutated"

	if r.History()[0].Text != "original" {
		t.Fatal("snapshot mutation leaked into recorder")
	}
}

package services

import (
	"context"
	"errors"
	"testing"
)

func TestNotifiers_RunsAllAndJoinsErrors(t *testing.T) {
	a := &recordingNotifier{err: errors.New("a failed")}
	b := &recordingNotifier{}
	ns := Notifiers{a, nil, b}

	err := ns.OrderPlaced(context.Background(), Receipt{OrderID: "1"})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("calls a=%d b=%d, want 1 each", len(a.got), len(b.got))
	}
}

package notify

import (
	"testing"
	"time"
)

func TestQueueKeepsPushOrder(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	q.Error("first")
	q.Success("second")
	q.Info("third")

	got := q.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	want := []struct {
		kind Kind
		msg  string
	}{{KindError, "first"}, {KindSuccess, "second"}, {KindInfo, "third"}}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Message != w.msg || got[i].ID == "" {
			t.Fatalf("unexpected notification %d: %+v", i, got[i])
		}
	}
}

func TestQueueExpiresOldestFirst(t *testing.T) {
	q := NewQueue(60 * time.Millisecond)
	defer q.Close()

	q.Error("old")
	time.Sleep(30 * time.Millisecond)
	q.Success("new")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		list := q.List()
		if len(list) == 1 {
			if list[0].Message != "new" {
				t.Fatalf("expected newest to survive, got %+v", list[0])
			}
			break
		}
		if len(list) == 0 {
			t.Fatalf("both notifications expired together")
		}
		time.Sleep(5 * time.Millisecond)
	}

	deadline = time.Now().Add(time.Second)
	for len(q.List()) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("notifications never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue(time.Minute)
	defer q.Close()

	n := q.Info("hello")
	if !q.Remove(n.ID) {
		t.Fatalf("expected remove to succeed")
	}
	if q.Remove(n.ID) {
		t.Fatalf("expected second remove to report false")
	}
	if len(q.List()) != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestNewQueueDefaultTTL(t *testing.T) {
	q := NewQueue(0)
	if q.ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", q.ttl)
	}
}

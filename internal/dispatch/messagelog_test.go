package dispatch

import (
	"fmt"
	"testing"
)

func TestMessageLog_Wraps(t *testing.T) {
	log := NewMessageLog(3)
	for i := range 5 {
		log.Add(fmt.Sprintf("t/%d", i), "")
	}

	entries := log.Entries()
	if len(entries) != 3 || log.Len() != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"t/2", "t/3", "t/4"} {
		if entries[i].Topic != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Topic, want)
		}
	}
}

func TestMessageLog_Partial(t *testing.T) {
	log := NewMessageLog(4)
	log.Add("a", "1")
	log.Add("b", "2")

	entries := log.Entries()
	if len(entries) != 2 || entries[0].Topic != "a" || entries[1].Payload != "2" {
		t.Errorf("Entries() = %+v", entries)
	}
	if entries[0].ReceivedAt.IsZero() {
		t.Error("ReceivedAt not set")
	}
}

func TestMessageLog_Disabled(t *testing.T) {
	for _, size := range []int{0, -1} {
		log := NewMessageLog(size)
		log.Add("a", "1")
		if log.Len() != 0 || len(log.Entries()) != 0 {
			t.Errorf("size %d: log kept messages", size)
		}
	}
}

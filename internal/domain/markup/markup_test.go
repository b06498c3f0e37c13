package markup

import (
	"reflect"
	"testing"
)

func TestLabels(t *testing.T) {
	got := Labels("ship the #backend fix, then #backend docs and #q3-goals")
	want := []string{"backend", "q3-goals"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Labels = %v, want %v", got, want)
	}
}

func TestLabels_Empty(t *testing.T) {
	if got := Labels(""); got != nil {
		t.Fatalf("Labels(\"\") = %v, want nil", got)
	}
	if got := Labels("no annotations here"); got != nil {
		t.Fatalf("Labels = %v, want nil", got)
	}
}

func TestMentions_StopAtDot(t *testing.T) {
	got := Mentions("ping @alice and @bob.smith")
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Mentions = %v, want %v", got, want)
	}
}

func TestAssignees_AllowDots(t *testing.T) {
	got := Assignees("ping @alice and @bob.smith")
	want := []string{"alice", "bob.smith"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assignees = %v, want %v", got, want)
	}
}

func TestMentions_Dedup(t *testing.T) {
	got := Mentions("@dev @dev @ops")
	want := []string{"dev", "ops"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Mentions = %v, want %v", got, want)
	}
}

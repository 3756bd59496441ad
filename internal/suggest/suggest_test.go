package suggest

import "testing"

func TestFindSuggestsClosestCandidate(t *testing.T) {
	got, ok := Find("heade", []string{"header", "footer", "trailer"})
	if !ok {
		t.Fatalf("expected a suggestion")
	}
	if got != "header" {
		t.Fatalf("got %q, want header", got)
	}
}

func TestFindSkipsExactMatch(t *testing.T) {
	got, ok := Find("header", []string{"header", "headerish"})
	if !ok {
		t.Fatalf("expected a suggestion")
	}
	if got == "header" {
		t.Fatalf("exact match should be excluded from candidates")
	}
}

func TestFindNoCandidateClearsThreshold(t *testing.T) {
	_, ok := Find("xyz", []string{"completely", "unrelated", "names"})
	if ok {
		t.Fatalf("expected no suggestion for dissimilar candidates")
	}
}

func TestFindEmptyCandidates(t *testing.T) {
	_, ok := Find("anything", nil)
	if ok {
		t.Fatalf("expected no suggestion with no candidates")
	}
}

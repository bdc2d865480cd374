package resolve

import (
	"errors"
	"testing"
)

var gradeColumns = []string{"Roll No", "Name", "CGPA", "Attendance %"}

func TestResolve_VerbatimTargetWins(t *testing.T) {
	for _, target := range gradeColumns {
		got, err := Resolve(target, gradeColumns)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", target, err)
		}
		if got != target {
			t.Errorf("Resolve(%q) = %q, want exact candidate back", target, got)
		}
	}
}

func TestResolve_FuzzyAboveThreshold(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"roll number", "Roll No"},
		{"CGPA score", "CGPA"},
		{"student name", "Name"},
		{"attendance", "Attendance %"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := Resolve(tt.target, gradeColumns)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestResolve_SubstringFallback(t *testing.T) {
	// Lowercase short forms that may score under the threshold must still
	// land via case-insensitive containment.
	got, err := Resolve("cgpa", []string{"Roll No", "Name", "CGPA"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "CGPA" {
		t.Errorf("Resolve(cgpa) = %q, want CGPA", got)
	}
}

func TestResolve_TotalOnNonEmptyCandidates(t *testing.T) {
	// Whatever the target, a non-empty candidate set must produce a member.
	targets := []string{"", "zzzzzz", "completely unrelated phrase", "💡", "CGPA"}
	for _, target := range targets {
		got, err := Resolve(target, gradeColumns)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", target, err)
		}
		found := false
		for _, c := range gradeColumns {
			if got == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Resolve(%q) = %q, not a member of the candidate set", target, got)
		}
	}
}

func TestResolve_EmptyCandidates(t *testing.T) {
	_, err := Resolve("CGPA", nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestResolve_StrictFailsInsteadOfDegrading(t *testing.T) {
	pol := Policy{Strict: true}

	_, err := pol.Resolve("zzzzzz", gradeColumns)
	var noMatch *NoConfidentMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoConfidentMatchError, got %v", err)
	}

	// Confident matches still resolve under strict.
	got, err := pol.Resolve("CGPA", gradeColumns)
	if err != nil {
		t.Fatalf("strict Resolve(CGPA) failed: %v", err)
	}
	if got != "CGPA" {
		t.Errorf("strict Resolve(CGPA) = %q", got)
	}
}

func TestResolve_DeterministicOnTies(t *testing.T) {
	candidates := []string{"Score", "Score"}
	got, err := Resolve("score", candidates)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "Score" {
		t.Errorf("Resolve = %q", got)
	}
}

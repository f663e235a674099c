package dropdown

import (
	"context"
	"errors"
	"testing"

	"github.com/andyslucky/gobang/internal/completion"
)

type failingSource struct{}

func (failingSource) Suggestions(ctx context.Context, wordPart string) ([]string, error) {
	return nil, errors.New("boom")
}

func TestVisibilityTracksWord(t *testing.T) {
	m := New(completion.NewKeywordSource())

	if m.Visible() {
		t.Fatal("expected hidden initially")
	}

	m.Update("se")
	if !m.Visible() {
		t.Fatal("expected visible for non-empty word")
	}

	m.Update("")
	if m.Visible() {
		t.Fatal("expected hidden for empty word")
	}
}

func TestCandidatesPrefixMatch(t *testing.T) {
	m := New(completion.NewKeywordSource())

	m.Update("an")
	candidates := m.Candidates()
	if len(candidates) == 0 {
		t.Fatal("expected candidates for 'an'")
	}
	for _, c := range candidates {
		if c == "FROM" {
			t.Fatalf("expected FROM excluded, got %v", candidates)
		}
	}
	if candidates[0] != "AND" {
		t.Fatalf("expected AND first, got %v", candidates)
	}
	if m.Selected() != "AND" {
		t.Fatalf("expected selection reset to first candidate, got %q", m.Selected())
	}
}

func TestSaturatingSelection(t *testing.T) {
	m := New(completion.NewKeywordSource())
	m.Update("s") // SELECT at least

	m.MoveUp()
	if m.Selected() != m.Candidates()[0] {
		t.Fatal("expected selection saturated at first candidate")
	}

	for i := 0; i < 100; i++ {
		m.MoveDown()
	}
	last := m.Candidates()[len(m.Candidates())-1]
	if m.Selected() != last {
		t.Fatalf("expected selection saturated at last candidate %q, got %q", last, m.Selected())
	}
}

func TestHide(t *testing.T) {
	m := New(completion.NewKeywordSource())
	m.Update("se")

	m.Hide()
	if m.Visible() {
		t.Fatal("expected hidden after Hide")
	}

	// The next update shows the dropdown again.
	m.Update("sel")
	if !m.Visible() {
		t.Fatal("expected visible after next update")
	}
}

func TestSourceFailureDegrades(t *testing.T) {
	m := New(failingSource{})

	m.Update("se")
	if len(m.Candidates()) != 0 {
		t.Fatalf("expected empty candidates on source failure, got %v", m.Candidates())
	}
	if m.Selected() != "" {
		t.Fatalf("expected no selection, got %q", m.Selected())
	}
	if m.View() != "" {
		t.Fatal("expected empty view with no candidates")
	}
}

func TestViewEmptyWhenHidden(t *testing.T) {
	m := New(completion.NewKeywordSource())
	m.Update("") // hidden
	if m.View() != "" {
		t.Fatal("expected empty view when hidden")
	}
}

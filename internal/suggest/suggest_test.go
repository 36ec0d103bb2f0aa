package suggest

import "testing"

func TestSuggestRanksClosestFirst(t *testing.T) {
	m := New(true, 2, 0.5)
	matches := m.Suggest("Button", []string{"Buton", "Label", "Buttom", "Image"})
	if len(matches) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if matches[0].Name != "Buton" && matches[0].Name != "Buttom" {
		t.Errorf("top match = %q, want a near-miss of Button", matches[0].Name)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Fatalf("matches not sorted descending: %+v", matches)
		}
	}
}

func TestSuggestDisabledReturnsNil(t *testing.T) {
	m := New(false, 3, 0.5)
	if got := m.Suggest("Button", []string{"Buton"}); got != nil {
		t.Errorf("expected nil when disabled, got %+v", got)
	}
}

func TestSuggestExcludesExactMatch(t *testing.T) {
	m := New(true, 5, 0.1)
	matches := m.Suggest("Button", []string{"Button"})
	if len(matches) != 0 {
		t.Errorf("expected exact match excluded, got %+v", matches)
	}
}

func TestSuggestRespectsMaxResults(t *testing.T) {
	m := New(true, 1, 0.1)
	matches := m.Suggest("Button", []string{"Buton", "Buttom", "Buttn"})
	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(matches))
	}
}

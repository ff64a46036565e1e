package rpt

import "testing"

func week(n int, topic string) WeeklyPlan {
	return WeeklyPlan{
		WeekNumber:       n,
		Theme:            "Tema",
		Topic:            topic,
		ContentStandard:  "1.1",
		LearningStandard: "1.1.1",
	}
}

func TestWeekStore_ReplaceDiscardsOldSequence(t *testing.T) {
	s := NewWeekStore()
	s.Replace([]WeeklyPlan{week(1, "a"), week(2, "b")})
	s.Replace([]WeeklyPlan{week(5, "c")})

	got := s.List()
	if len(got) != 1 || got[0].WeekNumber != 5 {
		t.Errorf("List after second Replace = %+v, want only week 5", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestWeekStore_GetFirstMatch(t *testing.T) {
	s := NewWeekStore()
	s.Replace([]WeeklyPlan{week(1, "a"), week(3, "first"), week(3, "second")})

	w, ok := s.Get(3)
	if !ok {
		t.Fatal("Get(3) not found")
	}
	if w.Topic != "first" {
		t.Errorf("Get(3).Topic = %q, want first match", w.Topic)
	}

	if _, ok := s.Get(9); ok {
		t.Error("Get(9) found, want miss")
	}
}

func TestWeekStore_ListIsACopy(t *testing.T) {
	s := NewWeekStore()
	s.Replace([]WeeklyPlan{week(1, "a")})

	got := s.List()
	got[0].Topic = "mutated"

	if w, _ := s.Get(1); w.Topic != "a" {
		t.Errorf("store mutated through List copy: %q", w.Topic)
	}
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/skillpath/internal/course"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTemplate() *course.Template {
	return &course.Template{
		ID:    "sql-101",
		Title: "SQL Basics",
		Modules: []course.Module{
			{Title: "Select", Lessons: []course.Lesson{{Title: "Projection"}}},
			{Title: "Join", Lessons: []course.Lesson{{Title: "Inner join"}}},
		},
		FinalProject: &course.FinalProject{Title: "Report"},
	}
}

func seedLearner(t *testing.T, s *Store) *course.Learner {
	t.Helper()
	l, err := course.NewLearner("Edsger", "backend")
	if err != nil {
		t.Fatalf("new learner: %v", err)
	}
	if err := s.SaveLearner(context.Background(), l); err != nil {
		t.Fatalf("save learner: %v", err)
	}
	return l
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestLearnerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seedLearner(t, s)

	l.Gamification.XP = 650
	l.Gamification.Level = 1
	l.Gamification.Achievements.Add("pioneer")
	l.Enrollments["sql-101"] = "inst-1"
	if err := s.SaveLearner(ctx, l); err != nil {
		t.Fatalf("update learner: %v", err)
	}

	got, err := s.GetLearner(ctx, l.ID)
	if err != nil {
		t.Fatalf("get learner: %v", err)
	}
	if got.Name != "Edsger" || got.Gamification.XP != 650 {
		t.Errorf("got %+v", got)
	}
	if !got.Gamification.Achievements.Has("pioneer") {
		t.Error("achievement lost in round trip")
	}
	if got.Enrollments["sql-101"] != "inst-1" {
		t.Errorf("enrollments = %v", got.Enrollments)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetLearner(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLearner err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetInstance(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInstance err = %v, want ErrNotFound", err)
	}
}

func TestCommitInstanceAndRewards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seedLearner(t, s)

	inst, err := course.CreateInstance(testTemplate(), l)
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	inst.Progress.CompletedItems.Add("m0_l0")
	l.Enrollments[inst.TemplateID] = inst.ID
	l.Gamification.XP = 150

	c := Commit{
		Learner:  l,
		Instance: inst,
		Rewards: []RewardRecord{
			{LearnerID: l.ID, InstanceID: inst.ID, Kind: "enrolled", Key: "sql-101", XPDelta: 100, Achievements: []string{"pioneer"}},
			{LearnerID: l.ID, InstanceID: inst.ID, Kind: "lesson_completed", Key: "m0_l0", XPDelta: 50},
		},
	}
	if err := s.Commit(ctx, c); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if c.Rewards[0].Sequence == 0 || c.Rewards[1].Sequence <= c.Rewards[0].Sequence {
		t.Errorf("sequences not increasing: %d, %d", c.Rewards[0].Sequence, c.Rewards[1].Sequence)
	}

	got, err := s.GetInstance(ctx, inst.ID)
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	if !got.Progress.CompletedItems.Has("m0_l0") {
		t.Error("completed item lost")
	}
	if got.Progress.FinalExam.AttemptsLeft != course.MaxExamAttempts {
		t.Errorf("attempts left = %d", got.Progress.FinalExam.AttemptsLeft)
	}

	list, err := s.ListInstances(ctx, l.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != inst.ID {
		t.Errorf("list = %v", list)
	}

	history, err := s.RewardHistory(ctx, l.ID, QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].Key != "m0_l0" {
		t.Errorf("history not newest first: %+v", history)
	}
	if len(history[1].Achievements) != 1 || history[1].Achievements[0] != "pioneer" {
		t.Errorf("achievements = %v", history[1].Achievements)
	}

	limited, err := s.RewardHistory(ctx, l.ID, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("history limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d", len(limited))
	}

	after, err := s.RewardHistory(ctx, l.ID, QueryOpts{After: c.Rewards[0].Sequence})
	if err != nil {
		t.Fatalf("history after: %v", err)
	}
	if len(after) != 1 || after[0].Sequence != c.Rewards[1].Sequence {
		t.Errorf("after filter = %+v", after)
	}

	future, err := s.RewardHistory(ctx, l.ID, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("history from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("from filter returned %d records", len(future))
	}
}

func TestCommitRejectsSecondEnrollment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seedLearner(t, s)

	first, _ := course.CreateInstance(testTemplate(), l)
	if err := s.Commit(ctx, Commit{Instance: first}); err != nil {
		t.Fatalf("commit first: %v", err)
	}
	second, _ := course.CreateInstance(testTemplate(), l)
	err := s.Commit(ctx, Commit{Instance: second})
	if !errors.Is(err, course.ErrDuplicateEnrollment) {
		t.Fatalf("err = %v, want ErrDuplicateEnrollment", err)
	}
	if _, err := s.GetInstance(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second instance persisted: %v", err)
	}
}

func TestCommitRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := seedLearner(t, s)
	l.Gamification.XP = 999

	// Reward for an unknown learner violates the foreign key.
	err := s.Commit(ctx, Commit{
		Learner: l,
		Rewards: []RewardRecord{{LearnerID: "ghost", Kind: "lesson_completed", XPDelta: 50}},
	})
	if err == nil {
		t.Fatal("expected commit error")
	}

	got, err := s.GetLearner(ctx, l.ID)
	if err != nil {
		t.Fatalf("get learner: %v", err)
	}
	if got.Gamification.XP != 0 {
		t.Errorf("xp = %d after rollback, want 0", got.Gamification.XP)
	}
}

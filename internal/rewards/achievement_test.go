package rewards

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"pioneer", false},
		{"streak_7", false},
		{"final_exam_passed", false},
		{"level_2", false},
		{"level_37", false},
		{"level_1", true},
		{"level_0", true},
		{"level_02", true},
		{"level_x", true},
		{"level_", true},
		{"wizard", true},
		{"", true},
	}

	for _, tt := range tests {
		a, err := Lookup(tt.id)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownAchievement) {
				t.Errorf("Lookup(%q) error = %v, want ErrUnknownAchievement", tt.id, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q) unexpected error: %v", tt.id, err)
			continue
		}
		if string(a.ID) != tt.id {
			t.Errorf("Lookup(%q).ID = %q", tt.id, a.ID)
		}
	}
}

func TestAll_HaveMessages(t *testing.T) {
	all := All()
	if len(all) != 7 {
		t.Fatalf("len(All()) = %d, want 7", len(all))
	}
	for _, a := range all {
		if a.Title == "" || a.Icon == "" || a.MessageID == "" {
			t.Errorf("%s: incomplete metadata %+v", a.ID, a)
		}
		if got := a.Render("Ada"); got == a.Message {
			t.Errorf("%s: message has no %s placeholder", a.ID, UserNamePlaceholder)
		}
	}
}

func TestRender_LevelAchievement(t *testing.T) {
	a, err := Lookup("level_3")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := a.Render("Ada"), "Level up! Ada reached level 3."; got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

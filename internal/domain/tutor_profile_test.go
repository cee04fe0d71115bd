package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProfileInputMergeKeepsModeration(t *testing.T) {
	existing := &TutorProfile{Title: "old", Bio: "old bio", Verified: true, Rating: 4.5, TotalReviews: 12}

	merged := ProfileInput{Title: "Math Tutor"}.Merge(ModerationOf(existing))

	if merged.Title != "Math Tutor" {
		t.Fatalf("expected title Math Tutor, got %q", merged.Title)
	}
	if merged.Bio != "" {
		t.Fatalf("expected omitted bio to reset to empty, got %q", merged.Bio)
	}
	if !merged.Verified || merged.Rating != 4.5 || merged.TotalReviews != 12 {
		t.Fatalf("expected moderation preserved, got %+v", merged)
	}
	if merged.Education == nil || merged.Subjects == nil || merged.Experience == nil {
		t.Fatalf("expected empty sequences, got nil")
	}
}

func TestModerationOfNilProfile(t *testing.T) {
	if m := ModerationOf(nil); m != (Moderation{}) {
		t.Fatalf("expected zero moderation, got %+v", m)
	}
}

func TestProfileInputIgnoresModerationJSON(t *testing.T) {
	var in ProfileInput
	payload := `{"title":"Physics","verified":true,"rating":5,"totalReviews":100}`
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	merged := in.Merge(ModerationOf(nil))
	if merged.Verified || merged.Rating != 0 || merged.TotalReviews != 0 {
		t.Fatalf("expected client moderation ignored, got %+v", merged)
	}
}

func TestDefaultTutorProfileRendersEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(DefaultTutorProfile())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"education":[]`, `"subjects":[]`, `"experience":[]`, `"verified":false`, `"rating":0`, `"totalReviews":0`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestNewProfileViewDefaultsProfile(t *testing.T) {
	view := NewProfileView(User{Email: "s@x.com", Role: RoleStudent})
	if view.Profile.Education == nil || view.Profile.Title != "" {
		t.Fatalf("expected default profile, got %+v", view.Profile)
	}
	if view.Email != "s@x.com" || view.Role != RoleStudent {
		t.Fatalf("unexpected view %+v", view)
	}
}

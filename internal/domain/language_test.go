package domain

import "testing"

func TestPrimarySubtag(t *testing.T) {
	cases := []struct {
		tag  string
		want string
	}{
		{"en-US", "en"},
		{"en-GB", "en"},
		{"he-IL", "he"},
		{"es", "es"},
		{"pt-BR", "pt"},
		{"EN-us", "en"},
		{"ru_RU", "ru"},
		{"", ""},
		{"zz-Latn-XX", "zz"},
	}
	for _, c := range cases {
		if got := PrimarySubtag(c.tag); got != c.want {
			t.Errorf("PrimarySubtag(%q) = %q, want %q", c.tag, got, c.want)
		}
	}
}

func TestSameSources(t *testing.T) {
	base := LanguageSettings{Source: "en-US", Alternatives: []string{"he-IL", "ru-RU"}, Target: "es"}

	same := LanguageSettings{Source: "en-US", Alternatives: []string{"he-IL", "ru-RU"}, Target: "fr"}
	if !base.SameSources(same) {
		t.Errorf("settings differing only in target should compare as same sources")
	}

	reordered := LanguageSettings{Source: "en-US", Alternatives: []string{"ru-RU", "he-IL"}}
	if base.SameSources(reordered) {
		t.Errorf("reordered alternatives should not compare as same sources")
	}

	extra := LanguageSettings{Source: "en-US", Alternatives: []string{"he-IL", "ru-RU", "fr-FR"}}
	if base.SameSources(extra) {
		t.Errorf("extra alternative should not compare as same sources")
	}

	otherPrimary := LanguageSettings{Source: "en-GB", Alternatives: []string{"he-IL", "ru-RU"}}
	if base.SameSources(otherPrimary) {
		t.Errorf("different primary should not compare as same sources")
	}
}

func TestNewUser(t *testing.T) {
	if _, err := NewUser("sid-1", ""); err != ErrNameEmpty {
		t.Errorf("empty name: got %v, want ErrNameEmpty", err)
	}
	if _, err := NewUser("sid-1", "   "); err != ErrNameEmpty {
		t.Errorf("blank name: got %v, want ErrNameEmpty", err)
	}
	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewUser("sid-1", string(long)); err != ErrNameTooLong {
		t.Errorf("overlong name: got %v, want ErrNameTooLong", err)
	}
	u, err := NewUser("sid-1", " alice ")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Name != "alice" {
		t.Errorf("name not trimmed: %q", u.Name)
	}
}

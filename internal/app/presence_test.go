package app

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

func TestPresenceRegisterAndLookup(t *testing.T) {
	p := NewPresence()

	u, err := p.Register("sid-1", "alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Name != "alice" {
		t.Errorf("Name = %q, want alice", u.Name)
	}

	sid, ok := p.Lookup("alice")
	if !ok || sid != "sid-1" {
		t.Errorf("Lookup(alice) = %q, %v", sid, ok)
	}
	name, ok := p.NameOf("sid-1")
	if !ok || name != "alice" {
		t.Errorf("NameOf(sid-1) = %q, %v", name, ok)
	}
}

func TestPresenceNameTaken(t *testing.T) {
	p := NewPresence()
	if _, err := p.Register("sid-1", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Register("sid-2", "alice"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("Register() error = %v, want ErrNameTaken", err)
	}
	// same session reclaiming its own name is fine
	if _, err := p.Register("sid-1", "alice"); err != nil {
		t.Errorf("re-register own name: %v", err)
	}
}

func TestPresenceRename(t *testing.T) {
	p := NewPresence()
	if _, err := p.Register("sid-1", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Register("sid-1", "alicia"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, ok := p.Lookup("alice"); ok {
		t.Error("old name still resolvable after rename")
	}
	if sid, ok := p.Lookup("alicia"); !ok || sid != "sid-1" {
		t.Errorf("Lookup(alicia) = %q, %v", sid, ok)
	}
}

func TestPresenceRejectsBadNames(t *testing.T) {
	p := NewPresence()
	if _, err := p.Register("sid-1", "   "); !errors.Is(err, domain.ErrNameEmpty) {
		t.Errorf("blank name error = %v, want ErrNameEmpty", err)
	}
}

func TestPresenceUnregister(t *testing.T) {
	p := NewPresence()
	if _, err := p.Register("sid-1", "alice"); err != nil {
		t.Fatal(err)
	}

	name, ok := p.Unregister("sid-1")
	if !ok || name != "alice" {
		t.Errorf("Unregister() = %q, %v", name, ok)
	}
	if _, ok := p.Lookup("alice"); ok {
		t.Error("name still resolvable after unregister")
	}
	if _, ok := p.Unregister("sid-1"); ok {
		t.Error("second Unregister reported a name")
	}
	if _, ok := p.Unregister("never-seen"); ok {
		t.Error("Unregister of unknown session reported a name")
	}
}

func TestPresenceOnlineSorted(t *testing.T) {
	p := NewPresence()
	for _, reg := range []struct{ sid, name string }{
		{"s1", "carol"}, {"s2", "alice"}, {"s3", "bob"},
	} {
		if _, err := p.Register(core.SessionID(reg.sid), reg.name); err != nil {
			t.Fatal(err)
		}
	}
	got := p.Online()
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Online() = %v, want %v", got, want)
	}
	if p.Count() != 3 {
		t.Errorf("Count() = %d, want 3", p.Count())
	}
}

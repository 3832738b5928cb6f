package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPlayer(t *testing.T) {
	p, err := NewPlayer("  Ana  ", RolePlayer)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ana" {
		t.Fatalf("name = %q, want trimmed", p.Name)
	}
	if p.ID == "" || p.Score != 0 {
		t.Fatalf("player = %+v", p)
	}

	if _, err := NewPlayer("   ", RolePlayer); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("err = %v, want ErrNameEmpty", err)
	}
	long := strings.Repeat("a", MaxPlayerNameLen+1)
	if _, err := NewPlayer(long, RolePlayer); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("err = %v, want ErrNameTooLong", err)
	}
}

func TestSameIdentity(t *testing.T) {
	p, err := NewPlayer("Ana", RolePlayer)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"Ana", RolePlayer, true},
		{"  ANA ", RolePlayer, true},
		{"Ana", RoleOrganizer, false},
		{"Anna", RolePlayer, false},
	}
	for _, tt := range tests {
		if got := p.SameIdentity(tt.name, tt.role); got != tt.want {
			t.Errorf("SameIdentity(%q, %s) = %v, want %v", tt.name, tt.role, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("organizer"); err != nil || r != RoleOrganizer {
		t.Fatalf("got %v, %v", r, err)
	}
	if r, err := ParseRole("player"); err != nil || r != RolePlayer {
		t.Fatalf("got %v, %v", r, err)
	}
	if _, err := ParseRole("dj"); err == nil {
		t.Fatal("want error for unknown role")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		action ControlAction
		want   Status
		ok     bool
	}{
		{ActionPlay, StatusPlaying, true},
		{ActionPause, StatusPaused, true},
		{ActionStop, StatusStopped, true},
		{ActionPreview2, StatusPreview2, true},
		{ActionPreview5, StatusPreview5, true},
		{"rewind", "", false},
	}
	for _, tt := range tests {
		got, ok := StatusFor(tt.action)
		if got != tt.want || ok != tt.ok {
			t.Errorf("StatusFor(%s) = %v, %v", tt.action, got, ok)
		}
	}
	if !StatusPreview2.IsPreview() || !StatusPreview5.IsPreview() || StatusPaused.IsPreview() {
		t.Fatal("IsPreview mismatch")
	}
}

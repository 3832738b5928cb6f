// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxPlayerNameLen = 36

var (
	ErrNameEmpty   = errors.New("player name empty")
	ErrNameTooLong = errors.New("player name too long")
	ErrBadRole     = errors.New("unknown role")
)

type PlayerID string

type Role string

const (
	RoleOrganizer Role = "organizer"
	RolePlayer    Role = "player"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOrganizer, RolePlayer:
		return Role(s), nil
	}
	return "", ErrBadRole
}

type Player struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Role  Role     `json:"role"`
	Score int      `json:"score"`
}

// NewPlayer is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPlayer(name string, role Role) (*Player, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxPlayerNameLen {
		return nil, ErrNameTooLong
	}
	return &Player{ID: PlayerID(uuid.NewString()), Name: name, Role: role}, nil
}

// SameIdentity reports whether a joining name/role pair maps to this player.
// Names compare trimmed and case-insensitive so "ana" reclaims "Ana".
func (p *Player) SameIdentity(name string, role Role) bool {
	return p.Role == role && strings.EqualFold(strings.TrimSpace(name), p.Name)
}

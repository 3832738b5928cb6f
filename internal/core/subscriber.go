package core

import "github.com/GonzaloGRomero/Una-nota/internal/domain"

// Frame is one encoded outbound message.
type Frame []byte

type SessionID string

// Conn abstracts the messaging transport of one subscriber.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// subscriber binds a session to its player identity and transport.
// PlayerID stays stable across reconnects of the same name/role.
type subscriber struct {
	sid      SessionID
	playerID domain.PlayerID
	role     domain.Role
	conn     Conn
}

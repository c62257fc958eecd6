package game

import "errors"

// Session-state predicates used to gate message routes. Each one names the
// state a client must (or must not) be in for its handler to run.

var (
	errNotLoggedIn   = errors.New("session is not logged in")
	errNoChannel     = errors.New("player is not in a channel")
	errNoRoom        = errors.New("player is not in a room")
	errHasRoom       = errors.New("player is already in a room")
	errNotRoomHost   = errors.New("player is not the room host")
	errNotRoomMaster = errors.New("player is not the room master")
)

// MustBeLoggedIn requires a completed login on the session.
func MustBeLoggedIn(s *Session) error {
	if !s.IsLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// MustBeInChannel requires channel membership.
func MustBeInChannel(s *Session) error {
	p := s.Player()
	if p == nil || p.Channel() == nil {
		return errNoChannel
	}
	return nil
}

// MustBeInRoom requires room membership.
func MustBeInRoom(s *Session) error {
	p := s.Player()
	if p == nil || p.Room() == nil {
		return errNoRoom
	}
	return nil
}

// MustNotBeInRoom rejects players already inside a room.
func MustNotBeInRoom(s *Session) error {
	p := s.Player()
	if p != nil && p.Room() != nil {
		return errHasRoom
	}
	return nil
}

// MustBeRoomHost requires the player to hold the room's host role.
func MustBeRoomHost(s *Session) error {
	if err := MustBeInRoom(s); err != nil {
		return err
	}
	p := s.Player()
	if p.Room().Host() != p {
		return errNotRoomHost
	}
	return nil
}

// MustBeRoomMaster requires the player to hold the room's master role.
func MustBeRoomMaster(s *Session) error {
	if err := MustBeInRoom(s); err != nil {
		return err
	}
	p := s.Player()
	if p.Room().Master() != p {
		return errNotRoomMaster
	}
	return nil
}

package registry

import "fmt"

// Error is a registry operation failure. Each kind carries the name it
// refers to so the connection handler can render the exact wire text
// without a second lookup.
type Error struct {
	Kind Kind
	Name string // user or room name the error concerns
	Room string // set alongside Name for UserNotInRoom
}

type Kind int

const (
	UserAlreadyExists Kind = iota
	UserUnknown
	RoomUnknown
	UserNotInRoom
)

func (e *Error) Error() string {
	switch e.Kind {
	case UserAlreadyExists:
		return fmt.Sprintf("user already exists %s", e.Name)
	case UserUnknown:
		return fmt.Sprintf("user unknown %s", e.Name)
	case RoomUnknown:
		return fmt.Sprintf("room unknown %s", e.Name)
	case UserNotInRoom:
		return fmt.Sprintf("user not in room %s %s", e.Name, e.Room)
	default:
		return "registry: unknown error"
	}
}

// WireText renders the exact "ERROR ..." line a client should see for e.
func (e *Error) WireText() string {
	switch e.Kind {
	case UserAlreadyExists:
		return fmt.Sprintf("ERROR user already exists %s", e.Name)
	case UserUnknown:
		return fmt.Sprintf("ERROR user unknown %s", e.Name)
	case RoomUnknown:
		return fmt.Sprintf("ERROR room unknown %s", e.Name)
	case UserNotInRoom:
		return fmt.Sprintf("ERROR user not in room %s %s", e.Name, e.Room)
	default:
		return "ERROR internal"
	}
}

func errUserAlreadyExists(name string) *Error { return &Error{Kind: UserAlreadyExists, Name: name} }
func errUserUnknown(name string) *Error       { return &Error{Kind: UserUnknown, Name: name} }
func errRoomUnknown(name string) *Error       { return &Error{Kind: RoomUnknown, Name: name} }
func errUserNotInRoom(user, room string) *Error {
	return &Error{Kind: UserNotInRoom, Name: user, Room: room}
}

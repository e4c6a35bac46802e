// Package protocol implements the line-oriented wire format spoken between
// chatcore clients and the server: parsing of client commands and
// formatting of server-originated messages.
package protocol

import "fmt"

// Command identifies which client verb a ParseError was raised against.
type Command int

const (
	CommandName Command = iota
	CommandJoin
	CommandLeave
	CommandSay
	CommandUsers
	CommandRooms
	CommandPong
)

func (c Command) String() string {
	switch c {
	case CommandName:
		return "NAME"
	case CommandJoin:
		return "JOIN"
	case CommandLeave:
		return "LEAVE"
	case CommandSay:
		return "SAY"
	case CommandUsers:
		return "USERS"
	case CommandRooms:
		return "ROOMS"
	case CommandPong:
		return "PONG"
	default:
		return "UNKNOWN"
	}
}

// IncomingKind tags the variant held by an Incoming value.
type IncomingKind int

const (
	IncomingName IncomingKind = iota
	IncomingJoin
	IncomingLeave
	IncomingSayRoom
	IncomingSayUser
	IncomingUsers
	IncomingRooms
	IncomingQuit
	IncomingPong
)

// Incoming is a parsed client command. Only the fields relevant to Kind are
// populated; callers switch on Kind rather than checking field zero-values.
type Incoming struct {
	Kind   IncomingKind
	Name   string // NAME
	Room   string // JOIN, LEAVE, USERS
	Target string // addressee for SayUser (a user name) or SayRoom (a room name)
	Text   string // payload for SayRoom / SayUser
}

func (m Incoming) String() string {
	switch m.Kind {
	case IncomingName:
		return fmt.Sprintf("NAME %s", m.Name)
	case IncomingJoin:
		return fmt.Sprintf("JOIN %s", m.Room)
	case IncomingLeave:
		return fmt.Sprintf("LEAVE %s", m.Room)
	case IncomingSayRoom:
		return fmt.Sprintf("SAY %s %s", m.Target, m.Text)
	case IncomingSayUser:
		return fmt.Sprintf("SAY %s %s", m.Target, m.Text)
	case IncomingUsers:
		return fmt.Sprintf("USERS %s", m.Room)
	case IncomingRooms:
		return "ROOMS"
	case IncomingQuit:
		return "QUIT"
	case IncomingPong:
		return "PONG"
	default:
		return "INCOMING(unknown)"
	}
}

// ErrorKind enumerates the parse-error variants distinguishable on the wire.
type ErrorKind int

const (
	ErrorBadArguments ErrorKind = iota
	ErrorBadNameFormat
	ErrorBadRoomNameFormat
)

func (e ErrorKind) String() string {
	switch e {
	case ErrorBadArguments:
		return "ERROR bad arguments"
	case ErrorBadNameFormat:
		return "ERROR bad name format"
	case ErrorBadRoomNameFormat:
		return "ERROR bad room name format"
	default:
		return "ERROR unknown"
	}
}

// Label returns a short, metrics-friendly name for e, without the
// "ERROR " wire prefix String returns.
func (e ErrorKind) Label() string {
	switch e {
	case ErrorBadArguments:
		return "bad_arguments"
	case ErrorBadNameFormat:
		return "bad_name_format"
	case ErrorBadRoomNameFormat:
		return "bad_room_name_format"
	default:
		return "unknown"
	}
}

// ActionKind tags the variant held by a ParsedAction.
type ActionKind int

const (
	ActionIgnore ActionKind = iota
	ActionProcess
	ActionError
)

// ParsedAction is the result of parsing one input line: either nothing to
// do, a recognized command to process, or a malformed-but-recognized
// command to report back to the client.
type ParsedAction struct {
	Kind    ActionKind
	Message Incoming
	Command Command
	Error   ErrorKind
}

func Ignore() ParsedAction {
	return ParsedAction{Kind: ActionIgnore}
}

func Process(m Incoming) ParsedAction {
	return ParsedAction{Kind: ActionProcess, Message: m}
}

func ParseErrorAction(cmd Command, kind ErrorKind) ParsedAction {
	return ParsedAction{Kind: ActionError, Command: cmd, Error: kind}
}

// OutgoingKind tags the variant held by an Outgoing value.
type OutgoingKind int

const (
	OutgoingPing OutgoingKind = iota
	OutgoingConnected
	OutgoingRegistered
	OutgoingSaidUser
	OutgoingSaidRoom
	OutgoingRoom
	OutgoingUser
	OutgoingJoined
	OutgoingLeft
	OutgoingError
)

// Outgoing is a server-originated message, rendered to exactly one wire line.
type Outgoing struct {
	Kind    OutgoingKind
	From    string // SaidUser, SaidRoom
	Room    string // SaidRoom, Room, Joined, Left
	User    string // User, Joined, Left
	Text    string // SaidUser, SaidRoom
	ErrText string // Error (pre-rendered "ERROR ..." text)
}

func (m Outgoing) String() string {
	switch m.Kind {
	case OutgoingPing:
		return "PING"
	case OutgoingConnected:
		return "CONNECTED"
	case OutgoingRegistered:
		return "REGISTERED"
	case OutgoingSaidUser:
		return fmt.Sprintf("%s SAID %s", m.From, m.Text)
	case OutgoingSaidRoom:
		return fmt.Sprintf("%s %s SAID %s", m.Room, m.From, m.Text)
	case OutgoingRoom:
		return fmt.Sprintf("ROOM %s", m.Room)
	case OutgoingUser:
		return fmt.Sprintf("USER %s", m.User)
	case OutgoingJoined:
		return fmt.Sprintf("%s %s JOINED", m.Room, m.User)
	case OutgoingLeft:
		return fmt.Sprintf("%s %s LEFT", m.Room, m.User)
	case OutgoingError:
		return m.ErrText
	default:
		return ""
	}
}

func Ping() Outgoing         { return Outgoing{Kind: OutgoingPing} }
func Connected() Outgoing    { return Outgoing{Kind: OutgoingConnected} }
func Registered() Outgoing   { return Outgoing{Kind: OutgoingRegistered} }
func ErrorLine(text string) Outgoing {
	return Outgoing{Kind: OutgoingError, ErrText: text}
}

func SaidUser(from, text string) Outgoing {
	return Outgoing{Kind: OutgoingSaidUser, From: from, Text: text}
}

func SaidRoom(room, from, text string) Outgoing {
	return Outgoing{Kind: OutgoingSaidRoom, Room: room, From: from, Text: text}
}

func RoomLine(room string) Outgoing { return Outgoing{Kind: OutgoingRoom, Room: room} }
func UserLine(user string) Outgoing { return Outgoing{Kind: OutgoingUser, User: user} }

func Joined(room, user string) Outgoing {
	return Outgoing{Kind: OutgoingJoined, Room: room, User: user}
}

func Left(room, user string) Outgoing {
	return Outgoing{Kind: OutgoingLeft, Room: room, User: user}
}

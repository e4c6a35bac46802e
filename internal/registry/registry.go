// Package registry holds the process-wide, lock-protected state of
// connected users and the rooms they occupy. It is the only state shared
// across connection handler goroutines; every exported method takes the
// registry's single mutex for the duration of one operation and performs
// no network I/O while holding it.
package registry

import (
	"sort"
	"sync"

	"chatcore/internal/metrics"
	"chatcore/internal/protocol"
)

// Mailbox is the subset of mailbox.Mailbox the registry depends on. Kept
// as an interface so registry tests can use a lightweight fake instead of
// the real unbounded queue.
type Mailbox interface {
	Enqueue(protocol.Outgoing)
}

type user struct {
	mailbox Mailbox
	rooms   map[string]struct{}
}

type room struct {
	members map[string]struct{}
}

// Registry is the shared store of users and rooms.
type Registry struct {
	mu      sync.Mutex
	users   map[string]*user
	rooms   map[string]*room
	metrics metrics.Collector
}

// New returns an empty Registry reporting room and user lifecycle events
// to coll.
func New(coll metrics.Collector) *Registry {
	return &Registry{
		users:   make(map[string]*user),
		rooms:   make(map[string]*room),
		metrics: coll,
	}
}

// AddUser registers name with mb as its outbound mailbox. Fails if name
// is already registered.
func (r *Registry) AddUser(name string, mb Mailbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[name]; exists {
		return errUserAlreadyExists(name)
	}
	r.users[name] = &user{mailbox: mb, rooms: make(map[string]struct{})}
	return nil
}

// RemoveUser deletes name and removes it from every room it occupied,
// deleting any room left empty as a result.
func (r *Registry) RemoveUser(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[name]
	if !exists {
		return errUserUnknown(name)
	}
	for roomName := range u.rooms {
		r.leaveRoomLocked(roomName, name)
	}
	delete(r.users, name)
	return nil
}

// Rename atomically re-keys a user from oldName to newName, carrying its
// mailbox and room memberships along, and updating every room's member
// set. Fails without effect if oldName is unknown or newName is taken.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[oldName]
	if !exists {
		return errUserUnknown(oldName)
	}
	if _, taken := r.users[newName]; taken {
		return errUserAlreadyExists(newName)
	}

	for roomName := range u.rooms {
		rm := r.rooms[roomName]
		delete(rm.members, oldName)
		rm.members[newName] = struct{}{}
	}
	delete(r.users, oldName)
	r.users[newName] = u
	return nil
}

// JoinRoom adds userName to room, creating the room if it did not exist,
// then broadcasts Joined to the room's other members.
func (r *Registry) JoinRoom(roomName, userName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[userName]; !exists {
		return errUserUnknown(userName)
	}

	rm, exists := r.rooms[roomName]
	if !exists {
		rm = &room{members: make(map[string]struct{})}
		r.rooms[roomName] = rm
		r.metrics.RoomCreated()
	}
	rm.members[userName] = struct{}{}
	r.users[userName].rooms[roomName] = struct{}{}

	r.broadcastRoomLocked(roomName, userName, protocol.Joined(roomName, userName))
	return nil
}

// LeaveRoom removes userName from room, broadcasting Left to the members
// that remain, and deletes the room if it becomes empty. The same
// broadcast happens when membership ends as a side effect of RemoveUser,
// so remaining members are notified regardless of how a member departed.
func (r *Registry) LeaveRoom(roomName, userName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveRoomLocked(roomName, userName)
}

func (r *Registry) leaveRoomLocked(roomName, userName string) error {
	rm, exists := r.rooms[roomName]
	if !exists {
		return errRoomUnknown(roomName)
	}
	if _, inRoom := rm.members[userName]; !inRoom {
		return errUserNotInRoom(userName, roomName)
	}

	delete(rm.members, userName)
	if u, ok := r.users[userName]; ok {
		delete(u.rooms, roomName)
	}

	if len(rm.members) == 0 {
		delete(r.rooms, roomName)
		r.metrics.RoomDestroyed()
		return nil
	}

	r.broadcastRoomLocked(roomName, "", protocol.Left(roomName, userName))
	return nil
}

// Rooms returns the current room names, unordered by contract but
// returned sorted for deterministic output.
func (r *Registry) Rooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Users returns the member names of room, sorted for deterministic output.
func (r *Registry) Users(roomName string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, exists := r.rooms[roomName]
	if !exists {
		return nil, errRoomUnknown(roomName)
	}
	names := make([]string, 0, len(rm.members))
	for name := range rm.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SayToUser enqueues a SaidUser message on to's mailbox. Self-addressed
// messages are allowed and delivered normally.
func (r *Registry) SayToUser(from, to, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[to]
	if !exists {
		return errUserUnknown(to)
	}
	u.mailbox.Enqueue(protocol.SaidUser(from, text))
	return nil
}

// SayToRoom enqueues a SaidRoom message to every member of room except
// from, which is never delivered its own message.
func (r *Registry) SayToRoom(from, roomName, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, exists := r.rooms[roomName]
	if !exists {
		return errRoomUnknown(roomName)
	}
	msg := protocol.SaidRoom(roomName, from, text)
	for member := range rm.members {
		if member == from {
			continue
		}
		r.users[member].mailbox.Enqueue(msg)
	}
	return nil
}

// broadcastRoomLocked delivers msg to every member of roomName except
// exclude, which may be empty to notify everyone. Caller must hold mu.
func (r *Registry) broadcastRoomLocked(roomName, exclude string, msg protocol.Outgoing) {
	rm, exists := r.rooms[roomName]
	if !exists {
		return
	}
	for member := range rm.members {
		if member == exclude {
			continue
		}
		if u, ok := r.users[member]; ok {
			u.mailbox.Enqueue(msg)
		}
	}
}

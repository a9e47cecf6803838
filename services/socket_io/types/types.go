package socketio_types

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer is a struct that contains the socket.io server and a map of
// socket connections. It is used to handle socket.io connections and doubles
// as the per-room Realtime Bus for the duel actors.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket
	// Map to track username -> current duel room code
	UserRooms map[string]string
	mutex     sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
		UserRooms:       make(map[string]string),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(username string, sock *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = sock
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
	delete(s.UserRooms, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	sock, exists := s.UserConnections[username]
	return sock, exists
}

// Track which duel room a user currently sits in, so disconnects can be
// routed to the right actor.
func (s *SocketServer) SetUserRoom(username string, roomCode string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserRooms[username] = roomCode
}

func (s *SocketServer) ClearUserRoom(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserRooms, username)
}

func (s *SocketServer) GetUserRoom(username string) (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	roomCode, exists := s.UserRooms[username]
	return roomCode, exists
}

// Publish implements the duel actor's Bus: fan an event out to every client
// subscribed to the room's channel. Delivery is at-least-once and may
// reorder under reconnection, consumers key off the payload's "seq".
func (s *SocketServer) Publish(roomCode string, event string, payload gin.H) {
	s.Sio_server.To(socket.Room(roomCode)).Emit(event, payload)
}

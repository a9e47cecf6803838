package handlers

import (
	"Lexiduel/services/duel"
	socketio_types "Lexiduel/services/socket_io/types"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleLeaveDuel is the voluntary exit path. Teardown is the same as a
// disconnect: unregister from the actor, leave the socket room, clear the
// tracked room. Scoped-resource release must happen on every exit path.
func HandleLeaveDuel(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		roomCode, ok := sio.GetUserRoom(username)
		if !ok {
			client.Emit("error", gin.H{"error": "You are not in a duel"})
			return
		}
		leaveRoom(registry, db, username, roomCode)
		client.Leave(socket.Room(roomCode))
		sio.ClearUserRoom(username)
		client.Emit("duel_left", gin.H{"room_code": roomCode})
		log.Printf("[LEAVE] User %s left room %s", username, roomCode)
	}
}

// HandleDisconnecting releases the same resources when the socket dies
// (navigation away, app close, network loss).
func HandleDisconnecting(registry *duel.Registry, db *gorm.DB, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] User %s disconnecting", username)
		if roomCode, ok := sio.GetUserRoom(username); ok {
			leaveRoom(registry, db, username, roomCode)
		}
		sio.RemoveConnection(username)
	}
}

// releasePreviousRoom detaches a user from the room they are still tracked
// in before they join a different one. Without this, switching rooms leaves
// a ghost registration in the old actor that blocks its all-ready start.
// Returns the code of the room that was released.
func releasePreviousRoom(registry *duel.Registry, db *gorm.DB,
	sio *socketio_types.SocketServer, username string, newRoomCode string) (string, bool) {
	prev, ok := sio.GetUserRoom(username)
	if !ok || prev == newRoomCode {
		return "", false
	}
	leaveRoom(registry, db, username, prev)
	sio.ClearUserRoom(username)
	return prev, true
}

func leaveRoom(registry *duel.Registry, db *gorm.DB, username string, roomCode string) {
	if actor, exists := registry.Get(roomCode); exists {
		if err := actor.Leave(username); err != nil && err != duel.ErrNotInRoom {
			log.Printf("[LEAVE-ERROR] Actor leave failed for %s in %s: %v", username, roomCode, err)
		}
	}

	// A lobby departure frees the roster slot; mid-round and finished rows
	// stay, the roster is reused across rematches
	result := db.Exec(
		"DELETE FROM room_players WHERE room_id = ? AND username = ? AND (SELECT status FROM duel_rooms WHERE id = ?) = 'WAITING'",
		roomCode, username, roomCode)
	if result.Error != nil {
		log.Printf("[LEAVE-ERROR] Could not free roster row of %s: %v", username, result.Error)
	}

	if err := db.Exec("UPDATE game_profiles SET is_in_a_duel = false WHERE username = ?",
		username).Error; err != nil {
		log.Printf("[LEAVE-ERROR] Could not unflag profile of %s: %v", username, err)
	}
}

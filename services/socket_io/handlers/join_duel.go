package handlers

import (
	models "Lexiduel/models/postgres"
	"Lexiduel/services/duel"
	socketio_types "Lexiduel/services/socket_io/types"
	socketio_utils "Lexiduel/services/socket_io/utils"
	"Lexiduel/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleJoinDuel subscribes the caller to a duel room: validates the room
// row, registers with the room actor, ensures the roster row and joins the
// socket.io room. A failed fetch leaves the caller out (fail-closed).
func HandleJoinDuel(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[JOIN] HandleJoinDuel started - User: %s, Args: %v, Socket ID: %s",
			username, args, client.Id())

		if len(args) < 1 {
			log.Printf("[JOIN-ERROR] Missing arguments for user %s", username)
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}

		roomCode, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Room code must be a string"})
			return
		}

		// 1. The durable row is the source of truth for existence and host
		room, err := utils.CheckRoomExists(db, roomCode)
		if err != nil {
			log.Printf("[JOIN-ERROR] Room lookup failed for %s: %v", roomCode, err)
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		// 2. Detach from any room the user is still tracked in, a join for
		// room B must not leave a ghost registration pinning room A
		if prev, left := releasePreviousRoom(registry, db, sio, username, roomCode); left {
			client.Leave(socket.Room(prev))
			log.Printf("[JOIN] User %s released room %s before joining %s", username, prev, roomCode)
		}

		// 3. Admit the player and ensure the roster row
		snapshot, err := registerPlayer(registry, db, room, username)
		if err != nil {
			log.Printf("[JOIN-ERROR] Join rejected for %s in room %s: %v", username, roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		// 4. Subscribe to the room channel
		client.Join(socket.Room(roomCode))
		sio.SetUserRoom(username, roomCode)

		if err := db.Exec("UPDATE game_profiles SET is_in_a_duel = true WHERE username = ?",
			username).Error; err != nil {
			log.Printf("[JOIN-ERROR] Could not flag profile of %s: %v", username, err)
		}

		log.Printf("[JOIN-SUCCESS] User %s joined duel room %s", username, roomCode)
		client.Emit("duel_joined", gin.H{
			"room_code": roomCode,
			"snapshot":  snapshot,
			"message":   "Welcome to the duel!",
		})
	}
}

// registerPlayer admits the player with the room actor first and only then
// ensures the roster row, so a rejected join (room full, duel in progress)
// leaves no durable trace. At most one row per (room, identity).
func registerPlayer(registry *duel.Registry, db *gorm.DB,
	room *models.DuelRoom, username string) (duel.Snapshot, error) {
	actor := registry.GetOrCreate(room.ID, room.HostUsername, room.Status,
		socketio_utils.RoomSettings(room))
	snapshot, err := actor.Join(username)
	if err != nil {
		return duel.Snapshot{}, err
	}

	player := models.RoomPlayer{RoomID: room.ID, Username: username}
	if err := db.Where("room_id = ? AND username = ?", room.ID, username).
		FirstOrCreate(&player).Error; err != nil {
		// Roll the admission back, the roster row and the actor must agree
		if leaveErr := actor.Leave(username); leaveErr != nil {
			log.Printf("[JOIN-ERROR] Could not undo admission of %s: %v", username, leaveErr)
		}
		return duel.Snapshot{}, err
	}
	return snapshot, nil
}

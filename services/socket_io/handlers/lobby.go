package handlers

import (
	game_constants "Lexiduel/constants/game"
	"Lexiduel/services/duel"
	socketio_types "Lexiduel/services/socket_io/types"
	socketio_utils "Lexiduel/services/socket_io/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleSetReady toggles the caller's own ready flag. Every player may do
// this, host or not.
func HandleSetReady(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or ready flag"})
			return
		}
		roomCode, _ := args[0].(string)
		ready, ok := args[1].(bool)
		if !ok {
			client.Emit("error", gin.H{"error": "Ready flag must be a boolean"})
			return
		}

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.SetReady(username, ready); err != nil {
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}

		// Mirror the flag on the roster row so lobby reads agree with the bus
		if err := db.Exec("UPDATE room_players SET is_ready = ? WHERE room_id = ? AND username = ?",
			ready, roomCode, username).Error; err != nil {
			log.Printf("[READY-ERROR] Could not persist ready flag of %s: %v", username, err)
		}
		log.Printf("[READY] User %s in room %s is_ready=%v", username, roomCode, ready)
	}
}

// HandleUpdateSettings lets the host edit the room while WAITING. The actor
// is the authority check: any non-host caller is rejected there, not in UI.
func HandleUpdateSettings(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or settings"})
			return
		}
		roomCode, _ := args[0].(string)
		raw, ok := args[1].(map[string]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Settings must be an object"})
			return
		}

		settings := parseSettings(raw)
		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.UpdateSettings(username, settings); err != nil {
			log.Printf("[SETTINGS-ERROR] %s rejected for room %s: %v", username, roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		log.Printf("[SETTINGS] Room %s updated by host %s: %+v", roomCode, username, settings)
	}
}

// parseSettings maps a socket.io JSON object onto the actor's Settings.
// Numbers arrive as float64, the skill list as []interface{}.
func parseSettings(raw map[string]interface{}) duel.Settings {
	settings := duel.Settings{
		TimeLimit: game_constants.DEFAULT_TIME_LIMIT,
	}
	if v, ok := raw["time_limit"].(float64); ok {
		settings.TimeLimit = int(v)
	}
	if v, ok := raw["lives"].(float64); ok {
		settings.Lives = int(v)
	}
	if rawSkills, ok := raw["allowed_skills"].([]interface{}); ok {
		for _, s := range rawSkills {
			if skill, ok := s.(string); ok {
				settings.AllowedSkills = append(settings.AllowedSkills, skill)
			}
		}
	}
	return settings
}

// GetDuelInfo replies with the full room snapshot: phase, settings, host and
// roster. Joining and reconnecting clients catch up through this.
func GetDuelInfo(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)

		if _, err := socketio_utils.ValidateRoomAndUser(client, db, username, roomCode); err != nil {
			// Error already emitted in ValidateRoomAndUser
			return
		}

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		client.Emit("duel_info", gin.H{"snapshot": actor.Snapshot()})
	}
}

// BroadcastMessageToDuel relays a free-form chat message to the whole room.
func BroadcastMessageToDuel(client *socket.Socket, db *gorm.DB,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or message"})
			return
		}
		roomCode, _ := args[0].(string)
		message, _ := args[1].(string)

		if _, err := socketio_utils.ValidateRoomAndUser(client, db, username, roomCode); err != nil {
			return
		}

		sio.Publish(roomCode, "duel_message", gin.H{
			"username": username,
			"message":  message,
		})
	}
}

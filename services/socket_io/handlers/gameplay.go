package handlers

import (
	"Lexiduel/services/duel"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleStartDuel flips the room to STARTING. The actor enforces host
// identity, minimum player count and everyone being ready.
func HandleStartDuel(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.Start(username); err != nil {
			log.Printf("[START-ERROR] %s could not start room %s: %v", username, roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		log.Printf("[START] Host %s started the duel in room %s", username, roomCode)
	}
}

// HandleSubmitAnswer scores one answered question for the caller. Clients
// race through their own private question streams; only the outcome travels.
func HandleSubmitAnswer(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or answer outcome"})
			return
		}
		roomCode, _ := args[0].(string)
		correct, ok := args[1].(bool)
		if !ok {
			client.Emit("error", gin.H{"error": "Answer outcome must be a boolean"})
			return
		}

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.SubmitAnswer(username, correct); err != nil {
			// Frozen and eliminated answers are dropped quietly, resending
			// them is part of normal at-least-once client behavior
			if err == duel.ErrFrozen || err == duel.ErrEliminated {
				return
			}
			client.Emit("error", gin.H{"error": err.Error()})
		}
	}
}

// HandleUsePowerUp applies a crystal. The actor debits the inventory first;
// a failed debit is a silent no-op that costs nothing.
func HandleUsePowerUp(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or crystal kind"})
			return
		}
		roomCode, _ := args[0].(string)
		kind, _ := args[1].(string)

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.UsePowerUp(username, kind); err != nil {
			log.Printf("[POWERUP-ERROR] %s could not use %s in room %s: %v", username, kind, roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
		}
	}
}

// HandleRequestRematch flips FINISHED back to WAITING: scores and readiness
// reset on the same rows, host-gated inside the actor.
func HandleRequestRematch(registry *duel.Registry, client *socket.Socket,
	db *gorm.DB, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)

		actor, exists := registry.Get(roomCode)
		if !exists {
			client.Emit("error", gin.H{"error": "Room is not active"})
			return
		}
		if err := actor.Rematch(username); err != nil {
			log.Printf("[REMATCH-ERROR] %s could not restart room %s: %v", username, roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		log.Printf("[REMATCH] Host %s restarted room %s", username, roomCode)
	}
}

package socketio_utils

import (
	"Lexiduel/middleware"
	models "Lexiduel/models/postgres"
	"Lexiduel/services/duel"
	"Lexiduel/utils"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Function that verifies a socket.io client connection using JWT authentication.
// It extracts the email from the JWT token and retrieves the associated username from the database.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, username, email string) {
	// Checks if we have auth data in the connection
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	// Decode JWT to get the user's email
	email, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		fmt.Println("Error decoding JWT:", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field and with the 'Bearer ' prefix.",
		})
		return false, "", ""
	}

	// Fetch username from database using the email
	var user models.User
	result := db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		fmt.Println("Error fetching user from database:", result.Error)
		client.Emit("error", gin.H{"error": "Authentication failed: could not find user"})
		return false, "", email
	}

	username = user.ProfileUsername
	return true, username, email
}

// Helper function to validate a room and its membership, returning the
// durable row if valid. Errors are emitted to the client here.
func ValidateRoomAndUser(client *socket.Socket, db *gorm.DB,
	username string, roomCode string) (*models.DuelRoom, error) {

	log.Printf("[DUEL-CHECK] Validating room %s and user %s", roomCode, username)

	room, err := utils.CheckRoomExists(db, roomCode)
	if err != nil {
		log.Printf("[DUEL-CHECK-ERROR] Room does not exist: %s", roomCode)
		client.Emit("error", gin.H{"error": "Room does not exist"})
		return nil, err
	}

	isInRoom, err := utils.UserExistsInRoom(db, roomCode, username, client)
	if err != nil {
		log.Printf("[DUEL-CHECK-ERROR] Database error: %v", err)
		return nil, err
	}

	if !isInRoom {
		log.Printf("[DUEL-CHECK-ERROR] User is NOT in room: %s, Room: %s", username, roomCode)
		client.Emit("error", gin.H{"error": "You must join the duel first"})
		return nil, fmt.Errorf("user not in room")
	}

	return room, nil
}

// RoomSettings converts the durable row's settings columns into the actor's
// Settings value (the JSONB skill list becomes a plain slice).
func RoomSettings(room *models.DuelRoom) duel.Settings {
	s := duel.Settings{
		TimeLimit: room.TimeLimit,
		Lives:     room.Lives,
	}
	if len(room.AllowedSkills) > 0 {
		if err := json.Unmarshal(room.AllowedSkills, &s.AllowedSkills); err != nil {
			log.Printf("[DUEL-CHECK-ERROR] Bad allowed_skills JSON for room %s: %v", room.ID, err)
		}
	}
	return s
}

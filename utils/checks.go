package utils

import (
	"fmt"

	"Lexiduel/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// Function to check if a duel room exists
func CheckRoomExists(db *gorm.DB, roomCode string) (*postgres.DuelRoom, error) {
	var room postgres.DuelRoom
	result := db.Where("id = ?", roomCode).First(&room)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("room not found")
		}
		return nil, result.Error
	}

	return &room, nil
}

func IsPlayerInRoom(db *gorm.DB, roomCode string, username string) (bool, error) {
	var count int64
	err := db.Model(&postgres.RoomPlayer{}).
		Where("room_id = ? AND username = ?", roomCode, username).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Check if user is in the room, emitting the error to the socket client
func UserExistsInRoom(db *gorm.DB, roomCode string, username string, client *socket.Socket) (inRoom bool, e error) {
	isInRoom, err := IsPlayerInRoom(db, roomCode, username)
	if err != nil {
		fmt.Println("Database error:", err)
		client.Emit("error", gin.H{"error": "Database error"})
	}
	return isInRoom, err
}

// Returns the icon of the user
func UserIcon(db *gorm.DB, username string) int {
	var icon int
	err := db.Model(&postgres.GameProfile{}).
		Select("user_icon").
		Where("username = ?", username).
		Find(&icon).Error
	if err != nil {
		return 1
	}

	return icon
}

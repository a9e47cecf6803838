package controllers

import (
	game_constants "Lexiduel/constants/game"
	"Lexiduel/middleware"
	models "Lexiduel/models/postgres"
	"Lexiduel/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Creates a new duel room
// @Description Creates a WAITING room with the caller as explicit host and returns its join code
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{message=string,room_code=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms [post]
// @Security ApiKeyAuth
func CreateRoom(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
			return
		}

		// The host is stored explicitly at creation time; every host-gated
		// write is validated against this column, not against join order
		newRoom := models.DuelRoom{
			HostUsername: user.ProfileUsername,
			Status:       game_constants.PhaseWaiting,
			TimeLimit:    game_constants.DEFAULT_TIME_LIMIT,
		}

		// There is a "BeforeCreate" hook on the DuelRoom model for the code generation
		if err := db.Create(&newRoom).Error; err != nil {
			log.Printf("[ROOM-ERROR] Failed to create room for %s: %v", user.ProfileUsername, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating room"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"room_code": newRoom.ID, "message": "Room created successfully"})
	}
}

// @Summary Gives info of a duel room
// @Description Given a room code, it will return its status, settings, host and roster
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_code path string true "Code of the room wanted"
// @Success 200 {object} object{room_code=string,status=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms/{room_code} [get]
// @Security ApiKeyAuth
func GetRoomInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomCode := c.Param("room_code")

		var room models.DuelRoom
		result := db.Where("id = ?", roomCode).First(&room)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			}
			return
		}

		var players []models.RoomPlayer
		if err := db.Where("room_id = ?", roomCode).Order("created_at asc").
			Find(&players).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving roster"})
			return
		}

		roster := make([]gin.H, len(players))
		for i, p := range players {
			roster[i] = gin.H{
				"username": p.Username,
				"score":    p.Score,
				"is_ready": p.IsReady,
				"icon":     utils.UserIcon(db, p.Username),
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"room_code":      room.ID,
			"host_username":  room.HostUsername,
			"status":         room.Status,
			"time_limit":     room.TimeLimit,
			"lives":          room.Lives,
			"allowed_skills": room.AllowedSkills,
			"created_at":     room.CreatedAt,
			"players":        roster,
		})
	}
}

// @Summary Lists all joinable duel rooms
// @Description Returns every room still in the WAITING phase
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{room_code=string,host_username=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms [get]
// @Security ApiKeyAuth
func GetAllRooms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var duelRooms []models.DuelRoom
		if err := db.Where("status = ?", game_constants.PhaseWaiting).
			Find(&duelRooms).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving rooms"})
			return
		}

		rooms := make([]gin.H, len(duelRooms))
		for i, room := range duelRooms {
			rooms[i] = gin.H{
				"room_code":     room.ID,
				"host_username": room.HostUsername,
				"time_limit":    room.TimeLimit,
				"lives":         room.Lives,
				"created_at":    room.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, rooms)
	}
}

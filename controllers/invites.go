package controllers

import (
	game_constants "Lexiduel/constants/game"
	"Lexiduel/middleware"
	models "Lexiduel/models/postgres"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func authenticatedUsername(c *gin.Context, db *gorm.DB) (string, bool) {
	email, err := middleware.JWT_decoder(c)
	if err != nil {
		return "", false
	}
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
		return "", false
	}
	return user.ProfileUsername, true
}

// @Summary Sends a duel invite
// @Description Invites another player to the caller's WAITING room. Invites expire after 2 minutes.
// @Tags invites
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "Username of the invited player"
// @Param room_code query string true "Code of the room to join"
// @Success 200 {object} object{message=string,match_id=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/invites/{username} [post]
// @Security ApiKeyAuth
func SendInvite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sender, ok := authenticatedUsername(c, db)
		if !ok {
			return
		}

		receiver := c.Param("username")
		roomCode := c.Query("room_code")
		if receiver == sender {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot invite yourself"})
			return
		}

		var receiverProfile models.GameProfile
		if err := db.Where("username = ?", receiver).First(&receiverProfile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invited player not found"})
			return
		}

		var room models.DuelRoom
		if err := db.Where("id = ?", roomCode).First(&room).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		if room.Status != game_constants.PhaseWaiting {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The duel has already started"})
			return
		}

		invite := models.DuelInvite{
			RoomID:           roomCode,
			SenderUsername:   sender,
			ReceiverUsername: receiver,
		}
		if err := db.Create(&invite).Error; err != nil {
			log.Printf("[INVITE-ERROR] Failed to create invite %s -> %s: %v", sender, receiver, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating invite"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Invite sent",
			"match_id": invite.MatchID,
		})
	}
}

// @Summary Lists the caller's pending duel invites
// @Description Returns PENDING invites received by the caller. Expired invites (older than 2 minutes) are filtered out, never deleted.
// @Tags invites
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{invites=array}
// @Failure 500 {object} object{error=string}
// @Router /auth/invites [get]
// @Security ApiKeyAuth
func GetInvites(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := authenticatedUsername(c, db)
		if !ok {
			return
		}

		var invites []models.DuelInvite
		if err := db.Where("receiver_username = ? AND status = ?", username, models.InvitePending).
			Find(&invites).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving invites"})
			return
		}

		now := time.Now()
		pending := []gin.H{}
		for _, invite := range invites {
			if invite.Expired(now) {
				continue
			}
			pending = append(pending, gin.H{
				"match_id":   invite.MatchID,
				"room_code":  invite.RoomID,
				"sender":     invite.SenderUsername,
				"created_at": invite.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"invites": pending})
	}
}

// @Summary Accepts a duel invite
// @Description Marks a pending, unexpired invite as accepted and returns the room code to join
// @Tags invites
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param match_id path string true "Match id of the invite"
// @Success 200 {object} object{message=string,room_code=string}
// @Failure 404 {object} object{error=string}
// @Failure 410 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/invites/{match_id}/accept [post]
// @Security ApiKeyAuth
func AcceptInvite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := authenticatedUsername(c, db)
		if !ok {
			return
		}

		matchID := c.Param("match_id")
		var invite models.DuelInvite
		if err := db.Where("match_id = ? AND receiver_username = ? AND status = ?",
			matchID, username, models.InvitePending).First(&invite).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
			return
		}

		if invite.Expired(time.Now()) {
			// Left in place on purpose, expired invites are only ever filtered
			c.JSON(http.StatusGone, gin.H{"error": "Invite has expired"})
			return
		}

		if err := db.Model(&invite).Update("status", models.InviteAccepted).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error accepting invite"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "Invite accepted",
			"room_code": invite.RoomID,
		})
	}
}

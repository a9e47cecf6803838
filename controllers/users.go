package controllers

import (
	"Lexiduel/middleware"
	models "Lexiduel/models/postgres"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @Summary Health check
// @Description Returns pong
// @Tags misc
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

// @Summary Creates a new user account
// @Description Registers a user with its game profile and returns a JWT
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} object{message=string,token=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signup payload"})
			return
		}

		var existing models.User
		if err := db.Where("email = ? OR profile_username = ?", req.Email, req.Username).
			First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email or username already in use"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		profile := models.GameProfile{Username: req.Username}
		user := models.User{
			Email:           req.Email,
			ProfileUsername: req.Username,
			PasswordHash:    string(hash),
			FullName:        req.FullName,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			log.Printf("[SIGNUP-ERROR] Failed to create user %s: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		token, err := middleware.GenerateToken(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User created successfully", "token": token})
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Logs a user in
// @Description Validates credentials and returns a JWT for the session
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} object{message=string,token=string,username=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login payload"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := middleware.GenerateToken(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Login successful",
			"token":    token,
			"username": user.ProfileUsername,
		})
	}
}

// @Summary Own profile and duel stats
// @Description Returns the authenticated user's game profile
// @Tags user
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{username=string,total_duels=integer,total_wins=integer,xp=integer}
// @Failure 404 {object} object{error=string}
// @Router /auth/profile [get]
// @Security ApiKeyAuth
func GetProfile(db *gorm.DB) gin.HandlerFunc {
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

		var profile models.GameProfile
		if err := db.Where("username = ?", user.ProfileUsername).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game profile not found"})
			return
		}

		var crystals []models.CrystalInventory
		if err := db.Where("username = ?", profile.Username).Find(&crystals).Error; err != nil {
			log.Printf("[PROFILE-ERROR] Could not fetch crystals of %s: %v", profile.Username, err)
		}
		crystalCounts := gin.H{}
		for _, item := range crystals {
			crystalCounts[item.Kind] = item.Quantity
		}

		c.JSON(http.StatusOK, gin.H{
			"username":    profile.Username,
			"total_duels": profile.TotalDuels,
			"total_wins":  profile.TotalWins,
			"xp":          profile.Xp,
			"icon":        profile.UserIcon,
			"crystals":    crystalCounts,
		})
	}
}

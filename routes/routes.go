package routes

import (
	"Lexiduel/controllers"
	"Lexiduel/middleware"
	utils "Lexiduel/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	// Routes that require authentication
	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/profile", controllers.GetProfile(db))

		authentication.POST("/rooms", controllers.CreateRoom(db))

		authentication.GET("/rooms", controllers.GetAllRooms(db))

		authentication.GET("/rooms/:room_code", controllers.GetRoomInfo(db))

		authentication.POST("/invites/:username", controllers.SendInvite(db))

		authentication.GET("/invites", controllers.GetInvites(db))

		authentication.POST("/invites/:match_id/accept", controllers.AcceptInvite(db))
	}
}

package socket_io

import (
	"Lexiduel/services/duel"
	"Lexiduel/services/socket_io/handlers"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	socketio_types "Lexiduel/services/socket_io/types"
	socketio_utils "Lexiduel/services/socket_io/utils"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, registry *duel.Registry) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the maps, the handlers panic otherwise
	sio.UserConnections = make(map[string]*socket.Socket)
	sio.UserRooms = make(map[string]string)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, _ := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		fmt.Println("An individual just connected!: ", username)

		// Join the user to a socket room corresponding to a Lexiduel duel
		client.On("join_duel", handlers.HandleJoinDuel(registry, client, db, username, (*socketio_types.SocketServer)(sio)))

		// Exit a duel voluntarily
		client.On("leave_duel", handlers.HandleLeaveDuel(registry, client, db, username, (*socketio_types.SocketServer)(sio)))

		// Toggle the caller's own ready flag while the room is WAITING
		client.On("set_ready", handlers.HandleSetReady(registry, client, db, username))

		// Host-only: edit time limit / lives / allowed skills while WAITING
		client.On("update_settings", handlers.HandleUpdateSettings(registry, client, db, username))

		// Host-only: WAITING -> STARTING, begins the authoritative countdown
		client.On("start_duel", handlers.HandleStartDuel(registry, client, db, username))

		// Score one answered question (correct / incorrect outcome)
		client.On("submit_answer", handlers.HandleSubmitAnswer(registry, client, db, username))

		// Use a crystal: stasis, divine or overflow
		client.On("use_power_up", handlers.HandleUsePowerUp(registry, client, db, username))

		// Host-only: FINISHED -> WAITING with scores and readiness reset
		client.On("request_rematch", handlers.HandleRequestRematch(registry, client, db, username))

		// Full room snapshot, for joiners and reconnections
		client.On("get_duel_info", handlers.GetDuelInfo(registry, client, db, username))

		// Broadcast a chat message to all clients in the duel room
		client.On("broadcast_to_duel", handlers.BroadcastMessageToDuel(client, db, username, (*socketio_types.SocketServer)(sio)))

		// NOTE: will remove sio connection from map and notify the actor
		client.On("disconnecting", handlers.HandleDisconnecting(registry, db, username, (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				registry.Shutdown()
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}

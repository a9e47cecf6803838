package controllers

import (
	"Lexiduel/middleware"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Setup test environment: GORM riding on a sqlmock connection
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gormDB, mock
}

func authHeader(t *testing.T, email string) string {
	t.Helper()
	token, err := middleware.GenerateToken(email)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", Ping)

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decodeBody(t, w)["message"])
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := setupMockDB(t)

	router := gin.New()
	router.POST("/login", Login(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.MinCost)
	require.NoError(t, err)

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"email", "profile_username", "password_hash"}).
			AddRow("alice@example.com", "alice", string(hash))
	}
	doLogin := func(email, password string) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(gin.H{"email": email, "password": password})
		req, _ := http.NewRequest("POST", "/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Login successfully", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WillReturnRows(userRow())

		w := doLogin("alice@example.com", "testpass123")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.NotEmpty(t, body["token"])
	})

	t.Run("Wrong password", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WillReturnRows(userRow())

		w := doLogin("alice@example.com", "not-the-password")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"email"}))

		w := doLogin("nobody@example.com", "whatever")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		w := doLogin("not-an-email", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoomInfo(t *testing.T) {
	db, mock := setupMockDB(t)

	router := gin.New()
	router.GET("/rooms/:room_code", GetRoomInfo(db))

	t.Run("Room with roster", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "duel_rooms" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "host_username", "status", "time_limit", "lives", "allowed_skills", "created_at"}).
				AddRow("aB3d", "alice", "WAITING", 60, 0, []byte(`["stasis","divine","overflow"]`), time.Now()))

		mock.ExpectQuery(`SELECT \* FROM "room_players" WHERE room_id = \$1`).
			WithArgs("aB3d").
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "username", "score", "is_ready"}).
				AddRow("aB3d", "alice", 0, true).
				AddRow("aB3d", "bob", 0, false))

		// One icon lookup per roster entry
		mock.ExpectQuery(`SELECT "user_icon" FROM "game_profiles" WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"user_icon"}).AddRow(3))
		mock.ExpectQuery(`SELECT "user_icon" FROM "game_profiles" WHERE username = \$1`).
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"user_icon"}).AddRow(7))

		req, _ := http.NewRequest("GET", "/rooms/aB3d", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "aB3d", body["room_code"])
		assert.Equal(t, "alice", body["host_username"])
		assert.Equal(t, "WAITING", body["status"])
		players, ok := body["players"].([]interface{})
		require.True(t, ok)
		require.Len(t, players, 2)
		first, ok := players[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(3), first["icon"])
	})

	t.Run("Room not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "duel_rooms" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		req, _ := http.NewRequest("GET", "/rooms/nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllRoomsListsOnlyWaiting(t *testing.T) {
	db, mock := setupMockDB(t)

	router := gin.New()
	router.GET("/rooms", GetAllRooms(db))

	mock.ExpectQuery(`SELECT \* FROM "duel_rooms" WHERE status = \$1`).
		WithArgs("WAITING").
		WillReturnRows(sqlmock.NewRows([]string{"id", "host_username", "time_limit", "lives"}).
			AddRow("aB3d", "alice", 60, 0).
			AddRow("Xy9z", "bob", 120, 3))

	req, _ := http.NewRequest("GET", "/rooms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var rooms []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "aB3d", rooms[0]["room_code"])
	assert.Equal(t, "bob", rooms[1]["host_username"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvitesFiltersExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db, mock := setupMockDB(t)

	router := gin.New()
	router.GET("/invites", GetInvites(db))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"email", "profile_username"}).
			AddRow("alice@example.com", "alice"))

	fresh := uuid.New()
	stale := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "duel_invites" WHERE receiver_username = \$1 AND status = \$2`).
		WithArgs("alice", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"match_id", "room_id", "sender_username", "receiver_username", "status", "created_at"}).
			AddRow(fresh.String(), "aB3d", "bob", "alice", "PENDING", time.Now().Add(-30*time.Second)).
			AddRow(stale.String(), "Xy9z", "carol", "alice", "PENDING", time.Now().Add(-10*time.Minute)))

	req, _ := http.NewRequest("GET", "/invites", nil)
	req.Header.Set("Authorization", authHeader(t, "alice@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	invites, ok := body["invites"].([]interface{})
	require.True(t, ok)
	// The stale invite stays in the table but never reaches the response
	require.Len(t, invites, 1)
	first := invites[0].(map[string]interface{})
	assert.Equal(t, fresh.String(), first["match_id"])
	assert.Equal(t, "bob", first["sender"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticatedEndpointsRejectMissingToken(t *testing.T) {
	db, _ := setupMockDB(t)

	router := gin.New()
	router.GET("/profile", GetProfile(db))

	req, _ := http.NewRequest("GET", "/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

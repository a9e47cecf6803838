package redis

import (
	redis_models "Lexiduel/models/redis"
	redis_utils "Lexiduel/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Live state keys expire on their own if a room is abandoned mid-round
const liveStateTTL = 24 * time.Hour

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SaveDuelRoom stores a room's live round state in Redis
// Key format: "duel:{code}"
// TTL: 24 hours
func (rc *RedisClient) SaveDuelRoom(room *redis_models.DuelRoom) error {
	key := redis_utils.FormatDuelKey(room.Code)
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("error marshaling duel room data: %v", err)
	}
	return rc.Client.Set(rc.Ctx, key, data, liveStateTTL).Err()
}

// GetDuelRoom retrieves a room's live round state from Redis
// Key format: "duel:{code}"
// Returns: DuelRoom struct or error
func (rc *RedisClient) GetDuelRoom(roomCode string) (*redis_models.DuelRoom, error) {
	key := redis_utils.FormatDuelKey(roomCode)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting duel room data: %v", err)
	}

	var room redis_models.DuelRoom
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("error unmarshaling duel room data: %v", err)
	}
	return &room, nil
}

// DeleteDuelRoom removes a room's live state from Redis
// Key format: "duel:{code}"
func (rc *RedisClient) DeleteDuelRoom(roomCode string) error {
	key := redis_utils.FormatDuelKey(roomCode)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting duel room data: %v", err)
	}
	return nil
}

// SaveDuelPlayer stores a player's live duel state in Redis
// Key format: "duel_player:{code}:{username}"
// TTL: 24 hours
func (rc *RedisClient) SaveDuelPlayer(player *redis_models.DuelPlayer) error {
	key := redis_utils.FormatDuelPlayerKey(player.RoomCode, player.Username)
	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("error marshaling duel player data: %v", err)
	}
	return rc.Client.Set(rc.Ctx, key, data, liveStateTTL).Err()
}

// GetDuelPlayer retrieves a player's live duel state from Redis
// Key format: "duel_player:{code}:{username}"
// Returns: DuelPlayer struct or error
func (rc *RedisClient) GetDuelPlayer(roomCode string, username string) (*redis_models.DuelPlayer, error) {
	key := redis_utils.FormatDuelPlayerKey(roomCode, username)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting duel player data: %v", err)
	}

	var player redis_models.DuelPlayer
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("error unmarshaling duel player data: %v", err)
	}
	return &player, nil
}

// DeleteDuelPlayer removes a player's live duel state from Redis
func (rc *RedisClient) DeleteDuelPlayer(roomCode string, username string) error {
	key := redis_utils.FormatDuelPlayerKey(roomCode, username)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting duel player data: %v", err)
	}
	return nil
}

// GetAllPlayersInDuel retrieves every player's live state for a room,
// scanning the "duel_player:{code}:*" keyspace
func (rc *RedisClient) GetAllPlayersInDuel(roomCode string) ([]redis_models.DuelPlayer, error) {
	pattern := redis_utils.FormatDuelPlayerPattern(roomCode)
	var players []redis_models.DuelPlayer

	iter := rc.Client.Scan(rc.Ctx, 0, pattern, 100).Iterator()
	for iter.Next(rc.Ctx) {
		data, err := rc.Client.Get(rc.Ctx, iter.Val()).Bytes()
		if err != nil {
			// Key expired between SCAN and GET, just skip it
			continue
		}
		var player redis_models.DuelPlayer
		if err := json.Unmarshal(data, &player); err != nil {
			return nil, fmt.Errorf("error unmarshaling duel player data: %v", err)
		}
		players = append(players, player)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning duel players: %v", err)
	}
	return players, nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}

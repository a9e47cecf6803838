package sync

import (
	"Lexiduel/services/duel"
	redis_service "Lexiduel/services/redis"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SyncManager flushes the actor's live round state back to PostgreSQL. It
// implements the duel.Persistence collaborator.
type SyncManager struct {
	redisClient *redis_service.RedisClient
	db          *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis_service.RedisClient, db *gorm.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// SaveSettings persists the host's room settings while the room is WAITING.
func (sm *SyncManager) SaveSettings(roomCode string, s duel.Settings) error {
	skills, err := json.Marshal(s.AllowedSkills)
	if err != nil {
		return fmt.Errorf("error marshaling allowed skills: %v", err)
	}
	result := sm.db.Exec(
		"UPDATE duel_rooms SET time_limit = ?, lives = ?, allowed_skills = ? WHERE id = ?",
		s.TimeLimit, s.Lives, skills, roomCode)
	if result.Error != nil {
		return fmt.Errorf("error updating room settings in PostgreSQL: %v", result.Error)
	}
	return nil
}

// SetRoomStatus mirrors the actor's phase transition onto the durable row,
// keeping the WAITING -> STARTING -> PLAYING -> FINISHED cycle observable
// through the store as well as the bus.
func (sm *SyncManager) SetRoomStatus(roomCode string, status string) error {
	result := sm.db.Exec(
		"UPDATE duel_rooms SET status = ? WHERE id = ?", status, roomCode)
	if result.Error != nil {
		return fmt.Errorf("error updating room status in PostgreSQL: %v", result.Error)
	}
	return nil
}

// SetHost persists a host migration (the previous host left the room).
func (sm *SyncManager) SetHost(roomCode string, username string) error {
	result := sm.db.Exec(
		"UPDATE duel_rooms SET host_username = ? WHERE id = ?", username, roomCode)
	if result.Error != nil {
		return fmt.Errorf("error updating room host in PostgreSQL: %v", result.Error)
	}
	return nil
}

// FlushFinalScores writes every player's final score in one transaction at
// round end. The scores written here are the authoritative outcome.
func (sm *SyncManager) FlushFinalScores(roomCode string, results []duel.PlayerResult) error {
	err := sm.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			if err := tx.Exec(
				"UPDATE room_players SET score = ? WHERE room_id = ? AND username = ?",
				r.Score, roomCode, r.Username).Error; err != nil {
				return fmt.Errorf("error flushing score of %s: %v", r.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[SYNC] Flushed %d final scores for room %s", len(results), roomCode)
	return nil
}

// ResetRound is the rematch bulk update: same room, same player rows, scores
// and ready flags zeroed, status back to WAITING.
func (sm *SyncManager) ResetRound(roomCode string) error {
	return sm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"UPDATE room_players SET score = 0, is_ready = false WHERE room_id = ?",
			roomCode).Error; err != nil {
			return fmt.Errorf("error resetting players of room %s: %v", roomCode, err)
		}
		if err := tx.Exec(
			"UPDATE duel_rooms SET status = 'WAITING' WHERE id = ?",
			roomCode).Error; err != nil {
			return fmt.Errorf("error resetting status of room %s: %v", roomCode, err)
		}
		return nil
	})
}

// SyncProfiles refreshes derived stats after finalization: each participant
// gets the duel counted and is marked out of a duel again.
func (sm *SyncManager) SyncProfiles(usernames []string) error {
	return sm.db.Transaction(func(tx *gorm.DB) error {
		for _, username := range usernames {
			if err := tx.Exec(
				"UPDATE game_profiles SET total_duels = total_duels + 1, is_in_a_duel = false WHERE username = ?",
				username).Error; err != nil {
				return fmt.Errorf("error syncing profile of %s: %v", username, err)
			}
		}
		return nil
	})
}

// SyncPlayerGameState copies one player's live Redis state onto its durable
// row, used when a round has to be recovered outside the normal flush path.
func (sm *SyncManager) SyncPlayerGameState(username string, roomCode string) error {
	player, err := sm.redisClient.GetDuelPlayer(roomCode, username)
	if err != nil {
		return fmt.Errorf("error getting player state from Redis: %v", err)
	}

	result := sm.db.Exec(
		"UPDATE room_players SET score = ?, is_ready = ? WHERE username = ? AND room_id = ?",
		player.Score, player.IsReady, username, roomCode)
	if result.Error != nil {
		return fmt.Errorf("error updating player state in PostgreSQL: %v", result.Error)
	}
	return nil
}

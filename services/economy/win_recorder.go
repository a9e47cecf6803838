package economy

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// XP awards per finished duel
const xpPerWin = 50
const xpPerDuel = 10

// DuelWinRecorder implements the duel.WinRecorder collaborator. It is called
// at most once per finished round, by the room actor, for the determined
// winner.
type DuelWinRecorder struct {
	DB *gorm.DB
}

func NewDuelWinRecorder(db *gorm.DB) *DuelWinRecorder {
	return &DuelWinRecorder{DB: db}
}

// RecordWin credits the winner's profile with the win and its XP.
func (w *DuelWinRecorder) RecordWin(username string, roomCode string) error {
	result := w.DB.Exec(
		"UPDATE game_profiles SET total_wins = total_wins + 1, xp = xp + ? WHERE username = ?",
		xpPerWin, username)
	if result.Error != nil {
		return fmt.Errorf("error recording win for %s: %v", username, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no game profile found for winner %s", username)
	}
	log.Printf("[WIN-RECORD] Recorded win for %s in room %s", username, roomCode)
	return nil
}

// RecordParticipation bumps the duel counter and base XP for a finished
// player, winner or not.
func (w *DuelWinRecorder) RecordParticipation(username string) error {
	result := w.DB.Exec(
		"UPDATE game_profiles SET total_duels = total_duels + 1, xp = xp + ? WHERE username = ?",
		xpPerDuel, username)
	if result.Error != nil {
		return fmt.Errorf("error recording participation for %s: %v", username, result.Error)
	}
	return nil
}

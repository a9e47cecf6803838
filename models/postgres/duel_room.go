package postgres

import (
	"math/rand"
	"time"

	game_constants "Lexiduel/constants/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'DuelRoom' defines the structure of a Lexiduel duel room. The short ID is
 * the human-shareable join code. It contains references to GameProfile and
 * RoomPlayer
 */
type DuelRoom struct {
	ID           string `gorm:"primaryKey;size:50;not null"`
	HostUsername string `gorm:"size:50;index:idx_duel_rooms_host"` // Explicit host, validated on every host-gated write
	Status       string `gorm:"size:20;default:'WAITING';index:idx_duel_rooms_status"`
	TimeLimit    int    `gorm:"default:60"` // Round length in seconds
	// Lives per player, 0 means unlimited (wrong answers cost points instead)
	Lives         int            `gorm:"default:0"`
	AllowedSkills datatypes.JSON `gorm:"type:jsonb;default:'[\"stasis\",\"divine\",\"overflow\"]'"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Host GameProfile `gorm:"foreignKey:HostUsername"`
	// Relationship with players in the room
	RoomPlayers []*RoomPlayer `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Random room code generation
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRoomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// Ensure the code is truly unique before inserting. The code space is small
// on purpose (players type these), so collisions are retried in a loop.
func (r *DuelRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.Status == "" {
		r.Status = game_constants.PhaseWaiting
	}
	if r.TimeLimit == 0 {
		r.TimeLimit = game_constants.DEFAULT_TIME_LIMIT
	}
	for {
		newCode := generateRoomCode(4) // Example: "aB3d"
		var existing DuelRoom
		if err := tx.Where("id = ?", newCode).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				r.ID = newCode
				return nil
			}
			// Return any unexpected error
			return err
		}
		// Otherwise, loop again to generate a new unique code
	}
}

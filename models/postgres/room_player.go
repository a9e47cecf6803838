package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

/*
 * 'RoomPlayer' represents the membership (and final score) of a player in a
 * duel room. It contains references to DuelRoom and GameProfile
 */
// NOTE: composite primary key, at most one row per (room, identity). Rows are
// reused across rematches: a restart is a bulk reset, not a re-insert.
type RoomPlayer struct {
	RoomID    string    `gorm:"primaryKey;size:50;not null"`
	Username  string    `gorm:"primaryKey;size:50;not null;index"`
	Score     int       `gorm:"default:0"`
	IsReady   bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationship with the room and the user's game profile
	DuelRoom    DuelRoom    `gorm:"foreignKey:RoomID"`
	GameProfile GameProfile `gorm:"foreignKey:Username"`
}

// Scores are clamped at zero everywhere, the row must never go negative
func (p *RoomPlayer) BeforeSave(tx *gorm.DB) error {
	if p.Score < 0 {
		return errors.New("room player score cannot be negative")
	}
	return nil
}

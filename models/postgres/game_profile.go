package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'GameProfile' defines the structure for a user's game profile. It is
 * referenced in User, DuelRoom, RoomPlayer, DuelInvite and CrystalInventory
 */
type GameProfile struct {
	Username   string         `gorm:"primaryKey;size:50;not null"`
	TotalDuels int            `gorm:"default:0"`
	TotalWins  int            `gorm:"default:0"`
	Xp         int            `gorm:"default:0"`
	UserStats  datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	UserIcon   int            `gorm:"default:0"`
	IsInADuel  bool           `gorm:"default:false"`

	// NOTE: no back-reference to User, it was creating a circular dependency
	DuelRooms   []DuelRoom         `gorm:"foreignKey:HostUsername"`
	RoomPlayers []RoomPlayer       `gorm:"foreignKey:Username"`
	DuelInvites []DuelInvite       `gorm:"foreignKey:ReceiverUsername"`
	Crystals    []CrystalInventory `gorm:"foreignKey:Username"`
}

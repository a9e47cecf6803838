package postgres

import (
	"errors"

	game_constants "Lexiduel/constants/game"

	"gorm.io/gorm"
)

/*
 * 'CrystalInventory' holds how many crystals of each kind a player owns.
 * Power-up usage debits exactly one unit here before any effect is applied.
 */
type CrystalInventory struct {
	Username string `gorm:"primaryKey;size:50;not null"`
	Kind     string `gorm:"primaryKey;size:20;not null"`
	Quantity int    `gorm:"default:0"`

	GameProfile GameProfile `gorm:"foreignKey:Username;constraint:OnDelete:CASCADE"`
}

// GORM hook to reject unknown crystal kinds and negative quantities
func (ci *CrystalInventory) BeforeSave(tx *gorm.DB) error {
	switch ci.Kind {
	case game_constants.CrystalStasis, game_constants.CrystalDivine, game_constants.CrystalOverflow:
	default:
		return errors.New("unknown crystal kind: " + ci.Kind)
	}
	if ci.Quantity < 0 {
		return errors.New("crystal quantity cannot be negative")
	}
	return nil
}

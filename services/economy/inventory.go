package economy

import (
	"log"

	"gorm.io/gorm"
)

// CrystalBank debits crystals from the durable inventory. It implements the
// duel.Inventory collaborator: the debit is atomic and side-effect-free on
// failure, so a power-up whose debit fails costs nothing.
type CrystalBank struct {
	DB *gorm.DB
}

func NewCrystalBank(db *gorm.DB) *CrystalBank {
	return &CrystalBank{DB: db}
}

// Consume debits exactly one crystal of the given kind. The conditional
// UPDATE is the whole transaction: zero rows affected means the player had
// no crystal of that kind, and nothing is charged.
func (b *CrystalBank) Consume(username string, kind string) bool {
	result := b.DB.Exec(
		"UPDATE crystal_inventories SET quantity = quantity - 1 WHERE username = ? AND kind = ? AND quantity > 0",
		username, kind)
	if result.Error != nil {
		log.Printf("[ECONOMY-ERROR] Error debiting %s crystal for %s: %v", kind, username, result.Error)
		return false
	}
	return result.RowsAffected == 1
}

// Grant adds crystals of a kind to a player's inventory (purchase flows and
// rewards land here).
func (b *CrystalBank) Grant(username string, kind string, amount int) error {
	return b.DB.Exec(
		`INSERT INTO crystal_inventories (username, kind, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (username, kind) DO UPDATE SET quantity = crystal_inventories.quantity + ?`,
		username, kind, amount, amount).Error
}

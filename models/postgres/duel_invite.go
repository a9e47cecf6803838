package postgres

import (
	"time"

	game_constants "Lexiduel/constants/game"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invite statuses. There is no EXPIRED status on purpose: expiry is derived
// from CreatedAt and expired rows are filtered on read, never deleted.
const (
	InvitePending  = "PENDING"
	InviteAccepted = "ACCEPTED"
	InviteDeclined = "DECLINED"
)

/*
 * 'DuelInvite' represents an invitation to a Lexiduel duel, sent from a
 * friend list. It contains references to DuelRoom and GameProfile
 */
type DuelInvite struct {
	MatchID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	RoomID           string    `gorm:"size:50;not null"`
	SenderUsername   string    `gorm:"size:50;not null;index"`
	ReceiverUsername string    `gorm:"size:50;not null;index"`
	Status           string    `gorm:"size:20;default:'PENDING'"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	DuelRoom        DuelRoom    `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	SenderProfile   GameProfile `gorm:"foreignKey:SenderUsername;constraint:OnDelete:CASCADE"`
	ReceiverProfile GameProfile `gorm:"foreignKey:ReceiverUsername;constraint:OnDelete:CASCADE"`
}

func (i *DuelInvite) BeforeCreate(tx *gorm.DB) error {
	if i.MatchID == uuid.Nil {
		i.MatchID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvitePending
	}
	return nil
}

// Expired reports whether the invite is past its 2-minute acceptance window.
func (i *DuelInvite) Expired(now time.Time) bool {
	return now.Sub(i.CreatedAt) > game_constants.INVITE_TTL_MINUTES*time.Minute
}

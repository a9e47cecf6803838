package redis

// DuelPlayer represents a player's live state during a duel round
type DuelPlayer struct {
	Username        string `json:"username"`         // Matches game_profiles.username
	RoomCode        string `json:"room_code"`        // Matches duel_rooms.id
	Score           int    `json:"score"`            // Live score, flushed to room_players at round end
	IsReady         bool   `json:"is_ready"`         // Matches room_players.is_ready
	LivesLeft       int    `json:"lives_left"`       // Only meaningful when the room's lives mode is on
	Eliminated      bool   `json:"eliminated"`       // Out of lives, answers ignored for the rest of the round
	FrozenUntil     int64  `json:"frozen_until"`     // Unix ms, answers rejected until then (stasis)
	OverflowCharges int    `json:"overflow_charges"` // Remaining double-point charges
	JoinedAtMs      int64  `json:"joined_at_ms"`     // Join order, used for deterministic tie-breaks
}

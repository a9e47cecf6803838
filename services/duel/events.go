package duel

// Room event names, published on the socket.io room of each duel. Every
// payload carries a monotonic "seq" so clients can drop stale deliveries.
const (
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventPlayerReadyChanged = "player_ready_changed"
	EventSettingsUpdated    = "settings_updated"
	EventHostChanged        = "host_changed"
	EventPhaseChanged       = "phase_changed"
	EventCountdownTick      = "countdown_tick"
	EventScoreUpdate        = "score_update"
	EventPowerUpUsed        = "power_up_used"
	EventPlayerEliminated   = "player_eliminated"
	EventDuelEnd            = "duel_end"
)

// Settings is the host-editable part of a room, mutable only while WAITING.
type Settings struct {
	TimeLimit     int      `json:"time_limit"` // seconds
	Lives         int      `json:"lives"`      // 0 = unlimited
	AllowedSkills []string `json:"allowed_skills"`
}

// PlayerSnapshot is the per-player slice of a Snapshot.
type PlayerSnapshot struct {
	Username        string `json:"username"`
	Score           int    `json:"score"`
	IsReady         bool   `json:"is_ready"`
	Eliminated      bool   `json:"eliminated"`
	LivesLeft       int    `json:"lives_left"`
	OverflowCharges int    `json:"overflow_charges"`
}

// Snapshot is the full observable room state, handed to joining and
// reconnecting clients so they can catch up before consuming events.
type Snapshot struct {
	Code          string           `json:"code"`
	Host          string           `json:"host"`
	Phase         string           `json:"phase"`
	Settings      Settings         `json:"settings"`
	Countdown     int              `json:"countdown"`
	RoundDeadline int64            `json:"round_deadline"` // unix ms, zero outside PLAYING
	Seq           int64            `json:"seq"`
	Players       []PlayerSnapshot `json:"players"`
}

// PlayerResult is one row of the final standings, in outcome order.
type PlayerResult struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated"`
	Winner     bool   `json:"winner"`
}

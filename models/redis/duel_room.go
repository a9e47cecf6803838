package redis

// DuelRoom is the live round state of a room, owned by the room actor and
// mirrored to Redis so REST reads and reconnecting clients can observe it.
type DuelRoom struct {
	Code          string   `json:"code"`           // Matches duel_rooms.id
	HostUsername  string   `json:"host_username"`  // Matches duel_rooms.host_username
	Phase         string   `json:"phase"`          // WAITING | STARTING | PLAYING | FINISHED
	TimeLimit     int      `json:"time_limit"`     // Round length in seconds
	Lives         int      `json:"lives"`          // 0 = unlimited
	AllowedSkills []string `json:"allowed_skills"` // Subset of {stasis, divine, overflow}
	Countdown     int      `json:"countdown"`      // Current countdown value during STARTING
	RoundDeadline int64    `json:"round_deadline"` // Unix ms, authoritative round end
	EventSeq      int64    `json:"event_seq"`      // Version of the last emitted room event
	PlayerCount   int      `json:"player_count"`
}

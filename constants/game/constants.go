package game_constants

// Duel phases. The cycle is WAITING -> STARTING -> PLAYING -> FINISHED,
// and back to WAITING on a host rematch.
const (
	PhaseWaiting  = "WAITING"
	PhaseStarting = "STARTING"
	PhasePlaying  = "PLAYING"
	PhaseFinished = "FINISHED"
)

// Crystal (power-up) kinds
const (
	CrystalStasis   = "stasis"   // freezes every opponent's input
	CrystalDivine   = "divine"   // auto-answers the sender's next questions
	CrystalOverflow = "overflow" // double points while charges remain
)

// Scoring
const CORRECT_ANSWER_POINTS = 10
const WRONG_ANSWER_PENALTY = 5 // only applied when lives are unlimited
const OVERFLOW_MULTIPLIER = 2

// Power-up effect sizes
const FreezeWindowMs = 3000
const DIVINE_CASTS = 3
const OVERFLOW_CHARGES = 3

// Countdown starts at 3 and ticks down to 0, one tick per second
const COUNTDOWN_START = 3

// Round time limit bounds (seconds)
const MIN_TIME_LIMIT = 10
const MAX_TIME_LIMIT = 600
const DEFAULT_TIME_LIMIT = 60

const MIN_PLAYERS_TO_START = 2
const MaxPlayersPerDuel = 8

// Duel invites expire after this window and are filtered out, never deleted
const INVITE_TTL_MINUTES = 2

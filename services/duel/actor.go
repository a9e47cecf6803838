package duel

import (
	game_constants "Lexiduel/constants/game"
	redis_models "Lexiduel/models/redis"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Bus publishes an event to every client subscribed to a room.
type Bus interface {
	Publish(roomCode string, event string, payload gin.H)
}

// LiveStore mirrors the actor's state so REST reads and reconnecting clients
// can observe it. Implemented by services/redis.RedisClient.
type LiveStore interface {
	SaveDuelRoom(room *redis_models.DuelRoom) error
	SaveDuelPlayer(player *redis_models.DuelPlayer) error
	DeleteDuelPlayer(roomCode string, username string) error
	DeleteDuelRoom(roomCode string) error
}

// Inventory is the economy collaborator. Consume debits one crystal of the
// given kind and reports whether the debit succeeded. It must be
// side-effect-free on failure.
type Inventory interface {
	Consume(username string, kind string) bool
}

// WinRecorder is the win-recording collaborator, invoked exactly once per
// finished round for the determined winner.
type WinRecorder interface {
	RecordWin(username string, roomCode string) error
}

// Persistence flushes durable room state back to Postgres. Implemented by
// sync.SyncManager.
type Persistence interface {
	SaveSettings(roomCode string, s Settings) error
	SetRoomStatus(roomCode string, status string) error
	SetHost(roomCode string, username string) error
	FlushFinalScores(roomCode string, results []PlayerResult) error
	ResetRound(roomCode string) error
	SyncProfiles(usernames []string) error
}

// Config carries the actor's collaborators plus timing knobs. Zero-valued
// durations fall back to the production values; tests shrink them.
type Config struct {
	Bus         Bus
	Live        LiveStore
	Inventory   Inventory
	Wins        WinRecorder
	Persistence Persistence

	CountdownTick time.Duration // default 1s
	DivineDelay   time.Duration // default 500ms between auto-answers
	FreezeWindow  time.Duration // default 3s
}

func (c *Config) applyDefaults() {
	if c.CountdownTick == 0 {
		c.CountdownTick = time.Second
	}
	if c.DivineDelay == 0 {
		c.DivineDelay = 500 * time.Millisecond
	}
	if c.FreezeWindow == 0 {
		c.FreezeWindow = game_constants.FreezeWindowMs * time.Millisecond
	}
}

type playerState struct {
	username        string
	joinedAt        time.Time
	score           int
	isReady         bool
	livesLeft       int
	eliminated      bool
	frozenUntil     time.Time
	overflowCharges int
}

// Actor owns the canonical phase machine and clocks of one duel room. All
// state lives inside a single goroutine; commands and expired timers are
// closures posted to the mailbox, so no locks are needed.
type Actor struct {
	code     string
	cfg      Config
	mailbox  chan func()
	done     chan struct{}
	onEmpty  func(roomCode string)

	phase     string
	settings  Settings
	host      string
	players   map[string]*playerState
	countdown int
	deadline  time.Time
	round     int   // bumped on every round boundary, invalidates stale timers
	seq       int64 // monotonic event version
}

// NewActor hydrates an actor from the durable room row and starts its loop.
// status is the row's phase at hydration time; a non-WAITING status means
// the row was abandoned mid-cycle (server restart, all clients gone), and
// the actor reconciles it back to WAITING so the row rejoins the cycle.
// onEmpty is invoked (from the actor goroutine) once the last player leaves.
func NewActor(roomCode string, host string, status string, settings Settings, cfg Config, onEmpty func(roomCode string)) *Actor {
	cfg.applyDefaults()
	a := &Actor{
		code:     roomCode,
		cfg:      cfg,
		mailbox:  make(chan func(), 64),
		done:     make(chan struct{}),
		onEmpty:  onEmpty,
		phase:    game_constants.PhaseWaiting,
		settings: settings,
		host:     host,
		players:  make(map[string]*playerState),
	}
	if status != "" && status != game_constants.PhaseWaiting {
		a.mailbox <- func() {
			log.Printf("[DUEL-RECONCILE] Room %s row was %s with no live actor, resetting to WAITING", roomCode, status)
			if err := a.cfg.Persistence.SetRoomStatus(roomCode, game_constants.PhaseWaiting); err != nil {
				log.Printf("[DUEL-RECONCILE-ERROR] Error resetting status of %s: %v", roomCode, err)
			}
		}
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	for {
		select {
		case fn := <-a.mailbox:
			fn()
		case <-a.done:
			return
		}
	}
}

// Stop tears the actor down without touching durable rows.
func (a *Actor) Stop() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// call runs fn inside the actor goroutine and waits for its result.
func (a *Actor) call(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case a.mailbox <- func() { errc <- fn() }:
	case <-a.done:
		return ErrRoomClosed
	}
	select {
	case err := <-errc:
		return err
	case <-a.done:
		// The command may have run and stopped the actor itself (e.g. the
		// last player leaving), prefer its result over ErrRoomClosed
		select {
		case err := <-errc:
			return err
		default:
			return ErrRoomClosed
		}
	}
}

// after schedules fn on the actor goroutine once d elapses. Scheduled work
// must re-check phase and round, the room may have moved on meanwhile.
func (a *Actor) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case a.mailbox <- fn:
		case <-a.done:
		}
	})
}

// publish bumps the event version and fans the event out to the room.
func (a *Actor) publish(event string, payload gin.H) {
	a.seq++
	payload["seq"] = a.seq
	a.cfg.Bus.Publish(a.code, event, payload)
}

// ------------------------------------------------------------------
// Lobby commands
// ------------------------------------------------------------------

// Join registers a player and returns the room snapshot. Rejoining an
// already-registered player is a no-op that still returns the snapshot.
func (a *Actor) Join(username string) (Snapshot, error) {
	var snap Snapshot
	err := a.call(func() error {
		if _, ok := a.players[username]; ok {
			// Reconnection, nothing to mutate
			snap = a.snapshotLocked()
			return nil
		}
		if a.phase != game_constants.PhaseWaiting {
			return ErrDuelInProgress
		}
		if len(a.players) >= game_constants.MaxPlayersPerDuel {
			return ErrRoomFull
		}
		p := &playerState{
			username:  username,
			joinedAt:  time.Now(),
			livesLeft: a.settings.Lives,
		}
		a.players[username] = p
		if a.host == "" {
			a.host = username
		}
		a.publish(EventPlayerJoined, gin.H{
			"username":     username,
			"player_count": len(a.players),
		})
		a.saveLiveRoom()
		a.saveLivePlayer(p)
		snap = a.snapshotLocked()
		return nil
	})
	return snap, err
}

// Leave unregisters a player on any exit path (voluntary exit, navigation
// away, socket disconnect). The host role migrates to the earliest joiner.
func (a *Actor) Leave(username string) error {
	return a.call(func() error {
		if _, ok := a.players[username]; !ok {
			return ErrNotInRoom
		}
		delete(a.players, username)
		if err := a.cfg.Live.DeleteDuelPlayer(a.code, username); err != nil {
			log.Printf("[DUEL-LEAVE-ERROR] Error deleting live state of %s: %v", username, err)
		}
		a.publish(EventPlayerLeft, gin.H{
			"username":     username,
			"player_count": len(a.players),
		})

		if len(a.players) == 0 {
			a.closeEmptyRoom()
			return nil
		}

		if a.host == username {
			a.host = a.earliestJoined()
			if err := a.cfg.Persistence.SetHost(a.code, a.host); err != nil {
				log.Printf("[DUEL-HOST-ERROR] Error persisting host change: %v", err)
			}
			a.publish(EventHostChanged, gin.H{"host": a.host})
		}

		// A mid-round departure can leave only eliminated players behind
		if a.phase == game_constants.PhasePlaying && a.allEliminated() {
			a.finalizeRound()
			return nil
		}
		a.saveLiveRoom()
		return nil
	})
}

// SetReady toggles the caller's own ready flag. Any player may do this.
func (a *Actor) SetReady(username string, ready bool) error {
	return a.call(func() error {
		p, ok := a.players[username]
		if !ok {
			return ErrNotInRoom
		}
		if a.phase != game_constants.PhaseWaiting {
			return ErrWrongPhase
		}
		p.isReady = ready
		a.publish(EventPlayerReadyChanged, gin.H{
			"username": username,
			"is_ready": ready,
		})
		a.saveLivePlayer(p)
		return nil
	})
}

// UpdateSettings is host-gated and WAITING-gated, both checks happen here at
// the authority boundary rather than in any client UI.
func (a *Actor) UpdateSettings(username string, s Settings) error {
	return a.call(func() error {
		if _, ok := a.players[username]; !ok {
			return ErrNotInRoom
		}
		if username != a.host {
			return ErrNotHost
		}
		if a.phase != game_constants.PhaseWaiting {
			return ErrWrongPhase
		}
		if err := validateSettings(s); err != nil {
			return err
		}
		a.settings = s
		for _, p := range a.players {
			p.livesLeft = s.Lives
		}
		if err := a.cfg.Persistence.SaveSettings(a.code, s); err != nil {
			log.Printf("[DUEL-SETTINGS-ERROR] Error persisting settings for %s: %v", a.code, err)
		}
		a.publish(EventSettingsUpdated, gin.H{
			"time_limit":     s.TimeLimit,
			"lives":          s.Lives,
			"allowed_skills": s.AllowedSkills,
		})
		a.saveLiveRoom()
		return nil
	})
}

func validateSettings(s Settings) error {
	if s.TimeLimit < game_constants.MIN_TIME_LIMIT || s.TimeLimit > game_constants.MAX_TIME_LIMIT {
		return fmt.Errorf("%w: time limit must be between %d and %d seconds",
			ErrBadSettings, game_constants.MIN_TIME_LIMIT, game_constants.MAX_TIME_LIMIT)
	}
	if s.Lives < 0 {
		return fmt.Errorf("%w: lives cannot be negative", ErrBadSettings)
	}
	for _, skill := range s.AllowedSkills {
		switch skill {
		case game_constants.CrystalStasis, game_constants.CrystalDivine, game_constants.CrystalOverflow:
		default:
			return fmt.Errorf("%w: unknown skill %q", ErrBadSettings, skill)
		}
	}
	return nil
}

// ------------------------------------------------------------------
// Phase machine
// ------------------------------------------------------------------

// Start flips WAITING -> STARTING and kicks off the authoritative countdown.
// Host-only, needs at least two players, all of them ready.
func (a *Actor) Start(username string) error {
	return a.call(func() error {
		if _, ok := a.players[username]; !ok {
			return ErrNotInRoom
		}
		if username != a.host {
			return ErrNotHost
		}
		if a.phase != game_constants.PhaseWaiting {
			return ErrWrongPhase
		}
		if len(a.players) < game_constants.MIN_PLAYERS_TO_START {
			return ErrNotEnoughPlayers
		}
		for _, p := range a.players {
			if !p.isReady {
				return ErrNotAllReady
			}
		}

		a.setPhase(game_constants.PhaseStarting)
		a.countdown = game_constants.COUNTDOWN_START
		a.publish(EventCountdownTick, gin.H{"countdown": a.countdown})
		round := a.round
		a.after(a.cfg.CountdownTick, func() { a.tickCountdown(round) })
		a.saveLiveRoom()
		return nil
	})
}

// tickCountdown runs on the actor goroutine once per countdown second.
// The countdown reaches 0 exactly once, then PLAYING begins.
func (a *Actor) tickCountdown(round int) {
	if a.round != round || a.phase != game_constants.PhaseStarting {
		return
	}
	a.countdown--
	a.publish(EventCountdownTick, gin.H{"countdown": a.countdown})
	if a.countdown > 0 {
		a.after(a.cfg.CountdownTick, func() { a.tickCountdown(round) })
		a.saveLiveRoom()
		return
	}
	a.beginPlaying()
}

func (a *Actor) beginPlaying() {
	for _, p := range a.players {
		p.livesLeft = a.settings.Lives
		p.eliminated = false
		p.frozenUntil = time.Time{}
		p.overflowCharges = 0
		a.saveLivePlayer(p)
	}
	a.deadline = time.Now().Add(time.Duration(a.settings.TimeLimit) * time.Second)
	a.setPhase(game_constants.PhasePlaying)
	round := a.round
	a.after(time.Until(a.deadline), func() {
		if a.round == round && a.phase == game_constants.PhasePlaying {
			a.finalizeRound()
		}
	})
	a.saveLiveRoom()
}

// Rematch flips FINISHED -> WAITING: same room, same rows, scores and ready
// flags bulk-reset. Host-only.
func (a *Actor) Rematch(username string) error {
	return a.call(func() error {
		if _, ok := a.players[username]; !ok {
			return ErrNotInRoom
		}
		if username != a.host {
			return ErrNotHost
		}
		if a.phase != game_constants.PhaseFinished {
			return ErrWrongPhase
		}

		a.round++
		for _, p := range a.players {
			p.score = 0
			p.isReady = false
			p.livesLeft = a.settings.Lives
			p.eliminated = false
			p.frozenUntil = time.Time{}
			p.overflowCharges = 0
			a.saveLivePlayer(p)
		}
		a.deadline = time.Time{}
		if err := a.cfg.Persistence.ResetRound(a.code); err != nil {
			log.Printf("[DUEL-REMATCH-ERROR] Error resetting rows for %s: %v", a.code, err)
		}
		a.setPhase(game_constants.PhaseWaiting)
		a.saveLiveRoom()
		return nil
	})
}

// setPhase publishes the transition; durable status writes go through
// Persistence so observers of the row see the same cycle.
func (a *Actor) setPhase(phase string) {
	a.phase = phase
	if err := a.cfg.Persistence.SetRoomStatus(a.code, phase); err != nil {
		log.Printf("[DUEL-PHASE-ERROR] Error persisting status %s for %s: %v", phase, a.code, err)
	}
	a.publish(EventPhaseChanged, gin.H{
		"phase":          phase,
		"round_deadline": unixMsOrZero(a.deadline),
	})
	log.Printf("[DUEL-PHASE] Room %s is now %s", a.code, phase)
}

// ------------------------------------------------------------------
// Queries and helpers
// ------------------------------------------------------------------

// Snapshot returns the current observable room state.
func (a *Actor) Snapshot() Snapshot {
	var snap Snapshot
	_ = a.call(func() error {
		snap = a.snapshotLocked()
		return nil
	})
	return snap
}

func (a *Actor) snapshotLocked() Snapshot {
	snap := Snapshot{
		Code:          a.code,
		Host:          a.host,
		Phase:         a.phase,
		Settings:      a.settings,
		Countdown:     a.countdown,
		RoundDeadline: unixMsOrZero(a.deadline),
		Seq:           a.seq,
	}
	for _, username := range a.joinOrder() {
		p := a.players[username]
		snap.Players = append(snap.Players, PlayerSnapshot{
			Username:        p.username,
			Score:           p.score,
			IsReady:         p.isReady,
			Eliminated:      p.eliminated,
			LivesLeft:       p.livesLeft,
			OverflowCharges: p.overflowCharges,
		})
	}
	return snap
}

// joinOrder returns usernames sorted by join time (earliest first).
func (a *Actor) joinOrder() []string {
	order := make([]string, 0, len(a.players))
	for username := range a.players {
		order = append(order, username)
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			pj, pk := a.players[order[j]], a.players[order[j-1]]
			if pj.joinedAt.Before(pk.joinedAt) {
				order[j], order[j-1] = order[j-1], order[j]
			} else {
				break
			}
		}
	}
	return order
}

func (a *Actor) earliestJoined() string {
	order := a.joinOrder()
	if len(order) == 0 {
		return ""
	}
	return order[0]
}

func (a *Actor) allEliminated() bool {
	for _, p := range a.players {
		if !p.eliminated {
			return false
		}
	}
	return len(a.players) > 0
}

func (a *Actor) closeEmptyRoom() {
	log.Printf("[DUEL-CLOSE] Room %s is empty, stopping actor", a.code)
	if err := a.cfg.Live.DeleteDuelRoom(a.code); err != nil {
		log.Printf("[DUEL-CLOSE-ERROR] Error deleting live room %s: %v", a.code, err)
	}
	if a.onEmpty != nil {
		a.onEmpty(a.code)
	}
	a.Stop()
}

func (a *Actor) saveLiveRoom() {
	room := &redis_models.DuelRoom{
		Code:          a.code,
		HostUsername:  a.host,
		Phase:         a.phase,
		TimeLimit:     a.settings.TimeLimit,
		Lives:         a.settings.Lives,
		AllowedSkills: a.settings.AllowedSkills,
		Countdown:     a.countdown,
		RoundDeadline: unixMsOrZero(a.deadline),
		EventSeq:      a.seq,
		PlayerCount:   len(a.players),
	}
	if err := a.cfg.Live.SaveDuelRoom(room); err != nil {
		log.Printf("[DUEL-STATE-ERROR] Error mirroring room %s to Redis: %v", a.code, err)
	}
}

func (a *Actor) saveLivePlayer(p *playerState) {
	player := &redis_models.DuelPlayer{
		Username:        p.username,
		RoomCode:        a.code,
		Score:           p.score,
		IsReady:         p.isReady,
		LivesLeft:       p.livesLeft,
		Eliminated:      p.eliminated,
		FrozenUntil:     unixMsOrZero(p.frozenUntil),
		OverflowCharges: p.overflowCharges,
		JoinedAtMs:      unixMsOrZero(p.joinedAt),
	}
	if err := a.cfg.Live.SaveDuelPlayer(player); err != nil {
		log.Printf("[DUEL-STATE-ERROR] Error mirroring player %s to Redis: %v", p.username, err)
	}
}

func unixMsOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

package duel

import (
	game_constants "Lexiduel/constants/game"
	redis_models "Lexiduel/models/redis"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------------------------------------------------------------
// Fakes for the actor's collaborators
// ------------------------------------------------------------------

type busEvent struct {
	room    string
	name    string
	payload gin.H
}

type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

func (b *fakeBus) Publish(roomCode string, event string, payload gin.H) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{room: roomCode, name: event, payload: payload})
}

func (b *fakeBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (b *fakeBus) last(name string) (gin.H, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].name == name {
			return b.events[i].payload, true
		}
	}
	return nil, false
}

func (b *fakeBus) all(name string) []gin.H {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []gin.H
	for _, e := range b.events {
		if e.name == name {
			out = append(out, e.payload)
		}
	}
	return out
}

type fakeLive struct {
	mu      sync.Mutex
	rooms   map[string]*redis_models.DuelRoom
	players map[string]*redis_models.DuelPlayer
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		rooms:   make(map[string]*redis_models.DuelRoom),
		players: make(map[string]*redis_models.DuelPlayer),
	}
}

func (l *fakeLive) SaveDuelRoom(room *redis_models.DuelRoom) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[room.Code] = room
	return nil
}

func (l *fakeLive) SaveDuelPlayer(player *redis_models.DuelPlayer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[player.RoomCode+":"+player.Username] = player
	return nil
}

func (l *fakeLive) DeleteDuelPlayer(roomCode string, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, roomCode+":"+username)
	return nil
}

func (l *fakeLive) DeleteDuelRoom(roomCode string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, roomCode)
	return nil
}

func (l *fakeLive) hasRoom(roomCode string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rooms[roomCode]
	return ok
}

type fakeInventory struct {
	mu     sync.Mutex
	counts map[string]int // "username:kind" -> quantity
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{counts: make(map[string]int)}
}

func (inv *fakeInventory) grant(username string, kind string, quantity int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.counts[username+":"+kind] += quantity
}

func (inv *fakeInventory) Consume(username string, kind string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	key := username + ":" + kind
	if inv.counts[key] <= 0 {
		return false
	}
	inv.counts[key]--
	return true
}

type fakeWins struct {
	mu      sync.Mutex
	winners []string
}

func (w *fakeWins) RecordWin(username string, roomCode string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.winners = append(w.winners, username)
	return nil
}

func (w *fakeWins) recorded() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.winners...)
}

type fakePersistence struct {
	mu         sync.Mutex
	statuses   []string
	settings   []Settings
	hosts      []string
	flushed    [][]PlayerResult
	resetCalls int
	synced     [][]string
}

func (p *fakePersistence) SaveSettings(roomCode string, s Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = append(p.settings, s)
	return nil
}

func (p *fakePersistence) SetRoomStatus(roomCode string, status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, status)
	return nil
}

func (p *fakePersistence) SetHost(roomCode string, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts = append(p.hosts, username)
	return nil
}

func (p *fakePersistence) FlushFinalScores(roomCode string, results []PlayerResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushed = append(p.flushed, results)
	return nil
}

func (p *fakePersistence) ResetRound(roomCode string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetCalls++
	return nil
}

func (p *fakePersistence) SyncProfiles(usernames []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synced = append(p.synced, usernames)
	return nil
}

// ------------------------------------------------------------------
// Test harness
// ------------------------------------------------------------------

type actorFixture struct {
	actor *Actor
	bus   *fakeBus
	live  *fakeLive
	inv   *fakeInventory
	wins  *fakeWins
	per   *fakePersistence
}

func newTestActor(t *testing.T, settings Settings) *actorFixture {
	t.Helper()
	f := &actorFixture{
		bus:  &fakeBus{},
		live: newFakeLive(),
		inv:  newFakeInventory(),
		wins: &fakeWins{},
		per:  &fakePersistence{},
	}
	cfg := Config{
		Bus:         f.bus,
		Live:        f.live,
		Inventory:   f.inv,
		Wins:        f.wins,
		Persistence: f.per,

		// Shrunk clocks so phase transitions land within the test budget
		CountdownTick: 5 * time.Millisecond,
		DivineDelay:   5 * time.Millisecond,
		FreezeWindow:  60 * time.Millisecond,
	}
	f.actor = NewActor("test", "", game_constants.PhaseWaiting, settings, cfg, nil)
	t.Cleanup(f.actor.Stop)
	return f
}

func defaultSettings() Settings {
	return Settings{
		TimeLimit:     game_constants.DEFAULT_TIME_LIMIT,
		Lives:         0,
		AllowedSkills: []string{game_constants.CrystalStasis, game_constants.CrystalDivine, game_constants.CrystalOverflow},
	}
}

func (f *actorFixture) join(t *testing.T, usernames ...string) {
	t.Helper()
	for _, username := range usernames {
		_, err := f.actor.Join(username)
		require.NoError(t, err)
	}
}

func (f *actorFixture) readyAll(t *testing.T, usernames ...string) {
	t.Helper()
	for _, username := range usernames {
		require.NoError(t, f.actor.SetReady(username, true))
	}
}

// startPlaying drives the room through the full countdown into PLAYING.
func (f *actorFixture) startPlaying(t *testing.T, host string, usernames ...string) {
	t.Helper()
	f.readyAll(t, usernames...)
	require.NoError(t, f.actor.Start(host))
	require.Eventually(t, func() bool {
		return f.actor.Snapshot().Phase == game_constants.PhasePlaying
	}, 2*time.Second, time.Millisecond, "room never reached PLAYING")
}

func (f *actorFixture) phase() string {
	return f.actor.Snapshot().Phase
}

func (f *actorFixture) player(t *testing.T, username string) PlayerSnapshot {
	t.Helper()
	for _, p := range f.actor.Snapshot().Players {
		if p.Username == username {
			return p
		}
	}
	t.Fatalf("player %s not in snapshot", username)
	return PlayerSnapshot{}
}

// ------------------------------------------------------------------
// Lobby behavior
// ------------------------------------------------------------------

func TestJoinMakesFirstPlayerHost(t *testing.T) {
	f := newTestActor(t, defaultSettings())

	snap, err := f.actor.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.Host)
	assert.Equal(t, game_constants.PhaseWaiting, snap.Phase)
	assert.Len(t, snap.Players, 1)

	snap, err = f.actor.Join("bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.Host)
	assert.Len(t, snap.Players, 2)

	assert.Equal(t, 2, f.bus.count(EventPlayerJoined))
}

func TestHydrationResetsStaleStatusRow(t *testing.T) {
	per := &fakePersistence{}
	cfg := Config{
		Bus:         &fakeBus{},
		Live:        newFakeLive(),
		Inventory:   newFakeInventory(),
		Wins:        &fakeWins{},
		Persistence: per,
	}

	// A PLAYING row with no live actor means the previous process died
	// mid-duel. The fresh actor must put the row back into the cycle.
	a := NewActor("test", "alice", game_constants.PhasePlaying, defaultSettings(), cfg, nil)
	t.Cleanup(a.Stop)

	require.Eventually(t, func() bool {
		per.mu.Lock()
		defer per.mu.Unlock()
		return len(per.statuses) > 0
	}, 2*time.Second, time.Millisecond, "stale row never reconciled")

	per.mu.Lock()
	first := per.statuses[0]
	per.mu.Unlock()
	assert.Equal(t, game_constants.PhaseWaiting, first)

	snap, err := a.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, game_constants.PhaseWaiting, snap.Phase)
}

func TestRejoinIsIdempotent(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")

	snap, err := f.actor.Join("alice")
	require.NoError(t, err)
	assert.Len(t, snap.Players, 2)

	// Reconnection publishes nothing new
	assert.Equal(t, 2, f.bus.count(EventPlayerJoined))
}

func TestJoinRejectedWhenRoomFull(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	for i := 0; i < game_constants.MaxPlayersPerDuel; i++ {
		f.join(t, fmt.Sprintf("player%d", i))
	}

	_, err := f.actor.Join("latecomer")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRejectedMidDuel(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")

	_, err := f.actor.Join("carol")
	assert.ErrorIs(t, err, ErrDuelInProgress)
}

func TestSetReadyOutsideWaiting(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")

	assert.ErrorIs(t, f.actor.SetReady("bob", false), ErrWrongPhase)
}

func TestUpdateSettingsAuthority(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")

	s := Settings{TimeLimit: 120, Lives: 3, AllowedSkills: []string{game_constants.CrystalStasis}}

	assert.ErrorIs(t, f.actor.UpdateSettings("bob", s), ErrNotHost)
	assert.ErrorIs(t, f.actor.UpdateSettings("ghost", s), ErrNotInRoom)

	require.NoError(t, f.actor.UpdateSettings("alice", s))
	snap := f.actor.Snapshot()
	assert.Equal(t, 120, snap.Settings.TimeLimit)
	assert.Equal(t, 3, snap.Settings.Lives)

	f.per.mu.Lock()
	persisted := len(f.per.settings)
	f.per.mu.Unlock()
	assert.Equal(t, 1, persisted)

	payload, ok := f.bus.last(EventSettingsUpdated)
	require.True(t, ok)
	assert.Equal(t, 120, payload["time_limit"])
}

func TestUpdateSettingsValidation(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")

	tooShort := defaultSettings()
	tooShort.TimeLimit = game_constants.MIN_TIME_LIMIT - 1
	assert.ErrorIs(t, f.actor.UpdateSettings("alice", tooShort), ErrBadSettings)

	tooLong := defaultSettings()
	tooLong.TimeLimit = game_constants.MAX_TIME_LIMIT + 1
	assert.ErrorIs(t, f.actor.UpdateSettings("alice", tooLong), ErrBadSettings)

	unknownSkill := defaultSettings()
	unknownSkill.AllowedSkills = []string{"telekinesis"}
	assert.ErrorIs(t, f.actor.UpdateSettings("alice", unknownSkill), ErrBadSettings)
}

func TestHostMigratesToEarliestJoiner(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob", "carol")

	require.NoError(t, f.actor.Leave("alice"))

	snap := f.actor.Snapshot()
	assert.Equal(t, "bob", snap.Host)

	payload, ok := f.bus.last(EventHostChanged)
	require.True(t, ok)
	assert.Equal(t, "bob", payload["host"])

	f.per.mu.Lock()
	hosts := append([]string(nil), f.per.hosts...)
	f.per.mu.Unlock()
	assert.Equal(t, []string{"bob"}, hosts)
}

func TestLastLeaveClosesRoom(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice")
	require.True(t, f.live.hasRoom("test"))

	require.NoError(t, f.actor.Leave("alice"))

	assert.False(t, f.live.hasRoom("test"))
	_, err := f.actor.Join("bob")
	assert.ErrorIs(t, err, ErrRoomClosed)
}

// ------------------------------------------------------------------
// Phase machine
// ------------------------------------------------------------------

func TestStartRequirements(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice")

	assert.ErrorIs(t, f.actor.Start("alice"), ErrNotEnoughPlayers)

	f.join(t, "bob")
	assert.ErrorIs(t, f.actor.Start("bob"), ErrNotHost)
	assert.ErrorIs(t, f.actor.Start("alice"), ErrNotAllReady)

	f.readyAll(t, "alice")
	assert.ErrorIs(t, f.actor.Start("alice"), ErrNotAllReady)
}

func TestCountdownReachesZeroExactlyOnce(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")

	ticks := f.bus.all(EventCountdownTick)
	var values []int
	for _, payload := range ticks {
		values = append(values, payload["countdown"].(int))
	}
	assert.Equal(t, []int{3, 2, 1, 0}, values)

	// Starting mid-countdown or mid-round is refused
	assert.ErrorIs(t, f.actor.Start("alice"), ErrWrongPhase)
}

func TestRoundEndsAtDeadline(t *testing.T) {
	s := defaultSettings()
	s.TimeLimit = 1
	f := newTestActor(t, s)
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")

	require.NoError(t, f.actor.SubmitAnswer("alice", true))

	require.Eventually(t, func() bool {
		return f.phase() == game_constants.PhaseFinished
	}, 3*time.Second, 5*time.Millisecond, "round never finished")

	assert.Equal(t, 1, f.bus.count(EventDuelEnd))
	payload, _ := f.bus.last(EventDuelEnd)
	assert.Equal(t, "alice", payload["winner"])
	assert.Equal(t, false, payload["no_winners"])

	assert.Equal(t, []string{"alice"}, f.wins.recorded())

	f.per.mu.Lock()
	flushes := len(f.per.flushed)
	f.per.mu.Unlock()
	assert.Equal(t, 1, flushes)
}

func TestRematchResetsRound(t *testing.T) {
	s := defaultSettings()
	s.TimeLimit = 1
	f := newTestActor(t, s)
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")
	require.NoError(t, f.actor.SubmitAnswer("bob", true))

	require.Eventually(t, func() bool {
		return f.phase() == game_constants.PhaseFinished
	}, 3*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, f.actor.Rematch("bob"), ErrNotHost)
	require.NoError(t, f.actor.Rematch("alice"))

	snap := f.actor.Snapshot()
	assert.Equal(t, game_constants.PhaseWaiting, snap.Phase)
	assert.Equal(t, int64(0), snap.RoundDeadline)
	for _, p := range snap.Players {
		assert.Zero(t, p.Score)
		assert.False(t, p.IsReady)
		assert.False(t, p.Eliminated)
	}

	f.per.mu.Lock()
	resets := f.per.resetCalls
	f.per.mu.Unlock()
	assert.Equal(t, 1, resets)
}

func TestPhaseCycleIsPublishedInOrder(t *testing.T) {
	s := defaultSettings()
	s.TimeLimit = 1
	f := newTestActor(t, s)
	f.join(t, "alice", "bob")
	f.startPlaying(t, "alice", "alice", "bob")

	require.Eventually(t, func() bool {
		return f.phase() == game_constants.PhaseFinished
	}, 3*time.Second, 5*time.Millisecond)

	var phases []string
	for _, payload := range f.bus.all(EventPhaseChanged) {
		phases = append(phases, payload["phase"].(string))
	}
	assert.Equal(t, []string{
		game_constants.PhaseStarting,
		game_constants.PhasePlaying,
		game_constants.PhaseFinished,
	}, phases)

	// Durable status writes mirror the same cycle
	f.per.mu.Lock()
	statuses := append([]string(nil), f.per.statuses...)
	f.per.mu.Unlock()
	assert.Equal(t, phases, statuses)
}

func TestEventSeqIsMonotonic(t *testing.T) {
	f := newTestActor(t, defaultSettings())
	f.join(t, "alice", "bob")
	f.readyAll(t, "alice", "bob")

	f.bus.mu.Lock()
	defer f.bus.mu.Unlock()
	var prev int64
	for _, e := range f.bus.events {
		seq, ok := e.payload["seq"].(int64)
		require.True(t, ok, "event %s carries no seq", e.name)
		assert.Greater(t, seq, prev)
		prev = seq
	}
}

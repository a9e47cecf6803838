package duel

import (
	game_constants "Lexiduel/constants/game"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// UsePowerUp validates and applies a crystal. The inventory debit happens
// server-side BEFORE any effect or broadcast; a failed debit is a silent
// no-op that costs nothing, so the client's button simply stays usable.
func (a *Actor) UsePowerUp(username string, kind string) error {
	return a.call(func() error {
		p, ok := a.players[username]
		if !ok {
			return ErrNotInRoom
		}
		if a.phase != game_constants.PhasePlaying {
			return ErrWrongPhase
		}
		if p.eliminated {
			return ErrEliminated
		}
		if !a.skillAllowed(kind) {
			return ErrSkillNotAllowed
		}

		if !a.cfg.Inventory.Consume(username, kind) {
			log.Printf("[POWERUP] %s has no %s crystal left, ignoring", username, kind)
			return nil
		}

		a.publish(EventPowerUpUsed, gin.H{
			"type":        kind,
			"sender_id":   username,
			"duration_ms": a.cfg.FreezeWindow.Milliseconds(),
		})

		switch kind {
		case game_constants.CrystalStasis:
			a.applyStasis(p)
		case game_constants.CrystalDivine:
			a.applyDivine(p)
		case game_constants.CrystalOverflow:
			p.overflowCharges += game_constants.OVERFLOW_CHARGES
			a.saveLivePlayer(p)
		}
		log.Printf("[POWERUP] %s used %s in room %s", username, kind, a.code)
		return nil
	})
}

func (a *Actor) skillAllowed(kind string) bool {
	for _, skill := range a.settings.AllowedSkills {
		if skill == kind {
			return true
		}
	}
	return false
}

// applyStasis freezes every player EXCEPT the sender for the freeze window.
// Re-applying only ever pushes frozenUntil forward, duplicates are harmless.
func (a *Actor) applyStasis(sender *playerState) {
	until := time.Now().Add(a.cfg.FreezeWindow)
	for _, p := range a.players {
		if p.username == sender.username {
			continue
		}
		if until.After(p.frozenUntil) {
			p.frozenUntil = until
			a.saveLivePlayer(p)
		}
	}
}

// applyDivine queues automatic correct answers for the SENDER's own upcoming
// questions, each firing after a fixed delay. Nobody else is affected.
func (a *Actor) applyDivine(sender *playerState) {
	username := sender.username
	round := a.round
	for i := 1; i <= game_constants.DIVINE_CASTS; i++ {
		a.after(time.Duration(i)*a.cfg.DivineDelay, func() {
			if a.round != round || a.phase != game_constants.PhasePlaying {
				return
			}
			p, ok := a.players[username]
			if !ok || p.eliminated {
				return
			}
			a.applyAnswer(p, true)
		})
	}
}

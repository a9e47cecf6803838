package duel

import (
	game_constants "Lexiduel/constants/game"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// SubmitAnswer resolves one answered question for a player. Question content
// never reaches the server, each client races through its own private
// question stream; only the correct/incorrect outcome is scored here.
func (a *Actor) SubmitAnswer(username string, correct bool) error {
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
		if time.Now().Before(p.frozenUntil) {
			return ErrFrozen
		}
		a.applyAnswer(p, correct)
		return nil
	})
}

// applyAnswer mutates the player's score/lives and broadcasts the new score.
// Runs on the actor goroutine; also reached by divine auto-answers.
func (a *Actor) applyAnswer(p *playerState, correct bool) {
	if correct {
		points := game_constants.CORRECT_ANSWER_POINTS
		if p.overflowCharges > 0 {
			points *= game_constants.OVERFLOW_MULTIPLIER
			p.overflowCharges--
		}
		p.score += points
	} else if a.settings.Lives > 0 {
		p.livesLeft--
		if p.livesLeft <= 0 {
			p.livesLeft = 0
			p.eliminated = true
			a.publish(EventPlayerEliminated, gin.H{"username": p.username})
			log.Printf("[DUEL-ELIMINATION] Player %s eliminated in room %s", p.username, a.code)
		}
	} else {
		// Unlimited lives: flat penalty instead, clamped at zero
		p.score -= game_constants.WRONG_ANSWER_PENALTY
		if p.score < 0 {
			p.score = 0
		}
	}

	// Peers treat the latest received value as authoritative for display, so
	// re-delivering the same score is harmless (last-value-wins, not additive)
	a.publish(EventScoreUpdate, gin.H{
		"player_id": p.username,
		"score":     p.score,
	})
	a.saveLivePlayer(p)

	// The round cannot go on with nobody left to answer
	if p.eliminated && a.allEliminated() {
		a.finalizeRound()
	}
}

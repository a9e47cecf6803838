package duel

import (
	game_constants "Lexiduel/constants/game"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// finalizeRound is the single authoritative end-of-round step, run on the
// actor goroutine when the round clock expires (or everyone is eliminated).
// There is no per-client grace window and no "first to finish declares the
// winner" race: the actor computes the outcome exactly once.
func (a *Actor) finalizeRound() {
	if a.phase != game_constants.PhasePlaying {
		return
	}
	// Invalidate any timer still in flight for this round
	a.round++
	a.deadline = time.Time{}

	results := a.standings()

	// 1. Persist every final score. A failed flush is logged and the round
	// still ends with the actor's in-memory scores as the outcome.
	if err := a.cfg.Persistence.FlushFinalScores(a.code, results); err != nil {
		log.Printf("[DUEL-END-ERROR] Error flushing final scores for %s: %v", a.code, err)
	}

	// 2. Record the win and refresh profiles, exactly once per round
	winner := ""
	for i := range results {
		if results[i].Winner {
			winner = results[i].Username
			break
		}
	}
	if winner != "" {
		if err := a.cfg.Wins.RecordWin(winner, a.code); err != nil {
			// The round still ends normally, only the profile sync is skipped
			log.Printf("[DUEL-END-ERROR] Error recording win for %s: %v", winner, err)
		} else if err := a.cfg.Persistence.SyncProfiles(a.usernames()); err != nil {
			log.Printf("[DUEL-END-ERROR] Error syncing profiles for %s: %v", a.code, err)
		}
	}

	// 3. Terminal broadcast, also flips the durable row to FINISHED
	a.setPhase(game_constants.PhaseFinished)

	resultsData := make([]gin.H, 0, len(results))
	for _, r := range results {
		resultsData = append(resultsData, gin.H{
			"username":   r.Username,
			"score":      r.Score,
			"eliminated": r.Eliminated,
			"winner":     r.Winner,
		})
	}
	a.publish(EventDuelEnd, gin.H{
		"winner":     winner,
		"no_winners": winner == "",
		"results":    resultsData,
		"message":    "The duel has ended!",
	})
	a.saveLiveRoom()

	if winner != "" {
		log.Printf("[DUEL-END] Room %s winner is %s", a.code, winner)
	} else {
		log.Printf("[DUEL-END] Room %s ended with no winner (all players eliminated)", a.code)
	}
}

// standings sorts the roster by score descending. Ties break by earliest
// join time, a deterministic rule replacing the racy "first client to
// finalize wins" behavior. Eliminated players keep their score in the table
// but cannot win; with everyone eliminated the round has no winner.
func (a *Actor) standings() []PlayerResult {
	order := a.joinOrder()

	// Stable insertion sort on score desc; join order is the existing order,
	// so equal scores keep the earliest joiner first
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			if a.players[order[j]].score > a.players[order[j-1]].score {
				order[j], order[j-1] = order[j-1], order[j]
			} else {
				break
			}
		}
	}

	results := make([]PlayerResult, 0, len(order))
	winnerAssigned := false
	for _, username := range order {
		p := a.players[username]
		r := PlayerResult{
			Username:   p.username,
			Score:      p.score,
			Eliminated: p.eliminated,
		}
		if !winnerAssigned && !p.eliminated {
			r.Winner = true
			winnerAssigned = true
		}
		results = append(results, r)
	}
	return results
}

func (a *Actor) usernames() []string {
	names := make([]string, 0, len(a.players))
	for username := range a.players {
		names = append(names, username)
	}
	return names
}

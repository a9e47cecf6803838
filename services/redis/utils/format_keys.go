package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

func FormatDuelKey(roomCode string) string {
	return fmt.Sprintf("duel:%s", roomCode)
}

func FormatDuelPlayerKey(roomCode string, username string) string {
	return fmt.Sprintf("duel_player:%s:%s", roomCode, username)
}

// Pattern that matches every live player key of a room, used with SCAN
func FormatDuelPlayerPattern(roomCode string) string {
	return fmt.Sprintf("duel_player:%s:*", roomCode)
}

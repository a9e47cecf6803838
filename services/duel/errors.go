package duel

import "errors"

// Command rejections the socket handlers translate into "error" emits.
var (
	ErrRoomClosed       = errors.New("duel room is closed")
	ErrRoomFull         = errors.New("duel room is full")
	ErrDuelInProgress   = errors.New("duel already in progress")
	ErrNotInRoom        = errors.New("player is not in the duel room")
	ErrNotHost          = errors.New("only the host can do that")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrNotEnoughPlayers = errors.New("at least two players are needed to start")
	ErrNotAllReady      = errors.New("every player must be ready to start")
	ErrEliminated       = errors.New("player has been eliminated")
	ErrFrozen           = errors.New("player is frozen")
	ErrSkillNotAllowed  = errors.New("that crystal is not allowed in this room")
	ErrBadSettings      = errors.New("invalid room settings")
)

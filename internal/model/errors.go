package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidPhone   = errors.New("phone number must be exactly 10 digits")
	ErrInvalidName    = errors.New("name is required")
	ErrPhoneTaken     = errors.New("phone number already registered")

	// Task errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidTaskSet  = errors.New("task positions must be unique and within the board")
	ErrBoardIncomplete = errors.New("board does not have a task for every position")

	// Scan errors
	ErrGameEnded       = errors.New("game has ended")
	ErrSelfScan        = errors.New("cannot scan your own code")
	ErrScannerNotFound = errors.New("scanner not found")
	ErrTargetNotFound  = errors.New("target player not found")
	ErrDuplicateTarget = errors.New("already scanned this player")
	ErrDuplicateTask   = errors.New("already completed this task")
	ErrScanNotFound    = errors.New("scan not found")
	ErrInvalidStatus   = errors.New("invalid verification status")

	// Win errors
	ErrDuplicateWin = errors.New("win already recorded")

	// Game state errors
	ErrInvalidMaxWinners = errors.New("max winners must be at least 1")
)

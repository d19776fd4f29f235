package redis

import (
	"fmt"
	"strconv"

	"github.com/zn-har/Bingo/internal/model"
)

// Key prefix for all bingo data
const keyPrefix = "bingo"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// phoneIndexKey returns the Redis key for the phone -> player_id index
func phoneIndexKey(phone string) string {
	return fmt.Sprintf("%s:idx:phone:%s", keyPrefix, phone)
}

// tasksKey returns the Redis key for the HASH of task_id -> Task
func tasksKey() string {
	return fmt.Sprintf("%s:tasks", keyPrefix)
}

// scanKey returns the Redis key for a ScanRecord
func scanKey(id model.ScanID) string {
	return scanKeyFromString(strconv.FormatInt(int64(id), 10))
}

// scanKeyFromString returns the scan key for an ID read back from an index set
func scanKeyFromString(id string) string {
	return fmt.Sprintf("%s:scan:%s", keyPrefix, id)
}

// scansByScannerKey returns the Redis key for the SET of scan IDs made by a scanner
func scansByScannerKey(scannerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:scans_by_scanner:%s", keyPrefix, scannerID)
}

// scannerTasksKey returns the Redis key for the SET of task IDs a scanner completed
func scannerTasksKey(scannerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:scanner_tasks:%s", keyPrefix, scannerID)
}

// scannerTargetsKey returns the Redis key for the SET of players a scanner scanned
func scannerTargetsKey(scannerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:scanner_targets:%s", keyPrefix, scannerID)
}

// gameStateKey returns the Redis key for the singleton GameState
func gameStateKey() string {
	return fmt.Sprintf("%s:game_state:%d", keyPrefix, model.GameStateKey)
}

// winnerKey returns the Redis key for a Winner
func winnerKey(id model.WinnerID) string {
	return winnerKeyFromString(strconv.FormatInt(int64(id), 10))
}

// winnerKeyFromString returns the winner key for an ID read back from the winners list
func winnerKeyFromString(id string) string {
	return fmt.Sprintf("%s:winner:%s", keyPrefix, id)
}

// winnersKey returns the Redis key for the LIST of winner IDs in insertion order
func winnersKey() string {
	return fmt.Sprintf("%s:winners", keyPrefix)
}

// winnerPlayersKey returns the Redis key for the SET of players with at least one win
func winnerPlayersKey() string {
	return fmt.Sprintf("%s:idx:winner_players", keyPrefix)
}

// playerWinsKey returns the Redis key for the SET of win types a player holds
func playerWinsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_wins:%s", keyPrefix, playerID)
}

// ledgerVersionKey returns the Redis key bumped by every ledger commit
func ledgerVersionKey() string {
	return fmt.Sprintf("%s:ledger_version", keyPrefix)
}

// sequenceKey returns the Redis key of the ID counter for an entity kind
func sequenceKey(kind string) string {
	return fmt.Sprintf("%s:seq:%s", keyPrefix, kind)
}

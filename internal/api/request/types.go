package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SubmitScanRequest is the request body for submitting a scan
type SubmitScanRequest struct {
	ScannerID string `json:"scanner_id"`
	TargetID  string `json:"target_id"`
	TaskID    int64  `json:"task_id"`
}

// UpdateScanRequest is the request body for overriding a scan's verification status
type UpdateScanRequest struct {
	Status string `json:"status"`
}

// UpdateGameStateRequest is the request body for the game-state admin override.
// Omitted fields are left unchanged.
type UpdateGameStateRequest struct {
	GameActive            *bool `json:"game_active,omitempty"`
	MaxWinners            *int  `json:"max_winners,omitempty"`
	AllowDuplicateTargets *bool `json:"allow_duplicate_targets,omitempty"`
}

// IsEmpty reports whether no field was supplied
func (r UpdateGameStateRequest) IsEmpty() bool {
	return r.GameActive == nil && r.MaxWinners == nil && r.AllowDuplicateTargets == nil
}

package model

import (
	"strings"
	"time"
)

// PhoneDigits is the number of digits a normalized phone number must have
const PhoneDigits = 10

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a registered festival participant
type Player struct {
	ID        PlayerID
	Name      string
	Phone     string // digits only, unique
	CreatedAt time.Time
}

// NormalizePhone strips every non-digit character and requires exactly PhoneDigits digits
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != PhoneDigits {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// NormalizeName trims surrounding whitespace and rejects empty names
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

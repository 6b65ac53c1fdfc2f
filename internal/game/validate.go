package game

import (
	"strings"
	"unicode"

	"github.com/questline/treasurehunt/internal/hunt"
)

// normalizeJoinCode validates and uppercases a human-typed game code.
func normalizeJoinCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return "", hunt.Invalid("joinCode", "must be exactly 6 characters")
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", hunt.Invalid("joinCode", "only letters and digits are allowed")
		}
	}
	return strings.ToUpper(code), nil
}

// normalizePlayerName validates a player name: 2-20 characters,
// letters, digits, spaces, hyphens, and underscores.
func normalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return "", hunt.Invalid("playerName", "must be at least 2 characters")
	}
	if len(name) > 20 {
		return "", hunt.Invalid("playerName", "must be at most 20 characters")
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		case r == ' ' || r == '-' || r == '_':
		default:
			return "", hunt.Invalid("playerName", "only letters, digits, spaces, hyphens, and underscores are allowed")
		}
	}
	return name, nil
}

// normalizeGameName validates a game display name.
func normalizeGameName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return "", hunt.Invalid("name", "must be at least 3 characters")
	}
	if len(name) > 100 {
		return "", hunt.Invalid("name", "must be at most 100 characters")
	}
	return name, nil
}

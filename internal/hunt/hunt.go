// Package hunt defines the core domain types for the scavenger-hunt
// progression engine. It has zero external dependencies — everything
// here is pure Go.
package hunt

import "time"

// GameStatus is the lifecycle phase of a game. A game only ever moves
// forward through Waiting → Setup → Separate → Together → Finished,
// with two exceptions: an admin stop jumps to Finished from a running
// phase, and an admin reset returns the game to Waiting from anywhere.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusSetup    GameStatus = "setup"
	StatusSeparate GameStatus = "separate"
	StatusTogether GameStatus = "together"
	StatusFinished GameStatus = "finished"
)

// Running reports whether the game is in an active playing phase.
func (s GameStatus) Running() bool {
	return s == StatusSeparate || s == StatusTogether
}

// StationPhase tags a station with the game phase it belongs to.
type StationPhase string

const (
	PhaseSeparate StationPhase = "separate"
	PhaseTogether StationPhase = "together"
	PhaseMeeting  StationPhase = "meeting"
	PhaseSave     StationPhase = "save"
)

const (
	// MaxAttempts is the number of wrong codes a team may submit at a
	// station before the mercy path takes over.
	MaxAttempts = 3

	// SaveStation is the fixed station number of the mercy challenge.
	// It sits far outside the normal course so it never collides with
	// ordinary station numbering.
	SaveStation = 98

	// TokenTTL is how long a session token remains valid after issue.
	TokenTTL = 7 * 24 * time.Hour
)

type Game struct {
	ID             string
	JoinCode       string
	Name           string
	Status         GameStatus
	MeetingStation int
	MaxPlayers     int
	TeamCount      int
	CreatedBy      string
	CreatedAt      time.Time
}

type Team struct {
	ID               string
	GameID           string
	Name             string
	CurrentStation   int
	Attempts         int
	HelpUsed         bool
	CompletedAt      *time.Time
	SeparateSaveUsed bool
	TogetherSaveUsed bool
	MaxPlayers       int
}

type Player struct {
	ID             string
	TeamID         string
	Name           string
	SessionToken   string
	TokenCreatedAt *time.Time
	IsActive       bool
	JoinedAt       time.Time
}

type Station struct {
	Number int
	Name   string
	Phase  StationPhase
}

// TeamTypeShared marks a challenge answerable by any team. A challenge
// with an empty team type is equivalent.
const TeamTypeShared = "both"

type Challenge struct {
	ID            string
	StationNumber int
	TeamType      string // team name, TeamTypeShared, or "" for shared
	Title         string
	Description   string
	ExpectedCode  string
	HelpText      string
}

// Shared reports whether the challenge is not bound to a single team.
func (c Challenge) Shared() bool {
	return c.TeamType == "" || c.TeamType == TeamTypeShared
}

// ProgressRecord is the durable log of a successful station clear,
// written at most once per (game, team, station).
type ProgressRecord struct {
	ID            string
	GameID        string
	TeamID        string
	StationNumber int
	AttemptsMade  int
	HelpUsed      bool
	CompletedAt   time.Time
}

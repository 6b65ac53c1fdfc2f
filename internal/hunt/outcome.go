package hunt

// SubmitOutcome is the result of a code submission. Exactly one of the
// terminal flags describes what happened; Attempts carries the team's
// wrong-answer count after the submission.
type SubmitOutcome struct {
	Correct bool
	Message string

	// Attempts is the team's failure count at its current station after
	// this submission. Zero whenever the team advanced or was reset.
	Attempts int

	// SaveRequired means the team just hit the attempt limit and its
	// next submission must solve the mercy challenge.
	SaveRequired bool

	// Reset means the team was sent back to station 1.
	Reset bool

	// Bonus marks the first team to reach the meeting station.
	Bonus bool

	// WaitingForOthers means the team is parked at the meeting station
	// until the remaining teams arrive.
	WaitingForOthers bool

	// PhaseChanged is set when this submission completed the rendezvous
	// and the game moved to the together phase.
	PhaseChanged bool

	// GameFinished is set when this submission cleared the last station.
	GameFinished bool
}

// AdvanceOutcome is the result of moving a team forward one station.
type AdvanceOutcome struct {
	Bonus            bool
	WaitingForOthers bool
	PhaseChanged     bool
	GameFinished     bool
}

// TeamSnapshot is the cached, read-only view of one team.
type TeamSnapshot struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Players          []PlayerSnapshot `json:"players"`
	PlayerCount      int              `json:"playerCount"`
	MaxPlayers       int              `json:"maxPlayers"`
	AvailableSlots   int              `json:"availableSlots"`
	IsFull           bool             `json:"isFull"`
	CurrentStation   int              `json:"currentStation"`
	Attempts         int              `json:"attempts"`
	HelpUsed         bool             `json:"helpUsed"`
	CanUseHelp       bool             `json:"canUseHelp"`
	CompletedMeeting bool             `json:"completedMeeting"`
	CompletedCount   int              `json:"completedStations"`
	RemainingCount   int              `json:"remainingStations"`
	ProgressPercent  int              `json:"progressPercent"`
}

type PlayerSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameSnapshot is the per-game status view served to clients. It is
// rebuilt from the store on demand and cached until the next mutation
// invalidates it.
type GameSnapshot struct {
	ID             string         `json:"id"`
	JoinCode       string         `json:"joinCode"`
	Name           string         `json:"name"`
	Status         GameStatus     `json:"status"`
	MeetingStation int            `json:"meetingStation"`
	Teams          []TeamSnapshot `json:"teams"`
	TotalPlayers   int            `json:"totalPlayers"`
	MaxPlayers     int            `json:"maxPlayers"`
	AvailableSlots int            `json:"availableSlots"`
	IsFull         bool           `json:"isFull"`
	CanStart       bool           `json:"canStart"`
}

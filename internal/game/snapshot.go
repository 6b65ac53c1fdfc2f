package game

import (
	"context"

	"github.com/questline/treasurehunt/internal/hunt"
)

// Status returns the per-game snapshot, served from the cache when a
// previous build is still valid.
func (e *Engine) Status(ctx context.Context, gameID string) (hunt.GameSnapshot, error) {
	if e.cache != nil {
		if snap, ok := e.cache.Get(ctx, gameID); ok {
			return *snap, nil
		}
	}

	snap, err := e.buildSnapshot(ctx, gameID)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}
	if e.cache != nil {
		e.cache.Set(ctx, gameID, &snap)
	}
	return snap, nil
}

// ProgressLog returns a team's durable clear history, one record per
// station, in course order.
func (e *Engine) ProgressLog(ctx context.Context, gameID, teamID string) ([]hunt.ProgressRecord, error) {
	if _, err := teamByID(ctx, e.db, gameID, teamID); err != nil {
		return nil, err
	}
	return listProgress(ctx, e.db, gameID, teamID)
}

func (e *Engine) buildSnapshot(ctx context.Context, gameID string) (hunt.GameSnapshot, error) {
	g, err := gameByID(ctx, e.db, gameID)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}
	teams, err := listTeams(ctx, e.db, gameID)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}
	totalStations, err := countCourseStations(ctx, e.db)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}
	togStart, err := togetherStart(ctx, e.db)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}

	snap := hunt.GameSnapshot{
		ID:             g.ID,
		JoinCode:       g.JoinCode,
		Name:           g.Name,
		Status:         g.Status,
		MeetingStation: g.MeetingStation,
		MaxPlayers:     g.MaxPlayers,
		Teams:          make([]hunt.TeamSnapshot, 0, len(teams)),
	}

	total := 0
	for _, t := range teams {
		players, err := listActivePlayers(ctx, e.db, t.ID)
		if err != nil {
			return hunt.GameSnapshot{}, err
		}

		ts := hunt.TeamSnapshot{
			ID:               t.ID,
			Name:             t.Name,
			Players:          make([]hunt.PlayerSnapshot, 0, len(players)),
			PlayerCount:      len(players),
			MaxPlayers:       t.MaxPlayers,
			AvailableSlots:   max(0, t.MaxPlayers-len(players)),
			IsFull:           len(players) >= t.MaxPlayers,
			CurrentStation:   t.CurrentStation,
			Attempts:         t.Attempts,
			HelpUsed:         t.HelpUsed,
			CanUseHelp:       !t.HelpUsed && t.Attempts > 0,
			CompletedMeeting: t.CompletedAt != nil,
		}
		for _, p := range players {
			ts.Players = append(ts.Players, hunt.PlayerSnapshot{ID: p.ID, Name: p.Name})
		}

		done := completedStations(g, t, totalStations, togStart)
		ts.CompletedCount = done
		ts.RemainingCount = max(0, totalStations-done)
		if totalStations > 0 {
			ts.ProgressPercent = done * 100 / totalStations
		}

		snap.Teams = append(snap.Teams, ts)
		total += len(players)
	}

	snap.TotalPlayers = total
	snap.AvailableSlots = max(0, g.MaxPlayers-total)
	snap.IsFull = total >= g.MaxPlayers
	canStart, err := e.canStart(ctx, e.db, g, teams)
	if err != nil {
		return hunt.GameSnapshot{}, err
	}
	snap.CanStart = canStart
	return snap, nil
}

// completedStations derives how far through the course a team is. In
// the together phase a team still parked at the meeting station has
// cleared all the separate-phase stations but nothing after it.
func completedStations(g hunt.Game, t hunt.Team, totalStations, togStart int) int {
	separateStations := g.MeetingStation - 1

	switch g.Status {
	case hunt.StatusFinished:
		return totalStations
	case hunt.StatusSeparate:
		return max(0, t.CurrentStation-1)
	case hunt.StatusTogether:
		if t.CurrentStation == g.MeetingStation {
			return separateStations
		}
		return separateStations + max(0, t.CurrentStation-togStart)
	}
	return 0
}

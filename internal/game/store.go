package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/questline/treasurehunt/internal/hunt"
)

// querier is satisfied by both *sql.DB and *sql.Tx so row helpers can
// run inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime fails loudly on a corrupt timestamp column. Yielding the
// zero time instead would surface as bogus state far from the cause,
// like an instantly-expired session token.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanGame(row *sql.Row) (hunt.Game, error) {
	var g hunt.Game
	var createdAt string
	err := row.Scan(&g.ID, &g.JoinCode, &g.Name, (*string)(&g.Status),
		&g.MeetingStation, &g.MaxPlayers, &g.TeamCount, &g.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return g, hunt.ErrNotFound
	}
	if err != nil {
		return g, err
	}
	g.CreatedAt, err = parseTime(createdAt)
	return g, err
}

const gameColumns = `id, join_code, name, status, meeting_station, max_players, team_count, created_by, created_at`

func gameByID(ctx context.Context, q querier, id string) (hunt.Game, error) {
	return scanGame(q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
}

func gameByCode(ctx context.Context, q querier, code string) (hunt.Game, error) {
	return scanGame(q.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE join_code = ?`, code))
}

func setGameStatus(ctx context.Context, q querier, gameID string, status hunt.GameStatus) error {
	res, err := q.ExecContext(ctx, `UPDATE games SET status = ? WHERE id = ?`, string(status), gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hunt.ErrNotFound
	}
	return nil
}

const teamColumns = `id, game_id, name, current_station, attempts, help_used,
	completed_at, separate_save_used, together_save_used, max_players`

func scanTeam(scan func(dest ...any) error) (hunt.Team, error) {
	var t hunt.Team
	var completedAt sql.NullString
	err := scan(&t.ID, &t.GameID, &t.Name, &t.CurrentStation, &t.Attempts,
		&t.HelpUsed, &completedAt, &t.SeparateSaveUsed, &t.TogetherSaveUsed, &t.MaxPlayers)
	if errors.Is(err, sql.ErrNoRows) {
		return t, hunt.ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return t, err
		}
		t.CompletedAt = &ts
	}
	return t, nil
}

func teamByID(ctx context.Context, q querier, gameID, teamID string) (hunt.Team, error) {
	return scanTeam(q.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ? AND game_id = ?`, teamID, gameID).Scan)
}

func teamByName(ctx context.Context, q querier, gameID, name string) (hunt.Team, error) {
	return scanTeam(q.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = ? AND name = ?`, gameID, name).Scan)
}

func listTeams(ctx context.Context, q querier, gameID string) ([]hunt.Team, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE game_id = ? ORDER BY name`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []hunt.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// saveTeam writes back every mutable team field.
func saveTeam(ctx context.Context, q querier, t hunt.Team) error {
	var completedAt any
	if t.CompletedAt != nil {
		completedAt = fmtTime(*t.CompletedAt)
	}
	_, err := q.ExecContext(ctx, `
		UPDATE teams
		SET current_station = ?, attempts = ?, help_used = ?, completed_at = ?,
			separate_save_used = ?, together_save_used = ?
		WHERE id = ?
	`, t.CurrentStation, t.Attempts, boolInt(t.HelpUsed), completedAt,
		boolInt(t.SeparateSaveUsed), boolInt(t.TogetherSaveUsed), t.ID)
	return err
}

const playerColumns = `id, team_id, name, session_token, token_created_at, is_active, joined_at`

func scanPlayer(scan func(dest ...any) error) (hunt.Player, error) {
	var p hunt.Player
	var token, tokenCreatedAt sql.NullString
	var joinedAt string
	err := scan(&p.ID, &p.TeamID, &p.Name, &token, &tokenCreatedAt, &p.IsActive, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, hunt.ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.SessionToken = token.String
	if tokenCreatedAt.Valid {
		ts, err := parseTime(tokenCreatedAt.String)
		if err != nil {
			return p, err
		}
		p.TokenCreatedAt = &ts
	}
	p.JoinedAt, err = parseTime(joinedAt)
	return p, err
}

func playerByToken(ctx context.Context, q querier, token string) (hunt.Player, error) {
	return scanPlayer(q.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE session_token = ?`, token).Scan)
}

func playerByID(ctx context.Context, q querier, id string) (hunt.Player, error) {
	return scanPlayer(q.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, id).Scan)
}

func listActivePlayers(ctx context.Context, q querier, teamID string) ([]hunt.Player, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE team_id = ? AND is_active = 1 ORDER BY joined_at`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []hunt.Player
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func countActivePlayers(ctx context.Context, q querier, teamID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE team_id = ? AND is_active = 1`, teamID).Scan(&n)
	return n, err
}

func countActiveGamePlayers(ctx context.Context, q querier, gameID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE t.game_id = ? AND p.is_active = 1
	`, gameID).Scan(&n)
	return n, err
}

func stationByNumber(ctx context.Context, q querier, number int) (hunt.Station, error) {
	var s hunt.Station
	err := q.QueryRowContext(ctx,
		`SELECT number, name, phase FROM stations WHERE number = ?`, number).
		Scan(&s.Number, &s.Name, (*string)(&s.Phase))
	if errors.Is(err, sql.ErrNoRows) {
		return s, hunt.ErrNotFound
	}
	return s, err
}

// countCourseStations is the number of stations on the normal course,
// excluding the out-of-band save station.
func countCourseStations(ctx context.Context, q querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stations WHERE phase != ?`, string(hunt.PhaseSave)).Scan(&n)
	return n, err
}

// togetherStart is the first station of the together phase.
func togetherStart(ctx context.Context, q querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT MIN(number) FROM stations WHERE phase = ?`, string(hunt.PhaseTogether)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("finding together phase start: %w", err)
	}
	return n, nil
}

const challengeColumns = `id, station_number, COALESCE(team_type, ''), title, description, expected_code, help_text`

func scanChallenge(scan func(dest ...any) error) (hunt.Challenge, error) {
	var c hunt.Challenge
	err := scan(&c.ID, &c.StationNumber, &c.TeamType, &c.Title, &c.Description,
		&c.ExpectedCode, &c.HelpText)
	if errors.Is(err, sql.ErrNoRows) {
		return c, hunt.ErrNotFound
	}
	return c, err
}

func challengeForTeamType(ctx context.Context, q querier, station int, teamType string) (hunt.Challenge, error) {
	var row *sql.Row
	if teamType == "" {
		row = q.QueryRowContext(ctx, `
			SELECT `+challengeColumns+` FROM challenges
			WHERE station_number = ? AND team_type IS NULL
		`, station)
	} else {
		row = q.QueryRowContext(ctx, `
			SELECT `+challengeColumns+` FROM challenges
			WHERE station_number = ? AND team_type = ?
		`, station, teamType)
	}
	return scanChallenge(row.Scan)
}

// recordProgress writes the durable log of a station clear. The unique
// key on (game, team, station) makes the insert idempotent: a
// concurrent duplicate submission updates the attempt metadata of the
// existing row instead of creating a second one.
func recordProgress(ctx context.Context, q querier, gameID, teamID string, station, attemptsMade int, helpUsed bool, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO progress (id, game_id, team_id, station_number, attempts_made, help_used, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, team_id, station_number)
		DO UPDATE SET attempts_made = excluded.attempts_made, help_used = excluded.help_used
	`, newID(), gameID, teamID, station, attemptsMade, boolInt(helpUsed), fmtTime(at))
	return err
}

func listProgress(ctx context.Context, q querier, gameID, teamID string) ([]hunt.ProgressRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, game_id, team_id, station_number, attempts_made, help_used, completed_at
		FROM progress
		WHERE game_id = ? AND team_id = ?
		ORDER BY station_number
	`, gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []hunt.ProgressRecord
	for rows.Next() {
		var rec hunt.ProgressRecord
		var completedAt string
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.TeamID, &rec.StationNumber,
			&rec.AttemptsMade, &rec.HelpUsed, &completedAt); err != nil {
			return nil, err
		}
		rec.CompletedAt, err = parseTime(completedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

package game

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/questline/treasurehunt/internal/hunt"
)

type seedChallenge struct {
	station  int
	teamType string
	title    string
	code     string
	help     string
}

// SeedCourse installs the default six-station course plus the mercy
// station and its challenges. Idempotent: does nothing if stations
// already exist.
func (e *Engine) SeedCourse(ctx context.Context) error {
	var n int
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	stations := []hunt.Station{
		{Number: 1, Name: "Old Oak", Phase: hunt.PhaseSeparate},
		{Number: 2, Name: "Stone Bridge", Phase: hunt.PhaseSeparate},
		{Number: 3, Name: "Bell Tower", Phase: hunt.PhaseSeparate},
		{Number: 4, Name: "Fountain Square", Phase: hunt.PhaseSeparate},
		{Number: 5, Name: "Market Hall", Phase: hunt.PhaseMeeting},
		{Number: 6, Name: "Castle Gate", Phase: hunt.PhaseTogether},
		{Number: hunt.SaveStation, Name: "Hermit's Hut", Phase: hunt.PhaseSave},
	}

	challenges := []seedChallenge{
		{1, "pumpkin", "Count the carved faces", "OAK-P1", "Look at the north side of the trunk."},
		{1, "ghost", "Find the white ribbon", "OAK-G1", "It is tied above eye level."},
		{2, "pumpkin", "Read the keystone year", "BRIDGE-P2", "The keystone is the center stone of the arch."},
		{2, "ghost", "Count the lamp posts", "BRIDGE-G2", "Both ends of the bridge count."},
		{3, "pumpkin", "Name the bell", "TOWER-P3", "The plaque is beside the door."},
		{3, "ghost", "Count the tower windows", "TOWER-G3", "Only the street-facing side."},
		{4, "pumpkin", "Count the fountain spouts", "FOUNTAIN-P4", "Walk all the way around."},
		{4, "ghost", "Find the dedication", "FOUNTAIN-G4", "Check the rim of the basin."},
		{5, "", "Meet at the market", "MARKET-5", "Wait by the main entrance."},
		{6, "", "Open the castle gate", "CASTLE-6", "The answer combines both teams' clues."},
		{hunt.SaveStation, "", "The hermit's riddle", "HERMIT-98", "Speak the answer out loud first."},
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range stations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stations (number, name, phase) VALUES (?, ?, ?)
		`, s.Number, s.Name, string(s.Phase))
		if err != nil {
			return fmt.Errorf("seeding station %d: %w", s.Number, err)
		}
	}
	for _, c := range challenges {
		var teamType any
		if c.teamType != "" {
			teamType = c.teamType
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO challenges (id, station_number, team_type, title, description, expected_code, help_text)
			VALUES (?, ?, ?, ?, '', ?, ?)
		`, newID(), c.station, teamType, c.title, c.code, c.help)
		if err != nil {
			return fmt.Errorf("seeding challenge for station %d: %w", c.station, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	e.logger.Info("course seeded", "stations", len(stations))
	return nil
}

// SeedAdmin ensures an admin account exists with the given
// credentials. Idempotent on email.
func (e *Engine) SeedAdmin(ctx context.Context, email, password string) error {
	var n int
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE email = ?`, email).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	_, err = e.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)
	`, newID(), email, string(hash))
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	e.logger.Info("admin seeded", "email", email)
	return nil
}

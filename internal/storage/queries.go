package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-rva-metrics/internal/model"
)

// MatchExists returns true if the match has already been analyzed and stored.
func (db *DB) MatchExists(matchID int64) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(summary model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, match_name, date_time, n_possessions, n_runs, n_players, mean_rva, minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.MatchID, summary.MatchName, summary.DateTime,
		summary.NPossessions, summary.NRuns, summary.NPlayers,
		nullFloat(summary.MeanRVA), summary.Minutes,
	)
	return err
}

// DeleteMatch removes a match and its dependent rows so it can be re-analyzed.
func (db *DB) DeleteMatch(matchID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM scored_runs WHERE match_id = ?",
		"DELETE FROM player_rva WHERE match_id = ?",
		"DELETE FROM matches WHERE match_id = ?",
	} {
		if _, err := tx.Exec(q, matchID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertScoredRuns bulk-inserts scored runs in a transaction.
func (db *DB) InsertScoredRuns(matchID int64, runs []model.ScoredRun) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO scored_runs(
			match_id, event_id, player_id, player_name,
			dangerous, targeted, xthreat, xpass_completion, n_simultaneous_runs,
			parent_event_id, pass_outcome, separation_gain, lead_to_shot,
			shot_value, direct_value, progression_value, decoy_penalty, overload_value, rva
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range runs {
		_, err = stmt.Exec(
			matchID, s.Run.EventID, s.Run.PlayerID, s.Run.PlayerName,
			boolInt(s.Run.Dangerous), boolInt(s.Run.Targeted),
			nullFloat(s.Run.XThreat), nullFloat(s.Run.XPassCompletion), s.Run.NSimultaneousRuns,
			s.ParentEventID, s.PassOutcome,
			nullFloat(s.SeparationGain), nullFloat(s.LeadToShot),
			nullFloat(s.ShotValue), nullFloat(s.DirectValue), nullFloat(s.ProgressionValue),
			nullFloat(s.DecoyPenalty), nullFloat(s.OverloadValue), nullFloat(s.RVA),
		)
		if err != nil {
			return fmt.Errorf("insert scored_runs for event %d: %w", s.Run.EventID, err)
		}
	}
	return tx.Commit()
}

// InsertPlayerSummaries bulk-inserts per-player rollups in a transaction.
func (db *DB) InsertPlayerSummaries(summaries []model.PlayerRVASummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_rva(
			match_id, player_name, total_rva, avg_rva,
			n_runs, n_targeted, n_dangerous, shot_contribution, direct_contribution
		) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range summaries {
		_, err = stmt.Exec(
			s.MatchID, s.PlayerName, nullFloat(s.TotalRVA), nullFloat(s.AvgRVA),
			s.NRuns, s.NTargeted, s.NDangerous,
			nullFloat(s.ShotContribution), nullFloat(s.DirectContribution),
		)
		if err != nil {
			return fmt.Errorf("insert player_rva for %q: %w", s.PlayerName, err)
		}
	}
	return tx.Commit()
}

// GetMatch returns the stored summary for a match ID, or nil when not stored.
func (db *DB) GetMatch(matchID int64) (*model.MatchSummary, error) {
	var s model.MatchSummary
	var meanRVA sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT match_id, match_name, date_time, n_possessions, n_runs, n_players, mean_rva, minutes
		FROM matches WHERE match_id = ?`, matchID).
		Scan(&s.MatchID, &s.MatchName, &s.DateTime,
			&s.NPossessions, &s.NRuns, &s.NPlayers, &meanRVA, &s.Minutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.MeanRVA = floatOrNaN(meanRVA)
	return &s, nil
}

// ListMatches returns all stored match summaries ordered by date desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, match_name, date_time, n_possessions, n_runs, n_players, mean_rva, minutes
		FROM matches ORDER BY date_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		var meanRVA sql.NullFloat64
		if err := rows.Scan(&s.MatchID, &s.MatchName, &s.DateTime,
			&s.NPossessions, &s.NRuns, &s.NPlayers, &meanRVA, &s.Minutes); err != nil {
			return nil, err
		}
		s.MeanRVA = floatOrNaN(meanRVA)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetScoredRuns returns all scored runs for a match ordered by RVA desc,
// NULL values last.
func (db *DB) GetScoredRuns(matchID int64) ([]model.ScoredRun, error) {
	rows, err := db.conn.Query(`
		SELECT event_id, player_id, player_name,
		       dangerous, targeted, xthreat, xpass_completion, n_simultaneous_runs,
		       parent_event_id, pass_outcome, separation_gain, lead_to_shot,
		       shot_value, direct_value, progression_value, decoy_penalty, overload_value, rva
		FROM scored_runs WHERE match_id = ?
		ORDER BY rva IS NULL, rva DESC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScoredRun
	for rows.Next() {
		var s model.ScoredRun
		var dangerous, targeted int
		var xt, xpass, sep, shot, sv, dv, pv, dp, ov, rva sql.NullFloat64
		if err := rows.Scan(
			&s.Run.EventID, &s.Run.PlayerID, &s.Run.PlayerName,
			&dangerous, &targeted, &xt, &xpass, &s.Run.NSimultaneousRuns,
			&s.ParentEventID, &s.PassOutcome, &sep, &shot,
			&sv, &dv, &pv, &dp, &ov, &rva,
		); err != nil {
			return nil, err
		}
		s.Run.EventType = model.EventPassingOption
		s.Run.Dangerous = dangerous != 0
		s.Run.Targeted = targeted != 0
		s.Run.XThreat = floatOrNaN(xt)
		s.Run.XPassCompletion = floatOrNaN(xpass)
		s.SeparationGain = floatOrNaN(sep)
		s.LeadToShot = floatOrNaN(shot)
		s.ShotValue = floatOrNaN(sv)
		s.DirectValue = floatOrNaN(dv)
		s.ProgressionValue = floatOrNaN(pv)
		s.DecoyPenalty = floatOrNaN(dp)
		s.OverloadValue = floatOrNaN(ov)
		s.RVA = floatOrNaN(rva)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlayerSummaries returns the per-player rollups for a match ordered by
// total RVA desc, NULL values last.
func (db *DB) GetPlayerSummaries(matchID int64) ([]model.PlayerRVASummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, player_name, total_rva, avg_rva,
		       n_runs, n_targeted, n_dangerous, shot_contribution, direct_contribution
		FROM player_rva WHERE match_id = ?
		ORDER BY total_rva IS NULL, total_rva DESC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerSummaries(rows)
}

// GetPlayerAcrossMatches returns one rollup row per stored match for a player
// name, most valuable first.
func (db *DB) GetPlayerAcrossMatches(playerName string) ([]model.PlayerRVASummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, player_name, total_rva, avg_rva,
		       n_runs, n_targeted, n_dangerous, shot_contribution, direct_contribution
		FROM player_rva WHERE player_name = ?
		ORDER BY total_rva IS NULL, total_rva DESC`, playerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerSummaries(rows)
}

func scanPlayerSummaries(rows *sql.Rows) ([]model.PlayerRVASummary, error) {
	var out []model.PlayerRVASummary
	for rows.Next() {
		var s model.PlayerRVASummary
		var total, avg, shot, direct sql.NullFloat64
		if err := rows.Scan(&s.MatchID, &s.PlayerName, &total, &avg,
			&s.NRuns, &s.NTargeted, &s.NDangerous, &shot, &direct); err != nil {
			return nil, err
		}
		s.TotalRVA = floatOrNaN(total)
		s.AvgRVA = floatOrNaN(avg)
		s.ShotContribution = floatOrNaN(shot)
		s.DirectContribution = floatOrNaN(direct)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Overview is the database-wide rollup shown by the summary command.
type Overview struct {
	NMatches   int
	NRuns      int
	NPlayers   int
	MeanRVA    float64
	TopPlayers []model.PlayerRVASummary
}

// GetOverview aggregates across every stored match.
func (db *DB) GetOverview(topN int) (Overview, error) {
	var ov Overview
	var meanRVA sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT COUNT(DISTINCT m.match_id),
		       COALESCE(SUM(m.n_runs), 0),
		       (SELECT COUNT(DISTINCT player_name) FROM player_rva),
		       (SELECT AVG(rva) FROM scored_runs)
		FROM matches m`).
		Scan(&ov.NMatches, &ov.NRuns, &ov.NPlayers, &meanRVA)
	if err != nil {
		return ov, err
	}
	ov.MeanRVA = floatOrNaN(meanRVA)

	rows, err := db.conn.Query(`
		SELECT 0, player_name, SUM(total_rva), AVG(avg_rva),
		       SUM(n_runs), SUM(n_targeted), SUM(n_dangerous),
		       SUM(shot_contribution), SUM(direct_contribution)
		FROM player_rva
		GROUP BY player_name
		ORDER BY SUM(total_rva) IS NULL, SUM(total_rva) DESC
		LIMIT ?`, topN)
	if err != nil {
		return ov, err
	}
	defer rows.Close()

	ov.TopPlayers, err = scanPlayerSummaries(rows)
	return ov, err
}

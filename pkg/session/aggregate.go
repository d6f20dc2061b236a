package session

import (
	"sort"

	"f1pitwall/pkg/model"
	"f1pitwall/pkg/telemetry"
)

// Snapshot assembles the outward-facing document. It is a pure read-only
// fold over the caches: nothing in the tracker is mutated, and every call
// recomputes bests, deltas and the leaderboard from scratch.
func (t *Tracker) Snapshot(receiving bool) model.Snapshot {
	snap := model.Empty()
	snap.Receiving = receiving
	if !t.initialized {
		return snap
	}

	snap.SessionUID = model.FormatUID(t.uid)
	if t.haveInfo {
		snap.Session = model.SessionInfo{
			Kind:             t.kind,
			TrackID:          t.info.TrackID,
			TrackLengthM:     t.info.TrackLengthM,
			TotalLaps:        t.info.TotalLaps,
			Weather:          t.info.Weather,
			TrackTempC:       t.info.TrackTempC,
			AirTempC:         t.info.AirTempC,
			TimeLeftSec:      t.info.TimeLeftSec,
			DurationSec:      t.info.DurationSec,
			PitSpeedLimitKPH: t.info.PitSpeedLimitKPH,
		}
	} else {
		snap.Session.Kind = t.kind
	}

	snap.Laps, snap.Bests = t.foldLedger()
	snap.Live = t.liveLine(snap.Laps)
	snap.Leaderboard = t.leaderboard()
	snap.SessionBest = sessionBests(snap.Leaderboard)
	snap.Player = t.playerState()
	return snap
}

// foldLedger returns the finalized laps in order with isBest and
// delta-to-best derived, plus the personal bests. Only valid laps with a
// real time count toward a best; each best field is minimized on its own.
func (t *Tracker) foldLedger() ([]model.Lap, model.PersonalBests) {
	var bests model.PersonalBests
	entries := t.ledger.ordered()

	for _, lap := range entries {
		if !lap.Valid || !lap.Time.IsSet() || lap.Time.MustGet() == 0 {
			continue
		}
		bests.Lap = minTime(bests.Lap, lap.Time)
		bests.S1 = minTime(bests.S1, lap.S1)
		bests.S2 = minTime(bests.S2, lap.S2)
		bests.S3 = minTime(bests.S3, lap.S3)
	}

	laps := make([]model.Lap, 0, len(entries))
	for _, lap := range entries {
		out := *lap
		out.IsBest = false
		out.DeltaToBest = telemetry.NoTime()
		if bests.Lap.IsSet() && out.Time.IsSet() &&
			out.Time.MustGet() >= bests.Lap.MustGet() {
			delta := out.Time.MustGet() - bests.Lap.MustGet()
			out.IsBest = out.Valid && delta == 0
			out.DeltaToBest = telemetry.Time(delta)
		}
		laps = append(laps, out)
	}
	return laps, bests
}

func minTime(cur, candidate telemetry.TimeMS) telemetry.TimeMS {
	if !candidate.IsSet() || candidate.MustGet() == 0 {
		return cur
	}
	if !cur.IsSet() || candidate.MustGet() < cur.MustGet() {
		return candidate
	}
	return cur
}

// liveLine reports the player's in-progress lap. The delta shown next to
// the ticking lap time is the most recent finalized lap's delta, which is
// what a pit board would show.
func (t *Tracker) liveLine(laps []model.Lap) model.LiveLine {
	var line model.LiveLine
	l := t.cars[t.playerIdx].Lap
	if l == nil {
		return line
	}
	line.LapNumber = l.CurrentLapNum
	line.Sector = l.Sector + 1
	line.CurrentLap = l.CurrentLapTime
	line.InPitLane = l.PitStatus != 0
	if n := len(laps); n > 0 {
		line.DeltaToBest = laps[n-1].DeltaToBest
	}
	return line
}

func (t *Tracker) playerState() model.PlayerState {
	c := &t.cars[t.playerIdx]
	ps := model.PlayerState{
		Status:    c.Status,
		Telemetry: c.Telemetry,
		Damage:    c.Damage,
	}
	if c.Lap != nil {
		ps.PenaltiesSec = c.Lap.PenaltiesSec
	}
	return ps
}

// leaderboard builds the per-car rows and their gaps. A car makes the
// board when its name is known and it is either the local player or an
// active slot whose result status is real; the player is always shown.
func (t *Tracker) leaderboard() []model.LeaderboardRow {
	rows := make([]model.LeaderboardRow, 0, telemetry.MaxCars)
	for i := 0; i < telemetry.MaxCars; i++ {
		c := &t.cars[i]
		if c.Participant == nil || c.Participant.Name == "" {
			continue
		}
		if i != t.playerIdx {
			if i >= t.numActive {
				continue
			}
			if c.Lap != nil && c.Lap.ResultStatus == telemetry.ResultStatusInvalid {
				continue
			}
		}
		rows = append(rows, t.buildRow(i, c))
	}

	if t.kind == model.KindRace {
		raceOrder(rows)
		raceGaps(rows, t)
	} else {
		qualiOrder(rows)
		qualiGaps(rows)
	}
	return rows
}

func (t *Tracker) buildRow(idx int, c *carState) model.LeaderboardRow {
	row := model.LeaderboardRow{
		CarIndex:  idx,
		Name:      c.Participant.Name,
		TeamID:    c.Participant.TeamID,
		LiveryRGB: [3]uint8{c.Participant.LiveryRed, c.Participant.LiveryGreen, c.Participant.LiveryBlue},
		IsPlayer:  idx == t.playerIdx,
	}
	if c.Status != nil {
		row.Tyre = &model.Tyre{
			Visual:  c.Status.VisualTyreCompound,
			Actual:  c.Status.ActualTyreCompound,
			AgeLaps: c.Status.TyresAgeLaps,
		}
	}
	if l := c.Lap; l != nil {
		row.Position = l.CarPosition
		row.LapNumber = l.CurrentLapNum
		row.StopCount = l.NumPitStops
		row.DistanceM = l.TotalDistance
		row.InPitLane = l.PitStatus != 0
	}
	if visit, lapNum := latestVisit(t.carPits[idx]); lapNum > 0 {
		v := visit
		row.Pit = &v
	}

	if t.kind == model.KindRace {
		t.fillMostRecentLap(&row, c)
	} else {
		fillBestLap(&row, c)
		if row.IsPlayer && !row.Time.IsSet() {
			// history packets lag (or get lost); the ledger already
			// knows the player's own laps
			t.fillBestFromLedger(&row)
		}
	}
	return row
}

// fillBestFromLedger shows the player's fastest valid finalized lap and
// that lap's sectors.
func (t *Tracker) fillBestFromLedger(row *model.LeaderboardRow) {
	var best *model.Lap
	for _, lap := range t.ledger {
		if !lap.Valid || !lap.Time.IsSet() || lap.Time.MustGet() == 0 {
			continue
		}
		if best == nil || lap.Time.MustGet() < best.Time.MustGet() {
			best = lap
		}
	}
	if best == nil {
		return
	}
	row.Time = best.Time
	row.S1 = best.S1
	row.S2 = best.S2
	row.S3 = best.S3
}

// fillMostRecentLap shows the car's latest completed lap: the
// authoritative history entry when one exists, the live feed's last
// reported values otherwise.
func (t *Tracker) fillMostRecentLap(row *model.LeaderboardRow, c *carState) {
	if c.Lap == nil {
		return
	}
	completed := int(c.Lap.CurrentLapNum) - 1
	if h, ok := c.historyLap(completed); ok && h.LapTime.IsSet() {
		row.Time = h.LapTime
		row.S1 = h.Sector1
		row.S2 = h.Sector2
		row.S3 = h.Sector3
		return
	}
	row.Time = c.Lap.LastLapTime
	row.S1 = c.Sectors.S1
	row.S2 = c.Sectors.S2
	row.S3 = c.Sectors.S3
	if !row.S3.IsSet() {
		row.S3 = telemetry.DeriveThirdSector(row.Time, row.S1, row.S2)
	}
}

// fillBestLap shows the car's best historical run, each session on its
// own merits: the fastest valid lap in the history table and that lap's
// sector times.
func fillBestLap(row *model.LeaderboardRow, c *carState) {
	var best telemetry.HistoryLap
	found := false
	for _, h := range c.History {
		if !h.LapTime.IsSet() || !h.Valid {
			continue
		}
		if !found || h.LapTime.MustGet() < best.LapTime.MustGet() {
			best = h
			found = true
		}
	}
	if !found {
		return
	}
	row.Time = best.LapTime
	row.S1 = best.Sector1
	row.S2 = best.Sector2
	row.S3 = best.Sector3
}

func latestVisit(p *pitTracker) (model.PitVisit, int) {
	bestLap := 0
	var out model.PitVisit
	for lapNum, v := range p.byLap {
		if lapNum > bestLap {
			bestLap = lapNum
			out = v
		}
	}
	return out, bestLap
}

// qualiOrder sorts by displayed lap time ascending, ties broken by the
// reported position, cars with no time last.
func qualiOrder(rows []model.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Time, rows[j].Time
		switch {
		case a.IsSet() && !b.IsSet():
			return true
		case !a.IsSet():
			return false
		case a.MustGet() != b.MustGet():
			return a.MustGet() < b.MustGet()
		}
		return rows[i].Position < rows[j].Position
	})
}

// qualiGaps sets each row's gap to the time difference with the row
// ahead in sorted order. A row with no time has no gap.
func qualiGaps(rows []model.LeaderboardRow) {
	for i := range rows {
		rows[i].GapToAhead = telemetry.NoTime()
		if i == 0 || !rows[i].Time.IsSet() || !rows[i-1].Time.IsSet() {
			continue
		}
		rows[i].GapToAhead = telemetry.Time(rows[i].Time.MustGet() - rows[i-1].Time.MustGet())
	}
}

func raceOrder(rows []model.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		// position 0 means not yet reported; keep those at the bottom
		pi, pj := rows[i].Position, rows[j].Position
		if pi == 0 || pj == 0 {
			return pj == 0 && pi != 0
		}
		return pi < pj
	})
}

// raceGaps uses the protocol's own gap-to-ahead when present and falls
// back to the difference of gap-to-leader values between adjacent rows.
func raceGaps(rows []model.LeaderboardRow, t *Tracker) {
	for i := range rows {
		rows[i].GapToAhead = telemetry.NoTime()
		if i == 0 {
			continue
		}
		l := t.cars[rows[i].CarIndex].Lap
		if l == nil {
			continue
		}
		if l.GapToAhead.IsSet() {
			rows[i].GapToAhead = l.GapToAhead
			continue
		}
		ahead := t.cars[rows[i-1].CarIndex].Lap
		if ahead == nil || !l.GapToLeader.IsSet() || !ahead.GapToLeader.IsSet() {
			continue
		}
		if d := int64(l.GapToLeader.MustGet()) - int64(ahead.GapToLeader.MustGet()); d >= 0 {
			rows[i].GapToAhead = telemetry.Time(uint32(d))
		}
	}
}

// sessionBests folds the displayed leaderboard times into the best lap
// and sector per field, remembering which car holds each.
func sessionBests(rows []model.LeaderboardRow) model.SessionBests {
	sb := model.SessionBests{
		LapCar: model.NoCar, S1Car: model.NoCar,
		S2Car: model.NoCar, S3Car: model.NoCar,
	}
	for _, row := range rows {
		if better(row.Time, sb.Lap) {
			sb.Lap, sb.LapCar = row.Time, row.CarIndex
		}
		if better(row.S1, sb.S1) {
			sb.S1, sb.S1Car = row.S1, row.CarIndex
		}
		if better(row.S2, sb.S2) {
			sb.S2, sb.S2Car = row.S2, row.CarIndex
		}
		if better(row.S3, sb.S3) {
			sb.S3, sb.S3Car = row.S3, row.CarIndex
		}
	}
	return sb
}

func better(candidate, cur telemetry.TimeMS) bool {
	if !candidate.IsSet() || candidate.MustGet() == 0 {
		return false
	}
	return !cur.IsSet() || candidate.MustGet() < cur.MustGet()
}

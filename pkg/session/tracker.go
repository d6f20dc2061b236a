package session

import (
	"go.uber.org/zap"

	"f1pitwall/pkg/log"
	"f1pitwall/pkg/model"
	"f1pitwall/pkg/telemetry"
)

// Tracker owns every piece of session-scoped state and is the single
// writer for all of it. Apply must only ever be called from one goroutine;
// none of the caches tolerate concurrent mutation.
type Tracker struct {
	initialized bool
	uid         uint64
	playerIdx   int
	numActive   int

	haveInfo bool
	info     telemetry.SessionData
	kind     model.SessionKind

	cars [telemetry.MaxCars]carState

	ledger      lapLedger
	tyreAtStart map[int]model.Tyre
	tainted     map[int]bool
	lastLapNum  int

	playerPit *pitTracker
	carPits   [telemetry.MaxCars]*pitTracker
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.clear()
	return t
}

// clear wipes every cache. Called on construction and on an epoch change.
func (t *Tracker) clear() {
	t.haveInfo = false
	t.info = telemetry.SessionData{}
	t.kind = model.KindQualifying
	t.numActive = 0
	t.lastLapNum = 0
	t.cars = [telemetry.MaxCars]carState{}
	t.ledger = make(lapLedger)
	t.tyreAtStart = make(map[int]model.Tyre)
	t.tainted = make(map[int]bool)
	t.playerPit = newPitTracker(t.backfillPit)
	for i := range t.carPits {
		t.carPits[i] = newPitTracker(nil)
	}
}

// backfillPit patches an already-finalized ledger entry when the player's
// pit stint closes after the lap it started on was finalized.
func (t *Tracker) backfillPit(lapNum int, visit model.PitVisit) {
	if lap, ok := t.ledger[lapNum]; ok {
		v := visit
		lap.Pit = &v
	}
}

// Apply decodes one datagram and folds it into the session state. It
// reports whether the datagram changed anything a viewer could see; short
// or unknown packets report false and mutate nothing.
func (t *Tracker) Apply(datagram []byte) bool {
	h, ok := telemetry.DecodeHeader(datagram)
	if !ok {
		return false
	}
	if h.PacketFormat != telemetry.PacketFormat {
		return false
	}

	if !t.initialized || h.SessionUID != t.uid {
		if t.initialized {
			log.L().Info("session changed, resetting state",
				zap.Uint64("old", t.uid), zap.Uint64("new", h.SessionUID))
		}
		t.clear()
		t.initialized = true
		t.uid = h.SessionUID
	}
	// 255 means no local player (spectated or secondary-player streams);
	// anything past the car array keeps the previous index so a stray
	// value can never send an access out of bounds
	if idx := int(h.PlayerCarIndex); idx < telemetry.MaxCars {
		t.playerIdx = idx
	}

	switch h.PacketID {
	case telemetry.PacketIDSession:
		return t.applySession(datagram)
	case telemetry.PacketIDLapData:
		return t.applyLapData(datagram)
	case telemetry.PacketIDParticipants:
		return t.applyParticipants(datagram)
	case telemetry.PacketIDCarTelemetry:
		return t.applyCarTelemetry(datagram)
	case telemetry.PacketIDCarStatus:
		return t.applyCarStatus(datagram)
	case telemetry.PacketIDCarDamage:
		return t.applyCarDamage(datagram)
	case telemetry.PacketIDSessionHistory:
		return t.applySessionHistory(datagram)
	}
	return false
}

func (t *Tracker) applySession(buf []byte) bool {
	s, ok := telemetry.DecodeSession(buf)
	if !ok {
		return false
	}
	t.info = s
	t.haveInfo = true
	t.kind = ClassifyKind(s.SessionType, s.TotalLaps)
	return true
}

func (t *Tracker) applyParticipants(buf []byte) bool {
	n, ok := telemetry.DecodeNumActiveCars(buf)
	if !ok {
		return false
	}
	t.numActive = n
	for i := 0; i < telemetry.MaxCars; i++ {
		p, ok := telemetry.DecodeParticipant(buf, i)
		if !ok {
			break
		}
		t.cars[i].Participant = &p
	}
	return true
}

func (t *Tracker) applyCarTelemetry(buf []byte) bool {
	any := false
	for i := 0; i < telemetry.MaxCars; i++ {
		ct, ok := telemetry.DecodeCarTelemetry(buf, i)
		if !ok {
			break
		}
		t.cars[i].Telemetry = &ct
		any = true
	}
	return any
}

func (t *Tracker) applyCarStatus(buf []byte) bool {
	any := false
	for i := 0; i < telemetry.MaxCars; i++ {
		cs, ok := telemetry.DecodeCarStatus(buf, i)
		if !ok {
			break
		}
		t.cars[i].Status = &cs
		any = true
	}
	// the status feed can deliver the tyre fit before the first lap tick
	// of a lap is seen, and vice versa
	if any && t.cars[t.playerIdx].Lap != nil {
		t.snapshotTyre(int(t.cars[t.playerIdx].Lap.CurrentLapNum))
	}
	return any
}

func (t *Tracker) applyCarDamage(buf []byte) bool {
	any := false
	for i := 0; i < telemetry.MaxCars; i++ {
		cd, ok := telemetry.DecodeCarDamage(buf, i)
		if !ok {
			break
		}
		t.cars[i].Damage = &cd
		any = true
	}
	return any
}

func (t *Tracker) applyLapData(buf []byte) bool {
	any := false
	for i := 0; i < telemetry.MaxCars; i++ {
		l, ok := telemetry.DecodeLapData(buf, i)
		if !ok {
			break
		}
		any = true
		c := &t.cars[i]
		cur := int(l.CurrentLapNum)

		if i == t.playerIdx {
			t.applyPlayerLap(&l, cur)
		} else if c.Lap != nil && cur > c.lastLapNum {
			// a new lap started for this car; its sector cache belongs
			// to the finished lap and must not leak into the new one
			c.Sectors = sectorCache{}
		}

		c.Lap = &l
		c.lastLapNum = cur
		c.Sectors.merge(l.Sector1, l.Sector2, telemetry.NoTime())
		t.carPits[i].observe(l.PitStatus != 0, cur, l.PitLaneTimeInLane, l.PitStatus)
	}
	return any
}

// applyPlayerLap handles the rewind, tyre-snapshot, taint and finalize
// rules that only apply to the local player's ledger. It runs before the
// new record replaces the lap cache so the sticky sector cache still
// holds the finished lap's values.
func (t *Tracker) applyPlayerLap(l *telemetry.LapData, cur int) {
	if t.lastLapNum > 0 && cur < t.lastLapNum {
		t.rewind(cur)
	}

	t.snapshotTyre(cur)

	if l.CurrentLapInvalid {
		t.tainted[cur] = true
	}

	if t.lastLapNum > 0 && cur > t.lastLapNum && l.LastLapTime.IsSet() {
		t.finalizeLap(cur-1, l)
		t.cars[t.playerIdx].Sectors = sectorCache{}
	}

	t.playerPit.observe(l.PitStatus != 0, cur, l.PitLaneTimeInLane, l.PitStatus)
	t.lastLapNum = cur
}

// rewind discards every record from the abandoned timeline: ledger
// entries, tyre snapshots, attributed pit visits and lap taints at or
// past the resumed lap number, plus any stint still in progress.
func (t *Tracker) rewind(cur int) {
	log.L().Debug("rewind observed",
		zap.Int("from", t.lastLapNum), zap.Int("to", cur))
	t.ledger.truncateFrom(cur)
	for n := range t.tyreAtStart {
		if n >= cur {
			delete(t.tyreAtStart, n)
		}
	}
	for n := range t.tainted {
		if n >= cur {
			delete(t.tainted, n)
		}
	}
	t.playerPit.truncateFrom(cur)
	t.playerPit.abandon()
	t.carPits[t.playerIdx].truncateFrom(cur)
	t.carPits[t.playerIdx].abandon()
	t.cars[t.playerIdx].Sectors = sectorCache{}
}

// snapshotTyre records the tyre fitted when a lap number is first seen.
// Later packets only fill a snapshot that could not be taken yet.
func (t *Tracker) snapshotTyre(lapNum int) {
	if _, ok := t.tyreAtStart[lapNum]; ok {
		return
	}
	s := t.cars[t.playerIdx].Status
	if s == nil {
		return
	}
	t.tyreAtStart[lapNum] = model.Tyre{
		Visual:  s.VisualTyreCompound,
		Actual:  s.ActualTyreCompound,
		AgeLaps: s.TyresAgeLaps,
	}
}

// finalizeLap creates the ledger entry for a just-completed lap. The
// authoritative history entry wins when it carries a real lap time;
// otherwise the live feed's last reported time and sticky sectors are
// used, with the third sector derived from the total.
func (t *Tracker) finalizeLap(lapNum int, l *telemetry.LapData) {
	lap := &model.Lap{
		Number:    lapNum,
		Valid:     t.lapValid(lapNum),
		StopCount: l.NumPitStops,
	}

	if h, ok := t.cars[t.playerIdx].historyLap(lapNum); ok && h.LapTime.IsSet() {
		lap.Time = h.LapTime
		lap.S1 = h.Sector1
		lap.S2 = h.Sector2
		lap.S3 = h.Sector3
	} else {
		sc := t.cars[t.playerIdx].Sectors
		lap.Time = l.LastLapTime
		lap.S1 = sc.S1
		lap.S2 = sc.S2
		lap.S3 = sc.S3
		if !lap.S3.IsSet() {
			lap.S3 = telemetry.DeriveThirdSector(lap.Time, lap.S1, lap.S2)
		}
	}

	if tyre, ok := t.tyreAtStart[lapNum]; ok {
		ty := tyre
		lap.Tyre = &ty
	}
	if visit, ok := t.playerPit.visit(lapNum); ok {
		v := visit
		lap.Pit = &v
	}

	t.ledger[lapNum] = lap
}

// lapValid reports whether a finalized lap counts toward bests. Race
// sessions count every lap; elsewhere a lap is valid only if the
// invalid-lap flag stayed clear for its whole duration.
func (t *Tracker) lapValid(lapNum int) bool {
	if t.kind == model.KindRace {
		return true
	}
	return !t.tainted[lapNum]
}

func (t *Tracker) applySessionHistory(buf []byte) bool {
	h, ok := telemetry.DecodeSessionHistory(buf)
	if !ok || h.CarIndex < 0 || h.CarIndex >= telemetry.MaxCars {
		return false
	}
	t.cars[h.CarIndex].setHistory(h.Laps)

	if h.CarIndex == t.playerIdx {
		t.overrideLedger(h.Laps)
	}
	return true
}

// overrideLedger replaces provisional time and sector fields on finalized
// laps with their authoritative history values. An entry whose history
// lap time is zero or absent carries no information and changes nothing.
func (t *Tracker) overrideLedger(laps []telemetry.HistoryLap) {
	for _, hl := range laps {
		if !hl.LapTime.IsSet() {
			continue
		}
		lap, ok := t.ledger[hl.LapNumber]
		if !ok {
			continue
		}
		lap.Time = hl.LapTime
		lap.S1 = hl.Sector1
		lap.S2 = hl.Sector2
		lap.S3 = hl.Sector3
	}
}

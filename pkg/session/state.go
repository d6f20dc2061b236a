package session

import (
	"f1pitwall/pkg/telemetry"
)

// Per-car caches. Every cache is either REPLACE (the whole record is
// overwritten on each receipt) or MERGE-KEEP-LAST (a field is only
// overwritten when the new value is present). The sector cache is the
// only MERGE-KEEP-LAST one: the live feed stops resending a sector time
// once the next sector begins, so absent fields keep their last value.

// sectorCache holds the last-known sector times for one car.
type sectorCache struct {
	S1 telemetry.TimeMS
	S2 telemetry.TimeMS
	S3 telemetry.TimeMS
}

func (c *sectorCache) merge(s1, s2, s3 telemetry.TimeMS) {
	if s1.IsSet() {
		c.S1 = s1
	}
	if s2.IsSet() {
		c.S2 = s2
	}
	if s3.IsSet() {
		c.S3 = s3
	}
}

// carState groups every per-car REPLACE cache plus the car's sticky
// sector cache and its authoritative lap history.
type carState struct {
	Participant *telemetry.Participant
	Status      *telemetry.CarStatus
	Telemetry   *telemetry.CarTelemetry
	Damage      *telemetry.CarDamage
	Lap         *telemetry.LapData
	Sectors     sectorCache

	// lastLapNum is the lap number seen on the previous tick, used to
	// notice a lap boundary and retire the sector cache with it.
	lastLapNum int

	// History maps lap number to the authoritative record for that lap.
	History map[int]telemetry.HistoryLap
}

func (c *carState) historyLap(lapNum int) (telemetry.HistoryLap, bool) {
	if c.History == nil {
		return telemetry.HistoryLap{}, false
	}
	h, ok := c.History[lapNum]
	return h, ok
}

func (c *carState) setHistory(laps []telemetry.HistoryLap) {
	if c.History == nil {
		c.History = make(map[int]telemetry.HistoryLap, len(laps))
	}
	for _, lap := range laps {
		c.History[lap.LapNumber] = lap
	}
}

package model

import (
	"strconv"

	"f1pitwall/pkg/telemetry"
)

// SessionKind classifies a session for lap-validity and leaderboard
// display purposes.
type SessionKind string

const (
	KindRace       SessionKind = "race"
	KindQualifying SessionKind = "qualifying"
	KindTimeTrial  SessionKind = "timetrial"
)

// NoCar marks a session best with no holder yet.
const NoCar = -1

// Snapshot is the consolidated view pushed to every viewer. It is always a
// complete document, never a delta; consumers replace their whole state
// with each one they receive.
type Snapshot struct {
	Receiving   bool             `json:"receiving"`
	SessionUID  string           `json:"sessionUid"`
	Session     SessionInfo      `json:"session"`
	Live        LiveLine         `json:"live"`
	Bests       PersonalBests    `json:"bests"`
	SessionBest SessionBests     `json:"sessionBest"`
	Laps        []Lap            `json:"laps"`
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	Player      PlayerState      `json:"player"`
}

// SessionInfo is the session metadata surfaced to viewers.
type SessionInfo struct {
	Kind             SessionKind `json:"kind"`
	TrackID          int8        `json:"trackId"`
	TrackLengthM     uint16      `json:"trackLength"`
	TotalLaps        uint8       `json:"totalLaps"`
	Weather          uint8       `json:"weather"`
	TrackTempC       int8        `json:"trackTemp"`
	AirTempC         int8        `json:"airTemp"`
	TimeLeftSec      uint16      `json:"timeLeftSec"`
	DurationSec      uint16      `json:"durationSec"`
	PitSpeedLimitKPH uint8       `json:"pitSpeedLimit"`
}

// LiveLine is the player's in-progress lap.
type LiveLine struct {
	LapNumber   uint8            `json:"lapNumber"`
	Sector      uint8            `json:"sector"`
	CurrentLap  telemetry.TimeMS `json:"currentLap"`
	DeltaToBest telemetry.TimeMS `json:"deltaToBest"`
	InPitLane   bool             `json:"inPitLane"`
}

// PersonalBests are the player's best lap and sector times over all valid
// finalized laps. Each field is minimized independently, so the best
// sector two may come from a different lap than the best lap time.
type PersonalBests struct {
	Lap telemetry.TimeMS `json:"lap"`
	S1  telemetry.TimeMS `json:"s1"`
	S2  telemetry.TimeMS `json:"s2"`
	S3  telemetry.TimeMS `json:"s3"`
}

// SessionBests are the best displayed times across all cars together with
// the slot index holding each one. A holder of NoCar means no time yet.
type SessionBests struct {
	Lap    telemetry.TimeMS `json:"lap"`
	LapCar int              `json:"lapCar"`
	S1     telemetry.TimeMS `json:"s1"`
	S1Car  int              `json:"s1Car"`
	S2     telemetry.TimeMS `json:"s2"`
	S2Car  int              `json:"s2Car"`
	S3     telemetry.TimeMS `json:"s3"`
	S3Car  int              `json:"s3Car"`
}

// Tyre is the compound fitted at the start of a lap.
type Tyre struct {
	Visual  uint8 `json:"visual"`
	Actual  uint8 `json:"actual"`
	AgeLaps uint8 `json:"ageLaps"`
}

// PitVisit is a finalized pit-lane stint attributed to the lap it began on.
type PitVisit struct {
	TimeInLane telemetry.TimeMS `json:"timeInLane"`
	Status     uint8            `json:"status"`
}

// Lap is one finalized player lap.
type Lap struct {
	Number      int              `json:"number"`
	Time        telemetry.TimeMS `json:"time"`
	S1          telemetry.TimeMS `json:"s1"`
	S2          telemetry.TimeMS `json:"s2"`
	S3          telemetry.TimeMS `json:"s3"`
	Valid       bool             `json:"valid"`
	IsBest      bool             `json:"isBest"`
	DeltaToBest telemetry.TimeMS `json:"deltaToBest"`
	Tyre        *Tyre            `json:"tyre,omitempty"`
	Pit         *PitVisit        `json:"pit,omitempty"`
	StopCount   uint8            `json:"stopCount"`
}

// LeaderboardRow is one car's line on the multi-car board. Time and the
// sector fields carry whatever the session kind says should be displayed:
// the car's best run in qualifying-like sessions, its most recent lap in
// race-like ones.
type LeaderboardRow struct {
	CarIndex   int              `json:"carIndex"`
	Position   uint8            `json:"position"`
	Name       string           `json:"name"`
	TeamID     uint8            `json:"teamId"`
	LiveryRGB  [3]uint8         `json:"liveryRgb"`
	LapNumber  uint8            `json:"lapNumber"`
	Time       telemetry.TimeMS `json:"time"`
	S1         telemetry.TimeMS `json:"s1"`
	S2         telemetry.TimeMS `json:"s2"`
	S3         telemetry.TimeMS `json:"s3"`
	GapToAhead telemetry.TimeMS `json:"gapToAhead"`
	Tyre       *Tyre            `json:"tyre,omitempty"`
	Pit        *PitVisit        `json:"pit,omitempty"`
	StopCount  uint8            `json:"stopCount"`
	DistanceM  float32          `json:"distance"`
	InPitLane  bool             `json:"inPitLane"`
	IsPlayer   bool             `json:"isPlayer"`
}

// PlayerState carries the latest car records for the local player.
type PlayerState struct {
	Status       *telemetry.CarStatus    `json:"status,omitempty"`
	Telemetry    *telemetry.CarTelemetry `json:"telemetry,omitempty"`
	Damage       *telemetry.CarDamage    `json:"damage,omitempty"`
	PenaltiesSec uint8                   `json:"penaltiesSec"`
}

// FormatUID renders a session identifier the way it appears in snapshots.
func FormatUID(uid uint64) string {
	if uid == 0 {
		return ""
	}
	return strconv.FormatUint(uid, 10)
}

// Empty returns the snapshot published before any data has arrived or
// after connectivity is lost with no session on record.
func Empty() Snapshot {
	return Snapshot{
		SessionBest: SessionBests{LapCar: NoCar, S1Car: NoCar, S2Car: NoCar, S3Car: NoCar},
		Laps:        []Lap{},
		Leaderboard: []LeaderboardRow{},
	}
}

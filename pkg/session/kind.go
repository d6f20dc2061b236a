package session

import (
	"f1pitwall/pkg/model"
)

// Session-type codes carried by the session metadata packet.
// 1..4 practice, 5..9 qualifying and sprint shootout variants,
// 10..12 race variants, 13 time trial.
const (
	sessionTypeUnknown   = 0
	sessionTypeTimeTrial = 13

	sessionTypeQualiLow  = 1
	sessionTypeQualiHigh = 9
	sessionTypeRaceLow   = 10
	sessionTypeRaceHigh  = 12
)

// ClassifyKind maps a session-type code to the kind that governs lap
// validity and leaderboard display. Codes outside the documented ranges
// default to race when a lap count was reported and qualifying otherwise;
// the protocol leaves those codes unspecified so the lap count is the best
// available signal.
func ClassifyKind(sessionType uint8, totalLaps uint8) model.SessionKind {
	switch {
	case sessionType == sessionTypeTimeTrial:
		return model.KindTimeTrial
	case sessionType >= sessionTypeRaceLow && sessionType <= sessionTypeRaceHigh:
		return model.KindRace
	case sessionType >= sessionTypeQualiLow && sessionType <= sessionTypeQualiHigh:
		return model.KindQualifying
	}
	if totalLaps > 0 {
		return model.KindRace
	}
	return model.KindQualifying
}

package session

import (
	"sort"

	"f1pitwall/pkg/model"
)

// lapLedger is the authoritative record of the player's completed laps in
// the current session, keyed by lap number. Entries exist exactly for the
// laps the player has completed; a rewind deletes everything at or past
// the resumed lap number.
type lapLedger map[int]*model.Lap

func (l lapLedger) truncateFrom(lapNum int) {
	for n := range l {
		if n >= lapNum {
			delete(l, n)
		}
	}
}

// ordered returns the ledger entries sorted by lap number.
func (l lapLedger) ordered() []*model.Lap {
	laps := make([]*model.Lap, 0, len(l))
	for _, lap := range l {
		laps = append(laps, lap)
	}
	sort.Slice(laps, func(i, j int) bool { return laps[i].Number < laps[j].Number })
	return laps
}

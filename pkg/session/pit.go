package session

import (
	"f1pitwall/pkg/model"
	"f1pitwall/pkg/telemetry"
)

// pitTracker is the per-car pit-lane stint state machine. A stint opens on
// the rising edge of the pit-lane flag and closes on the falling edge. Its
// duration and status are attributed to the lap the stint began on, since
// a pit visit can straddle the start/finish line. The in-lane time and
// status code accumulate as maxima: the feed reports transient zeros
// mid-stint and those must not erase what was already observed.
type pitTracker struct {
	active    bool
	startLap  int
	maxTimeMS uint32
	maxStatus uint8

	byLap map[int]model.PitVisit

	// onClose runs after a stint is attributed to its lap. The player's
	// tracker uses it to patch an already-finalized ledger entry.
	onClose func(lapNum int, visit model.PitVisit)
}

func newPitTracker(onClose func(int, model.PitVisit)) *pitTracker {
	return &pitTracker{
		byLap:   make(map[int]model.PitVisit),
		onClose: onClose,
	}
}

// observe feeds one live-lap tick into the state machine.
func (p *pitTracker) observe(inPitLane bool, lapNum int, timeInLane telemetry.TimeMS, statusCode uint8) {
	if inPitLane && !p.active {
		p.active = true
		p.startLap = lapNum
		p.maxTimeMS = 0
		p.maxStatus = 0
	}
	if p.active {
		if timeInLane.IsSet() && timeInLane.MustGet() > p.maxTimeMS {
			p.maxTimeMS = timeInLane.MustGet()
		}
		if statusCode > p.maxStatus {
			p.maxStatus = statusCode
		}
	}
	if !inPitLane && p.active {
		p.close()
	}
}

func (p *pitTracker) close() {
	p.active = false
	if p.maxTimeMS == 0 {
		return
	}
	visit := model.PitVisit{
		TimeInLane: telemetry.Time(p.maxTimeMS),
		Status:     p.maxStatus,
	}
	p.byLap[p.startLap] = visit
	if p.onClose != nil {
		p.onClose(p.startLap, visit)
	}
}

// visit returns the finalized pit visit attributed to the given lap.
func (p *pitTracker) visit(lapNum int) (model.PitVisit, bool) {
	v, ok := p.byLap[lapNum]
	return v, ok
}

// abandon drops any in-progress stint without attributing it. Used on a
// rewind, where the stint belongs to a discarded timeline.
func (p *pitTracker) abandon() {
	p.active = false
	p.maxTimeMS = 0
	p.maxStatus = 0
}

// truncateFrom removes every attributed visit with lap number >= lapNum.
func (p *pitTracker) truncateFrom(lapNum int) {
	for n := range p.byLap {
		if n >= lapNum {
			delete(p.byLap, n)
		}
	}
}

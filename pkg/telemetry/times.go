package telemetry

import (
	"github.com/aarondl/opt/null"
)

// TimeMS is a millisecond duration that may be genuinely absent. The wire
// format uses several sentinel encodings for "unavailable"; all of them
// decode to an unset TimeMS, which marshals to JSON null. Absent values are
// never folded into zero anywhere downstream.
type TimeMS = null.Val[uint32]

func Time(ms uint32) TimeMS {
	return null.From(ms)
}

func NoTime() TimeMS {
	return null.FromPtr[uint32](nil)
}

// TimeWhen returns ms as a present value when ok is true, absent otherwise.
func TimeWhen(ms uint32, ok bool) TimeMS {
	if ok {
		return null.From(ms)
	}
	return NoTime()
}

// twoPartTime decodes the split minutes/sub-minute-milliseconds encoding.
// Either part carrying its reserved sentinel, or both parts being zero,
// means the value was not available.
func twoPartTime(ms uint16, minutes uint8) TimeMS {
	if ms == sentinelMS16 || minutes == sentinelMin8 {
		return NoTime()
	}
	if ms == 0 && minutes == 0 {
		return NoTime()
	}
	return Time(uint32(minutes)*60000 + uint32(ms))
}

// DeriveThirdSector computes the untransmitted third timing phase as
// total - s1 - s2. A negative result means the inputs disagree and the
// value is reported unavailable instead.
func DeriveThirdSector(total, s1, s2 TimeMS) TimeMS {
	if !total.IsSet() || !s1.IsSet() || !s2.IsSet() {
		return NoTime()
	}
	d := int64(total.MustGet()) - int64(s1.MustGet()) - int64(s2.MustGet())
	if d < 0 {
		return NoTime()
	}
	return Time(uint32(d))
}

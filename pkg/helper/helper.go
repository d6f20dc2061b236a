package helper

import (
	"fmt"
	"strings"

	"f1pitwall/pkg/telemetry"
)

// FormatLapTime renders a millisecond lap time as M:SS.mmm, or "-" when
// the value is absent.
func FormatLapTime(t telemetry.TimeMS) string {
	if !t.IsSet() || t.MustGet() == 0 {
		return "-"
	}
	ms := t.MustGet()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms%60000)/1000, ms%1000)
}

// FormatSectorTime renders a millisecond sector time as SS.mmm.
func FormatSectorTime(t telemetry.TimeMS) string {
	if !t.IsSet() || t.MustGet() == 0 {
		return "-"
	}
	ms := t.MustGet()
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// FormatGap renders a gap in milliseconds as "+S.mmm", right aligned the
// way a timing column expects. A zero gap is a real value (a dead heat)
// and renders as +0.000.
func FormatGap(t telemetry.TimeMS) string {
	if !t.IsSet() {
		return "-"
	}
	ms := t.MustGet()
	gap := fmt.Sprintf("+%d.%03d", ms/1000, ms%1000)
	if len(gap) < 8 {
		gap = strings.Repeat(" ", 8-len(gap)) + gap
	}
	return gap
}

// FormatClock renders a duration in whole seconds as HH:MM:SS.
func FormatClock(seconds uint16) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// DriverCode builds the three-letter tag shown in narrow timing columns:
// first letter of the first name plus the first two of the surname.
func DriverCode(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	code := string([]rune(words[0])[0])
	rest := words[0]
	if len(words) > 1 {
		rest = words[len(words)-1]
		code += firstN(rest, 2)
	} else {
		r := []rune(rest)
		if len(r) > 1 {
			code += string(r[1:min(3, len(r))])
		}
	}
	return strings.ToUpper(code)
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		n = len(r)
	}
	return string(r[:n])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

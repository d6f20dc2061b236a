package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"f1pitwall/pkg/telemetry"
)

func TestFormatLapTime(t *testing.T) {
	assert.Equal(t, "1:31.245", FormatLapTime(telemetry.Time(91245)))
	assert.Equal(t, "0:59.999", FormatLapTime(telemetry.Time(59999)))
	assert.Equal(t, "-", FormatLapTime(telemetry.NoTime()))
	assert.Equal(t, "-", FormatLapTime(telemetry.Time(0)))
}

func TestFormatGap(t *testing.T) {
	assert.Equal(t, "  +1.500", FormatGap(telemetry.Time(1500)))
	assert.Equal(t, "  +0.000", FormatGap(telemetry.Time(0)))
	assert.Equal(t, "-", FormatGap(telemetry.NoTime()))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "01:00:00", FormatClock(3600))
	assert.Equal(t, "00:56:40", FormatClock(3400))
}

func TestDriverCode(t *testing.T) {
	assert.Equal(t, "MVE", DriverCode("Max Verstappen"))
	assert.Equal(t, "LHA", DriverCode("Lewis Hamilton"))
	assert.Equal(t, "PLA", DriverCode("Player"))
	assert.Equal(t, "", DriverCode(""))
}
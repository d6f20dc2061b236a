package console

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"f1pitwall/pkg/model"
	"f1pitwall/pkg/telemetry"
)

func TestRender(t *testing.T) {
	snap := model.Empty()
	snap.Receiving = true
	snap.Session.Kind = model.KindQualifying
	snap.Leaderboard = []model.LeaderboardRow{
		{Name: "Max Verstappen", Time: telemetry.Time(78000), LapNumber: 4},
		{Name: "Player One", Time: telemetry.Time(79500),
			GapToAhead: telemetry.Time(1500), IsPlayer: true, LapNumber: 3},
	}

	out := Render(snap)
	assert.Contains(t, out, "[LIVE]")
	assert.Contains(t, out, "MVE")
	assert.Contains(t, out, ">PON")
	assert.Contains(t, out, "1:18.000")
	assert.Contains(t, out, "+1.500")
}

func TestRenderNoData(t *testing.T) {
	out := Render(model.Empty())
	assert.Contains(t, out, "[NO DATA]")
}

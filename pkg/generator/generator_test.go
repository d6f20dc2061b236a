package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1pitwall/pkg/session"
)

// The generator's one contract: a tracker fed generated packets produces
// snapshots indistinguishable in shape from a live session.
func TestGeneratedPacketsDriveTheTracker(t *testing.T) {
	g := New()
	tr := session.NewTracker()

	// enough ticks for several laps and the scripted pit stop
	for i := 0; i < 1500; i++ {
		for _, pkt := range g.step() {
			tr.Apply(pkt)
		}
	}

	snap := tr.Snapshot(true)

	assert.NotEmpty(t, snap.SessionUID)
	assert.NotEmpty(t, snap.Session.Kind)
	require.Len(t, snap.Leaderboard, demoCars)
	for _, row := range snap.Leaderboard {
		assert.NotEmpty(t, row.Name)
		assert.True(t, row.Time.IsSet(), "car %d has no displayed time", row.CarIndex)
	}

	require.NotEmpty(t, snap.Laps)
	assert.True(t, snap.Bests.Lap.IsSet())

	// the scripted pit stop shows up on the ledger
	sawPit := false
	for _, lap := range snap.Laps {
		if lap.Pit != nil {
			sawPit = true
			assert.Greater(t, lap.Pit.TimeInLane.MustGet(), uint32(0))
		}
	}
	assert.True(t, sawPit)

	assert.NotNil(t, snap.Player.Status)
	assert.NotNil(t, snap.Player.Telemetry)
	assert.NotNil(t, snap.Player.Damage)
}

package console

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"f1pitwall/pkg/caster"
	"f1pitwall/pkg/helper"
	"f1pitwall/pkg/ingest"
	"f1pitwall/pkg/log"
	"f1pitwall/pkg/model"
	"f1pitwall/pkg/pubsub"
)

// redrawEvery throttles terminal output; the snapshot stream updates far
// faster than a terminal is worth redrawing.
const redrawEvery = time.Second

// Monitor renders the live leaderboard to stdout. It is a normal snapshot
// consumer, useful when running headless or checking a feed without a
// browser.
type Monitor struct {
	ps     *pubsub.PubSub[string]
	caster caster.ChannelCaster[model.Snapshot]
}

func NewMonitor(ps *pubsub.PubSub[string]) *Monitor {
	return &Monitor{
		ps:     ps,
		caster: caster.JSONChannelCaster[model.Snapshot]{},
	}
}

func (m *Monitor) Run(ctx context.Context) error {
	sub := m.ps.Subscribe(ingest.Topic)
	var pending *model.Snapshot
	ticker := time.NewTicker(redrawEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-sub:
			snap, err := m.caster.From(payload)
			if err != nil {
				log.L().Warn("bad snapshot payload", zap.Error(err))
				continue
			}
			pending = &snap
		case <-ticker.C:
			if pending == nil {
				continue
			}
			fmt.Println(Render(*pending))
			pending = nil
		}
	}
}

// Render draws one snapshot as a timing table.
func Render(snap model.Snapshot) string {
	var buf bytes.Buffer

	status := "LIVE"
	if !snap.Receiving {
		status = "NO DATA"
	}
	fmt.Fprintf(&buf, "[%s] %s  laps %d  time left %s\n",
		status, snap.Session.Kind, snap.Session.TotalLaps,
		helper.FormatClock(snap.Session.TimeLeftSec))

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"P", "PIL", "Time", "S1", "S2", "S3", "Gap", "Pit", "Laps"})
	for i, row := range snap.Leaderboard {
		name := helper.DriverCode(row.Name)
		if row.IsPlayer {
			name = ">" + name
		}
		pits := "-"
		if row.StopCount > 0 {
			pits = fmt.Sprintf("%d", row.StopCount)
		}
		t.AppendRow(table.Row{
			i + 1,
			name,
			helper.FormatLapTime(row.Time),
			helper.FormatSectorTime(row.S1),
			helper.FormatSectorTime(row.S2),
			helper.FormatSectorTime(row.S3),
			helper.FormatGap(row.GapToAhead),
			pits,
			row.LapNumber,
		})
	}
	t.Render()

	if snap.Bests.Lap.IsSet() {
		fmt.Fprintf(&buf, "personal best %s (s1 %s  s2 %s  s3 %s)\n",
			helper.FormatLapTime(snap.Bests.Lap),
			helper.FormatSectorTime(snap.Bests.S1),
			helper.FormatSectorTime(snap.Bests.S2),
			helper.FormatSectorTime(snap.Bests.S3))
	}
	return buf.String()
}

package relay

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"f1pitwall/pkg/ingest"
	"f1pitwall/pkg/log"
	"f1pitwall/pkg/pubsub"
)

// Subject carries every snapshot published to the broker.
const Subject = "f1pitwall.snapshot"

// Relay mirrors the snapshot stream onto a NATS broker so other
// processes (overlays, loggers, bots) can consume it without connecting
// to this one.
type Relay struct {
	url string
	ps  *pubsub.PubSub[string]
}

func New(url string, ps *pubsub.PubSub[string]) *Relay {
	return &Relay{url: url, ps: ps}
}

// Run connects and forwards until the context is cancelled. Publishes are
// best effort; a broker outage is logged once per failed publish and
// recovery is left to the client's own reconnect handling.
func (r *Relay) Run(ctx context.Context) error {
	conn, err := nats.Connect(r.url,
		nats.Name("f1pitwall"),
		nats.MaxReconnects(-1))
	if err != nil {
		return errors.Wrapf(err, "connecting to nats at %s", r.url)
	}
	defer conn.Close()
	log.L().Info("relaying snapshots to nats",
		zap.String("url", r.url), zap.String("subject", Subject))

	sub := r.ps.Subscribe(ingest.Topic)
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-sub:
			if err := conn.Publish(Subject, []byte(payload)); err != nil {
				log.L().Warn("nats publish failed", zap.Error(err))
			}
		}
	}
}

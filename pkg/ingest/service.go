package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"f1pitwall/pkg/caster"
	"f1pitwall/pkg/log"
	"f1pitwall/pkg/model"
	"f1pitwall/pkg/pubsub"
	"f1pitwall/pkg/session"
)

// Topic is the pubsub topic every assembled snapshot is published on.
const Topic = "snapshot"

// idleTimeout is how long the engine waits without an accepted datagram
// before declaring connectivity lost and republishing.
const idleTimeout = 5 * time.Second

// Service is the reconciliation engine loop: the single writer of all
// session state. Each datagram is decoded, folded into the tracker and
// published as a fresh snapshot before the next one is read.
type Service struct {
	tracker   *session.Tracker
	ps        *pubsub.PubSub[string]
	caster    caster.ChannelCaster[model.Snapshot]
	idle      time.Duration
	receiving bool
}

func NewService(ps *pubsub.PubSub[string]) *Service {
	return &Service{
		tracker: session.NewTracker(),
		ps:      ps,
		caster:  caster.JSONChannelCaster[model.Snapshot]{},
		idle:    idleTimeout,
	}
}

// Run consumes packets until the context is cancelled. The idle timer is
// the only non-packet-triggered update: when it fires the connectivity
// flag is cleared and the last state republished so viewers see the loss.
func (s *Service) Run(ctx context.Context, packets <-chan []byte) error {
	s.publish()
	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-packets:
			changed := s.tracker.Apply(pkt)
			if !s.receiving && changed {
				log.L().Info("receiving telemetry")
			}
			if changed {
				s.receiving = true
				s.publish()
			}
		case <-time.After(s.idle):
			if s.receiving {
				log.L().Warn("no telemetry received, connectivity lost",
					zap.Duration("idle", s.idle))
				s.receiving = false
				s.publish()
			}
		}
	}
}

func (s *Service) publish() {
	payload, err := s.caster.To(s.tracker.Snapshot(s.receiving))
	if err != nil {
		log.L().Error("encoding snapshot", zap.Error(err))
		return
	}
	s.ps.Publish(Topic, payload)
}

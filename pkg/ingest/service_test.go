package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1pitwall/pkg/model"
	"f1pitwall/pkg/pubsub"
	"f1pitwall/pkg/telemetry"
)

func recvSnapshot(t *testing.T, sub <-chan string) model.Snapshot {
	t.Helper()
	select {
	case payload := <-sub:
		var snap model.Snapshot
		require.NoError(t, json.Unmarshal([]byte(payload), &snap))
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
		return model.Snapshot{}
	}
}

func TestServicePublishesOnPacket(t *testing.T) {
	ps := pubsub.NewPubSub[string]()
	sub := ps.Subscribe(Topic)
	svc := NewService(ps)
	svc.idle = time.Hour

	packets := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, packets)

	// the startup snapshot announces the not-yet-receiving state
	first := recvSnapshot(t, sub)
	assert.False(t, first.Receiving)

	h := telemetry.Header{
		PacketFormat: telemetry.PacketFormat,
		SessionUID:   77,
	}
	packets <- telemetry.EncodeSessionPacket(h, telemetry.SessionData{SessionType: 13})

	snap := recvSnapshot(t, sub)
	assert.True(t, snap.Receiving)
	assert.Equal(t, "77", snap.SessionUID)
	assert.Equal(t, model.KindTimeTrial, snap.Session.Kind)

	// malformed datagrams publish nothing
	packets <- []byte{1, 2, 3}
	select {
	case <-sub:
		t.Fatal("short datagram must not publish")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServiceIdleClearsReceiving(t *testing.T) {
	ps := pubsub.NewPubSub[string]()
	sub := ps.Subscribe(Topic)
	svc := NewService(ps)
	svc.idle = 20 * time.Millisecond

	packets := make(chan []byte)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, packets)

	recvSnapshot(t, sub)

	h := telemetry.Header{PacketFormat: telemetry.PacketFormat, SessionUID: 5}
	packets <- telemetry.EncodeSessionPacket(h, telemetry.SessionData{})
	assert.True(t, recvSnapshot(t, sub).Receiving)

	// nothing arrives; the watchdog republishes with receiving cleared
	snap := recvSnapshot(t, sub)
	assert.False(t, snap.Receiving)
	assert.Equal(t, "5", snap.SessionUID)
}

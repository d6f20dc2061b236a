package generator

import (
	"context"
	"math/rand"
	"time"

	"f1pitwall/pkg/telemetry"
)

// The demo grid. Three cars is enough to exercise gaps, ties and the
// player-only ledger without drowning the output.
const (
	demoCars      = 3
	playerIdx     = 0
	tickInterval  = 50 * time.Millisecond
	simStepMS     = 400
	sector1EndMS  = 28000
	sector2EndMS  = 62000
	pitStopOnLap  = 3
	pitDurationMS = 20000
)

var demoNames = [demoCars]string{"You", "A. Rival", "B. Chaser"}

// Generator synthesizes the same binary packets the sim would send, so
// the whole pipeline downstream of the socket runs unmodified and
// viewers cannot tell demo data from a live session.
type Generator struct {
	packets chan []byte
	rng     *rand.Rand

	uid  uint64
	tick int
	cars [demoCars]carSim
}

type carSim struct {
	paceMS     uint32
	progressMS uint32
	lapNum     int
	lastLapMS  uint32
	totalDistM float32
	history    []telemetry.HistoryLap
	pitting    bool
	pitElapsed uint32
	stops      uint8
}

func New() *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	g := &Generator{
		packets: make(chan []byte, 64),
		rng:     rng,
		uid:     rng.Uint64() | 1,
	}
	for i := range g.cars {
		g.cars[i] = carSim{
			paceMS: 90000 + uint32(i)*800,
			lapNum: 1,
		}
	}
	return g
}

func (g *Generator) Packets() <-chan []byte {
	return g.packets
}

// Run emits packets until the context is cancelled.
func (g *Generator) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, pkt := range g.step() {
				select {
				case g.packets <- pkt:
				default:
				}
			}
		}
	}
}

// step advances the simulation one tick and returns the packets for it.
func (g *Generator) step() [][]byte {
	g.tick++
	for i := range g.cars {
		g.advance(&g.cars[i], i)
	}

	out := [][]byte{g.lapDataPacket()}
	// slower streams arrive at their own cadence, like the real feed
	switch g.tick % 20 {
	case 1:
		out = append(out, g.sessionPacket(), g.participantsPacket())
	case 5:
		out = append(out, g.statusPacket(), g.damagePacket())
	case 10:
		out = append(out, g.telemetryPacket())
	case 15:
		for i := range g.cars {
			out = append(out, g.historyPacket(i))
		}
	}
	return out
}

func (g *Generator) advance(c *carSim, idx int) {
	step := uint32(simStepMS)
	if c.pitting {
		c.pitElapsed += step
		if c.pitElapsed >= pitDurationMS {
			c.pitting = false
		}
	} else if idx == playerIdx && c.lapNum == pitStopOnLap && c.progressMS > sector2EndMS && c.stops == 0 {
		c.pitting = true
		c.pitElapsed = 0
		c.stops++
	}

	c.progressMS += step
	c.totalDistM += float32(step) * 0.05

	target := c.paceMS + uint32(g.rng.Intn(2000))
	if c.pitting {
		target += pitDurationMS
	}
	if c.progressMS >= target {
		c.lastLapMS = c.progressMS
		s1 := uint32(sector1EndMS) + uint32(g.rng.Intn(500))
		s2 := uint32(sector2EndMS-sector1EndMS) + uint32(g.rng.Intn(500))
		c.history = append(c.history, telemetry.HistoryLap{
			LapNumber: c.lapNum,
			LapTime:   telemetry.Time(c.lastLapMS),
			Sector1:   telemetry.Time(s1),
			Sector2:   telemetry.Time(s2),
			Sector3:   telemetry.Time(c.lastLapMS - s1 - s2),
			Valid:     true,
		})
		c.lapNum++
		c.progressMS = 0
	}
}

func (g *Generator) header(id uint8) telemetry.Header {
	return telemetry.Header{
		PacketFormat:   telemetry.PacketFormat,
		GameYear:       23,
		PacketID:       id,
		SessionUID:     g.uid,
		SessionTime:    float32(g.tick) * float32(simStepMS) / 1000,
		FrameID:        uint32(g.tick),
		OverallFrameID: uint32(g.tick),
		PlayerCarIndex: playerIdx,
	}
}

func (g *Generator) lapDataPacket() []byte {
	laps := make([]telemetry.LapData, demoCars)
	order := g.positions()
	for i := range g.cars {
		c := &g.cars[i]
		l := telemetry.LapData{
			CurrentLapTime: telemetry.TimeWhen(c.progressMS, c.progressMS > 0),
			LastLapTime:    telemetry.TimeWhen(c.lastLapMS, c.lastLapMS > 0),
			CurrentLapNum:  uint8(c.lapNum),
			CarPosition:    order[i],
			NumPitStops:    c.stops,
			TotalDistance:  c.totalDistM,
			DriverStatus:   1,
			ResultStatus:   telemetry.ResultStatusActive,
		}
		if c.progressMS > sector1EndMS {
			l.Sector1 = telemetry.Time(sector1EndMS)
			l.Sector = 1
		}
		if c.progressMS > sector2EndMS {
			l.Sector2 = telemetry.Time(sector2EndMS - sector1EndMS)
			l.Sector = 2
		}
		if c.pitting {
			l.PitStatus = 2
			l.PitLaneTimeInLane = telemetry.Time(c.pitElapsed)
		}
		laps[i] = l
	}
	return telemetry.EncodeLapDataPacket(g.header(telemetry.PacketIDLapData), laps)
}

// positions ranks cars by total distance covered.
func (g *Generator) positions() [demoCars]uint8 {
	var order [demoCars]uint8
	for i := range g.cars {
		pos := uint8(1)
		for j := range g.cars {
			if g.cars[j].totalDistM > g.cars[i].totalDistM {
				pos++
			}
		}
		order[i] = pos
	}
	return order
}

func (g *Generator) sessionPacket() []byte {
	return telemetry.EncodeSessionPacket(g.header(telemetry.PacketIDSession), telemetry.SessionData{
		Weather:          1,
		TrackTempC:       34,
		AirTempC:         26,
		TotalLaps:        10,
		TrackLengthM:     5412,
		SessionType:      10,
		TrackID:          4,
		TimeLeftSec:      3000,
		DurationSec:      3600,
		PitSpeedLimitKPH: 80,
	})
}

func (g *Generator) participantsPacket() []byte {
	cars := make([]telemetry.Participant, demoCars)
	for i := range cars {
		cars[i] = telemetry.Participant{
			Name:       demoNames[i],
			TeamID:     uint8(i),
			RaceNumber: uint8(i + 1),
			LiveryRed:  uint8(80 * i),
			LiveryBlue: uint8(255 - 80*i),
		}
	}
	return telemetry.EncodeParticipantsPacket(
		g.header(telemetry.PacketIDParticipants), demoCars, cars)
}

func (g *Generator) statusPacket() []byte {
	cars := make([]telemetry.CarStatus, demoCars)
	for i := range cars {
		cars[i] = telemetry.CarStatus{
			FuelInTank:         40 - float32(g.cars[i].lapNum),
			FuelCapacity:       110,
			MaxRPM:             12500,
			ActualTyreCompound: 16,
			VisualTyreCompound: 16,
			TyresAgeLaps:       uint8(g.cars[i].lapNum - 1),
		}
	}
	return telemetry.EncodeCarStatusPacket(g.header(telemetry.PacketIDCarStatus), cars)
}

func (g *Generator) telemetryPacket() []byte {
	cars := make([]telemetry.CarTelemetry, demoCars)
	for i := range cars {
		speed := uint16(250 + g.rng.Intn(70))
		if g.cars[i].pitting {
			speed = 78
		}
		cars[i] = telemetry.CarTelemetry{
			SpeedKPH:    speed,
			Throttle:    1,
			Gear:        7,
			EngineRPM:   11000 + uint16(g.rng.Intn(1000)),
			EngineTempC: 108,
			BrakeTempC:  [4]uint16{420, 430, 400, 405},
		}
	}
	return telemetry.EncodeCarTelemetryPacket(g.header(telemetry.PacketIDCarTelemetry), cars)
}

func (g *Generator) damagePacket() []byte {
	cars := make([]telemetry.CarDamage, demoCars)
	for i := range cars {
		wear := float32(g.cars[i].lapNum) * 1.5
		cars[i] = telemetry.CarDamage{
			TyreWearPercent: [4]float32{wear, wear, wear * 0.9, wear * 0.9},
		}
	}
	return telemetry.EncodeCarDamagePacket(g.header(telemetry.PacketIDCarDamage), cars)
}

func (g *Generator) historyPacket(idx int) []byte {
	c := &g.cars[idx]
	h := g.header(telemetry.PacketIDSessionHistory)
	h.SecondaryIndex = uint8(idx)
	return telemetry.EncodeSessionHistoryPacket(h, telemetry.SessionHistory{
		CarIndex: idx,
		NumLaps:  len(c.history),
		Laps:     c.history,
	})
}

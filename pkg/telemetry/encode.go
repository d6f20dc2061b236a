package telemetry

import (
	"encoding/binary"
	"math"
)

// Encoders for every handled packet kind. They emit the exact layouts the
// decoders read and are used by the demo generator and by tests; a decode
// of an encoded packet recovers every present field.

func putU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func putU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func putTwoPart(b []byte, off int, t TimeMS) {
	if !t.IsSet() {
		putU16(b, off, sentinelMS16)
		b[off+2] = sentinelMin8
		return
	}
	ms := t.MustGet()
	putU16(b, off, uint16(ms%60000))
	b[off+2] = uint8(ms / 60000)
}

func putGap(b []byte, off int, t TimeMS) {
	if !t.IsSet() {
		putU16(b, off, 0)
		return
	}
	putU16(b, off, uint16(t.MustGet()))
}

func putBool(b []byte, off int, v bool) {
	if v {
		b[off] = 1
	} else {
		b[off] = 0
	}
}

func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderLen)
	putU16(b, 0, h.PacketFormat)
	b[2] = h.GameYear
	b[3] = h.MajorVersion
	b[4] = h.MinorVersion
	b[5] = h.PacketVersion
	b[6] = h.PacketID
	putU64(b, 7, h.SessionUID)
	putF32(b, 15, h.SessionTime)
	putU32(b, 19, h.FrameID)
	putU32(b, 23, h.OverallFrameID)
	b[27] = h.PlayerCarIndex
	b[28] = h.SecondaryIndex
	return b
}

func EncodeSessionPacket(h Header, s SessionData) []byte {
	h.PacketID = PacketIDSession
	b := append(EncodeHeader(h), make([]byte, SessionLen)...)
	p := b[HeaderLen:]
	p[0] = s.Weather
	p[1] = uint8(s.TrackTempC)
	p[2] = uint8(s.AirTempC)
	p[3] = s.TotalLaps
	putU16(p, 4, s.TrackLengthM)
	p[6] = s.SessionType
	p[7] = uint8(s.TrackID)
	putU16(p, 8, s.TimeLeftSec)
	putU16(p, 10, s.DurationSec)
	p[12] = s.PitSpeedLimitKPH
	return b
}

func EncodeLapDataPacket(h Header, cars []LapData) []byte {
	h.PacketID = PacketIDLapData
	b := append(EncodeHeader(h), make([]byte, len(cars)*LapDataLen)...)
	for i := range cars {
		encodeLapData(b[HeaderLen+i*LapDataLen:], &cars[i])
	}
	return b
}

func encodeLapData(p []byte, l *LapData) {
	putU32(p, 0, l.LastLapTime.GetOrZero())
	putU32(p, 4, l.CurrentLapTime.GetOrZero())
	putTwoPart(p, 8, l.Sector1)
	putTwoPart(p, 11, l.Sector2)
	putGap(p, 14, l.GapToAhead)
	putGap(p, 16, l.GapToLeader)
	putF32(p, 18, l.LapDistance)
	putF32(p, 22, l.TotalDistance)
	p[26] = l.CarPosition
	p[27] = l.CurrentLapNum
	p[28] = l.PitStatus
	p[29] = l.NumPitStops
	p[30] = l.Sector
	putBool(p, 31, l.CurrentLapInvalid)
	p[32] = l.PenaltiesSec
	p[33] = l.GridPosition
	p[34] = l.DriverStatus
	p[35] = l.ResultStatus
	putBool(p, 36, l.PitLaneTimerActive)
	putU16(p, 37, uint16(l.PitLaneTimeInLane.GetOrZero()))
	putU16(p, 39, uint16(l.PitStopTimer.GetOrZero()))
	p[41] = 0
}

func EncodeParticipantsPacket(h Header, numActive int, cars []Participant) []byte {
	h.PacketID = PacketIDParticipants
	b := append(EncodeHeader(h),
		make([]byte, ParticipantsPrefix+len(cars)*ParticipantLen)...)
	b[HeaderLen] = uint8(numActive)
	for i := range cars {
		encodeParticipant(b[HeaderLen+ParticipantsPrefix+i*ParticipantLen:], &cars[i])
	}
	return b
}

func encodeParticipant(p []byte, c *Participant) {
	putBool(p, 0, c.AIControlled)
	p[1] = c.DriverID
	p[2] = c.NetworkID
	p[3] = c.TeamID
	putBool(p, 4, c.MyTeam)
	p[5] = c.RaceNumber
	p[6] = c.Nationality
	name := []byte(c.Name)
	if len(name) > 31 {
		name = name[:31]
	}
	copy(p[7:39], name)
	p[39] = c.LiveryRed
	p[40] = c.LiveryGreen
	p[41] = c.LiveryBlue
}

func EncodeCarTelemetryPacket(h Header, cars []CarTelemetry) []byte {
	h.PacketID = PacketIDCarTelemetry
	b := append(EncodeHeader(h), make([]byte, len(cars)*TelemetryLen)...)
	for i := range cars {
		encodeCarTelemetry(b[HeaderLen+i*TelemetryLen:], &cars[i])
	}
	return b
}

func encodeCarTelemetry(p []byte, t *CarTelemetry) {
	putU16(p, 0, t.SpeedKPH)
	putF32(p, 2, t.Throttle)
	putF32(p, 6, t.Steer)
	putF32(p, 10, t.Brake)
	p[14] = t.Clutch
	p[15] = uint8(t.Gear)
	putU16(p, 16, t.EngineRPM)
	putBool(p, 18, t.DRSOpen)
	p[19] = t.RevLightsPercent
	for i := 0; i < 4; i++ {
		putU16(p, 20+2*i, t.BrakeTempC[i])
		p[28+i] = t.TyreSurfaceTempC[i]
		p[32+i] = t.TyreInnerTempC[i]
		putF32(p, 38+4*i, t.TyrePressurePSI[i])
		p[54+i] = t.SurfaceType[i]
	}
	putU16(p, 36, t.EngineTempC)
}

func EncodeCarStatusPacket(h Header, cars []CarStatus) []byte {
	h.PacketID = PacketIDCarStatus
	b := append(EncodeHeader(h), make([]byte, len(cars)*StatusLen)...)
	for i := range cars {
		encodeCarStatus(b[HeaderLen+i*StatusLen:], &cars[i])
	}
	return b
}

func encodeCarStatus(p []byte, s *CarStatus) {
	p[0] = s.TractionControl
	putBool(p, 1, s.AntiLockBrakes)
	p[2] = s.FuelMix
	p[3] = s.FrontBrakeBias
	putBool(p, 4, s.PitLimiterOn)
	putF32(p, 5, s.FuelInTank)
	putF32(p, 9, s.FuelCapacity)
	putF32(p, 13, s.FuelRemainingLaps)
	putU16(p, 17, s.MaxRPM)
	putU16(p, 19, s.IdleRPM)
	p[21] = s.MaxGears
	putBool(p, 22, s.DRSAllowed)
	putU16(p, 23, s.DRSActivationDistM)
	p[25] = s.ActualTyreCompound
	p[26] = s.VisualTyreCompound
	p[27] = s.TyresAgeLaps
	p[28] = uint8(s.VehicleFIAFlags)
	putF32(p, 29, s.ERSStoreEnergy)
	p[33] = s.ERSDeployMode
}

func EncodeCarDamagePacket(h Header, cars []CarDamage) []byte {
	h.PacketID = PacketIDCarDamage
	b := append(EncodeHeader(h), make([]byte, len(cars)*DamageLen)...)
	for i := range cars {
		encodeCarDamage(b[HeaderLen+i*DamageLen:], &cars[i])
	}
	return b
}

func encodeCarDamage(p []byte, d *CarDamage) {
	for i := 0; i < 4; i++ {
		putF32(p, 4*i, d.TyreWearPercent[i])
		p[16+i] = d.TyreDamage[i]
		p[20+i] = d.BrakeDamage[i]
	}
	p[24] = d.FrontLeftWing
	p[25] = d.FrontRightWing
	p[26] = d.RearWing
	p[27] = d.Floor
	p[28] = d.Diffuser
	p[29] = d.Sidepod
	putBool(p, 30, d.DRSFault)
	p[31] = d.GearBoxDamage
	p[32] = d.EngineDamage
}

func EncodeSessionHistoryPacket(h Header, hist SessionHistory) []byte {
	h.PacketID = PacketIDSessionHistory
	b := append(EncodeHeader(h),
		make([]byte, HistoryPrefix+len(hist.Laps)*HistoryLapLen)...)
	p := b[HeaderLen:]
	p[0] = uint8(hist.CarIndex)
	p[1] = uint8(hist.NumLaps)
	p[2] = 0
	p[3] = hist.BestLapLapNum
	p[4] = hist.BestS1LapNum
	p[5] = hist.BestS2LapNum
	p[6] = hist.BestS3LapNum
	for i := range hist.Laps {
		lb := p[HistoryPrefix+i*HistoryLapLen:]
		putU32(lb, 0, hist.Laps[i].LapTime.GetOrZero())
		putTwoPart(lb, 4, hist.Laps[i].Sector1)
		putTwoPart(lb, 7, hist.Laps[i].Sector2)
		putTwoPart(lb, 10, hist.Laps[i].Sector3)
		if hist.Laps[i].Valid {
			lb[13] = historyFlagLapValid
		}
	}
	return b
}

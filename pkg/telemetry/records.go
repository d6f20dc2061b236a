package telemetry

import (
	"bytes"
)

// SessionData is the session-metadata record (packet kind 1).
type SessionData struct {
	Weather          uint8  `json:"weather"`
	TrackTempC       int8   `json:"trackTemp"`
	AirTempC         int8   `json:"airTemp"`
	TotalLaps        uint8  `json:"totalLaps"`
	TrackLengthM     uint16 `json:"trackLength"`
	SessionType      uint8  `json:"sessionType"`
	TrackID          int8   `json:"trackId"`
	TimeLeftSec      uint16 `json:"timeLeftSec"`
	DurationSec      uint16 `json:"durationSec"`
	PitSpeedLimitKPH uint8  `json:"pitSpeedLimit"`
}

func DecodeSession(buf []byte) (s SessionData, ok bool) {
	if len(buf) < HeaderLen+SessionLen {
		return SessionData{}, false
	}
	b := buf[HeaderLen:]
	s.Weather = b[0]
	s.TrackTempC = int8(b[1])
	s.AirTempC = int8(b[2])
	s.TotalLaps = b[3]
	s.TrackLengthM = u16(b, 4)
	s.SessionType = b[6]
	s.TrackID = int8(b[7])
	s.TimeLeftSec = u16(b, 8)
	s.DurationSec = u16(b, 10)
	s.PitSpeedLimitKPH = b[12]
	return s, true
}

// LapData is the per-tick lap record for one car slot (packet kind 2).
type LapData struct {
	LastLapTime        TimeMS
	CurrentLapTime     TimeMS
	Sector1            TimeMS
	Sector2            TimeMS
	GapToAhead         TimeMS
	GapToLeader        TimeMS
	LapDistance        float32
	TotalDistance      float32
	CarPosition        uint8
	CurrentLapNum      uint8
	PitStatus          uint8
	NumPitStops        uint8
	Sector             uint8
	CurrentLapInvalid  bool
	PenaltiesSec       uint8
	GridPosition       uint8
	DriverStatus       uint8
	ResultStatus       uint8
	PitLaneTimerActive bool
	PitLaneTimeInLane  TimeMS
	PitStopTimer       TimeMS
}

// Result status codes carried in LapData.ResultStatus.
const (
	ResultStatusInvalid       = 0
	ResultStatusInactive      = 1
	ResultStatusActive        = 2
	ResultStatusFinished      = 3
	ResultStatusDNF           = 4
	ResultStatusDisqualified  = 5
	ResultStatusNotClassified = 6
	ResultStatusRetired       = 7
)

// DecodeLapData reads the lap record for the given car slot. ok is false
// when the packet does not carry that many slots.
func DecodeLapData(buf []byte, slot int) (l LapData, ok bool) {
	off := HeaderLen + slot*LapDataLen
	if slot < 0 || len(buf) < off+LapDataLen {
		return LapData{}, false
	}
	b := buf[off:]
	l.LastLapTime = TimeWhen(u32(b, 0), u32(b, 0) > 0)
	l.CurrentLapTime = TimeWhen(u32(b, 4), u32(b, 4) > 0)
	l.Sector1 = twoPartTime(u16(b, 8), b[10])
	l.Sector2 = twoPartTime(u16(b, 11), b[13])
	l.GapToAhead = gapTime(u16(b, 14))
	l.GapToLeader = gapTime(u16(b, 16))
	l.LapDistance = f32(b, 18)
	l.TotalDistance = f32(b, 22)
	l.CarPosition = b[26]
	l.CurrentLapNum = b[27]
	l.PitStatus = b[28]
	l.NumPitStops = b[29]
	l.Sector = b[30]
	l.CurrentLapInvalid = b[31] != 0
	l.PenaltiesSec = b[32]
	l.GridPosition = b[33]
	l.DriverStatus = b[34]
	l.ResultStatus = b[35]
	l.PitLaneTimerActive = b[36] != 0
	l.PitLaneTimeInLane = TimeWhen(uint32(u16(b, 37)), u16(b, 37) > 0)
	l.PitStopTimer = TimeWhen(uint32(u16(b, 39)), u16(b, 39) > 0)
	return l, true
}

func gapTime(v uint16) TimeMS {
	if v == 0 || v == sentinelMS16 {
		return NoTime()
	}
	return Time(uint32(v))
}

// Participant is the per-car identity record (packet kind 4).
type Participant struct {
	AIControlled bool
	DriverID     uint8
	NetworkID    uint8
	TeamID       uint8
	MyTeam       bool
	RaceNumber   uint8
	Nationality  uint8
	Name         string
	LiveryRed    uint8
	LiveryGreen  uint8
	LiveryBlue   uint8
}

// DecodeNumActiveCars reads the active-car count prefix of a participants
// packet.
func DecodeNumActiveCars(buf []byte) (int, bool) {
	if len(buf) < HeaderLen+ParticipantsPrefix {
		return 0, false
	}
	return int(buf[HeaderLen]), true
}

func DecodeParticipant(buf []byte, slot int) (p Participant, ok bool) {
	off := HeaderLen + ParticipantsPrefix + slot*ParticipantLen
	if slot < 0 || len(buf) < off+ParticipantLen {
		return Participant{}, false
	}
	b := buf[off:]
	p.AIControlled = b[0] != 0
	p.DriverID = b[1]
	p.NetworkID = b[2]
	p.TeamID = b[3]
	p.MyTeam = b[4] != 0
	p.RaceNumber = b[5]
	p.Nationality = b[6]
	name := b[7:39]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	p.Name = string(name)
	p.LiveryRed = b[39]
	p.LiveryGreen = b[40]
	p.LiveryBlue = b[41]
	return p, true
}

// CarTelemetry is the per-car live car feed (packet kind 6).
type CarTelemetry struct {
	SpeedKPH         uint16     `json:"speed"`
	Throttle         float32    `json:"throttle"`
	Steer            float32    `json:"steer"`
	Brake            float32    `json:"brake"`
	Clutch           uint8      `json:"clutch"`
	Gear             int8       `json:"gear"`
	EngineRPM        uint16     `json:"engineRPM"`
	DRSOpen          bool       `json:"drsOpen"`
	RevLightsPercent uint8      `json:"revLightsPercent"`
	BrakeTempC       [4]uint16  `json:"brakeTemp"`
	TyreSurfaceTempC [4]uint8   `json:"tyreSurfaceTemp"`
	TyreInnerTempC   [4]uint8   `json:"tyreInnerTemp"`
	EngineTempC      uint16     `json:"engineTemp"`
	TyrePressurePSI  [4]float32 `json:"tyrePressure"`
	SurfaceType      [4]uint8   `json:"surfaceType"`
}

func DecodeCarTelemetry(buf []byte, slot int) (t CarTelemetry, ok bool) {
	off := HeaderLen + slot*TelemetryLen
	if slot < 0 || len(buf) < off+TelemetryLen {
		return CarTelemetry{}, false
	}
	b := buf[off:]
	t.SpeedKPH = u16(b, 0)
	t.Throttle = f32(b, 2)
	t.Steer = f32(b, 6)
	t.Brake = f32(b, 10)
	t.Clutch = b[14]
	t.Gear = int8(b[15])
	t.EngineRPM = u16(b, 16)
	t.DRSOpen = b[18] != 0
	t.RevLightsPercent = b[19]
	for i := 0; i < 4; i++ {
		t.BrakeTempC[i] = u16(b, 20+2*i)
		t.TyreSurfaceTempC[i] = b[28+i]
		t.TyreInnerTempC[i] = b[32+i]
		t.TyrePressurePSI[i] = f32(b, 38+4*i)
		t.SurfaceType[i] = b[54+i]
	}
	t.EngineTempC = u16(b, 36)
	return t, true
}

// CarStatus is the per-car status record (packet kind 7).
type CarStatus struct {
	TractionControl    uint8   `json:"tractionControl"`
	AntiLockBrakes     bool    `json:"antiLockBrakes"`
	FuelMix            uint8   `json:"fuelMix"`
	FrontBrakeBias     uint8   `json:"frontBrakeBias"`
	PitLimiterOn       bool    `json:"pitLimiterOn"`
	FuelInTank         float32 `json:"fuelInTank"`
	FuelCapacity       float32 `json:"fuelCapacity"`
	FuelRemainingLaps  float32 `json:"fuelRemainingLaps"`
	MaxRPM             uint16  `json:"maxRPM"`
	IdleRPM            uint16  `json:"idleRPM"`
	MaxGears           uint8   `json:"maxGears"`
	DRSAllowed         bool    `json:"drsAllowed"`
	DRSActivationDistM uint16  `json:"drsActivationDist"`
	ActualTyreCompound uint8   `json:"actualTyreCompound"`
	VisualTyreCompound uint8   `json:"visualTyreCompound"`
	TyresAgeLaps       uint8   `json:"tyresAgeLaps"`
	VehicleFIAFlags    int8    `json:"vehicleFIAFlags"`
	ERSStoreEnergy     float32 `json:"ersStoreEnergy"`
	ERSDeployMode      uint8   `json:"ersDeployMode"`
}

func DecodeCarStatus(buf []byte, slot int) (s CarStatus, ok bool) {
	off := HeaderLen + slot*StatusLen
	if slot < 0 || len(buf) < off+StatusLen {
		return CarStatus{}, false
	}
	b := buf[off:]
	s.TractionControl = b[0]
	s.AntiLockBrakes = b[1] != 0
	s.FuelMix = b[2]
	s.FrontBrakeBias = b[3]
	s.PitLimiterOn = b[4] != 0
	s.FuelInTank = f32(b, 5)
	s.FuelCapacity = f32(b, 9)
	s.FuelRemainingLaps = f32(b, 13)
	s.MaxRPM = u16(b, 17)
	s.IdleRPM = u16(b, 19)
	s.MaxGears = b[21]
	s.DRSAllowed = b[22] != 0
	s.DRSActivationDistM = u16(b, 23)
	s.ActualTyreCompound = b[25]
	s.VisualTyreCompound = b[26]
	s.TyresAgeLaps = b[27]
	s.VehicleFIAFlags = int8(b[28])
	s.ERSStoreEnergy = f32(b, 29)
	s.ERSDeployMode = b[33]
	return s, true
}

// CarDamage is the per-car damage record (packet kind 10).
type CarDamage struct {
	TyreWearPercent  [4]float32 `json:"tyreWear"`
	TyreDamage       [4]uint8   `json:"tyreDamage"`
	BrakeDamage      [4]uint8   `json:"brakeDamage"`
	FrontLeftWing    uint8      `json:"frontLeftWing"`
	FrontRightWing   uint8      `json:"frontRightWing"`
	RearWing         uint8      `json:"rearWing"`
	Floor            uint8      `json:"floor"`
	Diffuser         uint8      `json:"diffuser"`
	Sidepod          uint8      `json:"sidepod"`
	DRSFault         bool       `json:"drsFault"`
	GearBoxDamage    uint8      `json:"gearBoxDamage"`
	EngineDamage     uint8      `json:"engineDamage"`
}

func DecodeCarDamage(buf []byte, slot int) (d CarDamage, ok bool) {
	off := HeaderLen + slot*DamageLen
	if slot < 0 || len(buf) < off+DamageLen {
		return CarDamage{}, false
	}
	b := buf[off:]
	for i := 0; i < 4; i++ {
		d.TyreWearPercent[i] = f32(b, 4*i)
		d.TyreDamage[i] = b[16+i]
		d.BrakeDamage[i] = b[20+i]
	}
	d.FrontLeftWing = b[24]
	d.FrontRightWing = b[25]
	d.RearWing = b[26]
	d.Floor = b[27]
	d.Diffuser = b[28]
	d.Sidepod = b[29]
	d.DRSFault = b[30] != 0
	d.GearBoxDamage = b[31]
	d.EngineDamage = b[32]
	return d, true
}

// SessionHistory is the authoritative per-lap history for one car
// (packet kind 11). It arrives after the live feed and supersedes it.
type SessionHistory struct {
	CarIndex      int
	NumLaps       int
	BestLapLapNum uint8
	BestS1LapNum  uint8
	BestS2LapNum  uint8
	BestS3LapNum  uint8
	Laps          []HistoryLap
}

// HistoryLap is a single authoritative lap entry.
type HistoryLap struct {
	LapNumber int
	LapTime   TimeMS
	Sector1   TimeMS
	Sector2   TimeMS
	Sector3   TimeMS
	Valid     bool
}

// Lap validity flag bits in a history lap entry.
const (
	historyFlagLapValid = 0x01
)

// DecodeSessionHistory reads as many lap entries as both the declared
// count and the buffer allow; a packet shorter than its declared lap count
// yields the prefix of laps that fit.
func DecodeSessionHistory(buf []byte) (h SessionHistory, ok bool) {
	if len(buf) < HeaderLen+HistoryPrefix {
		return SessionHistory{}, false
	}
	b := buf[HeaderLen:]
	h.CarIndex = int(b[0])
	h.NumLaps = int(b[1])
	h.BestLapLapNum = b[3]
	h.BestS1LapNum = b[4]
	h.BestS2LapNum = b[5]
	h.BestS3LapNum = b[6]

	n := h.NumLaps
	if n > MaxHistoryLaps {
		n = MaxHistoryLaps
	}
	avail := (len(b) - HistoryPrefix) / HistoryLapLen
	if n > avail {
		n = avail
	}
	h.Laps = make([]HistoryLap, 0, n)
	for i := 0; i < n; i++ {
		lb := b[HistoryPrefix+i*HistoryLapLen:]
		lap := HistoryLap{
			LapNumber: i + 1,
			LapTime:   TimeWhen(u32(lb, 0), u32(lb, 0) > 0),
			Sector1:   twoPartTime(u16(lb, 4), lb[6]),
			Sector2:   twoPartTime(u16(lb, 7), lb[9]),
			Sector3:   twoPartTime(u16(lb, 10), lb[12]),
			Valid:     lb[13]&historyFlagLapValid != 0,
		}
		h.Laps = append(h.Laps, lap)
	}
	return h, true
}

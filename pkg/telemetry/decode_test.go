package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeCmp lets cmp look at TimeMS values without reaching into the
// option type's internals.
var timeCmp = cmp.Comparer(timeEqual)

func timeEqual(a, b TimeMS) bool {
	if a.IsSet() != b.IsSet() {
		return false
	}
	return !a.IsSet() || a.MustGet() == b.MustGet()
}

func testHeader(id uint8) Header {
	return Header{
		PacketFormat:   PacketFormat,
		GameYear:       23,
		PacketID:       id,
		SessionUID:     0xDEADBEEF,
		SessionTime:    123.5,
		FrameID:        42,
		PlayerCarIndex: 3,
	}
}

func TestDecodeHeader(t *testing.T) {
	h := testHeader(PacketIDLapData)
	got, ok := DecodeHeader(EncodeHeader(h))
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(h, got))
}

func TestDecodeHeaderShort(t *testing.T) {
	_, ok := DecodeHeader(make([]byte, HeaderLen-1))
	assert.False(t, ok)
	_, ok = DecodeHeader(nil)
	assert.False(t, ok)
}

func TestTwoPartTime(t *testing.T) {
	testcases := []struct {
		name    string
		ms      uint16
		minutes uint8
		want    TimeMS
	}{
		{name: "plain", ms: 31500, minutes: 0, want: Time(31500)},
		{name: "with minutes", ms: 500, minutes: 1, want: Time(60500)},
		{name: "ms sentinel", ms: 0xFFFF, minutes: 0, want: NoTime()},
		{name: "minutes sentinel", ms: 100, minutes: 0xFF, want: NoTime()},
		{name: "both zero", ms: 0, minutes: 0, want: NoTime()},
		{name: "zero ms nonzero minutes", ms: 0, minutes: 2, want: Time(120000)},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, timeEqual(tc.want, twoPartTime(tc.ms, tc.minutes)))
		})
	}
}

func TestDeriveThirdSector(t *testing.T) {
	assert.Equal(t, Time(30000), DeriveThirdSector(Time(90000), Time(28000), Time(32000)))
	assert.Equal(t, NoTime(), DeriveThirdSector(NoTime(), Time(28000), Time(32000)))
	assert.Equal(t, NoTime(), DeriveThirdSector(Time(90000), NoTime(), Time(32000)))
	// inputs disagreeing (negative remainder) must not produce a value
	assert.Equal(t, NoTime(), DeriveThirdSector(Time(50000), Time(28000), Time(32000)))
}

func TestDecodeSession(t *testing.T) {
	want := SessionData{
		Weather:          2,
		TrackTempC:       31,
		AirTempC:         -4,
		TotalLaps:        52,
		TrackLengthM:     5891,
		SessionType:      10,
		TrackID:          7,
		TimeLeftSec:      3400,
		DurationSec:      3600,
		PitSpeedLimitKPH: 80,
	}
	got, ok := DecodeSession(EncodeSessionPacket(testHeader(PacketIDSession), want))
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got, timeCmp))

	_, ok = DecodeSession(make([]byte, HeaderLen+SessionLen-1))
	assert.False(t, ok)
}

func TestDecodeLapDataSlots(t *testing.T) {
	cars := []LapData{
		{
			LastLapTime:    Time(91234),
			CurrentLapTime: Time(15000),
			Sector1:        Time(28100),
			Sector2:        Time(61500),
			GapToAhead:     Time(850),
			GapToLeader:    Time(2340),
			LapDistance:    1204.5,
			TotalDistance:  18100.25,
			CarPosition:    4,
			CurrentLapNum:  9,
			PitStatus:      1,
			NumPitStops:    2,
			Sector:         1,
			PenaltiesSec:   5,
			GridPosition:   6,
			DriverStatus:   1,
			ResultStatus:   ResultStatusActive,
		},
		{
			// everything unavailable
			LastLapTime:    NoTime(),
			CurrentLapTime: NoTime(),
			Sector1:        NoTime(),
			Sector2:        NoTime(),
			GapToAhead:     NoTime(),
			GapToLeader:    NoTime(),
			ResultStatus:   ResultStatusInactive,
		},
	}
	buf := EncodeLapDataPacket(testHeader(PacketIDLapData), cars)

	for slot, want := range cars {
		got, ok := DecodeLapData(buf, slot)
		require.True(t, ok, "slot %d", slot)
		assert.Empty(t, cmp.Diff(want, got, timeCmp), "slot %d", slot)
	}

	_, ok := DecodeLapData(buf, len(cars))
	assert.False(t, ok)
	_, ok = DecodeLapData(buf, -1)
	assert.False(t, ok)
}

func TestDecodeParticipants(t *testing.T) {
	cars := []Participant{
		{Name: "VERSTAPPEN", TeamID: 1, RaceNumber: 1, DriverID: 9, AIControlled: true,
			LiveryRed: 30, LiveryGreen: 60, LiveryBlue: 200},
		{Name: "Player", TeamID: 4, RaceNumber: 44, NetworkID: 2, MyTeam: true},
	}
	buf := EncodeParticipantsPacket(testHeader(PacketIDParticipants), 20, cars)

	n, ok := DecodeNumActiveCars(buf)
	require.True(t, ok)
	assert.Equal(t, 20, n)

	for slot, want := range cars {
		got, ok := DecodeParticipant(buf, slot)
		require.True(t, ok, "slot %d", slot)
		assert.Empty(t, cmp.Diff(want, got, timeCmp), "slot %d", slot)
	}

	// packet with fewer slots than the car grid still decodes the ones present
	_, ok = DecodeParticipant(buf, len(cars))
	assert.False(t, ok)
}

func TestDecodeCarTelemetry(t *testing.T) {
	want := CarTelemetry{
		SpeedKPH:         287,
		Throttle:         0.98,
		Steer:            -0.12,
		Brake:            0,
		Gear:             7,
		EngineRPM:        11200,
		DRSOpen:          true,
		RevLightsPercent: 85,
		BrakeTempC:       [4]uint16{450, 460, 430, 435},
		TyreSurfaceTempC: [4]uint8{95, 96, 92, 93},
		TyreInnerTempC:   [4]uint8{100, 101, 98, 99},
		EngineTempC:      110,
		TyrePressurePSI:  [4]float32{21.5, 21.6, 22.8, 22.9},
		SurfaceType:      [4]uint8{0, 0, 1, 0},
	}
	buf := EncodeCarTelemetryPacket(testHeader(PacketIDCarTelemetry), []CarTelemetry{want})
	got, ok := DecodeCarTelemetry(buf, 0)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got, timeCmp))

	_, ok = DecodeCarTelemetry(buf, 1)
	assert.False(t, ok)
}

func TestDecodeCarStatus(t *testing.T) {
	want := CarStatus{
		FuelMix:            2,
		FrontBrakeBias:     56,
		FuelInTank:         34.2,
		FuelCapacity:       110,
		FuelRemainingLaps:  12.4,
		MaxRPM:             12500,
		IdleRPM:            3500,
		MaxGears:           8,
		DRSAllowed:         true,
		DRSActivationDistM: 320,
		ActualTyreCompound: 16,
		VisualTyreCompound: 16,
		TyresAgeLaps:       8,
		VehicleFIAFlags:    -1,
		ERSStoreEnergy:     3.2e6,
		ERSDeployMode:      1,
	}
	buf := EncodeCarStatusPacket(testHeader(PacketIDCarStatus), []CarStatus{want})
	got, ok := DecodeCarStatus(buf, 0)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got, timeCmp))
}

func TestDecodeCarDamage(t *testing.T) {
	want := CarDamage{
		TyreWearPercent: [4]float32{12.5, 13.1, 9.8, 10.2},
		TyreDamage:      [4]uint8{5, 5, 3, 3},
		BrakeDamage:     [4]uint8{1, 1, 0, 0},
		FrontLeftWing:   15,
		RearWing:        0,
		Floor:           4,
		DRSFault:        true,
		GearBoxDamage:   2,
		EngineDamage:    7,
	}
	buf := EncodeCarDamagePacket(testHeader(PacketIDCarDamage), []CarDamage{want})
	got, ok := DecodeCarDamage(buf, 0)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got, timeCmp))
}

func TestDecodeSessionHistory(t *testing.T) {
	want := SessionHistory{
		CarIndex:      3,
		NumLaps:       2,
		BestLapLapNum: 2,
		BestS1LapNum:  1,
		BestS2LapNum:  2,
		BestS3LapNum:  2,
		Laps: []HistoryLap{
			{LapNumber: 1, LapTime: Time(92500), Sector1: Time(28000),
				Sector2: Time(33500), Sector3: Time(31000), Valid: true},
			{LapNumber: 2, LapTime: NoTime(), Sector1: Time(27800),
				Sector2: NoTime(), Sector3: NoTime(), Valid: false},
		},
	}
	buf := EncodeSessionHistoryPacket(testHeader(PacketIDSessionHistory), want)
	got, ok := DecodeSessionHistory(buf)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(want, got, timeCmp))
}

func TestDecodeSessionHistoryTruncated(t *testing.T) {
	full := SessionHistory{
		CarIndex: 1,
		NumLaps:  3,
		Laps: []HistoryLap{
			{LapNumber: 1, LapTime: Time(90000)},
			{LapNumber: 2, LapTime: Time(89000)},
			{LapNumber: 3, LapTime: Time(88000)},
		},
	}
	buf := EncodeSessionHistoryPacket(testHeader(PacketIDSessionHistory), full)

	// drop the last lap record; the declared count still says three
	short := buf[:len(buf)-HistoryLapLen]
	got, ok := DecodeSessionHistory(short)
	require.True(t, ok)
	assert.Len(t, got.Laps, 2)
	assert.Equal(t, 3, got.NumLaps)
	assert.Equal(t, Time(89000), got.Laps[1].LapTime)
}

func TestDecodeSessionHistoryLapCap(t *testing.T) {
	laps := make([]HistoryLap, MaxHistoryLaps+5)
	for i := range laps {
		laps[i] = HistoryLap{LapNumber: i + 1, LapTime: Time(uint32(90000 + i))}
	}
	buf := EncodeSessionHistoryPacket(testHeader(PacketIDSessionHistory),
		SessionHistory{CarIndex: 0, NumLaps: len(laps), Laps: laps})
	got, ok := DecodeSessionHistory(buf)
	require.True(t, ok)
	assert.Len(t, got.Laps, MaxHistoryLaps)
}

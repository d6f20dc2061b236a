package telemetry

import (
	"encoding/binary"
	"math"
)

// Protocol constants. All multi-byte fields are little-endian and sit at
// fixed offsets; car-scoped records are read at
// header + prefix + slot*recordLen.
const (
	PacketFormat = 2023

	HeaderLen = 29
	MaxCars   = 22

	PacketIDMotion              = 0
	PacketIDSession             = 1
	PacketIDLapData             = 2
	PacketIDEvent               = 3
	PacketIDParticipants        = 4
	PacketIDCarSetups           = 5
	PacketIDCarTelemetry        = 6
	PacketIDCarStatus           = 7
	PacketIDFinalClassification = 8
	PacketIDLobbyInfo           = 9
	PacketIDCarDamage           = 10
	PacketIDSessionHistory      = 11

	SessionLen         = 13
	LapDataLen         = 42
	ParticipantLen     = 42
	ParticipantsPrefix = 1
	TelemetryLen       = 58
	StatusLen          = 34
	DamageLen          = 33
	HistoryPrefix      = 7
	HistoryLapLen      = 14
	MaxHistoryLaps     = 100

	sentinelMS16 = 0xFFFF
	sentinelMin8 = 0xFF
)

// Header carries the per-packet metadata shared by every packet kind.
type Header struct {
	PacketFormat   uint16
	GameYear       uint8
	MajorVersion   uint8
	MinorVersion   uint8
	PacketVersion  uint8
	PacketID       uint8
	SessionUID     uint64
	SessionTime    float32
	FrameID        uint32
	OverallFrameID uint32
	PlayerCarIndex uint8
	SecondaryIndex uint8
}

// DecodeHeader reads the packet header. ok is false when the buffer is too
// short; no bytes beyond len(buf) are ever touched.
func DecodeHeader(buf []byte) (h Header, ok bool) {
	if len(buf) < HeaderLen {
		return Header{}, false
	}
	h.PacketFormat = u16(buf, 0)
	h.GameYear = buf[2]
	h.MajorVersion = buf[3]
	h.MinorVersion = buf[4]
	h.PacketVersion = buf[5]
	h.PacketID = buf[6]
	h.SessionUID = u64(buf, 7)
	h.SessionTime = f32(buf, 15)
	h.FrameID = u32(buf, 19)
	h.OverallFrameID = u32(buf, 23)
	h.PlayerCarIndex = buf[27]
	h.SecondaryIndex = buf[28]
	return h, true
}

func u16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func u64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off:])
}

func f32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

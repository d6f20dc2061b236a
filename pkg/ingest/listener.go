package ingest

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"f1pitwall/pkg/log"
)

// maxDatagram comfortably holds the largest packet the sim emits.
const maxDatagram = 2048

// Listener reads telemetry datagrams off a UDP socket and hands them to
// the engine through a channel. Reads never block the engine: if the
// engine falls behind, datagrams are dropped, which is safe because the
// feed resends all state every tick.
type Listener struct {
	addr    string
	packets chan []byte
}

func NewListener(addr string) *Listener {
	return &Listener{
		addr:    addr,
		packets: make(chan []byte, 64),
	}
}

func (l *Listener) Packets() <-chan []byte {
	return l.packets
}

// Run owns the socket until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", l.addr)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", l.addr)
	}
	log.L().Info("listening for telemetry", zap.String("addr", l.addr))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxDatagram)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "reading datagram")
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		select {
		case l.packets <- pkt:
		default:
		}
	}
}

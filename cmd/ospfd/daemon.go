package main

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atulnandan/ospfd"
	"github.com/atulnandan/ospfd/internal/netsys"
)

// daemon wires the core Ospf instance to the shared raw socket and a
// one-second wall-clock ticker. Grounded on mdlayher-ospf3's conn.go
// read loop, generalized from "read one packet, print it" into the
// read/tick event loop spec.md §9 describes ("an event loop ticks once
// per second and otherwise blocks in poll() for timeout() ms or until a
// packet arrives").
type daemon struct {
	o    *ospf.Ospf
	conn *netsys.Conn
	log  *logrus.Logger
}

func newDaemon(o *ospf.Ospf, conn *netsys.Conn, log *logrus.Logger) *daemon {
	return &daemon{o: o, conn: conn, log: log}
}

func wallNow() ospf.Time {
	t := time.Now()
	return ospf.Time{Sec: uint32(t.Unix()), Msec: uint16(t.Nanosecond() / 1_000_000)}
}

// run drives the daemon until ctx is cancelled: every second it ticks
// the core's aging/timer maintenance, and in between it reads inbound
// OSPF packets off the shared socket and feeds them to ReceivePacket.
func (d *daemon) run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	packets := make(chan inboundPacket, 64)
	go d.readLoop(packets)

	for {
		select {
		case <-ctx.Done():
			d.o.Shutdown(0)
			return nil
		case <-ticker.C:
			d.o.Tick(wallNow())
		case p := <-packets:
			if err := d.o.ReceivePacket(p.ifIndex, p.src, p.payload); err != nil {
				d.log.WithError(err).WithField("ifIndex", p.ifIndex).Debug("dropping packet")
			}
		}
	}
}

type inboundPacket struct {
	ifIndex uint32
	src     uint32
	payload []byte
}

func (d *daemon) readLoop(out chan<- inboundPacket) {
	buf := make([]byte, 65535)
	for {
		n, ifIndex, src, err := d.conn.ReadFrom(buf)
		if err != nil {
			d.log.WithError(err).Error("reading from OSPF socket")
			return
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		out <- inboundPacket{ifIndex: uint32(ifIndex), src: ip4ToUint32(src), payload: payload}
	}
}

func ip4ToUint32(ip net.IP) uint32 {
	b := ip.To4()
	if b == nil {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

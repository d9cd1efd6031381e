package network

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"elevsim/src/types"
)

// MaxDatagram is the largest UDP payload over IPv4.
const MaxDatagram = 65507

const readInterval = 100 * time.Millisecond

// Transmitter encodes every frame as JSON and writes it as one datagram.
// Frames that do not fit a datagram are dropped.
func Transmitter(conn net.Conn, frames <-chan types.Frame) {
	for frame := range frames {
		data, err := json.Marshal(frame)
		if err != nil {
			slog.Warn("Frame not encodable", "step", frame.State.Steps, "error", err)
			continue
		}
		if len(data) > MaxDatagram {
			slog.Warn("Frame exceeds datagram size, dropped", "step", frame.State.Steps, "size", len(data))
			continue
		}
		if _, err := conn.Write(data); err != nil {
			slog.Debug("Frame write failed", "step", frame.State.Steps, "error", err)
		}
	}
}

// Receiver decodes frames arriving on conn and sends them on out until ctx is
// done. Undecodable datagrams are skipped.
func Receiver(ctx context.Context, conn net.PacketConn, out chan<- types.Frame) {
	buf := make([]byte, MaxDatagram)
	for ctx.Err() == nil {
		if err := conn.SetReadDeadline(time.Now().Add(readInterval)); err != nil {
			slog.Warn("SetReadDeadline failed", "error", err)
			return
		}
		n, _, err := conn.ReadFrom(buf)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			continue
		}
		if err != nil {
			slog.Warn("Frame read failed", "error", err)
			return
		}

		var frame types.Frame
		if err := json.Unmarshal(buf[:n], &frame); err != nil {
			slog.Debug("Skipping undecodable datagram", "size", n, "error", err)
			continue
		}
		select {
		case out <- frame:
		case <-ctx.Done():
			return
		}
	}
}

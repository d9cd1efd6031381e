// Package network publishes simulation frames to an observer over UDP.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"elevsim/src/config"
	"elevsim/src/types"
)

// Init dials the observer and forwards every frame until the frames channel
// is closed or ctx is done. The returned channel is closed once the
// connection is released.
func Init(ctx context.Context, addr string, frames <-chan types.Frame) (<-chan struct{}, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial observer %s: %w", addr, err)
	}

	frameTx := make(chan types.Frame)
	done := make(chan struct{})
	go msgBuffer(ctx, frames, frameTx)
	go func() {
		Transmitter(conn, frameTx)
		conn.Close()
		close(done)
	}()
	slog.Info("Publishing frames", "addr", addr)
	return done, nil
}

// msgBuffer listens for messages and forwards each as a burst at a fixed interval.
func msgBuffer[T any](ctx context.Context, msgBuf <-chan T, msgTx chan<- T) {
	defer close(msgTx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgBuf:
			if !ok {
				return
			}
			if !burstTransmit(ctx, msg, msgTx) {
				return
			}
		}
	}
}

func burstTransmit[T any](ctx context.Context, msg T, tx chan<- T) bool {
	for i := 0; i < config.MsgRepetitions; i++ {
		select {
		case tx <- msg:
		case <-ctx.Done():
			return false
		}
		if i < config.MsgRepetitions-1 {
			time.Sleep(config.MsgInterval)
		}
	}
	return true
}

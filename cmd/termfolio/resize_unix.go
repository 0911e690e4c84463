//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// watchResize turns SIGWINCH into resize notifications, coalescing bursts.
func watchResize(ctx context.Context) (<-chan struct{}, func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGWINCH)
	resize := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-sig:
				select {
				case resize <- struct{}{}:
				default:
				}
			}
		}
	}()
	return resize, func() {
		signal.Stop(sig)
		close(done)
	}
}

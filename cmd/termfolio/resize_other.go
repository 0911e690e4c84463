//go:build !unix

package main

import "context"

// watchResize has no window-change signal to listen to here; the session's
// size observer still picks up changes.
func watchResize(ctx context.Context) (<-chan struct{}, func()) {
	return nil, func() {}
}

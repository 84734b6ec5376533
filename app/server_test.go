package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServeGracefulShutdown(t *testing.T) {
	app := newLightApplication()

	done := make(chan error, 1)
	go func() {
		done <- app.serve("localhost:0")
	}()

	// let the server install its signal handler before delivering the signal
	time.Sleep(100 * time.Millisecond)

	err := syscall.Kill(os.Getpid(), syscall.SIGTERM)
	assert.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

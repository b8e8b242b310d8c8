package main

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestAwaitShutdown_SignalEndsWaitCleanly(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	srvErr := make(chan error, 1)

	sigCh <- syscall.SIGTERM
	if err := awaitShutdown(sigCh, srvErr); err != nil {
		t.Errorf("awaitShutdown() after SIGTERM = %v, want nil", err)
	}
}

func TestAwaitShutdown_SurfacesServerError(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	srvErr := make(chan error, 1)

	srvErr <- errors.New("listen tcp: address already in use")
	err := awaitShutdown(sigCh, srvErr)
	if err == nil {
		t.Fatal("awaitShutdown() after server failure = nil, want error")
	}
	if !strings.Contains(err.Error(), "address already in use") {
		t.Errorf("awaitShutdown() error = %v, want the listen failure wrapped", err)
	}
}

func TestAwaitShutdown_BlocksUntilEitherArrives(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	srvErr := make(chan error, 1)

	done := make(chan error, 1)
	go func() {
		done <- awaitShutdown(sigCh, srvErr)
	}()

	select {
	case err := <-done:
		t.Fatalf("awaitShutdown() returned %v before signal or error", err)
	case <-time.After(50 * time.Millisecond):
	}

	sigCh <- syscall.SIGINT
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("awaitShutdown() after SIGINT = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("awaitShutdown() did not return after the signal")
	}
}

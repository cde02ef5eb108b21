package exec

import (
	"context"
	"errors"
	"testing"

	neterrors "github.com/netcfgd/netcfgd/internal/errors"
)

func TestSystemLauncherNonZeroExit(t *testing.T) {
	l := &SystemLauncher{}

	err := l.Run(context.Background(), "/bin/sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("expected an error")
	}

	var e *neterrors.Error
	if !errors.As(err, &e) || e.Code != neterrors.ErrCodeNonZeroExit {
		t.Fatalf("error = %v, want code %s", err, neterrors.ErrCodeNonZeroExit)
	}
}

func TestSystemLauncherLaunchFailure(t *testing.T) {
	l := &SystemLauncher{}

	err := l.Run(context.Background(), "/nonexistent/netcfgd-test-program")
	if err == nil {
		t.Fatal("expected an error")
	}

	var e *neterrors.Error
	if !errors.As(err, &e) || e.Code != neterrors.ErrCodeLaunchFailure {
		t.Fatalf("error = %v, want code %s", err, neterrors.ErrCodeLaunchFailure)
	}
}

func TestSystemLauncherSuccess(t *testing.T) {
	l := &SystemLauncher{}

	if err := l.Run(context.Background(), "/bin/sh", "-c", "true"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestSystemExister(t *testing.T) {
	e := &SystemExister{}

	if !e.Exists("/bin/sh") {
		t.Error("/bin/sh should exist")
	}
	if e.Exists("/nonexistent/netcfgd-test-program") {
		t.Error("nonexistent path should not exist")
	}
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pkt.systems/pslog"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(pslog.NoopLogger())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestSizeOnEmptyTable(t *testing.T) {
	out, _, err := runCommand(t, "size", "--store", "mem://", "--dir", "/jobs")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Fatalf("expected 0, got %q", out)
	}
}

func TestPutEchoesExplicitID(t *testing.T) {
	out, _, err := runCommand(t, "put", "job-1", "--store", "mem://", "--data", "payload")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if strings.TrimSpace(out) != "job-1" {
		t.Fatalf("expected id echo, got %q", out)
	}
}

func TestPutGeneratesIDWhenOmitted(t *testing.T) {
	out, _, err := runCommand(t, "put", "--store", "mem://", "--data", "payload")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected a generated id")
	}
}

func TestUnknownStoreSchemeFails(t *testing.T) {
	_, _, err := runCommand(t, "size", "--store", "s3://bucket")
	if err == nil || !strings.Contains(err.Error(), "unsupported store scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	_, _, err := runCommand(t, "clear", "--store", "mem://")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}

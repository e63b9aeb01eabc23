package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Media directory", statusOK, "/media (read/write ok)", false)
	if line != "  Media directory:     [OK] /media (read/write ok)" {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Transmission", statusError, "unreachable", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red colour codes, got %q", colored)
	}
	if !strings.Contains(renderStatusLine("Transmission", statusInfo, "", false), "[SKIP]") {
		t.Fatal("expected SKIP label for info status")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers must never be colorized")
	}
}

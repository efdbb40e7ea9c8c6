// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Sent()
	m.Received(0.1)
	m.Nack()
	m.ReadError("timeout")
	m.ResetAttempt()
	m.ResetFailure()
	m.Keepalive()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil WriteTextfile: %v", err)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.Sent()
	m.Sent()
	m.Received(0.05)
	m.Nack()
	m.ReadError("timeout")
	m.ResetAttempt()

	if got := testutil.ToFloat64(m.FramesSent); got != 2 {
		t.Errorf("frames sent = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FramesReceived); got != 1 {
		t.Errorf("frames received = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ReadErrors.WithLabelValues("timeout")); got != 1 {
		t.Errorf("timeout errors = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Keepalive()

	path := filepath.Join(t.TempDir(), "m18.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "m18_keepalives_total 1") {
		t.Errorf("textfile missing keepalive counter:\n%s", data)
	}
}

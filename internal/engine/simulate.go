// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ffutop/m18link/protocol"
)

// Profile is a named pair of charger current limits in raw units.
type Profile struct {
	Name          string
	CutoffCurrent uint16
	MaxCurrent    uint16
}

// Limits for custom profiles.
const (
	MaxCutoffCurrent = 20000
	MaxMaxCurrent    = 20000
)

var profiles = map[string]Profile{
	"gentle":     {"Gentle", 150, 2500},
	"normal":     {"Normal", 300, 6000},
	"aggressive": {"Aggressive", 450, 9000},
}

// LookupProfile returns a built-in profile by case-insensitive name.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(profiles))
		for k := range profiles {
			names = append(names, k)
		}
		sort.Strings(names)
		return Profile{}, fmt.Errorf("unknown profile %q (want one of %s or custom)", name, strings.Join(names, ", "))
	}
	return p, nil
}

// CustomProfile validates raw current limits.
func CustomProfile(cutoff, maxCurrent int) (Profile, error) {
	if cutoff < 0 || cutoff > MaxCutoffCurrent {
		return Profile{}, fmt.Errorf("cutoff current %d outside 0-%d", cutoff, MaxCutoffCurrent)
	}
	if maxCurrent <= 0 || maxCurrent > MaxMaxCurrent {
		return Profile{}, fmt.Errorf("max current %d outside 1-%d", maxCurrent, MaxMaxCurrent)
	}
	return Profile{Name: "Custom", CutoffCurrent: uint16(cutoff), MaxCurrent: uint16(maxCurrent)}, nil
}

// KeepaliveInterval maps a simulated charger baud rate to the keepalive
// period. Unknown rates use 500 ms.
func KeepaliveInterval(baud int) time.Duration {
	switch baud {
	case 1200:
		return time.Second
	case 2400:
		return 750 * time.Millisecond
	case 9600:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// SimulateFor pretends to be a charger for duration using the given current
// limits, which replace the engine's own only for this run. It stops early
// when ctx is cancelled; that is not an error. The link always ends in
// Idle.
func (e *Engine) SimulateFor(ctx context.Context, duration time.Duration, cutoffCurrent, maxCurrent uint16) error {
	defer e.useCurrents(cutoffCurrent, maxCurrent)()
	defer e.Idle()

	begin := e.clock.Now()
	if !e.Reset() {
		return protocol.ErrNoHandshake
	}
	if err := e.negotiate(); err != nil {
		return fmt.Errorf("charger negotiation: %w", err)
	}

	for {
		if ctx.Err() != nil {
			e.log.Info("simulation stopped", "elapsed", e.clock.Now().Sub(begin).Round(time.Millisecond))
			return nil
		}
		elapsed := e.clock.Now().Sub(begin)
		if elapsed >= duration {
			break
		}
		e.clock.Sleep(e.cfg.KeepaliveInterval)
		if _, err := e.Keepalive(); err != nil {
			return fmt.Errorf("keepalive after %s: %w", elapsed.Round(time.Millisecond), err)
		}
	}
	e.log.Info("simulation finished", "duration", duration)
	return nil
}

// negotiate runs the two configure/snapshot rounds a charger opens with.
func (e *Engine) negotiate() error {
	cutoff, limit := e.Currents()
	if _, err := e.Configure(cutoff, limit, 2); err != nil {
		return err
	}
	if _, err := e.Snapshot(); err != nil {
		return err
	}
	e.clock.Sleep(e.cfg.NegotiationPause)
	if _, err := e.Keepalive(); err != nil {
		return err
	}
	if _, err := e.Configure(cutoff, limit, 1); err != nil {
		return err
	}
	_, err := e.Snapshot()
	return err
}

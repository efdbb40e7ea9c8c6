// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ffutop/m18link/registers"
)

// Dump output formats.
const (
	FormatLabel = "label"
	FormatRaw   = "raw"
	FormatYAML  = "yaml"
)

// WriteReadings renders readings to w in the named format.
func WriteReadings(w io.Writer, readings []Reading, format string) error {
	switch format {
	case FormatLabel, "":
		return writeLabel(w, readings)
	case FormatRaw:
		return writeRaw(w, readings)
	case FormatYAML:
		return writeYAML(w, readings)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeLabel(w io.Writer, readings []Reading) error {
	for _, r := range readings {
		value := "-"
		if r.OK {
			value = r.Value.String()
		}
		var err error
		if r.Register.Length == 0 {
			_, err = fmt.Fprintf(w, "%3d  %-6s %3s %-20s %-40s %s\n", r.Index, "------", "", "", "(not in catalog)", value)
		} else {
			_, err = fmt.Fprintf(w, "%3d  0x%04X %3d %-20s %-40s %s\n",
				r.Index, r.Register.Address, r.Register.Length, r.Register.Type, r.Register.Label, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// writeRaw emits only the values, tab separated, for pasting into a
// spreadsheet row.
func writeRaw(w io.Writer, readings []Reading) error {
	values := make([]string, len(readings))
	for i, r := range readings {
		if r.OK {
			values[i] = r.Value.String()
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(values, "\t"))
	return err
}

type yamlReading struct {
	Index   int    `yaml:"index"`
	Address string `yaml:"address,omitempty"`
	Length  uint8  `yaml:"length,omitempty"`
	Type    string `yaml:"type,omitempty"`
	Label   string `yaml:"label,omitempty"`
	Value   any    `yaml:"value"`
}

func writeYAML(w io.Writer, readings []Reading) error {
	out := make([]yamlReading, len(readings))
	for i, r := range readings {
		y := yamlReading{Index: r.Index}
		if r.Register.Length > 0 {
			y.Address = fmt.Sprintf("0x%04X", r.Register.Address)
			y.Length = r.Register.Length
			y.Type = r.Register.Type.String()
			y.Label = r.Register.Label
		}
		if r.OK {
			y.Value = yamlValue(r.Value)
		}
		out[i] = y
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func yamlValue(v registers.Value) any {
	switch v.Type {
	case registers.UInt:
		return v.Uint
	case registers.Date:
		return v.Time
	case registers.SerialNumber:
		return map[string]any{"type": v.Serial.Type, "serial": v.Serial.Number}
	case registers.AdcTemperature, registers.DecimalTemperature:
		return v.Celsius
	case registers.CellVoltages:
		return v.Cells
	default:
		return v.Text
	}
}

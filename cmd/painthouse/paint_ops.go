package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/paint-house/engine/color"
)

// paintOp is one simulated click: paint the surface under (X, Y) with Hex.
type paintOp struct {
	X, Y float64
	Hex  string
}

// paintOps collects repeated -paint flags.
type paintOps []paintOp

func (p *paintOps) String() string {
	parts := make([]string, 0, len(*p))
	for _, op := range *p {
		parts = append(parts, fmt.Sprintf("%g,%g=%s", op.X, op.Y, op.Hex))
	}
	return strings.Join(parts, " ")
}

func (p *paintOps) Set(value string) error {
	op, err := parsePaintOp(value)
	if err != nil {
		return err
	}
	*p = append(*p, op)
	return nil
}

// parsePaintOp parses "x,y=#RRGGBB".
func parsePaintOp(s string) (paintOp, error) {
	at, hex, ok := strings.Cut(s, "=")
	if !ok {
		return paintOp{}, fmt.Errorf("paint %q: want x,y=#RRGGBB", s)
	}
	xs, ys, ok := strings.Cut(at, ",")
	if !ok {
		return paintOp{}, fmt.Errorf("paint %q: want x,y=#RRGGBB", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return paintOp{}, fmt.Errorf("paint %q: x: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return paintOp{}, fmt.Errorf("paint %q: y: %w", s, err)
	}
	norm, err := color.NormalizeHex(strings.TrimSpace(hex))
	if err != nil {
		return paintOp{}, fmt.Errorf("paint %q: %w", s, err)
	}
	return paintOp{X: x, Y: y, Hex: norm}, nil
}

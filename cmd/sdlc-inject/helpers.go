package main

import (
	"github.com/rohilkanwar-aai/sdlc-inject/internal/score"
)

// breakdownMultiplier pulls the total process multiplier back out of a
// breakdown's adjustment list. 1.0 when no process adjustment was applied.
func breakdownMultiplier(bd score.Breakdown) float64 {
	m := 1.0
	for _, a := range bd.Adjustments {
		if a.Source == "process" && a.Multiplier != 0 {
			m = a.Multiplier
		}
	}
	return m
}

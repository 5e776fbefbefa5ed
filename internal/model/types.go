package model

import (
	"time"

	"weightnav/internal/opt"
)

// Wire types for the solve API and the solution store.

type CaseIn struct {
	Label   string       `json:"label,omitempty"`
	W0      float64      `json:"w0"`
	Targets []opt.Target `json:"targets"`
}

type SolveRequest struct {
	Cases       []CaseIn `json:"cases"`
	Seed        int64    `json:"seed,omitempty"`
	RandomSeeds int      `json:"randomSeeds,omitempty"`
	// NoCache forces a fresh solve even when an identical case was stored.
	NoCache bool `json:"noCache,omitempty"`
}

type SolveResponse struct {
	Solutions []SolutionRecord `json:"solutions"`
}

// SolutionRecord is a solved case as persisted and returned to clients.
type SolutionRecord struct {
	ID        string       `json:"id"`
	InputKey  string       `json:"inputKey"`
	Label     string       `json:"label,omitempty"`
	W0        float64      `json:"w0"`
	Targets   []opt.Target `json:"targets,omitempty"`
	Order     []int        `json:"order"`
	Length    float64      `json:"length"`
	Reachable int          `json:"reachable"`
	Metrics   opt.Metrics  `json:"metrics"`
	Cached    bool         `json:"cached,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SolutionEvent is published on the event broker after each solve.
type SolutionEvent struct {
	Type       string  `json:"type"`
	SolutionID string  `json:"solutionId"`
	Label      string  `json:"label,omitempty"`
	Length     float64 `json:"length"`
	Reachable  int     `json:"reachable"`
	Strategy   string  `json:"strategy,omitempty"`
	TS         string  `json:"ts"`
}

const EventSolutionCompleted = "solution.completed"

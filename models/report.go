package models

import (
	"fmt"
	"time"
)

// EntityKind identifies what kind of guild entity a result refers to
type EntityKind string

const (
	EntityRole     EntityKind = "role"
	EntityCategory EntityKind = "category"
	EntityChannel  EntityKind = "channel"
)

// Outcome is the per-entity result of an apply pass
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExists  Outcome = "exists"
	OutcomeFailed  Outcome = "failed"
)

// EntityResult records what happened to one desired entity during an apply
type EntityResult struct {
	Kind     EntityKind `json:"kind"`
	Name     string     `json:"name"`
	Category string     `json:"category,omitempty"` // parent category for channels
	Outcome  Outcome    `json:"outcome"`
	Reason   string     `json:"reason,omitempty"` // set when Outcome is failed
}

// BuildReport enumerates the outcome of every desired entity in an apply
// pass. A failed entity never aborts the pass, so a report always covers the
// full layout.
type BuildReport struct {
	GuildID    string         `json:"guild_id"`
	Version    int            `json:"version"`
	Results    []EntityResult `json:"results"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Add appends one entity result
func (r *BuildReport) Add(result EntityResult) {
	r.Results = append(r.Results, result)
}

// Created returns how many entities were created
func (r *BuildReport) Created() int { return r.count(OutcomeCreated) }

// Existing returns how many entities already existed
func (r *BuildReport) Existing() int { return r.count(OutcomeExists) }

// Failed returns how many entities failed to create
func (r *BuildReport) Failed() int { return r.count(OutcomeFailed) }

func (r *BuildReport) count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Summary renders the one-line totals used in command responses and logs
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("%d created, %d existing, %d failed", r.Created(), r.Existing(), r.Failed())
}

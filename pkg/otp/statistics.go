// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"errors"
	"fmt"
	"time"
)

// Statistics counts the outcome of provisioning runs.
type Statistics struct {
	StartTime time.Time
	Elapsed   time.Duration

	// Counters
	Checked    uint64
	Unchanged  uint64
	Written    uint64
	Mismatched uint64
	Blocked    uint64
	Failed     uint64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// Update records one run.
func (s *Statistics) Update(res *Result, err error) {
	s.Checked++
	s.Elapsed = time.Since(s.StartTime)

	if err != nil {
		s.Failed++
		var mismatch *MismatchError
		var blocked *NotFuseableError
		switch {
		case errors.As(err, &mismatch):
			s.Mismatched++
		case errors.As(err, &blocked):
			s.Blocked++
		}
		return
	}

	if res.Written {
		s.Written++
	} else if res.State == StateVerified {
		s.Unchanged++
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	result := fmt.Sprintf("=== Statistics (%.1f seconds) ===\n", s.Elapsed.Seconds())
	result += fmt.Sprintf("Checked:         %8d\n", s.Checked)
	result += fmt.Sprintf("Unchanged:       %8d\n", s.Unchanged)
	result += fmt.Sprintf("Written:         %8d\n", s.Written)
	if s.Failed > 0 {
		result += fmt.Sprintf("Failed:          %8d\n", s.Failed)
		if s.Mismatched > 0 {
			result += fmt.Sprintf("  Mismatch:         %5d\n", s.Mismatched)
		}
		if s.Blocked > 0 {
			result += fmt.Sprintf("  Already Fused:    %5d\n", s.Blocked)
		}
	}
	result += "================================\n"
	return result
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"log/slog"
)

// Mode is the operation requested from a provisioning run.
type Mode int

// Provisioning modes
const (
	// ModeInspect only reads and decodes the fuse.
	ModeInspect Mode = iota
	// ModeVerify compares the fuse with the requested value and never writes.
	ModeVerify
	// ModeCommit burns the requested value when it is still reachable.
	ModeCommit
)

func (m Mode) String() string {
	switch m {
	case ModeInspect:
		return "inspect"
	case ModeVerify:
		return "verify"
	case ModeCommit:
		return "commit"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// State is the point a run reached. A failed run keeps the last state it
// entered.
type State int

// Workflow states
const (
	StateIdle State = iota
	StateResolved
	StateValidated
	StateVerified
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolved:
		return "resolved"
	case StateValidated:
		return "validated"
	case StateVerified:
		return "verified"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request selects a fuse, a value literal and a mode. Value is ignored in
// ModeInspect.
type Request struct {
	Fuse  string
	Value string
	Mode  Mode
}

// Result describes a finished run.
type Result struct {
	Fuse  string
	State State
	// Fused is the decoded value read before any write.
	Fused string
	// Requested is the requested value in decoded form.
	Requested string
	// Written is true once a write was attempted. Combined with an error it
	// means the fuse may be partially burned.
	Written bool
}

// Provisioner runs requests against one catalog and store. It holds no
// lock; callers serialize runs that touch the same store.
type Provisioner struct {
	catalog *Catalog
	store   Store
	log     *slog.Logger
}

// NewProvisioner creates a provisioner. A nil logger discards output.
func NewProvisioner(c *Catalog, s Store, log *slog.Logger) *Provisioner {
	if log == nil {
		log = discardLogger()
	}
	return &Provisioner{catalog: c, store: s, log: log}
}

// Catalog returns the catalog requests are resolved against.
func (p *Provisioner) Catalog() *Catalog {
	return p.catalog
}

// Store returns the register medium.
func (p *Provisioner) Store() Store {
	return p.store
}

// Run executes one request. The returned Result is never nil and records
// how far the run got, also when an error is returned.
//
// Requesting the value that is already fused succeeds without a write in
// both verify and commit mode. In commit mode the written words are not
// read back.
func (p *Provisioner) Run(req Request) (*Result, error) {
	res := &Result{Fuse: req.Fuse, State: StateIdle}
	log := p.log.With("fuse", req.Fuse, "mode", req.Mode.String())

	f, ok := p.catalog.Resolve(p.store, req.Fuse)
	if !ok {
		return res, &NotFoundError{Fuse: req.Fuse, Platform: p.catalog.Platform().Name}
	}
	res.State = StateResolved
	log.Debug("resolved", "kind", f.Kind().String())

	if req.Mode == ModeInspect {
		fused, err := f.Get()
		if err != nil {
			return res, err
		}
		res.Fused = fused
		return res, nil
	}

	requested, err := f.Canonical(req.Value)
	if err != nil {
		return res, err
	}
	res.Requested = requested
	res.State = StateValidated
	log.Debug("validated", "value", requested)

	fused, err := f.Get()
	if err != nil {
		return res, err
	}
	res.Fused = fused

	if fused == requested {
		res.State = StateVerified
		log.Debug("already fused", "value", fused)
		return res, nil
	}

	switch req.Mode {
	case ModeVerify:
		return res, &MismatchError{Fuse: req.Fuse, Fused: fused, Requested: requested}
	case ModeCommit:
		fuseable, err := f.IsFuseable(req.Value)
		if err != nil {
			return res, err
		}
		if !fuseable {
			return res, &NotFuseableError{Fuse: req.Fuse, Fused: fused, Requested: requested}
		}
		log.Info("burning fuse", "from", fused, "to", requested)
		res.Written = true
		if err := f.Set(req.Value); err != nil {
			return res, err
		}
		res.State = StateCommitted
		return res, nil
	default:
		panic(fmt.Sprintf("otp: unhandled mode %v", req.Mode))
	}
}

// Package flight implements the per-drone flight state machine:
// Idle → Ascending → Cruising → Positioning → Scanning, plus the
// coordinator-commanded Landing → Landed override.
package flight

import (
	"math"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/world"
)

const (
	// AltitudeEpsilon is the gap under which an altitude change snaps to
	// its target.
	AltitudeEpsilon = 0.1
	// altitudeRate scales elapsed time into the lerp factor.
	altitudeRate = 1.0
)

// Drone is one search drone. Its ground position belongs to the path
// planner; the drone only owns its height above ground.
type Drone struct {
	Name string

	agent    world.PathPlanner
	state    State
	altitude float64

	destination    geom.Vec3
	scanAltitude   float64
	cruiseAltitude float64
	landingSpot    geom.Vec3
	scanReady      bool
}

// NewDrone creates an idle drone driven by agent.
func NewDrone(name string, agent world.PathPlanner) *Drone {
	return &Drone{Name: name, agent: agent, state: Idle}
}

func (d *Drone) State() State { return d.state }

// Altitude is the height above ground.
func (d *Drone) Altitude() float64 { return d.altitude }

// Position is the drone's world position.
func (d *Drone) Position() geom.Vec3 {
	return d.agent.Position().Add(geom.Vec3{Y: d.altitude})
}

func (d *Drone) Destination() geom.Vec3 { return d.destination }

func (d *Drone) ScanAltitude() float64 { return d.scanAltitude }

func (d *Drone) CruiseAltitude() float64 { return d.cruiseAltitude }

func (d *Drone) LandingSpot() geom.Vec3 { return d.landingSpot }

// GoToMissionArea starts the flight toward destination. It does not check
// whether a previous flight finished; a second call restarts the climb.
func (d *Drone) GoToMissionArea(destination geom.Vec3, scanAltitude, cruiseAltitude float64) {
	d.destination = destination
	d.scanAltitude = scanAltitude
	d.cruiseAltitude = cruiseAltitude
	d.scanReady = false
	d.state = Ascending
}

// LandAtTarget re-enables path following toward spot and lands there.
func (d *Drone) LandAtTarget(spot geom.Vec3) {
	d.landingSpot = spot
	d.agent.SetEnabled(true)
	d.agent.SetDestination(spot)
	d.state = Landing
}

// ConsumeScanReady reports true exactly once after the drone reached its
// scanning position.
func (d *Drone) ConsumeScanReady() bool {
	if !d.scanReady {
		return false
	}
	d.scanReady = false
	return true
}

// Tick advances the drone by dt seconds. It returns the transition taken,
// if any.
func (d *Drone) Tick(dt float64) (Transition, bool) {
	from := d.state
	switch d.state {
	case Ascending:
		if d.approachAltitude(d.cruiseAltitude, dt) {
			d.state = Cruising
			d.agent.SetDestination(d.destination)
		}
	case Cruising:
		d.agent.Advance(dt)
		if d.arrived() {
			d.state = Positioning
		}
	case Positioning:
		if d.approachAltitude(d.scanAltitude, dt) {
			d.state = Scanning
			d.agent.SetEnabled(false)
			d.scanReady = true
		}
	case Landing:
		d.agent.Advance(dt)
		if d.arrived() && d.approachAltitude(0, dt) {
			d.state = Landed
			d.agent.SetEnabled(false)
		}
	}
	if d.state == from {
		return Transition{}, false
	}
	return Transition{Drone: d.Name, From: from, To: d.state}, true
}

func (d *Drone) arrived() bool {
	return !d.agent.PathPending() && d.agent.RemainingDistance() <= d.agent.StoppingDistance()
}

// approachAltitude moves the altitude toward target with exponential
// smoothing and snaps once within AltitudeEpsilon. It reports whether the
// target was reached.
func (d *Drone) approachAltitude(target, dt float64) bool {
	d.altitude = geom.Lerp(d.altitude, target, dt*altitudeRate)
	if math.Abs(d.altitude-target) < AltitudeEpsilon {
		d.altitude = target
		return true
	}
	return false
}

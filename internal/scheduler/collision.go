package scheduler

import "math"

// CollisionAvoidance applies a pairwise proximity check between a vehicle
// and its nearest other vehicle by straight-line distance, capping the
// vehicle's speed as the gap closes; heading and path are not considered.
// Grounded on OHT2/simulator/core/scheduler.py's CollisionAvoidance.
// Distances are in the same units as vehicle positions and BumpDistance.
type CollisionAvoidance struct {
	BumpDistance     float64 // every Check tier threshold is a fraction of this
	DispatchDistance float64 // carried from config; Check does not read it
}

// DefaultCollisionAvoidance mirrors the vendor's default thresholds.
func DefaultCollisionAvoidance() CollisionAvoidance {
	return CollisionAvoidance{BumpDistance: 2.0, DispatchDistance: 10.0}
}

// Tier names the proximity band a Check result falls into.
type Tier int

const (
	TierClear Tier = iota
	TierCapped
	TierSlow
	TierCrawl
	TierStop
)

func (t Tier) String() string {
	switch t {
	case TierClear:
		return "clear"
	case TierCapped:
		return "capped"
	case TierSlow:
		return "slow"
	case TierCrawl:
		return "crawl"
	case TierStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Check computes the gap between a trailing vehicle at (x,y) and its
// nearest leader at (lx,ly) traveling at leaderSpeed, and returns the
// proximity tier, the speed this vehicle should take (capped at
// vehicleMaxSpeed when clear), and a short recommended-action string.
//
// Thresholds are fractions of BumpDistance: below 0.3x the
// vehicle stops; in [0.3x, 0.5x) it crawls at min(0.5*leaderSpeed, 20); in
// [0.5x, 0.7x) it slows to min(0.8*leaderSpeed, 50); in [0.7x, 1.0x) it is
// capped at min(leaderSpeed, 100); at BumpDistance or beyond it is clear to
// run at vehicleMaxSpeed.
func (c CollisionAvoidance) Check(x, y, lx, ly, leaderSpeed, vehicleMaxSpeed float64) (Tier, float64, string) {
	gap := math.Hypot(lx-x, ly-y)

	switch {
	case gap < 0.3*c.BumpDistance:
		return TierStop, 0.0, "stop: leader within bump distance"
	case gap < 0.5*c.BumpDistance:
		return TierCrawl, math.Min(0.5*leaderSpeed, 20), "crawl: closing on leader"
	case gap < 0.7*c.BumpDistance:
		return TierSlow, math.Min(0.8*leaderSpeed, 50), "slow: leader ahead in corridor"
	case gap < c.BumpDistance:
		return TierCapped, math.Min(leaderSpeed, 100), "capped: leader within dispatch corridor"
	default:
		return TierClear, vehicleMaxSpeed, "clear: no restriction"
	}
}

// SafeSpeed returns the Check tier's speed cap directly.
func (c CollisionAvoidance) SafeSpeed(x, y, lx, ly, leaderSpeed, vehicleMaxSpeed float64) float64 {
	_, speed, _ := c.Check(x, y, lx, ly, leaderSpeed, vehicleMaxSpeed)
	return speed
}

// NearestLeader returns the index into others of the vehicle with the
// smallest straight-line gap to (x,y), whether or not it is ahead or on the
// same path, or -1 if others is empty.
// others[i] positions are passed as parallel slices to avoid importing
// simcore.Vehicle into this leaf package.
func NearestLeader(x, y float64, otherX, otherY []float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range otherX {
		d := math.Hypot(otherX[i]-x, otherY[i]-y)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

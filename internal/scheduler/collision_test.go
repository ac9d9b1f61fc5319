package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// S4: vehicle A trailing vehicle B on a shared corridor, bump_distance =
// 2000. Thresholds: 0.3x=600, 0.5x=1000, 0.7x=1400, 1.0x=2000.
func TestCollisionAvoidance_S4Thresholds(t *testing.T) {
	ca := CollisionAvoidance{BumpDistance: 2000, DispatchDistance: 10000}
	leaderSpeed := 100.0

	tier, speed, _ := ca.Check(0, 0, 500, 0, leaderSpeed, 120) // distance 500 < 600: stop
	assert.Equal(t, TierStop, tier)
	assert.Equal(t, 0.0, speed)

	tier, speed, _ = ca.Check(0, 0, 800, 0, leaderSpeed, 120) // [600,1000): crawl
	assert.Equal(t, TierCrawl, tier)
	assert.Equal(t, 20.0, speed) // min(0.5*100, 20) = 20

	tier, speed, _ = ca.Check(0, 0, 1200, 0, leaderSpeed, 120) // [1000,1400): slow
	assert.Equal(t, TierSlow, tier)
	assert.Equal(t, 50.0, speed) // min(0.8*100, 50) = 50

	tier, speed, _ = ca.Check(0, 0, 1500, 0, leaderSpeed, 120) // [1400,2000): capped
	assert.Equal(t, TierCapped, tier)
	assert.Equal(t, 100.0, speed) // min(100, 100) = 100

	tier, speed, _ = ca.Check(0, 0, 2500, 0, leaderSpeed, 120) // >= 2000: clear
	assert.Equal(t, TierClear, tier)
	assert.Equal(t, 120.0, speed)
}

func TestCollisionAvoidance_CappedUsesLeaderSpeedNotOverHundred(t *testing.T) {
	ca := CollisionAvoidance{BumpDistance: 2000}
	// leaderSpeed=200 -> min(200, 100) = 100.
	tier, speed, _ := ca.Check(0, 0, 1500, 0, 200, 500)
	assert.Equal(t, TierCapped, tier)
	assert.Equal(t, 100.0, speed)
}

func TestCollisionAvoidance_CrawlCapsAtTwenty(t *testing.T) {
	ca := CollisionAvoidance{BumpDistance: 2000}
	// leaderSpeed=200 -> 0.5*200=100, but capped at 20.
	_, speed, _ := ca.Check(0, 0, 800, 0, 200, 500)
	assert.Equal(t, 20.0, speed)
}

func TestCollisionAvoidance_SlowCapsAtFifty(t *testing.T) {
	ca := CollisionAvoidance{BumpDistance: 2000}
	// leaderSpeed=200 -> 0.8*200=160, but capped at 50.
	_, speed, _ := ca.Check(0, 0, 1200, 0, 200, 500)
	assert.Equal(t, 50.0, speed)
}

func TestNearestLeader(t *testing.T) {
	idx := NearestLeader(0, 0, []float64{10, 3, 20}, []float64{0, 0, 0})
	assert.Equal(t, 1, idx)
}

func TestNearestLeader_NoOthers(t *testing.T) {
	idx := NearestLeader(0, 0, nil, nil)
	assert.Equal(t, -1, idx)
}

// services/physics.go
package services

import (
	"math"
	"math/rand"

	"game-match-service/config"
)

// Simulation constants. Velocities are per-tick displacements (the loop runs
// at a fixed rate, so there is no dt term).
const (
	serveSpeedZ    = 0.2  // forward speed right after a serve
	serveMaxVX     = 0.1  // horizontal spread of the random serve angle
	speedUpFactor  = 1.05 // |velocityZ| multiplier per paddle hit
	maxBallSpeedZ  = 0.9  // rally speed cap
	spinFactor     = 0.1  // horizontal spin per unit of hit offset
	collisionDepth = 0.5  // z tolerance of the paddle hit test
	paddleInsetZ   = 1.0  // paddle distance from its back boundary
)

// ballState is the authoritative ball. Owned exclusively by one match room
// and mutated only inside that room's simulation step.
type ballState struct {
	X, Y, Z float64
	VX, VZ  float64
}

// serve places the ball at field center with a randomized horizontal angle.
// dir picks which player the ball travels toward (+1 = player1 side).
func serve(dir float64) ballState {
	return ballState{
		VX: (rand.Float64()*2 - 1) * serveMaxVX,
		VZ: dir * serveSpeedZ,
	}
}

func randomServe() ballState {
	if rand.Intn(2) == 0 {
		return serve(1)
	}
	return serve(-1)
}

// ValidatePaddleX checks one raw paddle input against the clamp range.
// Non-finite values are rejected outright (ok=false, previous position must
// stay in effect). Out-of-range values are clamped and flagged so the room
// can count the attempt.
func ValidatePaddleX(cfg config.GameConfig, raw float64) (x float64, clamped, ok bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false, false
	}
	maxX := cfg.MaxPaddleX()
	x = clampFloat(raw, -maxX, maxX)
	return x, x != raw, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

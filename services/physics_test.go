package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-match-service/config"
)

func TestValidatePaddleX(t *testing.T) {
	cfg := config.Default() // maxX = (16-3)/2 = 6.5

	tests := []struct {
		name        string
		raw         float64
		wantX       float64
		wantClamped bool
		wantOK      bool
	}{
		{"in range", 3, 3, false, true},
		{"negative in range", -6.5, -6.5, false, true},
		{"above range", 1000, 6.5, true, true},
		{"below range", -1000, -6.5, true, true},
		{"nan dropped", math.NaN(), 0, false, false},
		{"positive inf dropped", math.Inf(1), 0, false, false},
		{"negative inf dropped", math.Inf(-1), 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, clamped, ok := ValidatePaddleX(cfg, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantClamped, clamped)
			assert.Equal(t, tt.wantX, x)
			assert.LessOrEqual(t, math.Abs(x), cfg.MaxPaddleX())
		})
	}
}

func TestValidatePaddleXWiderField(t *testing.T) {
	cfg := config.Default()
	cfg.FieldWidth = 19 // maxX = 8

	x, clamped, ok := ValidatePaddleX(cfg, 1000)
	require.True(t, ok)
	assert.True(t, clamped)
	assert.Equal(t, 8.0, x)
}

func TestServeHasNonZeroVelocity(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := randomServe()
		assert.Equal(t, serveSpeedZ, math.Abs(b.VZ))
		assert.LessOrEqual(t, math.Abs(b.VX), serveMaxVX)
		assert.Zero(t, b.X)
		assert.Zero(t, b.Z)
	}
}

func newPlayingRoom(t *testing.T, cfg config.GameConfig) (*MatchRoom, *fakeSender, *fakeSender, *fakeStore) {
	t.Helper()
	a := newFakeSender(1, "alice")
	b := newFakeSender(2, "bob")
	store := &fakeStore{}
	room := NewMatchRoom(cfg, store, NewRoomRegistry(), a, b)
	room.phase = PhasePlaying
	room.startedAt = time.Now()
	room.sessionID = "session-1"
	return room, a, b, store
}

func TestWallBounceInvertsVelocityXUnchangedMagnitude(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	room.ball = ballState{X: -7.95, VX: -0.1, VZ: 0.2}

	room.stepBallLocked()

	assert.Equal(t, -8.0, room.ball.X) // clamped at the left bound
	assert.Equal(t, 0.1, room.ball.VX) // inverted, same magnitude
}

func TestPaddleHitAmplifiesAndInvertsVelocityZ(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	// Heading for player1's paddle plane at z=9.
	room.ball = ballState{X: 0, Z: 8.7, VZ: 0.25}
	room.paddleX[0] = 0

	before := math.Abs(room.ball.VZ)
	room.stepBallLocked()

	assert.Negative(t, room.ball.VZ)
	assert.InDelta(t, before*speedUpFactor, math.Abs(room.ball.VZ), 1e-9)
	assert.GreaterOrEqual(t, math.Abs(room.ball.VZ), before)
	// Repositioned just outside the paddle, no tunneling.
	assert.InDelta(t, 9-collisionDepth, room.ball.Z, 1e-9)
}

func TestPaddleHitSpeedIsCapped(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	room.ball = ballState{X: 0, Z: 8.7, VZ: 0.88}
	room.paddleX[0] = 0

	room.stepBallLocked()

	assert.InDelta(t, maxBallSpeedZ, math.Abs(room.ball.VZ), 1e-9)
}

func TestFastBallDoesNotSkipPaddle(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	// One step carries the ball from below the collision window to past the
	// paddle plane at z=9. The paddle is lined up, so it must still connect.
	room.ball = ballState{X: 0, Z: 8.62, VZ: 0.88}
	room.paddleX[0] = 0

	room.stepBallLocked()

	assert.Negative(t, room.ball.VZ)
	assert.InDelta(t, 9-collisionDepth, room.ball.Z, 1e-9)
}

func TestFastBallDoesNotSkipPaddlePlayer2Side(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	room.ball = ballState{X: 0, Z: -8.62, VZ: -0.88}
	room.paddleX[1] = 0

	room.stepBallLocked()

	assert.Positive(t, room.ball.VZ)
	assert.InDelta(t, -(9 - collisionDepth), room.ball.Z, 1e-9)
}

func TestPaddleHitImpartsSpinFromOffset(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	room.ball = ballState{X: 1.0, Z: 8.8, VX: 0, VZ: 0.2}
	room.paddleX[0] = 0

	room.stepBallLocked()

	// Struck one unit off-center: spin proportional to the offset.
	assert.InDelta(t, 1.0*spinFactor, room.ball.VX, 1e-9)
}

func TestBallMissesPaddleOutsideItsWidth(t *testing.T) {
	room, _, _, _ := newPlayingRoom(t, config.Default())
	room.ball = ballState{X: 5, Z: 8.8, VZ: 0.2}
	room.paddleX[0] = 0 // paddle half-width 1.5, ball 5 units away

	room.stepBallLocked()

	assert.Positive(t, room.ball.VZ) // no bounce
}

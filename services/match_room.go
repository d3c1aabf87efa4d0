// services/match_room.go
package services

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"game-match-service/config"
	"game-match-service/metrics"
	"game-match-service/models"
)

type RoomPhase string

const (
	PhaseWaiting   RoomPhase = "waiting"   // room created, waiting for both ready signals
	PhasePlaying   RoomPhase = "playing"   // simulation loop running
	PhaseEnded     RoomPhase = "ended"     // win threshold reached, grace delay pending
	PhaseDestroyed RoomPhase = "destroyed" // terminal
)

var ErrNotInRoom = errors.New("player does not belong to this room")

// MatchRoom owns one pairing of two players and the authoritative ball,
// paddle and score state. Side 0 is player1 (paddle at positive z), side 1 is
// player2. Only the room's own simulation goroutine mutates ball and score
// while playing; paddle input is applied under the same lock the tick reads
// through, so a tick observes either the old or the new position, never a
// partial write.
type MatchRoom struct {
	ID string

	cfg      config.GameConfig
	store    SessionStore
	registry *RoomRegistry
	players  [2]Sender

	mu          sync.Mutex
	phase       RoomPhase
	ready       [2]bool
	starting    bool
	ball        ballState
	paddleX     [2]float64
	score       [2]int
	sessionID   string
	startedAt   time.Time
	lastFrameTS int64
	graceTimer  *time.Timer

	// ended guards the Playing→Ended transition: set first, before the loop
	// is stopped or the winner computed, so a concurrent attempt returns
	// immediately and CompleteSession runs at most once.
	ended bool

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMatchRoom(cfg config.GameConfig, store SessionStore, registry *RoomRegistry, player1, player2 Sender) *MatchRoom {
	return &MatchRoom{
		ID:       uuid.NewString(),
		cfg:      cfg,
		store:    store,
		registry: registry,
		players:  [2]Sender{player1, player2},
		phase:    PhaseWaiting,
		stop:     make(chan struct{}),
	}
}

func (r *MatchRoom) Phase() RoomPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *MatchRoom) Scores() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score[0], r.score[1]
}

// Ready records one player's ready signal. The second signal fires the
// preparation sequence. A duplicate ready is a no-op.
func (r *MatchRoom) Ready(c Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWaiting {
		return errors.New("match is not waiting for ready signals")
	}
	side := r.sideOfLocked(c)
	if side < 0 {
		return ErrNotInRoom
	}
	if r.ready[side] {
		return nil
	}
	r.ready[side] = true
	log.WithFields(log.Fields{"room_id": r.ID, "user_id": c.UserID()}).Info("player ready")

	if r.ready[0] && r.ready[1] && !r.starting {
		r.starting = true
		go r.beginMatch()
	}
	return nil
}

// HandlePaddleMove validates one raw paddle input, applies it and relays the
// applied position to the opponent. Adversarial input never reaches the
// simulation: non-finite values are dropped, out-of-range values clamped.
func (r *MatchRoom) HandlePaddleMove(c Sender, raw float64) {
	x, clamped, ok := ValidatePaddleX(r.cfg, raw)
	if !ok {
		metrics.PaddleRejected.Inc()
		log.WithFields(log.Fields{"room_id": r.ID, "user_id": c.UserID()}).
			Warn("dropped non-finite paddle input")
		return
	}
	if clamped {
		metrics.PaddleOutOfBounds.Inc()
		log.WithFields(log.Fields{"room_id": r.ID, "user_id": c.UserID(), "raw": raw}).
			Debug("clamped out-of-bounds paddle input")
	}

	r.mu.Lock()
	side := r.sideOfLocked(c)
	if side < 0 || r.phase == PhaseEnded || r.phase == PhaseDestroyed {
		r.mu.Unlock()
		return
	}
	if r.paddleX[side] == x {
		r.mu.Unlock()
		return
	}
	r.paddleX[side] = x
	opponent := r.players[1-side]
	r.mu.Unlock()

	opponent.Send(ServerEvent{Type: EvtOpponentPaddleMove, Data: OpponentPaddleMoveData{X: x}})
}

// HandleDisconnect destroys the room early from any phase. The survivor gets
// exactly one opponentDisconnected event; matches that never reached Ended
// are discarded without a persistence call.
func (r *MatchRoom) HandleDisconnect(c Sender) {
	r.mu.Lock()
	if r.phase == PhaseDestroyed {
		r.mu.Unlock()
		return
	}
	wasLive := r.phase == PhaseWaiting || r.phase == PhasePlaying
	r.phase = PhaseDestroyed
	r.stopLoop()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
	}
	var survivor Sender
	for _, p := range r.players {
		if p.ID() != c.ID() {
			survivor = p
		}
	}
	r.mu.Unlock()

	if wasLive {
		metrics.MatchesAbandoned.Inc()
		if survivor != nil && !survivor.Closed() {
			survivor.Send(ServerEvent{Type: EvtOpponentDisconnected})
		}
	}
	r.registry.Remove(r.ID)
	log.WithFields(log.Fields{"room_id": r.ID, "user_id": c.UserID()}).
		Info("room destroyed by disconnect")
}

// Shutdown tears the room down without notifications, for process exit.
func (r *MatchRoom) Shutdown() {
	r.mu.Lock()
	if r.phase == PhaseDestroyed {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseDestroyed
	r.stopLoop()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
	}
	r.mu.Unlock()
	r.registry.Remove(r.ID)
}

// beginMatch runs the preparation sequence and starts the simulation loop.
// Creating the session row is best effort: on failure the match proceeds and
// the final result is simply not recorded.
func (r *MatchRoom) beginMatch() {
	sessionID, err := r.store.CreateSession(models.GameTypeOnline, r.players[0].UserID(), r.players[1].UserID())
	if err != nil {
		log.WithFields(log.Fields{"room_id": r.ID}).Warnf("createSession failed: %v", err)
	} else {
		r.mu.Lock()
		r.sessionID = sessionID
		r.mu.Unlock()
	}

	name1, name2 := r.players[0].UserName(), r.players[1].UserName()
	r.players[0].Send(ServerEvent{Type: EvtStartPreparation, Data: StartPreparationData{Player1Name: name1, Player2Name: name2, IsPlayer1: true}})
	r.players[1].Send(ServerEvent{Type: EvtStartPreparation, Data: StartPreparationData{Player1Name: name1, Player2Name: name2, IsPlayer1: false}})

	for i := r.cfg.CountdownStart; i > 0; i-- {
		r.broadcast(ServerEvent{Type: EvtCountdown, Data: CountdownData{Count: i}})
		select {
		case <-time.After(r.cfg.CountdownInterval):
		case <-r.stop:
			return
		}
	}

	r.mu.Lock()
	if r.phase != PhaseWaiting {
		r.mu.Unlock()
		return
	}
	r.phase = PhasePlaying
	r.ball = randomServe()
	r.startedAt = time.Now()
	r.mu.Unlock()

	r.players[0].Send(ServerEvent{Type: EvtGameStart, Data: GameStartData{IsPlayer1: true}})
	r.players[1].Send(ServerEvent{Type: EvtGameStart, Data: GameStartData{IsPlayer1: false}})
	metrics.MatchesStarted.Inc()
	log.WithFields(log.Fields{"room_id": r.ID, "session_id": sessionID}).Info("match started")

	go r.run()
}

func (r *MatchRoom) run() {
	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick advances the simulation one step and broadcasts the resulting
// snapshot. Score updates are sent before the frame that reflects them.
func (r *MatchRoom) tick() {
	r.mu.Lock()
	if r.phase != PhasePlaying {
		r.mu.Unlock()
		return
	}

	r.stepBallLocked()

	var update *ScoreUpdateData
	thresholdHit := false
	if scorer := r.checkScoreLocked(); scorer >= 0 {
		update = &ScoreUpdateData{Player1Score: r.score[0], Player2Score: r.score[1]}
		if r.score[scorer] >= r.cfg.WinThreshold {
			thresholdHit = true
		} else {
			r.ball = randomServe()
		}
	}

	frame := r.frameLocked()
	r.mu.Unlock()

	if update != nil {
		r.broadcast(ServerEvent{Type: EvtScoreUpdate, Data: *update})
	}
	if thresholdHit {
		r.endMatch()
		return
	}
	r.broadcast(frame)
}

// stepBallLocked moves the ball and resolves wall and paddle collisions.
func (r *MatchRoom) stepBallLocked() {
	b := &r.ball
	prevZ := b.Z
	b.X += b.VX
	b.Z += b.VZ

	// Side walls reflect velocityX, magnitude unchanged.
	halfWidth := r.cfg.FieldWidth / 2
	if b.X < -halfWidth {
		b.X = -halfWidth
		b.VX = -b.VX
	} else if b.X > halfWidth {
		b.X = halfWidth
		b.VX = -b.VX
	}

	paddleHalf := r.cfg.PaddleWidth / 2
	for side := 0; side < 2; side++ {
		pz := r.paddleZ(side)
		toward := b.VZ > 0
		if side == 1 {
			toward = b.VZ < 0
		}
		if !toward {
			continue
		}
		// A fast ball covers more than the collision window in one step, so
		// test the segment it travelled rather than where it landed.
		crossed := prevZ <= pz+collisionDepth && b.Z > pz-collisionDepth
		if side == 1 {
			crossed = prevZ >= pz-collisionDepth && b.Z < pz+collisionDepth
		}
		if !crossed || math.Abs(b.X-r.paddleX[side]) >= paddleHalf {
			continue
		}

		// Invert and amplify, reposition outside the paddle to prevent
		// tunneling, and impart spin from the hit offset.
		speed := math.Min(math.Abs(b.VZ)*speedUpFactor, maxBallSpeedZ)
		if side == 0 {
			b.VZ = -speed
			b.Z = pz - collisionDepth
		} else {
			b.VZ = speed
			b.Z = pz + collisionDepth
		}
		b.VX += (b.X - r.paddleX[side]) * spinFactor
	}
}

// checkScoreLocked detects a back-boundary crossing and increments the
// opponent's score. Returns the scoring side, or -1.
func (r *MatchRoom) checkScoreLocked() int {
	halfDepth := r.cfg.FieldDepth / 2
	if r.ball.Z > halfDepth {
		// Past player1's back line: player2 scores.
		r.score[1]++
		return 1
	}
	if r.ball.Z < -halfDepth {
		r.score[0]++
		return 0
	}
	return -1
}

// endMatch performs the Playing→Ended transition exactly once. The ended
// flag is set before anything else; the loop is stopped synchronously before
// the winner is computed so no further tick can mutate the score.
func (r *MatchRoom) endMatch() bool {
	r.mu.Lock()
	if r.ended || r.phase != PhasePlaying {
		r.mu.Unlock()
		return false
	}
	r.ended = true
	r.phase = PhaseEnded
	r.stopLoop()

	score1, score2 := r.score[0], r.score[1]
	sessionID := r.sessionID
	elapsed := int(time.Since(r.startedAt).Seconds())
	winner := r.players[0]
	if score2 > score1 {
		winner = r.players[1]
	}
	r.graceTimer = time.AfterFunc(r.cfg.GraceDelay, r.release)
	r.mu.Unlock()

	metrics.MatchesCompleted.Inc()
	if sessionID != "" {
		if err := r.store.CompleteSession(sessionID, score1, score2, elapsed); err != nil {
			log.WithFields(log.Fields{"room_id": r.ID, "session_id": sessionID}).
				Warnf("completeSession failed: %v", err)
		}
	}

	r.broadcast(ServerEvent{Type: EvtGameEnd, Data: GameEndData{
		WinnerID:   winner.UserID(),
		FinalScore: FinalScore{Player1: score1, Player2: score2},
	}})
	log.WithFields(log.Fields{
		"room_id": r.ID, "winner_id": winner.UserID(),
		"score1": score1, "score2": score2, "duration_sec": elapsed,
	}).Info("match ended")
	return true
}

// release removes the room from the registry after the post-match grace
// window, so clients have time to display the result.
func (r *MatchRoom) release() {
	r.mu.Lock()
	if r.phase == PhaseDestroyed {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseDestroyed
	r.mu.Unlock()
	r.registry.Remove(r.ID)
}

func (r *MatchRoom) stopLoop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *MatchRoom) frameLocked() ServerEvent {
	ts := time.Now().UnixMilli()
	if ts <= r.lastFrameTS {
		ts = r.lastFrameTS + 1
	}
	r.lastFrameTS = ts

	return ServerEvent{Type: EvtGameState, Data: GameStateData{
		Ball:      BallPosition{X: r.ball.X, Y: r.ball.Y, Z: r.ball.Z},
		Player1:   PaddleState{X: r.paddleX[0], Score: r.score[0]},
		Player2:   PaddleState{X: r.paddleX[1], Score: r.score[1]},
		Timestamp: ts,
	}}
}

func (r *MatchRoom) paddleZ(side int) float64 {
	pz := r.cfg.FieldDepth/2 - paddleInsetZ
	if side == 1 {
		return -pz
	}
	return pz
}

func (r *MatchRoom) sideOfLocked(c Sender) int {
	for i, p := range r.players {
		if p.ID() == c.ID() {
			return i
		}
	}
	return -1
}

func (r *MatchRoom) broadcast(evt ServerEvent) {
	r.players[0].Send(evt)
	r.players[1].Send(evt)
}

// workers/queue_janitor.go
package workers

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"game-match-service/services"
)

// StartQueueJanitor periodically sweeps the matchmaking queue for players
// whose connection has dropped. Advisory maintenance: the disconnect path
// already dequeues immediately, this only catches anything that slipped
// through. The returned scheduler should be shut down on exit.
func StartQueueJanitor(queue *services.MatchmakingService, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if removed := queue.SweepDisconnected(); removed > 0 {
				log.Infof("[QueueJanitor] removed %d disconnected player(s) from queue", removed)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}

package workers

import (
	"log"
	"sync"
	"time"

	"github.com/facegate/backend/services"
)

// AbsenceSweeper periodically asks the attendance tracker to mark identities
// absent. The tracker owns the absence policy; the sweeper only owns the
// timer, so the tracker itself stays free of background goroutines.
type AbsenceSweeper struct {
	tracker  *services.AttendanceTracker
	interval time.Duration

	StopChan chan struct{}
	wg       sync.WaitGroup
}

func NewAbsenceSweeper(tracker *services.AttendanceTracker, interval time.Duration) *AbsenceSweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	sweeper := &AbsenceSweeper{
		tracker:  tracker,
		interval: interval,
		StopChan: make(chan struct{}),
	}
	sweeper.wg.Add(1)
	go sweeper.run()
	log.Printf("Started absence sweeper (interval: %s)", interval)
	return sweeper
}

func (s *AbsenceSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if marked := s.tracker.Sweep(now); marked > 0 {
				log.Printf("sweeper: marked %d identit(ies) absent", marked)
			}
		case <-s.StopChan:
			log.Println("Absence sweeper stopping: stop signal received")
			return
		}
	}
}

// Stop halts the sweeper and waits for the loop to exit
func (s *AbsenceSweeper) Stop() {
	close(s.StopChan)
	s.wg.Wait()
}

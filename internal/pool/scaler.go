package pool

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/openheavy/j1939tel/internal"
)

type scalerCfg struct {
	enabled             bool
	minWorkers          int
	maxWorkers          int
	queueDepthThreshold float64
	scaleDownFactor     float64
	scaleDownBackoff    float64
	interval            time.Duration
}

// scaler decides when a pool should start or stop workers,
// based on the pending task queue depth.
type scaler struct {
	tel *internal.Telemetry

	cfg *scalerCfg

	consecutiveScaleDown int
	scaleDownAt          float64

	startCh    chan struct{}
	stopChList []chan struct{}

	currWorkers   atomic.Int32
	activeWorkers atomic.Int32

	pendingTasks atomic.Int64
}

func newScaler(tel *internal.Telemetry, cfg *scalerCfg) *scaler {
	return &scaler{
		tel: tel,

		cfg: cfg,

		consecutiveScaleDown: 0,
		scaleDownAt:          1,

		startCh:    make(chan struct{}, cfg.maxWorkers),
		stopChList: make([]chan struct{}, 0, cfg.maxWorkers),
	}
}

func (s *scaler) initMetrics() {
	s.tel.NewUpDownCounter("worker_pool_pending_tasks", func() int64 {
		return s.pendingTasks.Load()
	})

	s.tel.NewUpDownCounter("worker_pool_active_workers", func() int64 {
		return int64(s.activeWorkers.Load())
	})
}

func (s *scaler) init(ctx context.Context, initialWorkers int) {
	for i := 0; i < s.cfg.maxWorkers; i++ {
		s.stopChList = append(s.stopChList, make(chan struct{}))
	}

	for i := 0; i < initialWorkers; i++ {
		s.sendStart(ctx)
	}

	s.currWorkers.Store(int32(initialWorkers))

	s.initMetrics()
}

func (s *scaler) run(ctx context.Context) {
	if !s.cfg.enabled {
		return
	}

	ticker := time.NewTicker(s.cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.evaluateAndScale(ctx)
		}
	}
}

func (s *scaler) evaluateAndScale(ctx context.Context) {
	currWorkers := int(s.currWorkers.Load())
	activeWorkers := s.activeWorkers.Load()
	pendingTasks := s.pendingTasks.Load()

	queueDepthPerWorker := float64(pendingTasks) / float64(currWorkers)

	s.tel.LogInfo("auto-scaling metrics",
		"active_workers", activeWorkers,
		"pending_tasks", pendingTasks,
		"queue_depth_per_worker", queueDepthPerWorker,
	)

	// Scale up if queue depth per worker is higher than target
	if queueDepthPerWorker > s.cfg.queueDepthThreshold {
		workersToAdd := max(int(math.Ceil(float64(pendingTasks)/s.cfg.queueDepthThreshold)), 1)
		targetWorkers := min(currWorkers+workersToAdd, s.cfg.maxWorkers)

		if targetWorkers > currWorkers {
			s.tel.LogInfo("scaling up", "from", currWorkers, "to", targetWorkers)
			s.scaleWorkers(ctx, targetWorkers)
		}

		s.resetScaleDownTiming()

		return
	}

	// Scale down if we have more than min workers and there are fewer pending tasks than workers
	if currWorkers > s.cfg.minWorkers && pendingTasks < int64(currWorkers) {
		if !s.checkScaleDownTiming() {
			return
		}

		workersToRemove := max(int(math.Ceil(float64(currWorkers)*s.cfg.scaleDownFactor)), 1)
		targetWorkers := max(currWorkers-workersToRemove, s.cfg.minWorkers)

		if targetWorkers < currWorkers {
			s.tel.LogInfo("scaling down", "from", currWorkers, "to", targetWorkers)
			s.scaleWorkers(ctx, targetWorkers)
		}
	}
}

func (s *scaler) resetScaleDownTiming() {
	s.consecutiveScaleDown = 0
	s.scaleDownAt = 1
}

// checkScaleDownTiming states if it is the right time to scale down
// and updates the necessary parameters
func (s *scaler) checkScaleDownTiming() bool {
	s.consecutiveScaleDown++

	if float64(s.consecutiveScaleDown) < s.scaleDownAt {
		return false
	}

	// Exponentially increase the time to scale down so
	// it gets harder to scale down when multiple consecutive
	// scales down are triggered (exponential backoff)
	nextTime := s.scaleDownAt * s.cfg.scaleDownBackoff
	s.scaleDownAt = min(nextTime, 15)

	return true
}

func (s *scaler) sendStart(ctx context.Context) {
	select {
	case <-ctx.Done():
	case s.startCh <- struct{}{}:
	}
}

func (s *scaler) sendStop(ctx context.Context, id int) {
	if id >= s.cfg.maxWorkers {
		return
	}

	select {
	case <-ctx.Done():
	case s.stopChList[id] <- struct{}{}:
	}
}

func (s *scaler) scaleWorkers(ctx context.Context, targetCount int) {
	currWorkerCount := int(s.currWorkers.Swap(int32(targetCount)))
	delta := targetCount - currWorkerCount

	if delta == 0 {
		return
	}

	if delta > 0 {
		for i := 0; i < delta; i++ {
			s.sendStart(ctx)
		}

		return
	}

	// Scale down
	for i := currWorkerCount - 1; i >= targetCount; i-- {
		s.sendStop(ctx, i)
	}
}

func (s *scaler) stop() {
	for _, stopCh := range s.stopChList {
		close(stopCh)
	}

	close(s.startCh)
}

func (s *scaler) getStartCh() <-chan struct{} {
	return s.startCh
}

func (s *scaler) getStopCh(id int) <-chan struct{} {
	return s.stopChList[id]
}

func (s *scaler) notifyWorkerStart() int {
	return int(s.activeWorkers.Add(1)) - 1
}

func (s *scaler) notifyWorkerStop() {
	s.activeWorkers.Add(-1)
}

func (s *scaler) notifyTaskAdded() {
	s.pendingTasks.Add(1)
}

func (s *scaler) notifyTaskCompleted() {
	s.pendingTasks.Add(-1)
}

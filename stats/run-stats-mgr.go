package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cevaris/ordered_map"
	c "github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// StatsManager creates step watchers and periodically dumps their stats.
type StatsManager interface {
	StatsFetcher
	AddStepWatcher(stepName string) *StepWatcher
	StartDumping()
	StopDumping()
}

// RunStatsManager implements StatsManager for one pipeline run.
// Steps are reported in the order they were added.
type RunStatsManager struct {
	ticker              *time.Ticker
	tickerDone          chan struct{}
	tickerIsRunningFlag int32
	tickerFrequency     int
	mu                  sync.Mutex
	log                 logger.Logger
	mapStepStats        *ordered_map.OrderedMap // map of step name to *StepWatcher.
}

// SetStatsDumpFrequency returns an option for NewRunStats.
// A frequency of 0 disables periodic dumping.
func SetStatsDumpFrequency(seconds int) func(t *RunStatsManager) {
	return func(t *RunStatsManager) {
		t.tickerFrequency = seconds
	}
}

// NewRunStats creates a RunStatsManager.
// Optionally supply func SetStatsDumpFrequency() to override the default stats dump frequency.
func NewRunStats(log logger.Logger, options ...func(t *RunStatsManager)) *RunStatsManager {
	t := &RunStatsManager{log: log, tickerFrequency: c.StatsCaptureFrequencySeconds}
	for _, option := range options {
		option(t)
	}
	t.mapStepStats = ordered_map.NewOrderedMap()
	return t
}

// AddStepWatcher returns the StepWatcher for stepName, creating it on first use.
func (t *RunStatsManager) AddStepWatcher(stepName string) *StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sw, ok := t.mapStepStats.Get(stepName); ok {
		return sw.(*StepWatcher)
	}
	sw := NewStepWatcher(t.log, stepName)
	t.mapStepStats.Set(stepName, sw)
	return sw
}

func (t *RunStatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if atomic.LoadInt32(&t.tickerIsRunningFlag) == 1 {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(time.Second * time.Duration(t.tickerFrequency))
	t.tickerDone = make(chan struct{})
	atomic.StoreInt32(&t.tickerIsRunningFlag, 1)
	go func(ticker *time.Ticker, done chan struct{}) {
		t.log.Debug("stats dumper ticker started")
		for {
			select {
			case <-done:
				t.log.Debug("stats dumper ticker stopped")
				return
			case <-ticker.C:
				t.logStats()
			}
		}
	}(t.ticker, t.tickerDone)
}

// StopDumping will stop the ticker and dump the current stats,
// only if the ticker was already running via a call to StartDumping().
func (t *RunStatsManager) StopDumping() {
	t.mu.Lock()
	running := atomic.LoadInt32(&t.tickerIsRunningFlag) == 1
	if running {
		atomic.StoreInt32(&t.tickerIsRunningFlag, 0)
		t.ticker.Stop()
		close(t.tickerDone) // cause the goroutine to exit (we can't close ticker.C)
	}
	t.mu.Unlock()
	if running {
		t.logStats()
	}
}

func (t *RunStatsManager) watchers() []*StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	retval := make([]*StepWatcher, 0, t.mapStepStats.Len())
	iter := t.mapStepStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Value.(*StepWatcher))
	}
	return retval
}

func (t *RunStatsManager) logStats() {
	for _, sw := range t.watchers() {
		t.log.Warn(sw.RenderStats().String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *RunStatsManager) GetStats() []Stats {
	watchers := t.watchers()
	statsList := make([]Stats, 0, len(watchers))
	for _, sw := range watchers {
		statsList = append(statsList, sw.RenderStats())
	}
	return statsList
}

// GetStatsMap returns the total rows per step.
func (t *RunStatsManager) GetStatsMap() map[string]int {
	retval := make(map[string]int)
	for _, sw := range t.watchers() {
		retval[sw.stepName] = int(sw.Rows())
	}
	return retval
}

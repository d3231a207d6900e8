package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	c "github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
)

// StepWatcher counts the rows handled by one pipeline stage and captures its throughput periodically.
// The stage calls StartWatching, AddRows as it goes and StopWatching when done.
type StepWatcher struct {
	log             logger.Logger
	stepName        string
	rowCount        int64 // rows added by the stage.
	startTime       time.Time
	rowsPerSecDelta int64
	rowsPerSecAvg   int64
	totalRows       int64
	priorRowCount   int64     // allows us to calculate delta rows per sec between ticker timeout.
	priorTime       time.Time // allows us to calculate delta rows per sec between ticker timeout.
	mu              sync.Mutex
	ticker          *time.Ticker
	tickerDone      chan struct{}
	isRunning       int32
	hasStarted      int32
}

type Stats struct {
	StepName           string `json:"stepName"`
	StatusText         string `json:"statusText"`
	StatusEmoji        string `json:"statusEmoji"`
	ElapsedTimeSec     int    `json:"elapsedTimeSec"`
	TotalRowsProcessed int    `json:"totalRowsProcessed"`
	RowsPerSecondAvg   int    `json:"rowsPerSecondAvg"`
	RowsPerSecondDelta int    `json:"rowsPerSecondDelta"`
}

func NewStepWatcher(log logger.Logger, stepName string) *StepWatcher {
	return &StepWatcher{log: log, stepName: stepName}
}

func (n *StepWatcher) StartWatching() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if atomic.LoadInt32(&n.isRunning) == 1 {
		return
	}
	n.startTime = time.Now()
	n.priorTime = n.startTime
	atomic.StoreInt32(&n.isRunning, 1)
	atomic.StoreInt32(&n.hasStarted, 1)
	n.calculateStats()
	n.ticker = time.NewTicker(time.Second * c.StatsCaptureFrequencySeconds)
	n.tickerDone = make(chan struct{})
	go func(t *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-t.C:
				n.CalculateStats()
			case <-done:
				return
			}
		}
	}(n.ticker, n.tickerDone)
}

// AddRows adds delta to the number of rows handled by the stage.
func (n *StepWatcher) AddRows(delta int) {
	atomic.AddInt64(&n.rowCount, int64(delta))
}

// Rows returns the number of rows handled so far.
func (n *StepWatcher) Rows() int64 {
	return atomic.LoadInt64(&n.rowCount)
}

func (n *StepWatcher) StopWatching() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if atomic.LoadInt32(&n.isRunning) == 0 {
		return
	}
	n.ticker.Stop()
	close(n.tickerDone) // stop the goroutine that calculates stats.
	n.calculateStats()  // force final stats calculation.
	atomic.StoreInt32(&n.isRunning, 0)
}

func (n *StepWatcher) CalculateStats() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calculateStats()
}

func (n *StepWatcher) calculateStats() {
	// Calculate time delta since we last captured stats.
	deltaTime := int64(time.Since(n.priorTime).Seconds())
	if deltaTime < 1 { // if we will cause divide by 0 error...
		deltaTime = 1 // force div by 1.
	}
	rowCount := atomic.LoadInt64(&n.rowCount)
	deltaRowCount := rowCount - atomic.LoadInt64(&n.priorRowCount)
	atomic.StoreInt64(&n.rowsPerSecDelta, deltaRowCount/deltaTime)
	n.log.Debug("STATS: ", n.stepName, " processing ", deltaRowCount/deltaTime, " rows per sec")
	// Save current values for next ticker timeout.
	atomic.StoreInt64(&n.priorRowCount, rowCount)
	n.priorTime = time.Now()
	atomic.StoreInt64(&n.totalRows, rowCount)
	atomic.StoreInt64(&n.rowsPerSecAvg, rowCount/getNumSecondsSinceTimeOrOne(n.startTime))
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	var statusText, statusEmoji string
	switch {
	case atomic.LoadInt32(&n.isRunning) == 1:
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
	case atomic.LoadInt32(&n.hasStarted) == 1:
		statusText = "complete"
		statusEmoji = "\U00002705" // green tick
	default:
		statusText = "pending"
	}
	n.mu.Lock()
	elapsed := 0
	if !n.startTime.IsZero() {
		elapsed = int(time.Since(n.startTime).Seconds())
	}
	n.mu.Unlock()
	return Stats{
		StepName:           n.stepName,
		StatusText:         statusText,
		StatusEmoji:        statusEmoji,
		ElapsedTimeSec:     elapsed,
		TotalRowsProcessed: int(atomic.LoadInt64(&n.totalRows)),
		RowsPerSecondAvg:   int(atomic.LoadInt64(&n.rowsPerSecAvg)),
		RowsPerSecondDelta: int(atomic.LoadInt64(&n.rowsPerSecDelta)),
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeSec=%v "+
			"totalRowsProcessed=%v "+
			"rowsPerSecondAvg=%v "+
			"rowsPerSecondDelta=%v",
		s.StepName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.TotalRowsProcessed,
		s.RowsPerSecondAvg,
		s.RowsPerSecondDelta,
	)
}

func getNumSecondsSinceTimeOrOne(t time.Time) (seconds int64) {
	seconds = int64(time.Since(t).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}

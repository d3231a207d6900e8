package runs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/relloyd/geniepipe/stats"
)

type RunInfo struct {
	Description string
	Cancel      context.CancelFunc
	Status      RunStatus
	Stats       stats.StatsFetcher
	Result      interface{} // populated when the run completes.
}

// RunListItem summarises one run for listing.
type RunListItem struct {
	RunId       string `json:"runId"`
	Description string `json:"runDescription"`
	Status      Status `json:"runStatus"`
}

// SafeMapRunInfo wraps a map of run id to RunInfo with locking, via Load() and Store() methods.
// At most one run may be unfinished at a time, see TryStart().
type SafeMapRunInfo struct {
	sync.RWMutex
	Internal map[string]RunInfo
}

func NewSafeMapRunInfo() *SafeMapRunInfo {
	return &SafeMapRunInfo{Internal: make(map[string]RunInfo)}
}

func (t *SafeMapRunInfo) Load(key string) (ri RunInfo, ok bool) {
	t.RLock()
	ri, ok = t.Internal[key]
	t.RUnlock()
	return
}

func (t *SafeMapRunInfo) Store(key string, value RunInfo) {
	t.Lock()
	t.Internal[key] = value
	t.Unlock()
}

func (t *SafeMapRunInfo) Delete(key string) {
	t.Lock()
	delete(t.Internal, key)
	t.Unlock()
}

// TryStart stores value under key with status starting, unless another run is unfinished.
// It returns the id of the blocking run and false in that case.
func (t *SafeMapRunInfo) TryStart(key string, value RunInfo) (blockingRunId string, ok bool) {
	t.Lock()
	defer t.Unlock()
	for k, v := range t.Internal {
		if !v.Status.IsFinished() {
			return k, false
		}
	}
	value.Status = RunStatus{Status: StatusStarting, StartTime: time.Now()}
	t.Internal[key] = value
	return "", true
}

// List returns all runs sorted by start time.
func (t *SafeMapRunInfo) List() []RunListItem {
	t.RLock()
	type item struct {
		RunListItem
		start time.Time
	}
	items := make([]item, 0, len(t.Internal))
	for k, v := range t.Internal {
		items = append(items, item{RunListItem{RunId: k, Description: v.Description, Status: v.Status.Status}, v.Status.StartTime})
	}
	t.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		if items[i].start.Equal(items[j].start) {
			return items[i].RunId < items[j].RunId
		}
		return items[i].start.Before(items[j].start)
	})
	retval := make([]RunListItem, len(items))
	for i := range items {
		retval[i] = items[i].RunListItem
	}
	return retval
}

// CancelAll calls Cancel on every unfinished run.
func (t *SafeMapRunInfo) CancelAll() int {
	t.RLock()
	defer t.RUnlock()
	n := 0
	for _, v := range t.Internal {
		if !v.Status.IsFinished() && v.Cancel != nil {
			v.Cancel()
			n++
		}
	}
	return n
}

// SetResult saves the outcome of a run.
func (t *SafeMapRunInfo) SetResult(key string, result interface{}) {
	t.Lock()
	if ri, ok := t.Internal[key]; ok {
		ri.Result = result
		t.Internal[key] = ri
	}
	t.Unlock()
}

// ConsumeStatusChanges loops until chanStatus is closed
// and updates t.Internal[runId] with any statuses received.
func (t *SafeMapRunInfo) ConsumeStatusChanges(runId string, chanStatus chan RunStatus) {
	for status := range chanStatus {
		t.Lock()
		ri := t.Internal[runId]
		switch status.Status {
		case StatusRunning:
			ri.Status.Status = status.Status
			ri.Status.StartTime = time.Now()
		case StatusComplete, StatusShutdown:
			ri.Status.Status = status.Status
			ri.Status.EndTime = time.Now()
		case StatusCompleteWithError:
			ri.Status.Status = status.Status
			ri.Status.EndTime = time.Now()
			ri.Status.Error = status.Error
		}
		t.Internal[runId] = ri
		t.Unlock()
	}
}

package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/runs"
	"github.com/relloyd/geniepipe/stats"
	"github.com/rs/xid"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

// IngestRequest is the body of POST /ingest. Missing values are taken from the server defaults.
type IngestRequest struct {
	Source  string `json:"source"`  // <connection>
	Target  string `json:"target"`  // <connection>.[<catalog>.]<schema>
	Archive string `json:"archive"` // optional s3 <connection>
	IngestSettings
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRunList struct {
	Status  WebServerResponse  `json:"status"`
	RunList []runs.RunListItem `json:"runs"`
}

type ResponseRunStats struct {
	Status       WebServerResponse `json:"status"`
	Message      string            `json:"message"`
	StatsSummary interface{}       `json:"runStats"`
}

type ResponseRunStatus struct {
	Status    WebServerResponse `json:"status"`
	Message   string            `json:"message"`
	RunStatus runs.RunStatus    `json:"runStatus"`
	Result    interface{}       `json:"result,omitempty"`
}

type ResponseRunStop struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId"`
}

type ResponseIngestLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default:
			log.Info("Stop signal already pending")
		}
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// newIngestConfig resolves req against the connections of the server.
func newIngestConfig(web *WebServerConfig, req IngestRequest) (*IngestConfig, error) {
	if web.Connections == nil {
		return nil, fmt.Errorf("no connections available")
	}
	rc := &RunConfig{
		SrcAndTgtConnections: SrcAndTgtConnections{
			Connections:  web.Connections,
			SourceString: ConnectionObject{ConnectionObject: req.Source},
			TargetString: ConnectionObject{ConnectionObject: req.Target},
		},
		ArchiveString:             ConnectionObject{ConnectionObject: req.Archive},
		LogLevel:                  web.LogLevel,
		StackDumpOnPanic:          web.StackDumpOnPanic,
		StatsDumpFrequencySeconds: web.StatsDumpFrequencySeconds,
		IngestSettings:            req.IngestSettings,
	}
	c := &IngestConfig{}
	if err := SetupIngest(rc, c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetHandlerIngestLaunch starts an ingest in the background.
// It responds with 409 Conflict while another run is unfinished.
func GetHandlerIngestLaunch(log logger.Logger, allRunInfo *runs.SafeMapRunInfo, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		req := web.Defaults
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			logAndRespond(log, err, w, http.StatusBadRequest,
				ResponseIngestLaunch{Status: Error, Message: fmt.Sprintf("error reading request: %v", err)})
			return
		}
		if len(b) > 0 {
			if err = json.Unmarshal(b, &req); err != nil { // values present in the body override the defaults.
				logAndRespond(log, err, w, http.StatusBadRequest,
					ResponseIngestLaunch{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
				return
			}
		}
		cfg, err := newIngestConfig(web, req)
		if err != nil {
			logAndRespond(log, err, w, http.StatusBadRequest,
				ResponseIngestLaunch{Status: Error, Message: fmt.Sprintf("invalid ingest request: %v", err)})
			return
		}
		runId := xid.New().String()
		ctx, cancel := context.WithCancel(context.Background())
		sm := stats.NewRunStats(log, stats.SetStatsDumpFrequency(web.StatsDumpFrequencySeconds))
		info := runs.RunInfo{
			Description: fmt.Sprintf("ingest %v into %v", req.Source, req.Target),
			Cancel:      cancel,
			Stats:       sm,
		}
		if blocking, ok := allRunInfo.TryStart(runId, info); !ok {
			cancel()
			logAndRespond(log, fmt.Errorf("run %v is in progress", blocking), w, http.StatusConflict,
				ResponseIngestLaunch{Status: Error, Message: "an ingest is already running", RunId: blocking})
			return
		}
		go launchIngest(ctx, cancel, log, allRunInfo, web.FnIngest, cfg, runId, sm)
		w.WriteHeader(http.StatusAccepted)
		respond(log, w, ResponseIngestLaunch{Status: Okay, Message: "ingest launched", RunId: runId})
	}
}

func launchIngest(ctx context.Context, cancel context.CancelFunc, log logger.Logger, allRunInfo *runs.SafeMapRunInfo,
	fn IngestFunc, cfg *IngestConfig, runId string, sm stats.StatsManager) {
	defer cancel()
	chanStatus := make(chan runs.RunStatus, 2)
	done := make(chan struct{})
	go func() {
		allRunInfo.ConsumeStatusChanges(runId, chanStatus)
		close(done)
	}()
	chanStatus <- runs.RunStatus{Status: runs.StatusRunning}
	res, err := fn(ctx, log, cfg, runId, sm)
	if res != nil {
		allRunInfo.SetResult(runId, res)
	}
	switch {
	case err != nil && ctx.Err() != nil:
		log.Warn("ingest ", runId, " stopped: ", err)
		chanStatus <- runs.RunStatus{Status: runs.StatusShutdown}
	case err != nil:
		log.Error("ingest ", runId, " failed: ", err)
		chanStatus <- runs.RunStatus{Status: runs.StatusCompleteWithError, Error: err.Error()}
	default:
		chanStatus <- runs.RunStatus{Status: runs.StatusComplete}
	}
	close(chanStatus)
	<-done
}

func GetHandlerRunStop(log logger.Logger, allRunInfo *runs.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request to stop run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStop{Status: Error, Message: "run does not exist", RunId: id})
			return
		}
		w.WriteHeader(http.StatusOK)
		if ri.Status.IsFinished() { // if the run has already finished...
			log.Info("HTTP request to stop run ", id, " that has already finished.")
			respond(log, w, ResponseRunStop{Status: Error, Message: "run already ended", RunId: id})
			return
		}
		log.Info("Stopping run ", id)
		ri.Cancel()
		respond(log, w, ResponseRunStop{Status: Okay, Message: "shutting down", RunId: id})
	}
}

func GetHandlerRunList(log logger.Logger, allRunInfo *runs.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunList{Status: Okay, RunList: allRunInfo.List()})
	}
}

func GetHandlerRunStats(log logger.Logger, allRunInfo *runs.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request to fetch stats for run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStats{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunStats{Status: Okay, StatsSummary: ri.Stats.GetStats()})
	}
}

func GetHandlerRunStatus(log logger.Logger, allRunInfo *runs.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request status of run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunStatus{Status: Okay, RunStatus: ri.Status, Result: ri.Result})
	}
}

// logAndRespond will log the error, write the status code and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, statusCode int, r interface{}) {
	log.Error(err)
	w.WriteHeader(statusCode)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Error(err)
	}
}

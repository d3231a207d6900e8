package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/runs"
	"github.com/relloyd/geniepipe/stats"
)

const (
	urlContext4Ingest   = "/ingest"
	runShutdownWaitSecs = 10
)

// IngestFunc runs one ingest. It matches Ingest.
type IngestFunc func(ctx context.Context, log logger.Logger, c *IngestConfig, runId string, sm stats.StatsManager) (*IngestResult, error)

type WebServerConfig struct {
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	Scheme                    string `errorTxt:"scheme" mandatory:"no"`
	Addr                      net.IP `errorTxt:"address" mandatory:"no"`
	Port                      int    `errorTxt:"port" mandatory:"no"`
	Connections               ConnectionHandler
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
	// Defaults are used for any value missing from the body of an ingest request.
	Defaults IngestRequest
	// FnIngest defaults to Ingest.
	FnIngest IngestFunc
}

func RunWebServer(web *WebServerConfig) error {
	// Setup logging.
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log := logger.NewLogger("geniepipe", web.LogLevel, web.StackDumpOnPanic)
	// Check if we have valid input params.
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	// Start the web server.
	srv, chanStopServer, allRunInfo := runServer(log, web)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer, allRunInfo)
}

// newRouter returns the routes of the web server.
func newRouter(log logger.Logger, web *WebServerConfig, chanStopServer chan string, allRunInfo *runs.SafeMapRunInfo) *mux.Router {
	if web.FnIngest == nil {
		web.FnIngest = Ingest
	}
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/runs").HandlerFunc(GetHandlerRunList(log, allRunInfo))
	r.Path("/runs/{runId}/stats").HandlerFunc(GetHandlerRunStats(log, allRunInfo))
	r.Path("/runs/{runId}/status").HandlerFunc(GetHandlerRunStatus(log, allRunInfo))
	r.Path("/runs/{runId}/stop").HandlerFunc(GetHandlerRunStop(log, allRunInfo))
	r.Path(urlContext4Ingest).Methods(http.MethodPost).HandlerFunc(GetHandlerIngestLaunch(log, allRunInfo, web))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
// 3) a pointer to info on the runs
func runServer(log logger.Logger, web *WebServerConfig) (*http.Server, chan string, *runs.SafeMapRunInfo) {
	chanStopServer := make(chan string, 1)
	allRunInfo := runs.NewSafeMapRunInfo()
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, web, chanStopServer, allRunInfo), // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	return srv, chanStopServer, allRunInfo
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, allRunInfo *runs.SafeMapRunInfo) error {
	// Block & wait for shutdown signals.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt, syscall.SIGTERM) // request signals be sent to chanOS.
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	// Cancel running ingests first and give them a chance to roll back.
	if n := allRunInfo.CancelAll(); n > 0 {
		log.Info("cancelled ", n, " running ingest")
		waitForRuns(allRunInfo, runShutdownWaitSecs*time.Second)
	}
	// Shutdown web server now.
	wait := time.Second * 15                                       // duration
	ctx, cancel := context.WithTimeout(context.Background(), wait) // create a timeout to wait for.
	defer cancel()                                                 // cancel the timeout.
	return srv.Shutdown(ctx)                                       // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
}

// waitForRuns polls until no run is unfinished or the timeout expires.
func waitForRuns(allRunInfo *runs.SafeMapRunInfo, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		busy := false
		for _, item := range allRunInfo.List() {
			if item.Status == runs.StatusStarting || item.Status == runs.StatusRunning {
				busy = true
				break
			}
		}
		if !busy {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}

package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/components"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/runs"
	"github.com/relloyd/geniepipe/stats"
	"github.com/sirupsen/logrus"
)

type launchResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	RunId   string `json:"runId"`
}

func post(h http.Handler, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newTestWebServer(t *testing.T, fn IngestFunc) (http.Handler, *runs.SafeMapRunInfo, chan string) {
	srv := newFakeWorkspace(t)
	web := &WebServerConfig{
		LogLevel:    "error",
		Connections: testConnections(srv, t.TempDir()),
		Defaults:    IngestRequest{Source: "ws", Target: "out", IngestSettings: NewDefaultIngestSettings()},
		FnIngest:    fn,
	}
	chanStop := make(chan string, 1)
	allRunInfo := runs.NewSafeMapRunInfo()
	return newRouter(logrus.New(), web, chanStop, allRunInfo), allRunInfo, chanStop
}

func TestWebIngestConflictWhileRunning(t *testing.T) {
	g := NewGomegaWithT(t)
	release := make(chan struct{})
	blockingIngest := func(ctx context.Context, _ logger.Logger, _ *IngestConfig, runId string, _ stats.StatsManager) (*IngestResult, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &IngestResult{RunResult: &components.RunResult{RunId: runId, Spaces: 3}}, nil
	}
	h, allRunInfo, _ := newTestWebServer(t, blockingIngest)

	rec := post(h, "/ingest", "")
	g.Expect(rec.Code).To(Equal(http.StatusAccepted))
	first := launchResponse{}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &first)).To(Succeed())
	g.Expect(first.RunId).NotTo(BeEmpty())

	rec = post(h, "/ingest", `{"skipRollups":true}`)
	g.Expect(rec.Code).To(Equal(http.StatusConflict))
	second := launchResponse{}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &second)).To(Succeed())
	g.Expect(second.RunId).To(Equal(first.RunId))

	close(release)
	g.Eventually(func() runs.Status {
		ri, _ := allRunInfo.Load(first.RunId)
		return ri.Status.Status
	}, 2*time.Second, 10*time.Millisecond).Should(Equal(runs.Status(runs.StatusComplete)))

	rec = get(h, "/runs/"+first.RunId+"/status")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"runStatus": "complete"`))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"spaces": 3`))

	// The lock is released once the run finishes.
	rec = post(h, "/ingest", "")
	g.Expect(rec.Code).To(Equal(http.StatusAccepted))
}

func TestWebIngestStop(t *testing.T) {
	g := NewGomegaWithT(t)
	waitForCancel := func(ctx context.Context, _ logger.Logger, _ *IngestConfig, _ string, _ stats.StatsManager) (*IngestResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	h, allRunInfo, _ := newTestWebServer(t, waitForCancel)
	rec := post(h, "/ingest", "")
	g.Expect(rec.Code).To(Equal(http.StatusAccepted))
	resp := launchResponse{}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())

	g.Eventually(func() int { return get(h, "/runs/"+resp.RunId+"/stop").Code }).Should(Equal(http.StatusOK))
	g.Eventually(func() runs.Status {
		ri, _ := allRunInfo.Load(resp.RunId)
		return ri.Status.Status
	}, 2*time.Second, 10*time.Millisecond).Should(Equal(runs.Status(runs.StatusShutdown)))
	g.Expect(get(h, "/runs/nope/stop").Code).To(Equal(http.StatusNotFound))
}

func TestWebIngestBadRequests(t *testing.T) {
	g := NewGomegaWithT(t)
	h, _, _ := newTestWebServer(t, nil)
	g.Expect(post(h, "/ingest", `{"target":`).Code).To(Equal(http.StatusBadRequest))
	g.Expect(post(h, "/ingest", `{"target":"nope.schema"}`).Code).To(Equal(http.StatusBadRequest))
	g.Expect(post(h, "/ingest", `{"missingKeyPolicy":"ignore"}`).Code).To(Equal(http.StatusBadRequest))
	g.Expect(get(h, "/ingest").Code).To(Equal(http.StatusMethodNotAllowed))
}

func TestWebRunsEndToEnd(t *testing.T) {
	g := NewGomegaWithT(t)
	h, allRunInfo, chanStop := newTestWebServer(t, nil) // nil uses the real Ingest against the fake workspace.
	rec := post(h, "/ingest", "")
	g.Expect(rec.Code).To(Equal(http.StatusAccepted))
	resp := launchResponse{}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
	g.Eventually(func() bool {
		ri, _ := allRunInfo.Load(resp.RunId)
		return ri.Status.IsFinished()
	}, 5*time.Second, 20*time.Millisecond).Should(BeTrue())
	ri, _ := allRunInfo.Load(resp.RunId)
	g.Expect(ri.Status.Error).To(BeEmpty())
	g.Expect(ri.Status.Status).To(Equal(runs.Status(runs.StatusComplete)))

	rec = get(h, "/runs")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(resp.RunId))
	rec = get(h, "/runs/"+resp.RunId+"/stats")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(components.StepFetchMessages))
	g.Expect(get(h, "/runs/nope/stats").Code).To(Equal(http.StatusNotFound))
	g.Expect(get(h, "/runs/nope/status").Code).To(Equal(http.StatusNotFound))
	g.Expect(get(h, "/health").Code).To(Equal(http.StatusOK))

	g.Expect(get(h, "/stop").Code).To(Equal(http.StatusOK))
	g.Expect(chanStop).To(Receive(Equal("stop")))
	g.Expect(waitForRuns(allRunInfo, time.Second)).To(BeTrue())
}

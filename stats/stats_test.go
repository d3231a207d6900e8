package stats_test

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/stats"
	"github.com/sirupsen/logrus"
)

var _ = Describe("RunStatsManager", func() {
	var (
		buf *bytes.Buffer
		mgr *stats.RunStatsManager
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		log := logrus.New()
		log.SetOutput(buf)
		mgr = stats.NewRunStats(log, stats.SetStatsDumpFrequency(60))
	})

	It("reports steps in the order they were added", func() {
		mgr.AddStepWatcher("fetch-spaces")
		mgr.AddStepWatcher("flatten")
		s := mgr.GetStats()
		Expect(s).To(HaveLen(2))
		Expect(s[0].StepName).To(Equal("fetch-spaces"))
		Expect(s[1].StepName).To(Equal("flatten"))
		Expect(s[0].StatusText).To(Equal("pending"))
	})

	It("returns the same watcher for a repeated step name", func() {
		a := mgr.AddStepWatcher("merge-genie_spaces")
		b := mgr.AddStepWatcher("merge-genie_spaces")
		Expect(a).To(BeIdenticalTo(b))
	})

	It("counts rows between start and stop", func() {
		sw := mgr.AddStepWatcher("fetch-messages")
		sw.StartWatching()
		sw.AddRows(3)
		sw.AddRows(2)
		Expect(mgr.GetStats()[0].StatusText).To(Equal("running"))
		sw.StopWatching()
		s := mgr.GetStats()[0]
		Expect(s.StatusText).To(Equal("complete"))
		Expect(s.TotalRowsProcessed).To(Equal(5))
		Expect(mgr.GetStatsMap()).To(HaveKeyWithValue("fetch-messages", 5))
	})

	It("dumps stats when stopped", func() {
		sw := mgr.AddStepWatcher("flatten")
		sw.StartWatching()
		sw.AddRows(1)
		sw.StopWatching()
		mgr.StartDumping()
		mgr.StopDumping()
		Expect(buf.String()).To(ContainSubstring("Stats for flatten complete"))
		Expect(buf.String()).To(ContainSubstring("totalRowsProcessed=1"))
	})

	It("does not dump stats when disabled", func() {
		mgr = stats.NewRunStats(logrus.New(), stats.SetStatsDumpFrequency(0))
		mgr.StartDumping()
		mgr.StopDumping()
		Expect(mgr.GetStats()).To(BeEmpty())
	})
})

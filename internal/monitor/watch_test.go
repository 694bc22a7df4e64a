package monitor_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
	"github.com/angeloszaimis/website-monitor/internal/monitor"
)

var _ = Describe("Watch", func() {
	var (
		cfg    monitor.Config
		prober *scriptedProber
		m      *monitor.Monitor
	)

	BeforeEach(func() {
		cfg = monitor.DefaultConfig()
		cfg.PollInterval = 10 * time.Millisecond
		prober = newScriptedProber(nil)
		m = monitor.New(cfg, monitor.WithProberFactory(prober.factory()))
	})

	It("should run a pass immediately and then once per interval", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			mutex  sync.Mutex
			passes [][]monitor.StatusRecord
		)
		report := func(records []monitor.StatusRecord) {
			mutex.Lock()
			defer mutex.Unlock()
			passes = append(passes, records)
		}
		countPasses := func() int {
			mutex.Lock()
			defer mutex.Unlock()
			return len(passes)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- m.Watch(ctx, []string{"http://a", "http://b"}, 40*time.Millisecond, report)
		}()

		Eventually(countPasses, "1s", "5ms").Should(BeNumerically(">=", 3))
		cancel()
		Eventually(errCh, "1s").Should(Receive(BeNil()))

		mutex.Lock()
		defer mutex.Unlock()
		// The last pass may have been cut short by cancel.
		for _, records := range passes[:3] {
			Expect(urlsOf(records)).To(ConsistOf("http://a", "http://b"))
		}
	})

	It("should stop the pass in progress when the context ends", func() {
		prober.delay = 100 * time.Millisecond
		m = monitor.New(monitor.Config{Workers: 1, PollInterval: 10 * time.Millisecond},
			monitor.WithProberFactory(prober.factory()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		var got []monitor.StatusRecord
		err := m.Watch(ctx, []string{"http://a", "http://b", "http://c"}, time.Hour, func(records []monitor.StatusRecord) {
			got = records
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(urlsOf(got)).To(Equal([]string{"http://a"}))
	})

	It("should reject a non-positive interval", func() {
		err := m.Watch(context.Background(), []string{"http://a"}, 0, nil)
		Expect(err).To(MatchError(monitor.ErrInvalidInterval))
	})

	It("should return the error of a pass that cannot start", func() {
		boom := errors.New("no client")
		m = monitor.New(cfg, monitor.WithProberFactory(func() (healthcheck.Prober, error) {
			return nil, boom
		}))

		err := m.Watch(context.Background(), []string{"http://a"}, time.Second, nil)
		Expect(err).To(MatchError(boom))
	})
})

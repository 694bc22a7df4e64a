package circuitbreaker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/website-monitor/internal/circuitbreaker"
	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

var _ = Describe("Guard", func() {
	var (
		registry *circuitbreaker.Registry
		calls    atomic.Int32
		failing  healthcheck.Prober
	)

	BeforeEach(func() {
		calls.Store(0)
		registry = circuitbreaker.NewRegistry(2, time.Hour)
		failing = healthcheck.ProberFunc(func(ctx context.Context, rawURL string) healthcheck.Outcome {
			calls.Add(1)
			return healthcheck.Failure("refused")
		})
	})

	It("should pass probes through while the breaker is closed", func() {
		guarded := circuitbreaker.Guard(failing, registry)

		Expect(guarded.Check(context.Background(), "http://a").Reason()).To(Equal("refused"))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("should fail fast once the breaker opens", func() {
		guarded := circuitbreaker.Guard(failing, registry)

		guarded.Check(context.Background(), "http://a")
		guarded.Check(context.Background(), "http://a")
		outcome := guarded.Check(context.Background(), "http://a")

		Expect(outcome.OK()).To(BeFalse())
		Expect(outcome.Reason()).To(Equal(circuitbreaker.ReasonOpen))
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("should keep targets independent", func() {
		guarded := circuitbreaker.Guard(failing, registry)

		guarded.Check(context.Background(), "http://a")
		guarded.Check(context.Background(), "http://a")
		outcome := guarded.Check(context.Background(), "http://b")

		Expect(outcome.Reason()).To(Equal("refused"))
	})

	Describe("GuardFactory", func() {
		It("should share the registry between built probers", func() {
			factory := circuitbreaker.GuardFactory(func() (healthcheck.Prober, error) {
				return failing, nil
			}, registry)

			p1, err := factory()
			Expect(err).NotTo(HaveOccurred())
			p2, err := factory()
			Expect(err).NotTo(HaveOccurred())

			p1.Check(context.Background(), "http://a")
			p2.Check(context.Background(), "http://a")

			Expect(registry.Stats()["http://a"]).To(Equal(circuitbreaker.StateOpen))
		})

		It("should propagate construction errors", func() {
			boom := errors.New("boom")
			factory := circuitbreaker.GuardFactory(func() (healthcheck.Prober, error) {
				return nil, boom
			}, registry)

			p, err := factory()
			Expect(err).To(MatchError(boom))
			Expect(p).To(BeNil())
		})
	})
})

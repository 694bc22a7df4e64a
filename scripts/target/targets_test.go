package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

var _ = Describe("Target server", func() {
	var (
		server *httptest.Server
		prober *healthcheck.HTTPProber
		ctx    context.Context
	)

	BeforeEach(func() {
		server = httptest.NewServer(newTargetHandler(2))

		var err error
		prober, err = healthcheck.NewHTTPProber(time.Second, 5)
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	It("should answer /ok with 200 and a request id", func() {
		resp, err := http.Get(server.URL + "/ok")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("X-Request-Id")).NotTo(BeEmpty())
	})

	It("should answer with the requested status", func() {
		Expect(prober.Check(ctx, server.URL+"/status/503")).To(Equal(healthcheck.Success(503)))
	})

	It("should reject an invalid status", func() {
		Expect(prober.Check(ctx, server.URL+"/status/999").StatusCode()).To(Equal(http.StatusBadRequest))
	})

	It("should follow redirects to /ok", func() {
		Expect(prober.Check(ctx, server.URL+"/redirect/3")).To(Equal(healthcheck.Success(200)))
	})

	It("should exceed a small redirect limit", func() {
		strict, err := healthcheck.NewHTTPProber(time.Second, 1)
		Expect(err).NotTo(HaveOccurred())

		Expect(strict.Check(ctx, server.URL+"/redirect/3").OK()).To(BeFalse())
	})

	It("should time out on /slow", func() {
		fast, err := healthcheck.NewHTTPProber(50*time.Millisecond, 5)
		Expect(err).NotTo(HaveOccurred())

		Expect(fast.Check(ctx, server.URL+"/slow?delay=1s").OK()).To(BeFalse())
	})

	It("should fail requests to /drop", func() {
		Expect(prober.Check(ctx, server.URL+"/drop").OK()).To(BeFalse())
	})

	It("should drop every second request to /flaky", func() {
		Expect(prober.Check(ctx, server.URL+"/flaky").OK()).To(BeTrue())
		Expect(prober.Check(ctx, server.URL+"/flaky").OK()).To(BeFalse())
		Expect(prober.Check(ctx, server.URL+"/flaky").OK()).To(BeTrue())
	})
})

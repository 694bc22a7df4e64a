package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/website-monitor/pkg/logger"
)

var _ = Describe("Logger", func() {
	var (
		buf *bytes.Buffer
		ctx context.Context
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		ctx = context.Background()
	})

	Describe("New", func() {
		It("should default to info for invalid level", func() {
			log := logger.New("invalid", false, "dev", buf)
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New("debug", false, "dev", buf)

			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New("warn", false, "dev", buf)

			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New("ERROR", false, "dev", buf)

			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelError)).To(BeTrue())
		})

		It("should write text outside prod", func() {
			log := logger.New("info", false, "dev", buf)
			log.Info("Run started", slog.Int("targets", 3))

			Expect(buf.String()).To(ContainSubstring(`msg="Run started"`))
			Expect(buf.String()).To(ContainSubstring("targets=3"))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})

		It("should write JSON in prod", func() {
			log := logger.New("info", false, "prod", buf)
			log.Info("Run finished", slog.Int("records", 2))

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry).To(HaveKeyWithValue("msg", "Run finished"))
			Expect(entry).To(HaveKeyWithValue("records", BeNumerically("==", 2)))
			Expect(entry).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should support addSource option", func() {
			log := logger.New("info", true, "prod", buf)
			log.Info("hello")

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry).To(HaveKey(slog.SourceKey))
		})
	})
})

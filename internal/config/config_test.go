package config_test

import (
	"testing"

	"github.com/okian/valora/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "data.csv")
			convey.So(cfg.ArtifactDir, convey.ShouldEqual, "models")
			convey.So(cfg.TrainQueueSize, convey.ShouldEqual, 16)
			convey.So(cfg.JobCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.ChurnThresholdDays, convey.ShouldEqual, 90)
			convey.So(cfg.ManualChurnThreshold, convey.ShouldEqual, 500)
			convey.So(cfg.LearningRate, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.Epochs, convey.ShouldBeGreaterThan, 0)
		})
	})
}

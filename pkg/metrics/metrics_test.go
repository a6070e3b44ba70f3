package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			So(func() {
				RecordRowsNormalized(10)
				RecordRowsDeduplicated(2)
				RecordCellsImputed(3)
				RecordRowDropped()
				RecordSchemaDetection("transaction_log")
				RecordSchemaFailure()
			}, ShouldNotPanic)
		})

		Convey("When recording training metrics", func() {
			So(func() {
				RecordTrainingRun("success")
				RecordTrainingRun("failure")
				RecordTrainingDuration(123.4)
				RecordTrainingJobDuplicate()
				RecordArtifactSwap()
			}, ShouldNotPanic)
		})

		Convey("When recording prediction metrics", func() {
			So(func() {
				RecordPrediction("value")
				RecordPrediction("churn")
				RecordPredictionLatency(5.0)
				RecordPredictionError("artifact_not_found")
				RecordManualEstimate()
			}, ShouldNotPanic)
		})

		Convey("When updating queue and worker gauges", func() {
			So(func() {
				UpdateQueueSize(1)
				UpdateQueueCapacity(16)
				UpdateQueueUtilization(0.0625)
				RecordQueueEnqueue()
				RecordQueueReject()
				UpdateWorkerCount(1)
			}, ShouldNotPanic)
		})

		Convey("When recording store and HTTP metrics", func() {
			So(func() {
				RecordStoreSaveLatency(2.5)
				RecordStoreLoadLatency(1.5)
				RecordStoreError("save")
				RecordHTTPRequest("predict-value", "POST", "200")
				RecordHTTPRequestDuration("predict-value", "POST", "200", 12)
				RecordErrorByComponent("trainer", "exhausted")
				RecordErrorByEndpoint("train", "POST", "server_error")
			}, ShouldNotPanic)
		})

		Convey("When updating system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordPrediction("value")
					RecordPredictionLatency(float64(j))
					UpdateQueueSize(j)
				}
			}()
		}
		wg.Wait()

		Convey("Then the registry should still be usable", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

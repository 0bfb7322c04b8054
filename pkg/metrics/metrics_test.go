package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("paint"),
				WithHistogramBuckets([]float64{1, 5}),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"scene": "lobby"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)

				manager.captures.WithLabelValues("captured").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_paint_captures_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "avatarpaint")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalRefreshInterval(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then its refresh interval is the default", func() {
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(RefreshInterval(), ShouldEqual, globalManager.RefreshInterval())
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording paint metrics", func() {
			before := testutil.ToFloat64(globalManager.effectsApplied.WithLabelValues("colorize"))
			RecordEffectApplied("colorize")
			RecordEffectApplied("colorize")

			Convey("Then counters advance", func() {
				after := testutil.ToFloat64(globalManager.effectsApplied.WithLabelValues("colorize"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When setting gauges", func() {
			UpdateCacheEntries(7)
			UpdateQueueCapacity(64)
			UpdateComponents("armed", 2)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.components.WithLabelValues("armed")), ShouldEqual, 2)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordCapture("captured")
				RecordCapture("duplicate")
				RecordCacheEviction()
				RecordCacheForget()
				RecordRouteAborted("hidden")
				RecordMaterialWrites(4)
				RecordHandlerPanic("volume")
				RecordDispatchLatency(0.3)
				RecordEventDelivered("collision")
				UpdateQueueSize(3)
				RecordQueueEnqueueError("queue_full")
				RecordHTTPRequest("/events", "POST", "202")
				RecordHTTPRequestDuration("/events", "POST", "202", 1.5)
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "avatarpaint_material_writes_total")
				So(joined, ShouldContainSubstring, "avatarpaint_dispatch_latency_milliseconds")
			})
		})
	})
}

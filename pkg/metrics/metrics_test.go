package metrics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a fresh metrics manager", t, func() {
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("Then it should expose a usable registry", func() {
			So(m.Registry(), ShouldNotBeNil)

			families, err := m.Registry().Gather()
			So(err, ShouldBeNil)
			// No observations yet, so only vec-free instruments appear.
			So(families, ShouldNotBeNil)
		})

		Convey("When recording business events on the manager instruments", func() {
			m.dimensionsScored.Inc()
			m.forecastsComputed.Inc()
			m.activeSessions.Set(3)

			Convey("Then gathering should include the namespaced metrics", func() {
				families, err := m.Registry().Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_dimensions_scored_total"], ShouldBeTrue)
				So(names["test_unit_forecasts_computed_total"], ShouldBeTrue)
				So(names["test_unit_active_sessions"], ShouldBeTrue)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When using the package-level helpers", func() {
			So(func() {
				RecordDimensionScored()
				RecordOverviewBuilt()
				RecordClusterAggregate()
				RecordForecast()
				RecordForecastRejected()
				RecordSimilarityQuery()
				UpdateActiveSessions(1)
				UpdateHistoryRecords(10)
				RecordStoreRead(1.5)
				RecordCacheHit()
				RecordCacheMiss()
				RecordHTTPRequest("overview", "GET", "200")
				RecordHTTPRequestDuration("overview", "GET", 2.0)
				RecordHTTPError("overview", "client_error")
			}, ShouldNotPanic)
		})

		Convey("Then the global registry should be reachable", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

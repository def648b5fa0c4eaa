package competency_test

import (
	"testing"
	"time"

	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// twoClusterCatalog keeps the arithmetic in tests easy to follow.
func twoClusterCatalog(inverted ...string) *competency.Catalog {
	c, err := competency.NewCatalog([]competency.Cluster{
		{ID: 1, Name: "Fachkompetenz"},
		{ID: 2, Name: "Methodenkompetenz"},
	}, inverted)
	if err != nil {
		panic(err)
	}
	return c
}

func TestClusterValues(t *testing.T) {
	Convey("Given a catalog with an inverted item", t, func() {
		cat := twoClusterCatalog("1B02")

		Convey("When aggregating a response", func() {
			rec := competency.ResponseRecord{
				Profile: "p-1",
				TakenAt: time.Now(),
				Scores: map[string]float64{
					"1A01": 2, // plain: contributes 2
					"1B02": 2, // inverted: contributes 6-2 = 4
					"2A01": 3,
					"2A02": 4,
				},
			}
			values, err := cat.ClusterValues(rec)

			Convey("Then inverted items should contribute their reflection", func() {
				So(err, ShouldBeNil)
				So(values, ShouldResemble, []float64{3.0, 3.5})
			})
		})

		Convey("When the mean needs rounding", func() {
			rec := competency.ResponseRecord{
				Scores: map[string]float64{
					"1A01": 2, "1A02": 2, "1A03": 3, // mean 2.333...
					"2A01": 5,
				},
			}
			values, err := cat.ClusterValues(rec)

			Convey("Then values should round to one decimal", func() {
				So(err, ShouldBeNil)
				So(values[0], ShouldEqual, 2.3)
			})
		})

		Convey("When a catalog cluster has no scores in the response", func() {
			rec := competency.ResponseRecord{Scores: map[string]float64{"1A01": 3}}
			_, err := cat.ClusterValues(rec)

			Convey("Then the guarded division should surface a typed error", func() {
				So(err, ShouldWrap, competency.ErrEmptyCluster)
			})
		})

		Convey("When a raw score is out of the 1–5 range", func() {
			rec := competency.ResponseRecord{Scores: map[string]float64{"1A01": 6, "2A01": 3}}
			_, err := cat.ClusterValues(rec)
			So(err, ShouldWrap, competency.ErrScoreOutOfRange)
		})

		Convey("When a question id has no cluster prefix", func() {
			rec := competency.ResponseRecord{Scores: map[string]float64{"A01": 3, "2A01": 3}}
			_, err := cat.ClusterValues(rec)
			So(err, ShouldWrap, competency.ErrUnknownCluster)
		})

		Convey("When a question id names a cluster outside the catalog", func() {
			rec := competency.ResponseRecord{Scores: map[string]float64{"9A01": 3, "1A01": 3, "2A01": 3}}
			_, err := cat.ClusterValues(rec)
			So(err, ShouldWrap, competency.ErrUnknownCluster)
		})
	})

	Convey("Given the default catalog", t, func() {
		cat := competency.DefaultCatalog()

		Convey("Then it should carry eleven clusters in stable order", func() {
			So(cat.Size(), ShouldEqual, 11)
			So(cat.Names()[0], ShouldEqual, "Fachkompetenz")
			So(cat.Names()[10], ShouldEqual, "Lernfähigkeit")
		})
	})
}

func TestDifferences(t *testing.T) {
	Convey("Given profile and requirement vectors", t, func() {
		names := []string{"Fachkompetenz", "Methodenkompetenz", "Sozialkompetenz"}

		Convey("When the profile exceeds the requirement on one cluster and falls short on another", func() {
			profile := []float64{4, 1, 3}
			role := []float64{2, 4, 3}
			diffs := competency.Differences(names, profile, role)

			Convey("Then deltas should be signed and sorted ascending", func() {
				So(diffs, ShouldResemble, []types.Difference{
					{Cluster: "Methodenkompetenz", Delta: -3},
					{Cluster: "Sozialkompetenz", Delta: 0},
					{Cluster: "Fachkompetenz", Delta: 2},
				})
			})
		})

		Convey("When either side is empty", func() {
			So(competency.Differences(names, nil, []float64{1, 2, 3}), ShouldBeNil)
			So(competency.Differences(names, []float64{1, 2, 3}, nil), ShouldBeNil)
		})

		Convey("When vector lengths do not line up", func() {
			So(competency.Differences(names, []float64{1, 2}, []float64{1, 2, 3}), ShouldBeNil)
		})
	})
}

func TestDevelopmentGap(t *testing.T) {
	Convey("Given profile and role delta tables in different orders", t, func() {
		profileDeltas := []types.Difference{
			{Cluster: "Fachkompetenz", Delta: 1.0},
			{Cluster: "Methodenkompetenz", Delta: 0.5},
		}
		roleDeltas := []types.Difference{
			{Cluster: "Methodenkompetenz", Delta: 1.5},
			{Cluster: "Fachkompetenz", Delta: 0.5},
		}

		Convey("When computing the development gap", func() {
			gaps := competency.DevelopmentGap(profileDeltas, roleDeltas)

			Convey("Then the join must be by cluster name, not position", func() {
				So(gaps, ShouldResemble, []types.Difference{
					{Cluster: "Methodenkompetenz", Delta: -1.0},
					{Cluster: "Fachkompetenz", Delta: 0.5},
				})
			})
		})

		Convey("When a cluster exists on one side only", func() {
			gaps := competency.DevelopmentGap(profileDeltas, []types.Difference{
				{Cluster: "Fachkompetenz", Delta: 0.25},
				{Cluster: "Führung", Delta: 2},
			})

			Convey("Then unmatched clusters should be dropped", func() {
				So(gaps, ShouldResemble, []types.Difference{
					{Cluster: "Fachkompetenz", Delta: 0.75},
				})
			})
		})

		Convey("When either table is empty", func() {
			So(competency.DevelopmentGap(nil, roleDeltas), ShouldBeNil)
			So(competency.DevelopmentGap(profileDeltas, nil), ShouldBeNil)
		})
	})
}

package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/stufe/internal/domain/answer"
	"github.com/okian/stufe/internal/domain/model"
	"github.com/okian/stufe/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// dim builds a dimension whose levels hold the given numbers of questions.
// Question ids are L<level>Q<index>.
func dim(questionsPerLevel ...int) model.Dimension {
	d := model.Dimension{Code: "TD1.1", Name: "Testdimension", DefaultTarget: 3}
	for li, n := range questionsPerLevel {
		lvl := model.Level{Number: li + 1, Name: "Stufe"}
		for qi := 0; qi < n; qi++ {
			lvl.Questions = append(lvl.Questions, model.Question{
				ID: q(li+1, qi+1),
			})
		}
		d.Levels = append(d.Levels, lvl)
	}
	return d
}

func q(level, idx int) string {
	return "L" + string(rune('0'+level)) + "Q" + string(rune('0'+idx))
}

func TestDimensionMaturity(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		eng := scoring.New()

		Convey("When every question in every level is fully answered", func() {
			d := dim(2, 2, 1, 1, 1)
			answers := answer.Set{}
			for _, lvl := range d.Levels {
				for _, question := range lvl.Questions {
					answers[question.ID] = answer.Applicable(1.0)
				}
			}

			Convey("Then maturity should be exactly 5.0", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 5.0)
			})
		})

		Convey("When level 1 is answered entirely with the lowest label", func() {
			d := dim(3, 2)
			answers := answer.Set{}
			for _, question := range d.Levels[0].Questions {
				answers[question.ID] = answer.Applicable(0.0)
			}
			// Higher levels complete, but gating must ignore them.
			for _, question := range d.Levels[1].Questions {
				answers[question.ID] = answer.Applicable(1.0)
			}

			Convey("Then maturity should be 0.0, never negative", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 0.0)
			})
		})

		Convey("When all of level 1 is not applicable", func() {
			d := dim(2, 1)
			answers := answer.Set{
				q(1, 1): answer.NotApplicable,
				q(1, 2): answer.NotApplicable,
				q(2, 1): answer.Applicable(1.0),
			}

			Convey("Then the whole dimension should be NaN regardless of other levels", func() {
				So(math.IsNaN(eng.DimensionMaturity(d, answers)), ShouldBeTrue)
			})
		})

		Convey("When a level above 1 is entirely not applicable", func() {
			d := dim(1, 1, 1)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				q(2, 1): answer.NotApplicable,
				q(3, 1): answer.Applicable(1.0),
			}

			Convey("Then the ladder should end before that level", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 1.0)
			})
		})

		Convey("When an unanswered question shares a level with answered ones", func() {
			d := dim(2)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				// q(1,2) left unanswered: counts as 0.0, stays in denominator.
			}

			Convey("Then the unanswered question should drag the average down", func() {
				// avg = (1.0 + 0.0) / 2 = 0.5 -> floor(0.5*4)/4 = 0.5
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 0.5)
			})
		})

		Convey("When a question is not applicable instead of unanswered", func() {
			d := dim(2)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				q(1, 2): answer.NotApplicable,
			}

			Convey("Then the denominator should shrink and the level be fully reached", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 1.0)
			})
		})

		Convey("When the raw maturity falls between grid steps", func() {
			// Level 1 and 2 fully reached, level 3 avg = 0.97 -> raw 2.97.
			d := dim(1, 1, 1)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				q(2, 1): answer.Applicable(1.0),
				q(3, 1): answer.Applicable(0.97),
			}

			Convey("Then rounding should always go down to the quarter grid", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 2.75)
			})
		})

		Convey("When a level average sits just below 1.0 from floating error", func() {
			d := dim(3)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				q(1, 2): answer.Applicable(1.0),
				q(1, 3): answer.Applicable(0.9999),
			}

			Convey("Then the tolerant threshold should still count it fully reached", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 1.0)
			})
		})

		Convey("When gating stops at a partial level", func() {
			// Level 1 fully reached, level 2 partial at 0.5.
			d := dim(1, 1)
			answers := answer.Set{
				q(1, 1): answer.Applicable(1.0),
				q(2, 1): answer.Applicable(0.5),
			}

			Convey("Then raw 1.5 should survive the grid unchanged", func() {
				So(eng.DimensionMaturity(d, answers), ShouldEqual, 1.5)
			})
		})

		Convey("When the dimension has no levels at all", func() {
			d := model.Dimension{Code: "TD9.9", Name: "leer"}

			Convey("Then the result should degrade to 0.0, not fail", func() {
				So(eng.DimensionMaturity(d, answer.Set{}), ShouldEqual, 0.0)
			})
		})

		Convey("When no question is answered anywhere", func() {
			d := dim(2, 2)

			Convey("Then the result should be 0.0", func() {
				So(eng.DimensionMaturity(d, answer.Set{}), ShouldEqual, 0.0)
			})
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("Given an engine with a stricter fully-reached threshold", t, func() {
		eng := scoring.New(scoring.WithFullyReachedThreshold(1.0))
		d := dim(3, 1)
		answers := answer.Set{
			q(1, 1): answer.Applicable(1.0),
			q(1, 2): answer.Applicable(1.0),
			q(1, 3): answer.Applicable(0.9999),
			q(2, 1): answer.Applicable(1.0),
		}

		Convey("Then 0.9999 average should no longer count as fully reached", func() {
			// avg level 1 = 0.99996... < 1.0 -> partial, floor to 0.75.
			So(eng.DimensionMaturity(d, answers), ShouldEqual, 0.75)
		})
	})

	Convey("Given out-of-range threshold options", t, func() {
		eng := scoring.New(scoring.WithFullyReachedThreshold(-1), scoring.WithFullyReachedThreshold(2))
		d := dim(1)
		answers := answer.Set{q(1, 1): answer.Applicable(1.0)}

		Convey("Then the default threshold should remain in effect", func() {
			So(eng.DimensionMaturity(d, answers), ShouldEqual, 1.0)
		})
	})
}

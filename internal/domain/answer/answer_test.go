package answer_test

import (
	"testing"

	"github.com/okian/stufe/internal/domain/answer"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecode(t *testing.T) {
	Convey("Given the five-point questionnaire scale", t, func() {
		cases := map[string]float64{
			"Gar nicht":             0.0,
			"In wenigen Fällen":     0.25,
			"In ein paar Fällen":    0.5,
			"In den meisten Fällen": 0.75,
			"Vollständig":           1.0,
		}

		Convey("Then known labels should decode to their scores", func() {
			for label, want := range cases {
				v, ok := answer.Decode(label)
				So(ok, ShouldBeTrue)
				So(v.Kind, ShouldEqual, answer.KindApplicable)
				So(v.Score, ShouldEqual, want)
			}
		})

		Convey("Then decoding should be case- and whitespace-insensitive", func() {
			v, ok := answer.Decode("  VOLLSTÄNDIG ")
			So(ok, ShouldBeTrue)
			So(v.Score, ShouldEqual, 1.0)
		})

		Convey("Then 'Nicht anwendbar' should decode to the not-applicable sentinel", func() {
			v, ok := answer.Decode("Nicht anwendbar")
			So(ok, ShouldBeTrue)
			So(v.Kind, ShouldEqual, answer.KindNotApplicable)
		})

		Convey("Then an empty label should decode to unanswered", func() {
			v, ok := answer.Decode("")
			So(ok, ShouldBeTrue)
			So(v.Kind, ShouldEqual, answer.KindUnanswered)
		})

		Convey("Then free-text drift should degrade to score zero, flagged unrecognized", func() {
			v, ok := answer.Decode("weiß nicht")
			So(ok, ShouldBeFalse)
			So(v.Kind, ShouldEqual, answer.KindApplicable)
			So(v.Score, ShouldEqual, 0.0)
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Given the label list for presentation", t, func() {
		labels := answer.Labels()
		So(len(labels), ShouldEqual, 5)

		Convey("Then every listed label should decode as applicable", func() {
			prev := -1.0
			for _, l := range labels {
				v, ok := answer.Decode(l)
				So(ok, ShouldBeTrue)
				So(v.Kind, ShouldEqual, answer.KindApplicable)
				So(v.Score, ShouldBeGreaterThan, prev)
				prev = v.Score
			}
		})
	})
}

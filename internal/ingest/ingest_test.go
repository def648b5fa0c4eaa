package ingest

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stufe/internal/domain/competency"
)

func TestReadResponses(t *testing.T) {
	Convey("Given a profile-response table", t, func() {
		Convey("Valid rows decode into typed records", func() {
			input := strings.Join([]string{
				"Zeitpunkt,Profil,Rolle,1A01,1A02,2B01",
				"15.03.2024 10:30,p-1,Entwickler,3,4,2",
				"15.03.2025 09:00,p-1,Entwickler,4,5,3",
			}, "\n")

			recs, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Profile, ShouldEqual, "p-1")
			So(recs[0].Role, ShouldEqual, "Entwickler")
			So(recs[0].TakenAt, ShouldResemble, time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC))
			So(recs[0].Scores, ShouldResemble, map[string]float64{"1A01": 3, "1A02": 4, "2B01": 2})
			So(recs[1].Scores["1A02"], ShouldEqual, 5)
		})

		Convey("Empty score cells are skipped", func() {
			input := "Zeitpunkt,Profil,Rolle,1A01,1A02\n15.03.2024 10:30,p-1,,3,\n"

			recs, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldBeNil)
			So(recs[0].Scores, ShouldResemble, map[string]float64{"1A01": 3})
		})

		Convey("Localized decimal commas are accepted", func() {
			input := "Zeitpunkt,Profil,Rolle,1A01\n15.03.2024 10:30,p-1,Entwickler,\"3,5\"\n"

			recs, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldBeNil)
			So(recs[0].Scores["1A01"], ShouldEqual, 3.5)
		})

		Convey("A missing required column is a typed failure", func() {
			input := "Zeitpunkt,Profil,1A01\n15.03.2024 10:30,p-1,3\n"

			_, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldWrap, ErrMissingColumn)
		})

		Convey("A malformed timestamp is a typed failure", func() {
			input := "Zeitpunkt,Profil,Rolle,1A01\n2024-03-15,p-1,Entwickler,3\n"

			_, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldWrap, ErrMalformedTimestamp)
		})

		Convey("An out-of-range score is a typed failure", func() {
			input := "Zeitpunkt,Profil,Rolle,1A01\n15.03.2024 10:30,p-1,Entwickler,7\n"

			_, err := ReadResponses(strings.NewReader(input))
			So(err, ShouldWrap, ErrMalformedScore)
		})

		Convey("A header-only table is a typed failure", func() {
			_, err := ReadResponses(strings.NewReader("Zeitpunkt,Profil,Rolle,1A01\n"))
			So(err, ShouldWrap, ErrEmptyInput)
		})
	})
}

func TestReadRequirements(t *testing.T) {
	Convey("Given a role-requirement table", t, func() {
		catalog, err := competency.NewCatalog([]competency.Cluster{
			{ID: 1, Name: "Fachkompetenz"},
			{ID: 2, Name: "Methodenkompetenz"},
		}, nil)
		So(err, ShouldBeNil)

		Convey("Vectors come back in catalog cluster order", func() {
			input := strings.Join([]string{
				"Zeitpunkt,Rolle,Methodenkompetenz,Fachkompetenz",
				"15.03.2024 10:30,Teamleiter,2,4",
			}, "\n")

			reqs, err := ReadRequirements(strings.NewReader(input), catalog)
			So(err, ShouldBeNil)
			So(len(reqs), ShouldEqual, 1)
			So(reqs[0].Role, ShouldEqual, "Teamleiter")
			So(reqs[0].Values, ShouldResemble, []float64{4, 2})
		})

		Convey("A missing cluster column is a typed failure", func() {
			input := "Zeitpunkt,Rolle,Fachkompetenz\n15.03.2024 10:30,Teamleiter,4\n"

			_, err := ReadRequirements(strings.NewReader(input), catalog)
			So(err, ShouldWrap, ErrMissingColumn)
		})
	})
}

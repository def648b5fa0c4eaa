package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/stufe/internal/adapters/http/api"
	service "github.com/okian/stufe/internal/app"
	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer() (*httptest.Server, *service.Service) {
	svc := service.New(service.WithHorizonYears(3))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	So(err, ShouldBeNil)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	So(err, ShouldBeNil)
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	So(err, ShouldBeNil)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(buf))
	So(err, ShouldBeNil)
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	return resp
}

func decodeJSON(resp *http.Response, v any) {
	defer func() { _ = resp.Body.Close() }()
	So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
}

func demoScores(level float64) map[string]float64 {
	scores := make(map[string]float64)
	for _, c := range competency.DefaultCatalog().Clusters() {
		scores[fmt.Sprintf("%dA01", c.ID)] = level
	}
	return scores
}

func TestSessionEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, svc := newTestServer()
		defer ts.Close()
		defer svc.Stop()

		Convey("POST /sessions creates a session", func() {
			resp := postJSON(t, ts.URL+"/sessions", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			var sess struct {
				ID string `json:"id"`
			}
			decodeJSON(resp, &sess)
			So(sess.ID, ShouldNotBeEmpty)

			Convey("Answers and targets flow into the overview", func() {
				resp := postJSON(t, ts.URL+"/sessions/"+sess.ID+"/answers", map[string]any{
					"answers": map[string]string{
						"TD1.1-L1Q1": "Vollständig",
						"TD1.1-L1Q2": "Vollständig",
					},
				})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var ack struct {
					Accepted     int      `json:"accepted"`
					Unrecognized []string `json:"unrecognized"`
				}
				decodeJSON(resp, &ack)
				So(ack.Accepted, ShouldEqual, 2)
				So(ack.Unrecognized, ShouldBeEmpty)

				resp = putJSON(t, ts.URL+"/sessions/"+sess.ID+"/target", map[string]any{"target": 4.0})
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_ = resp.Body.Close()

				resp, err := http.Get(ts.URL + "/sessions/" + sess.ID + "/overview")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var rows []map[string]any
				decodeJSON(resp, &rows)
				So(len(rows), ShouldEqual, 4)
				So(rows[0]["code"], ShouldEqual, "TD1.1")
				So(rows[0]["target_level"], ShouldEqual, 4.0)
			})

			Convey("Invalid targets are rejected", func() {
				resp := putJSON(t, ts.URL+"/sessions/"+sess.ID+"/target", map[string]any{"target": 3.3})
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				_ = resp.Body.Close()
			})

			Convey("DELETE ends the session", func() {
				req, err := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+sess.ID, nil)
				So(err, ShouldBeNil)
				resp, err := http.DefaultClient.Do(req)
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_ = resp.Body.Close()

				getResp, err := http.Get(ts.URL + "/sessions/" + sess.ID + "/overview")
				So(err, ShouldBeNil)
				So(getResp.StatusCode, ShouldEqual, http.StatusNotFound)
				_ = getResp.Body.Close()
			})
		})

		Convey("Unknown sessions return 404", func() {
			resp, err := http.Get(ts.URL + "/sessions/missing/overview")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = resp.Body.Close()
		})
	})
}

func TestCompetencyEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, svc := newTestServer()
		defer ts.Close()
		defer svc.Stop()

		submit := func(profile string, year int, level float64) {
			resp := postJSON(t, ts.URL+"/responses", map[string]any{
				"profile":  profile,
				"role":     "Entwickler",
				"taken_at": fmt.Sprintf("%d-06-01T12:00:00Z", year),
				"scores":   demoScores(level),
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			_ = resp.Body.Close()
		}
		require := func(role string, year int, level float64) {
			values := make([]float64, 11)
			for i := range values {
				values[i] = level
			}
			resp := postJSON(t, ts.URL+"/requirements", map[string]any{
				"role":     role,
				"taken_at": fmt.Sprintf("%d-06-01T12:00:00Z", year),
				"values":   values,
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			_ = resp.Body.Close()
		}

		Convey("Responses aggregate into cluster vectors", func() {
			resp := postJSON(t, ts.URL+"/responses", map[string]any{
				"profile":  "p-1",
				"role":     "Entwickler",
				"taken_at": "2024-06-01T12:00:00Z",
				"scores":   demoScores(3),
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			var ack struct {
				Created bool      `json:"created"`
				Values  []float64 `json:"values"`
			}
			decodeJSON(resp, &ack)
			So(ack.Created, ShouldBeTrue)
			So(len(ack.Values), ShouldEqual, 11)
			So(ack.Values[0], ShouldEqual, 3.0)
		})

		Convey("Out-of-range scores are rejected", func() {
			resp := postJSON(t, ts.URL+"/responses", map[string]any{
				"profile":  "p-1",
				"taken_at": "2024-06-01T12:00:00Z",
				"scores":   map[string]float64{"1A01": 9},
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = resp.Body.Close()
		})

		Convey("Malformed timestamps are rejected", func() {
			resp := postJSON(t, ts.URL+"/responses", map[string]any{
				"profile":  "p-1",
				"taken_at": "01.06.2024",
				"scores":   demoScores(3),
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = resp.Body.Close()
		})

		Convey("Differences compare profile against role", func() {
			submit("p-1", 2024, 3)
			require("Entwickler", 2024, 4)

			resp, err := http.Get(ts.URL + "/differences?profile=p-1&profile_at=2024-06-01T12:00:00Z&role=Entwickler&role_at=2024-06-01T12:00:00Z")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var diffs []struct {
				Cluster string  `json:"cluster"`
				Delta   float64 `json:"delta"`
			}
			decodeJSON(resp, &diffs)
			So(len(diffs), ShouldEqual, 11)
			So(diffs[0].Delta, ShouldEqual, -1.0)
		})

		Convey("Missing history yields an empty table", func() {
			resp, err := http.Get(ts.URL + "/differences?profile=ghost&profile_at=2024-06-01T12:00:00Z&role=ghost&role_at=2024-06-01T12:00:00Z")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var diffs []any
			decodeJSON(resp, &diffs)
			So(diffs, ShouldBeEmpty)
		})

		Convey("Forecast requires at least two observations", func() {
			submit("p-short", 2024, 3)
			require("Entwickler", 2023, 4)
			require("Entwickler", 2024, 4)

			resp := postJSON(t, ts.URL+"/forecast", map[string]any{
				"profile": "p-short",
				"role":    "Entwickler",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
			_ = resp.Body.Close()
		})

		Convey("Forecast projects the horizon with overlays", func() {
			submit("p-1", 2023, 2)
			submit("p-1", 2024, 3)
			require("Entwickler", 2023, 4)
			require("Entwickler", 2024, 4)

			resp := postJSON(t, ts.URL+"/forecast", map[string]any{
				"profile": "p-1",
				"role":    "Entwickler",
				"trends":  []int{5},
			})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var result struct {
				Years   []int `json:"years"`
				Profile []struct {
					Year   int       `json:"year"`
					Values []float64 `json:"values"`
				} `json:"profile"`
				Role []struct {
					Year   int       `json:"year"`
					Values []float64 `json:"values"`
				} `json:"role"`
			}
			decodeJSON(resp, &result)
			So(result.Years, ShouldResemble, []int{2025, 2026, 2027})
			So(result.Profile[0].Values[0], ShouldEqual, 4.0)
			// Flat requirement of 4 with strong growth drifts +0.1 per step.
			So(result.Role[0].Values[0], ShouldEqual, 4.1)
			So(result.Role[2].Values[0], ShouldAlmostEqual, 4.3, 1e-9)
		})

		Convey("Similarity ranks neighbors and validates input", func() {
			submit("p-1", 2024, 3)
			submit("p-2", 2024, 3)
			submit("p-3", 2024, 5)

			resp, err := http.Get(ts.URL + "/similar/profiles?profile=p-1&metric=euclidean")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var matches []struct {
				Identity   string  `json:"identity"`
				Similarity float64 `json:"similarity_pct"`
			}
			decodeJSON(resp, &matches)
			So(len(matches), ShouldEqual, 2)
			So(matches[0].Identity, ShouldEqual, "p-2")
			So(matches[0].Similarity, ShouldEqual, 100.0)

			badResp, err := http.Get(ts.URL + "/similar/profiles?metric=euclidean")
			So(err, ShouldBeNil)
			So(badResp.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = badResp.Body.Close()

			badMetric, err := http.Get(ts.URL + "/similar/profiles?profile=p-1&metric=cosine")
			So(err, ShouldBeNil)
			So(badMetric.StatusCode, ShouldEqual, http.StatusBadRequest)
			_ = badMetric.Body.Close()
		})

		Convey("Stats and health endpoints respond", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var stats map[string]any
			decodeJSON(resp, &stats)
			So(stats["started"], ShouldBeTrue)

			health, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			So(health.StatusCode, ShouldEqual, http.StatusOK)
			_ = health.Body.Close()
		})
	})
}

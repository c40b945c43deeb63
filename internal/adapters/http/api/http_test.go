package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ratecards/internal/adapters/http/api"
	"github.com/okian/ratecards/internal/adapters/repository"
	"github.com/okian/ratecards/internal/domain/benchmark"
	"github.com/okian/ratecards/internal/domain/model"
)

type mockDeps struct {
	store      *repository.MemoryStore
	triggerErr error
	triggered  int
}

func (m *mockDeps) Trigger(ctx context.Context) (*repository.Run, error) {
	if m.triggerErr != nil {
		return nil, m.triggerErr
	}
	m.triggered++
	run := &repository.Run{ID: uuid.New(), Status: repository.StatusRunning, StartedAt: time.Now().UTC()}
	if err := m.store.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (m *mockDeps) Store() repository.Store { return m.store }

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"running": false, "stored_runs": 1}
}

func row(doc string, loc model.LocationType, level string, price string) model.NormalizedRow {
	r := model.NormalizedRow{SourceDocumentID: doc, LevelCode: "1", LevelName: level, LocationType: loc}
	r.Prices[model.StrategyAndArchitecture] = price
	return r
}

func succeededRun() *repository.Run {
	finished := time.Now().UTC()
	return &repository.Run{
		ID:         uuid.New(),
		Status:     repository.StatusSucceeded,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: &finished,
		Documents:  1,
		Single: []model.NormalizedRow{
			row("acme_gcloud_1", model.Onshore, "Follow", "1300"),
			row("acme_gcloud_1", model.Offshore, "Follow", "400"),
		},
		Gold: &model.GoldTable{
			LevelNames: []string{"Follow"},
			Rows: []model.GoldRow{
				{RateCardID: 1, Company: "acme", LocationType: model.Onshore, Levels: map[string]string{"Follow": "1300"}},
			},
		},
		Benchmark: &benchmark.Report{Samples: 100, Seed: 42},
	}
}

func newServer(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newServer(&mockDeps{store: repository.NewMemoryStore()})

		Convey("GET /healthz serves prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ratecards_pipeline")
		})

		Convey("GET /stats returns the provider snapshot", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["stored_runs"], ShouldEqual, float64(1))
		})
	})
}

func TestRunsEndpoints(t *testing.T) {
	Convey("Given an API server with an empty store", t, func() {
		deps := &mockDeps{store: repository.NewMemoryStore()}
		mux := newServer(deps)

		Convey("GET /runs/latest is 404", func() {
			w := do(mux, http.MethodGet, "/runs/latest")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("POST /runs accepts a run", func() {
			w := do(mux, http.MethodPost, "/runs")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.triggered, ShouldEqual, 1)

			var run repository.Run
			So(json.Unmarshal(w.Body.Bytes(), &run), ShouldBeNil)
			So(run.Status, ShouldEqual, repository.StatusRunning)
			So(w.Header().Get("Location"), ShouldEqual, "/runs/"+run.ID.String())

			Convey("and GET /runs/{id} returns it", func() {
				w := do(mux, http.MethodGet, "/runs/"+run.ID.String())
				So(w.Code, ShouldEqual, http.StatusOK)
				var got repository.Run
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.ID, ShouldEqual, run.ID)
			})

			Convey("and GET /runs lists it", func() {
				w := do(mux, http.MethodGet, "/runs?limit=5")
				So(w.Code, ShouldEqual, http.StatusOK)
				var runs []repository.Run
				So(json.Unmarshal(w.Body.Bytes(), &runs), ShouldBeNil)
				So(runs, ShouldHaveLength, 1)
			})
		})

		Convey("POST /runs while a run is in progress is 409", func() {
			deps.triggerErr = repository.ErrRunInProgress
			w := do(mux, http.MethodPost, "/runs")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "run_in_progress")
		})

		Convey("POST /runs failing otherwise is 500", func() {
			deps.triggerErr = errors.New("disk full")
			w := do(mux, http.MethodPost, "/runs")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("GET /runs/{id} with a malformed id is 400", func() {
			w := do(mux, http.MethodGet, "/runs/not-a-uuid")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /runs/{id} with an unknown id is 404", func() {
			w := do(mux, http.MethodGet, "/runs/"+uuid.NewString())
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("GET /runs with a bad limit is 400", func() {
			So(do(mux, http.MethodGet, "/runs?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/runs?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET on POST-only routes is rejected", func() {
			w := do(mux, http.MethodDelete, "/runs")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRateCardEndpoints(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{store: repository.NewMemoryStore()}
		mux := newServer(deps)

		Convey("without a successful run every dataset is 404", func() {
			for _, path := range []string{"/ratecards", "/ratecards/ranges", "/ratecards/gold", "/benchmark"} {
				So(do(mux, http.MethodGet, path).Code, ShouldEqual, http.StatusNotFound)
			}
		})

		Convey("with a successful run", func() {
			So(deps.store.Save(context.Background(), succeededRun()), ShouldBeNil)

			Convey("GET /ratecards returns every single-price row", func() {
				w := do(mux, http.MethodGet, "/ratecards")
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []model.NormalizedRow
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
			})

			Convey("GET /ratecards?location=offshore filters rows", func() {
				w := do(mux, http.MethodGet, "/ratecards?location=offshore")
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []model.NormalizedRow
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Prices[model.StrategyAndArchitecture], ShouldEqual, "400")
			})

			Convey("GET /ratecards?location=moon is 400", func() {
				So(do(mux, http.MethodGet, "/ratecards?location=moon").Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("GET /ratecards/ranges returns an empty list", func() {
				w := do(mux, http.MethodGet, "/ratecards/ranges")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})

			Convey("GET /ratecards/gold returns the pivot", func() {
				w := do(mux, http.MethodGet, "/ratecards/gold")
				So(w.Code, ShouldEqual, http.StatusOK)
				var gold model.GoldTable
				So(json.Unmarshal(w.Body.Bytes(), &gold), ShouldBeNil)
				So(gold.LevelNames, ShouldResemble, []string{"Follow"})
				So(gold.Rows[0].Levels["Follow"], ShouldEqual, "1300")
			})

			Convey("GET /benchmark returns the report", func() {
				w := do(mux, http.MethodGet, "/benchmark")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"seed":42`)
			})

			Convey("a later failed run does not hide the datasets", func() {
				failed := &repository.Run{ID: uuid.New(), Status: repository.StatusFailed, StartedAt: time.Now().UTC().Add(time.Minute)}
				So(deps.store.Save(context.Background(), failed), ShouldBeNil)
				So(do(mux, http.MethodGet, "/ratecards/gold").Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

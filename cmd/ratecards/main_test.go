package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/ratecards/internal/adapters/csvio"
	"github.com/okian/ratecards/internal/config"
	"github.com/okian/ratecards/internal/fixtures"
	"github.com/okian/ratecards/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// withWorkspace points every configured path into a temp dir holding
// three generated rate cards.
func withWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "bronze")
	cards := fixtures.Generate(&fixtures.Config{Cards: 3, Seed: 9, Offshore: true})
	if err := fixtures.WriteCards(context.Background(), in, cards); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RATECARDS_INPUT_DIR", in)
	t.Setenv("RATECARDS_SILVER_PATH", filepath.Join(root, "silver", "silver.csv"))
	t.Setenv("RATECARDS_PRICE_RANGE_PATH", filepath.Join(root, "silver", "ranges.csv"))
	t.Setenv("RATECARDS_GOLD_PATH", filepath.Join(root, "gold", "gold.csv"))
	t.Setenv("RATECARDS_BENCHMARK_PATH", filepath.Join(root, "gold", "benchmark.json"))
	t.Setenv("RATECARDS_DIM_PATH", filepath.Join(root, "gold", "dim.csv"))
	t.Setenv("RATECARDS_WORKER_COUNT", "2")
	t.Setenv("RATECARDS_MC_SAMPLES", "200")
	return root
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given pipeline settings in the environment", t, func() {
		t.Setenv("RATECARDS_ADDR", ":8080")
		t.Setenv("RATECARDS_QUEUE_SIZE", "16")
		t.Setenv("RATECARDS_SYNONYM_MODE", "per_column")

		convey.Convey("Then setup loads them over the defaults", func() {
			cfg, err := setup(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
			convey.So(cfg.SynonymMode, convey.ShouldEqual, "per_column")
			convey.So(cfg.Signature, convey.ShouldEqual, config.New().Signature)
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := config.New()
		cfg.InputDir = t.TempDir()

		convey.Convey("buildService wires a service without a database", func() {
			svc, cleanup, err := buildService(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			defer cleanup()
			convey.So(svc, convey.ShouldNotBeNil)
			convey.So(svc.Running(), convey.ShouldBeFalse)
		})

		convey.Convey("an unknown signature is rejected", func() {
			cfg.Signature = "nope"
			_, _, err := buildService(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("an unknown engine is rejected", func() {
			cfg.Engine = "ocr"
			_, _, err := buildService(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRunCommand(t *testing.T) {
	convey.Convey("Given generated rate cards", t, func() {
		root := withWorkspace(t)

		convey.Convey("When running the pipeline once", func() {
			out, err := execute("run")

			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "succeeded")
			for _, p := range []string{"silver/silver.csv", "silver/ranges.csv", "gold/gold.csv", "gold/dim.csv", "gold/benchmark.json"} {
				_, statErr := os.Stat(filepath.Join(root, p))
				convey.So(statErr, convey.ShouldBeNil)
			}

			dim, err := csvio.ReadFile(filepath.Join(root, "gold", "dim.csv"), csvio.ReadDimension)
			convey.So(err, convey.ShouldBeNil)
			convey.So(dim, convey.ShouldHaveLength, 3)

			convey.Convey("And rebuilding from the silver dataset succeeds", func() {
				out, err := execute("rebuild")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "succeeded")
				convey.So(out, convey.ShouldContainSubstring, "0 range rows")
			})
		})
	})
}

func TestDimCommand(t *testing.T) {
	convey.Convey("Given generated rate cards without a dimension table", t, func() {
		root := withWorkspace(t)

		out, err := execute("dim")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "1\tvendor01_gcloud_2023")

		dim, err := csvio.ReadFile(filepath.Join(root, "gold", "dim.csv"), csvio.ReadDimension)
		convey.So(err, convey.ShouldBeNil)
		convey.So(dim, convey.ShouldHaveLength, 3)
	})
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("version prints the build version", t, func() {
		out, err := execute("version")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldEqual, "ratecards version dev\n")
	})
}

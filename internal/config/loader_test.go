package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/ratecards/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"RATECARDS_CONFIG",
	"RATECARDS_ADDR",
	"RATECARDS_WORKER_COUNT",
	"RATECARDS_SYNONYM_MODE",
	"RATECARDS_MC_SEED",
	"RATECARDS_ENGINE",
	"RATECARDS_STRICT_LAYOUTS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New()

		convey.Convey("Then it has the documented defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Signature, convey.ShouldEqual, "tabula-sfia-v1")
			convey.So(cfg.SynonymMode, convey.ShouldEqual, "exact")
			convey.So(cfg.MCSamples, convey.ShouldEqual, 5000)
			convey.So(cfg.ReferenceMinRate, convey.ShouldEqual, 350)
			convey.So(cfg.ReferenceMaxRate, convey.ShouldEqual, 1350)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Engine, convey.ShouldEqual, "auto")
			convey.So(cfg.StrictLayouts, convey.ShouldBeTrue)
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("RATECARDS_ADDR", ":8080")
			_ = os.Setenv("RATECARDS_WORKER_COUNT", "3")
			_ = os.Setenv("RATECARDS_SYNONYM_MODE", "per_column")
			_ = os.Setenv("RATECARDS_MC_SEED", "7")
			_ = os.Setenv("RATECARDS_STRICT_LAYOUTS", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.SynonymMode, convey.ShouldEqual, "per_column")
				convey.So(cfg.MCSeed, convey.ShouldEqual, 7)
				convey.So(cfg.StrictLayouts, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a YAML file is named", func() {
			path := filepath.Join(t.TempDir(), "ratecards.yaml")
			body := "input_dir: /data/cards\nqueue_size: 16\nengine: xlsx\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RATECARDS_CONFIG", path)
			_ = os.Setenv("RATECARDS_ENGINE", "csv")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file applies and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InputDir, convey.ShouldEqual, "/data/cards")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.Engine, convey.ShouldEqual, "csv")
			})
		})

		convey.Convey("When the YAML file is missing", func() {
			_ = os.Setenv("RATECARDS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("RATECARDS_ENGINE", "ocr")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given reference rates in the wrong order", t, func() {
		cfg := config.New()
		cfg.ReferenceMinRate = 2000

		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
	})

	convey.Convey("Given a malformed database url", t, func() {
		cfg := config.New()
		cfg.DatabaseURL = "not a url"

		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

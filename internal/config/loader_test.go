package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/avatarpaint/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.Paint.Volumes.Colorize.Curve, convey.ShouldEqual, "linear")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("AVATARPAINT_ADDR", ":8080")
			_ = os.Setenv("AVATARPAINT_QUEUE_SIZE", "64")
			_ = os.Setenv("AVATARPAINT_CACHE_SIZE", "500")
			_ = os.Setenv("AVATARPAINT_SHUTDOWN_TIMEOUT", "2s")
			_ = os.Setenv("AVATARPAINT_PAINT__DEBUG", "true")
			_ = os.Setenv("AVATARPAINT_PAINT__EMISSIVE_LEVEL", "8.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.CacheSize, convey.ShouldEqual, 500)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.Paint.Debug, convey.ShouldBeTrue)
				convey.So(cfg.Paint.EmissiveLevel, convey.ShouldEqual, 8.5)
			})
		})

		convey.Convey("When paint lists come from environment variables", func() {
			_ = os.Setenv("AVATARPAINT_PAINT__VOLUMES__PAINT_TRIGGERS", "red-pool, blue-pool")
			_ = os.Setenv("AVATARPAINT_PAINT__VOLUMES__PAINT_COLORS", "#ff0000,#0000ff")
			_ = os.Setenv("AVATARPAINT_PAINT__BUTTONS__PAINT_PROMPTS", "Paint me red")

			cfg, err := config.Load(ctx)

			convey.Convey("Then comma-separated values become lists", func() {
				convey.So(err, convey.ShouldBeNil)
				v := cfg.Paint.Volumes
				convey.So(v.PaintTriggers, convey.ShouldResemble, []string{"red-pool", "blue-pool"})
				convey.So(v.PaintColors, convey.ShouldResemble, []string{"#ff0000", "#0000ff"})
				convey.So(v.Configured(), convey.ShouldBeTrue)
				convey.So(cfg.Paint.Buttons.PaintPrompts, convey.ShouldResemble, []string{"Paint me red"})
			})

			convey.Convey("And an env list replaces the file list", func() {
				tmpFile := createTempConfigFile(t, `
paint:
  volumes:
    paint_triggers: [a, b, c]
`)
				_ = os.Setenv("AVATARPAINT_CONFIG", tmpFile)
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Paint.Volumes.PaintTriggers, convey.ShouldResemble, []string{"red-pool", "blue-pool"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
queue_size: 300
paint:
  volumes:
    paint_triggers: [red-pool, blue-pool]
    paint_colors: ["#ff0000", "#0000ff"]
    cleanser_trigger: shower
    cleanse:
      duration: 1500ms
      curve: ease-out
  buttons:
    paint_buttons: [green]
    paint_prompts: [Paint me green]
    paint_colors: ["#00ff00"]
`)
			_ = os.Setenv("AVATARPAINT_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 300)
				v := cfg.Paint.Volumes
				convey.So(v.PaintTriggers, convey.ShouldResemble, []string{"red-pool", "blue-pool"})
				convey.So(v.PaintColors, convey.ShouldResemble, []string{"#ff0000", "#0000ff"})
				convey.So(v.Cleanse.Duration, convey.ShouldEqual, 1500*time.Millisecond)
				convey.So(v.Cleanse.Curve, convey.ShouldEqual, "ease-out")
				convey.So(v.Randomize.Duration, convey.ShouldEqual, 3*time.Second)
				convey.So(v.Configured(), convey.ShouldBeTrue)
				convey.So(cfg.Paint.Buttons.PaintPrompts, convey.ShouldResemble, []string{"Paint me green"})
				convey.So(cfg.Paint.Buttons.RandomPrompt, convey.ShouldEqual, "Randomize Avatar Material Colors")
			})

			convey.Convey("And env overrides the file", func() {
				_ = os.Setenv("AVATARPAINT_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When paint lists do not line up", func() {
			tmpFile := createTempConfigFile(t, `
paint:
  volumes:
    paint_triggers: [a, b, c]
    paint_colors: ["#ff0000", "#0000ff"]
`)
			_ = os.Setenv("AVATARPAINT_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading still succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Paint.Volumes.PaintTriggers, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("AVATARPAINT_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("AVATARPAINT_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("AVATARPAINT_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue size is zero", func() {
			_ = os.Setenv("AVATARPAINT_QUEUE_SIZE", "0")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("AVATARPAINT_LOG_LEVEL", "chatty")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("AVATARPAINT_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"AVATARPAINT_CONFIG",
		"AVATARPAINT_ADDR",
		"AVATARPAINT_QUEUE_SIZE",
		"AVATARPAINT_CACHE_SIZE",
		"AVATARPAINT_LOG_LEVEL",
		"AVATARPAINT_SHUTDOWN_TIMEOUT",
		"AVATARPAINT_PAINT__DEBUG",
		"AVATARPAINT_PAINT__EMISSIVE_LEVEL",
		"AVATARPAINT_PAINT__VOLUMES__PAINT_TRIGGERS",
		"AVATARPAINT_PAINT__VOLUMES__PAINT_COLORS",
		"AVATARPAINT_PAINT__BUTTONS__PAINT_PROMPTS",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

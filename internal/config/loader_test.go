package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/valora/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "data.csv")
				convey.So(cfg.ArtifactDir, convey.ShouldEqual, "models")
				convey.So(cfg.ArtifactKeepSets, convey.ShouldEqual, 3)
				convey.So(cfg.ChurnThresholdDays, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VALORA_ADDR", ":8080")
			_ = os.Setenv("VALORA_DATASET_PATH", "/srv/reference.csv")
			_ = os.Setenv("VALORA_ARTIFACT_DIR", "/var/lib/valora")
			_ = os.Setenv("VALORA_CHURN_THRESHOLD_DAYS", "120")
			_ = os.Setenv("VALORA_ARTIFACT_KEEP_SETS", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "/srv/reference.csv")
				convey.So(cfg.ArtifactDir, convey.ShouldEqual, "/var/lib/valora")
				convey.So(cfg.ArtifactKeepSets, convey.ShouldEqual, 5)
				convey.So(cfg.ChurnThresholdDays, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
dataset_path: "reference.csv"
train_queue_size: 4
epochs: 100
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VALORA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep defaults for the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "reference.csv")
				convey.So(cfg.TrainQueueSize, convey.ShouldEqual, 4)
				convey.So(cfg.Epochs, convey.ShouldEqual, 100)
				convey.So(cfg.ArtifactDir, convey.ShouldEqual, "models")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
train_queue_size: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VALORA_CONFIG", tmpFile)
			_ = os.Setenv("VALORA_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TrainQueueSize, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("VALORA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("VALORA_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative artifact retention", func() {
			_ = os.Setenv("VALORA_ARTIFACT_KEEP_SETS", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "artifact_keep_sets")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive learning rate", func() {
			_ = os.Setenv("VALORA_LEARNING_RATE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "learning_rate")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("VALORA_TRAIN_QUEUE_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"VALORA_CONFIG",
		"VALORA_ADDR",
		"VALORA_DATASET_PATH",
		"VALORA_ARTIFACT_DIR",
		"VALORA_ARTIFACT_KEEP_SETS",
		"VALORA_TRAIN_QUEUE_SIZE",
		"VALORA_JOB_CACHE_SIZE",
		"VALORA_CHURN_THRESHOLD_DAYS",
		"VALORA_LEARNING_RATE",
		"VALORA_EPOCHS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "valora-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

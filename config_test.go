package datarepo_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/datarepo"
	"github.com/go-arrower/datarepo/alog"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := datarepo.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the example config file!

	assert.Equal(t, datarepo.LocalEnv, datarepo.Environment(vip.GetString("environment")))

	assert.Equal(t, "info", vip.GetString("log.level"))
	assert.Equal(t, "text", vip.GetString("log.format"))

	assert.Empty(t, vip.GetString("seed.file"))
}

func TestDefaultViper_Unmarshal(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conf := datarepo.Config{}

		err := datarepo.DefaultViper().Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, datarepo.Config{
			Environment: datarepo.LocalEnv,
			Log:         datarepo.Log{Level: slog.LevelInfo, Format: datarepo.TextFormat},
			Seed:        datarepo.Seed{File: ""},
		}, conf)
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		vip := datarepo.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := datarepo.Config{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, datarepo.TestEnv, conf.Environment)
		assert.Equal(t, alog.LevelDebug, conf.Log.Level)
		assert.Equal(t, datarepo.JSONFormat, conf.Log.Format)
		assert.Equal(t, "./testdata/users.yaml", conf.Seed.File)
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := datarepo.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := datarepo.Config{}

		err = vip.Unmarshal(&conf)
		assert.ErrorIs(t, err, datarepo.ErrConfigLoadFailed, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: local, test, dev, prod",
			"error message should list out all accepted environments")
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()

		vip := datarepo.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-level.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := datarepo.Config{}

		err = vip.Unmarshal(&conf)
		assert.ErrorIs(t, err, datarepo.ErrConfigLoadFailed)
		assert.Contains(t, err.Error(), `invalid log level "loud"`)
	})

	t.Run("format is case insensitive", func(t *testing.T) {
		t.Parallel()

		vip := datarepo.DefaultViper()
		vip.Set("log.format", "JSON")

		conf := datarepo.Config{}

		err := vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, datarepo.JSONFormat, conf.Log.Format)
	})

	t.Run("custom config", func(t *testing.T) {
		t.Parallel()

		type MyConfig struct {
			SomeStructField struct{ A string }
			datarepo.Config `mapstructure:",squash"`
		}

		vip := datarepo.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := MyConfig{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, datarepo.TestEnv, conf.Environment)
		assert.Equal(t, "./testdata/users.yaml", conf.Seed.File)
	})
}

func TestDefaultViper_Env(t *testing.T) {
	// t.Setenv does not allow t.Parallel

	t.Setenv("DATAREPO_LOG_LEVEL", "warn")
	t.Setenv("DATAREPO_ENVIRONMENT", "prod")

	conf := datarepo.Config{}

	err := datarepo.DefaultViper().Unmarshal(&conf)
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, conf.Log.Level)
	assert.Equal(t, datarepo.ProductionEnv, conf.Environment)
}

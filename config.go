package datarepo

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/datarepo/alog"
)

// Config is a structure used for the configuration of the datarepo cli.
// It is intended to be mapped by viper.
type Config struct {
	Environment Environment `mapstructure:"environment"`

	Log  Log  `mapstructure:"log"`
	Seed Seed `mapstructure:"seed"`
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

// LogFormats is the list of all supported log output formats.
func LogFormats() []LogFormat {
	return []LogFormat{TextFormat, JSONFormat}
}

type LogFormat string

type (
	Log struct {
		Level  slog.Level `mapstructure:"level"  json:"level"`
		Format LogFormat  `mapstructure:"format" json:"format"`
	}

	Seed struct {
		// File is the path of a yaml file with the records to load.
		File string `mapstructure:"file" json:"file"`
	}
)

// EnvPrefix is the prefix of all environment variables overwriting the configuration,
// e.g. DATAREPO_LOG_LEVEL=debug.
const EnvPrefix = "DATAREPO"

// DefaultViper returns a new viper instance with all default values
// from Config set. Environment variables with the EnvPrefix take precedence over config files.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("environment", "local")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "text")

	vip.SetDefault("seed.file", "")

	return &Viper{Viper: vip}
}

var ErrConfigLoadFailed = errors.New("loading configuration failed")

// Viper is a wrapper around viper.Viper for configuration loading.
// The only purpose is to overwrite the Unmarshal method,
// so that the custom types of Config are decoded and validated
// without the developer having to think about it when using DefaultViper.
type Viper struct {
	*viper.Viper
}

func (vip *Viper) Unmarshal(rawVal any, opts ...viper.DecoderConfigOption) error {
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		allowedValuesHookFunc(Environments()),
		allowedValuesHookFunc(LogFormats()),
		logLevelHookFunc(),
	))

	err := vip.Viper.Unmarshal(rawVal, append([]viper.DecoderConfigOption{hooks}, opts...)...)
	if err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", ErrConfigLoadFailed, err)
	}

	return nil
}

// allowedValuesHookFunc rejects all values of the string type T, that are not in allowed.
func allowedValuesHookFunc[T ~string](allowed []T) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (interface{}, error) {
		if t != reflect.TypeOf(T("")) {
			return data, nil
		}

		s, ok := data.(string)
		if ok && slices.Contains(allowed, T(strings.ToLower(s))) {
			return strings.ToLower(s), nil
		}

		e := make([]string, 0, len(allowed))
		for _, v := range allowed {
			e = append(e, string(v))
		}

		return data, fmt.Errorf("value %v is not allowed, use one of: %s", data, strings.Join(e, ", ")) //nolint:err113,lll // accept dynamic error
	}
}

// logLevelHookFunc decodes levels like "info", "warn+2", or "datarepo:debug" into a slog.Level.
func logLevelHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (interface{}, error) {
		if t != reflect.TypeOf(slog.Level(0)) || f.Kind() != reflect.String {
			return data, nil
		}

		level, err := alog.ParseLevel(data.(string)) //nolint:forcetypeassert // kind is checked above
		if err != nil {
			return data, err //nolint:wrapcheck // wrapped by Unmarshal
		}

		return level, nil
	}
}

package profile

import (
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/engine/fast"
	"github.com/kbukum/httpbridge/engine/nethttp"
	"github.com/kbukum/httpbridge/errors"
)

// Factory builds an engine from profile settings.
type Factory func(settings map[string]any) (engine.Engine, error)

// NetHTTP builds a net/http engine.
func NetHTTP(settings map[string]any) (engine.Engine, error) {
	var cfg nethttp.Config
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	e, err := nethttp.New(cfg)
	if err != nil {
		return nil, errors.Validation(err.Error()).WithCause(err)
	}
	return e, nil
}

// FastHTTP builds a fasthttp engine.
func FastHTTP(settings map[string]any) (engine.Engine, error) {
	var cfg fast.Config
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	e, err := fast.New(cfg)
	if err != nil {
		return nil, errors.Validation(err.Error()).WithCause(err)
	}
	return e, nil
}

// decodeSettings decodes settings into out. Durations are accepted as
// strings ("2s") or integer milliseconds.
func decodeSettings(settings map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(MillisHook(), mapstructure.StringToTimeDurationHookFunc()),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Internal(err)
	}
	if err := dec.Decode(settings); err != nil {
		return errors.InvalidInput("profile", err.Error()).WithCause(err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// MillisHook decodes numbers and numeric strings into time.Duration as
// milliseconds.
func MillisHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int32:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case uint:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v * float64(time.Millisecond)), nil
		case string:
			if ms, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(ms * float64(time.Millisecond)), nil
			}
		}
		return data, nil
	}
}

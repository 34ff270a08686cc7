package config

import (
	"fmt"

	"github.com/spf13/viper"

	"okx-trading-core/pkg/types"
)

// profileEntry mirrors one instrument's row in instrument_profiles.yaml.
type profileEntry struct {
	InstrumentID string  `mapstructure:"instrument_id"`
	SizeDigits   int     `mapstructure:"size_digits"`
	PriceDigits  int     `mapstructure:"price_digits"`
	SizeScale    float64 `mapstructure:"size_scale"`
}

// LoadInstrumentProfiles reads the static per-instrument precision metadata
// from a YAML file (a list under the "profiles" key) into an immutable map.
// Called once at startup; a missing or unparseable file is a configuration
// error and therefore fatal, per the spec's error handling policy.
func LoadInstrumentProfiles(path string) (map[types.InstrumentID]types.InstrumentProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read instrument profiles: %w", err)
	}

	var parsed struct {
		Profiles []profileEntry `mapstructure:"profiles"`
	}
	if err := v.Unmarshal(&parsed); err != nil {
		return nil, fmt.Errorf("unmarshal instrument profiles: %w", err)
	}

	profiles := make(map[types.InstrumentID]types.InstrumentProfile, len(parsed.Profiles))
	for _, p := range parsed.Profiles {
		if p.InstrumentID == "" {
			return nil, fmt.Errorf("instrument profile missing instrument_id")
		}
		if p.SizeScale <= 0 {
			return nil, fmt.Errorf("instrument profile %s: size_scale must be > 0", p.InstrumentID)
		}
		profiles[types.InstrumentID(p.InstrumentID)] = types.InstrumentProfile{
			SizeDigits:  p.SizeDigits,
			PriceDigits: p.PriceDigits,
			SizeScale:   p.SizeScale,
		}
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("instrument profiles file %s defines no profiles", path)
	}
	return profiles, nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides: NOBEL_CACHE_TTL -> cache_ttl.
const EnvPrefix = "NOBEL_"

// legacyEnv maps unprefixed variables onto config keys. Prefixed variables
// win over these.
var legacyEnv = map[string]string{
	"LOG_LEVEL":  "log_level",
	"OUTPUT_DIR": "output_dir",
}

// Resolve merges three flat layers, cli over env over defaults, and returns
// the validated result. Nil values in any layer are ignored.
func Resolve(defaults, envLayer, cli map[string]any) (Config, error) {
	k := koanf.New(".")

	for _, layer := range []struct {
		name   string
		values map[string]any
	}{
		{"defaults", defaults},
		{"env", envLayer},
		{"cli", cli},
	} {
		if err := k.Load(confmap.Provider(compact(layer.values), "."), nil); err != nil {
			return Config{}, fmt.Errorf("load %s layer: %w", layer.name, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads .env (if present), the optional config file, and the
// environment, then resolves them together with cli. configFile falls back
// to NOBEL_CONFIG when empty.
func Load(_ context.Context, configFile string, cli map[string]any) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	base := koanf.New(".")
	if err := base.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "CONFIG")
	}
	if configFile != "" {
		// JSON is valid YAML, so one parser covers both file types.
		if err := base.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	envLayer, err := Environ()
	if err != nil {
		return Config{}, err
	}

	return Resolve(base.All(), envLayer, cli)
}

// Environ collects the environment layer.
func Environ() (map[string]any, error) {
	out := make(map[string]any)

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok {
			out[key] = v
		}
	}
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		out["addr"] = ":" + strings.TrimPrefix(port, ":")
	}

	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	for key, v := range k.All() {
		if key == "config" {
			continue
		}
		out[key] = v
	}
	return out, nil
}

func compact(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

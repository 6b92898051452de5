package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix scopes the environment variables this package reads.
const EnvPrefix = "APIKIT_"

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	envFile string
}

// WithEnvFile overlays a .env file before environment binding.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads the YAML configuration at path, overlays the optional .env file
// and any APIKIT_-prefixed environment variables, and unmarshals the result.
// Precedence, lowest to highest: file, .env, process environment.
func Load(path string, opts ...LoaderOption) (*Settings, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", o.envFile, err)
		}
	}
	bindEnvVars(v)

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &settings, nil
}

// bindEnvVars maps APIKIT_-prefixed environment variables onto nested keys.
// Underscores are ambiguous between nesting and in-key separators
// (services.posts.base_url), so a variable applies through whichever split
// variant names a key the file declares. Variables matching no declared key
// are ignored: environment variables override, they do not introduce keys.
func bindEnvVars(v *viper.Viper) {
	known := make(map[string]struct{})
	for _, k := range v.AllKeys() {
		known[k] = struct{}{}
	}

	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], EnvPrefix))
		for _, variant := range keyVariants(key) {
			if _, ok := known[variant]; ok {
				v.Set(variant, pair[1])
			}
		}
	}
}

// keyVariants generates the nesting interpretations of an underscored key:
//
//	services_posts_base_url ->
//	  services.posts.base.url, services.posts.base_url,
//	  services.posts_base_url, services_posts_base_url, ...
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	if len(parts) <= 1 {
		return []string{key}
	}

	variants := []string{key, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}

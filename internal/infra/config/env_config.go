package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set or empty.
	ErrVarNotSet = errors.New("env var not set")
)

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
}

// Namespace returns the namespace the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values from environment variables into the provided struct.
// The struct must embed EnvConfig and use caarlos0/env tags (`env`, `envDefault`,
// `envPrefix`). Every variable is looked up under the namespace first and then
// under each shorter namespace prefix, so for namespace "APP_SVC" the field
// tagged `env:"PORT"` reads APP_SVC_PORT, falling back to APP_PORT.
func Parse(_ context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	prefix, environment := resolveEnvironment(namespace, os.Environ())

	//nolint:exhaustruct
	opts := env.Options{
		Prefix:      prefix,
		Environment: environment,
	}

	parseErr := env.ParseWithOptions(cfg, opts)

	if err := unsetAllLevels(cfg, opts, namespace); err != nil {
		return fmt.Errorf("unset env: %w", err)
	}

	if parseErr != nil {
		return fmt.Errorf("parse env: %w", classify(parseErr))
	}

	return nil
}

// unsetAllLevels removes fields tagged `unset` from the process environment
// under every namespace level they could have been read from, not only the
// fully qualified key.
func unsetAllLevels(cfg any, opts env.Options, namespace string) error {
	params, err := env.GetFieldParamsWithOptions(cfg, opts)
	if err != nil {
		return fmt.Errorf("get field params: %w", err)
	}

	var levels []string

	if namespace != "" {
		nsParts := strings.Split(namespace, "_")
		for i := 1; i <= len(nsParts); i++ {
			levels = append(levels, strings.Join(nsParts[:i], "_")+"_")
		}
	}

	for _, p := range params {
		if !p.Unset {
			continue
		}

		rest := strings.TrimPrefix(p.Key, opts.Prefix)

		if err := os.Unsetenv(p.Key); err != nil {
			return fmt.Errorf("unset %s: %w", p.Key, err)
		}

		for _, level := range levels {
			if err := os.Unsetenv(level + rest); err != nil {
				return fmt.Errorf("unset %s: %w", level+rest, err)
			}
		}
	}

	return nil
}

// resolveEnvironment folds the namespace levels into one view keyed by the
// full namespace prefix. Less specific levels are applied first so that more
// specific ones overwrite them.
func resolveEnvironment(namespace string, environ []string) (string, map[string]string) {
	vars := make(map[string]string, len(environ))

	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			vars[key] = value
		}
	}

	if namespace == "" {
		return "", vars
	}

	var (
		nsParts  = strings.Split(namespace, "_")
		full     = namespace + "_"
		resolved = make(map[string]string, len(vars))
	)

	for key, value := range vars {
		resolved[key] = value
	}

	for i := 1; i <= len(nsParts); i++ {
		level := strings.Join(nsParts[:i], "_") + "_"

		for key, value := range vars {
			if rest, ok := strings.CutPrefix(key, level); ok {
				resolved[full+rest] = value
			}
		}
	}

	return full, resolved
}

func classify(err error) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return err
	}

	for _, e := range agg.Errors {
		var (
			notSet env.VarIsNotSetError
			empty  env.EmptyVarError
		)

		switch {
		case errors.As(e, &notSet):
			return errors.Join(fmt.Errorf("%w: %s", ErrVarNotSet, notSet.Key), err)
		case errors.As(e, &empty):
			return errors.Join(fmt.Errorf("%w: %s", ErrVarNotSet, empty.Key), err)
		}
	}

	return err
}

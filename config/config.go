// Package config loads SDK settings from a file and the environment,
// with live reload on file change.
package config

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to environment variable names, so the
	// api_key setting binds to CEREBRAS_API_KEY.
	EnvPrefix = "CEREBRAS"

	debounceWindow = 100 * time.Millisecond
)

// Settings is the SDK configuration surface. Every field can come from
// the config file or from a CEREBRAS_* environment variable.
type Settings struct {
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	Model   string `mapstructure:"model" json:"model"`

	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries" json:"max_retries"`
}

// Defaults returns the settings used when neither file nor environment
// provides a value.
func Defaults() map[string]any {
	return map[string]any{
		"base_url":        "https://api.cerebras.ai",
		"model":           "llama-3.3-70b",
		"timeout_seconds": 60,
		"max_retries":     3,
	}
}

// Loader owns a settings file, watches it for changes, and hands out
// consistent snapshots.
type Loader struct {
	v        *viper.Viper
	mu       sync.RWMutex
	value    *Settings
	watchers []func(old, new Settings)
}

// Load reads the settings file at path, layers CEREBRAS_* environment
// variables on top, and starts watching the file for changes.
func Load(path string) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	bindEnv(v)

	l := &Loader{v: v}
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	l.value = &s

	l.watch()
	return l, nil
}

// FromEnv builds settings from environment variables and defaults alone,
// for callers that have no config file.
func FromEnv() (Settings, error) {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	bindEnv(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// bindEnv wires every known settings key to its CEREBRAS_* variable.
// Unmarshal only sees keys viper knows about, so each one is bound
// explicitly; AutomaticEnv alone misses keys absent from file and defaults.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"api_key", "base_url", "model", "timeout_seconds", "max_retries"} {
		_ = v.BindEnv(key)
	}
}

// Get returns a copy of the current settings.
func (l *Loader) Get() Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return deepCopy(*l.value)
}

// OnChange registers a callback invoked after the settings file changes
// and the new content differs from the old.
func (l *Loader) OnChange(callback func(old, new Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.watchers = append(l.watchers, callback)
}

func deepCopy(src Settings) Settings {
	var dst Settings
	data, _ := json.Marshal(src)
	_ = json.Unmarshal(data, &dst)
	return dst
}

func (l *Loader) watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	// Editors often fire several filesystem events per save; collapse
	// them into one reload.
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(debounceWindow, func() {
			l.handleChange()
		})
		debounceMu.Unlock()
	})

	l.v.WatchConfig()
}

func (l *Loader) handleChange() {
	old := l.Get()

	updated, watchers, ok := l.reload()
	if !ok {
		return
	}
	if reflect.DeepEqual(old, updated) {
		return
	}
	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(old, updated)
		}()
	}
}

func (l *Loader) reload() (Settings, []func(old, new Settings), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		return Settings{}, nil, false
	}
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, nil, false
	}
	l.value = &s

	watchers := make([]func(old, new Settings), len(l.watchers))
	copy(watchers, l.watchers)
	return deepCopy(s), watchers, true
}

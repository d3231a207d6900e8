package actions

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/components"
	"github.com/relloyd/geniepipe/config"
	"github.com/relloyd/geniepipe/helper"
)

// DefaultAddConfig sets a flag default such as page-size or missing-key-policy.
// KnownKeys maps each flag that may have a default to the env var that replaces it in 12 factor mode.
// A nil KnownKeys accepts any key.
type DefaultAddConfig struct {
	ConfigFile ConfigStore       `errorTxt:"config-file" mandatory:"yes"`
	Key        string            `errorTxt:"key" mandatory:"yes"`
	Value      string            `errorTxt:"value" mandatory:"yes"`
	KnownKeys  map[string]string `yaml:"-"`
	Force      bool
}

type DefaultRemoveConfig struct {
	ConfigFile ConfigStore `errorTxt:"config-file" mandatory:"yes"`
	Key        string      `errorTxt:"key" mandatory:"yes"`
}

// RunDefaultAdd saves cfg.Key=cfg.Value, refusing to overwrite an existing key unless cfg.Force is set.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	key, val := strings.TrimSpace(cfg.Key), strings.TrimSpace(cfg.Value)
	if err := validateDefault(key, val, cfg.KnownKeys); err != nil {
		return err
	}
	var existing string
	err := cfg.ConfigFile.Get(key, &existing)
	switch {
	case err == nil && !cfg.Force:
		return fmt.Errorf("key %q exists with value %q, use force to update the value or remove it first", key, existing)
	case err != nil && !isNotFound(err):
		return err
	}
	if err = cfg.ConfigFile.Set(key, val); err != nil {
		return errors.Wrap(err, "error writing config file after adding")
	}
	if env, ok := cfg.KnownKeys[key]; ok {
		fmt.Printf("Default %v=%v saved (use %v in 12 factor mode)\n", key, val, env)
	} else {
		fmt.Printf("Default %v=%v saved\n", key, val)
	}
	return nil
}

func validateDefault(key string, val string, known map[string]string) error {
	if known != nil {
		if _, ok := known[key]; !ok {
			names := make([]string, 0, len(known))
			for k := range known {
				names = append(names, k)
			}
			sort.Strings(names)
			return fmt.Errorf("%q is not a flag that takes a default, choose one of: %v", key, strings.Join(names, ", "))
		}
	}
	if key == "missing-key-policy" {
		if _, err := components.ParseMissingKeyPolicy(val); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.As(err, &config.KeyNotFoundError{}) || errors.As(err, &config.FileNotFoundError{})
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(strings.TrimSpace(cfg.Key)); err != nil {
		return errors.Wrapf(err, "unable to delete key %q from config", cfg.Key)
	}
	fmt.Printf("Default %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList writes one key=value line per saved default.
func RunDefaultList(store ConfigStore, w io.Writer) error {
	keys, err := store.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		var val string
		if err = store.Get(k, &val); err != nil {
			return err
		}
		if _, err = fmt.Fprintf(w, "%v=%v\n", k, val); err != nil {
			return err
		}
	}
	return nil
}

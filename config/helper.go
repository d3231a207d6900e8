package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/geniepipe/constants"
)

// EnvVarConfigDir relocates the config home, e.g. for schedulers without a writable home dir.
const EnvVarConfigDir = constants.EnvVarPrefix + "_CONFIG_DIR"

// mustGetConfigHomeDir returns $GP_CONFIG_DIR or ~/.geniepipe and exits if neither can be resolved.
func mustGetConfigHomeDir() string {
	if d := os.Getenv(EnvVarConfigDir); d != "" {
		return d
	}
	home, err := homedir.Dir()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return filepath.Join(home, MainDir)
}

package plugin_loader

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/relloyd/geniepipe/constants"
)

const exportsSymbolName = "Exports"

type Loc []string

// Locations are searched in order for plugins before trying the directory named by the plugin dir environment variable.
var Locations = Loc{
	"/usr/local/lib",
}

func init() {
	// Prepend the directory of the gp executable to the list of paths to search.
	ex, err := os.Executable()
	if err != nil {
		return // leave the defaults in place.
	}
	exReal, err := filepath.EvalSymlinks(ex)
	if err != nil {
		return
	}
	Locations = append(Loc{filepath.Dir(exReal)}, Locations...)
}

func (l Loc) String() string {
	tmp := make([]string, 0, len(l))
	for _, v := range l {
		tmp = append(tmp, fmt.Sprintf("'%v'", v))
	}
	return strings.Join(tmp, ", ")
}

// searchPaths returns the full paths to try when loading pluginName.
func (l Loc) searchPaths(pluginName string) []string {
	retval := make([]string, 0, len(l)+1)
	for _, dir := range l {
		retval = append(retval, filepath.Join(dir, pluginName))
	}
	if dir := os.Getenv(constants.EnvVarPluginDir); dir != "" {
		retval = append(retval, filepath.Join(dir, pluginName))
	}
	return retval
}

// LoadPluginExports opens the shared library pluginName and returns its exported symbol "Exports".
func LoadPluginExports(pluginName string) (interface{}, error) {
	var errs []string
	for _, fullPath := range Locations.searchPaths(pluginName) {
		plug, err := plugin.Open(fullPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%v: %v", fullPath, err))
			continue
		}
		t, err := plug.Lookup(exportsSymbolName)
		if err != nil {
			return nil, fmt.Errorf("symbol %v not found in plugin %v: %w", exportsSymbolName, fullPath, err)
		}
		return t, nil
	}
	if os.Getenv(constants.EnvVarPluginDir) == "" {
		errs = append(errs, fmt.Sprintf("environment variable %v is not set", constants.EnvVarPluginDir))
	}
	// Build one error string of format: (<n>) <error>
	var errTxt string
	for i, e := range errs {
		errTxt = fmt.Sprintf("%v (%v) %v", errTxt, i+1, e)
	}
	return nil, fmt.Errorf("unable to load plugin %v due to the following error(s): %v", pluginName, strings.TrimSpace(errTxt))
}

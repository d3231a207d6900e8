package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/constants"
	plugin_loader "github.com/relloyd/geniepipe/plugin-loader"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeOracle,
		"Add an Oracle connection",
		fmt.Sprintf(`oracle://<user>/<password>@//<host>:<port>/<SID or service name>?<param1>&<...paramN>

By default, prefetch_rows=500 is added to parameters unless overridden.
The Oracle plugin %q must be installed in any of %v
and OCI libraries must be available on your host.
`, constants.GpPluginOracle, plugin_loader.Locations)))
}

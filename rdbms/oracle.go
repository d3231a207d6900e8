package rdbms

import (
	"fmt"
	"reflect"

	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	pluginloader "github.com/relloyd/geniepipe/plugin-loader"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

func NewOracleConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	if _, err := shared.OracleDsnToOracleConnectionDetails(d.Dsn); err != nil {
		return nil, err
	}
	exports, err := pluginloader.LoadPluginExports(constants.GpPluginOracle)
	if err != nil {
		return nil, err
	}
	i, ok := exports.(shared.OracleConnector)
	if !ok {
		r := reflect.TypeOf(exports)
		return nil, fmt.Errorf("plugin %v does not implement the required interface: OracleConnector: %v", constants.GpPluginOracle, r.String())
	}
	return i.NewOracleConnection(log, d)
}

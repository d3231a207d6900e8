package rdbms

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	pluginloader "github.com/relloyd/geniepipe/plugin-loader"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

func isOdbcConnection(connectionType string) bool {
	if !strings.HasPrefix(connectionType, constants.ConnectionTypeOdbc+"+") {
		return false
	}
	_, err := shared.GetDialect(connectionType)
	return err == nil
}

func NewOdbcConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	exports, err := pluginloader.LoadPluginExports(constants.GpPluginOdbc)
	if err != nil {
		return nil, err
	}
	i, ok := exports.(shared.OdbcConnector)
	if !ok {
		r := reflect.TypeOf(exports)
		return nil, fmt.Errorf("plugin %v does not implement the required interface: OdbcConnector: %v", constants.GpPluginOdbc, r.String())
	}
	return i.NewOdbcConnection(log, d)
}

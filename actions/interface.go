package actions

import (
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// ConnectionHandler resolves a named connection. *config.File and cmd.TwelveFactorConnections
// both satisfy it so ingest, rollup and upload never read files directly.
type ConnectionHandler interface {
	GetConnectionType(connectionName string) (connectionType string, err error)
	GetConnectionDetails(connectionName string) (connectionDetails *shared.ConnectionDetails, err error)
}

// ConnectionGetterSetter is the write side of the connections file used by config connections add/remove.
type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

// ConfigStore is a ConnectionGetterSetter that can also enumerate its keys, e.g. *config.File.
type ConfigStore interface {
	ConnectionGetterSetter
	GetAllKeys() ([]string, error)
}

// ConnectionValidator parses user input for one connection type into the map that is saved.
type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}

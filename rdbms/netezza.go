package rdbms

import (
	"database/sql"

	_ "github.com/IBM/nzgo/v12"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// newNetezzaConnection opens the Netezza database connection specified in d.
func newNetezzaConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	n := shared.NetezzaConnectionDetails{Dsn: d.Dsn}
	dsn, err := n.GetNzgoConnectionString()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("nzgo", dsn)
	if err != nil {
		return nil, err
	}
	return pingAndWrap(log, db, constants.ConnectionTypeNetezza, n)
}

package cmd

import (
	"github.com/relloyd/geniepipe/constants"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeNetezza,
		"Add a Netezza connection",
		`netezza://<user>/<pass>@//<host>:<port>/<dbname>[?<param1>=<value1>&<param2>=<value2>&...]

where the following parameter keys can be used:

* sslmode - Whether or not to use SSL (default is require)
* sslcert - PEM cert file location
* sslkey - PEM key file location
* sslrootcert - The location of the root certificate in PEM format
* securityLevel - The connection security level 

Please refer to this documentation for reference:

https://pkg.go.dev/github.com/IBM/nzgo
`))
}

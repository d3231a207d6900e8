package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/geniepipe/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"connection type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"connection logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and tokens and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data[DefaultDsnConnectionKeyNames.Dsn]; ok { // if there's a DSN...
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(c.Type, v)))
	} else { // else there's no DSN... (could be S3 connection)
		keys := make([]string, 0, len(c.Data))
		for k := range c.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := c.Data[k]
			if k == "password" || k == "token" {
				v = "xxxxx"
			}
			x = append(x, fmt.Sprintf("  %v = %v", k, v))
		}
	}
	return strings.Join(x, "\n")
}

// RedactDsn returns dsn with any password or token removed, using the parser that suits connectionType.
func RedactDsn(connectionType string, dsn string) string {
	switch connectionType {
	case constants.ConnectionTypeOracle:
		o, err := OracleDsnToOracleConnectionDetails(dsn)
		if err != nil {
			return "<unparsable Oracle DSN>"
		}
		return o.String()
	case constants.ConnectionTypeNetezza:
		return NetezzaConnectionDetails{Dsn: dsn}.String()
	case constants.ConnectionTypeWorkspace:
		return WorkspaceConnectionDetails{Dsn: dsn}.String()
	case constants.ConnectionTypeDatabricks:
		return DatabricksConnectionDetails{Dsn: dsn}.String()
	case constants.ConnectionTypeDuckDb, constants.ConnectionTypeCsv:
		return dsn // file paths only.
	default:
		u, err := dburl.Parse(dsn)
		if err != nil {
			return "<unparsable DSN>"
		}
		return u.Redacted()
	}
}

package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/helper"
)

var oracleDsnRegexp = regexp.MustCompile(`^oracle://.+?/.+?@//.+:[0-9]+/.+$`)

// OracleConnectionDetails is a helper type to build connection details with.
// oracle://user/password@//host:port/sid?param1=value1&param2=value2
type OracleConnectionDetails struct {
	DBName   string `errorTxt:"Oracle database name" mandatory:"yes"`
	DBUser   string `errorTxt:"Oracle username" mandatory:"yes"`
	DBPass   string `errorTxt:"Oracle password" mandatory:"yes"`
	DBHost   string `errorTxt:"Oracle hostname" mandatory:"yes"`
	DBPort   string `errorTxt:"Oracle port" mandatory:"yes"`
	DBParams string // param1=value1&param2=value2
	Dsn      string
}

func (d OracleConnectionDetails) String() string {
	return fmt.Sprintf("oracle://%v/%v@//%v:%v/%v?%v",
		d.DBUser,
		"xxxxx",
		d.DBHost,
		d.DBPort,
		d.DBName,
		d.DBParams)
}

func (d OracleConnectionDetails) Parse() error {
	_, err := OracleDsnToOracleConnectionDetails(d.Dsn)
	return err
}

func (d OracleConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}

func (d OracleConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeOracle, nil
}

// OracleDsnToOracleConnectionDetails parses the Oracle DSN format, which dburl does not support.
// Default connection parameters are applied when none are supplied.
func OracleDsnToOracleConnectionDetails(d string) (*OracleConnectionDetails, error) {
	if !oracleDsnRegexp.MatchString(d) {
		return nil, errors.New("unsupported Oracle DSN format")
	}
	dsn := d
	d = strings.TrimPrefix(d, "oracle://")
	userPwd, theRest := helper.SplitRight(d, `@`)
	user, pass := helper.SplitRight(userPwd, `/`)
	hostPort, dbNameParams := helper.SplitRight(theRest, `/`)
	host, port := helper.SplitRight(hostPort, `:`)
	host = strings.TrimLeft(host, "/")
	dbName, params := helper.SplitRight(dbNameParams, `?`)
	if params == "" { // if the user did not override the default params...
		params = constants.OracleConnectionDefaultParams
	}
	return &OracleConnectionDetails{
		DBUser:   user,
		DBPass:   pass,
		DBHost:   host,
		DBPort:   port,
		DBName:   dbName,
		DBParams: params,
		Dsn:      dsn,
	}, nil
}

package shared

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
)

const httpsScheme = "https"

// WorkspaceConnectionDetails holds the REST endpoint and personal access token of a Databricks workspace.
// The DSN is of the form https://token:<personal-access-token>@<workspace-host>
type WorkspaceConnectionDetails struct {
	Dsn string `errorTxt:"workspace DSN of the form https://token:<pat>@<host>" mandatory:"yes"`
}

func (d WorkspaceConnectionDetails) parse() (*url.URL, error) {
	u, err := url.Parse(d.Dsn)
	if err != nil {
		return nil, errors.Wrap(err, "workspace DSN could not be parsed")
	}
	if u.Scheme != httpsScheme && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported workspace DSN scheme %q, expected https", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("workspace DSN is missing a host")
	}
	if _, ok := u.User.Password(); !ok {
		return nil, errors.New("workspace DSN is missing a personal access token i.e. https://token:<pat>@<host>")
	}
	return u, nil
}

func (d WorkspaceConnectionDetails) Parse() error {
	_, err := d.parse()
	return err
}

// String returns the DSN with the token redacted.
func (d WorkspaceConnectionDetails) String() string {
	u, err := d.parse()
	if err != nil {
		return "<unparsable workspace DSN>"
	}
	return u.Redacted()
}

func (d WorkspaceConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeWorkspace, nil
}

func (d WorkspaceConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}

// GetHostAndToken returns the base URL of the workspace REST API and the access token.
func (d WorkspaceConnectionDetails) GetHostAndToken() (host string, token string, err error) {
	u, err := d.parse()
	if err != nil {
		return "", "", err
	}
	token, _ = u.User.Password()
	return fmt.Sprintf("%v://%v", u.Scheme, u.Host), token, nil
}

// DatabricksConnectionDetails holds the DSN of a Databricks SQL warehouse.
// databricks://token:<personal-access-token>@<host>[:443]/sql/1.0/warehouses/<id>[?catalog=c&schema=s]
type DatabricksConnectionDetails struct {
	Dsn string `errorTxt:"SQL warehouse DSN" mandatory:"yes"`
}

func (d DatabricksConnectionDetails) parse() (*url.URL, error) {
	prefix := constants.ConnectionTypeDatabricks + "://"
	if !strings.HasPrefix(d.Dsn, prefix) {
		return nil, fmt.Errorf("unsupported Databricks DSN, expected prefix %q", prefix)
	}
	u, err := url.Parse(httpsScheme + "://" + strings.TrimPrefix(d.Dsn, prefix))
	if err != nil {
		return nil, errors.Wrap(err, "Databricks DSN could not be parsed")
	}
	if u.Host == "" || u.Path == "" {
		return nil, errors.New("Databricks DSN requires a host and an HTTP path")
	}
	if _, ok := u.User.Password(); !ok {
		return nil, errors.New("Databricks DSN is missing a personal access token")
	}
	return u, nil
}

func (d DatabricksConnectionDetails) Parse() error {
	_, err := d.parse()
	return err
}

func (d DatabricksConnectionDetails) String() string {
	u, err := d.parse()
	if err != nil {
		return "<unparsable Databricks DSN>"
	}
	return strings.Replace(u.Redacted(), httpsScheme+"://", constants.ConnectionTypeDatabricks+"://", 1)
}

func (d DatabricksConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeDatabricks, nil
}

func (d DatabricksConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}

// GetDriverDsn returns the DSN in the format expected by the databricks driver: token:<pat>@<host>:<port>/<path>
func (d DatabricksConnectionDetails) GetDriverDsn() (string, error) {
	u, err := d.parse()
	if err != nil {
		return "", err
	}
	if u.Port() == "" {
		u.Host = u.Host + ":443"
	}
	return strings.TrimPrefix(u.String(), httpsScheme+"://"), nil
}

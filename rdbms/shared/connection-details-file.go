package shared

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/relloyd/geniepipe/constants"
)

// FileConnectionDetails holds the location of a file based target, i.e. a DuckDB database or a CSV directory.
// The DSN is of the form [<type>://]<path>[?gzip=true]
type FileConnectionDetails struct {
	Type string `errorTxt:"connection type" mandatory:"yes"`
	Dsn  string `errorTxt:"file path" mandatory:"yes"`
}

func (d FileConnectionDetails) split() (string, url.Values, error) {
	p := strings.TrimPrefix(d.Dsn, d.Type+"://")
	q := url.Values{}
	if i := strings.Index(p, "?"); i >= 0 {
		var err error
		if q, err = url.ParseQuery(p[i+1:]); err != nil {
			return "", nil, fmt.Errorf("bad options in %v DSN: %w", d.Type, err)
		}
		p = p[:i]
	}
	return p, q, nil
}

func (d FileConnectionDetails) Parse() error {
	switch d.Type {
	case constants.ConnectionTypeCsv, constants.ConnectionTypeDuckDb:
	default:
		return fmt.Errorf("unsupported file connection type %q", d.Type)
	}
	p, _, err := d.split()
	if err != nil {
		return err
	}
	if p == "" && d.Type == constants.ConnectionTypeCsv {
		return fmt.Errorf("csv DSN requires a directory")
	}
	return nil
}

func (d FileConnectionDetails) GetScheme() (string, error) {
	return d.Type, nil
}

func (d FileConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}

// GetPath returns the DSN without its scheme and options.
func (d FileConnectionDetails) GetPath() string {
	p, _, _ := d.split()
	return p
}

// UseGzip is true when the DSN carries option gzip=true.
func (d FileConnectionDetails) UseGzip() bool {
	_, q, err := d.split()
	if err != nil {
		return false
	}
	return strings.EqualFold(q.Get("gzip"), "true")
}

func (d FileConnectionDetails) String() string {
	return d.Dsn
}

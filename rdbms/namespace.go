package rdbms

import (
	"fmt"
	"strings"
)

// Namespace is the location of the genie tables in a target database, of the form [<catalog>.]<schema>.
// Parts may be double quoted, in which case they can contain dots.
type Namespace struct {
	Namespace string `errorTxt:"[<catalog>.]<schema>" mandatory:"yes"`
}

func NewNamespace(catalog string, schema string) Namespace {
	if catalog == "" {
		return Namespace{schema}
	}
	return Namespace{catalog + "." + schema}
}

// parts splits the namespace on dots that are not inside double quotes.
func (n Namespace) parts() []string {
	var retval []string
	var inQuotes bool
	start := 0
	for i, r := range n.Namespace {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '.' && !inQuotes:
			retval = append(retval, n.Namespace[start:i])
			start = i + 1
		}
	}
	return append(retval, n.Namespace[start:])
}

// Validate returns an error unless the namespace is made of one or two non-empty parts.
func (n Namespace) Validate() error {
	if strings.Count(n.Namespace, `"`)%2 != 0 {
		return fmt.Errorf("unbalanced quotes in namespace %q", n.Namespace)
	}
	p := n.parts()
	if len(p) > 2 {
		return fmt.Errorf("namespace %q has too many parts, expected [<catalog>.]<schema>", n.Namespace)
	}
	for _, v := range p {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("namespace %q contains an empty part", n.Namespace)
		}
	}
	return nil
}

// GetCatalog returns the catalog or database part of the namespace, or "" if there isn't one.
func (n Namespace) GetCatalog() string {
	p := n.parts()
	if len(p) < 2 {
		return ""
	}
	return p[0]
}

// GetSchema returns the last part of the namespace.
func (n Namespace) GetSchema() string {
	p := n.parts()
	return p[len(p)-1]
}

// Qualify returns table prefixed by the namespace.
func (n Namespace) Qualify(table string) string {
	if n.Namespace == "" {
		return table
	}
	return n.Namespace + "." + table
}

func (n Namespace) String() string {
	return n.Namespace
}

package actions

import (
	"strings"
	"sync"

	"github.com/relloyd/geniepipe/rdbms"
)

// ConnectionObject should be constructed with public property ConnectionObject set using format:
// <connection>[.<catalog>].<schema>
type ConnectionObject struct {
	ConnectionObject string `errorTxt:"<connection>.[<catalog>.]<schema>" mandatory:"yes"`
	connection       string
	object           string
	done             bool
	mu               sync.Mutex
}

func (c *ConnectionObject) GetConnectionName() string {
	c.splitConnectString()
	return c.connection
}

func (c *ConnectionObject) GetObject() string {
	c.splitConnectString()
	return c.object
}

// GetNamespace returns the object as a namespace of the form [<catalog>.]<schema>.
func (c *ConnectionObject) GetNamespace() rdbms.Namespace {
	return rdbms.Namespace{Namespace: c.GetObject()}
}

// splitConnectString will split the input string into the format:
// <connection>[.<catalog>].<schema>
// and output connection and object, where object includes the catalog.
// If the object is missing from the input then return the whole string as the connection.
func (c *ConnectionObject) splitConnectString() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		i := strings.Index(c.ConnectionObject, ".")
		if i > 0 {
			c.connection = c.ConnectionObject[:i]
			c.object = c.ConnectionObject[i+1:]
		} else {
			c.connection = c.ConnectionObject
			// we can't find object so it is returned as ""
		}
		if c.ConnectionObject != "" { // if struct was constructed with a valid ConnectionObject...
			c.done = true // flag that we're done doing the split.
		}
	}
}

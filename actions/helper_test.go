package actions

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/relloyd/geniepipe/config"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// memConnections implements ConnectionHandler and ConfigStore over a map.
type memConnections map[string]shared.ConnectionDetails

func (m memConnections) GetConnectionType(name string) (string, error) {
	c, err := m.GetConnectionDetails(name)
	if err != nil {
		return "", err
	}
	return c.Type, nil
}

func (m memConnections) GetConnectionDetails(name string) (*shared.ConnectionDetails, error) {
	c, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("connection %q is not configured", name)
	}
	return &c, nil
}

func (m memConnections) Get(key string, out interface{}) error {
	c, ok := m[key]
	if !ok {
		return config.KeyNotFoundError{}
	}
	*(out.(*shared.ConnectionDetails)) = c
	return nil
}

func (m memConnections) Set(key string, val interface{}) error {
	m[key] = *(val.(*shared.ConnectionDetails))
	return nil
}

func (m memConnections) Delete(key string) error {
	if _, ok := m[key]; !ok {
		return fmt.Errorf("key not found")
	}
	delete(m, key)
	return nil
}

func (m memConnections) GetAllKeys() ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// newFakeWorkspace serves one space, conversation, message and user.
func newFakeWorkspace(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/2.0/genie/spaces":
			fmt.Fprint(w, `{"spaces":[{"space_id":"S1","title":"Sales"},{"space_id":"S2","title":"Ops"}]}`)
		case "/api/2.0/genie/spaces/S1/conversations", "/api/2.0/genie/spaces/S2/conversations":
			sid := strings.Split(r.URL.Path, "/")[5]
			fmt.Fprintf(w, `{"conversations":[{"conversation_id":"C-%v","title":"q","created_timestamp":1700000000000}]}`, sid)
		case "/api/2.0/genie/spaces/S1/conversations/C-S1/messages", "/api/2.0/genie/spaces/S2/conversations/C-S2/messages":
			cid := strings.Split(r.URL.Path, "/")[7]
			fmt.Fprintf(w, `{"messages":[{"message_id":"M-%v","user_id":"u1","content":"hi","created_timestamp":1700000000000}],"next_page_token":null}`, cid)
		case "/api/2.0/preview/scim/v2/Users/u1":
			fmt.Fprint(w, `{"id":"u1","displayName":"Ann","userName":"ann@example.com"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error_code":"NOT_FOUND"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testConnections returns a workspace connection for srv and a CSV target in dir.
func testConnections(srv *httptest.Server, dir string) memConnections {
	return memConnections{
		"ws": {Type: "workspace", LogicalName: "ws", Data: map[string]string{
			"dsn": strings.Replace(srv.URL, "http://", "http://token:dapi123@", 1)}},
		"out": {Type: "csv", LogicalName: "out", Data: map[string]string{"dsn": "csv://" + dir}},
		"wh":  {Type: "databricks", LogicalName: "wh", Data: map[string]string{"dsn": "databricks://token:x@h/sql/1.0/warehouses/1"}},
		"arc": {Type: "s3", LogicalName: "arc", Data: map[string]string{"name": "bucket", "region": "eu-west-2"}},
	}
}

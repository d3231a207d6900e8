//go:build integration
// +build integration

package cmd

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/constants"
)

// Tests require cgo for the DuckDB driver. Run them with: go test -tags integration ./cmd/...

// newIntegrationWorkspace serves one space with one conversation of two messages created now, so
// that the rollup windows include them.
func newIntegrationWorkspace(t *testing.T) *httptest.Server {
	now := time.Now().UnixNano() / int64(time.Millisecond)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		p := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/2.0/genie/spaces"), "/")
		switch {
		case r.URL.Path == "/api/2.0/genie/spaces":
			fmt.Fprint(w, `{"spaces":[{"space_id":"S1","title":"Sales","warehouse_id":"w1"}]}`)
		case strings.HasPrefix(r.URL.Path, "/api/2.0/preview/scim/v2/Users/"):
			fmt.Fprint(w, `{"id":"u1","displayName":"Ann","userName":"ann@example.com"}`)
		case len(p) == 3 && p[2] == "conversations":
			fmt.Fprintf(w, `{"conversations":[{"conversation_id":"C1","title":"q","created_timestamp":%v}]}`, now)
		case len(p) == 5 && p[4] == "messages":
			fmt.Fprintf(w, `{"messages":[`+
				`{"message_id":"M1","user_id":"u1","content":"hi","created_timestamp":%v},`+
				`{"message_id":"M2","user_id":"u1","content":"again","created_timestamp":%v}]}`, now, now+60000)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIntegrationIngestDuckDb(t *testing.T) {
	defer setupTwelveFactorMode()
	srv := newIntegrationWorkspace(t)
	dbFile := filepath.Join(t.TempDir(), "gp.duckdb")
	twelveFactorMode = true
	t.Setenv("GP_LOG_LEVEL", "error")
	t.Setenv("GP_SOURCE_DSN", strings.Replace(srv.URL, "http://", "http://token:dapi1@", 1))
	t.Setenv("GP_TARGET_TYPE", constants.ConnectionTypeDuckDb)
	t.Setenv("GP_TARGET_DSN", "duckdb://"+dbFile)
	t.Setenv("GP_TARGET_OBJECT", "genie")
	t.Setenv("GP_ARCHIVE_DSN", "")

	// Create the tables.
	ddlCfg.ExecuteDDL = true
	ddlCfg.LogLevel = "error"
	t.Setenv("GP_COMMAND", "ddl")
	if err := execute12FactorMode(twelveFactorActions); err != nil {
		t.Fatalf("ddl failed: %v", err)
	}
	// Ingest twice to check the merge is idempotent.
	ingestCfg.IngestSettings = actions.NewDefaultIngestSettings()
	ingestCfg.ThrottleMillis = 0
	ingestCfg.LogLevel = "error"
	t.Setenv("GP_COMMAND", "ingest")
	for i := 0; i < 2; i++ {
		if err := execute12FactorMode(twelveFactorActions); err != nil {
			t.Fatalf("ingest %v failed: %v", i, err)
		}
	}

	db, err := sql.Open(constants.ConnectionTypeDuckDb, dbFile)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for table, expected := range map[string]int{
		"genie.genie_spaces":                1,
		"genie.genie_conversations":         1,
		"genie.genie_messages":              2,
		"genie.g_messages_per_conversation": 1,
	} {
		var n int
		if err := db.QueryRow("select count(*) from " + table).Scan(&n); err != nil {
			t.Fatalf("count %v: %v", table, err)
		}
		if n != expected {
			t.Fatalf("expected %v rows in %v; got %v", expected, table, n)
		}
	}
	var author string
	if err := db.QueryRow("select author_name from genie.genie_messages where message_id = 'M1'").Scan(&author); err != nil {
		t.Fatal(err)
	}
	if author != "Ann" {
		t.Fatalf("expected author Ann; got %v", author)
	}
}

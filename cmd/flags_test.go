package cmd

import (
	"testing"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

func TestGetCliFlag(t *testing.T) {
	defer setupTwelveFactorMode()
	fnGetConfig := func(key string, out interface{}) error {
		return config.KeyNotFoundError{}
	}
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	if mockEnvVar != "GP_MOCK" {
		t.Fatalf("expected env var GP_MOCK; got %v", mockEnvVar)
	}
	expected := "envTest"
	d := "myDefault"
	// Test 1 - test default value applied to mock CLI flag.
	twelveFactorMode = false
	got := switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d {
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag; got %v", d, got.val)
	}
	// Test 2 - value from config takes priority over the default.
	got = switches.getCliFlag(flagName, d, func(key string, out interface{}) error {
		*(out.(*string)) = "fromConfig"
		return nil
	})
	if got.val != "fromConfig" {
		t.Fatalf("test 2 failed: expected config value; got %v", got.val)
	}
	// Test 3 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true
	t.Setenv(mockEnvVar, "")
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d {
		t.Fatalf("test 3 failed: expected default value (%v) to be applied via environment variable (%v); got %v", d, mockEnvVar, got.val)
	}
	// Test 4 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	t.Setenv(mockEnvVar, expected)
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != expected {
		t.Fatalf("test 4 failed: expected value (%v) fetched from environment variable (%v); got: %v", expected, mockEnvVar, got.val)
	}
}

func TestAddFlagInTwelveFactorMode(t *testing.T) {
	defer setupTwelveFactorMode()
	twelveFactorMode = true
	t.Setenv("GP_PAGE_SIZE", "7")
	t.Setenv("GP_SKIP_ROLLUPS", "1")
	t.Setenv("GP_SPACE_IDS", "S1,S2")
	s := actions.IngestSettings{}
	addIngestSettingsFlags(&cobra.Command{}, &s)
	if s.PageSize != 7 || !s.SkipRollups || s.SpaceIds != "S1,S2" {
		t.Fatalf("expected settings from the environment; got %+v", s)
	}
	d := actions.NewDefaultIngestSettings()
	if s.MaxRetries != d.MaxRetries || s.MissingKeyPolicy != d.MissingKeyPolicy || s.TopN != d.TopN {
		t.Fatalf("expected defaults for unset variables; got %+v", s)
	}
}

func TestAddFlag(t *testing.T) {
	defer setupTwelveFactorMode()
	twelveFactorMode = false
	var level string
	var skip bool
	c := &cobra.Command{}
	switches.addFlag(c, &level, "log-level", "info", false, "")
	switches.addFlag(c, &skip, "skip-rollups", "", false, "")
	if err := c.ParseFlags([]string{"--log-level", "debug", "-k"}); err != nil {
		t.Fatal(err)
	}
	if level != "debug" || !skip {
		t.Fatalf("expected parsed flags; got level %v skip %v", level, skip)
	}
}

func TestDefaultableFlags(t *testing.T) {
	m := defaultableFlags()
	if m["page-size"] != "GP_PAGE_SIZE" {
		t.Fatalf("expected page-size to map to GP_PAGE_SIZE; got %q", m["page-size"])
	}
	if m["missing-key-policy"] != "GP_MISSING_KEY_POLICY" {
		t.Fatalf("expected missing-key-policy to map to GP_MISSING_KEY_POLICY; got %q", m["missing-key-policy"])
	}
	for _, k := range []string{"mock", "dsn", "connection-name", "force", "file", "output"} {
		if _, ok := m[k]; ok {
			t.Fatalf("expected flag %q to have no default", k)
		}
	}
}

func TestParseBoolFlag(t *testing.T) {
	for s, expected := range map[string]bool{"": false, "false": false, "0": false, "Off": false, "1": true, "true": true, "yes": true} {
		if got := parseBoolFlag(s); got != expected {
			t.Fatalf("parseBoolFlag(%q) = %v; expected %v", s, got, expected)
		}
	}
}

func TestArgsFuncs(t *testing.T) {
	var src, tgt actions.ConnectionObject
	fn := getSourceTargetArgsFunc(&src, &tgt)
	if err := fn(nil, []string{"ws"}); err == nil {
		t.Fatal("expected an error for one argument")
	}
	if err := fn(nil, []string{"ws", "wh.main.genie"}); err != nil {
		t.Fatal(err)
	}
	if src.GetConnectionName() != "ws" || tgt.GetConnectionName() != "wh" || tgt.GetObject() != "main.genie" {
		t.Fatalf("unexpected connection objects %v %v", src.ConnectionObject, tgt.ConnectionObject)
	}
	var only actions.ConnectionObject
	if err := getTargetArgsFunc(&only)(nil, []string{"a", "b"}); err == nil {
		t.Fatal("expected an error for two arguments")
	}
	var name string
	if err := getConnectionArgsFunc(&name, argsSourceTxt)(nil, []string{"ws"}); err != nil || name != "ws" {
		t.Fatalf("expected connection name ws; got %q, %v", name, err)
	}
}

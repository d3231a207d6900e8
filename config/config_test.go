package config

import (
	"path"
	"testing"

	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/stretchr/testify/require"
)

func TestFileSetGetDelete(t *testing.T) {
	dir := path.Join(t.TempDir(), "cfg")
	f := NewFile(dir, ConnectionsConfigFileFullName)

	keys, err := f.GetAllKeys()
	require.NoError(t, err, "missing file should yield no keys")
	require.Empty(t, keys)

	conn := shared.ConnectionDetails{
		Type:        constants.ConnectionTypeWorkspace,
		LogicalName: "prod",
		Data:        map[string]string{"dsn": "https://example.cloud.databricks.com?token=abc"},
	}
	require.NoError(t, f.Set("prod", conn))
	require.NoError(t, f.Set("dev", conn))

	// A fresh handle reads the encrypted file back.
	g := NewFile(dir, ConnectionsConfigFileFullName)
	typ, err := g.GetConnectionType("prod")
	require.NoError(t, err)
	require.Equal(t, constants.ConnectionTypeWorkspace, typ)
	d, err := g.GetConnectionDetails("prod")
	require.NoError(t, err)
	require.Equal(t, conn.Data["dsn"], d.Data["dsn"])

	keys, err = g.GetAllKeys()
	require.NoError(t, err)
	require.Equal(t, []string{"dev", "prod"}, keys)

	require.NoError(t, g.Delete("dev"))
	require.Error(t, g.Delete("dev"))
	_, err = g.GetConnectionDetails("dev")
	require.Error(t, err)
}

func TestFileGetMissingString(t *testing.T) {
	f := NewFile(t.TempDir(), MainFileFullName)
	var s string
	err := f.Get("page-size", &s)
	require.Error(t, err)
	require.IsType(t, KeyNotFoundError{}, err)
	require.NoError(t, f.Set("page-size", "50"))
	require.NoError(t, f.Get("page-size", &s))
	require.Equal(t, "50", s)
	require.Error(t, f.Get("page-size", s), "non-pointer out must fail")
}

func TestFileGetKeepsDefault(t *testing.T) {
	f := NewFile(t.TempDir(), MainFileFullName)
	s := "100"
	require.NoError(t, f.Get("page-size", &s), "a non-zero out is a default")
	require.Equal(t, "100", s)
	require.IsType(t, KeyNotFoundError{}, f.Delete("page-size"))
}

func TestSealedFile(t *testing.T) {
	p := path.Join(t.TempDir(), "x", "conns.yaml")
	s := newSealedFile(p)
	_, err := s.read()
	require.IsType(t, FileNotFoundError{}, err)
	require.NoError(t, s.write([]byte("a: b\n")))
	b, err := s.read()
	require.NoError(t, err)
	require.Equal(t, "a: b\n", string(b))

	t.Setenv(EnvVarConfigKey, "0123456789abcdef0123456789abcdef")
	_, err = s.read()
	require.Error(t, err, "a different key can't open the file")
	t.Setenv(EnvVarConfigKey, "short")
	require.Error(t, s.write([]byte("a: b\n")))
}

func TestUnsealShortText(t *testing.T) {
	_, err := unseal(builtInKey, []byte("x"))
	require.Error(t, err)
}

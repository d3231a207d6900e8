package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/geniepipe/constants"
	"gopkg.in/yaml.v2"
)

// Main holds flag defaults and Connections holds named connections, both under the config home dir.
var (
	Main        *File
	Connections *File
)

func init() {
	dir := mustGetConfigHomeDir()
	Main = NewFile(dir, MainFileFullName)
	Connections = NewFile(dir, ConnectionsConfigFileFullName)
}

const (
	MainDir                       = constants.ConfigDirName
	MainFileFullName              = "config.yaml"
	ConnectionsConfigFileFullName = "connections.yaml"
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML map of keys persisted in a sealed file.
// Data is loaded lazily on first use and every change is saved immediately.
type File struct {
	FullPath string
	store    *sealedFile
	mu       sync.Mutex
	data     map[string]interface{}
	loaded   bool
}

func NewFile(dirName string, fileName string) *File {
	p := filepath.Join(dirName, fileName)
	return &File{FullPath: p, store: newSealedFile(p), data: make(map[string]interface{})}
}

// Get decodes the value of key into out, which must be a pointer.
// A missing key leaves out untouched: if out already holds a non-zero value it is treated as the
// caller's default and no error is returned, otherwise KeyNotFoundError is returned.
func (c *File) Get(key string, out interface{}) error {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	d, ok := c.data[key]
	if !ok {
		if val.Elem().IsZero() {
			return KeyNotFoundError{c.FullPath, key}
		}
		return nil
	}
	return mapstructure.Decode(d, out)
}

func (c *File) Set(key string, val interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	c.data[key] = val
	return c.save(key)
}

func (c *File) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return err
	}
	if _, ok := c.data[key]; !ok {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	return c.save(key)
}

// GetAllKeys returns the sorted keys. A missing file has no keys.
func (c *File) GetAllKeys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads the file once. A missing file is an empty map that is created on the first save.
func (c *File) load() error {
	if c.loaded {
		return nil
	}
	b, err := c.store.read()
	if errors.As(err, &FileNotFoundError{}) {
		c.loaded = true
		return nil
	} else if err != nil {
		return err
	}
	if err = yaml.Unmarshal(b, c.data); err != nil {
		return fmt.Errorf("error parsing config file %v: %w", c.FullPath, err)
	}
	c.loaded = true
	return nil
}

func (c *File) save(key string) error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while writing key %v to config file %v: %w", key, c.FullPath, err)
	}
	return c.store.write(b)
}

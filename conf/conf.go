// Package conf persists user settings in a TOML file inside the client's
// data directory.
//
// The file is made of groups of string values: "global" holds the defaults
// and a group named after a hub overrides them for that hub. The data
// directory is locked for the lifetime of a Conf so that two processes
// never write the same files.
package conf

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	GlobalGroup = "global"
	configName  = "config.toml"
	versionName = "version"
	logsName    = "logs"
	dirEnv      = "DC_DIR"
	defaultDir  = ".dc-progress"

	versionMajor = 1
	versionMinor = 0

	defaultAutorefresh = 60
	defaultSlots       = 10
)

const header = `# This file is automatically managed by dc-progress.
# While you could edit it yourself, doing so is highly discouraged.
# It is better to use the respective commands to change something.
# Warning: Editing this file while dc-progress is running may result in your changes getting lost!

`

// ErrLocked is returned by Open when another process holds the directory.
var ErrLocked = errors.New("Data directory is locked by another instance")

// DefaultDir returns $DC_DIR or ~/.dc-progress.
func DefaultDir() (string, error) {
	if d := os.Getenv(dirEnv); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "Failed to get home directory")
	}
	return filepath.Join(home, defaultDir), nil
}

type Conf struct {
	mu     sync.RWMutex
	dir    string
	lock   *os.File
	groups map[string]map[string]string
}

// Open prepares dir, locks it and loads (or creates) the config file.
func Open(dir string) (*Conf, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "Failed to create directory %v", dir)
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return nil, errors.Wrapf(err, "Directory %v is not writable", dir)
	}
	logs := filepath.Join(dir, logsName)
	if err := os.MkdirAll(logs, 0777); err != nil {
		return nil, errors.Wrapf(err, "Failed to create directory %v", logs)
	}
	lock, err := lockVersion(filepath.Join(dir, versionName))
	if err != nil {
		return nil, err
	}
	c := &Conf{
		dir:    dir,
		lock:   lock,
		groups: map[string]map[string]string{},
	}
	if err := c.load(); err != nil {
		c.Close()
		return nil, err
	}
	if _, ok := c.Get(GlobalGroup, "nick"); !ok {
		c.Set(GlobalGroup, "nick", fmt.Sprintf("dc_%d", 1+rand.Intn(9998)))
	}
	if err := c.Save(); err != nil {
		c.Close()
		return nil, err
	}
	log.Infof("Using data directory %v", dir)
	return c, nil
}

// lockVersion takes an exclusive lock on the version file and checks the
// directory layout version stored in it. The file stays open (and locked)
// until Close.
func lockVersion(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open lock file %v", path)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLocked
		}
		return nil, errors.Wrapf(err, "Failed to lock %v", path)
	}
	ver := make([]byte, 2)
	if n, _ := f.ReadAt(ver, 0); n < 2 {
		ver[0], ver[1] = versionMajor, versionMinor
		if _, err := f.WriteAt(ver, 0); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "Failed to write %v", path)
		}
	}
	if ver[0] > versionMajor {
		f.Close()
		return nil, errors.Errorf("Incompatible data directory version %d.%d", ver[0], ver[1])
	}
	return f, nil
}

func (c *Conf) path() string {
	return filepath.Join(c.dir, configName)
}

func (c *Conf) load() error {
	p := c.path()
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil
	}
	groups := map[string]map[string]string{}
	if _, err := toml.DecodeFile(p, &groups); err != nil {
		return errors.Wrapf(err, "Failed to load %v", p)
	}
	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()
	return nil
}

// Save writes the config file atomically.
func (c *Conf) Save() error {
	var buf bytes.Buffer
	buf.WriteString(header)
	c.mu.RLock()
	err := toml.NewEncoder(&buf).Encode(c.groups)
	c.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "Failed to encode config")
	}
	if err := writeFileAtomic(c.path(), buf.Bytes(), 0600); err != nil {
		return errors.Wrapf(err, "Cannot save config file %v", c.path())
	}
	return nil
}

// Dir returns the data directory.
func (c *Conf) Dir() string {
	return c.dir
}

// LogsDir returns the directory for log files.
func (c *Conf) LogsDir() string {
	return filepath.Join(c.dir, logsName)
}

// Close releases the directory lock.
func (c *Conf) Close() error {
	if c.lock == nil {
		return nil
	}
	err := c.lock.Close()
	c.lock = nil
	return err
}

func (c *Conf) Has(group, key string) bool {
	_, ok := c.Get(group, key)
	return ok
}

func (c *Conf) Get(group, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.groups[group][key]
	return v, ok
}

func (c *Conf) Set(group, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[group]
	if !ok {
		g = map[string]string{}
		c.groups[group] = g
	}
	g[key] = value
}

// Unset removes key from group, and group itself once it is empty.
func (c *Conf) Unset(group, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[group]
	if !ok {
		return
	}
	delete(g, key)
	if len(g) == 0 {
		delete(c.groups, group)
	}
}

// GetInt returns the integer stored under key or def if it is missing or
// malformed.
func (c *Conf) GetInt(group, key string, def int) int {
	v, ok := c.Get(group, key)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return def
	}
	return int(i)
}

// GetBool returns true only for a stored "true".
func (c *Conf) GetBool(group, key string) bool {
	v, _ := c.Get(group, key)
	return v == "true"
}

// HubGet returns key from the hub group, falling back to the global one.
func (c *Conf) HubGet(hub, key string) (string, bool) {
	if v, ok := c.Get(hub, key); ok {
		return v, true
	}
	return c.Get(GlobalGroup, key)
}

func (c *Conf) Autorefresh() int {
	return c.GetInt(GlobalGroup, "autorefresh", defaultAutorefresh)
}

func (c *Conf) Slots() int {
	return c.GetInt(GlobalGroup, "slots", defaultSlots)
}

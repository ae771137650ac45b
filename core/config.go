package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	ConfigPath      = ".config/hpcjob"
	ConfigFilename  = "config.json"
	TargetFilename  = "target"
	ConfigFilePerms = 0600
	ConfigEnv       = "HPCJOB_CONFIG"
	DefaultCluster  = "default"
	DefaultPython   = "python"
)

var ErrUnknownCluster = errors.New("unknown cluster")

// Layout for config file
/*
{
	"default": {
		"scheduler": "slurm",
		"partition": "short",
		"account": "hydro",
		"python": "python"
	}
}
*/
type Cluster struct {
	Scheduler string `json:"scheduler"`
	Partition string `json:"partition,omitempty"`
	Account   string `json:"account,omitempty"`
	Python    string `json:"python,omitempty"`
}

type Config map[string]Cluster

func DefaultConfig() Config {
	return Config{
		DefaultCluster: Cluster{
			Scheduler: SchedulerSlurm,
			Python:    DefaultPython,
		},
	}
}

func (c Config) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Cluster) Validate() error {
	switch c.Scheduler {
	case SchedulerSlurm, SchedulerSGE:
		return nil
	}
	return errors.Errorf("unsupported scheduler %q", c.Scheduler)
}

func (c Cluster) Interpreter() string {
	if len(c.Python) > 0 {
		return c.Python
	}
	return DefaultPython
}

// ConfigStore reads and writes cluster profiles and the selected target.
type ConfigStore struct {
	Fs         afero.Fs
	Path       string
	TargetPath string
}

// NewConfigStore uses $HPCJOB_CONFIG when set, otherwise
// ~/.config/hpcjob/config.json. The target file sits next to it.
func NewConfigStore(fs afero.Fs) (*ConfigStore, error) {
	path := os.Getenv(ConfigEnv)
	if len(path) == 0 {
		home, err := homedir.Dir()
		if err != nil {
			return nil, errors.Wrap(err, "cannot find home directory")
		}
		path = filepath.Join(home, ConfigPath, ConfigFilename)
	} else {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot expand %s", path)
		}
		path = expanded
	}
	return &ConfigStore{
		Fs:         fs,
		Path:       path,
		TargetPath: filepath.Join(filepath.Dir(path), TargetFilename),
	}, nil
}

// Read falls back to DefaultConfig when no config file exists.
func (s *ConfigStore) Read() (Config, error) {
	exists, err := afero.Exists(s.Fs, s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot stat config")
	}
	if !exists {
		return DefaultConfig(), nil
	}
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", s.Path)
	}
	// Check if any cluster were found in config file
	if len(config) == 0 {
		return DefaultConfig(), nil
	}
	return config, nil
}

func (s *ConfigStore) Write(config Config) error {
	for name, cluster := range config {
		if err := cluster.Validate(); err != nil {
			return errors.Wrapf(err, "cluster %s", name)
		}
	}
	data, err := json.MarshalIndent(config, "", "\t")
	if err != nil {
		return err
	}
	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return errors.Wrap(err, "cannot create config directory")
	}
	if err := afero.WriteFile(s.Fs, s.Path, data, ConfigFilePerms); err != nil {
		return errors.Wrap(err, "cannot write config")
	}
	// WriteFile keeps the mode of an existing file
	return s.Fs.Chmod(s.Path, ConfigFilePerms)
}

// Target is the selected cluster name, "default" when unset.
func (s *ConfigStore) Target() string {
	data, err := afero.ReadFile(s.Fs, s.TargetPath)
	if err != nil {
		return DefaultCluster
	}
	if name := strings.TrimSpace(string(data)); len(name) > 0 {
		return name
	}
	return DefaultCluster
}

func (s *ConfigStore) SetTarget(name string) error {
	config, err := s.Read()
	if err != nil {
		return err
	}
	if _, ok := config[name]; !ok {
		return errors.Wrap(ErrUnknownCluster, name)
	}
	if err := s.Fs.MkdirAll(filepath.Dir(s.TargetPath), 0700); err != nil {
		return errors.Wrap(err, "cannot create config directory")
	}
	return afero.WriteFile(s.Fs, s.TargetPath, []byte(name+"\n"), ConfigFilePerms)
}

// Cluster looks up name, or the selected target when name is empty.
func (s *ConfigStore) Cluster(name string) (string, Cluster, error) {
	config, err := s.Read()
	if err != nil {
		return "", Cluster{}, err
	}
	if len(name) == 0 {
		name = s.Target()
	}
	cluster, ok := config[name]
	if !ok {
		return "", Cluster{}, errors.Wrap(ErrUnknownCluster, name)
	}
	if len(cluster.Scheduler) == 0 {
		cluster.Scheduler = SchedulerSlurm
	}
	return name, cluster, nil
}

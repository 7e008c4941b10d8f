package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/rhyrak/fce-compiler/internal/layout"
	"github.com/rhyrak/fce-compiler/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceDir    = "data"
	DefaultOutputFile   = "docs/fce.json"
	DefaultMinResponses = 5
	DefaultFormat       = "json"
)

// Configuration is everything a compile run needs. Fields map 1:1 to the
// optional YAML config file; command-line flags override them.
type Configuration struct {
	Sources  []string `yaml:"sources"`
	Output   string   `yaml:"output"`
	Callback string   `yaml:"callback"`
	Format   string   `yaml:"format"`
	Brotli   bool     `yaml:"brotli"`

	MinResponses      int      `yaml:"min_responses"`
	CutoffYear        int      `yaml:"cutoff_year"`
	ExcludedSections  []string `yaml:"excluded_sections"`
	ExcludedSemesters []string `yaml:"excluded_semesters"`

	// Renumbering maps new course ids to the ids they replaced.
	// Empty means the built-in table.
	Renumbering map[string]string `yaml:"renumbering"`

	// LayoutsFile replaces the built-in export layouts.
	LayoutsFile string `yaml:"layouts_file"`

	Log     logging.Config `yaml:"log"`
	Publish PublishConfig  `yaml:"publish"`
}

// PublishConfig is the SFTP target the generated file is uploaded to.
// Credentials come from the environment, never from the file.
type PublishConfig struct {
	Enabled               bool   `yaml:"enabled"`
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"-"`
	Pass                  string `yaml:"-"`
	RemoteDir             string `yaml:"remote_dir"`
	KnownHostsFile        string `yaml:"known_hosts_file"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		Sources:           []string{DefaultSourceDir},
		Output:            DefaultOutputFile,
		Format:            DefaultFormat,
		MinResponses:      DefaultMinResponses,
		ExcludedSections:  []string{"Q", "W"},
		ExcludedSemesters: []string{"Summer"},
		Log:               logging.DefaultConfig(),
		Publish:           PublishConfig{Port: 22, RemoteDir: "/"},
	}
}

// Load reads the YAML config file at path on top of the defaults.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := NewDefaultConfiguration()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv fills the publish target from SFTP_* variables. Host, port and
// directory only override the file when set; credentials always come from here.
func (c *Configuration) ApplyEnv() {
	c.Publish.Host = getenv("SFTP_HOST", c.Publish.Host)
	if p, err := strconv.Atoi(os.Getenv("SFTP_PORT")); err == nil {
		c.Publish.Port = p
	}
	c.Publish.User = os.Getenv("SFTP_USER")
	c.Publish.Pass = os.Getenv("SFTP_PASS")
	c.Publish.RemoteDir = getenv("SFTP_DIR", c.Publish.RemoteDir)
	c.Publish.KnownHostsFile = getenv("SFTP_KNOWN_HOSTS", c.Publish.KnownHostsFile)
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// JSONP callbacks are dotted JavaScript identifiers, e.g. "window.fce.load".
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

var courseIDPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

// Validate checks required fields and structural constraints.
func (c *Configuration) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: at least one source is required")
	}
	for i, s := range c.Sources {
		if s == "" {
			return fmt.Errorf("config: sources[%d] is empty", i)
		}
	}
	if c.Output == "" {
		return fmt.Errorf("config: output is required")
	}
	switch c.Format {
	case "json":
	case "csv":
		if c.Callback != "" {
			return fmt.Errorf("config: callback requires json format")
		}
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.Callback != "" && !callbackPattern.MatchString(c.Callback) {
		return fmt.Errorf("config: callback %q is not a valid JavaScript identifier", c.Callback)
	}
	if c.MinResponses < 0 {
		return fmt.Errorf("config: min_responses must not be negative")
	}
	if c.CutoffYear < 0 {
		return fmt.Errorf("config: cutoff_year must not be negative")
	}
	for newID, oldID := range c.Renumbering {
		if !courseIDPattern.MatchString(newID) || !courseIDPattern.MatchString(oldID) {
			return fmt.Errorf("config: renumbering %q -> %q: ids must be 1-5 digits", newID, oldID)
		}
	}
	if c.Publish.Enabled {
		if c.Publish.Host == "" || c.Publish.User == "" || c.Publish.Pass == "" {
			return fmt.Errorf("config: publish requires SFTP_HOST, SFTP_USER and SFTP_PASS")
		}
		if c.Publish.KnownHostsFile == "" && !c.Publish.InsecureIgnoreHostKey {
			return fmt.Errorf("config: publish requires known_hosts_file or insecure_ignore_host_key")
		}
	}
	return nil
}

// Layouts returns the export layouts the run should use.
func (c *Configuration) Layouts() (layout.Set, error) {
	if c.LayoutsFile == "" {
		return layout.Default(), nil
	}
	set, err := layout.Load(c.LayoutsFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return set, nil
}

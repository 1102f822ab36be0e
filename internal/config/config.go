package config

import (
	"bytes"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"benritz/tosqlpp/internal/generate"

	"gopkg.in/yaml.v3"
)

type Root struct {
	Source SourceSection `yaml:"source"`
	Target TargetSection `yaml:"target"`
	Table  TableSection  `yaml:"table"`
}

// SourceSection either carries a full URL or the individual MySQL
// connection fields.
type SourceSection struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type TargetSection struct {
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

type TableSection struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema"`
}

func LoadFile(path string) (*Root, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	expanded, err := ExpandIncludes(raw, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(expanded))
}

func Load(r io.Reader) (*Root, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Root{}, nil
	}
	if err := validateBytes(raw); err != nil {
		return nil, err
	}
	var cfg Root
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	expandEnv(&cfg)
	return &cfg, nil
}

func expandEnv(cfg *Root) {
	cfg.Source.URL = os.ExpandEnv(cfg.Source.URL)
	cfg.Source.Host = os.ExpandEnv(cfg.Source.Host)
	cfg.Source.User = os.ExpandEnv(cfg.Source.User)
	cfg.Source.Password = os.ExpandEnv(cfg.Source.Password)
	cfg.Source.Database = os.ExpandEnv(cfg.Source.Database)
}

// SourceURL returns the configured URL, or builds a mysql:// URL from the
// individual connection fields. It returns "" when neither is set.
func (s SourceSection) SourceURL() string {
	if s.URL != "" {
		return s.URL
	}
	if s.Host == "" && s.Database == "" {
		return ""
	}
	u := url.URL{
		Scheme: "mysql",
		Host:   s.Host,
		Path:   "/" + s.Database,
	}
	if s.Port != 0 {
		host := s.Host
		if host == "" {
			host = "localhost"
		}
		u.Host = net.JoinHostPort(host, strconv.Itoa(s.Port))
	}
	if s.User != "" {
		if s.Password != "" {
			u.User = url.UserPassword(s.User, s.Password)
		} else {
			u.User = url.User(s.User)
		}
	}
	return u.String()
}

// Options converts the config into generate options. Empty fields are
// skipped so that defaults and later options still apply.
func (c *Root) Options() []generate.Option {
	var opts []generate.Option
	if u := c.Source.SourceURL(); u != "" {
		opts = append(opts, generate.WithSourceURL(u))
	}
	if c.Table.Name != "" {
		opts = append(opts, generate.WithTable(c.Table.Name))
	}
	if c.Table.Schema != "" {
		opts = append(opts, generate.WithSchema(c.Table.Schema))
	}
	if c.Target.Path != "" {
		opts = append(opts, generate.WithTargetPath(c.Target.Path))
	}
	if c.Target.Namespace != "" {
		opts = append(opts, generate.WithNamespace(c.Target.Namespace))
	}
	return opts
}

package conf

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	Path string
	Port int

	global *Config
)

func G() *Config {
	if global == nil {
		panic("configuration not loaded")
	}

	return global
}

func ReplaceGlobals(cfg *Config) {
	global = cfg
}

func LoadEnv(cli *cli.Context) error {
	path := cli.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = homeDir + "/.flarex/cms"
	}

	Path = path
	Port = cli.Int("port")
	return nil
}

func LoadConfig() (*Config, error) {
	f, err := os.Open(Path + "/config.yaml")
	if err != nil {
		f, err = os.Open(Path + "/config.example.yaml")
		if err != nil {
			return nil, err
		}
	}
	defer f.Close()

	r, err := NewEnvExpandedReader(f)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Config struct {
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"baseUrl"`
	JWT         JWT         `yaml:"jwt"`
	Persistence Persistence `yaml:"persistence"`
	EventBus    EventBus    `yaml:"eventBus"`
	Site        Site        `yaml:"site"`
	Translator  Translator  `yaml:"translator"`
	Admins      []Admin     `yaml:"admins"`
	Providers   Providers   `yaml:"providers"`
	Discovery   Discovery   `yaml:"discovery"`
}

type JWT struct {
	Privkey ed25519.PrivateKey
	Timeout time.Duration
	Refresh struct {
		Enabled bool
		Maximum time.Duration
	}
	Audiences []string
}

func (cfg *JWT) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Privkey string
		Timeout string
		Refresh struct {
			Enabled bool
			Maximum string
		}
		Audiences []string
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	priv, err := base64.StdEncoding.DecodeString(raw.Privkey)
	if err != nil {
		return err
	}

	if len(priv) != ed25519.PrivateKeySize {
		return errors.New("invalid ed25519 private key length")
	}

	cfg.Privkey = ed25519.PrivateKey(priv)

	cfg.Timeout, err = parseDuration(raw.Timeout, 1*time.Hour)
	if err != nil {
		return err
	}

	cfg.Refresh.Enabled = raw.Refresh.Enabled
	if raw.Refresh.Enabled {
		cfg.Refresh.Maximum, err = parseDuration(raw.Refresh.Maximum, 1*time.Hour)
		if err != nil {
			return err
		}
	}

	if len(raw.Audiences) == 0 {
		return errors.New("at least one audience is required")
	}

	cfg.Audiences = raw.Audiences

	return nil
}

type PersistenceDriver int

const (
	SQLite PersistenceDriver = iota
	BadgerDB
	InMem
)

func ParsePersistenceDriver(driver string) (PersistenceDriver, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "badger":
		return BadgerDB, nil
	case "inmem":
		return InMem, nil
	default:
		return -1, errors.New("driver not supported")
	}
}

func (driver PersistenceDriver) String() string {
	switch driver {
	case SQLite:
		return "sqlite"
	case BadgerDB:
		return "badger"
	case InMem:
		return "inmem"
	default:
		return "unknown"
	}
}

type Persistence struct {
	Driver PersistenceDriver
	Name   string
	Host   string
	InMem  bool
}

func (p *Persistence) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Driver string `yaml:"driver"`
		Name   string `yaml:"name"`
		Host   string `yaml:"host"`
		InMem  bool   `yaml:"inmem"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	driver, err := ParsePersistenceDriver(raw.Driver)
	if err != nil {
		return err
	}

	p.Driver = driver
	p.Name = raw.Name

	p.Host = raw.Host
	if raw.Host == "" {
		p.Host = Path
	}

	p.InMem = raw.InMem

	return nil
}

type TransportProvider int

const (
	Local TransportProvider = iota
	NATS
)

func ParseTransportProvider(provider string) (TransportProvider, error) {
	switch provider {
	case "", "local":
		return Local, nil
	case "nats":
		return NATS, nil
	default:
		return -1, errors.New("provider not supported")
	}
}

func (p TransportProvider) String() string {
	switch p {
	case Local:
		return "local"
	case NATS:
		return "nats"
	default:
		return ""
	}
}

type EventBus struct {
	Provider TransportProvider
	URL      string
	Creds    string
}

func (e *EventBus) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Provider string `yaml:"provider"`
		URL      string `yaml:"url"`
		Creds    string `yaml:"creds"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	provider, err := ParseTransportProvider(raw.Provider)
	if err != nil {
		return err
	}

	e.Provider = provider
	e.URL = raw.URL
	e.Creds = raw.Creds

	return nil
}

type Site struct {
	BaseLocale    string
	Locales       []string
	AutoSync      bool
	AutoSyncDelay time.Duration
	Prune         bool
	CacheTTL      time.Duration
	Templates     string
}

func (s *Site) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseLocale    string   `yaml:"baseLocale"`
		Locales       []string `yaml:"locales"`
		AutoSync      bool     `yaml:"autoSync"`
		AutoSyncDelay string   `yaml:"autoSyncDelay"`
		Prune         bool     `yaml:"prune"`
		CacheTTL      string   `yaml:"cacheTTL"`
		Templates     string   `yaml:"templates"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	s.BaseLocale = raw.BaseLocale
	if s.BaseLocale == "" {
		s.BaseLocale = "en"
	}

	s.Locales = raw.Locales
	if !contains(s.Locales, s.BaseLocale) {
		s.Locales = append([]string{s.BaseLocale}, s.Locales...)
	}

	var err error

	s.AutoSync = raw.AutoSync
	s.AutoSyncDelay, err = parseDuration(raw.AutoSyncDelay, 5*time.Second)
	if err != nil {
		return err
	}

	s.Prune = raw.Prune

	s.CacheTTL, err = parseDuration(raw.CacheTTL, 10*time.Minute)
	if err != nil {
		return err
	}

	s.Templates = raw.Templates
	if s.Templates == "" {
		s.Templates = Path + "/templates"
	}

	return nil
}

type TranslatorProvider int

const (
	NoTranslator TranslatorProvider = iota
	Gemini
)

func ParseTranslatorProvider(provider string) (TranslatorProvider, error) {
	switch strings.ToLower(provider) {
	case "", "none":
		return NoTranslator, nil
	case "gemini":
		return Gemini, nil
	default:
		return -1, errors.New("translator not supported")
	}
}

func (p TranslatorProvider) String() string {
	switch p {
	case NoTranslator:
		return "none"
	case Gemini:
		return "gemini"
	default:
		return "unknown"
	}
}

type Translator struct {
	Provider  TranslatorProvider
	APIKey    string
	Model     string
	BatchSize int
}

func (t *Translator) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Provider  string `yaml:"provider"`
		APIKey    string `yaml:"apiKey"`
		Model     string `yaml:"model"`
		BatchSize int    `yaml:"batchSize"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	provider, err := ParseTranslatorProvider(raw.Provider)
	if err != nil {
		return err
	}

	t.Provider = provider
	t.APIKey = raw.APIKey
	t.Model = raw.Model

	t.BatchSize = raw.BatchSize
	if t.BatchSize <= 0 {
		t.BatchSize = 50
	}

	return nil
}

type Admin struct {
	Email string   `yaml:"email"`
	Roles []string `yaml:"roles"`
}

// FindAdmin looks up an allow-listed admin, ignoring email case.
func FindAdmin(admins []Admin, email string) (Admin, bool) {
	for _, a := range admins {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}

	return Admin{}, false
}

type Providers struct {
	Google GoogleProvider `yaml:"google"`
}

type GoogleProvider struct {
	Client      OAuthAPI `yaml:"client"`
	RedirectURI string   `yaml:"redirectURI"`
}

type OAuthAPI struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

type Discovery struct {
	Consul struct {
		Enabled bool     `yaml:"enabled"`
		Address string   `yaml:"address"`
		Service string   `yaml:"service"`
		Tags    []string `yaml:"tags"`
	} `yaml:"consul"`
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}

	return time.ParseDuration(s)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}

	return false
}

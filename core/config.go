package core

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// TableConfig carries the five forwarding options spec.md §6 recognizes.
type TableConfig struct {
	CSTimeoutSec      int  `yaml:"cs_timeout"`
	PITTimeoutSec     int  `yaml:"pit_timeout"`
	PITRetransmits    int  `yaml:"pit_retransmits"`
	AgeingIntervalSec int  `yaml:"ageing_interval"`
	InterestToApp     bool `yaml:"interest_to_app"`
}

// FaceConfig describes the listeners the link layer should open. The
// forwarding core never reads this directly; it is consumed by cmd/icnfwd
// to construct face.Face values before handing them to the Forwarder.
type FaceConfig struct {
	TCPBind       string `yaml:"tcp_bind"`
	WebSocketBind string `yaml:"websocket_bind"`
	QUICBind      string `yaml:"quic_bind"`
	TLSCert       string `yaml:"tls_cert"`
	TLSKey        string `yaml:"tls_key"`
}

// RepoConfig configures the out-of-scope "repository glue" collaborator
// that seeds the Content Store from disk.
type RepoConfig struct {
	Engine string `yaml:"engine"` // "memory" | "badger"
	Path   string `yaml:"path"`
}

// Config is the top-level configuration document, loaded from YAML via
// github.com/goccy/go-yaml the way the teacher's fw/cmd loads its own
// config with toolutils.ReadYaml.
type Config struct {
	BaseDir  string      `yaml:"-"`
	Table    TableConfig `yaml:"table"`
	Faces    FaceConfig  `yaml:"faces"`
	Repo     RepoConfig  `yaml:"repo"`
	MgmtBind string      `yaml:"mgmt_bind"`
	LogLvl   string      `yaml:"log_level"`
}

// DefaultConfig returns the configuration spec.md §6 documents as
// defaults: cs_timeout=10s, pit_timeout=10s, pit_retransmits=3,
// ageing_interval=4s, interest_to_app=false.
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			CSTimeoutSec:      10,
			PITTimeoutSec:     10,
			PITRetransmits:    3,
			AgeingIntervalSec: 4,
			InterestToApp:     false,
		},
		Repo: RepoConfig{
			Engine: "memory",
		},
		MgmtBind: "127.0.0.1:6363",
		LogLvl:   "INFO",
	}
}

// ReadYaml loads a YAML configuration file into cfg, mirroring the
// teacher's toolutils.ReadYaml helper.
func ReadYaml(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

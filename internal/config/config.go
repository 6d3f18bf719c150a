package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	AppName = "drivesync"

	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
	DefaultInterval        = 300 * time.Second
	DefaultLedgerPath      = "sync_state.json"
	DefaultLedgerBackend   = "json"
	DefaultLogLevel        = "info"
)

// Config 对应 config.yaml 的根结构
type Config struct {
	Drive  DriveConfig  `yaml:"drive"`
	Sync   SyncConfig   `yaml:"sync"`
	Ledger LedgerConfig `yaml:"ledger"`
	System SystemConfig `yaml:"system"`
}

// DriveConfig OAuth 凭据
type DriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// SyncConfig 同步相关配置
type SyncConfig struct {
	FolderID  string `yaml:"folder_id"`
	LocalPath string `yaml:"local_path"`
	// 纯数字按秒处理，也接受 "5m" 这类写法
	Interval string `yaml:"interval"`

	IntervalDuration time.Duration `yaml:"-"`
}

// LedgerConfig 账本存储
type LedgerConfig struct {
	Path    string `yaml:"path"`
	Backend string `yaml:"backend"` // json | bolt
}

// SystemConfig 系统配置
type SystemConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Keys 可以被命令行参数或环境变量覆盖的配置项
var Keys = []string{
	"drive.credentials_file",
	"drive.token_file",
	"sync.folder_id",
	"sync.local_path",
	"sync.interval",
	"ledger.path",
	"ledger.backend",
	"system.log_level",
	"system.log_file",
}

// Default 返回全部默认值
func Default() *Config {
	return &Config{
		Drive: DriveConfig{
			CredentialsFile: DefaultCredentialsFile,
			TokenFile:       DefaultTokenFile,
		},
		Sync: SyncConfig{
			Interval:         strconv.Itoa(int(DefaultInterval.Seconds())),
			IntervalDuration: DefaultInterval,
		},
		Ledger: LedgerConfig{Path: DefaultLedgerPath, Backend: DefaultLedgerBackend},
		System: SystemConfig{LogLevel: DefaultLogLevel},
	}
}

// DefaultPath $XDG_CONFIG_HOME/drivesync/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load 读取配置文件并补全默认值
// path 为空时读取 DefaultPath()，该文件不存在不算错误；显式指定的文件必须存在
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 没有配置文件，全部使用默认值
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Set 按 "section.key" 覆盖单个配置项
func (c *Config) Set(key, value string) error {
	switch key {
	case "drive.credentials_file":
		c.Drive.CredentialsFile = value
	case "drive.token_file":
		c.Drive.TokenFile = value
	case "sync.folder_id":
		c.Sync.FolderID = value
	case "sync.local_path":
		c.Sync.LocalPath = value
	case "sync.interval":
		c.Sync.Interval = value
	case "ledger.path":
		c.Ledger.Path = value
	case "ledger.backend":
		c.Ledger.Backend = value
	case "system.log_level":
		c.System.LogLevel = value
	case "system.log_file":
		c.System.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.normalize()
}

// normalize 解析间隔并校验枚举值
func (c *Config) normalize() error {
	d, err := ParseInterval(c.Sync.Interval)
	if err != nil {
		return fmt.Errorf("invalid sync.interval: %w", err)
	}
	c.Sync.IntervalDuration = d

	if c.Ledger.Backend == "" {
		c.Ledger.Backend = DefaultLedgerBackend
	}
	switch c.Ledger.Backend {
	case "json", "bolt":
	default:
		return fmt.Errorf("unknown ledger.backend %q (json or bolt)", c.Ledger.Backend)
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = DefaultLedgerPath
	}
	return nil
}

// ParseInterval 纯数字按秒解析，否则按 time.ParseDuration 解析
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultInterval, nil
	}
	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Second
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	return d, nil
}

// ValidateSync sync 命令需要 folder_id 与 local_path
func (c *Config) ValidateSync() error {
	var errs []error
	if c.Sync.FolderID == "" {
		errs = append(errs, errors.New("sync.folder_id (--folder-id) is required"))
	}
	if c.Sync.LocalPath == "" {
		errs = append(errs, errors.New("sync.local_path (--local-path) is required"))
	}
	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"regexp"
	"shopfloor/persistence"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "SHOPFLOOR"

const (
	KeyServiceName             = "service_name"
	KeyListenAddr              = "listen_addr"
	KeyLogFormat               = "log_format"
	KeyLogLevel                = "log_level"
	KeyDatabaseDriver          = "database_driver"
	KeyDatabaseDSN             = "database_dsn"
	KeyStoreTimeout            = "store_timeout"
	KeyMachineID               = "machine_id"
	KeyElasticsearchEnabled    = "elasticsearch_enabled"
	KeyIndexCron               = "index_cron"
	KeyIndexSyncRate           = "index_sync_rate"
	KeyTargetValuePerMinute    = "target_value_per_minute"
	KeyProfitabilityTolerance  = "profitability_tolerance"
	KeyPrimaryOperationPattern = "primary_operation_pattern"
)

type Config struct {
	ServiceName string
	ListenAddr  string
	LogFormat   string
	LogLevel    string

	Database  persistence.DatabaseConfig
	MachineID uint16

	ElasticsearchEnabled bool
	IndexCron            string
	IndexSyncRate        float64

	TargetValuePerMinute    decimal.Decimal
	ProfitabilityTolerance  decimal.Decimal
	PrimaryOperationPattern *regexp.Regexp
}

// NewViper returns a viper instance reading SHOPFLOOR_* variables, with every key defaulted.
// A .env file in the working directory is loaded first when present.
func NewViper() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env loaded: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServiceName, "shopfloor")
	v.SetDefault(KeyListenAddr, ":80")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDatabaseDriver, "mysql")
	v.SetDefault(KeyDatabaseDSN, "root:root@(127.0.0.1:3306)/shopfloor?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s")
	v.SetDefault(KeyStoreTimeout, 5*time.Second)
	v.SetDefault(KeyMachineID, 1)
	v.SetDefault(KeyElasticsearchEnabled, false)
	v.SetDefault(KeyIndexCron, "0 0 23 * * ?")
	v.SetDefault(KeyIndexSyncRate, 2.0)
	v.SetDefault(KeyTargetValuePerMinute, "1.00")
	v.SetDefault(KeyProfitabilityTolerance, "0.01")
	v.SetDefault(KeyPrimaryOperationPattern, `(?i)(lathe|turning|torno)`)
	return v
}

func Load() (*Config, error) {
	return LoadFrom(NewViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServiceName: v.GetString(KeyServiceName),
		ListenAddr:  v.GetString(KeyListenAddr),
		LogFormat:   v.GetString(KeyLogFormat),
		LogLevel:    v.GetString(KeyLogLevel),
		Database: persistence.DatabaseConfig{
			DriverType: v.GetString(KeyDatabaseDriver),
			DriverArgs: v.GetString(KeyDatabaseDSN),
			Timeout:    v.GetDuration(KeyStoreTimeout),
		},
		ElasticsearchEnabled: v.GetBool(KeyElasticsearchEnabled),
		IndexCron:            v.GetString(KeyIndexCron),
		IndexSyncRate:        v.GetFloat64(KeyIndexSyncRate),
	}

	machineID := v.GetUint(KeyMachineID)
	if machineID > 0xFFFF {
		return nil, fmt.Errorf("%s out of range: %d", KeyMachineID, machineID)
	}
	cfg.MachineID = uint16(machineID)

	if cfg.Database.DriverType != "mysql" && cfg.Database.DriverType != "sqlite3" {
		return nil, fmt.Errorf("unsupported %s %q", KeyDatabaseDriver, cfg.Database.DriverType)
	}
	if cfg.Database.Timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", KeyStoreTimeout)
	}

	var err error
	if cfg.TargetValuePerMinute, err = decimal.NewFromString(v.GetString(KeyTargetValuePerMinute)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyTargetValuePerMinute, err)
	}
	if cfg.ProfitabilityTolerance, err = decimal.NewFromString(v.GetString(KeyProfitabilityTolerance)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyProfitabilityTolerance, err)
	}
	if cfg.PrimaryOperationPattern, err = regexp.Compile(v.GetString(KeyPrimaryOperationPattern)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyPrimaryOperationPattern, err)
	}
	return cfg, nil
}

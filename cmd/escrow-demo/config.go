package main

import (
	"github.com/spf13/viper"
)

// Config is the base configuration of the demo
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Ledger selects where account state lives. Supported values are memory
	// and postgres.
	Ledger string `mapstructure:"ledger"`

	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     string `mapstructure:"postgres_port"`
	PostgresDbName   string `mapstructure:"postgres_db_name"`

	// PostgresUseAwsIam authenticates against RDS with an IAM token instead
	// of PostgresPassword
	PostgresUseAwsIam bool `mapstructure:"postgres_use_aws_iam"`

	PostgresMaxOpenConnections int `mapstructure:"postgres_max_open_connections"`
	PostgresMaxIdleConnections int `mapstructure:"postgres_max_idle_connections"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	Pass    string `mapstructure:"pass"`
	AmountX uint64 `mapstructure:"amount_x"`
	AmountY uint64 `mapstructure:"amount_y"`

	// PartyBWithdrawsFirst flips the order of the two withdrawals
	PartyBWithdrawsFirst bool `mapstructure:"party_b_withdraws_first"`
}

var defaultConfig = Config{
	LogLevel: "info",

	AppName: "escrow-demo",

	Ledger: "memory",

	PostgresPort: "5432",

	PostgresMaxOpenConnections: 10,
	PostgresMaxIdleConnections: 5,

	Pass:    "pass",
	AmountX: 100,
	AmountY: 50,

	PartyBWithdrawsFirst: true,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("ledger", "LEDGER")

	_ = viper.BindEnv("postgres_user", "POSTGRES_USER")
	_ = viper.BindEnv("postgres_password", "POSTGRES_PASSWORD")
	_ = viper.BindEnv("postgres_host", "POSTGRES_HOST")
	_ = viper.BindEnv("postgres_port", "POSTGRES_PORT")
	_ = viper.BindEnv("postgres_db_name", "POSTGRES_DB_NAME")
	_ = viper.BindEnv("postgres_use_aws_iam", "POSTGRES_USE_AWS_IAM")
	_ = viper.BindEnv("postgres_max_open_connections", "POSTGRES_MAX_OPEN_CONNECTIONS")
	_ = viper.BindEnv("postgres_max_idle_connections", "POSTGRES_MAX_IDLE_CONNECTIONS")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	_ = viper.BindEnv("pass", "ESCROW_PASS")
	_ = viper.BindEnv("amount_x", "ESCROW_AMOUNT_X")
	_ = viper.BindEnv("amount_y", "ESCROW_AMOUNT_Y")
	_ = viper.BindEnv("party_b_withdraws_first", "ESCROW_PARTY_B_WITHDRAWS_FIRST")
}

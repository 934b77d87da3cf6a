package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/code-escrow/pkg/bank"
	pg "github.com/code-payments/code-escrow/pkg/database/postgres"
	"github.com/code-payments/code-escrow/pkg/ledger"
	memory_ledger "github.com/code-payments/code-escrow/pkg/ledger/memory"
	postgres_ledger "github.com/code-payments/code-escrow/pkg/ledger/postgres"
	"github.com/code-payments/code-escrow/pkg/metrics"
	"github.com/code-payments/code-escrow/pkg/program/escrow"
	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

var configPath = flag.String("config", "config.yaml", "configuration file path")

func main() {
	flag.Parse()

	logger := logrus.StandardLogger().WithField("type", "cmd/escrow-demo")

	config, err := loadConfig()
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		metricsProvider, err = newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.WithError(err).Error("error connecting to new relic")
			os.Exit(1)
		}
		defer metricsProvider.Shutdown(0)
	}

	configureLogger(config, metricsProvider)

	ctx := metrics.NewContext(context.Background(), metricsProvider)

	store, err := newLedger(ctx, config)
	if err != nil {
		logger.WithError(err).Error("failed to initialize ledger")
		os.Exit(1)
	}

	b := bank.New(store, bank.WithEnvConfigs())
	b.RegisterProgram(swap_escrow.PROGRAM_ID, escrow.NewProcessor())

	if err := runSwap(ctx, b, config); err != nil {
		logger.WithError(err).Error("swap failed")
		os.Exit(1)
	}
}

func loadConfig() (Config, error) {
	// viper only reports a missing config file when it searched for one, so an
	// explicit path is only set when the file exists
	if _, err := os.Stat(*configPath); err == nil {
		viper.SetConfigFile(*configPath)
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return Config{}, err
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}

func configureLogger(config Config, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}

func newLedger(ctx context.Context, config Config) (ledger.Store, error) {
	switch strings.ToLower(config.Ledger) {
	case "", "memory":
		return memory_ledger.New(), nil
	case "postgres":
		var awsConfig aws.Config
		if config.PostgresUseAwsIam {
			var err error
			awsConfig, err = external.LoadDefaultAWSConfig()
			if err != nil {
				return nil, errors.Wrap(err, "failed to load aws config")
			}
		}

		db, err := pg.Open(ctx, pg.Config{
			User:               config.PostgresUser,
			Password:           config.PostgresPassword,
			Host:               config.PostgresHost,
			Port:               config.PostgresPort,
			DbName:             config.PostgresDbName,
			UseAwsIam:          config.PostgresUseAwsIam,
			MaxOpenConnections: config.PostgresMaxOpenConnections,
			MaxIdleConnections: config.PostgresMaxIdleConnections,
		}, awsConfig)
		if err != nil {
			return nil, err
		}
		return postgres_ledger.New(db), nil
	default:
		return nil, errors.Errorf("unsupported ledger: %s", config.Ledger)
	}
}

package pg

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/rdsutils"
	"github.com/pkg/errors"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

// driverName is the New Relic instrumented pgx driver
const driverName = "nrpgx"

// Config describes how to reach the ledger database
type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	DbName   string

	// UseAwsIam swaps Password for a short lived RDS IAM auth token. This is
	// only supported on provisioned Aurora clusters.
	UseAwsIam bool

	MaxOpenConnections int
	MaxIdleConnections int
}

// Open returns a verified connection pool for the config. awsConfig is only
// consulted when UseAwsIam is set.
//
// https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/UsingWithRDS.IAMDBAuth.Connecting.Go.html
func Open(ctx context.Context, c Config, awsConfig aws.Config) (*sql.DB, error) {
	var dsn string
	if c.UseAwsIam {
		rdsClient := rds.New(awsConfig)
		authToken, err := rdsutils.BuildAuthToken(
			fmt.Sprintf("%s:%s", c.Host, c.Port),
			rdsClient.Region,
			c.User,
			rdsClient.Credentials,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build rds auth token")
		}
		dsn = c.keywordDSN(authToken)
	} else {
		dsn = c.urlDSN()
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open connection pool")
	}

	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to reach database")
	}
	return db, nil
}

// keywordDSN is used with IAM tokens, which don't survive URL encoding on
// every driver version
func (c Config) keywordDSN(authToken string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, authToken, c.DbName,
	)
}

// TODO: enable SSL once the cluster cert is bundled with the deployment
// (https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/AuroraPostgreSQL.Security.html)
func (c Config) urlDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.DbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

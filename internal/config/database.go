package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN returns a go-sql-driver/mysql data source name for the override
// database. A configured ConnectionString wins over the discrete fields;
// TLSMode is applied to either form unless the DSN already carries tls.
func (d *DatabaseConfig) DSN() (string, error) {
	cfg, err := d.driverConfig()
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}

// DatabaseName returns the schema the override table lives in.
func (d *DatabaseConfig) DatabaseName() (string, error) {
	cfg, err := d.driverConfig()
	if err != nil {
		return "", err
	}
	return cfg.DBName, nil
}

func (d *DatabaseConfig) driverConfig() (*mysql.Config, error) {
	var cfg *mysql.Config

	if dsn := strings.TrimSpace(d.ConnectionString); dsn != "" {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("database.dsn is invalid: %w", err)
		}
		cfg = parsed
		if db := strings.TrimSpace(d.Database); db != "" && cfg.DBName != "" && cfg.DBName != db {
			return nil, fmt.Errorf(
				"database mismatch: database.database=%q but database.dsn targets %q",
				db,
				cfg.DBName,
			)
		}
		if cfg.DBName == "" {
			cfg.DBName = strings.TrimSpace(d.Database)
		}
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		cfg.DBName = strings.TrimSpace(d.Database)
	}

	if cfg.DBName == "" {
		return nil, fmt.Errorf("no database name configured: set database.database or include /<database> in database.dsn")
	}

	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if d.TLSMode != "" && cfg.TLSConfig == "" {
		cfg.TLSConfig = d.TLSMode
	}

	return cfg, nil
}

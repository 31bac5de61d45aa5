package config

import (
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	// DBName is the fixed database the service keeps its collections in.
	DBName = "MSGSVCDB"

	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr       string
	DBAddr     string
	DBName     string
	Store      string
	SQLitePath string
	RateLimit  uint
	LogLevel   string
}

func Default() Config {
	return Config{
		Addr:       "localhost:5000",
		DBAddr:     "localhost:27017",
		DBName:     DBName,
		Store:      StoreMongo,
		SQLitePath: "./msgsvc.db",
		RateLimit:  100,
		LogLevel:   "info",
	}
}

// Load builds the config from defaults, an optional .env file, the environment
// and finally the command line, each overriding the previous.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()
	return parse(args, os.LookupEnv)
}

func parse(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("MSGADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("DBADDR"); ok && v != "" {
		cfg.DBAddr = v
	}
	if v, ok := lookup("MSG_STORE"); ok && v != "" {
		cfg.Store = v
	}
	if v, ok := lookup("MSG_SQLITE_PATH"); ok && v != "" {
		cfg.SQLitePath = v
	}
	if v, ok := lookup("MSG_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, errors.Wrap(err, "invalid MSG_RATE_LIMIT")
		}
		cfg.RateLimit = uint(n)
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}

	flags := pflag.NewFlagSet("msgsvc", pflag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on (host:port)")
	flags.StringVar(&cfg.DBAddr, "db-addr", cfg.DBAddr, "mongodb address (host:port)")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: mongo or sqlite")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "database file for the sqlite store")
	flags.UintVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second allowed per client ip, 0 disables")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus level")
	if err := flags.Parse(args); err != nil {
		return Config{}, errors.Wrap(err, "error parsing flags")
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.Wrapf(err, "invalid listen address %q", c.Addr)
	}
	switch c.Store {
	case StoreMongo:
		if _, _, err := net.SplitHostPort(c.DBAddr); err != nil {
			return errors.Wrapf(err, "invalid database address %q", c.DBAddr)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite store needs a database path")
		}
	default:
		return errors.Errorf("unknown store %q", c.Store)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// InitSQLite opens the sqlite file at path in WAL mode. Messages reference
// channels by id only, so foreign keys are left off.
func InitSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "error opening sqlite database")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error opening sqlite database")
	}

	return conn, nil
}

// InitMongo connects to the mongod at addr (host:port) and verifies it answers a ping.
func InitMongo(ctx context.Context, addr string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+addr))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to mongodb at %s", addr)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrapf(err, "error pinging mongodb at %s", addr)
	}
	return client, nil
}

func CloseDB(databaseInstance *sql.DB) {
	if databaseInstance != nil {
		databaseInstance.Close()
		logrus.Info("database connection closed")
	}
}

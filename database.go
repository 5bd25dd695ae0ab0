package main

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blogApi/domain"
)

// Supported database dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Dialect of the database, see DialectPostgres and DialectSQLite.
	Dialect string
	// Connection info string containing database name, user, port etc.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(dialect, connectionInfo string) *DB {
	return &DB{
		Dialect:        dialect,
		ConnectionInfo: connectionInfo,
	}
}

// tables lists every model that has a table, parents before children.
var tables = []interface{}{
	&domain.User{},
	&domain.AccessToken{},
	&domain.Blog{},
	&domain.Post{},
	&domain.Like{},
	&domain.Comment{},
}

// Open opens a new database connection. It also configures logging
// based on whether we're in development or in production.
// Driver errors are translated, so that unique index violations
// surface as gorm.ErrDuplicatedKey.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return errors.New("connectionInfo required")
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if !isProd {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch db.Dialect {
	case DialectPostgres:
		dialector = postgres.Open(db.ConnectionInfo)
	case DialectSQLite:
		// Foreign keys are off by default in sqlite.
		dialector = sqlite.Open(db.ConnectionInfo + "?_foreign_keys=on")
	default:
		return errors.Errorf("unknown database dialect %q", db.Dialect)
	}

	db.Gorm, err = gorm.Open(dialector, cfg)
	if err != nil {
		return errors.Wrapf(err, "err opening gorm %s connection", db.Dialect)
	}
	return nil
}

// AutoMigrate runs database migrations for all tables.
func AutoMigrate(db *DB) error {
	return db.Gorm.AutoMigrate(tables...)
}

// DestructiveReset drops all tables and rebuilds them.
func DestructiveReset(db *DB) error {
	dropped := make([]interface{}, len(tables))
	for i, t := range tables {
		dropped[len(tables)-1-i] = t
	}
	if err := db.Gorm.Migrator().DropTable(dropped...); err != nil {
		return errors.Wrap(err, "dropping tables")
	}
	return AutoMigrate(db)
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// Manager handles the SQL connection used when STORAGE_BACKEND is sql.
type Manager struct {
	DB              *gorm.DB
	ShouldSaveLocal bool
	Logger          *log.Logger
}

// NewManager creates a new database manager.
func NewManager(logger *log.Logger) *Manager {
	return &Manager{Logger: logger}
}

// Connect opens Postgres at dsn, falling back to the SQLite file at sqlitePath if Postgres is unreachable,
// and migrates the schema.
func (m *Manager) Connect(dsn, sqlitePath string) error {
	db, err := m.GetPostgresDB(dsn)
	if err == nil {
		err = ping(db)
	}
	if err != nil {
		m.Logger.Errorf("Failed to connect to Postgres DB, trying SQLite: %v", err)
		m.ShouldSaveLocal = true
		db, err = m.GetSqliteDB(sqlitePath)
		if err != nil {
			return fmt.Errorf("failed to get local SQLite DB: %w", err)
		}
	} else {
		m.Logger.Info("Connected to Postgres database")
	}

	m.DB = db
	return m.Setup()
}

// GetPostgresDB returns a connection to the Postgres database.
func (m *Manager) GetPostgresDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// GetSqliteDB returns a connection to a SQLite database. MemoryPath gives a private in-memory database,
// which is pinned to a single connection so every query sees the same data.
func (m *Manager) GetSqliteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = MemoryPath
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if path == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, fmt.Errorf("error setting PRAGMA: %w", err)
	}

	m.Logger.Infof("Using local SQLite DB at %s", path)
	return db, nil
}

// Setup migrates the tables.
func (m *Manager) Setup() error {
	m.Logger.Info("Migrating schema")
	if err := m.DB.AutoMigrate(&userRow{}, &environmentRow{}, &objectRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Store returns the Store backed by this connection.
func (m *Manager) Store() *Store {
	return NewStore(m.DB, m.Logger)
}

// OpenMemory opens and migrates a private in-memory SQLite database. Used by tests and local runs.
func OpenMemory(logger *log.Logger) (*Store, error) {
	m := NewManager(logger)
	db, err := m.GetSqliteDB(MemoryPath)
	if err != nil {
		return nil, err
	}
	m.DB = db
	m.ShouldSaveLocal = true
	if err := m.Setup(); err != nil {
		return nil, err
	}
	return m.Store(), nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

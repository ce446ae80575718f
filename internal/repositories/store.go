package repositories

import (
	"context"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stores bundles the repositories of one backend together with its lifecycle hooks.
type Stores struct {
	Products ProductRepository
	Orders   OrderRepository
	Users    UserRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// Migrate prepares the backend schema (tables or indexes). It is a no-op in memory.
func (s *Stores) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.Driver. It never substitutes
// another backend when the configured one is unreachable.
func Open(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStores(), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := OpenGORM(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewGORMStores(db), nil
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		stores := NewMongoStores(client.Database(cfg.MongoDatabase))
		stores.close = client.Disconnect
		return stores, nil
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewMemoryStores returns empty in-memory repositories.
func NewMemoryStores() *Stores {
	return &Stores{
		Products: NewMemoryProductRepository(),
		Orders:   NewMemoryOrderRepository(),
		Users:    NewMemoryUserRepository(),
	}
}

// NewGORMStores wraps an open GORM connection.
func NewGORMStores(db *gorm.DB) *Stores {
	return &Stores{
		Products: NewGORMProductRepository(db),
		Orders:   NewGORMOrderRepository(db),
		Users:    NewGORMUserRepository(db),
		migrate: func(ctx context.Context) error {
			return MigrateGORM(db.WithContext(ctx))
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMongoStores wraps a mongo database handle.
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Products: NewMongoProductRepository(db),
		Orders:   NewMongoOrderRepository(db),
		Users:    NewMongoUserRepository(db),
		migrate: func(ctx context.Context) error {
			return EnsureMongoIndexes(ctx, db)
		},
	}
}

// OpenGORM opens a postgres or sqlite connection with driver errors translated
// to gorm sentinels such as gorm.ErrDuplicatedKey.
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("driver %q is not a GORM driver", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	if driver == config.DriverSQLite {
		// SQLite allows one writer at a time.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get sqlite handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// MigrateGORM creates or updates the tables.
func MigrateGORM(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&models.Product{}, &models.Order{}, &models.User{}), "failed to auto-migrate database")
}

// ConnectMongo connects and pings the primary so an unreachable server fails at startup.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to ping mongodb")
	}
	return client, nil
}

// EnsureMongoIndexes creates the unique and sort indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("products").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return errors.Wrap(err, "failed to create product indexes")
	}
	if _, err := db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		return errors.Wrap(err, "failed to create order indexes")
	}
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "failed to create user indexes")
	}
	return nil
}

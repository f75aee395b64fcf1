package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const (
	calculationsCollection = "ration_calculations"
	reportsCollection      = "feed_reports"
)

// Repository defines the archive operations backed by MongoDB.
type Repository interface {
	SaveCalculation(ctx context.Context, calc models.RationCalculation) error
	ListCalculations(ctx context.Context, herd string, limit int) ([]models.RationCalculation, error)
	SaveFeedReport(ctx context.Context, report models.FeedReport) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB, retrying the connect/ping
// handshake with exponential backoff up to retries attempts.
func NewMongoDBRepository(ctx context.Context, uri, dbName string, retries int, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries < 1 {
		retries = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client *mongo.Client
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			logger.Warn("mongodb connect failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			logger.Warn("mongodb ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		client = c
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", attempt, err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName), zap.Int("attempts", attempt))

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// SaveCalculation archives a ration calculation.
func (r *MongoDBRepository) SaveCalculation(ctx context.Context, calc models.RationCalculation) error {
	if _, err := r.db.Collection(calculationsCollection).InsertOne(ctx, calc); err != nil {
		return fmt.Errorf("failed to insert ration calculation: %w", err)
	}
	return nil
}

// ListCalculations returns the newest calculations first, optionally
// restricted to one herd.
func (r *MongoDBRepository) ListCalculations(ctx context.Context, herd string, limit int) ([]models.RationCalculation, error) {
	filter := bson.M{}
	if herd != "" {
		filter["herd"] = herd
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(calculationsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query ration calculations: %w", err)
	}
	defer cursor.Close(ctx)

	calcs := make([]models.RationCalculation, 0, limit)
	if err := cursor.All(ctx, &calcs); err != nil {
		return nil, fmt.Errorf("failed to decode ration calculations: %w", err)
	}
	return calcs, nil
}

// SaveFeedReport archives a weekly feed report.
func (r *MongoDBRepository) SaveFeedReport(ctx context.Context, report models.FeedReport) error {
	if _, err := r.db.Collection(reportsCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert feed report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

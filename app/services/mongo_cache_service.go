package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-validator/app/models"
)

const (
	validationCacheCollection = "validation_cache"
	accessStatsTimeout        = 5 * time.Second
)

// MongoCacheService persistent result cache: in-memory LRU (L1) in front of
// the validation_cache collection. Keys are input fingerprints.
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.ValidationResult]
	ttl        time.Duration
	logger     *zap.Logger

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	mongoHits atomic.Int64
}

// NewMongoCacheService creates the cache and its indexes. Index creation
// failures are logged, not returned.
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ValidationResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create l1 cache: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}

	collection := db.Collection(validationCacheCollection)

	createdAtIndex := options.Index()
	if ttl > 0 {
		createdAtIndex.SetExpireAfterSeconds(int32(ttl / time.Second))
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: createdAtIndex,
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "access_count", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Could not create validation_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

// Get looks in L1, then MongoDB. MongoDB hits are promoted to L1.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		return result.Clone(), true, nil
	}

	var entry models.ValidationCache
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.totalMiss.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query validation cache: %w", err)
	}

	// The TTL index is swept about once a minute, so expiry is checked here too.
	if entry.IsExpired(mcs.ttl) {
		mcs.totalMiss.Add(1)
		return nil, false, nil
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(entry.ID)

	result := &entry.Result
	if result.Corrections == nil {
		result.Corrections = []string{}
	}
	mcs.l1Cache.Add(key, result.Clone())

	return result, true, nil
}

// Set writes L1 and upserts the MongoDB record.
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	if result == nil {
		return nil
	}

	mcs.l1Cache.Add(key, result.Clone())

	entry := models.NewValidationCache(key, *result)
	_, err := mcs.collection.ReplaceOne(ctx,
		bson.M{"fingerprint": key},
		entry,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert validation cache %s: %w", key, err)
	}

	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return fmt.Errorf("delete validation cache %s: %w", key, err)
	}
	return nil
}

// Clear drops both levels and resets counters.
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	res, err := mcs.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("clear validation cache: %w", err)
	}

	mcs.totalHits.Store(0)
	mcs.totalMiss.Store(0)
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)

	mcs.logger.Info("Cleared MongoDB cache", zap.Int64("deleted_count", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count validation cache: %w", err)
	}

	hits, misses := mcs.totalHits.Load(), mcs.totalMiss.Load()

	mcs.logger.Debug("Cache stats",
		zap.Int64("l1_hits", mcs.l1Hits.Load()),
		zap.Int64("mongo_hits", mcs.mongoHits.Load()),
		zap.Int("l1_size", mcs.l1Cache.Len()),
		zap.Int64("mongo_count", count))

	return &CacheStats{
		Backend:    "mongo",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check validation cache %s: %w", key, err)
	}
	return count > 0, nil
}

// GetTTL remaining lifetime of the MongoDB record
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl == 0 {
		return 0, nil
	}

	var entry models.ValidationCache
	opts := options.FindOne().SetProjection(bson.M{"created_at": 1})
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	remaining := mcs.ttl - time.Since(entry.CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close the client is owned by the caller
func (mcs *MongoCacheService) Close() error {
	return nil
}

// updateAccessStats runs detached from the request so a finished request
// does not cancel the write.
func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), accessStatsTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}

	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("Could not update cache access stats", zap.Error(err))
	}
}

// WarmUp loads the most accessed records into L1
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.ValidationCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Skipping undecodable cache record", zap.Error(err))
			continue
		}
		if entry.IsExpired(mcs.ttl) {
			continue
		}

		mcs.l1Cache.Add(entry.Fingerprint, &entry.Result)
		count++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}

	mcs.logger.Info("Cache warm up finished",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))

	return nil
}

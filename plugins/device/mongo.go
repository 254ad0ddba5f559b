package device

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoService struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// DialMongo connects to the configured deployment and pings the primary, so
// an unreachable server is reported here instead of on the first insert.
func DialMongo(ctx context.Context, mongoConfig MongoConfig) (*MongoService, error) {
	timeout := mongoConfig.Timeout
	if timeout <= 0 {
		timeout = defaultMongoTimeout
	}
	opts := options.Client().
		ApplyURI(mongoConfig.URI).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", mongoConfig.URI, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", mongoConfig.URI, err)
	}
	log.Infof("MongoDB connected to %s", mongoConfig.URI)
	return NewMongoService(client, mongoConfig.Database, mongoConfig.Collection), nil
}

func NewMongoService(client *mongo.Client, database string, collection string) *MongoService {
	return &MongoService{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (service *MongoService) InsertMany(ctx context.Context, devices []*Device) error {
	log.Infof("Inserting %d devices into %s", len(devices), service.namespace())
	if len(devices) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(devices))
	for _, d := range devices {
		docs = append(docs, d)
	}
	_, err := service.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", service.namespace(), err)
	}
	return nil
}

func (service *MongoService) FindAll(ctx context.Context) ([]*Device, error) {
	log.Debugf("Finding all devices in %s", service.namespace())
	return service.find(ctx, bson.D{})
}

func (service *MongoService) FindByID(ctx context.Context, id int) ([]*Device, error) {
	log.Debugf("Finding devices by id %d in %s", id, service.namespace())
	return service.find(ctx, bson.D{{Key: "id", Value: id}})
}

func (service *MongoService) Count(ctx context.Context) (int64, error) {
	count, err := service.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", service.namespace(), err)
	}
	return count, nil
}

func (service *MongoService) Close(ctx context.Context) error {
	return service.client.Disconnect(ctx)
}

func (service *MongoService) find(ctx context.Context, filter bson.D) ([]*Device, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})
	cursor, err := service.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", service.namespace(), err)
	}
	devices := make([]*Device, 0)
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, fmt.Errorf("decode %s: %w", service.namespace(), err)
	}
	return devices, nil
}

func (service *MongoService) namespace() string {
	return service.collection.Database().Name() + "." + service.collection.Name()
}

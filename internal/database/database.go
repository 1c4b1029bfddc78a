package database

import (
	"context"
	"fmt"
	"time"

	"emporium_back_end/internal/config"
	"emporium_back_end/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Clients holds every backing service connection. Optional integrations
// are nil when their address is not configured.
type Clients struct {
	Mongo   *mongo.Client
	DB      *mongo.Database
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
	Scylla  *gocql.Session
	Kafka   *kafka.Writer

	log zerolog.Logger
}

// Connect dials MongoDB, which is required, then each optional service.
// A failing optional service is logged and left disabled.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	c := &Clients{log: log}

	if err := c.connectMongo(ctx, cfg); err != nil {
		return nil, err
	}
	if cfg.Redis.Addr != "" {
		c.connectRedis(ctx, cfg)
	}
	if cfg.Elastic.URL != "" {
		c.connectElastic(cfg)
	}
	if cfg.MinIO.Endpoint != "" {
		c.connectMinIO(ctx, cfg)
	}
	if len(cfg.Scylla.Hosts) > 0 {
		c.connectScylla(cfg)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		c.Kafka = NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka writer ready")
	}

	log.Info().Msg("all configured backends connected")
	return c, nil
}

func (c *Clients) connectMongo(ctx context.Context, cfg *config.Config) error {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetServerSelectionTimeout(cfg.Mongo.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	c.Mongo = client
	c.DB = client.Database(cfg.Mongo.Database)

	if err := repository.EnsureIndexes(ctx, c.DB); err != nil {
		return err
	}
	c.log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	return nil
}

func (c *Clients) connectRedis(ctx context.Context, cfg *config.Config) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, cache and revocation disabled")
		_ = client.Close()
		return
	}
	c.Redis = client
	c.log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
}

func (c *Clients) connectElastic(cfg *config.Config) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.URL},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("elasticsearch client not created, search falls back to mongo")
		return
	}

	res, err := client.Info()
	if err != nil {
		c.log.Warn().Err(err).Msg("elasticsearch unreachable, search falls back to mongo")
		return
	}
	defer res.Body.Close()

	c.Elastic = client
	c.log.Info().Str("url", cfg.Elastic.URL).Msg("connected to elasticsearch")
}

func (c *Clients) connectMinIO(ctx context.Context, cfg *config.Config) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("minio client not created, image upload disabled")
		return
	}

	exists, err := client.BucketExists(ctx, cfg.MinIO.Bucket)
	if err != nil {
		c.log.Warn().Err(err).Msg("minio unreachable, image upload disabled")
		return
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIO.Bucket, minio.MakeBucketOptions{}); err != nil {
			c.log.Warn().Err(err).Str("bucket", cfg.MinIO.Bucket).Msg("minio bucket not created")
			return
		}
		c.log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("minio bucket created")
	}

	c.MinIO = client
	c.log.Info().Str("endpoint", cfg.MinIO.Endpoint).Msg("connected to minio")
}

func (c *Clients) connectScylla(cfg *config.Config) {
	cluster := gocql.NewCluster(cfg.Scylla.Hosts...)
	cluster.Keyspace = cfg.Scylla.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Scylla.Timeout
	cluster.ReconnectInterval = time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	if cfg.Scylla.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Scylla.Username,
			Password: cfg.Scylla.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		c.log.Warn().Err(err).Msg("scylla unavailable, audit log disabled")
		return
	}
	c.Scylla = session
	c.log.Info().Str("keyspace", cfg.Scylla.Keyspace).Msg("connected to scylla")
}

// NewKafkaWriter builds the order events writer.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// Close releases every open connection.
func (c *Clients) Close(ctx context.Context) {
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing kafka writer")
		}
	}
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing redis")
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.log.Warn().Err(err).Msg("closing mongo")
		}
	}
	c.log.Info().Msg("backends closed")
}

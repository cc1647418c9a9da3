package util

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB dials MongoDB and returns the handle for the application database.
// Callers own the handle; nothing in this package keeps a client-level global.
func ConnectDB() *mongo.Database {
	log.Println("starting MongoDB connection..")
	client, err := mongo.NewClient(options.Client().ApplyURI(LoadEnvFor("DATABASE_URL")))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// try to ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}

	name := LoadEnvFor("DATABASE_NAME")
	if name == "" {
		name = "cultureshare"
	}

	log.Println("MongoDB connection successful")
	return client.Database(name)
}

// GetCollection returns a named collection from the application database.
func GetCollection(db *mongo.Database, name string) *mongo.Collection {
	return db.Collection(name)
}

// ConnectRedis dials Redis and returns the client handle.
func ConnectRedis() *redis.Client {
	redisUrl := LoadEnvFor("REDIS_URL")
	log.Printf("starting redis connection..%v", redisUrl)
	addr, err := redis.ParseURL(redisUrl)
	if err != nil {
		log.Fatal(err)
	}

	client := redis.NewClient(addr)

	log.Println("redis connection successful..")
	return client
}

// Command seed populates a local database with a demo user and a couple of
// sent surveys so the API has data to serve during development.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodoc "github.com/feedforward-app/feedforward-services/api/internal/infrastructure/mongo"
)

type seedOptions struct {
	mongoURI        string
	database        string
	userID          string
	credits         int
	dropCollections bool
}

func main() {
	opts := parseFlags()
	logger := log.New(os.Stdout, "[feedforward-seed] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(opts.mongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Printf("error disconnecting MongoDB: %v", err)
		}
	}()

	db := client.Database(opts.database)
	users := db.Collection("users")
	surveys := db.Collection("surveys")

	if opts.dropCollections {
		for _, collection := range []*mongo.Collection{users, surveys} {
			if err := collection.Drop(ctx); err != nil {
				logger.Fatalf("failed to drop %s: %v", collection.Name(), err)
			}
		}
		logger.Println("dropped users and surveys collections")
	}

	now := time.Now().UTC()

	userDoc := mongodoc.UserDocument{ID: opts.userID, Credits: opts.credits, CreatedAt: now}
	replaceOpts := options.Replace().SetUpsert(true)
	if _, err := users.ReplaceOne(ctx, bson.M{"_id": userDoc.ID}, userDoc, replaceOpts); err != nil {
		logger.Fatalf("failed to seed user: %v", err)
	}

	seedSurveys := buildSurveys(opts.userID, now)
	for _, doc := range seedSurveys {
		if _, err := surveys.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, replaceOpts); err != nil {
			logger.Fatalf("failed to seed survey %s: %v", doc.Title, err)
		}
	}

	logger.Printf("seeded user %q with %d credits and %d surveys", opts.userID, opts.credits, len(seedSurveys))
}

func parseFlags() seedOptions {
	opts := seedOptions{}
	flag.StringVar(&opts.mongoURI, "mongo-uri", envOrDefault("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	flag.StringVar(&opts.database, "db", envOrDefault("MONGO_DB", "feedforward"), "database name")
	flag.StringVar(&opts.userID, "user", "demo-user", "auth subject of the demo user")
	flag.IntVar(&opts.credits, "credits", 5, "credit balance of the demo user")
	flag.BoolVar(&opts.dropCollections, "drop", false, "drop collections before seeding")
	flag.Parse()
	return opts
}

func buildSurveys(userID string, now time.Time) []mongodoc.SurveyDocument {
	respondedAt := now.Add(-24 * time.Hour)

	return []mongodoc.SurveyDocument{
		{
			ID:       uuid.NewString(),
			UserID:   userID,
			Title:    "Lunch menu feedback",
			Subject:  "One quick question about our lunch menu",
			Body:     "Did you enjoy the new lunch menu?",
			DateSent: now.Add(-72 * time.Hour),
			YesCount: 2,
			NoCount:  1,
			LastRespondedAt: &respondedAt,
			Recipients: []mongodoc.RecipientDocument{
				{Email: "alice@example.com", Responded: true},
				{Email: "bob@example.com", Responded: true},
				{Email: "carol@example.com", Responded: true},
				{Email: "dave@example.com"},
			},
		},
		{
			ID:       uuid.NewString(),
			UserID:   userID,
			Title:    "Release survey",
			Subject:  "How was the latest release?",
			Body:     "Are you satisfied with the latest release?",
			DateSent: now.Add(-2 * time.Hour),
			Recipients: []mongodoc.RecipientDocument{
				{Email: "erin@example.com"},
				{Email: "frank@example.com"},
			},
		},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

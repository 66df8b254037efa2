package waitlist

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type subscriberDocument struct {
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
}

type mongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository ensures a unique index on email before returning.
func NewMongoRepository(ctx context.Context, client *mongo.Client, database, collection string) (WaitlistRepository, error) {
	if database == "" {
		database = constants.DefaultMongoDatabase
	}
	if collection == "" {
		collection = constants.DefaultMongoCollection
	}

	coll := client.Database(database).Collection(collection)

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("mongo: ensure email index: %w", err)
	}

	return &mongoRepository{client: client, collection: coll}, nil
}

func (r *mongoRepository) Name() string {
	return constants.BackendMongo
}

func (r *mongoRepository) Exists(ctx context.Context, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, newBackendError(false, err)
	}
	return count > 0, nil
}

func (r *mongoRepository) Append(ctx context.Context, email string) (*models.WaitlistUser, error) {
	doc := subscriberDocument{Email: email, CreatedAt: time.Now().UTC()}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) || apperrors.IsDuplicateKeyError(err) {
			return nil, newDuplicateError(err)
		}
		return nil, newBackendError(false, err)
	}

	return &models.WaitlistUser{Email: doc.Email, CreatedAt: doc.CreatedAt}, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"email": 1, "_id": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, newBackendError(false, err)
	}
	defer cursor.Close(ctx)

	emails := []string{}
	for cursor.Next(ctx) {
		var doc subscriberDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, newBackendError(false, err)
		}
		emails = append(emails, doc.Email)
	}
	if err := cursor.Err(); err != nil {
		return nil, newBackendError(false, err)
	}

	return emails, nil
}

func (r *mongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return newBackendError(false, err)
	}
	return nil
}

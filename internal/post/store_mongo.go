// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/geopost/internal/platform/dberr"
)

// CollectionName is the MongoDB collection holding posts.
const CollectionName = "posts"

// MongoRepository stores posts as documents keyed by their UUID string.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a repository over the posts collection of database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(CollectionName)}
}

// EnsureIndexes creates the access key, tag and recency indexes. It is safe to call on every start.
func (repository *MongoRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(context, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: FieldAccessKey, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("access_key_unique"),
		},
		{
			Keys:    bson.D{{Key: FieldTags, Value: 1}},
			Options: options.Index().SetName("tags"),
		},
		{
			Keys:    bson.D{{Key: FieldCreatedAt, Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	return err
}

func (repository *MongoRepository) Create(context context.Context, post *Post) error {
	_, err := repository.collection.InsertOne(context, post)
	return dberr.Wrap(err, resourceName)
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*Post, error) {
	return repository.findOne(context, bson.M{"_id": id})
}

func (repository *MongoRepository) FindByAccessKey(context context.Context, accessKey string) (*Post, error) {
	return repository.findOne(context, bson.M{FieldAccessKey: accessKey})
}

func (repository *MongoRepository) findOne(context context.Context, query bson.M) (*Post, error) {
	post := &Post{}
	if err := repository.collection.FindOne(context, query).Decode(post); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}

func (repository *MongoRepository) FindMatching(context context.Context, filter Filter, limit int) ([]*Post, error) {
	if filter.MatchNone() {
		return []*Post{}, nil
	}

	cursor, err := repository.collection.Find(context, filterDocument(filter),
		options.Find().SetSort(bson.D{{Key: FieldCreatedAt, Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}

	posts := make([]*Post, 0)
	if err := cursor.All(context, &posts); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return posts, nil
}

func (repository *MongoRepository) UpdateByID(context context.Context, id string, patch Patch) (*Post, error) {
	if patch.Empty() {
		return repository.FindByID(context, id)
	}

	post := &Post{}
	err := repository.collection.FindOneAndUpdate(context,
		bson.M{"_id": id},
		bson.M{"$set": patchDocument(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(post)
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}

func (repository *MongoRepository) DeleteByID(context context.Context, id string) (*Post, error) {
	return repository.deleteOne(context, bson.M{"_id": id})
}

func (repository *MongoRepository) DeleteByAccessKey(context context.Context, accessKey string) (*Post, error) {
	return repository.deleteOne(context, bson.M{FieldAccessKey: accessKey})
}

func (repository *MongoRepository) deleteOne(context context.Context, query bson.M) (*Post, error) {
	post := &Post{}
	if err := repository.collection.FindOneAndDelete(context, query).Decode(post); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return post, nil
}

// filterDocument converts a listing filter into a Mongo query. Tags use $all.
func filterDocument(filter Filter) bson.M {
	query := bson.M{}
	if len(filter.Tags) > 0 {
		query[FieldTags] = bson.M{"$all": filter.Tags}
	}
	for field, value := range filter.Equals {
		query[field] = value
	}
	return query
}

// patchDocument converts the non-nil patch fields into a $set document.
func patchDocument(patch Patch) bson.M {
	set := bson.M{}
	put := func(field string, value *string) {
		if value != nil {
			set[field] = *value
		}
	}

	put(FieldAuthorID, patch.AuthorID)
	put(FieldBody, patch.Body)
	put(FieldTitle, patch.Title)
	put(FieldImageKey, patch.ImageKey)
	put(FieldAvatarKey, patch.AvatarKey)
	put(FieldLocation, patch.Location)
	put(FieldTrueLocation, patch.TrueLocation)
	if patch.Tags != nil {
		set[FieldTags] = *patch.Tags
	}
	return set
}

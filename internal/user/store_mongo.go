// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/geopost/internal/platform/dberr"
)

// CollectionName is the MongoDB collection holding users.
const CollectionName = "users"

// MongoRepository stores users as documents keyed by their UUID string.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a repository over the users collection of database.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index. It is safe to call on every start.
func (repository *MongoRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.collection.Indexes().CreateOne(context, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (repository *MongoRepository) Create(context context.Context, user *User) error {
	_, err := repository.collection.InsertOne(context, user)
	return dberr.Wrap(err, resourceName)
}

func (repository *MongoRepository) FindByID(context context.Context, id string) (*User, error) {
	user := &User{}
	if err := repository.collection.FindOne(context, bson.M{"_id": id}).Decode(user); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}

func (repository *MongoRepository) UpdateByID(context context.Context, id string, patch Patch) (*User, error) {
	if patch.Empty() {
		return repository.FindByID(context, id)
	}

	user := &User{}
	err := repository.collection.FindOneAndUpdate(context,
		bson.M{"_id": id},
		bson.M{"$set": patchDocument(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}

func (repository *MongoRepository) DeleteByID(context context.Context, id string) (*User, error) {
	user := &User{}
	if err := repository.collection.FindOneAndDelete(context, bson.M{"_id": id}).Decode(user); err != nil {
		return nil, dberr.Wrap(err, resourceName)
	}
	return user, nil
}

// patchDocument converts the non-nil patch fields into a $set document.
func patchDocument(patch Patch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.AvatarKey != nil {
		set["avatar_key"] = *patch.AvatarKey
	}
	return set
}

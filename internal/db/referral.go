package db

import (
	"context"
	"errors"
	"time"

	"github.com/polinfinity/staking-sync/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const referralCacheID = "singleton"

type referralCacheDoc struct {
	ID                   string `bson:"_id"`
	*model.ReferralCache `bson:",inline"`
}

// LoadReferrer returns the cached referrer, or an empty string when nothing
// has been cached yet.
func (db *Database) LoadReferrer(ctx context.Context) (string, error) {
	filter := bson.M{"_id": referralCacheID}

	var doc referralCacheDoc
	err := db.collection(model.ReferralCacheCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if doc.ReferralCache == nil {
		return "", nil
	}
	return doc.Referrer, nil
}

func (db *Database) SaveReferrer(ctx context.Context, referrer string) error {
	doc := referralCacheDoc{
		ID: referralCacheID,
		ReferralCache: &model.ReferralCache{
			Referrer:  referrer,
			UpdatedAt: time.Now().Unix(),
		},
	}

	filter := bson.M{"_id": referralCacheID}
	update := bson.M{"$set": doc}

	_, err := db.collection(model.ReferralCacheCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

package claims

import (
	"context"
	"regexp"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TariffMongoRepository struct {
	Collection *mongo.Collection
}

func NewTariffMongoRepository(db *mongo.Client, dbName string) contracts.TariffRepository {
	return &TariffMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionTariffs),
	}
}

func (r *TariffMongoRepository) InsertTariffs(ctx context.Context, tariffs []models.Tariff) (int, error) {
	docs := make([]interface{}, 0, len(tariffs))
	for _, tariff := range tariffs {
		docs = append(docs, tariff)
	}
	result, err := r.Collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, exceptions.ErrMongoDBInsertDocument(err)
	}
	return len(result.InsertedIDs), nil
}

func (r *TariffMongoRepository) FindTariffByCode(ctx context.Context, itemCode string) (*models.Tariff, error) {
	return r.findOne(ctx, bson.M{"itemCode": itemCode})
}

func (r *TariffMongoRepository) FindTariffByName(ctx context.Context, itemName string) (*models.Tariff, error) {
	filter := bson.M{"itemName": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(itemName) + "$", Options: "i"}}
	return r.findOne(ctx, filter)
}

func (r *TariffMongoRepository) CountTariffs(ctx context.Context) (int64, error) {
	count, err := r.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, exceptions.ErrMongoDBFindDocument(err)
	}
	return count, nil
}

func (r *TariffMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Tariff, error) {
	var tariff models.Tariff
	err := r.Collection.FindOne(ctx, filter).Decode(&tariff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &tariff, nil
}

package claims

import (
	"context"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClaimMongoRepository struct {
	Claims  *mongo.Collection
	Results *mongo.Collection
}

func NewClaimMongoRepository(db *mongo.Client, dbName string) contracts.ClaimRepository {
	return &ClaimMongoRepository{
		Claims:  db.Database(dbName).Collection(constvars.MongoCollectionClaims),
		Results: db.Database(dbName).Collection(constvars.MongoCollectionClaimResults),
	}
}

func (r *ClaimMongoRepository) InsertClaim(ctx context.Context, claim *models.Claim) (string, error) {
	result, err := r.Claims.InsertOne(ctx, claim)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ClaimMongoRepository) FindClaimByID(ctx context.Context, claimID string) (*models.Claim, error) {
	objectID, err := primitive.ObjectIDFromHex(claimID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}
	var claim models.Claim
	err = r.Claims.FindOne(ctx, bson.M{"_id": objectID}).Decode(&claim)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &claim, nil
}

func (r *ClaimMongoRepository) FindClaims(ctx context.Context, page, pageSize int) ([]models.Claim, int64, error) {
	total, err := r.Claims.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.Claims.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var claims []models.Claim
	if err := cursor.All(ctx, &claims); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return claims, total, nil
}

func (r *ClaimMongoRepository) UpdateClaim(ctx context.Context, claim *models.Claim) error {
	objectID, err := primitive.ObjectIDFromHex(claim.ID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}

	update := bson.M{"$set": bson.M{
		"status":        claim.Status,
		"accuracyScore": claim.AccuracyScore,
		"passed":        claim.Passed,
		"errorMessage":  claim.ErrorMessage,
		"completedAt":   claim.CompletedAt,
		"updatedAt":     claim.UpdatedAt,
	}}
	_, err = r.Claims.UpdateOne(ctx, bson.M{"_id": objectID}, update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *ClaimMongoRepository) InsertClaimResult(ctx context.Context, result *models.ClaimResult) error {
	_, err := r.Results.InsertOne(ctx, result)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (r *ClaimMongoRepository) FindClaimResult(ctx context.Context, claimID, resultType string) (*models.ClaimResult, error) {
	var result models.ClaimResult
	filter := bson.M{"claimId": claimID, "resultType": resultType}
	err := r.Results.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &result, nil
}

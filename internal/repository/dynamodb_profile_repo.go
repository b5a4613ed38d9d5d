package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hitoshi/fridgelog/internal/model"
)

// DefaultProfilesTable はプロフィールテーブルの既定名。
const DefaultProfilesTable = "UserProfiles"

// profileRecord はUserProfilesテーブルの1アイテム。パーティションキーはuserId。
type profileRecord struct {
	UserID              string    `dynamodbav:"userId"`
	DisplayName         string    `dynamodbav:"displayName"`
	Bio                 string    `dynamodbav:"bio"`
	FavoriteIngredients []string  `dynamodbav:"favoriteIngredients"`
	RefrigeratorBrand   string    `dynamodbav:"refrigeratorBrand"`
	CreatedAt           time.Time `dynamodbav:"createdAt"`
	UpdatedAt           time.Time `dynamodbav:"updatedAt"`
}

func newProfileRecord(p *model.UserProfile) profileRecord {
	ingredients := p.FavoriteIngredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return profileRecord{
		UserID:              p.CognitoUserID,
		DisplayName:         p.DisplayName,
		Bio:                 p.Bio,
		FavoriteIngredients: ingredients,
		RefrigeratorBrand:   p.RefrigeratorBrand,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (r profileRecord) toModel() *model.UserProfile {
	ingredients := r.FavoriteIngredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return &model.UserProfile{
		CognitoUserID:       r.UserID,
		DisplayName:         r.DisplayName,
		Bio:                 r.Bio,
		FavoriteIngredients: ingredients,
		RefrigeratorBrand:   r.RefrigeratorBrand,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// DynamoDBProfileRepo はDynamoDBを使用したプロフィールリポジトリ。
type DynamoDBProfileRepo struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoDBProfileRepo はDynamoDBProfileRepoを生成する。
func NewDynamoDBProfileRepo(client DynamoDBAPI, table string) *DynamoDBProfileRepo {
	if table == "" {
		table = DefaultProfilesTable
	}
	return &DynamoDBProfileRepo{client: client, table: table}
}

func profileKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *DynamoDBProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            profileKey(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec profileRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("プロフィールのデコードに失敗しました: %w", err)
	}
	return rec.toModel(), nil
}

// Save はプロフィールアイテムを書き込む。
func (r *DynamoDBProfileRepo) Save(ctx context.Context, p *model.UserProfile) error {
	item, err := attributevalue.MarshalMap(newProfileRecord(p))
	if err != nil {
		return fmt.Errorf("プロフィールのエンコードに失敗しました: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーのプロフィールを削除する。
func (r *DynamoDBProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       profileKey(userID),
	})
	if err != nil {
		return fmt.Errorf("プロフィールの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*DynamoDBProfileRepo)(nil)

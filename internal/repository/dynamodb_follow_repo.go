package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hitoshi/fridgelog/internal/model"
)

// DefaultFollowsTable はフォローテーブルの既定名。
const DefaultFollowsTable = "Follows"

// followRecord はFollowsテーブルの1アイテム。
// パーティションキーはfollowerId、ソートキーはfollowingId。
type followRecord struct {
	FollowerID  string    `dynamodbav:"followerId"`
	FollowingID string    `dynamodbav:"followingId"`
	ID          string    `dynamodbav:"id"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
}

// DynamoDBFollowRepo はDynamoDBを使用したフォローリポジトリ。
type DynamoDBFollowRepo struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoDBFollowRepo はDynamoDBFollowRepoを生成する。
func NewDynamoDBFollowRepo(client DynamoDBAPI, table string) *DynamoDBFollowRepo {
	if table == "" {
		table = DefaultFollowsTable
	}
	return &DynamoDBFollowRepo{client: client, table: table}
}

func followKey(followerID, followingID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"followerId":  &types.AttributeValueMemberS{Value: followerID},
		"followingId": &types.AttributeValueMemberS{Value: followingID},
	}
}

// Create はフォロー関係を作成する。
// 条件付き書き込みで既存アイテムの上書きを防ぎ、重複時はfalseを返す。
func (r *DynamoDBFollowRepo) Create(ctx context.Context, edge *model.FollowEdge) (bool, error) {
	item, err := attributevalue.MarshalMap(followRecord{
		FollowerID:  edge.FollowerID,
		FollowingID: edge.FollowingID,
		ID:          edge.ID,
		CreatedAt:   edge.CreatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("フォローのエンコードに失敗しました: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(followerId)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return false, fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	return true, nil
}

// Delete はフォロー関係を削除する。
func (r *DynamoDBFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       followKey(followerID, followingID),
	})
	if err != nil {
		return fmt.Errorf("フォローの削除に失敗しました: %w", err)
	}
	return nil
}

// Exists はフォロー関係が存在するかを返す。
func (r *DynamoDBFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  followKey(followerID, followingID),
		ProjectionExpression: aws.String("followerId"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return len(out.Item) > 0, nil
}

// ListByFollower はフォロー中のユーザーをcreatedAt降順で返す。
// ソートキーはfollowingIdのため、取得後にcreatedAtで並べ替える。
func (r *DynamoDBFollowRepo) ListByFollower(ctx context.Context, followerID string) ([]*model.FollowEdge, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("followerId = :follower"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":follower": &types.AttributeValueMemberS{Value: followerID},
		},
	})

	var edges []*model.FollowEdge
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
		}

		var records []followRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, fmt.Errorf("フォロー一覧のデコードに失敗しました: %w", err)
		}
		for _, rec := range records {
			edges = append(edges, &model.FollowEdge{
				ID:          rec.ID,
				FollowerID:  rec.FollowerID,
				FollowingID: rec.FollowingID,
				CreatedAt:   rec.CreatedAt,
			})
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].CreatedAt.After(edges[j].CreatedAt)
	})
	return edges, nil
}

// compile-time interface check
var _ FollowRepository = (*DynamoDBFollowRepo)(nil)

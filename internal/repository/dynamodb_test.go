package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"

	"github.com/hitoshi/fridgelog/internal/model"
)

// fakeDynamoDB はキー属性で索引付けするインメモリのDynamoDBテーブル。
type fakeDynamoDB struct {
	keyAttrs []string
	items    map[string]map[string]types.AttributeValue
	order    []string
	putErr   error
}

func newFakeDynamoDB(keyAttrs ...string) *fakeDynamoDB {
	return &fakeDynamoDB{keyAttrs: keyAttrs, items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamoDB) keyOf(item map[string]types.AttributeValue) string {
	parts := make([]string, 0, len(f.keyAttrs))
	for _, attr := range f.keyAttrs {
		if s, ok := item[attr].(*types.AttributeValueMemberS); ok {
			parts = append(parts, s.Value)
		}
	}
	return strings.Join(parts, "\x00")
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[f.keyOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	key := f.keyOf(in.Item)
	if _, exists := f.items[key]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	if _, exists := f.items[key]; !exists {
		f.order = append(f.order, key)
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, f.keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query はパーティションキーの完全一致のみをサポートする。
func (f *fakeDynamoDB) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	var want string
	for _, v := range in.ExpressionAttributeValues {
		want = v.(*types.AttributeValueMemberS).Value
	}
	out := &dynamodb.QueryOutput{}
	for _, key := range f.order {
		item, ok := f.items[key]
		if !ok {
			continue
		}
		if s, ok := item[f.keyAttrs[0]].(*types.AttributeValueMemberS); ok && s.Value == want {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func TestDynamoDBProfileRepo_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamoDB("userId")
	repo := NewDynamoDBProfileRepo(client, "")

	got, err := repo.FindByUserID(ctx, "u1")
	if err != nil || got != nil {
		t.Fatalf("expected nil profile for missing user, got %+v, %v", got, err)
	}

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	want := &model.UserProfile{
		CognitoUserID:       "u1",
		DisplayName:         "Alice",
		Bio:                 "cook",
		FavoriteIngredients: []string{"Egg", "Milk"},
		RefrigeratorBrand:   "Panasonic",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err = repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID returned error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	if err := repo.DeleteByUserID(ctx, "u1"); err != nil {
		t.Fatalf("DeleteByUserID returned error: %v", err)
	}
	if err := repo.DeleteByUserID(ctx, "u1"); err != nil {
		t.Fatalf("second DeleteByUserID returned error: %v", err)
	}
	got, _ = repo.FindByUserID(ctx, "u1")
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestDynamoDBProfileRepo_EmptyIngredientsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoDBProfileRepo(newFakeDynamoDB("userId"), "")

	if err := repo.Save(ctx, &model.UserProfile{CognitoUserID: "u1"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID returned error: %v", err)
	}
	if got.FavoriteIngredients == nil || len(got.FavoriteIngredients) != 0 {
		t.Errorf("expected empty non-nil ingredients, got %#v", got.FavoriteIngredients)
	}
}

func TestDynamoDBFollowRepo_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoDBFollowRepo(newFakeDynamoDB("followerId", "followingId"), "")
	edge := &model.FollowEdge{ID: "e1", FollowerID: "alice", FollowingID: "bob", CreatedAt: time.Now()}

	created, err := repo.Create(ctx, edge)
	if err != nil || !created {
		t.Fatalf("expected first Create to insert, got created=%v err=%v", created, err)
	}
	created, err = repo.Create(ctx, edge)
	if err != nil {
		t.Fatalf("duplicate Create returned error: %v", err)
	}
	if created {
		t.Error("expected duplicate Create to report no insert")
	}

	exists, err := repo.Exists(ctx, "alice", "bob")
	if err != nil || !exists {
		t.Errorf("expected edge to exist, got %v, %v", exists, err)
	}
	exists, _ = repo.Exists(ctx, "bob", "alice")
	if exists {
		t.Error("follow edges must be directed")
	}
}

func TestDynamoDBFollowRepo_CreateWrapsOtherErrors(t *testing.T) {
	client := newFakeDynamoDB("followerId", "followingId")
	client.putErr = errors.New("throttled")
	repo := NewDynamoDBFollowRepo(client, "")

	_, err := repo.Create(context.Background(), &model.FollowEdge{FollowerID: "a", FollowingID: "b"})
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestDynamoDBFollowRepo_ListByFollowerNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewDynamoDBFollowRepo(newFakeDynamoDB("followerId", "followingId"), "")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, target := range []string{"bob", "carol", "dave"} {
		_, err := repo.Create(ctx, &model.FollowEdge{
			ID: target, FollowerID: "alice", FollowingID: target, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	_, _ = repo.Create(ctx, &model.FollowEdge{ID: "x", FollowerID: "bob", FollowingID: "alice", CreatedAt: base})

	edges, err := repo.ListByFollower(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByFollower returned error: %v", err)
	}
	var got []string
	for _, e := range edges {
		got = append(got, e.FollowingID)
	}
	if diff := cmp.Diff([]string{"dave", "carol", "bob"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if err := repo.Delete(ctx, "alice", "carol"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, "alice", "nobody"); err != nil {
		t.Fatalf("Delete of missing edge returned error: %v", err)
	}
	edges, _ = repo.ListByFollower(ctx, "alice")
	if len(edges) != 2 {
		t.Errorf("expected 2 edges after delete, got %d", len(edges))
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/schema"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var _ ProductStore = (*DynamoStore)(nil)

// DynamoStore implements ProductStore on a single DynamoDB table keyed by id.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a store over table using the shared client.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) FetchByID(ctx context.Context, id string) (*schema.Product, error) {
	if !schema.KeyFits(id) {
		return nil, nil
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       schema.Key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var product schema.Product
	if err := attributevalue.UnmarshalMap(out.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}

func (s *DynamoStore) ScanAll(ctx context.Context) ([]schema.Product, error) {
	products := make([]schema.Product, 0)
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		var batch []schema.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		products = append(products, batch...)
	}
	return products, nil
}

func (s *DynamoStore) ScanPage(ctx context.Context, cursor string, limit int32) ([]schema.Product, string, error) {
	if limit <= 0 {
		return nil, "", fmt.Errorf("page limit must be positive, got %d", limit)
	}
	startID, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
		Limit:     aws.Int32(limit),
	}
	if startID != "" {
		input.ExclusiveStartKey = schema.Key(startID)
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan products page: %w", err)
	}
	products := make([]schema.Product, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, "", fmt.Errorf("failed to decode products: %w", err)
	}

	var next string
	if lastKey, ok := out.LastEvaluatedKey[schema.HashKey].(*types.AttributeValueMemberS); ok {
		next = encodeCursor(lastKey.Value)
	}
	return products, next, nil
}

func (s *DynamoStore) Insert(ctx context.Context, product schema.Product) (*schema.Product, error) {
	item, err := attributevalue.MarshalMap(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product %s: %w", product.ID, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("failed to put product %s: %w", product.ID, err)
	}
	return &product, nil
}

func (s *DynamoStore) MergeUpdate(ctx context.Context, id string, patch schema.ProductPatch) (*schema.Product, error) {
	if !schema.KeyFits(id) {
		return nil, catalogerrors.ErrProductNotFound
	}
	if patch.IsEmpty() {
		current, err := s.FetchByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, catalogerrors.ErrProductNotFound
		}
		return current, nil
	}

	expr, err := expression.NewBuilder().
		WithUpdate(updateExpression(patch)).
		WithCondition(expression.AttributeExists(expression.Name(schema.HashKey))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       schema.Key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	var updated schema.Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &updated, nil
}

func updateExpression(patch schema.ProductPatch) expression.UpdateBuilder {
	var update expression.UpdateBuilder
	if patch.Name != nil {
		update = update.Set(expression.Name(schema.AttrName), expression.Value(*patch.Name))
	}
	if patch.Brand != nil {
		update = update.Set(expression.Name(schema.AttrBrand), expression.Value(*patch.Brand))
	}
	if patch.Price != nil {
		update = update.Set(expression.Name(schema.AttrPrice), expression.Value(*patch.Price))
	}
	if patch.Description != nil {
		update = update.Set(expression.Name(schema.AttrDescription), expression.Value(*patch.Description))
	}
	return update
}

func (s *DynamoStore) Remove(ctx context.Context, id string) error {
	if !schema.KeyFits(id) {
		return nil
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       schema.Key(id),
	}); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	}); err != nil {
		return fmt.Errorf("failed to describe table %s: %w", s.table, err)
	}
	return nil
}

// EnsureTable creates the table when it is missing and waits until it is active.
func (s *DynamoStore) EnsureTable(ctx context.Context, maxWait time.Duration) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table %s: %w", s.table, err)
	}

	if _, err := s.client.CreateTable(ctx, schema.CreateTableInput(s.table)); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", s.table, err)
		}
	}
	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, maxWait); err != nil {
		return fmt.Errorf("table %s did not become active: %w", s.table, err)
	}
	return nil
}

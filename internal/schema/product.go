// Package schema describes how products are laid out in DynamoDB.
package schema

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	TableName = "ProductsTable"
	HashKey   = "id"

	// MaxKeyBytes is the largest partition key DynamoDB accepts.
	MaxKeyBytes = 2048
)

// Attribute names of a product item.
const (
	AttrName        = "name"
	AttrBrand       = "brand"
	AttrPrice       = "price"
	AttrDescription = "description"
)

// Product is a single catalog item as stored in the table.
type Product struct {
	ID          string  `dynamodbav:"id"`
	Name        string  `dynamodbav:"name"`
	Brand       string  `dynamodbav:"brand"`
	Price       float64 `dynamodbav:"price"`
	Description string  `dynamodbav:"description"`
}

// ProductPatch carries the fields of a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Brand       *string
	Price       *float64
	Description *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Brand == nil && p.Price == nil && p.Description == nil
}

// Apply merges the patch into product in place.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Brand != nil {
		product.Brand = *p.Brand
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
}

// KeyFits reports whether id can be used as a partition key. Longer ids cannot
// name any stored item.
func KeyFits(id string) bool {
	return len(id) <= MaxKeyBytes
}

// Key builds the primary key of the item with the given id.
func Key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		HashKey: &types.AttributeValueMemberS{Value: id},
	}
}

// CreateTableInput is the table definition: a single string hash key, on-demand billing.
func CreateTableInput(table string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(HashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(HashKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}

// Package docstore keeps one document per signed-in identity in DynamoDB.
// Each document holds the identity's solved-question mapping; reads and
// full-document overwrites are the only operations.
package docstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// API is the subset of the DynamoDB client used by Client.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Config selects the table and, optionally, the region and endpoint.
type Config struct {
	Table    string
	Region   string
	Endpoint string // DynamoDB Local or another compatible endpoint
}

// userDocument is the item stored per identity.
type userDocument struct {
	ID     string          `dynamodbav:"id"`
	Solved map[string]bool `dynamodbav:"solved"`
}

// Client reads and overwrites identity documents.
type Client struct {
	api    API
	table  string
	logger *zap.Logger
}

// New wraps an existing DynamoDB API.
func New(api API, table string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, table: table, logger: logger}
}

// Connect builds a DynamoDB client from the default AWS configuration
// chain, applying cfg's region and endpoint overrides.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	api := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(api, cfg.Table, logger), nil
}

// Get returns the solved mapping stored for id. found is false when the
// identity has no document yet.
func (c *Client) Get(ctx context.Context, id string) (solved map[string]bool, found bool, err error) {
	proj := expression.NamesList(expression.Name("id"), expression.Name("solved"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, false, fmt.Errorf("build projection: %w", err)
	}

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("get document %s: %w", id, err)
	}
	if out.Item == nil {
		return map[string]bool{}, false, nil
	}

	var doc userDocument
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, false, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	if doc.Solved == nil {
		doc.Solved = map[string]bool{}
	}
	return doc.Solved, true, nil
}

// Put overwrites the document for id with solved.
func (c *Client) Put(ctx context.Context, id string, solved map[string]bool) error {
	if solved == nil {
		solved = map[string]bool{}
	}
	item, err := attributevalue.MarshalMap(userDocument{ID: id, Solved: solved})
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", id, err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put document %s: %w", id, err)
	}

	c.logger.Debug("document written",
		zap.String("table", c.table),
		zap.String("id", id),
		zap.Int("solved", len(solved)),
	)
	return nil
}

// Package dynamo implements repository.UserRepository on an Amazon DynamoDB
// table keyed by the string attribute "id".
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"userapi/internal/config"
	"userapi/internal/model"
	"userapi/internal/repository"
)

// API is the subset of *dynamodb.Client the repository calls.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// userItem is the stored item shape.
type userItem struct {
	ID     string `dynamodbav:"id"`
	Name   string `dynamodbav:"name"`
	Age    int    `dynamodbav:"age"`
	Avatar string `dynamodbav:"avatar,omitempty"`
}

func (it userItem) toModel() *model.User {
	return &model.User{ID: it.ID, Name: it.Name, Age: it.Age, Avatar: it.Avatar}
}

// UserDynamoDB is a DynamoDB implementation of repository.UserRepository.
// Existence preconditions are condition expressions evaluated by DynamoDB
// atomically with the write.
type UserDynamoDB struct {
	client API
	table  string
}

var _ repository.UserRepository = (*UserDynamoDB)(nil)

// NewUserDynamoDB creates a repository over the given table.
func NewUserDynamoDB(client API, table string) *UserDynamoDB {
	return &UserDynamoDB{client: client, table: table}
}

// NewClient builds a DynamoDB client from the ambient AWS credential chain
// (env, shared config, instance/task role). Calls are traced with otelaws.
func NewClient(ctx context.Context, region string, cfg config.DynamoDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func (r *UserDynamoDB) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

// Create puts the item with attribute_not_exists(id).
func (r *UserDynamoDB) Create(ctx context.Context, u *model.User) error {
	item, err := attributevalue.MarshalMap(userItem{ID: u.ID, Name: u.Name, Age: u.Age, Avatar: u.Avatar})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// FindByID reads with strong consistency so a create is visible immediately.
func (r *UserDynamoDB) FindByID(ctx context.Context, id string) (*model.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}
	var it userItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toModel(), nil
}

// List runs a single Scan page bounded by limit. The continuation key is discarded.
func (r *UserDynamoDB) List(ctx context.Context, limit int) ([]model.User, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	var raw []userItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	items := make([]model.User, 0, len(raw))
	for _, it := range raw {
		items = append(items, *it.toModel())
	}
	return items, nil
}

// Update builds a SET expression from the supplied fields only, guarded by
// attribute_exists(id), and returns ALL_NEW attributes.
func (r *UserDynamoDB) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	if p.Empty() {
		return nil, repository.ErrEmptyPatch
	}
	var upd expression.UpdateBuilder
	if p.Name != nil {
		upd = upd.Set(expression.Name("name"), expression.Value(*p.Name))
	}
	if p.Age != nil {
		upd = upd.Set(expression.Name("age"), expression.Value(*p.Age))
	}
	if p.Avatar != nil {
		upd = upd.Set(expression.Name("avatar"), expression.Value(*p.Avatar))
	}
	expr, err := expression.NewBuilder().
		WithUpdate(upd).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	var it userItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toModel(), nil
}

// Delete removes the item with attribute_exists(id).
func (r *UserDynamoDB) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      r.key(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Ping describes the table, which fails fast on bad credentials or a missing table.
func (r *UserDynamoDB) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

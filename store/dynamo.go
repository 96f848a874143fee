// store/dynamo.go - DynamoDB-backed Store
package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Items are marshaled using the json struct tags so the wire shape and
// the stored shape stay identical.
var (
	encoder = attributevalue.NewEncoder(func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	decoder = attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	})
)

// Dynamo implements Store on top of a DynamoDB client.
type Dynamo struct {
	client *dynamodb.Client
}

// NewDynamo builds a client from the default AWS credential chain.
func NewDynamo(ctx context.Context, region string) (*Dynamo, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Dynamo{client: dynamodb.NewFromConfig(cfg)}, nil
}

func marshalItem(item any) (map[string]types.AttributeValue, error) {
	av, err := encoder.Encode(item)
	if err != nil {
		return nil, err
	}
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("item must marshal to a map, got %T", av)
	}
	return m.Value, nil
}

func unmarshalItem(av map[string]types.AttributeValue, out any) error {
	return decoder.Decode(&types.AttributeValueMemberM{Value: av}, out)
}

func marshalKey(key Key) (map[string]types.AttributeValue, error) {
	return marshalItem(map[string]any(key))
}

func (d *Dynamo) Get(ctx context.Context, table string, key Key, out any) (bool, error) {
	k, err := marshalKey(key)
	if err != nil {
		return false, err
	}
	resp, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       k,
	})
	if err != nil {
		return false, fmt.Errorf("get %s: %w", table, err)
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := unmarshalItem(resp.Item, out); err != nil {
		return false, fmt.Errorf("decode %s item: %w", table, err)
	}
	return true, nil
}

func (d *Dynamo) Put(ctx context.Context, table string, item any) error {
	av, err := marshalItem(item)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

func (d *Dynamo) Delete(ctx context.Context, table string, key Key) error {
	k, err := marshalKey(key)
	if err != nil {
		return err
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       k,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (d *Dynamo) Query(ctx context.Context, table, index, attr string, value any, out any) error {
	keyCond := expression.Key(attr).Equal(expression.Value(value))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return fmt.Errorf("build query expression: %w", err)
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if index != "" {
		input.IndexName = aws.String(index)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("query %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	return decodeItems(items, out)
}

func (d *Dynamo) Scan(ctx context.Context, table string, out any) error {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	return decodeItems(items, out)
}

func (d *Dynamo) Update(ctx context.Context, table string, key Key, set map[string]any) error {
	k, err := marshalKey(key)
	if err != nil {
		return err
	}
	var update expression.UpdateBuilder
	for attr, value := range set {
		update = update.Set(expression.Name(attr), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       k,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// decodeItems unmarshals a page of items into *[]T.
func decodeItems(items []map[string]types.AttributeValue, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(items)))
	elemType := slice.Type().Elem()
	for _, item := range items {
		elem := reflect.New(elemType)
		if err := unmarshalItem(item, elem.Interface()); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

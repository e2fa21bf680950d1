// Package db looks up per-file metadata records from the metadata table.
package db

import (
	"os"
	"strconv"

	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"github.com/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

const metadataTable = "drumbot-metadata"

// BatchGetItem caps a request at 100 keys; we stay well under it so one
// bad batch can't dominate a lookup.
const maxBatchSize = 10

func getEndpoint() string {
	if endpoint := os.Getenv("METADATA_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

// GetMidiMetadatas fetches metadata records keyed by filename. Filenames
// with no record are simply absent from the result.
func GetMidiMetadatas(filenames []string) (map[string]model.MidiMetadata, error) {
	if len(filenames) > maxBatchSize {
		return nil, errors.Errorf("at most %v filenames per lookup, got %v", maxBatchSize, len(filenames))
	}

	res := make(map[string]model.MidiMetadata)

	if len(filenames) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(filename),
		}
		keys = append(keys, key)
	}

	endpoint := getEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating DynamoDB session")
	}

	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			metadataTable: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		return nil, errors.Wrap(err, "fetching midi metadata")
	}

	for _, v := range dbres.Responses[metadataTable] {
		var s model.MidiMetadata
		if v["Year"] != nil && v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			s.Year = uint(year)
		}
		if v["Artist"] != nil && v["Artist"].S != nil {
			s.Artist = *v["Artist"].S
		}
		if v["Release"] != nil && v["Release"].S != nil {
			s.Release = *v["Release"].S
		}
		if v["Title"] != nil && v["Title"].S != nil {
			s.Title = *v["Title"].S
		}
		if v["PK"] != nil && v["PK"].S != nil {
			res[*v["PK"].S] = s
		}
	}

	return res, nil
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/catalog/config"
)

// ProductDocument is the search projection of a product.
type ProductDocument struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	StockQuantity int      `json:"stock_quantity"`
	SKU           string   `json:"sku"`
	Brand         string   `json:"brand"`
	Tags          []string `json:"tags"`
}

// Indexer maintains the product search index.
type Indexer interface {
	IndexProduct(ctx context.Context, doc ProductDocument) error
	RemoveProduct(ctx context.Context, id string) error
}

// ElasticClient provides integration with Elasticsearch.
type ElasticClient struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticClient creates a new Elasticsearch client.
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		index:  cfg.Prefix + "-products",
	}, nil
}

// IndexProduct writes or overwrites the document for one product.
func (c *ElasticClient) IndexProduct(ctx context.Context, doc ProductDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal product document")
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index request failed: %s", string(msg))
	}

	log.Debug().Str("productID", doc.ID).Msg("Product indexed")
	return nil
}

// RemoveProduct deletes the document of a soft-deleted product. A missing
// document is not an error; the product may never have been indexed.
func (c *ElasticClient) RemoveProduct(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      c.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute delete request")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete request failed: %s", string(msg))
	}
	return nil
}

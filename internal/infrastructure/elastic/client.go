package elastic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	hzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
)

// Client reads the product catalog from an Elasticsearch index over the
// REST API.
type Client struct {
	httpClient *hzclient.Client
	baseURL    string
	apiKey     string
	index      string
	logger     *slog.Logger
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    entity.Product      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

type docResponse struct {
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source entity.Product `json:"_source"`
}

// NewClient creates a catalog client against the given Elasticsearch URL
// and index.
func NewClient(baseURL, apiKey, index string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	c, err := hzclient.NewClient(
		hzclient.WithDialTimeout(10*time.Second),
		hzclient.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	logger.Info("elasticsearch client created", "url", baseURL, "index", index)

	return &Client{
		httpClient: c,
		baseURL:    baseURL,
		apiKey:     apiKey,
		index:      index,
		logger:     logger,
	}, nil
}

// Ping verifies the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, consts.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("elasticsearch returned HTTP %d", status)
	}
	return nil
}

// GetByID fetches one product document.
func (c *Client) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	status, body, err := c.do(ctx, consts.MethodGet, fmt.Sprintf("/%s/_doc/%s", c.index, id), nil)
	if err != nil {
		return nil, domain.NewUpstreamError("product catalog", err)
	}
	if status == 404 {
		return nil, domain.NewNotFoundError("product", id)
	}
	if status != 200 {
		return nil, domain.NewUpstreamError("product catalog",
			fmt.Errorf("get document returned HTTP %d", status))
	}

	var doc docResponse
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, domain.NewUpstreamError("product catalog", err)
	}
	if !doc.Found {
		return nil, domain.NewNotFoundError("product", id)
	}

	product := doc.Source
	product.ID = doc.ID
	return &product, nil
}

// List pages through the catalog, optionally filtered by category.
func (c *Client) List(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error) {
	var query map[string]interface{}
	if category != "" {
		query = map[string]interface{}{"term": map[string]interface{}{"category": category}}
	} else {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	resp, err := c.search(ctx, map[string]interface{}{
		"query": query,
		"size":  limit,
		"from":  offset,
		"sort":  []interface{}{map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}}},
	})
	if err != nil {
		return nil, err
	}
	return resultFrom(resp, "", ""), nil
}

// Search runs the default semantic multi-field search.
func (c *Client) Search(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	resp, err := c.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^3", "description", "category^2", "brand"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
		"size": limit,
	})
	if err != nil {
		return nil, err
	}
	return resultFrom(resp, query, ""), nil
}

// SearchLexical runs a pure BM25 title match with no semantic expansion.
func (c *Client) SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	resp, err := c.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"title": map[string]interface{}{
					"query":     query,
					"fuzziness": "AUTO",
				},
			},
		},
		"highlight": highlightFields(),
		"size":      limit,
	})
	if err != nil {
		return nil, err
	}
	return resultFrom(resp, query, "lexical"), nil
}

// SearchHybrid combines semantic and lexical matching in one ranked query.
func (c *Client) SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	resp, err := c.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^3", "description^2", "category^2", "brand", "tags"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
		"highlight": highlightFields(),
		"size":      limit,
	})
	if err != nil {
		return nil, err
	}
	return resultFrom(resp, query, "hybrid"), nil
}

func (c *Client) search(ctx context.Context, body map[string]interface{}) (*searchResponse, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	status, respBody, err := c.do(ctx, consts.MethodPost, fmt.Sprintf("/%s/_search", c.index), payload)
	if err != nil {
		return nil, domain.NewUpstreamError("product catalog", err)
	}
	if status != 200 {
		return nil, domain.NewUpstreamError("product catalog",
			fmt.Errorf("search returned HTTP %d: %s", status, respBody))
	}

	var resp searchResponse
	if err := sonic.Unmarshal(respBody, &resp); err != nil {
		return nil, domain.NewUpstreamError("product catalog", err)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		return 0, nil, err
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}

func highlightFields() map[string]interface{} {
	return map[string]interface{}{
		"fields": map[string]interface{}{
			"title":       map[string]interface{}{},
			"description": map[string]interface{}{},
		},
	}
}

func resultFrom(resp *searchResponse, query, searchType string) *entity.SearchResult {
	products := make([]entity.Product, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		product := h.Source
		product.ID = h.ID
		product.Score = h.Score
		product.Highlight = h.Highlight
		products = append(products, product)
	}
	return &entity.SearchResult{
		Products: products,
		Total:    resp.Hits.Total.Value,
		Query:    query,
		Type:     searchType,
	}
}

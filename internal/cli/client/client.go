package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	hzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// APIClient wraps a Hertz client for talking to the storefront API server.
type APIClient struct {
	client *hzclient.Client
	server string
	apiKey string
}

// NewAPIClient creates a new API client.
func NewAPIClient(server, apiKey string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Standard library dialer for streaming support; netpoll does not
	// handle streaming bodies well.
	c, err := hzclient.NewClient(
		hzclient.WithDialTimeout(10*time.Second),
		hzclient.WithMaxIdleConnDuration(60*time.Second),
		hzclient.WithResponseBodyStream(true),
		hzclient.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
		apiKey: apiKey,
	}, nil
}

// normalizeServerURL ensures the server address has a scheme and no
// trailing slash.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

type chatPayload struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// ChatStream opens one streaming chat turn and returns the decoded event
// stream. Both channels close when the stream ends; transport faults arrive
// on the error channel.
func (c *APIClient) ChatStream(ctx context.Context, message, userID, agentID, imageBase64 string) (<-chan stream.Event, <-chan error, error) {
	req, resp, err := c.openChat(ctx, message, userID, agentID, imageBase64)
	if err != nil {
		return nil, nil, err
	}

	eventCh := make(chan stream.Event, 10)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			close(eventCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		d := stream.NewDecoder(resp.BodyStream(), nil)
		for {
			ev, err := d.Next()
			if err != nil {
				if err != io.EOF {
					errCh <- err
				}
				return
			}
			select {
			case eventCh <- ev:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return eventCh, errCh, nil
}

// RunTurn runs one chat turn to completion through the conversation reducer
// and returns the terminal state.
func (c *APIClient) RunTurn(ctx context.Context, message, userID string) (conversation.State, error) {
	req, resp, err := c.openChat(ctx, message, userID, "", "")
	if err != nil {
		return conversation.State{}, err
	}
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	d := stream.NewDecoder(resp.BodyStream(), nil)
	initial := conversation.NewState(uuid.New().String(), time.Now())
	return conversation.Run(d, initial, nil), nil
}

// ParseTripContext asks the server to pull destination, dates, and activity
// out of a free-form message.
func (c *APIClient) ParseTripContext(ctx context.Context, message string) (*domain.TripContext, error) {
	q := url.Values{}
	q.Set("message", message)

	body, err := c.do(ctx, consts.MethodPost, endpointTripContext+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var tc domain.TripContext
	if err := sonic.Unmarshal(body, &tc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &tc, nil
}

// ExtractItinerary asks the server for a day-by-day breakdown of a trip
// plan the assistant produced.
func (c *APIClient) ExtractItinerary(ctx context.Context, tripPlan string) ([]domain.ItineraryDay, error) {
	q := url.Values{}
	q.Set("trip_plan", tripPlan)

	body, err := c.do(ctx, consts.MethodPost, endpointItinerary+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Days []domain.ItineraryDay `json:"days"`
	}
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Days, nil
}

func (c *APIClient) openChat(ctx context.Context, message, userID, agentID, imageBase64 string) (*protocol.Request, *protocol.Response, error) {
	if message == "" {
		return nil, nil, fmt.Errorf("chat requires a message")
	}

	bodyBytes, err := sonic.Marshal(chatPayload{
		Message:     message,
		UserID:      userID,
		AgentID:     agentID,
		ImageBase64: imageBase64,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointChat)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		statusCode := resp.StatusCode()
		body := resp.Body()
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("chat failed with HTTP status: %d, body: %s", statusCode, string(body))
	}

	return req, resp, nil
}

// Search runs the default semantic search.
func (c *APIClient) Search(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return c.searchAt(ctx, endpointSearch, query, limit)
}

// SearchLexical runs the pure keyword search.
func (c *APIClient) SearchLexical(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return c.searchAt(ctx, endpointSearchLexical, query, limit)
}

// SearchHybrid runs the combined semantic+lexical search.
func (c *APIClient) SearchHybrid(ctx context.Context, query string, limit int) (*entity.SearchResult, error) {
	return c.searchAt(ctx, endpointSearchHybrid, query, limit)
}

func (c *APIClient) searchAt(ctx context.Context, endpoint, query string, limit int) (*entity.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var result entity.SearchResult
	if err := c.getJSON(ctx, endpoint+"?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByID fetches one product.
func (c *APIClient) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	if err := c.getJSON(ctx, endpointProducts+"/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts pages through the catalog.
func (c *APIClient) ListProducts(ctx context.Context, category string, limit, offset int) (*entity.SearchResult, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := endpointProducts
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result entity.SearchResult
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddToCart puts a product in the user's cart.
func (c *APIClient) AddToCart(ctx context.Context, userID, productID string, quantity int) error {
	bodyBytes, err := sonic.Marshal(entity.CartItem{ProductID: productID, Quantity: quantity})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	q := url.Values{}
	q.Set("user_id", userID)
	_, err = c.do(ctx, consts.MethodPost, endpointCart+"?"+q.Encode(), bodyBytes)
	return err
}

// GetCart returns the priced cart for a user.
func (c *APIClient) GetCart(ctx context.Context, userID, loyaltyTier string) (*entity.Cart, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	if loyaltyTier != "" {
		q.Set("loyalty_tier", loyaltyTier)
	}

	var cart entity.Cart
	if err := c.getJSON(ctx, endpointCart+"?"+q.Encode(), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveFromCart drops one product from the user's cart.
func (c *APIClient) RemoveFromCart(ctx context.Context, userID, productID string) error {
	q := url.Values{}
	q.Set("user_id", userID)
	_, err := c.do(ctx, consts.MethodDelete, endpointCart+"/"+url.PathEscape(productID)+"?"+q.Encode(), nil)
	return err
}

// ClearCart empties the user's cart.
func (c *APIClient) ClearCart(ctx context.Context, userID string) error {
	q := url.Values{}
	q.Set("user_id", userID)
	_, err := c.do(ctx, consts.MethodDelete, endpointCart+"?"+q.Encode(), nil)
	return err
}

// Ping checks server reachability.
func (c *APIClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, consts.MethodGet, endpointPing, nil)
	return err
}

func (c *APIClient) getJSON(ctx context.Context, path string, v interface{}) error {
	body, err := c.do(ctx, consts.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	c.authorize(req)
	if body != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	respBody, err := readFullBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("request failed with HTTP status: %d, body: %s", statusCode, string(respBody))
	}
	return respBody, nil
}

func (c *APIClient) authorize(req *protocol.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}

// readFullBody drains the body whether or not streaming is enabled.
func readFullBody(resp *protocol.Response) ([]byte, error) {
	if bs := resp.BodyStream(); bs != nil {
		return io.ReadAll(bs)
	}
	return resp.Body(), nil
}

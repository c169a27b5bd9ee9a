package agentbuilder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	hzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

const converseEndpoint = "/api/agent_builder/converse/async"

// maxLineSize bounds one upstream SSE line; tool results embed whole search
// responses.
const maxLineSize = 1024 * 1024

// client streams conversation turns from the Elastic Agent Builder API and
// normalizes its frames into the storefront event vocabulary.
type client struct {
	httpClient *hzclient.Client
	kibanaURL  string
	apiKey     string
	logger     *slog.Logger
}

type converseRequest struct {
	Input   string `json:"input"`
	AgentID string `json:"agent_id"`
}

// NewClient creates an Agent Builder client.
func NewClient(kibanaURL, apiKey string, timeout time.Duration, logger *slog.Logger) (domain.AgentStreamer, error) {
	// Standard library dialer: netpoll does not support streaming bodies.
	c, err := hzclient.NewClient(
		hzclient.WithDialTimeout(10*time.Second),
		hzclient.WithClientReadTimeout(timeout),
		hzclient.WithResponseBodyStream(true),
		hzclient.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent builder client: %w", err)
	}

	logger.Info("agent builder client created", "kibana_url", kibanaURL, "timeout", timeout)

	return &client{
		httpClient: c,
		kibanaURL:  kibanaURL,
		apiKey:     apiKey,
		logger:     logger,
	}, nil
}

// Converse opens a streaming turn against the named agent. The returned
// channel carries normalized events and is closed after the terminal
// completion (or error) event.
func (c *client) Converse(ctx context.Context, input, agentID string) (<-chan stream.Event, error) {
	body, err := sonic.Marshal(converseRequest{Input: input, AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal converse request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.kibanaURL + converseEndpoint)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("kbn-xsrf", "true")
	req.Header.Set("Accept", "text/event-stream")
	req.SetBody(body)

	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, domain.NewUpstreamError("agent platform", err)
	}

	if resp.StatusCode() != 200 {
		status := resp.StatusCode()
		detail := string(resp.Body())
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, domain.NewUpstreamError("agent platform",
			fmt.Errorf("converse returned HTTP %d: %s", status, detail))
	}

	out := make(chan stream.Event, 100)

	go func() {
		defer func() {
			close(out)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()
		c.pump(resp.BodyStream(), out)
	}()

	return out, nil
}

// ConverseSync runs a turn to completion and returns the assistant's full
// reply text. Used by the context-extractor and itinerary-extractor agents.
func (c *client) ConverseSync(ctx context.Context, input, agentID string) (string, error) {
	events, err := c.Converse(ctx, input, agentID)
	if err != nil {
		return "", err
	}

	state := conversation.Collect(conversation.NewState("", time.Now()), events)
	if state.Errored {
		return "", domain.NewUpstreamError("agent platform",
			fmt.Errorf("agent turn failed: %s", state.Message.Content))
	}
	return state.Message.Content, nil
}

// pump reads the upstream body line by line, normalizing as it goes. The
// loop suspends on each read and resumes on the next chunk or EOF.
func (c *client) pump(body io.Reader, out chan<- stream.Event) {
	if body == nil {
		ev, _ := stream.NewEvent(stream.TypeError, stream.ErrorData{Error: "empty response body"})
		out <- ev
		return
	}

	n := newNormalizer(c.logger)
	reader := bufio.NewReaderSize(body, maxLineSize)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				c.logger.Warn("upstream stream read failed", "error", err)
				ev, encErr := stream.NewEvent(stream.TypeError, stream.ErrorData{
					Error: fmt.Sprintf("connection error: %v", err),
				})
				if encErr == nil {
					out <- ev
				}
				return
			}
			// Trailing partial line at EOF is discarded.
			break
		}
		for _, ev := range n.line(line) {
			out <- ev
			if ev.Type == stream.TypeError {
				return
			}
		}
	}

	for _, ev := range n.finish() {
		out <- ev
	}
}

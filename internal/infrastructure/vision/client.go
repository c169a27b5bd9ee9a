package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	hzclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
)

// terrainPrompt steers the model toward gear-relevant observations.
const terrainPrompt = "Describe the terrain, weather conditions, elevation, and ground conditions " +
	"in this image for outdoor activity planning. Be specific about what gear " +
	"would be needed. Mention the likely location type (mountain, desert, forest, " +
	"coastal, arctic, etc.), season, and any hazards visible. Be concise."

// maxImageBytes caps the decoded image payload at 4MB.
const maxImageBytes = 4 * 1024 * 1024

// Client analyzes uploaded images through an OpenAI-compatible vision model
// endpoint.
type Client struct {
	httpClient *hzclient.Client
	endpoint   string
	apiKey     string
	model      string
	logger     *slog.Logger
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a vision analyzer. An empty apiKey yields a client whose
// Ready reports false, letting callers skip vision pre-analysis entirely.
func NewClient(endpoint, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	c, err := hzclient.NewClient(
		hzclient.WithDialTimeout(10*time.Second),
		hzclient.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &Client{
		httpClient: c,
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}, nil
}

// Ready reports whether the analyzer is configured.
func (c *Client) Ready() bool {
	return c.apiKey != "" && c.endpoint != ""
}

// AnalyzeImage returns a terrain description for a base64-encoded image.
// Accepts raw base64 or a full data URI.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64 string) (string, error) {
	clean, err := validateImage(imageBase64)
	if err != nil {
		return "", domain.NewInvalidInputError(err.Error())
	}

	body, err := sonic.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: terrainPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + clean}},
			},
		}},
		MaxTokens: 500,
	})
	if err != nil {
		return "", domain.NewInternalError(err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.endpoint)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(body)

	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		return "", domain.NewUpstreamError("vision model", err)
	}
	if resp.StatusCode() != 200 {
		return "", domain.NewUpstreamError("vision model",
			fmt.Errorf("vision endpoint returned HTTP %d", resp.StatusCode()))
	}

	var out chatResponse
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return "", domain.NewUpstreamError("vision model", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.NewUpstreamError("vision model", fmt.Errorf("empty vision response"))
	}

	description := out.Choices[0].Message.Content
	c.logger.Info("vision analysis complete", "chars", len(description))
	return description, nil
}

func validateImage(imageBase64 string) (string, error) {
	if strings.HasPrefix(imageBase64, "data:") {
		if _, b64, ok := strings.Cut(imageBase64, ","); ok {
			imageBase64 = b64
		}
	}
	if imageBase64 == "" {
		return "", fmt.Errorf("empty image payload")
	}
	decodedSize := len(imageBase64) * 3 / 4
	if decodedSize > maxImageBytes {
		return "", fmt.Errorf("image too large (%.1fMB), maximum is %dMB",
			float64(decodedSize)/1024/1024, maxImageBytes/1024/1024)
	}
	return imageBase64, nil
}

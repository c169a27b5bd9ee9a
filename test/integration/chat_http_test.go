//go:build integration
// +build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/network/netpoll"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/handler"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/infrastructure/agentbuilder"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/infrastructure/vision"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/usecase"
)

// Full HTTP SSE integration test for the chat endpoint.
// Requires a reachable Kibana Agent Builder:
//
//	WAYFINDER_AGENT_BUILDER_KIBANA_URL=https://... \
//	WAYFINDER_AGENT_BUILDER_API_KEY=... \
//	go test -tags integration ./test/integration/
func TestChatHTTP_SSE(t *testing.T) {
	kibanaURL := os.Getenv("WAYFINDER_AGENT_BUILDER_KIBANA_URL")
	apiKey := os.Getenv("WAYFINDER_AGENT_BUILDER_API_KEY")
	if kibanaURL == "" || apiKey == "" {
		t.Skip("WAYFINDER_AGENT_BUILDER_KIBANA_URL / WAYFINDER_AGENT_BUILDER_API_KEY not set")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	agent, err := agentbuilder.NewClient(kibanaURL, apiKey, 120*time.Second, logger)
	if err != nil {
		t.Fatalf("failed to create agent client: %v", err)
	}
	visionClient, err := vision.NewClient("", "", "", 30*time.Second, logger)
	if err != nil {
		t.Fatalf("failed to create vision client: %v", err)
	}

	chatUC := usecase.NewChatUsecase(agent, visionClient, logger)
	chatHandler := handler.NewChatHandler(chatUC, logger)

	const addr = "127.0.0.1:18080"
	h := server.New(
		server.WithHostPorts(addr),
		server.WithTransport(netpoll.NewTransporter),
	)

	api := h.Group("/api")
	api.POST("/chat", chatHandler.Chat)
	api.POST("/parse-trip-context", chatHandler.ParseTripContext)

	go func() {
		if err := h.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()

	// Wait for the server to come up
	time.Sleep(2 * time.Second)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Shutdown(ctx)
	}()

	baseURL := "http://" + addr

	t.Run("SSE streaming chat", func(t *testing.T) {
		reqBody := map[string]string{
			"message": "What should I pack for a weekend hike in the rain?",
			"user_id": "user_new",
		}
		bodyBytes, _ := json.Marshal(reqBody)
		req, err := http.NewRequest("POST", baseURL+"/api/chat", bytes.NewReader(bodyBytes))
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: 180 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "text/event-stream") {
			t.Errorf("expected Content-Type to contain 'text/event-stream', got '%s'", contentType)
		}

		reader := bufio.NewReader(resp.Body)
		eventCount := 0
		receivedDone := false
		sawComplete := false
		types := map[string]int{}

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				t.Fatalf("failed to read stream: %v", err)
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")

			if data == "[DONE]" {
				receivedDone = true
				break
			}

			var frame struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal([]byte(data), &frame); err != nil {
				t.Errorf("failed to unmarshal frame: %v, data: %s", err, data)
				continue
			}
			if frame.Type == "" {
				t.Errorf("frame without type: %s", data)
				continue
			}

			eventCount++
			types[frame.Type]++
			if frame.Type == "message_complete" {
				sawComplete = true
			}
		}

		if eventCount == 0 {
			t.Error("expected to receive at least one event")
		}
		if !receivedDone {
			t.Error("expected to receive [DONE] marker")
		}
		if !sawComplete {
			t.Error("expected a message_complete event before [DONE]")
		}

		t.Logf("received %d events: %v", eventCount, types)
	})

	t.Run("trip context extraction", func(t *testing.T) {
		req, err := http.NewRequest("POST",
			fmt.Sprintf("%s/api/parse-trip-context?message=%s", baseURL,
				"Planning+a+5-day+trek+in+Patagonia+this+November"), nil)
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}

		client := &http.Client{Timeout: 120 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("expected status 200, got %d, body: %s", resp.StatusCode, string(body))
		}

		var parsed map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		// Extraction is fail-soft: an empty object is valid, a decode
		// failure is not.
		t.Logf("trip context: %v", parsed)
	})
}

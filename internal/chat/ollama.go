package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// OllamaClient talks to a local Ollama server for conversational replies.
type OllamaClient struct {
	logger       *logrus.Logger
	client       *http.Client
	healthClient *http.Client
	host         string
	model        string
}

func NewOllamaClient(host, model string, generateTimeout, healthTimeout time.Duration, logger *logrus.Logger) *OllamaClient {
	return &OllamaClient{
		logger: logger,
		client: &http.Client{
			Timeout: generateTimeout,
		},
		healthClient: &http.Client{
			Timeout: healthTimeout,
		},
		host:  host,
		model: model,
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate asks the model for a single non-streamed completion.
func (c *OllamaClient) Generate(prompt, system string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0.7,
			"num_predict": 1024,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate payload: %v", err)
	}

	resp, err := c.client.Post(c.host+"/api/generate", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.WithError(err).WithField("model", c.model).Error("Ollama generate request failed")
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Ollama response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return "", fmt.Errorf("model %q is not available on the Ollama server", c.model)
		default:
			return "", fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse Ollama response: %v", err)
	}

	return result.Response, nil
}

// Health checks that the Ollama server answers at all. It uses a short
// timeout so a down server does not stall request handling.
func (c *OllamaClient) Health() error {
	resp, err := c.healthClient.Get(c.host + "/api/tags")
	if err != nil {
		return fmt.Errorf("Ollama server unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}
	return nil
}

// isTimeout reports whether an outbound call failed by running out of time
// rather than by any other transport or server error.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

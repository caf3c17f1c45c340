package classifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"accent-detector/domain/accent"
)

// maxResponseBytes bounds the inference response read into memory
const maxResponseBytes = 64 * 1024

// HTTPClassifier posts the WAV file to an inference endpoint
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier creates a classifier for the given endpoint
func NewHTTPClassifier(endpoint string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClassifier{endpoint: endpoint, client: client}
}

// Classify implements accent.Classifier
func (c *HTTPClassifier) Classify(ctx context.Context, audioPath string) (accent.Prediction, error) {
	p, err := c.classify(ctx, audioPath)
	if err != nil {
		return accent.Prediction{}, &accent.ClassificationError{AudioPath: audioPath, Err: err}
	}
	return p, nil
}

func (c *HTTPClassifier) classify(ctx context.Context, audioPath string) (accent.Prediction, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return accent.Prediction{}, fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, f)
	if err != nil {
		return accent.Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return accent.Prediction{}, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return accent.Prediction{}, fmt.Errorf("failed to read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return accent.Prediction{}, fmt.Errorf("inference endpoint returned status %d: %s", resp.StatusCode, body)
	}

	return parsePrediction(body)
}

// Ensure HTTPClassifier implements accent.Classifier
var _ accent.Classifier = (*HTTPClassifier)(nil)

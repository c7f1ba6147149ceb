package service

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"mill-data/internal/config"
)

// ErrClassifierUnavailable marks a transport-level classifier failure. It is
// surfaced to the operator separately from parse failures and never touches
// stored hazard or productivity data.
var ErrClassifierUnavailable = errors.New("photo classifier unavailable")

// Detection is one labeled detection returned by the classifier.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type detectRequest struct {
	Image         string  `json:"image"` // base64
	MinConfidence float64 `json:"min_confidence"`
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

// PhotoClient calls the external photo object-detection service. The core's
// only contract with it: given an image and a confidence floor, receive a
// list of (label, confidence) pairs.
type PhotoClient struct {
	httpClient    *resty.Client
	minConfidence float64
	logger        *zap.Logger
}

func NewPhotoClient(cfg *config.PhotoConfig, logger *zap.Logger) *PhotoClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PhotoClient{
		httpClient:    client,
		minConfidence: cfg.MinConfidence,
		logger:        logger,
	}
}

// Detect classifies one image and filters detections below the configured
// confidence floor.
func (c *PhotoClient) Detect(image []byte) ([]Detection, error) {
	req := detectRequest{
		Image:         base64.StdEncoding.EncodeToString(image),
		MinConfidence: c.minConfidence,
	}

	var response detectResponse
	resp, err := c.httpClient.R().
		SetBody(req).
		SetResult(&response).
		Post("/detect")
	if err != nil {
		c.logger.Error("photo classifier call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		c.logger.Error("photo classifier returned non-200",
			zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrClassifierUnavailable, resp.StatusCode())
	}

	kept := make([]Detection, 0, len(response.Detections))
	for _, d := range response.Detections {
		if d.Confidence >= c.minConfidence {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

// severityRank orders high > medium > low for picking the worst label.
var severityRank = map[string]int{"high": 3, "medium": 2, "low": 1}

// MapSeverity maps surviving labels through the label→severity table and
// returns the highest-priority matched severity with its label, or ("", "")
// when no label maps.
func MapSeverity(detections []Detection, labels map[string]string) (severity, label string) {
	best := 0
	for _, d := range detections {
		sev, ok := labels[d.Label]
		if !ok {
			continue
		}
		if severityRank[sev] > best {
			best = severityRank[sev]
			severity = sev
			label = d.Label
		}
	}
	return severity, label
}

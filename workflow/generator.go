package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	"github.com/go-resty/resty/v2"
)

// renderRequest is the payload sent to the document render service.
type renderRequest struct {
	RequestID      uint   `json:"request_id"`
	IssuerID       uint   `json:"issuer_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	CourseID       uint   `json:"course_id"`
	BatchCode      string `json:"batch_code,omitempty"`
}

// renderResult is the render service's response envelope.
type renderResult struct {
	Success      bool   `json:"success"`
	ArtifactURL  string `json:"artifact_url"`
	ErrorMessage string `json:"error_message"`
}

// RenderServiceGenerator calls the external document render service over
// HTTP to produce the certificate artifact.
type RenderServiceGenerator struct {
	client *resty.Client
}

// NewRenderServiceGenerator creates a generator client for the render
// service at baseURL with a bounded per-call timeout.
func NewRenderServiceGenerator(baseURL string, timeout time.Duration) *RenderServiceGenerator {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &RenderServiceGenerator{client: client}
}

// Generate renders one certificate document and returns its artifact URL.
func (g *RenderServiceGenerator) Generate(ctx context.Context, request *certification.CertificateRequest, issuerID uint) (string, error) {
	payload := renderRequest{
		RequestID:      request.ID,
		IssuerID:       issuerID,
		RecipientName:  request.RecipientName,
		RecipientEmail: request.RecipientEmail,
		CourseID:       request.CourseID,
		BatchCode:      request.BatchCode,
	}

	var result renderResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/render/certificate")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("render service returned %s", resp.Status())
	}
	if !result.Success {
		if result.ErrorMessage == "" {
			result.ErrorMessage = "render service reported failure"
		}
		return "", errors.New(result.ErrorMessage)
	}
	return result.ArtifactURL, nil
}

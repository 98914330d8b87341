package ocr

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for invoice extraction.
const DefaultModelName = "gemini-2.5-flash"

// Client extracts invoice line items from scanned invoices with a vision
// model. The raw text response is handed to the invoice package for parsing
// and defensive coercion; this client performs no validation of its own.
type Client struct {
	model string
}

func NewClient(model string) *Client {
	if model == "" {
		model = DefaultModelName
	}
	return &Client{model: model}
}

// ExtractInvoice sends the invoice bytes to the model and returns the raw
// text response.
func (c *Client) ExtractInvoice(ctx context.Context, blob []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("ExtractInvoice: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: invoiceExtractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     blob,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("ExtractInvoice: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("ExtractInvoice: empty response from model")
	}
	return rawText, nil
}

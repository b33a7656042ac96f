package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://api.mersal.sa/v1/messages"

// MersalClient sends templated WhatsApp messages through the Mersal gateway.
// Notifications are side channels: callers treat failures as non-fatal.
type MersalClient struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewMersalClient builds a client from MERSAL_ENDPOINT and MERSAL_TOKEN.
func NewMersalClient() *MersalClient {
	endpoint := os.Getenv("MERSAL_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &MersalClient{
		endpoint: endpoint,
		token:    os.Getenv("MERSAL_TOKEN"),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateMessage struct {
	To       string `json:"to"`
	Type     string `json:"type"`
	Template struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []templateComponent `json:"components"`
	} `json:"template"`
}

// SendTemplate posts one approved template message to a phone number,
// substituting bodyParams into the template body in order.
func (c *MersalClient) SendTemplate(ctx context.Context, phoneNumber, templateName string, bodyParams []string) error {
	params := make([]templateParameter, 0, len(bodyParams))
	for _, text := range bodyParams {
		params = append(params, templateParameter{Type: "text", Text: text})
	}

	msg := templateMessage{To: phoneNumber, Type: "template"}
	msg.Template.Name = templateName
	msg.Template.Language.Code = "ar"
	msg.Template.Components = []templateComponent{{Type: "body", Parameters: params}}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{"template": templateName, "error": err}).Warn("Mersal request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("mersal returned status %d", resp.StatusCode)
		log.WithFields(log.Fields{"template": templateName, "status": resp.StatusCode}).Warn("Mersal rejected message")
		return err
	}
	return nil
}

package paymentrepo

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lena-biju/library-managment/util/httpx"
)

const invoicesURL = "https://api.xendit.co/v2/invoices"

type httpProvider struct {
	apiKey        string
	callbackToken string
	client        *http.Client
}

func NewHTTP(apiKey, callbackToken string) Provider {
	return &httpProvider{apiKey: apiKey, callbackToken: callbackToken, client: httpx.Client()}
}

func (p *httpProvider) CreateInvoice(req CreateInvoiceReq) (*CreateInvoiceResp, error) {
	body := map[string]any{
		"external_id":      req.ExternalID,
		"amount":           req.Amount,
		"description":      req.Description,
		"payer_email":      req.PayerEmail,
		"invoice_duration": req.ExpirySec,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequest(http.MethodPost, invoicesURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(p.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider: create invoice failed: %s", resp.Status)
	}

	var out struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
		ExpiryDate string `json:"expiry_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("payment provider: empty invoice id")
	}
	return &CreateInvoiceResp{InvoiceID: out.ID, InvoiceURL: out.InvoiceURL, ExpiresAt: out.ExpiryDate}, nil
}

func (p *httpProvider) VerifyCallbackSignature(sigHeader string, _ []byte) error {
	if p.callbackToken == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(sigHeader), []byte(p.callbackToken)) != 1 {
		return errors.New("payment provider: bad callback token")
	}
	return nil
}

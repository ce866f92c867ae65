// Package paymentrepo is the payment-provider boundary. The provider is a
// black box: it takes an invoice request and later confirms payment through
// a webhook carrying an opaque invoice id we use as the payment reference.
package paymentrepo

type CreateInvoiceReq struct {
	ExternalID  string
	Amount      float64
	PayerEmail  string
	Description string
	ExpirySec   int
}

type CreateInvoiceResp struct {
	InvoiceID  string
	InvoiceURL string
	ExpiresAt  string
}

type Provider interface {
	CreateInvoice(req CreateInvoiceReq) (*CreateInvoiceResp, error)
	VerifyCallbackSignature(sigHeader string, rawBody []byte) error
}

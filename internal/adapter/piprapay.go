package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"strconv"
	"strings"

	"github.com/rakibuldev/piprapay-gobilling/internal/audit"
	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

var checkoutTmpl = template.Must(template.New("checkout").Parse(
	`<form action="{{.URL}}" method="GET"><input type="submit" value="Pay with PipraPay" class="btn btn-primary"></form>` +
		`{{if .AutoRedirect}}<script>document.forms[0].submit();</script>{{end}}`))

// PipraPay is the payment adapter: it builds hosted-checkout charges for
// invoices and applies verified IPN notifications to the billing records.
// All collaborators are injected at construction; it holds no other state.
type PipraPay struct {
	cfg          gateway.Config
	gw           Gateway
	invoices     InvoiceStore
	transactions TransactionStore
	clients      ClientStore
	audit        audit.Logger
}

func NewPipraPay(cfg gateway.Config, gw Gateway, invoices InvoiceStore, transactions TransactionStore, clients ClientStore, auditLog audit.Logger) (*PipraPay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	return &PipraPay{
		cfg:          cfg,
		gw:           gw,
		invoices:     invoices,
		transactions: transactions,
		clients:      clients,
		audit:        auditLog,
	}, nil
}

// buildCharge maps an invoice to the gateway's charge payload. The invoice
// total is already a decimal string and passes through untouched.
func (p *PipraPay) buildCharge(invoice *models.Invoice) gateway.ChargeRequest {
	return gateway.ChargeRequest{
		FullName:    strings.TrimSpace(invoice.Client.FirstName + " " + invoice.Client.LastName),
		EmailMobile: invoice.Client.Email,
		Amount:      invoice.Total,
		Currency:    p.cfg.Currency,
		Metadata:    gateway.ChargeMetadata{InvoiceID: invoice.ID.Hex()},
		RedirectURL: p.cfg.ReturnURL,
		CancelURL:   p.cfg.CancelURL,
		WebhookURL:  p.cfg.NotifyURL,
		ReturnType:  "POST",
	}
}

// RenderCheckout creates a fresh charge for the invoice and renders the
// redirect form pointing at the returned checkout URL. Every call creates a
// new charge; nothing is cached.
func (p *PipraPay) RenderCheckout(ctx context.Context, invoiceID string) (template.HTML, error) {
	invoice, err := p.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		p.audit.Event("checkout failed: invoice %s: %v", invoiceID, err)
		return "", err
	}

	url, err := p.gw.CreateCharge(ctx, p.buildCharge(invoice))
	if err != nil {
		p.audit.Event("checkout failed: create charge for invoice %s: %v", invoiceID, err)
		return "", err
	}
	p.audit.Event("charge created for invoice %s: %s", invoiceID, url)

	var buf bytes.Buffer
	if err := checkoutTmpl.Execute(&buf, struct {
		URL          string
		AutoRedirect bool
	}{url, p.cfg.AutoRedirect}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// ProcessNotification runs the IPN pipeline for one delivery: decode,
// validate, deduplicate, verify against the gateway, then apply. The inbound
// payload is never trusted for fund movement; only the verification response
// is. Every step is audited, including failures.
func (p *PipraPay) ProcessNotification(ctx context.Context, transactionID string, n Notification) error {
	ipn := p.decode(n)

	ppID := stringField(ipn, "pp_id")
	if ppID == "" || stringField(ipn, "status") == "" || metadataInvoiceID(ipn) == "" {
		p.audit.Event("ipn rejected: missing required fields")
		return ErrInvalidPayload
	}

	duplicate, err := p.transactions.ExistsByTxnID(ctx, ppID)
	if err != nil {
		p.audit.Event("ipn failed: duplicate check for pp_id %s: %v", ppID, err)
		return err
	}
	if duplicate {
		p.audit.Event("duplicate ipn detected for pp_id %s", ppID)
		return ErrDuplicateNotification
	}

	verify, err := p.gw.VerifyPayment(ctx, ppID)
	if err != nil {
		p.audit.Event("ipn failed: verification of pp_id %s: %v", ppID, err)
		return err
	}
	p.audit.Event("verification result for pp_id %s: status=%s amount=%s method=%s",
		ppID, verify.Status, verify.Amount, verify.PaymentMethod)

	if !strings.EqualFold(verify.Status, "completed") {
		p.audit.Event("payment not completed for pp_id %s: status=%s", ppID, verify.Status)
		return ErrPaymentNotCompleted
	}

	invoiceID := verify.Metadata.InvoiceID
	if invoiceID == "" {
		p.audit.Event("invoice id missing in verification metadata for pp_id %s", ppID)
		return ErrMissingInvoiceID
	}

	invoice, err := p.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		p.audit.Event("ipn failed: invoice %s: %v", invoiceID, err)
		return err
	}
	if _, err := p.transactions.GetTransaction(ctx, transactionID); err != nil {
		p.audit.Event("ipn failed: transaction %s: %v", transactionID, err)
		return err
	}

	upd := models.TransactionUpdate{
		TxnID:     verify.TransactionID,
		Amount:    string(verify.Amount),
		Currency:  p.cfg.Currency,
		TxnStatus: verify.Status,
		Type:      verify.PaymentMethod,
		Status:    "complete",
	}
	if err := p.transactions.Update(ctx, transactionID, upd); err != nil {
		p.audit.Event("ipn failed: update transaction %s: %v", transactionID, err)
		return err
	}
	p.audit.Event("transaction %s updated: txn_id=%s amount=%s status=complete", transactionID, upd.TxnID, upd.Amount)

	clientID := invoice.ClientID.Hex()
	if err := p.clients.AddFunds(ctx, clientID, string(verify.Amount), "PipraPay payment"); err != nil {
		p.audit.Event("ipn failed: add funds to client %s: %v", clientID, err)
		return err
	}
	if err := p.invoices.PayWithCredits(ctx, invoiceID); err != nil {
		p.audit.Event("ipn failed: pay invoice %s with credits: %v", invoiceID, err)
		return err
	}

	p.audit.Event("payment completed for invoice %s (pp_id %s)", invoiceID, ppID)
	return nil
}

// decode prefers the pre-parsed body and falls back to JSON-decoding the raw
// body. A decode failure leaves the payload empty, which fails validation
// rather than crashing.
func (p *PipraPay) decode(n Notification) map[string]any {
	p.audit.Event("ipn received: post=%s raw=%d bytes", compactJSON(n.Post), len(n.RawBody))

	ipn := n.Post
	if len(ipn) == 0 && len(n.RawBody) > 0 {
		if err := json.Unmarshal(n.RawBody, &ipn); err != nil {
			p.audit.Event("ipn raw body decode failed: %v", err)
			return nil
		}
		p.audit.Event("ipn decoded from raw body: %s", compactJSON(ipn))
	}
	return ipn
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func metadataInvoiceID(m map[string]any) string {
	if meta, ok := m["metadata"].(map[string]any); ok {
		if s := stringField(meta, "invoiceid"); s != "" {
			return s
		}
	}
	// Form-decoded deliveries flatten the metadata object into a PHP-style key.
	return stringField(m, "metadata[invoiceid]")
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unencodable>"
	}
	return string(b)
}

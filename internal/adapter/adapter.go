package adapter

import (
	"context"
	"errors"
	"html/template"

	"github.com/rakibuldev/piprapay-gobilling/internal/gateway"
	"github.com/rakibuldev/piprapay-gobilling/internal/models"
)

// Adapter is the contract a payment gateway integration exposes to the host:
// render a checkout page for an invoice and apply an asynchronous payment
// notification to a pending transaction. The host's dispatch layer knows
// nothing beyond these two operations.
type Adapter interface {
	RenderCheckout(ctx context.Context, invoiceID string) (template.HTML, error)
	ProcessNotification(ctx context.Context, transactionID string, n Notification) error
}

// Notification carries one inbound IPN delivery. Post is the decoded request
// body when the host already parsed it; RawBody is the unparsed body used as
// a fallback when Post is empty.
type Notification struct {
	Post    map[string]any
	RawBody []byte
}

var (
	ErrInvalidPayload        = errors.New("invalid ipn payload")
	ErrDuplicateNotification = errors.New("duplicate ipn notification")
	ErrMissingInvoiceID      = errors.New("invoice id missing in verification metadata")
	ErrPaymentNotCompleted   = errors.New("payment not completed")
)

// InvoiceStore is the slice of the billing platform the adapter reads
// invoices from and settles them through.
type InvoiceStore interface {
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	PayWithCredits(ctx context.Context, id string) error
}

// TransactionStore exposes the transaction record a notification applies to,
// plus the duplicate check keyed on the gateway charge id.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, id string, upd models.TransactionUpdate) error
	ExistsByTxnID(ctx context.Context, txnID string) (bool, error)
}

// ClientStore credits verified payments to the client's balance.
type ClientStore interface {
	GetClient(ctx context.Context, id string) (*models.Client, error)
	AddFunds(ctx context.Context, id string, amount string, note string) error
}

// Gateway is the outbound PipraPay API surface the adapter depends on.
type Gateway interface {
	CreateCharge(ctx context.Context, charge gateway.ChargeRequest) (string, error)
	VerifyPayment(ctx context.Context, ppID string) (*gateway.Verification, error)
}

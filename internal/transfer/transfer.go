package transfer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blockrepublic/subledger/internal/asset"
)

// Request describes an outbound movement of value the ledger asks the asset
// transfer service to execute.
type Request struct {
	From     string
	To       string
	Quantity asset.Asset
	Memo     string
}

// Receipt captures the transfer service's acknowledgement.
type Receipt struct {
	Reference string
}

// Gateway is the connector to the external asset transfer service. The ledger
// calls it to pay out withdrawals and to refund transfers it cannot credit.
type Gateway interface {
	Send(ctx context.Context, req Request) (Receipt, error)
}

// LoggerGateway is a stub implementation that writes transfer instructions to
// the structured logger. It stands in for a real transfer-engine connector.
type LoggerGateway struct {
	logger *slog.Logger
}

// NewLoggerGateway constructs a logging gateway stub.
func NewLoggerGateway(logger *slog.Logger) *LoggerGateway {
	return &LoggerGateway{logger: logger}
}

// Send writes the instruction to the structured logger and acknowledges it
// with a synthetic reference.
func (g *LoggerGateway) Send(_ context.Context, req Request) (Receipt, error) {
	ref := uuid.NewString()
	if g != nil && g.logger != nil {
		g.logger.Info("transfer requested",
			"reference", ref,
			"from", req.From,
			"to", req.To,
			"quantity", req.Quantity.String(),
			"memo", req.Memo,
		)
	}
	return Receipt{Reference: ref}, nil
}

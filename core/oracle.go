package core

import (
	"context"
	"time"

	"github.com/fox-one/msgpack"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Price latest oracle price per asset
type Price struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:price_idx" json:"asset_id"`
	Price     decimal.Decimal `sql:"type:decimal(32,16)" json:"price"`
	Content   types.JSONText  `sql:"type:varchar(1024)" json:"content,omitempty"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PriceData signed price payload from the oracle feed. SignerMask selects
// which configured signers co-signed the aggregated signature.
type PriceData struct {
	AssetID    string          `json:"asset_id" msgpack:"a"`
	Price      decimal.Decimal `json:"price" msgpack:"p"`
	Timestamp  int64           `json:"timestamp" msgpack:"t"`
	SignerMask uint64          `json:"signer_mask,omitempty" msgpack:"m"`
	Signature  []byte          `json:"signature,omitempty" msgpack:"s"`
}

// Payload the signed portion of the price data
func (p *PriceData) Payload() []byte {
	b, _ := msgpack.Marshal(PriceData{
		AssetID:   p.AssetID,
		Price:     p.Price,
		Timestamp: p.Timestamp,
	})
	return b
}

// MarshalBinary implements encoding.BinaryMarshaler
func (p *PriceData) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(p)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (p *PriceData) UnmarshalBinary(data []byte) error {
	return msgpack.Unmarshal(data, p)
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, price *Price) error
	Find(ctx context.Context, assetID string) (*Price, error)
}

// IPriceOracleService consumed price oracle collaborator.
//
// A missing or zero price is reported as ErrPriceUnavailable; the risk engine
// treats it as a hard rejection for any action needing a valuation.
type IPriceOracleService interface {
	GetUnderlyingPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
	PullPriceTickers(ctx context.Context, at time.Time) ([]*PriceData, error)
}

package oracle

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"lever/core"

	"github.com/bluele/gcache"
	"github.com/go-resty/resty/v2"
	"github.com/pandodao/blst"
	"github.com/shopspring/decimal"
)

type priceService struct {
	cfg        core.Oracle
	priceStore core.IPriceStore
	client     *resty.Client
	cache      gcache.Cache
	signers    []*blst.PublicKey
}

// New new price oracle service.
//
// Prices land in the price store via the price worker; reads go through a
// short-lived cache. A market whose price is missing or zero is unusable for
// any valuation.
func New(cfg core.Oracle, priceStore core.IPriceStore) (core.IPriceOracleService, error) {
	signers := make([]*blst.PublicKey, 0, len(cfg.Signers))
	for _, s := range cfg.Signers {
		bts, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("oracle: decode signer key: %w", err)
		}

		pub := blst.PublicKey{}
		if err := pub.FromBytes(bts); err != nil {
			return nil, fmt.Errorf("oracle: parse signer key: %w", err)
		}

		signers = append(signers, &pub)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10
	}

	client := resty.New().
		SetBaseURL(cfg.EndPoint).
		SetTimeout(10 * time.Second)

	return &priceService{
		cfg:        cfg,
		priceStore: priceStore,
		client:     client,
		cache:      gcache.New(512).LRU().Expiration(time.Duration(ttl) * time.Second).Build(),
		signers:    signers,
	}, nil
}

func (s *priceService) GetUnderlyingPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if v, err := s.cache.Get(assetID); err == nil {
		if p, ok := v.(decimal.Decimal); ok {
			return p, nil
		}
	}

	price, err := s.priceStore.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if price.ID == 0 || !price.Price.IsPositive() {
		return decimal.Zero, core.ErrPriceUnavailable
	}

	_ = s.cache.Set(assetID, price.Price)
	return price.Price, nil
}

func (s *priceService) PullPriceTickers(ctx context.Context, at time.Time) ([]*core.PriceData, error) {
	var tickers []*core.PriceData
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("time", fmt.Sprint(at.UTC().Unix())).
		SetResult(&tickers).
		Get("/prices")
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("oracle: pull prices: status %d", resp.StatusCode())
	}

	verified := make([]*core.PriceData, 0, len(tickers))
	for _, t := range tickers {
		if !t.Price.IsPositive() {
			continue
		}

		if len(s.signers) > 0 && !s.verify(t) {
			continue
		}

		verified = append(verified, t)
	}

	return verified, nil
}

func (s *priceService) verify(p *core.PriceData) bool {
	var pubs []*blst.PublicKey
	for idx, pub := range s.signers {
		if p.SignerMask&(0x1<<uint(idx+1)) != 0 {
			pubs = append(pubs, pub)
		}
	}

	if len(pubs) < s.cfg.Threshold {
		return false
	}

	sig := blst.Signature{}
	if err := sig.FromBytes(p.Signature); err != nil {
		return false
	}

	return blst.AggregatePublicKeys(pubs).Verify(p.Payload(), &sig)
}

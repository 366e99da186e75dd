package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lever config
type Config struct {
	App    App       `json:"app" valid:"required"`
	DB     db.Config `json:"db"`
	Oracle Oracle    `json:"oracle"`

	Admins    []string `json:"admins" valid:"required"`
	Guardians []string `json:"guardians"`
}

// App app config
type App struct {
	Genesis  int64  `json:"genesis"`
	Location string `json:"location"`
}

// Oracle price feed config
type Oracle struct {
	EndPoint string `json:"end_point" valid:"url,optional"`
	// Signers base64 BLS public keys of the feed signers
	Signers []string `json:"signers"`
	// Threshold signatures required before a price is accepted
	Threshold int `json:"threshold"`
	// CacheTTL seconds a price stays fresh in the local cache
	CacheTTL int64 `json:"cache_ttl"`
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key types, used as key prefixes and as the keyType of cache hooks.
const (
	KeyRanks  = "ranks"
	KeyLayout = "layout"
	KeyTrend  = "trend"
)

// RanksKeyOpts are the inputs that determine a ranking table.
type RanksKeyOpts struct {
	Dataset string `json:"dataset"`
	Metric  string `json:"metric"`
	Country string `json:"country,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// LayoutKeyOpts are the inputs that determine a settled dot map.
type LayoutKeyOpts struct {
	Width  float64 `json:"width"`
	Count  int     `json:"count"`
	Region string  `json:"region,omitempty"`
	Seed   int64   `json:"seed,omitempty"`
}

// TrendKeyOpts are the inputs that determine a scatter plot trend.
type TrendKeyOpts struct {
	X      string `json:"x"`
	Y      string `json:"y"`
	LogLog bool   `json:"loglog"`
}

// Keyer derives cache keys. dataHash identifies the loaded dataset so
// that entries computed from stale data are never served.
type Keyer interface {
	RanksKey(dataHash string, opts RanksKeyOpts) string
	LayoutKey(dataHash string, opts LayoutKeyOpts) string
	TrendKey(dataHash string, opts TrendKeyOpts) string
}

// DefaultKeyer hashes all inputs into a "type:sha256" key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RanksKey implements Keyer.
func (DefaultKeyer) RanksKey(dataHash string, opts RanksKeyOpts) string {
	return hashKey(KeyRanks, dataHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyLayout, dataHash, opts)
}

// TrendKey implements Keyer.
func (DefaultKeyer) TrendKey(dataHash string, opts TrendKeyOpts) string {
	return hashKey(KeyTrend, dataHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// KeyType returns the type prefix of a key produced by a Keyer, ignoring
// any scope prefix.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

package redis

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Key prefix for all registry data
const keyPrefix = "registry"

// accountKey returns the Redis key for the account at addr
func accountKey(addr solana.PublicKey) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, addr)
}

// processedKey returns the Redis key marking a transaction id as processed
func processedKey(txID string) string {
	return fmt.Sprintf("%s:tx:%s", keyPrefix, txID)
}

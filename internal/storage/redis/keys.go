package redis

import (
	"fmt"

	"github.com/cantorhq/cantor/internal/model"
)

// Key prefix for all persisted data
const keyPrefix = "cantor"

// accountKey returns the Redis key for an Account
func accountKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// credentialsKey returns the Redis key for an account's Credentials
func credentialsKey(accountID model.PlayerID) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, accountID)
}

// usernameIndexKey returns the Redis key for the username -> account_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// transactionsKey returns the Redis key for an account's transaction LIST
func transactionsKey(accountID model.PlayerID) string {
	return fmt.Sprintf("%s:txns:%s", keyPrefix, accountID)
}

// checkoutKey returns the Redis key for a CheckoutSession
func checkoutKey(id string) string {
	return fmt.Sprintf("%s:checkout:%s", keyPrefix, id)
}

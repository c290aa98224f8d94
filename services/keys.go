package services

import "strings"

// All platform state lives under one namespace in the shared store. Keys
// that are scoped to a tenant embed the lowercased client name.
const keyPrefix = "licp:"

func normalizeClient(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func queueKey(client string) string   { return keyPrefix + "queue:" + normalizeClient(client) }
func historyKey(client string) string { return keyPrefix + "done:" + normalizeClient(client) }

func lockKey(client, purpose string) string {
	return keyPrefix + "lock:" + normalizeClient(client) + ":" + purpose
}

func previewKey(client, urlHash string) string {
	return keyPrefix + "preview:" + normalizeClient(client) + ":" + urlHash
}

func dailyKey(date string) string    { return keyPrefix + "daily:" + date }
func experimentKey(id string) string { return keyPrefix + "experiment:" + id }

const (
	clientsKey          = keyPrefix + "clients"
	weightsKey          = keyPrefix + "weights"
	experimentsIndexKey = keyPrefix + "experiments"
	winnersKey          = keyPrefix + "winners"
)

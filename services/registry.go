package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
)

// ClientRegistry is CRUD over named tenants. The whole registry persists as
// one JSON map in the shared store; mutations are read-modify-write, which
// is acceptable under the store's last-writer-wins discipline.
type ClientRegistry struct {
	store            store.Store
	defaultAccountID string
}

func NewClientRegistry(s store.Store, defaultAccountID string) *ClientRegistry {
	return &ClientRegistry{store: s, defaultAccountID: defaultAccountID}
}

// GetAll returns every registered client keyed by lowercased name. The
// reserved default client is materialized even before its first write.
func (r *ClientRegistry) GetAll(ctx context.Context) (map[string]models.Client, error) {
	clients, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := clients[models.DefaultClientName]; !ok {
		clients[models.DefaultClientName] = models.Client{
			Name:             models.DefaultClientName,
			PostingAccountID: r.defaultAccountID,
			Style:            models.StyleDefault,
		}
	}
	return clients, nil
}

// Get looks up a single client by name.
func (r *ClientRegistry) Get(ctx context.Context, name string) (models.Client, bool, error) {
	clients, err := r.GetAll(ctx)
	if err != nil {
		return models.Client{}, false, err
	}
	c, ok := clients[normalizeClient(name)]
	return c, ok, nil
}

// Names returns all client names in stable (sorted) order.
func (r *ClientRegistry) Names(ctx context.Context) ([]string, error) {
	clients, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Add upserts a client. When the name already exists and no explicit
// settings are supplied, existing fields are preserved and only the
// account id is refreshed.
func (r *ClientRegistry) Add(ctx context.Context, name, postingAccountID string, settings models.ClientSettings) error {
	clients, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	key := normalizeClient(name)
	client, exists := clients[key]
	if !exists {
		client = models.Client{Name: key, Style: models.StyleDefault}
	}
	if postingAccountID != "" {
		client.PostingAccountID = postingAccountID
	}
	if exists && settings.IsEmpty() {
		// Merge, don't overwrite: keep whatever was configured before.
		clients[key] = client
		return r.save(ctx, clients)
	}
	client.Merge(settings)
	clients[key] = client
	return r.save(ctx, clients)
}

// UpdateSettings merges partial settings into the named client, creating
// the record if absent.
func (r *ClientRegistry) UpdateSettings(ctx context.Context, name string, settings models.ClientSettings) error {
	clients, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	key := normalizeClient(name)
	client, ok := clients[key]
	if !ok {
		client = models.Client{Name: key, Style: models.StyleDefault, PostingAccountID: r.defaultAccountID}
	}
	client.Merge(settings)
	clients[key] = client
	return r.save(ctx, clients)
}

// Remove deletes a client. Removing an unknown name is a no-op; removing
// the reserved default client fails.
func (r *ClientRegistry) Remove(ctx context.Context, name string) error {
	key := normalizeClient(name)
	if key == models.DefaultClientName {
		return ErrProtectedClient
	}
	clients, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := clients[key]; !ok {
		return nil
	}
	delete(clients, key)
	return r.save(ctx, clients)
}

func (r *ClientRegistry) load(ctx context.Context) (map[string]models.Client, error) {
	raw, err := r.store.Get(ctx, clientsKey)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]models.Client{}, nil
	}
	if err != nil {
		return nil, err
	}
	var clients map[string]models.Client
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		return nil, err
	}
	if clients == nil {
		clients = map[string]models.Client{}
	}
	return clients, nil
}

func (r *ClientRegistry) save(ctx context.Context, clients map[string]models.Client) error {
	raw, err := json.Marshal(clients)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, clientsKey, string(raw), 0)
}

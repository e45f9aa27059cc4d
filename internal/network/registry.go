// Package network maps network names to the JSON-RPC endpoints that serve them.
package network

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/thep2p/go-eth-outcall/internal/model"
)

// Network is a named JSON-RPC endpoint.
type Network struct {
	// Name is the lowercase network tag, e.g. "mainnet".
	Name string
	// URL is the absolute http or https endpoint of the network's RPC host.
	URL string
}

// HostHeader returns the value of the Host header for requests to the network.
// It includes the port when the URL carries one.
func (n Network) HostHeader() (string, error) {
	u, err := parseEndpoint(n.URL)
	if err != nil {
		return "", fmt.Errorf("network %s: %w", n.Name, err)
	}
	return u.Host, nil
}

// Registry manages the known networks.
//
// Lookups of unknown names always fail; there is no fallback network.
type Registry struct {
	mu       sync.RWMutex
	networks map[string]Network
}

// NewRegistry creates a new, empty network registry.
func NewRegistry() *Registry {
	return &Registry{
		networks: make(map[string]Network),
	}
}

// NewDefaultRegistry creates a registry holding the built-in networks.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, n := range builtin {
		if err := r.Register(n.Name, n.URL); err != nil {
			panic(fmt.Sprintf("failed to register network %s: %v", n.Name, err))
		}
	}
	return r
}

// Register adds a network to the registry.
//
// Returns an error if a network with the same name is already registered or
// the endpoint is not an absolute http(s) URL. Names are case-insensitive.
func (r *Registry) Register(name, endpoint string) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: network name is required", model.ErrInput)
	}
	if _, err := parseEndpoint(endpoint); err != nil {
		return fmt.Errorf("network %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.networks[key]; exists {
		return fmt.Errorf("%w: network %s already registered", model.ErrInput, key)
	}
	r.networks[key] = Network{Name: key, URL: endpoint}
	return nil
}

// Get returns a network by name.
//
// Returns an error wrapping model.ErrUnknownNetwork if no network with the given name is registered.
func (r *Registry) Get(name string) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.networks[normalize(name)]
	if !exists {
		return Network{}, fmt.Errorf("%w: %q", model.ErrUnknownNetwork, name)
	}
	return n, nil
}

// Available returns all registered network names.
//
// The returned slice is sorted alphabetically for consistent output.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a network from the registry.
//
// Returns an error if no network with the given name is registered.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(name)
	if _, exists := r.networks[key]; !exists {
		return fmt.Errorf("%w: %q", model.ErrUnknownNetwork, name)
	}
	delete(r.networks, key)
	return nil
}

// Override registers the network, replacing any existing endpoint of the same name.
func (r *Registry) Override(name, endpoint string) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: network name is required", model.ErrInput)
	}
	if _, err := parseEndpoint(endpoint); err != nil {
		return fmt.Errorf("network %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.networks[key] = Network{Name: key, URL: endpoint}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint %q: %v", model.ErrInput, endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: endpoint %q must use http or https", model.ErrInput, endpoint)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: endpoint %q has no host", model.ErrInput, endpoint)
	}
	return u, nil
}

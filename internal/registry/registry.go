// Package registry maps raw on-chain token addresses to canonical (symbol, network)
// identities using a static, ordered table of known deployments.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnknownSymbol is returned for addresses that are not in the registry.
	UnknownSymbol = "UNKNOWN"
	// UnknownNetwork is returned when no network can be inferred.
	UnknownNetwork = "unknown"
	// ZeroAddress stands for the native coin of an EVM-like family.
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

var (
	ErrDuplicateAddress = errors.New("address registered under more than one symbol")
	ErrInvalidEntry     = errors.New("invalid registry entry")
)

// AssetAddress is the canonical address of an asset on one network.
type AssetAddress struct {
	Network string `yaml:"network"`
	Address string `yaml:"address"`
}

// Asset lists the deployments of one symbol. Order matters: when one address is
// declared on several networks of the same asset, the first declaration wins.
type Asset struct {
	Symbol    string         `yaml:"symbol"`
	Addresses []AssetAddress `yaml:"addresses"`
}

// Network describes a concrete chain deployment.
type Network struct {
	ID          string   `yaml:"id"`
	Family      string   `yaml:"family"`
	DisplayName string   `yaml:"display_name"`
	APIName     string   `yaml:"api_name"`
	Aliases     []string `yaml:"aliases"`
}

// Family is a coarse execution environment such as "evm" or "svm".
type Family struct {
	Name           string `yaml:"name"`
	DefaultNetwork string `yaml:"default_network"`
	NativeSymbol   string `yaml:"native_symbol"`
}

// Definition is the declarative form of a registry, as found in code or in a file.
type Definition struct {
	Families []Family  `yaml:"families"`
	Networks []Network `yaml:"networks"`
	Assets   []Asset   `yaml:"assets"`
}

// Identity is a canonical (symbol, network) pair.
type Identity struct {
	Symbol  string
	Network string
}

// Registry is an immutable bidirectional index built once from a Definition.
type Registry struct {
	assets      []Asset
	bySymbol    map[string]int
	byAddress   map[string]Identity
	byIdentity  map[Identity]string
	networks    map[string]Network
	aliases     map[string]string
	families    map[string]Family
	familyOrder []string
	networkIDs  []string
}

// New validates def and builds the lookup indexes.
func New(def Definition) (*Registry, error) {
	r := &Registry{
		bySymbol:   make(map[string]int),
		byAddress:  make(map[string]Identity),
		byIdentity: make(map[Identity]string),
		networks:   make(map[string]Network),
		aliases:    make(map[string]string),
		families:   make(map[string]Family),
	}

	for _, family := range def.Families {
		name := strings.ToLower(strings.TrimSpace(family.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: family without a name", ErrInvalidEntry)
		}
		if _, exists := r.families[name]; exists {
			return nil, fmt.Errorf("%w: family %q declared twice", ErrInvalidEntry, name)
		}
		family.Name = name
		family.DefaultNetwork = strings.ToLower(strings.TrimSpace(family.DefaultNetwork))
		r.families[name] = family
		r.familyOrder = append(r.familyOrder, name)
	}

	for _, network := range def.Networks {
		id := strings.ToLower(strings.TrimSpace(network.ID))
		if id == "" {
			return nil, fmt.Errorf("%w: network without an id", ErrInvalidEntry)
		}
		if _, exists := r.networks[id]; exists {
			return nil, fmt.Errorf("%w: network %q declared twice", ErrInvalidEntry, id)
		}
		network.ID = id
		network.Family = strings.ToLower(strings.TrimSpace(network.Family))
		if network.Family != "" {
			if _, ok := r.families[network.Family]; !ok {
				return nil, fmt.Errorf("%w: network %q uses unknown family %q", ErrInvalidEntry, id, network.Family)
			}
		}
		r.networks[id] = network
		r.addAlias(id, id)
		if network.APIName != "" {
			r.addAlias(network.APIName, id)
		}
		for _, alias := range network.Aliases {
			r.addAlias(alias, id)
		}
	}

	for _, name := range r.familyOrder {
		if defaultNetwork := r.families[name].DefaultNetwork; defaultNetwork != "" {
			if _, ok := r.networks[defaultNetwork]; !ok {
				return nil, fmt.Errorf("%w: family %q defaults to undeclared network %q", ErrInvalidEntry, name, defaultNetwork)
			}
		}
	}

	seenNetworks := make(map[string]bool)
	for id := range r.networks {
		seenNetworks[id] = true
	}

	for _, asset := range def.Assets {
		symbol := strings.TrimSpace(asset.Symbol)
		if symbol == "" {
			return nil, fmt.Errorf("%w: asset without a symbol", ErrInvalidEntry)
		}
		key := strings.ToUpper(symbol)
		if _, exists := r.bySymbol[key]; exists {
			return nil, fmt.Errorf("%w: asset %q declared twice", ErrInvalidEntry, symbol)
		}

		addresses := make([]AssetAddress, 0, len(asset.Addresses))
		for _, entry := range asset.Addresses {
			network := r.NormalizeNetwork(entry.Network)
			address := strings.TrimSpace(entry.Address)
			if network == "" || address == "" {
				return nil, fmt.Errorf("%w: asset %q has an empty network or address", ErrInvalidEntry, symbol)
			}

			id := Identity{Symbol: symbol, Network: network}
			if _, exists := r.byIdentity[id]; exists {
				return nil, fmt.Errorf("%w: asset %q lists network %q twice", ErrInvalidEntry, symbol, network)
			}
			r.byIdentity[id] = address

			lower := strings.ToLower(address)
			if existing, ok := r.byAddress[lower]; ok {
				if existing.Symbol != symbol {
					return nil, fmt.Errorf("%w: %s is both %s and %s", ErrDuplicateAddress, address, existing.Symbol, symbol)
				}
			} else {
				r.byAddress[lower] = id
			}

			seenNetworks[network] = true
			addresses = append(addresses, AssetAddress{Network: network, Address: address})
		}

		r.bySymbol[key] = len(r.assets)
		r.assets = append(r.assets, Asset{Symbol: symbol, Addresses: addresses})
	}

	for id := range seenNetworks {
		r.networkIDs = append(r.networkIDs, id)
	}
	sort.Strings(r.networkIDs)

	return r, nil
}

// MustNew is New for static definitions known to be valid.
func MustNew(def Definition) *Registry {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) addAlias(alias, id string) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if key == "" {
		return
	}
	// first declaration keeps the alias
	if _, exists := r.aliases[key]; !exists {
		r.aliases[key] = id
	}
}

// Symbols returns the registered symbols in declaration order.
func (r *Registry) Symbols() []string {
	symbols := make([]string, 0, len(r.assets))
	for _, asset := range r.assets {
		symbols = append(symbols, asset.Symbol)
	}
	return symbols
}

// Addresses returns every deployment of symbol in declaration order.
func (r *Registry) Addresses(symbol string) []AssetAddress {
	idx, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil
	}
	out := make([]AssetAddress, len(r.assets[idx].Addresses))
	copy(out, r.assets[idx].Addresses)
	return out
}

// Address returns the canonical address of symbol on network.
func (r *Registry) Address(symbol, network string) (string, bool) {
	idx, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", false
	}
	address, ok := r.byIdentity[Identity{Symbol: r.assets[idx].Symbol, Network: r.NormalizeNetwork(network)}]
	return address, ok
}

// IsAsset reports whether address is a registered deployment of symbol on any network.
func (r *Registry) IsAsset(address, symbol string) bool {
	id, ok := r.byAddress[strings.ToLower(strings.TrimSpace(address))]
	return ok && strings.EqualFold(id.Symbol, symbol)
}

// Networks returns every network that appears in the registry, sorted.
func (r *Registry) Networks() []string {
	out := make([]string, len(r.networkIDs))
	copy(out, r.networkIDs)
	return out
}

// NormalizeNetwork maps a venue alias such as "eth" or "42161" to a network id.
// Unknown names are returned lowercased.
func (r *Registry) NormalizeNetwork(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := r.aliases[key]; ok {
		return id
	}
	return key
}

// APIName is the chain name a trading venue expects for network.
func (r *Registry) APIName(network string) string {
	id := r.NormalizeNetwork(network)
	if n, ok := r.networks[id]; ok && n.APIName != "" {
		return n.APIName
	}
	return id
}

// Family returns the execution family of network, or "" when it is not declared.
func (r *Registry) Family(network string) string {
	return r.networks[r.NormalizeNetwork(network)].Family
}

// DisplayName formats network for humans.
func (r *Registry) DisplayName(network string) string {
	id := r.NormalizeNetwork(network)
	if n, ok := r.networks[id]; ok && n.DisplayName != "" {
		return n.DisplayName
	}
	return capitalize(id)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

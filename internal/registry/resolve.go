package registry

import "strings"

// Resolve maps address to its canonical identity. It never fails: unregistered
// addresses resolve to UnknownSymbol and a network guessed from chainHint.
func (r *Registry) Resolve(address, chainHint string) (symbol, network string) {
	address = strings.TrimSpace(address)

	if strings.EqualFold(address, ZeroAddress) {
		if family, network, ok := r.familyForHint(chainHint); ok && family.NativeSymbol != "" && network != "" {
			return family.NativeSymbol, network
		}
	}

	if id, ok := r.byAddress[strings.ToLower(address)]; ok {
		return id.Symbol, id.Network
	}

	return UnknownSymbol, r.GuessNetwork(chainHint)
}

// ResolveOn is Resolve with an upstream network id. The upstream network is kept when
// the registry agrees the address is deployed there (same address on several networks
// of one asset), or when the address is unknown and nothing better than a guess exists.
func (r *Registry) ResolveOn(address, chainHint, network string) Identity {
	symbol, resolved := r.Resolve(address, chainHint)
	if strings.TrimSpace(network) == "" {
		return Identity{Symbol: symbol, Network: resolved}
	}

	upstream := r.NormalizeNetwork(network)
	if symbol == UnknownSymbol {
		return Identity{Symbol: symbol, Network: upstream}
	}
	if canonical, ok := r.Address(symbol, upstream); ok && strings.EqualFold(canonical, strings.TrimSpace(address)) {
		return Identity{Symbol: symbol, Network: upstream}
	}
	return Identity{Symbol: symbol, Network: resolved}
}

// GuessNetwork infers a network from a coarse chain hint alone.
func (r *Registry) GuessNetwork(chainHint string) string {
	hint := strings.ToLower(strings.TrimSpace(chainHint))
	if hint == "" {
		return UnknownNetwork
	}

	if family, ok := r.families[hint]; ok {
		return orUnknown(family.DefaultNetwork)
	}
	if id, ok := r.aliases[hint]; ok {
		return id
	}
	for _, name := range r.familyOrder {
		if strings.Contains(hint, name) {
			return orUnknown(r.families[name].DefaultNetwork)
		}
	}
	return UnknownNetwork
}

// familyForHint finds the family a hint points at, and the network to use within it:
// the hinted network when the hint names one, the family default otherwise.
func (r *Registry) familyForHint(chainHint string) (Family, string, bool) {
	hint := strings.ToLower(strings.TrimSpace(chainHint))
	if hint == "" {
		return Family{}, "", false
	}
	if family, ok := r.families[hint]; ok {
		return family, family.DefaultNetwork, true
	}
	if id, ok := r.aliases[hint]; ok {
		if family, ok := r.families[r.networks[id].Family]; ok {
			return family, id, true
		}
	}
	for _, name := range r.familyOrder {
		if strings.Contains(hint, name) {
			return r.families[name], r.families[name].DefaultNetwork, true
		}
	}
	return Family{}, "", false
}

func orUnknown(network string) string {
	if network == "" {
		return UnknownNetwork
	}
	return network
}

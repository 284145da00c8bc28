package sites

import "github.com/quantmind-br/docsync-go/internal/domain"

// All returns every built-in site policy in sync order.
func All() []domain.Policy {
	return []domain.Policy{
		Platform(),
		ClaudeCode(),
	}
}

// Lookup returns the policy registered under name.
func Lookup(name string) (domain.Policy, bool) {
	for _, p := range All() {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Policy{}, false
}

// Names returns the registered site names in sync order.
func Names() []string {
	policies := All()
	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = p.Name
	}
	return names
}

// Package tax resolves sales tax rates by jurisdiction and category, and asks
// the AI collaborator for better rates based on item descriptions.
package tax

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/novatax/internal/model"
)

// ErrInvalidProfile is returned for profiles with an empty name or a rate outside [0, 1].
var ErrInvalidProfile = errors.New("invalid jurisdiction tax profile")

// Resolver maps (jurisdiction, category) onto a rate. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	profiles   map[string]model.JurisdictionTaxProfile
	defaultKey string
}

// NewResolver builds a resolver from the built-in table plus overrides.
// An empty defaultJurisdiction selects DefaultJurisdiction.
func NewResolver(defaultJurisdiction string, overrides ...model.JurisdictionTaxProfile) (*Resolver, error) {
	r := &Resolver{profiles: make(map[string]model.JurisdictionTaxProfile, len(builtinProfiles)+len(overrides))}
	for _, p := range builtinProfiles {
		r.profiles[key(p.Jurisdiction)] = p
	}
	for _, p := range overrides {
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		r.profiles[key(p.Jurisdiction)] = p
	}

	if defaultJurisdiction == "" {
		defaultJurisdiction = DefaultJurisdiction
	}
	if _, ok := r.profiles[key(defaultJurisdiction)]; !ok {
		return nil, fmt.Errorf("%w: default jurisdiction %q has no profile", ErrInvalidProfile, defaultJurisdiction)
	}
	r.defaultKey = key(defaultJurisdiction)
	return r, nil
}

// DefaultResolver returns a resolver over the built-in table.
func DefaultResolver() *Resolver {
	r, err := NewResolver("")
	if err != nil {
		panic(err)
	}
	return r
}

// Profile returns the jurisdiction's profile, or the default profile when the
// jurisdiction is unknown.
func (r *Resolver) Profile(jurisdiction string) model.JurisdictionTaxProfile {
	if p, ok := r.profiles[key(jurisdiction)]; ok {
		return p
	}
	return r.profiles[r.defaultKey]
}

// Known reports whether the jurisdiction has its own profile.
func (r *Resolver) Known(jurisdiction string) bool {
	_, ok := r.profiles[key(jurisdiction)]
	return ok
}

// ResolveRate returns the rate for a category. Food uses the reduced rate,
// Exempt is always zero and everything else uses the standard rate.
func (r *Resolver) ResolveRate(jurisdiction string, category model.Category) float64 {
	return r.Profile(jurisdiction).RateFor(category)
}

// Jurisdictions lists every profile, sorted by name.
func (r *Resolver) Jurisdictions() []model.JurisdictionTaxProfile {
	out := make([]model.JurisdictionTaxProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Jurisdiction < out[j].Jurisdiction })
	return out
}

func key(jurisdiction string) string {
	return strings.ToLower(strings.TrimSpace(jurisdiction))
}

func validateProfile(p model.JurisdictionTaxProfile) error {
	if strings.TrimSpace(p.Jurisdiction) == "" {
		return fmt.Errorf("%w: jurisdiction name is required", ErrInvalidProfile)
	}
	if !validRate(p.StandardRate) || !validRate(p.ReducedRate) {
		return fmt.Errorf("%w: %s rates must be between 0 and 1", ErrInvalidProfile, p.Jurisdiction)
	}
	return nil
}

func validRate(r float64) bool {
	return r >= 0 && r <= 1
}

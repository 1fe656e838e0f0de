package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/domain/shared"
)

// PartyReconciler maps marketplace buyers onto local parties, addresses
// and phone numbers without creating duplicates
type PartyReconciler struct {
	parties  party.Repository
	registry party.Registry
	source   string
}

// NewPartyReconciler creates a reconciler for buyers of the given source
func NewPartyReconciler(parties party.Repository, registry party.Registry, source channel.Source) *PartyReconciler {
	return &PartyReconciler{
		parties:  parties,
		registry: registry,
		source:   source.String(),
	}
}

// FindOrCreateParty returns the party known by the buyer's user id,
// creating it on first sight
func (r *PartyReconciler) FindOrCreateParty(ctx context.Context, buyer integration.Buyer) (*party.Party, error) {
	userID := strings.TrimSpace(buyer.UserID)
	if userID == "" {
		return nil, party.ErrInvalidBuyer
	}

	p, err := r.parties.FindByIdentity(ctx, r.source, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find party %s: %w", userID, err)
	}
	return r.CreateParty(ctx, buyer)
}

// CreateParty stores a new party for the buyer. A buyer that already has a
// party fails with party.ErrDuplicateParty; it is never merged.
func (r *PartyReconciler) CreateParty(ctx context.Context, buyer integration.Buyer) (*party.Party, error) {
	p, err := party.NewMarketplaceParty(r.source, buyer.UserID, buyer.Email)
	if err != nil {
		return nil, err
	}
	if err := r.parties.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create party %s: %w", p.Name, err)
	}
	return p, nil
}

// FindOrCreateAddress resolves the marketplace address against the
// registry and returns the party's equivalent address, creating and
// attaching one when none matches
func (r *PartyReconciler) FindOrCreateAddress(ctx context.Context, p *party.Party, addr integration.PostalAddress) (*party.Address, error) {
	country, err := r.registry.FindCountry(ctx, addr.Country)
	if err != nil {
		return nil, fmt.Errorf("resolve country %q: %w", addr.Country, err)
	}
	subdivisions, err := r.registry.ListSubdivisions(ctx, country.Code)
	if err != nil {
		return nil, fmt.Errorf("list subdivisions of %s: %w", country.Code, err)
	}
	subdivision, ok := party.ResolveSubdivision(subdivisions, addr.StateOrProvince)
	if !ok && party.NormalizeText(addr.StateOrProvince) != "" {
		return nil, fmt.Errorf("resolve subdivision %q in %s: %w", addr.StateOrProvince, country.Code, party.ErrUnknownSubdivision)
	}

	candidate, err := party.NewAddressCandidate(party.AddressInput{
		Name:            addr.Name,
		StreetLines:     []string{addr.Street1, addr.Street2},
		PostalCode:      addr.PostalCode,
		City:            addr.City,
		CountryCode:     country.Code,
		StateOrProvince: addr.StateOrProvince,
	}, country, subdivision)
	if err != nil {
		return nil, err
	}

	if existing := party.MatchAddress(candidate, p.Addresses); existing != nil {
		return existing, nil
	}

	candidate.AttachTo(p.ID)
	if err := r.parties.AddAddress(ctx, candidate); err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}
	p.Addresses = append(p.Addresses, *candidate)
	return candidate, nil
}

// AddPhone attaches the phone number to the party unless the party already
// has it
func (r *PartyReconciler) AddPhone(ctx context.Context, p *party.Party, phone string) (*party.ContactMechanism, error) {
	cm, err := party.NewContactMechanism(p.ID, party.ContactTypePhone, phone)
	if err != nil {
		return nil, err
	}
	if existing := p.FindContact(party.ContactTypePhone, cm.Value); existing != nil {
		return existing, nil
	}
	if err := r.parties.AddContactMechanism(ctx, cm); err != nil {
		return nil, fmt.Errorf("add phone: %w", err)
	}
	p.ContactMechanisms = append(p.ContactMechanisms, *cm)
	return cm, nil
}

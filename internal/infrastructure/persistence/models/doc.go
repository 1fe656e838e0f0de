// Package models holds the GORM table mappings of the import engine. Each
// model converts to and from its domain type with ToDomain and a
// <Model>FromDomain constructor; unique indexes enforce the marketplace
// identity rules (one party per buyer, one product per item, one sale per
// order).
//
// Files:
// - base.go: BaseModel shared by all tables
// - channel.go: channels and their marketplace settings
// - party.go: parties, marketplace identities, addresses, contacts, countries
// - catalog.go: product templates, variants and marketplace item links
// - trade.go: sales and sale lines
// - integration.go: order sync records
package models

package integration

import (
	"context"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// sale import writes through. Everything written inside Execute commits or
// rolls back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the import repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// PartyRepo returns the party repository scoped to the current transaction
	PartyRepo() party.Repository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.Repository
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() trade.SaleRepository
	// Registry returns the country registry read through the current transaction
	Registry() party.Registry
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	partyRepo   party.Repository
	productRepo catalog.Repository
	saleRepo    trade.SaleRepository
	registry    party.Registry
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	partyRepo party.Repository,
	productRepo catalog.Repository,
	saleRepo trade.SaleRepository,
	registry party.Registry,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		partyRepo:   partyRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		registry:    registry,
	}
}

// Execute runs the function with the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PartyRepo returns the party repository
func (s *NoOpTransactionScope) PartyRepo() party.Repository {
	return s.partyRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.Repository {
	return s.productRepo
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository {
	return s.saleRepo
}

// Registry returns the country registry
func (s *NoOpTransactionScope) Registry() party.Registry {
	return s.registry
}

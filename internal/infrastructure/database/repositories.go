package database

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/adapter/repository"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Entitlement domainRepo.EntitlementRepository
	EventLedger domainRepo.EventLedgerRepository
}

// NewRepositories creates new repository instances on the given database
func NewRepositories(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *Repositories {
	return &Repositories{
		Entitlement: repository.NewMongoEntitlementRepository(db, timeout, logger),
		EventLedger: repository.NewMongoEventLedgerRepository(db, timeout, logger),
	}
}

package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

const auditCollection = "auth_events"

// auditDocument is the stored shape of a domain.AuthEvent.
type auditDocument struct {
	ID          string    `bson:"_id"`
	Kind        string    `bson:"kind"`
	Portal      string    `bson:"portal,omitempty"`
	SubjectID   string    `bson:"subject_id,omitempty"`
	Username    string    `bson:"username,omitempty"`
	Outcome     string    `bson:"outcome"`
	Reason      string    `bson:"reason,omitempty"`
	ClientIP    string    `bson:"client_ip_hash,omitempty"`
	OccurredAt  time.Time `bson:"occurred_at"`
	PersistedAt time.Time `bson:"persisted_at"`
}

func toAuditDocument(ev *domain.AuthEvent, now time.Time) auditDocument {
	return auditDocument{
		ID:          ev.ID,
		Kind:        string(ev.Kind),
		Portal:      string(ev.Portal),
		SubjectID:   ev.SubjectID,
		Username:    ev.Username,
		Outcome:     ev.Outcome,
		Reason:      ev.Reason,
		ClientIP:    ev.ClientIP,
		OccurredAt:  ev.OccurredAt.UTC(),
		PersistedAt: now.UTC(),
	}
}

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

// InsertEvent appends an authentication event to the audit trail.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	_, err := r.col.InsertOne(ctx, toAuditDocument(event, time.Now()))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// EnsureIndexes creates the lookup indexes on the audit collection.
// retention > 0 adds a TTL index expiring events after that long.
func (r *AuditRepository) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "outcome", Value: 1}}},
	}
	if retention > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		})
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

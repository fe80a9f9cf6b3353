package events_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Gobusters/ectologger/zapadapter"

	"github.com/Ramsey-B/vine/pkg/events"
)

func TestEmitterWithoutProducer(t *testing.T) {
	zapLogger, _ := zap.NewDevelopment()
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	entityID := uuid.New()

	// An emitter without Kafka behind it must be a no-op, not a panic
	emitter := events.NewEmitter(nil, logger)
	emitter.EmitEntityCreated(ctx, events.EntityTypeSupplier, tenantID, entityID, map[string]string{"code": "SUP-001"})
	emitter.EmitEntityUpdated(ctx, events.EntityTypeSupplier, tenantID, entityID, nil)
	emitter.EmitEntityDeleted(ctx, events.EntityTypeSupplier, tenantID, entityID)
	emitter.EmitRelationshipCreated(ctx, events.RelationshipAffects, tenantID, events.EntityTypeRiskEvent, entityID, events.EntityTypeSupplier, uuid.New())

	// Same for a nil emitter
	var none *events.Emitter
	none.EmitEntityDeleted(ctx, events.EntityTypeProduct, tenantID, entityID)
}

func TestRelationshipID(t *testing.T) {
	from := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	to := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	id := events.RelationshipID(from, to)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222", id)

	// Direction matters
	assert.NotEqual(t, id, events.RelationshipID(to, from))
}

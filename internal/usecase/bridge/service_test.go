package bridge

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"modbridge/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "modbridge/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "modbridge/internal/infrastructure/persistence/sqlite/uow"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

type stubCredStore struct {
	creds map[string]*ports.TenantCredential
}

func (s *stubCredStore) Get(_ context.Context, tenantID string) (*ports.TenantCredential, error) {
	return s.creds[tenantID], nil
}

// stubClient records requests and replays canned responses.
type stubClient struct {
	emitResp     *ozone.EmitResponse
	emitErr      error
	lastEmit     *ozone.EmitRequest
	queryResp    *ozone.QueryEventsResponse
	queryErr     error
	lastQuery    *ozone.QueryEventsParams
	statusesResp *ozone.QueryStatusesResponse
	lastStatuses *ozone.QueryStatusesParams
}

func (c *stubClient) QueryEvents(_ context.Context, params ozone.QueryEventsParams) (*ozone.QueryEventsResponse, error) {
	c.lastQuery = &params
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	if c.queryResp == nil {
		return &ozone.QueryEventsResponse{Events: []ozone.Event{}}, nil
	}
	return c.queryResp, nil
}

func (c *stubClient) EmitEvent(_ context.Context, req ozone.EmitRequest) (*ozone.EmitResponse, error) {
	c.lastEmit = &req
	if c.emitErr != nil {
		return nil, c.emitErr
	}
	if c.emitResp == nil {
		return &ozone.EmitResponse{ID: 1, Raw: []byte(`{"id":1}`)}, nil
	}
	return c.emitResp, nil
}

func (c *stubClient) QueryStatuses(_ context.Context, params ozone.QueryStatusesParams) (*ozone.QueryStatusesResponse, error) {
	c.lastStatuses = &params
	if c.statusesResp == nil {
		return &ozone.QueryStatusesResponse{SubjectStatuses: []json.RawMessage{}}, nil
	}
	return c.statusesResp, nil
}

func (c *stubClient) Health(context.Context) (*ozone.HealthResponse, error) {
	return &ozone.HealthResponse{Version: "test"}, nil
}

type serviceFixture struct {
	svc    *Service
	client *stubClient
	audits *sqliterepo.AuditRepository
	syncs  *sqliterepo.SyncStateRepository
	creds  *stubCredStore
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bridge.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.SyncState{}, &model.LabelMapping{}, &model.EmittedEvent{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	creds := &stubCredStore{creds: map[string]*ports.TenantCredential{
		"t1": {
			TenantID:      "t1",
			ServiceURL:    "https://ozone.example.com",
			DID:           "did:plc:platformsvc",
			SigningKeyHex: "18630b5a25f156c2f0cb0b1f50a96c1b5b42d0f23979e34c39cadd307c101f05",
		},
	}}
	client := &stubClient{}
	syncs := sqliterepo.NewSyncStateRepository(db)
	audits := sqliterepo.NewAuditRepository(db)
	mappings := sqliterepo.NewMappingRepository(db)

	svc := NewService(
		creds,
		syncs,
		audits,
		mappings,
		sqliteuow.NewUnitOfWork(db),
		func(ports.TenantCredential) (OzoneClient, error) { return client, nil },
		nil,
	)
	return serviceFixture{svc: svc, client: client, audits: audits, syncs: syncs, creds: creds}
}

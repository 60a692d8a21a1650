package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

// MockStore is a hand-written, in-memory store used in unit tests. No
// mock-generation library needed. The Tenants/Recipients/Templates/
// Campaigns/APIKeys methods return views satisfying the corresponding
// repository interfaces over the shared state.
//
// It reproduces the store behaviours the scheduler relies on: the per-day
// uniqueness constraint on campaign inserts and the pending-only guard on
// terminal status updates.
type MockStore struct {
	mu         sync.RWMutex
	tenants    map[string]*domain.Tenant
	recipients map[string]*domain.Recipient
	templates  map[string]*domain.Template
	campaigns  map[string]*domain.Campaign
	apiKeys    map[string]*domain.APIKey

	// Optional error overrides — set in tests to simulate failure paths.
	ListTenantsErr        error
	RecipientsErrByTenant map[string]error
	CreateCampaignErr     error
	FindDueErr            error
}

func NewMockStore() *MockStore {
	return &MockStore{
		tenants:               make(map[string]*domain.Tenant),
		recipients:            make(map[string]*domain.Recipient),
		templates:             make(map[string]*domain.Template),
		campaigns:             make(map[string]*domain.Campaign),
		apiKeys:               make(map[string]*domain.APIKey),
		RecipientsErrByTenant: make(map[string]error),
	}
}

// ---- interface views ----

func (m *MockStore) Tenants() TenantRepository       { return mockTenantRepo{m} }
func (m *MockStore) Recipients() RecipientRepository { return mockRecipientRepo{m} }
func (m *MockStore) Templates() TemplateRepository   { return mockTemplateRepo{m} }
func (m *MockStore) CampaignRepo() CampaignRepository { return mockCampaignRepo{m} }
func (m *MockStore) APIKeys() APIKeyRepository       { return mockAPIKeyRepo{m} }

// ---- seeding and assertion helpers ----

func (m *MockStore) AddTenant(t *domain.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

func (m *MockStore) AddRecipient(r *domain.Recipient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients[r.ID] = r
}

func (m *MockStore) AddTemplate(t *domain.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
}

func (m *MockStore) AddAPIKey(k *domain.APIKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys[k.Key] = k
}

// AddCampaign seeds a campaign directly, bypassing the dedup constraint.
func (m *MockStore) AddCampaign(c *domain.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[c.ID] = c
}

// Campaigns returns a snapshot of all stored campaigns, for assertions.
func (m *MockStore) Campaigns() []*domain.Campaign {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Campaign returns one campaign by id, or nil.
func (m *MockStore) Campaign(id string) *domain.Campaign {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil
	}
	clone := *c
	return &clone
}

// ---- TenantRepository ----

type mockTenantRepo struct{ s *MockStore }

func (v mockTenantRepo) List(_ context.Context) ([]*domain.Tenant, error) {
	if v.s.ListTenantsErr != nil {
		return nil, v.s.ListTenantsErr
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]*domain.Tenant, 0, len(v.s.tenants))
	for _, t := range v.s.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v mockTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	t, ok := v.s.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ---- RecipientRepository ----

type mockRecipientRepo struct{ s *MockStore }

func (v mockRecipientRepo) ListActiveByTenant(_ context.Context, tenantID string) ([]*domain.Recipient, error) {
	if err := v.s.RecipientsErrByTenant[tenantID]; err != nil {
		return nil, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*domain.Recipient
	for _, r := range v.s.recipients {
		if r.TenantID == tenantID && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v mockRecipientRepo) Create(_ context.Context, r *domain.Recipient) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	clone := *r
	v.s.recipients[r.ID] = &clone
	return nil
}

// ---- TemplateRepository ----

type mockTemplateRepo struct{ s *MockStore }

func (v mockTemplateRepo) GetActiveByEventType(_ context.Context, tenantID string, eventType domain.EventType) (*domain.Template, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var newest *domain.Template
	for _, t := range v.s.templates {
		if t.TenantID != tenantID || t.EventType != eventType {
			continue
		}
		if newest == nil || t.CreatedAt.After(newest.CreatedAt) {
			newest = t
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	return newest, nil
}

// ---- CampaignRepository ----

type mockCampaignRepo struct{ s *MockStore }

func (v mockCampaignRepo) FindRecent(_ context.Context, recipientID, templateID string, eventType domain.EventType, since time.Time) (*domain.Campaign, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var newest *domain.Campaign
	for _, c := range v.s.campaigns {
		if c.RecipientID != recipientID || c.TemplateID != templateID || c.Type != eventType {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	clone := *newest
	return &clone, nil
}

func (v mockCampaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	if v.s.CreateCampaignErr != nil {
		return v.s.CreateCampaignErr
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.campaigns {
		if existing.RecipientID == c.RecipientID &&
			existing.TemplateID == c.TemplateID &&
			sameDay(existing.CreatedAt, c.CreatedAt) {
			return domain.ErrDuplicateCampaign
		}
	}
	clone := *c
	v.s.campaigns[c.ID] = &clone
	return nil
}

func (v mockCampaignRepo) FindDue(_ context.Context, now time.Time, limit int) ([]*domain.DueCampaign, error) {
	if v.s.FindDueErr != nil {
		return nil, v.s.FindDueErr
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var due []*domain.DueCampaign
	for _, c := range v.s.campaigns {
		if c.Status != domain.StatusPending || c.ScheduledFor.After(now) {
			continue
		}
		rec, okR := v.s.recipients[c.RecipientID]
		tpl, okT := v.s.templates[c.TemplateID]
		ten, okN := v.s.tenants[c.TenantID]
		if !okR || !okT || !okN {
			continue
		}
		due = append(due, &domain.DueCampaign{
			Campaign:  *c,
			Recipient: *rec,
			Template:  *tpl,
			Tenant:    *ten,
		})
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Campaign.ScheduledFor.Before(due[j].Campaign.ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (v mockCampaignRepo) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.campaigns[id]
	if !ok || c.Status != domain.StatusPending {
		return nil
	}
	c.Status = domain.StatusSent
	c.SentAt = &sentAt
	c.Error = nil
	return nil
}

func (v mockCampaignRepo) MarkFailed(_ context.Context, id string, errMsg string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.campaigns[id]
	if !ok || c.Status != domain.StatusPending {
		return nil
	}
	c.Status = domain.StatusFailed
	c.Error = &errMsg
	return nil
}

// ---- APIKeyRepository ----

type mockAPIKeyRepo struct{ s *MockStore }

func (v mockAPIKeyRepo) GetActive(_ context.Context, key string) (*domain.APIKey, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	k, ok := v.s.apiKeys[key]
	if !ok || !k.Active {
		return nil, domain.ErrInvalidAPIKey
	}
	return k, nil
}

func (v mockAPIKeyRepo) TouchLastUsed(_ context.Context, key string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if k, ok := v.s.apiKeys[key]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

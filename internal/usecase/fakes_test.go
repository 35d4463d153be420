package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type memLeads struct {
	mu    sync.Mutex
	leads map[string]entity.Lead
	fail  error
}

func newMemLeads(leads ...entity.Lead) *memLeads {
	m := &memLeads{leads: map[string]entity.Lead{}}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *memLeads) Create(_ context.Context, l *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.leads {
		if l.Email != "" && existing.Email == l.Email {
			return entity.ErrLeadAlreadyExists
		}
	}
	m.leads[l.ID] = *l
	return nil
}

func (m *memLeads) Upsert(_ context.Context, l *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.leads {
		if existing.Email == l.Email {
			existing.Name = l.Name
			if l.Phone != "" {
				existing.Phone = l.Phone
			}
			m.leads[id] = existing
			*l = existing
			return nil
		}
	}
	m.leads[l.ID] = *l
	return nil
}

func (m *memLeads) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &l, nil
}

func (m *memLeads) ListByFunnel(_ context.Context, f entity.Funnel) ([]entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Lead
	for _, l := range m.leads {
		if l.Funnel == f {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLeads) Update(_ context.Context, l *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.leads[l.ID]; !ok {
		return entity.ErrLeadNotFound
	}
	m.leads[l.ID] = *l
	return nil
}

type memFollowUps struct {
	items []entity.FollowUp
	fail  error
}

func (m *memFollowUps) Create(_ context.Context, f *entity.FollowUp) error {
	if m.fail != nil {
		return m.fail
	}
	m.items = append(m.items, *f)
	return nil
}

func (m *memFollowUps) ListByLead(_ context.Context, leadID string) ([]entity.FollowUp, error) {
	var out []entity.FollowUp
	for _, f := range m.items {
		if f.LeadID == leadID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFollowUps) Complete(_ context.Context, id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Done = true
			return nil
		}
	}
	return entity.ErrFollowUpNotFound
}

type memActivities struct {
	items []entity.Activity
}

func (m *memActivities) Create(_ context.Context, a *entity.Activity) error {
	m.items = append(m.items, *a)
	return nil
}

func (m *memActivities) ListByLead(_ context.Context, leadID string) ([]entity.Activity, error) {
	var out []entity.Activity
	for _, a := range m.items {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memMeetings struct {
	items map[string]*entity.Meeting
}

func newMemMeetings(ms ...entity.Meeting) *memMeetings {
	m := &memMeetings{items: map[string]*entity.Meeting{}}
	for i := range ms {
		mt := ms[i]
		m.items[mt.ID] = &mt
	}
	return m
}

func (m *memMeetings) Create(_ context.Context, mt *entity.Meeting) error {
	cp := *mt
	m.items[mt.ID] = &cp
	return nil
}

func (m *memMeetings) FindByID(_ context.Context, id string) (*entity.Meeting, error) {
	mt, ok := m.items[id]
	if !ok {
		return nil, entity.ErrMeetingNotFound
	}
	cp := *mt
	return &cp, nil
}

func (m *memMeetings) ListScheduledBetween(_ context.Context, from, to time.Time) ([]entity.Meeting, error) {
	var out []entity.Meeting
	for _, mt := range m.items {
		if mt.Status == entity.MeetingScheduled && !mt.StartsAt.Before(from) && mt.StartsAt.Before(to) {
			out = append(out, *mt)
		}
	}
	return out, nil
}

func (m *memMeetings) UpdateStatus(_ context.Context, id string, status entity.MeetingStatus) error {
	mt, ok := m.items[id]
	if !ok {
		return entity.ErrMeetingNotFound
	}
	mt.Status = status
	return nil
}

func (m *memMeetings) SetConfirmation(_ context.Context, meetingID, userID string, confirmed bool) error {
	mt, ok := m.items[meetingID]
	if !ok {
		return entity.ErrMeetingNotFound
	}
	for i := range mt.Participants {
		if mt.Participants[i].UserID == userID {
			c := confirmed
			mt.Participants[i].Confirmed = &c
		}
	}
	return nil
}

type memClients struct {
	items      []entity.Client
	candidates []entity.NPSCandidate
}

func (m *memClients) Create(_ context.Context, c *entity.Client) error {
	m.items = append(m.items, *c)
	return nil
}

func (m *memClients) ListNPSCandidates(_ context.Context) ([]entity.NPSCandidate, error) {
	return m.candidates, nil
}

type memCommissions struct {
	items []entity.Commission
}

func (m *memCommissions) Create(_ context.Context, c *entity.Commission) error {
	m.items = append(m.items, *c)
	return nil
}

func (m *memCommissions) List(_ context.Context, status *entity.CommissionStatus) ([]entity.Commission, error) {
	var out []entity.Commission
	for _, c := range m.items {
		if status == nil || c.Status == *status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommissions) UpdateStatus(_ context.Context, ids []string, from []entity.CommissionStatus, to entity.CommissionStatus, _ time.Time) (int64, error) {
	var n int64
	for i := range m.items {
		for _, id := range ids {
			if m.items[i].ID != id {
				continue
			}
			for _, f := range from {
				if m.items[i].Status == f {
					m.items[i].Status = to
					n++
					break
				}
			}
		}
	}
	return n, nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []entity.Notification
}

func (m *memNotifications) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *n)
	return nil
}

func (m *memNotifications) ExistsSince(_ context.Context, userID string, t entity.NotificationType, ref string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.UserID == userID && n.Type == t && n.ReferenceID != nil && *n.ReferenceID == ref && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) Exists(ctx context.Context, userID string, t entity.NotificationType, ref string) (bool, error) {
	return m.ExistsSince(ctx, userID, t, ref, time.Time{})
}

func (m *memNotifications) ListByUser(_ context.Context, userID string, limit int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range m.items {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) SetRead(_ context.Context, id, userID string, read bool) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].Read = read
			return nil
		}
	}
	return entity.ErrNotificationNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) count(t entity.NotificationType) int {
	n := 0
	for _, it := range m.items {
		if it.Type == t {
			n++
		}
	}
	return n
}

type memNPS struct {
	mu          sync.Mutex
	config      *entity.NPSConfig
	invitations map[string]*entity.NPSInvitation
	responses   []entity.NPSResponse
	insertErr   error
}

func newMemNPS(cfg *entity.NPSConfig) *memNPS {
	return &memNPS{config: cfg, invitations: map[string]*entity.NPSInvitation{}}
}

func (m *memNPS) GetConfig(context.Context) (*entity.NPSConfig, error) {
	if m.config == nil {
		return nil, entity.ErrNPSConfigNotFound
	}
	cfg := *m.config
	return &cfg, nil
}

func (m *memNPS) CreateInvitation(_ context.Context, inv *entity.NPSInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invitations[inv.Token] = &cp
	return nil
}

func (m *memNPS) FindInvitationByToken(_ context.Context, token string) (*entity.NPSInvitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[token]
	if !ok {
		return nil, entity.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memNPS) RecordResponse(_ context.Context, r *entity.NPSResponse, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invitations {
		if inv.ID != r.InvitationID {
			continue
		}
		if inv.RespondedAt != nil {
			return false, nil
		}
		if m.insertErr != nil {
			err := m.insertErr
			m.insertErr = nil
			return false, err
		}
		inv.RespondedAt = &at
		m.responses = append(m.responses, *r)
		return true, nil
	}
	return false, errors.New("convite sumiu")
}

type memTasks struct {
	items []entity.Task
}

func (m *memTasks) ListDueBetween(_ context.Context, from, to time.Time) ([]entity.Task, error) {
	var out []entity.Task
	for _, t := range m.items {
		if t.Done || t.AssigneeID == nil || t.DueAt == nil {
			continue
		}
		if !t.DueAt.Before(from) && t.DueAt.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendNPSInvitation(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type MockWhatsAppService struct {
	mock.Mock
}

func (m *MockWhatsAppService) SendNPSInvitation(ctx context.Context, phone, name, link string) error {
	return m.Called(ctx, phone, name, link).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishNotification(ctx context.Context, n entity.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func strPtr(s string) *string {
	return &s
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

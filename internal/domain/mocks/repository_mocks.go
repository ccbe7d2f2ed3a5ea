package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/identity"
)

// MockAccountRepository is an in-memory implementation of
// domain.AccountRepository for testing.
type MockAccountRepository struct {
	mu       sync.Mutex
	Accounts map[uuid.UUID]*domain.Account
	FindErr  error
	ListErr  error
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	account, ok := m.Accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	accounts := make([]*domain.Account, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// MockResourceRepository is an in-memory implementation of
// domain.ResourceRepository for testing.
type MockResourceRepository struct {
	mu        sync.Mutex
	Resources map[uuid.UUID]*domain.Resource
	FindErr   error
	UpdateErr error
	// AppendErrFor fails AppendOccupant for specific resources, to exercise
	// partial-failure paths.
	AppendErrFor map[uuid.UUID]error
	AppendCalls  int
}

func (m *MockResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	r, ok := m.Resources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *MockResourceRepository) ListOfferable(ctx context.Context, dockIDs []uuid.UUID) ([]*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Resource
	for _, r := range m.Resources {
		if r.Type != domain.TypeBerth || r.Status != domain.StatusAvailable {
			continue
		}
		if dockIDs == nil {
			out = append(out, r)
			continue
		}
		for _, id := range dockIDs {
			if r.DockID == id {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (m *MockResourceRepository) ListByContact(ctx context.Context, phone, email string) ([]*domain.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Resource
	for _, r := range m.Resources {
		if resourceMatchesContact(r, phone, email) {
			out = append(out, r)
		}
	}
	return out, nil
}

// resourceMatchesContact mirrors the SQL predicate: the occupant columns and
// every tenant snapshot count as contact data.
func resourceMatchesContact(r *domain.Resource, phone, email string) bool {
	if identity.PhonesMatch(phone, r.OccupantPhone) || identity.EmailsMatch(email, r.OccupantEmail) {
		return true
	}
	for _, t := range r.Tenants {
		if identity.PhonesMatch(phone, t.Phone) || identity.EmailsMatch(email, t.Email) {
			return true
		}
	}
	return false
}

func (m *MockResourceRepository) AppendOccupant(ctx context.Context, resourceID, accountID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if err := m.AppendErrFor[resourceID]; err != nil {
		return false, err
	}
	r, ok := m.Resources[resourceID]
	if !ok {
		return false, domain.ErrNotFound
	}
	return r.AppendOccupant(accountID), nil
}

func (m *MockResourceRepository) Update(ctx context.Context, resource *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Resources[resource.ID] = resource
	return nil
}

// MockLandStorageRepository is an in-memory implementation of
// domain.LandStorageRepository for testing.
type MockLandStorageRepository struct {
	mu      sync.Mutex
	Entries map[string]*domain.LandStorageEntry
	SetErr  error
}

func (m *MockLandStorageRepository) ListByContact(ctx context.Context, phone, email string) ([]*domain.LandStorageEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.LandStorageEntry
	for _, e := range m.Entries {
		if identity.PhonesMatch(phone, e.OccupantPhone) || identity.EmailsMatch(email, e.OccupantEmail) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLandStorageRepository) SetOccupant(ctx context.Context, code string, accountID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return false, m.SetErr
	}
	e, ok := m.Entries[code]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.OccupantID != nil {
		return false, nil
	}
	id := accountID
	e.OccupantID = &id
	return true, nil
}

// MockInterestRepository is an in-memory implementation of
// domain.InterestRepository for testing. UpdateStatus enforces the same
// transition rules as the SQL repository.
type MockInterestRepository struct {
	mu        sync.Mutex
	Interests map[uuid.UUID]*domain.Interest
	CreateErr error
	FindErr   error
}

func (m *MockInterestRepository) Create(ctx context.Context, interest *domain.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.Interests == nil {
		m.Interests = make(map[uuid.UUID]*domain.Interest)
	}
	m.Interests[interest.ID] = interest
	return nil
}

func (m *MockInterestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Interest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	interest, ok := m.Interests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return interest, nil
}

func (m *MockInterestRepository) ListVisible(ctx context.Context, dockIDs []uuid.UUID) ([]*domain.Interest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Interest
	for _, i := range m.Interests {
		if dockIDs == nil || i.PreferredDockID == nil {
			out = append(out, i)
			continue
		}
		for _, id := range dockIDs {
			if *i.PreferredDockID == id {
				out = append(out, i)
				break
			}
		}
	}
	return out, nil
}

func (m *MockInterestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.InterestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	interest, ok := m.Interests[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !interest.Status.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}
	interest.Status = next
	return nil
}

func (m *MockInterestRepository) MarkRepliesSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	interest, ok := m.Interests[id]
	if !ok {
		return domain.ErrNotFound
	}
	interest.LastSeenRepliesAt = &at
	return nil
}

// MockReplyRepository is an in-memory implementation of
// domain.ReplyRepository for testing.
type MockReplyRepository struct {
	mu        sync.Mutex
	Replies   map[uuid.UUID][]*domain.Reply
	CreateErr error
}

func (m *MockReplyRepository) Create(ctx context.Context, reply *domain.Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.Replies == nil {
		m.Replies = make(map[uuid.UUID][]*domain.Reply)
	}
	m.Replies[reply.InterestID] = append(m.Replies[reply.InterestID], reply)
	return nil
}

func (m *MockReplyRepository) ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*domain.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Replies[interestID], nil
}

// MockAcceptanceStore applies domain.CommitAcceptance against the in-memory
// repositories, standing in for the SQL transaction.
type MockAcceptanceStore struct {
	Resources *MockResourceRepository
	Interests *MockInterestRepository
	Replies   *MockReplyRepository
	AcceptErr error
}

func (m *MockAcceptanceStore) Accept(ctx context.Context, cmd domain.AcceptanceCommand) (*domain.AcceptanceOutcome, error) {
	if m.AcceptErr != nil {
		return nil, m.AcceptErr
	}
	interest, err := m.Interests.FindByID(ctx, cmd.InterestID)
	if err != nil {
		return nil, err
	}
	var resource *domain.Resource
	for _, r := range m.Resources.Resources {
		if r.ID == cmd.BerthID {
			resource = r
			break
		}
	}
	if resource == nil {
		return nil, domain.ErrNotFound
	}
	replies, err := m.Replies.ListByInterest(ctx, cmd.InterestID)
	if err != nil {
		return nil, err
	}
	return domain.CommitAcceptance(resource, interest, replies, cmd)
}

// MockChangeFeed is an in-memory implementation of domain.ChangeFeed for
// testing.
type MockChangeFeed struct {
	mu         sync.Mutex
	Published  []domain.ChangeNotice
	PublishErr error
}

func (m *MockChangeFeed) Publish(ctx context.Context, notice domain.ChangeNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Published = append(m.Published, notice)
	return nil
}

func (m *MockChangeFeed) Subscribe(ctx context.Context) (<-chan domain.ChangeNotice, error) {
	ch := make(chan domain.ChangeNotice)
	close(ch)
	return ch, nil
}

// MockAcceptanceOutbox is an in-memory implementation of
// domain.AcceptanceOutbox for testing.
type MockAcceptanceOutbox struct {
	mu         sync.Mutex
	Enqueued   []domain.AcceptanceEvent
	ReadResult []domain.AcceptanceEvent
	Acked      []string
	EnqueueErr error
	ReadErr    error
	AckErr     error
}

func (m *MockAcceptanceOutbox) Enqueue(ctx context.Context, event domain.AcceptanceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.Enqueued = append(m.Enqueued, event)
	return nil
}

func (m *MockAcceptanceOutbox) Read(ctx context.Context, count int) ([]domain.AcceptanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	events := m.ReadResult
	m.ReadResult = nil
	return events, nil
}

func (m *MockAcceptanceOutbox) Ack(ctx context.Context, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.Acked = append(m.Acked, messageIDs...)
	return nil
}

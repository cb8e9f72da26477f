package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"ride-auth/internal/domain"
	"ride-auth/internal/repository"
)

type mockAccountRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byPhone map[string]string
	updates int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:    make(map[string]domain.Account),
		byPhone: make(map[string]string),
	}
}

func (m *mockAccountRepo) put(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = a
	m.byPhone[a.Phone] = a.ID
}

func (m *mockAccountRepo) GetOrCreate(_ context.Context, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPhone[a.Phone]; ok {
		existing := m.byID[id]
		existing.IsPassenger = existing.IsPassenger || a.IsPassenger
		existing.IsDriver = existing.IsDriver || a.IsDriver
		m.byID[id] = existing
		return existing, nil
	}
	m.byID[a.ID] = a
	m.byPhone[a.Phone] = a.ID
	return a, nil
}

func (m *mockAccountRepo) Create(_ context.Context, a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPhone[a.Phone]; ok {
		return repository.ErrConflict
	}
	m.byID[a.ID] = a
	m.byPhone[a.Phone] = a.ID
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountRepo) GetByPhone(ctx context.Context, phone string) (domain.Account, error) {
	m.mu.Lock()
	id, ok := m.byPhone[phone]
	m.mu.Unlock()
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockAccountRepo) update(id string, fn func(*domain.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&a)
	m.byID[id] = a
	m.updates++
	return nil
}

func (m *mockAccountRepo) MarkPhoneVerified(_ context.Context, id string) error {
	return m.update(id, func(a *domain.Account) { a.IsVerifyPhone = true })
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, id, hash string, verifyPhone bool) error {
	return m.update(id, func(a *domain.Account) {
		a.PasswordHash = hash
		a.IsVerifyPhone = a.IsVerifyPhone || verifyPhone
	})
}

func (m *mockAccountRepo) MarkDriver(_ context.Context, id string) error {
	return m.update(id, func(a *domain.Account) { a.IsDriver = true })
}

type mockProfileRepo struct {
	mu         sync.Mutex
	passengers map[string]domain.PassengerProfile
	drivers    map[string]domain.DriverProfile
	// accounts recibe el flag is_driver como lo hace la transacción real.
	accounts  *mockAccountRepo
	createErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		passengers: make(map[string]domain.PassengerProfile),
		drivers:    make(map[string]domain.DriverProfile),
	}
}

func (m *mockProfileRepo) EnsurePassenger(_ context.Context, p domain.PassengerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passengers[p.AccountID]; !ok {
		m.passengers[p.AccountID] = p
	}
	return nil
}

func (m *mockProfileRepo) CreateDriver(ctx context.Context, p domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.drivers {
		if existing.AccountID == p.AccountID {
			return repository.ErrConflict
		}
	}
	if m.accounts != nil {
		if err := m.accounts.MarkDriver(ctx, p.AccountID); err != nil {
			return err
		}
	}
	m.drivers[p.ID] = p
	return nil
}

// putDriver inserta un perfil sin tocar la cuenta.
func (m *mockProfileRepo) putDriver(p domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[p.ID] = p
}

func (m *mockProfileRepo) GetDriverByID(_ context.Context, id string) (domain.DriverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.drivers[id]
	if !ok {
		return domain.DriverProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) GetDriverByAccount(_ context.Context, accountID string) (domain.DriverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.drivers {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return domain.DriverProfile{}, pgx.ErrNoRows
}

func (m *mockProfileRepo) UpdateDriverStatus(_ context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.drivers[id]
	if !ok || p.VerificationStatus != from {
		return false, nil
	}
	p.VerificationStatus = to
	p.VerifierNote = note
	m.drivers[id] = p
	return true, nil
}

type mockDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]domain.DriverDocument
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]domain.DriverDocument)}
}

func (m *mockDocumentRepo) Create(_ context.Context, d domain.DriverDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.docs {
		if existing.ProfileID == d.ProfileID && existing.DocType == d.DocType {
			return repository.ErrConflict
		}
	}
	m.docs[d.ID] = d
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (domain.DriverDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return domain.DriverDocument{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDocumentRepo) ListActiveByProfile(_ context.Context, profileID string) ([]domain.DriverDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DriverDocument
	for _, d := range m.docs {
		if d.ProfileID == profileID && d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocType < out[j].DocType })
	return out, nil
}

func (m *mockDocumentRepo) UpdateStatus(_ context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.VerificationStatus != from {
		return false, nil
	}
	d.VerificationStatus = to
	d.VerifierNote = note
	m.docs[id] = d
	return true, nil
}

type mockImageRepo struct {
	mu     sync.Mutex
	images map[string]domain.Image
}

func newMockImageRepo() *mockImageRepo {
	return &mockImageRepo{images: make(map[string]domain.Image)}
}

func (m *mockImageRepo) Create(_ context.Context, img domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ID] = img
	return nil
}

func (m *mockImageRepo) GetByID(_ context.Context, id string) (domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok {
		return domain.Image{}, pgx.ErrNoRows
	}
	return img, nil
}

type mockRequestLogRepo struct {
	mu      sync.Mutex
	entries []domain.RequestLog
}

func (m *mockRequestLogRepo) Create(_ context.Context, entry domain.RequestLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

type mockDispatcher struct {
	mu    sync.Mutex
	sent  map[string]string
	calls int
	err   error
	delay time.Duration
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{sent: make(map[string]string)}
}

func (m *mockDispatcher) Send(ctx context.Context, phone, code string) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent[phone] = code
	return nil
}

func (m *mockDispatcher) lastCode(phone string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[phone]
}

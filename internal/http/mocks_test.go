package http

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"ride-auth/internal/domain"
	"ride-auth/internal/repository"
)

type memAccounts struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byPhone map[string]string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]domain.Account{}, byPhone: map[string]string{}}
}

func (m *memAccounts) GetOrCreate(_ context.Context, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPhone[a.Phone]; ok {
		return m.byID[id], nil
	}
	m.byID[a.ID] = a
	m.byPhone[a.Phone] = a.ID
	return a, nil
}

func (m *memAccounts) Create(_ context.Context, a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPhone[a.Phone]; ok {
		return repository.ErrConflict
	}
	m.byID[a.ID] = a
	m.byPhone[a.Phone] = a.ID
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *memAccounts) GetByPhone(ctx context.Context, phone string) (domain.Account, error) {
	m.mu.Lock()
	id, ok := m.byPhone[phone]
	m.mu.Unlock()
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *memAccounts) mutate(id string, fn func(*domain.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&a)
	m.byID[id] = a
	return nil
}

func (m *memAccounts) MarkPhoneVerified(_ context.Context, id string) error {
	return m.mutate(id, func(a *domain.Account) { a.IsVerifyPhone = true })
}

func (m *memAccounts) UpdatePassword(_ context.Context, id, hash string, verify bool) error {
	return m.mutate(id, func(a *domain.Account) {
		a.PasswordHash = hash
		a.IsVerifyPhone = a.IsVerifyPhone || verify
	})
}

func (m *memAccounts) MarkDriver(_ context.Context, id string) error {
	return m.mutate(id, func(a *domain.Account) { a.IsDriver = true })
}

type memProfiles struct {
	mu       sync.Mutex
	drivers  map[string]domain.DriverProfile
	accounts *memAccounts
}

func (m *memProfiles) EnsurePassenger(context.Context, domain.PassengerProfile) error { return nil }

func (m *memProfiles) CreateDriver(_ context.Context, p domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.accounts.mutate(p.AccountID, func(a *domain.Account) { a.IsDriver = true }); err != nil {
		return err
	}
	m.drivers[p.ID] = p
	return nil
}

func (m *memProfiles) GetDriverByID(_ context.Context, id string) (domain.DriverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.drivers[id]
	if !ok {
		return domain.DriverProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memProfiles) GetDriverByAccount(_ context.Context, accountID string) (domain.DriverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.drivers {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return domain.DriverProfile{}, pgx.ErrNoRows
}

func (m *memProfiles) UpdateDriverStatus(_ context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
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

type memDocuments struct {
	mu   sync.Mutex
	docs map[string]domain.DriverDocument
}

func (m *memDocuments) Create(_ context.Context, d domain.DriverDocument) error {
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

func (m *memDocuments) GetByID(_ context.Context, id string) (domain.DriverDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return domain.DriverDocument{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *memDocuments) ListActiveByProfile(_ context.Context, profileID string) ([]domain.DriverDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DriverDocument
	for _, d := range m.docs {
		if d.ProfileID == profileID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocuments) UpdateStatus(_ context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
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

type memImages struct {
	mu     sync.Mutex
	images map[string]domain.Image
}

func (m *memImages) Create(_ context.Context, img domain.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ID] = img
	return nil
}

func (m *memImages) GetByID(_ context.Context, id string) (domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok {
		return domain.Image{}, pgx.ErrNoRows
	}
	return img, nil
}

type memRequestLogs struct{}

func (memRequestLogs) Create(context.Context, domain.RequestLog) error { return nil }

type captureDispatcher struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (d *captureDispatcher) Send(_ context.Context, phone, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent[phone] = code
	return nil
}

func (d *captureDispatcher) code(phone string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[phone]
}

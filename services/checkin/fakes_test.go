package checkin

import (
	"context"
	"sync"
	"time"

	auditRepo "gatepass/database/repository/audit"
	"gatepass/models"
)

// fakeKV is an in-memory KVStore. TTLs are accepted but not enforced;
// expiry behaviour is driven through the codec's injectable clock.
type fakeKV struct {
	mu       sync.Mutex
	counters map[string]int64
	keys     map[string]bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		counters: make(map[string]int64),
		keys:     make(map[string]bool),
	}
}

func (f *fakeKV) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeKV) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	return r.Create(user)
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*models.Ticket
	// audit receives the success record inside CheckIn, mirroring the
	// production repo's transactional write. May be nil when a test
	// never reaches the mutation.
	audit auditRepo.AuditRepository
}

func newFakeTicketRepo(tickets ...*models.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: make(map[string]*models.Ticket)}
	for _, t := range tickets {
		r.tickets[t.ID] = t
	}
	return r
}

func (r *fakeTicketRepo) GetByID(id string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) GetByEventAndUser(eventID, userID string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.EventID == eventID && t.UserID == userID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) ListByUser(userID, status string) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ticket
	for _, t := range r.tickets {
		if t.UserID == userID && t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListCheckedIn(eventID string) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ticket
	for _, t := range r.tickets {
		if t.EventID == eventID && t.CheckedInAt != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) Create(ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) CountByStatus(eventID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.EventID == eventID && t.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) CountCheckedIn(eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.EventID == eventID && t.CheckedInAt != nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) CheckIn(ticketID, staffID, deviceID string, at time.Time, attempt *models.CheckInAttempt) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok || t.Status != models.TicketStatusActive || t.CheckedInAt != nil {
		return false, nil
	}
	// All-or-nothing, like the production transaction: a failed audit
	// write leaves the ticket untouched.
	if r.audit != nil {
		if err := r.audit.Create(attempt); err != nil {
			return false, err
		}
	}
	t.CheckedInAt = &at
	t.CheckedInBy = staffID
	t.CheckInDeviceID = deviceID
	return true, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[string]*models.Event)}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeEventRepo) GetByID(id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[id], nil
}

func (r *fakeEventRepo) GetByListingID(listingID string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ListingID == listingID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) Create(event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) Update(event *models.Event) error {
	return r.Create(event)
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*models.DeviceRegistration
}

func newFakeDeviceRepo(devices ...*models.DeviceRegistration) *fakeDeviceRepo {
	r := &fakeDeviceRepo{devices: make(map[string]*models.DeviceRegistration)}
	for _, d := range devices {
		r.devices[d.ID] = d
	}
	return r
}

func (r *fakeDeviceRepo) GetByID(id string) (*models.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.devices[id], nil
}

func (r *fakeDeviceRepo) GetByFingerprint(fingerprintHash string) (*models.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.FingerprintHash == fingerprintHash && d.IsActive {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDeviceRepo) ListActiveByUser(userID string) ([]models.DeviceRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeviceRegistration
	for _, d := range r.devices {
		if d.UserID == userID && d.IsActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) Create(device *models.DeviceRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.ID] = device
	return nil
}

func (r *fakeDeviceRepo) Update(device *models.DeviceRegistration) error {
	return r.Create(device)
}

func (r *fakeDeviceRepo) Deactivate(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[id]; ok && d.UserID == userID {
		d.IsActive = false
	}
	return nil
}

type fakeAuditRepo struct {
	mu       sync.Mutex
	attempts []models.CheckInAttempt
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(attempt *models.CheckInAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAuditRepo) ListRecentByEvent(eventID string, limit int64) ([]models.CheckInAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CheckInAttempt
	for i := len(r.attempts) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.attempts[i].EventID == eventID {
			out = append(out, r.attempts[i])
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) StatsByEvent(eventID string) (*models.CheckInStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.CheckInStats{}
	for _, a := range r.attempts {
		if a.EventID != eventID {
			continue
		}
		stats.TotalScans++
		if a.Result == models.ResultSuccess {
			stats.SuccessfulScans++
		} else {
			stats.FailedScans++
		}
	}
	return stats, nil
}

// records returns a snapshot of everything audited so far.
func (r *fakeAuditRepo) records() []models.CheckInAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CheckInAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

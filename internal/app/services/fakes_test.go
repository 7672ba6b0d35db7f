package services

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// Fakes embed the store interface so that a test only implements what it
// touches; calling anything else panics on the nil embedded value.

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

type fakeEvents struct {
	EventStore
	events    map[int64]*models.Event
	subEvents map[int64]*models.SubEvent
	statusSet []models.EventStatus
	// beforeWrite runs inside every write, standing in for another admin
	// changing the row between the service's read and its write.
	beforeWrite func(e *models.Event)
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[int64]*models.Event{}, subEvents: map[int64]*models.SubEvent{}}
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("event not found")
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) GetBySlug(_ context.Context, slug string) (*models.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("event not found")
}

func (f *fakeEvents) Create(_ context.Context, fields map[string]interface{}) (*models.Event, error) {
	e := &models.Event{
		ID:        int64(len(f.events) + 1),
		Name:      fields["name"].(string),
		Slug:      fields["slug"].(string),
		Status:    models.EventStatus(fields["status"].(string)),
		UpdatedAt: testNow,
	}
	f.events[e.ID] = e
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) Update(_ context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.Event, error) {
	return f.write(id, fields, nil, expected)
}

func (f *fakeEvents) UpdateFromStatus(_ context.Context, id int64, fields map[string]interface{}, from models.EventStatus, expected *time.Time) (*models.Event, error) {
	return f.write(id, fields, &from, expected)
}

// write applies fields only when every precondition still holds.
func (f *fakeEvents) write(id int64, fields map[string]interface{}, from *models.EventStatus, expected *time.Time) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("event not found")
	}
	if f.beforeWrite != nil {
		f.beforeWrite(e)
	}
	if expected != nil && !expected.Equal(e.UpdatedAt) {
		return nil, apperrors.NewConflictError("stale")
	}
	if from != nil && e.Status != *from {
		return nil, apperrors.NewConflictError("stale status")
	}
	if v, ok := fields["name"].(string); ok {
		e.Name = v
	}
	if v, ok := fields["status"].(string); ok {
		e.Status = models.EventStatus(v)
		f.statusSet = append(f.statusSet, e.Status)
	}
	e.UpdatedAt = e.UpdatedAt.Add(time.Second)
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) ListSubEvents(_ context.Context, eventID int64) ([]models.SubEvent, error) {
	var out []models.SubEvent
	for _, s := range f.subEvents {
		if s.EventID == eventID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeEvents) GetSubEvent(_ context.Context, id int64) (*models.SubEvent, error) {
	s, ok := f.subEvents[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("sub-event not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeEvents) CreateSubEvent(_ context.Context, fields map[string]interface{}) (*models.SubEvent, error) {
	s := &models.SubEvent{
		ID:          int64(len(f.subEvents) + 100),
		EventID:     fields["event_id"].(int64),
		Name:        fields["name"].(string),
		IsTeamEvent: fields["is_team_event"].(bool),
	}
	f.subEvents[s.ID] = s
	return s, nil
}

type fakeCoordinators struct {
	CoordinatorStore
	mu           sync.Mutex
	coordinators map[[2]int64]bool
	participants map[[2]int64]bool
}

func newFakeCoordinators() *fakeCoordinators {
	return &fakeCoordinators{coordinators: map[[2]int64]bool{}, participants: map[[2]int64]bool{}}
}

func (f *fakeCoordinators) IsCoordinator(_ context.Context, eventID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coordinators[[2]int64{eventID, userID}], nil
}

func (f *fakeCoordinators) AddCoordinator(_ context.Context, eventID, userID int64) (*models.EventCoordinator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{eventID, userID}
	if f.coordinators[key] {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already a coordinator")
	}
	f.coordinators[key] = true
	return &models.EventCoordinator{EventID: eventID, UserID: userID}, nil
}

func (f *fakeCoordinators) IsParticipant(_ context.Context, eventID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participants[[2]int64{eventID, userID}], nil
}

func (f *fakeCoordinators) JoinEvent(_ context.Context, eventID, userID int64) (*models.EventParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[[2]int64{eventID, userID}] = true
	return &models.EventParticipant{EventID: eventID, UserID: userID}, nil
}

func (f *fakeCoordinators) LeaveEvent(_ context.Context, eventID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.participants, [2]int64{eventID, userID})
	return nil
}

type fakeRegistrations struct {
	RegistrationStore
	regs         map[int64]*models.EventRegistration
	events       *fakeEvents
	registered   []repositories.NewRegistration
	statusWrites int
}

func newFakeRegistrations(events *fakeEvents) *fakeRegistrations {
	return &fakeRegistrations{regs: map[int64]*models.EventRegistration{}, events: events}
}

func (f *fakeRegistrations) GetByID(_ context.Context, id int64) (*models.EventRegistration, error) {
	r, ok := f.regs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("registration not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrations) FindForUser(_ context.Context, subEventID, userID int64) (*models.EventRegistration, error) {
	for _, r := range f.regs {
		if r.SubEventID == subEventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistrations) ListForUserInEvent(_ context.Context, eventID, userID int64) ([]models.EventRegistration, error) {
	var out []models.EventRegistration
	for _, r := range f.regs {
		if sub, ok := f.events.subEvents[r.SubEventID]; ok && sub.EventID == eventID && r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegistrations) countActive(subEventID int64) int64 {
	var n int64
	for _, r := range f.regs {
		if r.SubEventID == subEventID && r.Status.Active() {
			n++
		}
	}
	return n
}

func (f *fakeRegistrations) CountActiveByEvent(_ context.Context, eventID int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	for id, sub := range f.events.subEvents {
		if sub.EventID == eventID {
			out[id] = f.countActive(id)
		}
	}
	return out, nil
}

func (f *fakeRegistrations) Register(_ context.Context, reg repositories.NewRegistration) (*models.EventRegistration, error) {
	f.registered = append(f.registered, reg)
	status := models.RegistrationStatusPending
	if sub := f.events.subEvents[reg.SubEventID]; sub != nil && models.CapacityReached(sub, f.countActive(reg.SubEventID)) {
		status = models.RegistrationStatusWaitlisted
	}
	r := &models.EventRegistration{
		ID:          int64(len(f.regs) + 1),
		SubEventID:  reg.SubEventID,
		UserID:      reg.UserID,
		TeamName:    reg.TeamName,
		TeamMembers: reg.TeamMembers,
		Status:      status,
	}
	f.regs[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrations) UpdateStatus(_ context.Context, id int64, from, to models.RegistrationStatus) (*models.EventRegistration, error) {
	f.statusWrites++
	r := f.regs[id]
	if r.Status != from {
		return nil, apperrors.NewConflictError("stale status")
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

type fakeResults struct {
	ResultStore
}

func (fakeResults) ListByEvent(context.Context, int64) ([]models.ResultDetail, error) {
	return nil, nil
}

func (fakeResults) ListGallery(context.Context, int64) ([]models.GalleryItem, error) {
	return nil, nil
}

type fakeJobs struct {
	JobStore
	jobs        map[int64]*models.JobPosting
	beforeWrite func(j *models.JobPosting)
}

func (f *fakeJobs) Create(_ context.Context, fields map[string]interface{}) (*models.JobPosting, error) {
	j := &models.JobPosting{
		ID:        int64(len(f.jobs) + 1),
		CompanyID: fields["company_id"].(int64),
		Title:     fields["title"].(string),
		Status:    models.JobStatus(fields["status"].(string)),
		UpdatedAt: testNow,
	}
	f.jobs[j.ID] = j
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) Update(_ context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.JobPosting, error) {
	return f.write(id, fields, nil, expected)
}

func (f *fakeJobs) UpdateFromStatus(_ context.Context, id int64, fields map[string]interface{}, from models.JobStatus, expected *time.Time) (*models.JobPosting, error) {
	return f.write(id, fields, &from, expected)
}

func (f *fakeJobs) write(id int64, fields map[string]interface{}, from *models.JobStatus, expected *time.Time) (*models.JobPosting, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("job not found")
	}
	if f.beforeWrite != nil {
		f.beforeWrite(j)
	}
	if expected != nil && !expected.Equal(j.UpdatedAt) {
		return nil, apperrors.NewConflictError("stale")
	}
	if from != nil && j.Status != *from {
		return nil, apperrors.NewConflictError("stale status")
	}
	if v, ok := fields["title"].(string); ok {
		j.Title = v
	}
	if v, ok := fields["status"].(string); ok {
		j.Status = models.JobStatus(v)
	}
	j.UpdatedAt = j.UpdatedAt.Add(time.Second)
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) GetByID(_ context.Context, id int64) (*models.JobPosting, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("job not found")
	}
	cp := *j
	return &cp, nil
}

type fakeCompanies struct {
	CompanyStore
}

func (fakeCompanies) GetByID(_ context.Context, id int64) (*models.Company, error) {
	return &models.Company{ID: id, Name: "Acme"}, nil
}

type fakeApplications struct {
	ApplicationStore
	apps    map[int64]*models.PlacementApplication
	created int
}

func newFakeApplications(apps ...*models.PlacementApplication) *fakeApplications {
	f := &fakeApplications{apps: map[int64]*models.PlacementApplication{}}
	for _, a := range apps {
		f.apps[a.ID] = a
	}
	return f
}

func (f *fakeApplications) GetByID(_ context.Context, id int64) (*models.PlacementApplication, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) FindForUser(_ context.Context, jobID, userID int64) (*models.PlacementApplication, error) {
	for _, a := range f.apps {
		if a.JobID == jobID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApplications) Create(_ context.Context, fields map[string]interface{}) (*models.PlacementApplication, error) {
	f.created++
	a := &models.PlacementApplication{
		ID:     int64(len(f.apps) + 1),
		JobID:  fields["job_id"].(int64),
		UserID: fields["user_id"].(int64),
		Status: models.ApplicationStatus(fields["status"].(string)),
	}
	f.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) UpdateStatus(_ context.Context, id int64, from, to models.ApplicationStatus) (*models.PlacementApplication, error) {
	a := f.apps[id]
	if a.Status != from {
		return nil, apperrors.NewConflictError("stale status")
	}
	a.Status = to
	cp := *a
	return &cp, nil
}

type fakePlacementResults struct {
	PlacementResultStore
	created []map[string]interface{}
}

func (f *fakePlacementResults) Create(_ context.Context, fields map[string]interface{}) (*models.PlacementResult, error) {
	f.created = append(f.created, fields)
	return &models.PlacementResult{
		ID:     int64(len(f.created)),
		JobID:  fields["job_id"].(int64),
		UserID: fields["user_id"].(int64),
	}, nil
}

type fakeUsers struct {
	UserStore
	users    map[int64]*models.User
	profiles map[int64]*models.Profile
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (f *fakeUsers) GetProfileByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("profile not found")
	}
	return p, nil
}

type fakeRoleStore struct {
	RoleStore
	rows   map[int64][]models.Role
	writes int
}

func (f *fakeRoleStore) ListUserRoles(_ context.Context, userID int64) ([]models.UserRole, error) {
	var out []models.UserRole
	for _, r := range f.rows[userID] {
		out = append(out, models.UserRole{UserID: userID, Role: string(r)})
	}
	return out, nil
}

func (f *fakeRoleStore) AddRole(_ context.Context, userID int64, role models.Role) error {
	f.writes++
	f.rows[userID] = append(f.rows[userID], role)
	return nil
}

func (f *fakeRoleStore) RemoveRole(_ context.Context, userID int64, role models.Role) error {
	f.writes++
	kept := f.rows[userID][:0]
	for _, r := range f.rows[userID] {
		if r != role {
			kept = append(kept, r)
		}
	}
	f.rows[userID] = kept
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

type countingRecorder struct {
	transitions []string
}

func (c *countingRecorder) ObserveTransition(entity, to string) {
	c.transitions = append(c.transitions, entity+":"+to)
}

func (f *fakeUsers) UpdateLastLogin(context.Context, int64) error { return nil }

type fakeTokens struct {
	tokens     map[string]*models.RefreshToken
	revokedAll []int64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (f *fakeTokens) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	if t, ok := f.tokens[token]; ok {
		t.IsRevoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.revokedAll = append(f.revokedAll, userID)
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

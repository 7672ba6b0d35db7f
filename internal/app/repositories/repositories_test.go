package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/migrations"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// testDB migrates a throwaway schema in the database named by
// CAMPUSHUB_TEST_DSN and drops it when the test ends.
func testDB(t *testing.T) *db.PostgresDB {
	t.Helper()
	dsn := os.Getenv("CAMPUSHUB_TEST_DSN")
	if dsn == "" {
		t.Skip("CAMPUSHUB_TEST_DSN not set")
	}
	ctx := context.Background()

	schema := fmt.Sprintf("campushub_test_%d", time.Now().UnixNano())
	admin, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	if err := migrations.NewMigrator(pool, migrations.Files(), zerolog.Nop()).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.FromPool(pool, zerolog.Nop())
}

func createUser(t *testing.T, repos *Repositories, email string, roles ...models.Role) *models.User {
	t.Helper()
	user, _, err := repos.UserRepository.CreateAccount(context.Background(), NewAccount{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Roles:        roles,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", email, err)
	}
	return user
}

func TestAccountsAndRoles(t *testing.T) {
	repos := NewRepositories(testDB(t))
	ctx := context.Background()

	user := createUser(t, repos, "Alice@Campus.edu", models.RoleStudent)

	got, err := repos.UserRepository.GetUserByEmail(ctx, "alice@campus.edu")
	if err != nil || got.ID != user.ID {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}
	if _, _, err := repos.UserRepository.CreateAccount(ctx, NewAccount{Email: "alice@campus.edu", PasswordHash: "x", Name: "Dup"}); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Errorf("duplicate CreateAccount() error = %v, want ErrEmailAlreadyExists", err)
	}

	if err := repos.RoleRepository.AddRole(ctx, user.ID, models.RoleEventAdmin); err != nil {
		t.Fatal(err)
	}
	if err := repos.RoleRepository.AddRole(ctx, user.ID, models.RoleEventAdmin); err != nil {
		t.Errorf("adding a held role again error = %v", err)
	}
	rows, err := repos.RoleRepository.ListUserRoles(ctx, user.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListUserRoles() = %v, %v", rows, err)
	}

	if err := repos.RoleRepository.RemoveRole(ctx, user.ID, models.RoleEventAdmin); err != nil {
		t.Fatal(err)
	}
	counts, err := repos.RoleRepository.CountByRole(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.RoleStudent] != 1 || counts[models.RoleEventAdmin] != 0 {
		t.Errorf("CountByRole() = %v", counts)
	}
}

func TestEventStatusGuardAndOptimisticUpdate(t *testing.T) {
	repos := NewRepositories(testDB(t))
	ctx := context.Background()

	event, err := repos.EventRepository.Create(ctx, map[string]interface{}{"name": "TechFest", "slug": "techfest"})
	if err != nil {
		t.Fatal(err)
	}
	if event.Status != models.EventStatusDraft {
		t.Errorf("new event status = %q, want draft", event.Status)
	}

	if _, err := repos.EventRepository.Create(ctx, map[string]interface{}{"name": "Again", "slug": "techfest"}); !errors.Is(err, apperrors.ErrConstraintViolation) {
		t.Errorf("duplicate slug error = %v, want ErrConstraintViolation", err)
	}

	moved, err := repos.EventRepository.UpdateFromStatus(ctx, event.ID, map[string]interface{}{"status": string(models.EventStatusUpcoming)}, models.EventStatusDraft, nil)
	if err != nil || moved.Status != models.EventStatusUpcoming {
		t.Fatalf("UpdateFromStatus() = %+v, %v", moved, err)
	}

	// stale status: neither the name nor the status may be written
	stale := map[string]interface{}{"name": "Renamed", "status": string(models.EventStatusActive)}
	if _, err := repos.EventRepository.UpdateFromStatus(ctx, event.ID, stale, models.EventStatusDraft, nil); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("stale UpdateFromStatus() error = %v, want ErrConflict", err)
	}
	if got, err := repos.EventRepository.GetByID(ctx, event.ID); err != nil || got.Name != "TechFest" || got.Status != models.EventStatusUpcoming {
		t.Errorf("after rejected update = %+v, %v", got, err)
	}

	// right status, stale timestamp
	if _, err := repos.EventRepository.UpdateFromStatus(ctx, event.ID, stale, models.EventStatusUpcoming, &event.UpdatedAt); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("UpdateFromStatus() with stale timestamp error = %v, want ErrConflict", err)
	}

	staleAt := event.UpdatedAt
	if _, err := repos.EventRepository.Update(ctx, event.ID, map[string]interface{}{"name": "TechFest 2025"}, &staleAt); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Update() with stale timestamp error = %v, want ErrConflict", err)
	}
	current := moved.UpdatedAt
	if _, err := repos.EventRepository.Update(ctx, event.ID, map[string]interface{}{"name": "TechFest 2025"}, &current); err != nil {
		t.Errorf("Update() with current timestamp error = %v", err)
	}

	if _, err := repos.EventRepository.GetBySlug(ctx, "missing"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want not found", err)
	}
}

func TestRegisterWaitlistsWhenFull(t *testing.T) {
	repos := NewRepositories(testDB(t))
	ctx := context.Background()

	event, err := repos.EventRepository.Create(ctx, map[string]interface{}{"name": "Hackathon", "slug": "hack"})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := repos.EventRepository.CreateSubEvent(ctx, map[string]interface{}{
		"event_id":         event.ID,
		"name":             "Finals",
		"max_participants": 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	const students = 5
	ids := make([]int64, students)
	for i := range ids {
		ids[i] = createUser(t, repos, fmt.Sprintf("s%d@campus.edu", i), models.RoleStudent).ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[models.RegistrationStatus]int{}
	)
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			reg, err := repos.RegistrationRepository.Register(ctx, NewRegistration{SubEventID: sub.ID, UserID: userID})
			if err != nil {
				t.Errorf("Register(%d) error = %v", userID, err)
				return
			}
			mu.Lock()
			statuses[reg.Status]++
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if statuses[models.RegistrationStatusPending] != 2 || statuses[models.RegistrationStatusWaitlisted] != students-2 {
		t.Errorf("statuses = %v, want 2 pending and %d waitlisted", statuses, students-2)
	}

	active, err := repos.RegistrationRepository.CountActive(ctx, sub.ID)
	if err != nil || active != 2 {
		t.Errorf("CountActive() = %d, %v", active, err)
	}

	if _, err := repos.RegistrationRepository.Register(ctx, NewRegistration{SubEventID: sub.ID, UserID: ids[0]}); !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Errorf("second Register() error = %v, want ErrResourceAlreadyExists", err)
	}
	if _, err := repos.RegistrationRepository.Register(ctx, NewRegistration{SubEventID: 999999, UserID: ids[0]}); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("Register() on missing sub-event error = %v, want not found", err)
	}
}

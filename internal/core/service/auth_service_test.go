package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	seq     int
	touched map[string]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), touched: make(map[string]time.Time)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// put stores a user directly, bypassing the uniqueness checks.
func (r *stubUserRepo) put(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("%024x", r.seq)
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
		if user.EmployeeID != "" && u.EmployeeID == user.EmployeeID {
			return nil, domain.ErrEmployeeIDTaken
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("%024x", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(*upd.Email)
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	if upd.Position != nil {
		u.Position = *upd.Position
	}
	if upd.EmployeeID != nil {
		u.EmployeeID = *upd.EmployeeID
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[id] = at
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func (r *stubUserRepo) Count(_ context.Context, activeOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if !activeOnly || u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) Stats(ctx context.Context) (*ports.UserStats, error) {
	total, _ := r.Count(ctx, false)
	active, _ := r.Count(ctx, true)
	return &ports.UserStats{Total: total, Active: active, Inactive: total - active}, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	skip := (page - 1) * limit
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newTestAuthService(repo ports.UserRepository) *AuthService {
	return NewAuthService(repo, AuthOptions{JWTSecret: "secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}, zerolog.Nop())
}

func registerInput(username, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  "pass123",
		FirstName: "Juan",
		LastName:  "Dela Cruz",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), registerInput("alice", "Alice@Example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", res.User.Email)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", res.User.Role)
	}
	if !res.User.IsActive {
		t.Fatalf("expected new user to be active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != res.User.ID {
		t.Fatalf("expected id claim %s, got %s", res.User.ID, claims.UserID)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim")
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	in := registerInput("bob", "bob@example.com")
	in.Role = "root"
	_, err := svc.Register(context.Background(), in)
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmailAnyCase(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), registerInput("bob", "bob@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("bobby", "BOB@Example.COM"))
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict kind, got %v", domain.KindOf(err))
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), registerInput("carol", fmt.Sprintf("carol%d@example.com", i)))
		}(i)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrUserExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", ok, conflicts)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	reg, err := svc.Register(context.Background(), registerInput("carol", "carol@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, identifier := range []string{"carol", "CAROL@example.com"} {
		res, err := svc.Login(context.Background(), identifier, "pass123")
		if err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
		if res.Token == "" || res.User.ID != reg.User.ID {
			t.Fatalf("unexpected login result: %+v", res)
		}
		if res.User.LastLoginAt == nil {
			t.Fatalf("expected lastLoginAt to be set")
		}
	}
	if _, ok := repo.touched[reg.User.ID]; !ok {
		t.Fatalf("expected last login to be persisted")
	}
}

func TestAuthService_Login_FailuresLookIdentical(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), registerInput("dave", "dave@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass123"), bcrypt.MinCost)
	repo.put(&domain.User{Username: "erin", Email: "erin@example.com", PasswordHash: string(hash), IsActive: false})

	cases := []struct{ identifier, password string }{
		{"dave", "wrong"},
		{"dave@example.com", "wrong"},
		{"ghost", "pass123"},
		{"erin", "pass123"},
	}
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.identifier, tc.password)
		if err != domain.ErrInvalidCredentials {
			t.Fatalf("login(%q): expected ErrInvalidCredentials, got %v", tc.identifier, err)
		}
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	reg, _ := svc.Register(context.Background(), registerInput("frank", "frank@example.com"))

	user, err := svc.Authenticate(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != reg.User.ID {
		t.Fatalf("unexpected user %s", user.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "garbage"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	other := NewAuthService(repo, AuthOptions{JWTSecret: "other", BcryptCost: bcrypt.MinCost}, zerolog.Nop())
	if _, err := other.Authenticate(context.Background(), reg.Token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	inactive := false
	_, _ = repo.Update(context.Background(), reg.User.ID, ports.UserUpdate{IsActive: &inactive})
	if _, err := svc.Authenticate(context.Background(), reg.Token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for inactive user, got %v", err)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	reg, _ := svc.Register(context.Background(), registerInput("gina", "gina@example.com"))

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := svc.issueToken(reg.User.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), stale); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	token, err := svc.issueToken("000000000000000000000099")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	reg, _ := svc.Register(context.Background(), registerInput("hank", "hank@example.com"))

	if err := svc.ChangePassword(context.Background(), reg.User.ID, "bad", "newpass"); err != domain.ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), reg.User.ID, "pass123", "newpass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), reg.User.ID)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass")) != nil {
		t.Fatalf("new password not stored")
	}
	if stored.PasswordChangedAt == nil {
		t.Fatalf("expected passwordChangedAt")
	}
	if _, err := svc.Login(context.Background(), "hank", "pass123"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted")
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	reg, _ := svc.Register(context.Background(), registerInput("ivy", "ivy@example.com"))

	dept := "FOD"
	updated, err := svc.UpdateProfile(context.Background(), reg.User.ID, ports.ProfileUpdate{Department: &dept})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Department != "FOD" || updated.FirstName != "Juan" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	pkgcrypto "github.com/notehub-app/notehub/internal/crypto"
	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
	"github.com/notehub-app/notehub/internal/repository"
	"github.com/notehub-app/notehub/internal/token"
)

type fakeUsers struct {
	seq    int64
	byName map[string]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.byName {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) SetAdmin(_ context.Context, username string, isAdmin bool) error {
	u, ok := f.byName[username]
	if !ok {
		return errs.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()
	s := NewAuthService(newFakeUsers(), []byte("k"), time.Minute)
	ctx := context.Background()

	cases := []struct{ username, password string }{
		{"ab", "password"},                     // username too short
		{strings.Repeat("u", 51), "password"},  // username too long
		{"alice", "short"},                     // password too short
		{"alice", strings.Repeat("p", 129)},    // password too long
	}
	for _, c := range cases {
		if _, err := s.Register(ctx, c.username, c.password); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("Register(%q, <%d chars>): want ErrValidation, got %v", c.username, len(c.password), err)
		}
	}
}

func TestAuth_Register_HashesAndConflicts(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s := NewAuthService(users, []byte("k"), time.Minute)
	ctx := context.Background()

	u, err := s.Register(ctx, "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("want assigned ID")
	}
	if u.IsAdmin {
		t.Fatalf("new users must not be admin")
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if !pkgcrypto.VerifyPassword("s3cret-pass", u.PasswordHash) {
		t.Fatalf("stored hash must verify the original password")
	}

	if _, err := s.Register(ctx, "alice", "other-pass"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("duplicate register: want ErrAlreadyExists, got %v", err)
	}
}

func TestAuth_Login_IssuesValidToken(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	key := []byte("signing-key")
	s := NewAuthService(users, key, time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokens, u, err := s.Login(ctx, "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("user = %q", u.Username)
	}
	sub, err := token.Validate(tokens.AccessToken, key)
	if err != nil || sub != "alice" {
		t.Fatalf("issued token must validate to the username, got (%q, %v)", sub, err)
	}
}

func TestAuth_Login_UnknownUserAndWrongPasswordIndistinguishable(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s := NewAuthService(users, []byte("k"), time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, errWrongPass := s.Login(ctx, "alice", "wrong-pass")
	_, _, errNoUser := s.Login(ctx, "nobody", "s3cret-pass")

	if !errors.Is(errWrongPass, errs.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", errWrongPass)
	}
	if !errors.Is(errNoUser, errs.ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("messages must be identical: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestAuth_Authenticate(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	key := []byte("signing-key")
	s := NewAuthService(users, key, time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokens, _, err := s.Login(ctx, "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	u, err := s.Authenticate(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("resolved user = %q", u.Username)
	}

	if _, err := s.Authenticate(ctx, "garbage"); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("garbage token: want ErrUnauthenticated, got %v", err)
	}

	// A token whose subject no longer exists is unauthenticated too.
	orphan, _, err := token.Issue("ghost", key, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s.Authenticate(ctx, orphan); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("orphan subject: want ErrUnauthenticated, got %v", err)
	}
}

func TestAuth_AuthorizeAdmin(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s := NewAuthService(users, []byte("k"), time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := s.AuthorizeAdmin(ctx, "alice"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-admin: want ErrForbidden, got %v", err)
	}
	if err := s.AuthorizeAdmin(ctx, "nobody"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("missing user: want ErrForbidden, got %v", err)
	}

	if err := users.SetAdmin(ctx, "alice", true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	if err := s.AuthorizeAdmin(ctx, "alice"); err != nil {
		t.Fatalf("admin: want nil, got %v", err)
	}
}

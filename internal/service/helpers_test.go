package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/staybook/staybook-api/internal/db/dbtest"
	"github.com/staybook/staybook-api/internal/metrics"
	"github.com/staybook/staybook-api/internal/model"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/session"
)

const testSessionSecret = "staybook_test_session_secret_0123456789"

type fakeProvider struct {
	configured bool
	identity   *model.ExternalIdentity
	err        error
	calls      int
}

func (p *fakeProvider) Name() string     { return "google" }
func (p *fakeProvider) Configured() bool { return p.configured }
func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, _ string) (*model.ExternalIdentity, error) {
	p.calls++
	return p.identity, p.err
}

type fixture struct {
	db       *sqlx.DB
	users    *UserService
	auth     *AuthService
	provider *fakeProvider
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := dbtest.New(t)
	repo := repository.NewUserRepository(database)
	m := metrics.New()
	provider := &fakeProvider{configured: true}

	users := NewUserService(repo, m)
	users.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	auth := NewAuthService(repo, provider, session.NewMemoryRevoker(), m, testSessionSecret, 24*time.Hour, false)

	return &fixture{db: database, users: users, auth: auth, provider: provider, metrics: m}
}

func (f *fixture) countPhone(t *testing.T, phone string) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM users WHERE phone_number = $1`, phone); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) countUsers(t *testing.T) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func googleIdentity(subject, email string) *model.ExternalIdentity {
	return &model.ExternalIdentity{
		Provider:   "google",
		Subject:    subject,
		Email:      email,
		GivenName:  "Ana",
		FamilyName: "Diaz",
		Picture:    "https://lh3.googleusercontent.com/a/" + subject,
	}
}

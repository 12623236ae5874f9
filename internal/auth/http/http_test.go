package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/internal/auth/store/drivers/sqlite"
	"github.com/studyhall-app/studyhall/pkg/cryptox"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/studyhall-app/studyhall/pkg/jwtx"
	"github.com/studyhall-app/studyhall/pkg/mailx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// testServer wires the full router against a fresh store and exposes the SDK
// client plus direct service handles for seeding.
type testServer struct {
	ts     *httptest.Server
	client *identitysdk.Client
	store  store.Store
	mailer *captureMailer

	auth      *service.AuthService
	tokens    *service.TokenService
	passwords *service.PasswordService
	tenants   *service.TenantService
	provision *service.ProvisionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "identity.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec := jwtx.NewHS256([]byte("http-test-secret-material-12345"), "test-issuer")
	mailer := &captureMailer{}

	tenants := &service.TenantService{Store: st}
	srv := &testServer{
		store:   st,
		mailer:  mailer,
		tenants: tenants,
		auth: &service.AuthService{
			Store:            st,
			Tenants:          tenants,
			MaxLoginAttempts: 5,
			LockoutDuration:  30 * time.Minute,
		},
		tokens: &service.TokenService{
			Codec:      codec,
			Issuer:     "test-issuer",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		passwords: &service.PasswordService{
			Store:             st,
			Mailer:            mailer,
			MinPasswordLength: 8,
			OTPTTL:            10 * time.Minute,
		},
		provision: &service.ProvisionService{Store: st},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(codec, "test", st, logger)
	router.AuthService = srv.auth
	router.TokenService = srv.tokens
	router.PasswordService = srv.passwords
	router.TenantService = srv.tenants
	router.ProvisionService = srv.provision
	router.ApplyRoutes()

	srv.ts = httptest.NewServer(router)
	t.Cleanup(srv.ts.Close)
	srv.client = identitysdk.NewClient(srv.ts.URL)
	return srv
}

// seedTenant creates a tenant with a resolvable primary domain.
func (s *testServer) seedTenant(t *testing.T, code, domainName string) domain.Tenant {
	t.Helper()

	tenant, err := s.tenants.CreateTenant(context.Background(), service.CreateTenantInput{
		Code:          code,
		Name:          "Test School " + code,
		PrimaryDomain: domainName,
	})
	require.NoError(t, err)
	return tenant
}

// seedUser provisions a tenant user and returns it with its temp password.
func (s *testServer) seedUser(t *testing.T, in service.ProvisionUserInput) (domain.TenantUser, string) {
	t.Helper()

	if in.AssignedBy == "" {
		in.AssignedBy = "seed"
	}
	user, tempPassword, err := s.provision.ProvisionTenantUser(context.Background(), in)
	require.NoError(t, err)
	return user, tempPassword
}

var mailCodePattern = regexp.MustCompile(`code is: (\d{6})`)

// captureMailer records sent messages for inspection.
type captureMailer struct {
	mu   sync.Mutex
	msgs []mailx.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailx.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.msgs)
	match := mailCodePattern.FindStringSubmatch(m.msgs[len(m.msgs)-1].TextBody)
	require.Len(t, match, 2)
	return match[1]
}

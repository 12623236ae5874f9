package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/stretchr/testify/require"
)

// adminToken bootstraps the system admin and returns a bearer token for it.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	tempPassword, created, err := s.provision.EnsureSystemAdmin(ctx, "root", "root@studyhall.test")
	require.NoError(t, err)
	require.True(t, created)

	login, err := s.client.Login(ctx, "root", tempPassword, "")
	require.NoError(t, err)
	return login.AccessToken
}

// doJSON sends an authenticated JSON request and decodes the response body.
func (s *testServer) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, s.ts.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestResolveTenantEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx := context.Background()
	tenant := srv.seedTenant(t, "res", "res.studyhall.test")

	t.Run("resolves a known domain", func(t *testing.T) {
		resp, err := srv.client.ResolveTenant(ctx, "res.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, tenant.ID, resp.TenantID)
		require.Equal(t, "res", resp.TenantCode)
		require.True(t, resp.IsPrimary)
		require.Equal(t, "active", resp.TenantStatus)
	})

	t.Run("unknown domain is a 404", func(t *testing.T) {
		_, err := srv.client.ResolveTenant(ctx, "nowhere.studyhall.test")
		requireAPIError(t, err, http.StatusNotFound, "not_found")
	})
}

func TestCreateTenantEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	token := srv.adminToken(t)

	body := map[string]string{
		"code":           "newschool",
		"name":           "New School",
		"primary_domain": "new.studyhall.test",
	}

	t.Run("requires authentication", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants", "", body, nil)
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("system admin creates a tenant", func(t *testing.T) {
		var out identitysdk.CreateTenantResponse
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants", token, body, &out)
		require.Equal(t, http.StatusCreated, code)
		require.NotEmpty(t, out.TenantID)
		require.Equal(t, "newschool", out.Code)

		// The domain resolves immediately.
		resolved, err := srv.client.ResolveTenant(context.Background(), "new.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, out.TenantID, resolved.TenantID)
	})

	t.Run("duplicate code is a 409", func(t *testing.T) {
		var out identitysdk.ErrorResponse
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants", token, map[string]string{
			"code":           "newschool",
			"name":           "Other",
			"primary_domain": "other.studyhall.test",
		}, &out)
		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "conflict", out.Error)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants", token, map[string]string{"code": "x"}, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("tenant admins may not create tenants", func(t *testing.T) {
		tenant := srv.seedTenant(t, "ta", "ta.studyhall.test")
		_, tempPassword := srv.seedUser(t, service.ProvisionUserInput{
			TenantID: tenant.ID, Username: "boss", Email: "boss@ta.test",
			Role: domain.RoleTenantAdmin,
		})
		login, err := srv.client.Login(context.Background(), "boss", tempPassword, "ta.studyhall.test")
		require.NoError(t, err)

		code := srv.doJSON(t, http.MethodPost, "/v1/tenants", login.AccessToken, body, nil)
		require.Equal(t, http.StatusForbidden, code)
	})
}

package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/stretchr/testify/require"
)

func TestProvisionUserEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx := context.Background()
	tenant := srv.seedTenant(t, "pru", "pru.studyhall.test")
	other := srv.seedTenant(t, "pru2", "pru2.studyhall.test")

	_, adminTemp := srv.seedUser(t, service.ProvisionUserInput{
		TenantID: tenant.ID, Username: "principal", Email: "principal@pru.test",
		Role: domain.RoleTenantAdmin,
	})
	adminLogin, err := srv.client.Login(ctx, "principal", adminTemp, "pru.studyhall.test")
	require.NoError(t, err)
	adminToken := adminLogin.AccessToken

	usersPath := "/v1/tenants/" + tenant.ID + "/users"

	t.Run("tenant admin provisions a student", func(t *testing.T) {
		var out identitysdk.ProvisionUserResponse
		code := srv.doJSON(t, http.MethodPost, usersPath, adminToken, map[string]any{
			"username":     "newkid",
			"email":        "newkid@pru.test",
			"display_name": "New Kid",
			"grade_level":  6,
		}, &out)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, "newkid", out.Username)
		require.Equal(t, "pending_activation", out.Status)
		require.Len(t, out.TemporaryPassword, 12)

		// The returned password works for the first login.
		login, err := srv.client.Login(ctx, "newkid", out.TemporaryPassword, "pru.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, "student", login.Principal.Role)
		require.Equal(t, 6, login.Principal.GradeLevel)
	})

	t.Run("duplicate username is a 409", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPost, usersPath, adminToken, map[string]any{
			"username": "newkid",
			"email":    "newkid2@pru.test",
		}, nil)
		require.Equal(t, http.StatusConflict, code)
	})

	t.Run("tenant admin cannot provision into another tenant", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants/"+other.ID+"/users", adminToken, map[string]any{
			"username": "intruder",
			"email":    "intruder@pru2.test",
		}, nil)
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("students are refused by the role gate", func(t *testing.T) {
		_, studentTemp := srv.seedUser(t, service.ProvisionUserInput{
			TenantID: tenant.ID, Username: "stu", Email: "stu@pru.test",
		})
		studentLogin, err := srv.client.Login(ctx, "stu", studentTemp, "pru.studyhall.test")
		require.NoError(t, err)

		code := srv.doJSON(t, http.MethodPost, usersPath, studentLogin.AccessToken, map[string]any{
			"username": "friend",
			"email":    "friend@pru.test",
		}, nil)
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("system admin provisions into any tenant", func(t *testing.T) {
		token := srv.adminToken(t)
		var out identitysdk.ProvisionUserResponse
		code := srv.doJSON(t, http.MethodPost, "/v1/tenants/"+other.ID+"/users", token, map[string]any{
			"username": "transfer",
			"email":    "transfer@pru2.test",
			"role":     "tutor",
		}, &out)
		require.Equal(t, http.StatusCreated, code)

		login, err := srv.client.Login(ctx, "transfer", out.TemporaryPassword, "pru2.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, "tutor", login.Principal.Role)
	})
}

func TestUserStatusEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx := context.Background()
	tenant := srv.seedTenant(t, "ust", "ust.studyhall.test")

	_, adminTemp := srv.seedUser(t, service.ProvisionUserInput{
		TenantID: tenant.ID, Username: "head", Email: "head@ust.test",
		Role: domain.RoleTenantAdmin,
	})
	adminLogin, err := srv.client.Login(ctx, "head", adminTemp, "ust.studyhall.test")
	require.NoError(t, err)
	adminToken := adminLogin.AccessToken

	user, userTemp := srv.seedUser(t, service.ProvisionUserInput{
		TenantID: tenant.ID, Username: "uri", Email: "uri@ust.test",
	})
	statusPath := "/v1/tenants/" + tenant.ID + "/users/" + user.ID + "/status"

	t.Run("suspension blocks login", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPatch, statusPath, adminToken, map[string]string{
			"status": "suspended",
		}, nil)
		require.Equal(t, http.StatusOK, code)

		_, err := srv.client.Login(ctx, "uri", userTemp, "ust.studyhall.test")
		requireAPIError(t, err, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("reactivation restores login", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPatch, statusPath, adminToken, map[string]string{
			"status": "active",
		}, nil)
		require.Equal(t, http.StatusOK, code)

		_, err := srv.client.Login(ctx, "uri", userTemp, "ust.studyhall.test")
		require.NoError(t, err)
	})

	t.Run("invalid status is a 400", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPatch, statusPath, adminToken, map[string]string{
			"status": "deleted",
		}, nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		code := srv.doJSON(t, http.MethodPatch, "/v1/tenants/"+tenant.ID+"/users/no-such-user/status",
			adminToken, map[string]string{"status": "active"}, nil)
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := srv.ts.Client().Get(srv.ts.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ready, err := srv.ts.Client().Get(srv.ts.URL + "/readyz")
	require.NoError(t, err)
	defer ready.Body.Close()
	require.Equal(t, http.StatusOK, ready.StatusCode)
}

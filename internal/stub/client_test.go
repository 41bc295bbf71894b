package stub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/pkg/client"
	"github.com/naveenspark/bankdash/pkg/domain"
)

// TestClientAgainstStub runs the real client through register, login and a
// dashboard fetch.
func TestClientAgainstStub(t *testing.T) {
	_, app := newTestServer(t)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	c := client.New(srv.URL, session.TokenFunc(store))
	ctx := context.Background()

	creds := domain.Credentials{Name: "A", Email: "a@b.com", Password: "x"}
	resp, err := c.Authenticate(ctx, domain.ModeRegister, creds)
	require.NoError(t, err)
	tok, ok := resp.SessionToken()
	require.True(t, ok)
	assert.Empty(t, resp.AccessToken)

	_, err = c.Authenticate(ctx, domain.ModeRegister, creds)
	detail, ok := client.Detail(err)
	require.True(t, ok)
	assert.Equal(t, "User with email exists", detail)

	resp, err = c.Authenticate(ctx, domain.ModeLogin, creds)
	require.NoError(t, err)
	tok, ok = resp.SessionToken()
	require.True(t, ok)
	assert.Equal(t, tok, resp.AccessToken)

	_, err = c.DashboardSummary(ctx)
	assert.True(t, client.IsStatus(err, 403), "no token stored yet: %v", err)

	require.NoError(t, store.Set(session.TokenKey, tok))
	snap, err := c.DashboardSummary(ctx)
	require.NoError(t, err)

	var account map[string]float64
	require.NoError(t, json.Unmarshal(snap.AccountSummary, &account))
	assert.Equal(t, 1520.75, account["balance"])

	info, ok := session.Describe(tok)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", info.Email)
	assert.Equal(t, "customer", info.Role)
}

func TestClientValidationDetail(t *testing.T) {
	_, app := newTestServer(t)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL, nil)
	_, err := c.Authenticate(context.Background(), domain.ModeRegister, domain.Credentials{Email: "a@b.com"})
	detail, ok := client.Detail(err)
	require.True(t, ok)
	assert.Equal(t, "name field required; password field required", detail)
}

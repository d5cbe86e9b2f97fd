package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	tests := []struct {
		name        string
		tenantName  string
		email       string
		shopDomain  string
		accessToken string
		wantErr     bool
	}{
		{
			name:        "valid tenant",
			tenantName:  "Acme Outdoor",
			email:       "ops@acme.example",
			shopDomain:  "acme.myshopify.com",
			accessToken: "shpat_test",
			wantErr:     false,
		},
		{
			name:        "domain with scheme is normalized",
			tenantName:  "Acme Outdoor",
			email:       "ops@acme.example",
			shopDomain:  "https://Acme.myshopify.com/",
			accessToken: "shpat_test",
			wantErr:     false,
		},
		{
			name:        "empty name",
			tenantName:  "",
			email:       "ops@acme.example",
			shopDomain:  "acme.myshopify.com",
			accessToken: "shpat_test",
			wantErr:     true,
		},
		{
			name:        "invalid email",
			tenantName:  "Acme Outdoor",
			email:       "not-an-email",
			shopDomain:  "acme.myshopify.com",
			accessToken: "shpat_test",
			wantErr:     true,
		},
		{
			name:        "empty shop domain",
			tenantName:  "Acme Outdoor",
			email:       "ops@acme.example",
			shopDomain:  "",
			accessToken: "shpat_test",
			wantErr:     true,
		},
		{
			name:        "domain with path",
			tenantName:  "Acme Outdoor",
			email:       "ops@acme.example",
			shopDomain:  "acme.myshopify.com/admin",
			accessToken: "shpat_test",
			wantErr:     true,
		},
		{
			name:        "empty access token",
			tenantName:  "Acme Outdoor",
			email:       "ops@acme.example",
			shopDomain:  "acme.myshopify.com",
			accessToken: "   ",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant, err := NewTenant(tt.tenantName, tt.email, tt.shopDomain, tt.accessToken)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, "", tenant.ID.String())
			assert.Equal(t, "acme.myshopify.com", tenant.ShopDomain)
			assert.Equal(t, TenantStatusActive, tenant.Status)
			assert.True(t, tenant.IsActive())
		})
	}
}

func TestTenant_Credentials(t *testing.T) {
	tenant, err := NewTenant("Acme", "ops@acme.example", "acme.myshopify.com", "shpat_abc")
	require.NoError(t, err)

	creds := tenant.Credentials()
	assert.Equal(t, "acme.myshopify.com", creds.ShopDomain)
	assert.Equal(t, "shpat_abc", creds.AccessToken)
}

func TestTenant_RotateAccessToken(t *testing.T) {
	tenant, err := NewTenant("Acme", "ops@acme.example", "acme.myshopify.com", "shpat_old")
	require.NoError(t, err)

	require.NoError(t, tenant.RotateAccessToken("shpat_new"))
	assert.Equal(t, "shpat_new", tenant.AccessToken)

	assert.Error(t, tenant.RotateAccessToken(""))
}

func TestTenant_Lifecycle(t *testing.T) {
	tenant, err := NewTenant("Acme", "ops@acme.example", "acme.myshopify.com", "shpat_abc")
	require.NoError(t, err)

	tenant.Suspend()
	assert.False(t, tenant.IsActive())

	tenant.Activate()
	assert.True(t, tenant.IsActive())

	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tenant.MarkSynced(syncedAt)
	require.NotNil(t, tenant.LastSyncAt)
	assert.Equal(t, syncedAt, *tenant.LastSyncAt)
}

package workflow

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/pipeline"
	"content-commerce/backend/internal/security"
	userdomain "content-commerce/backend/internal/user/domain"
)

func seedUser(t *testing.T, f *fixture) *userdomain.User {
	t.Helper()
	u := &userdomain.User{ServiceID: f.service.ID, Username: "acme-0001", Email: "jane@x.com", PasswordHash: "h"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestCreateContract_DummyReceipt(t *testing.T) {
	f := newFixture()
	u := seedUser(t, f)
	pkg := &buyingdomain.Package{ID: "pkg-1", Label: "All courses"}
	p := f.pipelines.CreateContract("dummy_receipt", pkg, u)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, pipeline.Completed, p.Status())
	assert.True(t, u.IsPremium)
	assert.True(t, f.users.byID[u.ID].IsPremium)
	require.Len(t, f.contracts.contracts, 1)
	c := f.contracts.contracts[0]
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("dummy_receipt")), c.Receipt)
	assert.Equal(t, "dummy_receipt", security.RevealReceipt(c.Receipt))
	assert.Equal(t, u.ID, c.UserID)
	assert.Equal(t, pkg.ID, c.PackageID)
	assert.True(t, c.IsActive)
	assert.Same(t, c, p.State.Contract)
}

func TestCreateContract_MissingUserStops(t *testing.T) {
	f := newFixture()
	p := f.pipelines.CreateContract("dummy_receipt", &buyingdomain.Package{ID: "pkg-1"}, nil)

	require.NoError(t, p.Run(context.Background()))
	assert.True(t, p.Stopped())
	assert.Equal(t, "no user to mark as premium", p.StopReason())
	assert.Empty(t, f.contracts.contracts)
}

func TestCreateContract_MissingPackageKeepsPremium(t *testing.T) {
	f := newFixture()
	u := seedUser(t, f)
	p := f.pipelines.CreateContract("dummy_receipt", nil, u)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, "package not found", p.StopReason())
	assert.True(t, u.IsPremium, "no rollback of steps that already ran")
	assert.Empty(t, f.contracts.contracts)
}

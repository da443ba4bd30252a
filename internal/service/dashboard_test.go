package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/mocks"
)

type dashboardMocks struct {
	api    *mocks.MockRealtyAPI
	cache  *mocks.MockCacheRepository
	outbox *mocks.MockOutbox
}

func newDashboardService(t *testing.T) (dashboardMocks, *DashboardService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := dashboardMocks{
		api:    mocks.NewMockRealtyAPI(ctrl),
		cache:  mocks.NewMockCacheRepository(ctrl),
		outbox: mocks.NewMockOutbox(ctrl),
	}
	svc := NewDashboardService(DashboardServiceOptions{
		API:    m.api,
		Cache:  m.cache,
		Outbox: m.outbox,
		Config: DashboardServiceConfig{
			CacheTTL: 2 * time.Minute,
			Resources: []realty.Resource{
				realty.MustLookup(realty.Properties),
				realty.MustLookup(realty.Schedules),
			},
			Now: func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) },
		},
	})
	return m, svc
}

func expectMailCounts(m dashboardMocks, pending, failed int) {
	m.outbox.EXPECT().Count(gomock.Any(), dmail.ListFilter{Status: dmail.StatusPending}).Return(pending, nil)
	m.outbox.EXPECT().Count(gomock.Any(), dmail.ListFilter{Status: dmail.StatusFailed}).Return(failed, nil)
}

func TestDashboardService_CacheMissCountsAndStores(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)
	ctx := context.Background()

	m.cache.EXPECT().Get(gomock.Any(), "dashboard:counts:user").Return(nil, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/properties").Return(42, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/schedules").Return(7, nil)
	m.cache.EXPECT().Set(gomock.Any(), "dashboard:counts:user", gomock.Any(), 2*time.Minute).
		DoAndReturn(func(_ context.Context, _ string, raw []byte, _ time.Duration) error {
			var d Dashboard
			require.NoError(t, json.Unmarshal(raw, &d))
			assert.Len(t, d.Counts, 2)
			return nil
		})
	expectMailCounts(m, 3, 1)

	d, err := svc.Get(ctx, creds, domainauth.RoleUser)
	require.NoError(t, err)
	assert.False(t, d.Cached)
	assert.Equal(t, []ResourceCount{
		{Resource: realty.Properties, Title: "Properties", Icon: "building", Count: 42},
		{Resource: realty.Schedules, Title: "Schedules", Icon: "calendar", Count: 7},
	}, d.Counts)
	assert.Equal(t, 3, d.MailPending)
	assert.Equal(t, 1, d.MailFailed)
}

func TestDashboardService_CacheHitSkipsAPI(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)

	raw, err := json.Marshal(Dashboard{Counts: []ResourceCount{{Resource: realty.Properties, Count: 5}}})
	require.NoError(t, err)
	m.cache.EXPECT().Get(gomock.Any(), "dashboard:counts:admin").Return(raw, nil)
	expectMailCounts(m, 0, 0)

	d, err := svc.Get(context.Background(), creds, domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, d.Cached)
	assert.Equal(t, 5, d.Counts[0].Count)
}

func TestDashboardService_PartialFailureIsNotCached(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)

	m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/properties").Return(42, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/schedules").Return(0, apperrors.Internal("boom"))
	expectMailCounts(m, 0, 0)

	d, err := svc.Get(context.Background(), creds, domainauth.RoleUser)
	require.NoError(t, err)
	assert.False(t, d.Counts[0].Unavailable)
	assert.True(t, d.Counts[1].Unavailable)
}

func TestDashboardService_UnauthorizedFails(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)

	m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, gomock.Any()).
		Return(0, apperrors.Unauthorized("token expired")).AnyTimes()

	_, err := svc.Get(context.Background(), creds, domainauth.RoleUser)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDashboardService_Invalidate(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)

	m.cache.EXPECT().Delete(gomock.Any(), "dashboard:counts:admin").Return(true, nil)
	m.cache.EXPECT().Delete(gomock.Any(), "dashboard:counts:user").Return(false, nil)
	m.cache.EXPECT().Delete(gomock.Any(), "dashboard:counts:guest").Return(false, nil)
	svc.Invalidate(context.Background())
}

func TestDashboardService_CacheIsScopedByRole(t *testing.T) {
	t.Parallel()
	m, svc := newDashboardService(t)

	// A fresh admin entry must not be served to a user.
	m.cache.EXPECT().Get(gomock.Any(), "dashboard:counts:user").Return(nil, nil)
	m.cache.EXPECT().Get(gomock.Any(), "dashboard:counts:admin").Times(0)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/properties").Return(1, nil)
	m.api.EXPECT().Count(gomock.Any(), creds, "api/schedules").Return(2, nil)
	m.cache.EXPECT().Set(gomock.Any(), "dashboard:counts:user", gomock.Any(), 2*time.Minute).Return(nil)
	expectMailCounts(m, 0, 0)

	d, err := svc.Get(context.Background(), creds, domainauth.RoleUser)
	require.NoError(t, err)
	assert.False(t, d.Cached)
	assert.Equal(t, "dashboard:counts:guest", dashboardCacheKey(""))
}

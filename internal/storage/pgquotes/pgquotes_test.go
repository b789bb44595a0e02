package pgquotes

import (
	"context"
	"testing"
	"time"

	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "ratebox_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/ratebox_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func sampleInput(expiresAt time.Time) models.RateQuoteCreateInput {
	two := 2
	return models.RateQuoteCreateInput{
		ShipTo: models.Address{
			Street1:    "1 Pike Pl",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
			Country:    "US",
		},
		Parcel: models.Parcel{WeightOz: 32, LengthIn: 10, WidthIn: 8, HeightIn: 6},
		Rates: []models.Rate{
			{
				RateID:       "se-rate-1",
				CarrierName:  "UPS",
				ServiceType:  "UPS 2nd Day Air",
				ServiceCode:  "ups_2nd_day_air",
				AmountCents:  2110,
				Currency:     "usd",
				DeliveryDays: &two,
			},
		},
		ExpiresAt: expiresAt,
	}
}

func TestPGQuotes_CreateGetRedeem(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	created, err := st.CreateQuote(ctx, sampleInput(time.Now().UTC().Add(15*time.Minute)))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotEmpty(t, created.QuoteKey)
	require.Equal(t, models.QuoteStatusActive, created.Status)

	got, err := st.GetQuoteByKey(ctx, created.QuoteKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.QuoteKey, got.QuoteKey)
	require.Equal(t, "98101", got.ShipTo.PostalCode)
	require.Len(t, got.Rates, 1)
	require.Equal(t, int64(2110), got.Rates[0].AmountCents)
	require.NotNil(t, got.Rates[0].DeliveryDays)
	require.Equal(t, 2, *got.Rates[0].DeliveryDays)

	missing, err := st.GetQuoteByKey(ctx, "11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.Nil(t, missing)

	now := time.Now().UTC()
	redeemed, err := st.RedeemQuote(ctx, created.QuoteKey, now)
	require.NoError(t, err)
	require.NotNil(t, redeemed)
	require.Equal(t, models.QuoteStatusRedeemed, redeemed.Status)

	// Second redeem loses.
	again, err := st.RedeemQuote(ctx, created.QuoteKey, now)
	require.NoError(t, err)
	require.Nil(t, again)
}

func TestPGQuotes_RedeemExpiredFails(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	created, err := st.CreateQuote(ctx, sampleInput(time.Now().UTC().Add(-time.Minute)))
	require.NoError(t, err)

	q, err := st.RedeemQuote(ctx, created.QuoteKey, time.Now().UTC())
	require.NoError(t, err)
	require.Nil(t, q)
}

func TestPGQuotes_ExpireDueQuotes(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	overdue, err := st.CreateQuote(ctx, sampleInput(time.Now().UTC().Add(-time.Minute)))
	require.NoError(t, err)
	fresh, err := st.CreateQuote(ctx, sampleInput(time.Now().UTC().Add(15*time.Minute)))
	require.NoError(t, err)

	expired, err := st.ExpireDueQuotes(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, overdue.QuoteKey, expired[0].QuoteKey)
	require.Equal(t, models.QuoteStatusExpired, expired[0].Status)

	// Batch is drained: nothing left to expire.
	expired, err = st.ExpireDueQuotes(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Empty(t, expired)

	got, err := st.GetQuoteByKey(ctx, fresh.QuoteKey)
	require.NoError(t, err)
	require.Equal(t, models.QuoteStatusActive, got.Status)
}

package pattern

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe/gatewaytest"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

func TestReseedPlaceholders(t *testing.T) {
	ctx := context.Background()

	incidents := make([]ledger.Incident, 0, 3)
	for id := int64(1); id <= 3; id++ {
		incidents = append(incidents, ledger.Incident{
			ID:        domain.IncidentID(id),
			Retailer:  gatewaytest.EncryptValue(uint64(id)),
			Loss:      gatewaytest.EncryptValue(uint64(id) * 100),
			CreatedAt: time.Now().UTC(),
		})
	}

	t.Run("restores a placeholder per incident into an empty store", func(t *testing.T) {
		store := NewInMemoryStore()

		seeded, err := ReseedPlaceholders(ctx, store, incidents)
		require.NoError(t, err)
		assert.Equal(t, 3, seeded)

		for _, incident := range incidents {
			p, err := store.Get(ctx, domain.PatternID(incident.ID))
			require.NoError(t, err)
			assert.False(t, p.Analyzed)
		}
	})

	t.Run("leaves existing records untouched", func(t *testing.T) {
		store := NewInMemoryStore()
		completed := CrimePattern{
			ID:        domain.PatternID(incidents[0].ID),
			Frequency: gatewaytest.EncryptValue(7),
			Analyzed:  true,
		}
		require.NoError(t, store.Insert(ctx, completed))

		seeded, err := ReseedPlaceholders(ctx, store, incidents)
		require.NoError(t, err)
		assert.Equal(t, 2, seeded)

		p, err := store.Get(ctx, completed.ID)
		require.NoError(t, err)
		assert.True(t, p.Analyzed)
		assert.True(t, p.Frequency.Equal(completed.Frequency))
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewInMemoryStore()

		_, err := ReseedPlaceholders(ctx, store, incidents)
		require.NoError(t, err)
		seeded, err := ReseedPlaceholders(ctx, store, incidents)
		require.NoError(t, err)
		assert.Zero(t, seeded)
	})
}

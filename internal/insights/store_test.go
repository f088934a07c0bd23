package insights

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetFixture = `name,category_list,funding_total_usd,funding_rounds,status,country,primary_category,founded_year,first_funding_year
Acme,Software|Finance,12500000,3,operating,USA,Software,2009,2010
Beta,,0,0,unknown,unknown,,,
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cleaned_investments.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetFixture), 0644))
	return path
}

func TestStoreLoad(t *testing.T) {
	store := NewStore(writeFixture(t), nil)
	require.NoError(t, store.Load(context.Background()))

	invs, err := store.Investments()
	require.NoError(t, err)
	require.Len(t, invs, 2)

	acme := invs[0]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, float64(12500000), acme.FundingTotalUSD)
	assert.Equal(t, 3, acme.FundingRounds)
	assert.Equal(t, "Software", acme.PrimaryCategory)
	assert.Equal(t, 2009, acme.FoundedYear)

	// The documented missing sentinel reads as zero values without
	// crashing the consumer.
	beta := invs[1]
	assert.Equal(t, "", beta.PrimaryCategory)
	assert.Equal(t, 0, beta.FoundedYear)
}

func TestStoreNotLoaded(t *testing.T) {
	store := NewStore("unused.csv", nil)
	_, err := store.Investments()
	assert.Error(t, err)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.csv"), nil)
	assert.Error(t, store.Load(context.Background()))
}

func TestStoreWatchReloads(t *testing.T) {
	path := writeFixture(t)
	store := NewStore(path, nil)
	require.NoError(t, store.Load(context.Background()))

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.Watch(ctx, 10*time.Millisecond, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	// Simulate an atomic replace by a new pipeline run: new content,
	// newer mtime.
	updated := datasetFixture + "Gamma,Biotech,500,1,operating,FRA,Biotech,2015,2016\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload after artifact replace")
	}

	invs, err := store.Investments()
	require.NoError(t, err)
	assert.Len(t, invs, 3)
}

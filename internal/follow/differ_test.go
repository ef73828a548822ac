package follow

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

const wallet = "0xAbCd000000000000000000000000000000000001"

func futureDate() string {
	return time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
}

func pos(asset, size, price string) api.OpenPosition {
	return api.OpenPosition{
		Asset:       asset,
		ConditionID: "cond-" + asset,
		Size:        num(size),
		CurPrice:    num(price),
		EndDate:     futureDate(),
	}
}

func TestDifferColdStart(t *testing.T) {
	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{pos("A", "10", "0.5"), pos("B", "3", "0.2")})

	d := NewDiffer(lister)
	trades, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)
	require.Empty(t, trades, "first snapshot is a baseline, not a burst of buys")
}

func TestDifferEmitsBuysOnIncrease(t *testing.T) {
	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{pos("A", "10", "0.5")})

	d := NewDiffer(lister)
	_, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)

	lister.set(wallet, []api.OpenPosition{pos("A", "15", "0.55"), pos("B", "3", "0.2")})
	trades, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	byAsset := map[string]*LeaderTrade{}
	for _, tr := range trades {
		byAsset[tr.Asset] = tr
	}
	require.Equal(t, types.SideBuy, byAsset["A"].Side)
	require.True(t, byAsset["A"].Size.Equal(dec("5")), "A delta got %s", byAsset["A"].Size)
	require.Equal(t, types.SideBuy, byAsset["B"].Side)
	require.True(t, byAsset["B"].Size.Equal(dec("3")), "B delta got %s", byAsset["B"].Size)
}

func TestDifferEmitsSellsOnDecreaseAndDisappearance(t *testing.T) {
	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{pos("A", "10", "0.5"), pos("B", "3", "0.2")})

	d := NewDiffer(lister)
	_, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)

	lister.set(wallet, []api.OpenPosition{pos("A", "4", "0.45")})
	trades, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	byAsset := map[string]*LeaderTrade{}
	for _, tr := range trades {
		byAsset[tr.Asset] = tr
	}
	require.Equal(t, types.SideSell, byAsset["A"].Side)
	require.True(t, byAsset["A"].Size.Equal(dec("6")))
	require.Equal(t, types.SideSell, byAsset["B"].Side)
	require.True(t, byAsset["B"].Size.Equal(dec("3")), "vanished position sells the full prior size")
}

func TestDifferFailedFetchKeepsBaseline(t *testing.T) {
	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{pos("A", "10", "0.5")})

	d := NewDiffer(lister)
	_, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)

	lister.failNext(wallet, errors.New("data-api down"))
	_, err = d.Poll(context.Background(), wallet)
	require.Error(t, err)

	// Next successful poll diffs against the original baseline.
	lister.set(wallet, []api.OpenPosition{pos("A", "12", "0.5")})
	trades, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.True(t, trades[0].Size.Equal(dec("2")))
}

func TestDifferDropsUnactionablePositions(t *testing.T) {
	expired := pos("C", "9", "0.8")
	expired.EndDate = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{
		pos("A", "10", "0.5"),
		pos("B", "0", "0.3"), // empty
		{Asset: "D", Size: num("5"), CurPrice: num("0")}, // unpriced
		expired,
	})

	d := NewDiffer(lister)
	_, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)

	baseline := d.baselines["0xabcd000000000000000000000000000000000001"]
	require.Len(t, baseline, 1)
	require.Contains(t, baseline, "A")
}

func TestDifferBaselinesArePerWallet(t *testing.T) {
	other := "0xAbCd000000000000000000000000000000000002"

	lister := newMockLister()
	lister.set(wallet, []api.OpenPosition{pos("A", "10", "0.5")})
	lister.set(other, []api.OpenPosition{pos("A", "1", "0.5")})

	d := NewDiffer(lister)
	_, err := d.Poll(context.Background(), wallet)
	require.NoError(t, err)
	_, err = d.Poll(context.Background(), other)
	require.NoError(t, err)

	lister.set(other, []api.OpenPosition{pos("A", "2", "0.5")})
	trades, err := d.Poll(context.Background(), other)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.True(t, trades[0].Size.Equal(dec("1")), "only the other wallet's delta is seen")
}

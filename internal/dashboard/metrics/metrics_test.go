package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/stretchr/testify/require"
)

func TestCatalogResult(t *testing.T) {
	require.Equal(t, "ok", catalogResult(nil))
	require.Equal(t, "unauthorized", catalogResult(&moviesdk.APIError{Kind: moviesdk.KindUnauthorized}))
	require.Equal(t, "malformed", catalogResult(&moviesdk.APIError{Kind: moviesdk.KindMalformed}))
	require.Equal(t, "unknown", catalogResult(errors.New("boom")))
}

func TestObserveCatalog(t *testing.T) {
	require.NotPanics(t, func() {
		ObserveCatalog(moviesdk.OpMe, 20*time.Millisecond, nil)
		ObserveCatalog(moviesdk.OpDashboard, time.Second, &moviesdk.APIError{Kind: moviesdk.KindNetwork})
	})
}

package screens_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.uber.org/mock/gomock"
)

func bundleEntry(t *testing.T, pattern, version string) domain.BundleScreen {
	t.Helper()
	template, err := domain.ParseValue([]byte(`{"kind": "stack"}`))
	require.NoError(t, err)
	return domain.BundleScreen{
		ScreenName: "Test",
		Pattern:    pattern,
		Version:    version,
		Template:   template,
	}
}

func TestSeedFromBundle(t *testing.T) {
	c, _, _ := newCache(t, 10, defaultTTL)

	badTemplate := bundleEntry(t, "list", "1.0.0")
	badTemplate.Template = domain.Array(domain.String("not an object"))

	bundle := map[string]domain.BundleScreen{
		"home":      bundleEntry(t, "dashboard", "2.1.0"),
		"orders":    bundleEntry(t, "list", "1.0.0"),
		"login":     bundleEntry(t, "login", "1.0.0"),   // zero TTL, skipped
		"broken":    bundleEntry(t, "mystery", "1.0.0"), // unknown pattern, skipped
		"noversion": bundleEntry(t, "list", "latest"),   // unparseable version, skipped
		"notobject": badTemplate,                        // template not an object, skipped
	}

	inserted := c.SeedFromBundle(context.Background(), bundle)

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, c.Count())
}

func TestSeedFromBundle_ServesWithoutNetwork(t *testing.T) {
	c, _, _ := newCache(t, 10, defaultTTL)

	inserted := c.SeedFromBundle(context.Background(), map[string]domain.BundleScreen{
		"home": bundleEntry(t, "dashboard", "2.1.0"),
	})
	require.Equal(t, 1, inserted)

	screen, err := c.LoadScreen(context.Background(), "home")
	require.NoError(t, err)
	assert.Equal(t, "home", screen.Key)
	assert.Equal(t, 2, screen.Version)
	assert.Equal(t, "2.1.0", screen.BundleVersion)
}

func TestCheckVersion(t *testing.T) {
	c, client, _ := newCache(t, 10, defaultTTL)

	inserted := c.SeedFromBundle(context.Background(), map[string]domain.BundleScreen{
		"home": bundleEntry(t, "dashboard", "2.1.0"),
	})
	require.Equal(t, 1, inserted)

	// A screen without a recorded bundle version is never probed.
	assert.False(t, c.CheckVersion(context.Background(), "unknown"))

	// Matching version: entry stays.
	client.EXPECT().
		RequestData(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.Request) ([]byte, ports.ResponseMeta, error) {
			assert.Equal(t, "https://api.example.com/v1/screen-config/version/home", req.URL)
			body, _ := json.Marshal(map[string]string{"version": "2.1.0"})
			return body, ports.ResponseMeta{StatusCode: http.StatusOK}, nil
		}).
		Times(1)
	assert.False(t, c.CheckVersion(context.Background(), "home"))
	assert.Equal(t, 1, c.Count())

	// Newer version: entry is invalidated.
	client.EXPECT().
		RequestData(gomock.Any(), gomock.Any()).
		Return([]byte(`{"version": "3.0.0"}`), ports.ResponseMeta{StatusCode: http.StatusOK}, nil).
		Times(1)
	assert.True(t, c.CheckVersion(context.Background(), "home"))
	assert.Equal(t, 0, c.Count())

	// The recorded bundle version is gone too, so no further probes happen.
	assert.False(t, c.CheckVersion(context.Background(), "home"))
}

func TestCheckVersion_SwallowsFailures(t *testing.T) {
	c, client, _ := newCache(t, 10, defaultTTL)

	inserted := c.SeedFromBundle(context.Background(), map[string]domain.BundleScreen{
		"home": bundleEntry(t, "dashboard", "2.1.0"),
	})
	require.Equal(t, 1, inserted)

	client.EXPECT().
		RequestData(gomock.Any(), gomock.Any()).
		Return(nil, ports.ResponseMeta{StatusCode: http.StatusBadGateway}, nil).
		Times(1)
	assert.False(t, c.CheckVersion(context.Background(), "home"))

	client.EXPECT().
		RequestData(gomock.Any(), gomock.Any()).
		Return([]byte(`not json`), ports.ResponseMeta{StatusCode: http.StatusOK}, nil).
		Times(1)
	assert.False(t, c.CheckVersion(context.Background(), "home"))

	// The entry survives both failed probes.
	assert.Equal(t, 1, c.Count())
}

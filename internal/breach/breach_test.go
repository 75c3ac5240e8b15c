package breach

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func split(plain string) (string, string) {
	sum := sha1.Sum([]byte(plain))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))
	return h[:5], h[5:]
}

func rangeServer(t *testing.T, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := strings.TrimPrefix(r.URL.Path, "/range/")
		assert.Len(t, prefix, 5)
		fmt.Fprint(w, body[prefix])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsCompromised(t *testing.T) {
	leakedPrefix, leakedSuffix := split("password")
	decoyPrefix, decoySuffix := split("Padded-Decoy-1")
	srv := rangeServer(t, map[string]string{
		leakedPrefix: "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n" + leakedSuffix + ":3861493\r\n",
		decoyPrefix:  decoySuffix + ":0\r\n",
	})
	c := New(srv.URL+"/range", time.Second)
	ctx := context.Background()

	leaked, err := c.IsCompromised(ctx, "password")
	require.NoError(t, err)
	assert.True(t, leaked)

	leaked, err = c.IsCompromised(ctx, "Padded-Decoy-1")
	require.NoError(t, err)
	assert.False(t, leaked)

	leaked, err = c.IsCompromised(ctx, "C0rrect-Horse-Battery")
	require.NoError(t, err)
	assert.False(t, leaked)
}

func TestIsCompromised_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).IsCompromised(context.Background(), "x")
	assert.ErrorContains(t, err, "503")
}

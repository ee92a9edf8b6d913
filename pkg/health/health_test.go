package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"slotbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	p.calls++
	return p.err
}

func serve(p Pinger, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewHandler(p, logger.Discard()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	p := &stubPinger{err: errors.New("down")}
	rec := serve(p, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Zero(t, p.calls)
}

func TestReady(t *testing.T) {
	rec := serve(&stubPinger{}, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","database":"ok"}`, rec.Body.String())

	rec = serve(&stubPinger{err: errors.New("server selection timeout")}, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","database":"error"}`, rec.Body.String())
}

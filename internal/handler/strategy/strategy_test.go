package strategy

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kalshitrader/internal/model"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
)

type fakeService struct {
	created model.StrategyCreateReq
	updated model.StrategyUpdateReq
	updID   int64
	deleted int64
}

func (f *fakeService) StrategyList(context.Context) ([]model.StrategyRes, error) {
	return []model.StrategyRes{{ID: 1, Name: "a", HasClass: true}}, nil
}

func (f *fakeService) StrategyCreate(_ context.Context, req model.StrategyCreateReq) (int64, error) {
	f.created = req
	return 7, nil
}

func (f *fakeService) StrategyUpdate(_ context.Context, id int64, req model.StrategyUpdateReq) error {
	if id == 404 {
		return errors.WithCode(ecode.NotFoundErr, "Strategy not found")
	}
	f.updID, f.updated = id, req
	return nil
}

func (f *fakeService) StrategyDelete(_ context.Context, id int64) error {
	f.deleted = id
	return nil
}

func (f *fakeService) SeedDefault(context.Context) error { return nil }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.GET("/api/strategies", h.StrategyList())
	r.POST("/api/strategies", h.StrategyCreate())
	r.PATCH("/api/strategies/:id", h.StrategyUpdate())
	r.DELETE("/api/strategies/:id", h.StrategyDelete())
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestStrategyCreate(t *testing.T) {
	svc := &fakeService{}
	w, env := do(t, newRouter(svc), http.MethodPost, "/api/strategies", `{"name":"b","config":{"position_pct":0.1}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":7}`, string(env.Data))
	assert.Equal(t, "b", svc.created.Name)
	assert.Nil(t, svc.created.Enabled)
	assert.Equal(t, 0.1, svc.created.Config["position_pct"])
}

func TestStrategyCreateRequiresName(t *testing.T) {
	w, env := do(t, newRouter(&fakeService{}), http.MethodPost, "/api/strategies", `{"description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ecode.ValidateErr, env.Code)
}

func TestStrategyUpdate(t *testing.T) {
	svc := &fakeService{}
	w, env := do(t, newRouter(svc), http.MethodPatch, "/api/strategies/3", `{"enabled":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, string(env.Data))
	assert.Equal(t, int64(3), svc.updID)
	require.NotNil(t, svc.updated.Enabled)
	assert.False(t, *svc.updated.Enabled)
	assert.Nil(t, svc.updated.Description)

	w, env = do(t, newRouter(svc), http.MethodPatch, "/api/strategies/404", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Strategy not found", env.Message)

	w, _ = do(t, newRouter(svc), http.MethodPatch, "/api/strategies/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStrategyListAndDelete(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w, env := do(t, r, http.MethodGet, "/api/strategies", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var list []model.StrategyRes
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].HasClass)

	w, _ = do(t, r, http.MethodDelete, "/api/strategies/5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.deleted)
}

package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/api/rest"
	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminGet(r *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminPost(r *gin.Engine, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---- AdminAuth ----

func TestAdminAuth_EmptyKeyDisablesEndpoints(t *testing.T) {
	r := gin.New()
	r.Use(rest.AdminAuth(""))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := adminGet(r, "/x", "anything")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminAuth_WrongKey(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, adminGet(a.r, "/api/admin/scheduler", "").Code)
	assert.Equal(t, http.StatusUnauthorized, adminGet(a.r, "/api/admin/scheduler", "wrong").Code)
}

func TestAdminAuth_PlayerTokenIsNotEnough(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodGet, "/api/admin/scheduler", a.home.Guildmaster.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ---- TickEffects ----

func TestAdminTickEffects_DecaysOncePerDay(t *testing.T) {
	a := newTestAPI(t)
	e := testutil.SeedEffect(t, a.db, a.home.Member.ID, model.Effect{Name: "Focus", Duration: 2})

	w := adminPost(a.r, "/api/admin/effects/tick?day=2026-03-01", testAdminKey, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode(t, w)
	assert.Equal(t, "2026-03-01", report["day"])
	assert.EqualValues(t, 2, report["ticked"], "both household members")

	var stored model.Effect
	require.NoError(t, a.db.First(&stored, e.ID).Error)
	assert.Equal(t, 1, stored.Duration)

	w = adminPost(a.r, "/api/admin/effects/tick?day=2026-03-01", testAdminKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["ticked"])
	require.NoError(t, a.db.First(&stored, e.ID).Error)
	assert.Equal(t, 1, stored.Duration, "same day must not decay twice")

	w = adminPost(a.r, "/api/admin/effects/tick?day=2026-03-02", testAdminKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, a.db.First(&stored, e.ID).Error)
	assert.Equal(t, 0, stored.Duration)
}

func TestAdminTickEffects_Today(t *testing.T) {
	a := newTestAPI(t)
	w := adminPost(a.r, "/api/admin/effects/tick", testAdminKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["day"])
}

func TestAdminTickEffects_BadDay(t *testing.T) {
	a := newTestAPI(t)
	w := adminPost(a.r, "/api/admin/effects/tick?day=03/01/2026", testAdminKey, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- Scheduler ----

func TestAdminListSchedulerTasks(t *testing.T) {
	a := newTestAPI(t)
	a.sched.AddTicker("effect_tick", time.Hour, func(context.Context) error { return nil })
	a.sched.AddTicker("ranking_refresh", time.Hour, func(context.Context) error { return nil })

	w := adminGet(a.r, "/api/admin/scheduler", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode(t, w)["tasks"].([]interface{})
	require.Len(t, tasks, 2)
	assert.Equal(t, "effect_tick", tasks[0].(map[string]interface{})["name"])
	assert.Equal(t, "ranking_refresh", tasks[1].(map[string]interface{})["name"])
}

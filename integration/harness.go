// Package integration runs the HTTP API end to end against a seeded
// household over a real listener.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/hearthguild/server/api/rest"
	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/catalog"
	"github.com/hearthguild/server/config"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/guild"
	"github.com/hearthguild/server/game/quest"
	"github.com/hearthguild/server/game/ranking"
	"github.com/hearthguild/server/game/shop"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/plugin/hook"
	"github.com/hearthguild/server/scheduler"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminKey = "integration-admin-key"

// TestServer wraps a real HTTP server with all services wired together.
type TestServer struct {
	DB      *gorm.DB
	Hooks   *hook.Center
	Server  *httptest.Server
	URL     string // http://127.0.0.1:<port>
	Sec     config.SecurityConfig
	GuildID int64
}

// NewTestServer creates a fully wired server seeded from the catalog file.
// It mirrors the dependency wiring of the serve command.
func NewTestServer(t *testing.T, catalogPath string) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	cat, err := catalog.Load(catalogPath)
	require.NoError(t, err)
	seeded, err := catalog.Seed(context.Background(), db, cat)
	require.NoError(t, err)

	sec := config.SecurityConfig{
		JWTSecret:      "integration-test-secret",
		JWTTTL:         time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}

	auditSvc := audit.New(db, logger)
	hooks := hook.NewCenter()
	sink := hook.NewSink(auditSvc, hooks, logger)

	guilds := guild.NewService(db, c, time.Minute, logger)
	board := ranking.NewBoard(db, c, 100, logger)
	effects := effect.NewService(db, sink, 4, logger)
	quests := quest.NewService(db, guilds, sink, board, 3, logger)
	shopSvc := shop.NewService(db, sink, logger)
	sched := scheduler.New(logger)

	r := apirest.NewRouter(apirest.Deps{
		DB:        db,
		Quests:    quests,
		Effects:   effects,
		Guilds:    guilds,
		Shop:      shopSvc,
		Ranking:   board,
		Activity:  auditSvc,
		Scheduler: sched,
		Logger:    logger,
	}, config.ServerConfig{AdminKey: adminKey}, sec)

	server := httptest.NewServer(r)
	ts := &TestServer{
		DB:      db,
		Hooks:   hooks,
		Server:  server,
		URL:     server.URL,
		Sec:     sec,
		GuildID: seeded.GuildID,
	}
	t.Cleanup(func() {
		server.Close()
		sched.Stop()
		auditSvc.Stop(context.Background())
	})
	return ts
}

// --- HTTP helpers ---

// PostJSON sends a POST request with JSON body and optional Bearer token.
// A nil body sends no content.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// AdminPost sends a POST request carrying the admin key.
func (ts *TestServer) AdminPost(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", adminKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// Status drains the body and returns the status code.
func Status(resp *http.Response) int {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode
}

// --- Household helpers ---

// Member returns the seeded character with the given name and a token for it.
func (ts *TestServer) Member(t *testing.T, name string) (model.Character, string) {
	t.Helper()
	var ch model.Character
	require.NoError(t, ts.DB.Where("guild_id = ? AND name = ?", ts.GuildID, name).First(&ch).Error)
	tok, err := mw.GenerateToken(ch.ID, ts.Sec.JWTSecret, ts.Sec.JWTTTL)
	require.NoError(t, err)
	return ch, tok
}

// QuestID returns the ID of the seeded quest with the given title.
func (ts *TestServer) QuestID(t *testing.T, title string) int64 {
	t.Helper()
	var q model.Quest
	require.NoError(t, ts.DB.Where("guild_id = ? AND title = ?", ts.GuildID, title).First(&q).Error)
	return q.ID
}

// ItemID returns the ID of the seeded shop item with the given name.
func (ts *TestServer) ItemID(t *testing.T, name string) int64 {
	t.Helper()
	var it model.ShopItem
	require.NoError(t, ts.DB.Where("guild_id = ? AND name = ?", ts.GuildID, name).First(&it).Error)
	return it.ID
}

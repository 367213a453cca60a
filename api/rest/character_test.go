package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe_ShowsProgressAndModifiers(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.db.Model(&model.Character{}).Where("id = ?", a.home.Member.ID).Update("exp", 50).Error)
	testutil.SeedEffect(t, a.db, a.home.Member.ID, model.Effect{
		Name: "Grounded", Type: model.EffectCurse, Duration: 1,
		Restrictions: restrictions(model.Restrictions{ShopBlocked: true}),
	})
	q := testutil.SeedQuest(t, a.db, a.home.Guild.ID, model.QuestDaily, 1, model.Reward{Exp: 10})
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, questPath(q.ID, "accept"), a.home.Member.ID, nil).Code)

	w := a.do(t, http.MethodGet, "/api/me", a.home.Member.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	char := body["character"].(map[string]interface{})
	assert.Equal(t, a.home.Member.Name, char["name"])
	assert.Len(t, char["active_effects"].([]interface{}), 1)

	progress := body["progress"].(map[string]interface{})
	assert.EqualValues(t, 1, progress["level"])
	assert.EqualValues(t, 50, progress["exp"])
	assert.EqualValues(t, 200, progress["exp_needed"])
	assert.EqualValues(t, 25, progress["percent"])

	assert.Equal(t, true, body["shop_blocked"])
	assert.Equal(t, true, body["modifiers"].(map[string]interface{})["shop_blocked"])
	assert.Len(t, body["quests"].([]interface{}), 1)
}

func TestMeActivity_RecordsQuestEvents(t *testing.T) {
	a := newTestAPI(t)
	q := testutil.SeedQuest(t, a.db, a.home.Guild.ID, model.QuestDaily, 1, model.Reward{Exp: 10})
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, questPath(q.ID, "accept"), a.home.Member.ID, nil).Code)

	// Activity is written in batches by a background worker.
	tok := a.token(t, a.home.Member.ID)
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/me/activity", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		a.r.ServeHTTP(w, req)
		var body struct {
			Activity []model.ActivityLog `json:"activity"`
		}
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil {
			return false
		}
		return len(body.Activity) > 0
	}, 5*time.Second, 100*time.Millisecond)
}

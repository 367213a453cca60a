package rest_test

import (
	"net/http"
	"testing"

	"github.com/hearthguild/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanking_TopGold(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.db.Model(&model.Character{}).Where("id = ?", a.home.Member.ID).
		Update("total_gold_earned", 30).Error)
	require.NoError(t, a.db.Model(&model.Character{}).Where("id = ?", a.home.Guildmaster.ID).
		Update("total_gold_earned", 10).Error)

	w := adminPost(a.r, "/api/admin/ranking/refresh", testAdminKey, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["refreshed"])

	w = a.do(t, http.MethodGet, "/api/ranking/gold?limit=1", a.home.Guildmaster.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["ranking"].([]interface{})
	require.Len(t, entries, 1)
	top := entries[0].(map[string]interface{})
	assert.EqualValues(t, a.home.Member.ID, top["char_id"])
	assert.EqualValues(t, 30, top["total_gold_earned"])
	assert.EqualValues(t, 1, top["rank"])
}

func TestRanking_ApprovalUpdatesBoard(t *testing.T) {
	a := newTestAPI(t)
	gm, kid := a.home.Guildmaster.ID, a.home.Member.ID
	q := seedApprovable(t, a, model.Reward{Gold: 7})

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, questPath(q, "approve"), gm, nil).Code)

	w := a.do(t, http.MethodGet, "/api/ranking/gold", kid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["ranking"].([]interface{})
	require.NotEmpty(t, entries)
	assert.EqualValues(t, kid, entries[0].(map[string]interface{})["char_id"])
	assert.EqualValues(t, 7, entries[0].(map[string]interface{})["total_gold_earned"])
}

// seedApprovable walks a fresh quest to COMPLETED for the household member.
func seedApprovable(t *testing.T, a *testAPI, reward model.Reward) int64 {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/quests", a.home.Guildmaster.ID, map[string]interface{}{
		"title": "Fold laundry", "type": model.QuestDaily, "difficulty": 1, "base_reward": reward,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decode(t, w)["quest"].(map[string]interface{})["id"].(float64))
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, questPath(id, "accept"), a.home.Member.ID, nil).Code)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, questPath(id, "complete"), a.home.Member.ID, nil).Code)
	return id
}

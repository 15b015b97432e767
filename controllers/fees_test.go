package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postFees(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/calculate-fees", CalculateFees)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate-fees", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCalculateFeesPoolSplit(t *testing.T) {
	w := postFees(t, `{"totalCollected":10000,"hostFeeBps":500,"prizePoolBps":3000,"prizeMode":"pool_split"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp calculateFeesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2000), resp.Platform) // 20%
	assert.Equal(t, uint64(500), resp.Host)      // 5%
	assert.Equal(t, uint64(3000), resp.Prizes)   // 30%
	assert.Equal(t, uint64(4500), resp.Charity)  // remainder
}

func TestCalculateFeesAssetBased(t *testing.T) {
	w := postFees(t, `{"totalCollected":10000,"hostFeeBps":100,"prizePoolBps":2000,"prizeMode":"asset_based"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp calculateFeesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(0), resp.Prizes)
	assert.Equal(t, uint64(10000-2000-100), resp.Charity)
}

func TestCalculateFeesCaps(t *testing.T) {
	w := postFees(t, `{"totalCollected":10000,"hostFeeBps":600,"prizePoolBps":0,"prizeMode":"pool_split"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFees(t, `{"totalCollected":10000,"hostFeeBps":500,"prizePoolBps":3600,"prizeMode":"pool_split"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFees(t, `{"totalCollected":10000,"hostFeeBps":0,"prizePoolBps":0,"prizeMode":"raffle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

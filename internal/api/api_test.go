package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"hunter-market/internal/config"
	"hunter-market/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.EverytimePost{}, &models.Hunt{}))

	cfg := &config.Config{JWTSecret: "test-secret", Environment: "test"}
	r := gin.New()
	SetupRoutes(r.Group("/api/v1"), db, cfg)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func seedEverytimePosts(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&models.EverytimePost{
			Title:     fmt.Sprintf("판매글 %d", i),
			Content:   fmt.Sprintf("내용 %d", i),
			Author:    "익명",
			URL:       fmt.Sprintf("https://everytime.kr/420883/v/%d", i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}).Error)
	}
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/users/register",
		`{"username":"hong","nickname":"홍길동","email":"hong@hanyang.ac.kr","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestListEverytimePosts(t *testing.T) {
	r, db := newTestRouter(t)
	seedEverytimePosts(t, db, 3)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/everytime?limit=2", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["totalPosts"])
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Len(t, body["posts"], 2)
}

func TestSearchEverytimeRequiresKeyword(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/everytime/search", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEverytimePostByURL(t *testing.T) {
	r, db := newTestRouter(t)
	postURL := "https://everytime.kr/420883/v/42"
	require.NoError(t, db.Create(&models.EverytimePost{
		Title: "판매글", Author: "익명", URL: postURL, CreatedAt: time.Now(),
	}).Error)

	// percent-encoded, the way the frontend sends it
	w, body := doJSON(t, r, http.MethodGet,
		"/api/v1/everytime/url/"+url.QueryEscape(postURL), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, postURL, body["url"])

	// raw, slashes and all
	w, body = doJSON(t, r, http.MethodGet, "/api/v1/everytime/url/"+postURL, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, postURL, body["url"])

	// unknown URLs still answer from the handler, not the router
	w, body = doJSON(t, r, http.MethodGet,
		"/api/v1/everytime/url/"+url.QueryEscape("https://everytime.kr/420883/v/999"), "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Everytime post not found", body["message"])
}

func TestDateRangeRequiresBothBounds(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/everytime/date-range?startDate=2025-03-01", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunMigrationEndpoint(t *testing.T) {
	r, db := newTestRouter(t)
	seedEverytimePosts(t, db, 3)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/migration/run", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["totalSource"])
	assert.Equal(t, float64(3), stats["migratedCount"])
	assert.Equal(t, "100.00%", stats["percentComplete"])

	results := body["results"].(map[string]interface{})
	assert.Equal(t, float64(3), results["success"])
	assert.Equal(t, float64(0), results["failed"])
}

func TestRunMigrationRejectsBadLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/migration/run?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMigrationStatusEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/migration/status", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0%", body["percentComplete"])
}

func TestRegisterLoginMe(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/users/login",
		`{"email":"hong@hanyang.ac.kr","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/users/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "hong@hanyang.ac.kr", user["email"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users/register",
		`{"username":"other","nickname":"다른사람","email":"hong@hanyang.ac.kr","password":"secret2"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users/login",
		`{"email":"hong@hanyang.ac.kr","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHuntLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/hunt",
		`{"title":"자전거","content":"팝니다","category":"모빌리티","condition":"good","price":50000}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := doJSON(t, r, http.MethodPost, "/api/v1/hunt",
		`{"title":"자전거","content":"팝니다","category":"모빌리티","condition":"good","price":50000}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	item := body["item"].(map[string]interface{})
	id := int(item["id"].(float64))
	assert.Equal(t, float64(1), item["post_number"])

	// reading bumps the view counter
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/hunt/%d", id), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["views"])

	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/hunt/%d", id),
		`{"price":45000,"status":"completed"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/hunt/%d", id), "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/hunt/%d", id), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateHuntRejectsExistingSourceURL(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r)

	url := "https://everytime.kr/420883/v/777"
	require.NoError(t, db.Create(&models.Hunt{
		PostNumber: 10, Title: "기존 매물", Author: "익명",
		Status: models.StatusActive, IsFromEverytime: true, EverytimeURL: &url,
	}).Error)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/hunt",
		`{"title":"중복","content":"같은 글","category":"기타","condition":"soso","everytime_url":"https://everytime.kr/420883/v/777"}`, token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSearchHuntsFilters(t *testing.T) {
	r, db := newTestRouter(t)
	require.NoError(t, db.Create(&models.Hunt{
		PostNumber: 1, Title: "노트북 팝니다", Author: "익명",
		Category: models.CategoryElectronics, Status: models.StatusActive, Price: 300000,
	}).Error)
	require.NoError(t, db.Create(&models.Hunt{
		PostNumber: 2, Title: "자전거 팝니다", Author: "익명",
		Category: models.CategoryMobility, Status: models.StatusActive, Price: 50000,
	}).Error)

	w, body := doJSON(t, r, http.MethodGet, "/api/v1/hunt/search?category="+
		"%EC%A0%84%EC%9E%90%EC%A0%9C%ED%92%88", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["totalItems"])
}

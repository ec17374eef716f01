package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkcraft-ai/backend/internal/config"
	"github.com/linkcraft-ai/backend/internal/db"
	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/security"
	"github.com/linkcraft-ai/backend/internal/settings"
)

func newAdminEnv(t *testing.T) (*gorm.DB, *gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "admin.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	hashed, errHash := security.HashPassword("s3cret-pass")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if errCreate := conn.Create(&models.Admin{Username: "root", Password: hashed, Active: true}).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}

	cipher, errCipher := security.NewCipher("test-passphrase")
	if errCipher != nil {
		t.Fatalf("new cipher: %v", errCipher)
	}
	handler := NewHandler(conn, config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}, cipher)
	engine := gin.New()
	handler.RegisterRoutes(engine)

	token := loginAs(t, engine, "root", "s3cret-pass")
	return conn, engine, token
}

func loginAs(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()
	recorder, body := doRequest(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": username,
		"password": password,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("login status = %d (%s)", recorder.Code, recorder.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}
	return token
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal request: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	parsed := map[string]any{}
	if recorder.Body.Len() > 0 {
		if errUnmarshal := json.Unmarshal(recorder.Body.Bytes(), &parsed); errUnmarshal != nil {
			t.Fatalf("decode response %q: %v", recorder.Body.String(), errUnmarshal)
		}
	}
	return recorder, parsed
}

func TestLogin_WrongPassword(t *testing.T) {
	_, engine, _ := newAdminEnv(t)
	recorder, _ := doRequest(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"username": "root",
		"password": "wrong",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	_, engine, _ := newAdminEnv(t)
	recorder, _ := doRequest(t, engine, http.MethodGet, "/v0/admin/users", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestAuthMiddleware_RejectsGarbageToken(t *testing.T) {
	_, engine, _ := newAdminEnv(t)
	recorder, _ := doRequest(t, engine, http.MethodGet, "/v0/admin/users", "not-a-token", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestCreateUser_IssuesCredential(t *testing.T) {
	conn, engine, token := newAdminEnv(t)

	recorder, body := doRequest(t, engine, http.MethodPost, "/v0/admin/users", token, gin.H{
		"email": "Alice@Example.com",
		"name":  "Alice",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", recorder.Code, recorder.Body.String())
	}
	apiKey, _ := body["apiKey"].(string)
	if len(apiKey) < 10 || apiKey[:3] != "lc-" {
		t.Fatalf("apiKey = %q, want lc- prefixed credential", apiKey)
	}
	if body["email"] != "alice@example.com" {
		t.Fatalf("email = %v, want lowercased", body["email"])
	}

	var stored models.User
	if errFind := conn.Where("email = ?", "alice@example.com").First(&stored).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if !stored.APIKeyActive {
		t.Fatalf("new credential should be active")
	}

	// Duplicate email is rejected.
	recorder, _ = doRequest(t, engine, http.MethodPost, "/v0/admin/users", token, gin.H{"email": "alice@example.com"})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", recorder.Code)
	}
}

func TestRotateAPIKey_ReplacesCredential(t *testing.T) {
	conn, engine, token := newAdminEnv(t)
	user := models.User{Email: "rotate@example.com", APIKey: "lc-old", APIKeyActive: false}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	path := fmt.Sprintf("/v0/admin/users/%d/api-key/rotate", user.ID)
	recorder, body := doRequest(t, engine, http.MethodPost, path, token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", recorder.Code, recorder.Body.String())
	}
	newKey, _ := body["apiKey"].(string)
	if newKey == "" || newKey == "lc-old" {
		t.Fatalf("apiKey = %q, want fresh credential", newKey)
	}

	var stored models.User
	if errFind := conn.First(&stored, user.ID).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if stored.APIKey != newKey || !stored.APIKeyActive {
		t.Fatalf("rotation should store the new key and re-activate it")
	}
}

func TestUpdateSetting_ValidatesAndRefreshesSnapshot(t *testing.T) {
	_, engine, token := newAdminEnv(t)

	recorder, _ := doRequest(t, engine, http.MethodPut, "/v0/admin/settings/MAINTENANCE_MODE", token, gin.H{
		"value": "definitely-not-a-bool-or-known-literal",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid value status = %d, want 400", recorder.Code)
	}

	recorder, _ = doRequest(t, engine, http.MethodPut, "/v0/admin/settings/MAINTENANCE_MODE", token, gin.H{
		"value": true,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", recorder.Code, recorder.Body.String())
	}
	if !settings.LoadSystemConfig().MaintenanceMode {
		t.Fatalf("snapshot not refreshed after settings mutation")
	}

	// Restore so other state checks in this process see defaults.
	recorder, _ = doRequest(t, engine, http.MethodPut, "/v0/admin/settings/MAINTENANCE_MODE", token, gin.H{
		"value": false,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("restore status = %d", recorder.Code)
	}
}

func TestUpdateSetting_EncryptsProviderKey(t *testing.T) {
	conn, engine, token := newAdminEnv(t)

	recorder, _ := doRequest(t, engine, http.MethodPut, "/v0/admin/settings/OPENAI_API_KEY", token, gin.H{
		"value": "sk-plaintext",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var row models.Setting
	if errFind := conn.Where("key = ?", settings.OpenAIAPIKeyKey).First(&row).Error; errFind != nil {
		t.Fatalf("load setting: %v", errFind)
	}
	var stored string
	if errUnmarshal := json.Unmarshal(row.Value, &stored); errUnmarshal != nil {
		t.Fatalf("decode stored value: %v", errUnmarshal)
	}
	if stored == "sk-plaintext" || stored == "" {
		t.Fatalf("provider key stored without encryption")
	}

	cipher, _ := security.NewCipher("test-passphrase")
	plaintext, errDecrypt := cipher.Decrypt(stored)
	if errDecrypt != nil {
		t.Fatalf("decrypt stored key: %v", errDecrypt)
	}
	if plaintext != "sk-plaintext" {
		t.Fatalf("decrypted = %q, want sk-plaintext", plaintext)
	}
}

func TestListUsageLogs_FiltersByAction(t *testing.T) {
	conn, engine, token := newAdminEnv(t)
	for i := 0; i < 3; i++ {
		entry := models.UsageLog{UserID: 1, Action: "POST_CREATED", Details: []byte("{}")}
		if errCreate := conn.Create(&entry).Error; errCreate != nil {
			t.Fatalf("create log: %v", errCreate)
		}
	}
	entry := models.UsageLog{UserID: 2, Action: "TEXT_REWRITTEN", Details: []byte("{}")}
	if errCreate := conn.Create(&entry).Error; errCreate != nil {
		t.Fatalf("create log: %v", errCreate)
	}

	recorder, body := doRequest(t, engine, http.MethodGet, "/v0/admin/usage-logs?action=POST_CREATED", token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", recorder.Code, recorder.Body.String())
	}
	if body["total"].(float64) != 3 {
		t.Fatalf("total = %v, want 3", body["total"])
	}

	recorder, _ = doRequest(t, engine, http.MethodGet, "/v0/admin/usage-logs?action=NOT_AN_ACTION", token, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid action status = %d, want 400", recorder.Code)
	}
}

func TestResetUsage_ZeroesCounters(t *testing.T) {
	conn, engine, token := newAdminEnv(t)
	user := models.User{Email: "reset@example.com", APIKey: "lc-reset", APIKeyActive: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	usage := models.Usage{UserID: user.ID, PostsCreated: 4, TotalUsage: 4, LastResetAt: time.Now().UTC()}
	if errCreate := conn.Create(&usage).Error; errCreate != nil {
		t.Fatalf("create usage: %v", errCreate)
	}

	path := fmt.Sprintf("/v0/admin/users/%d/usage/reset", user.ID)
	recorder, body := doRequest(t, engine, http.MethodPost, path, token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", recorder.Code, recorder.Body.String())
	}
	counters := body["usage"].(map[string]any)
	if counters["totalUsage"].(float64) != 0 || counters["postsCreated"].(float64) != 0 {
		t.Fatalf("counters not zeroed: %v", counters)
	}
}

package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/database"
	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/router"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminPassword    = "adminpassword"
	customerPassword = "customerpassword"
)

type testEnv struct {
	router        *gin.Engine
	db            *gorm.DB
	tokens        *utils.TokenManager
	revoked       *utils.MemoryBlacklist
	adminToken    string
	customerToken string
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	ctx := context.Background()
	users := services.NewUserService(db)
	users.Cost = bcrypt.MinCost
	admin, _, err := users.EnsureAdmin(ctx, "admin", adminPassword)
	require.NoError(t, err)
	actor := services.Actor{UserID: admin.ID, Username: admin.Username, Role: admin.Role}
	_, err = users.Create(ctx, actor, "guest", customerPassword, models.RoleCustomer)
	require.NoError(t, err)

	env := &testEnv{
		db:      db,
		tokens:  utils.NewTokenManager("controller-test-secret", time.Hour),
		revoked: utils.NewMemoryBlacklist(),
	}
	env.router = router.SetupRouter(router.Deps{
		DB:          db,
		Tokens:      env.tokens,
		Revoked:     env.revoked,
		Hub:         kds.NewHub([]string{"http://localhost:5173"}),
		CORSOrigins: []string{"http://localhost:5173"},
	})

	env.adminToken, _, err = env.tokens.GenerateToken("admin", string(models.RoleAdmin))
	require.NoError(t, err)
	env.customerToken, _, err = env.tokens.GenerateToken("guest", string(models.RoleCustomer))
	require.NoError(t, err)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, path, bytes.NewBuffer(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeData unwraps the response envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}

func (e *testEnv) createMenuItem(t *testing.T, name, price string) models.MenuItem {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/menu", e.adminToken, map[string]interface{}{
		"name":     name,
		"price":    price,
		"category": "Mains",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.MenuItem
	decodeData(t, w, &item)
	return item
}

func (e *testEnv) createReservation(t *testing.T, date string) models.Reservation {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/reservations", "", map[string]interface{}{
		"customer_name":    "Nadia",
		"customer_email":   "nadia@example.com",
		"customer_phone":   "0611223344",
		"reservation_date": date,
		"reservation_time": "19:45",
		"number_of_guests": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r models.Reservation
	decodeData(t, w, &r)
	return r
}

func money(m models.Money) string {
	return m.StringFixed(2)
}

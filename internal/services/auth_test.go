package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/store"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthConfig() {
	viper.Set("argon2.salt_length", 16)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 64*1024)
	viper.Set("argon2.threads", 4)
	viper.Set("argon2.key_length", 32)
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 24)
}

func TestAuthService_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupAuthConfig()

	mem := store.NewMemoryStore()
	accounts := loyalty.NewAccountService(mem, nil, 0)
	service := NewAuthService(db, nil, accounts)

	t.Run("successful registration opens a loyalty account", func(t *testing.T) {
		req := RegisterRequest{
			Email:       "test@example.com",
			Password:    "password123",
			FirstName:   "John",
			LastName:    "Doe",
			PhoneNumber: "+14155550123",
		}

		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), req.Email, sqlmock.AnyArg(), req.FirstName, req.LastName, req.PhoneNumber).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body, _ := json.Marshal(req)
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, req.Email, response.User.Email)

		acct, err := mem.GetAccount(r.Context(), response.User.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), acct.PointsBalance)
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer([]byte("invalid")))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		body, _ := json.Marshal(RegisterRequest{Email: "not-an-email", Password: "x"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setupAuthConfig()

	accounts := loyalty.NewAccountService(store.NewMemoryStore(), nil, 0)
	service := NewAuthService(db, nil, accounts)

	userColumns := []string{"id", "email", "first_name", "last_name", "phone_number", "password"}

	t.Run("successful login", func(t *testing.T) {
		hashedPassword, err := hashPassword("password123")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, email, first_name, last_name, phone_number, password").
			WithArgs("test@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("user-1", "test@example.com", "John", "Doe", "+14155550123", hashedPassword))
		mock.ExpectExec("UPDATE users SET last_login").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "user-1", response.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		hashedPassword, err := hashPassword("password123")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, email, first_name, last_name, phone_number, password").
			WithArgs("test@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("user-1", "test@example.com", "John", "Doe", "+14155550123", hashedPassword))

		body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "wrong-password"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, first_name, last_name, phone_number, password").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		body, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPasswordHashing(t *testing.T) {
	setupAuthConfig()

	hash, err := hashPassword("password123")
	require.NoError(t, err)
	assert.NotContains(t, hash, "password123")

	assert.True(t, verifyPassword("password123", hash))
	assert.False(t, verifyPassword("other", hash))
	assert.False(t, verifyPassword("password123", "malformed"))
}

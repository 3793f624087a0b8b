package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"account-ledger/internal/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	server *Server
}

func (s *RouterTestSuite) SetupTest() {
	cfg := &config.Config{
		Store:             config.StoreMemory,
		GuardTimeout:      time.Second,
		MinOpeningBalance: decimal.NewFromInt(2000),
	}
	srv, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.server = srv
}

func (s *RouterTestSuite) do(method, path string, body interface{}) (int, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.server.GetRouter().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *RouterTestSuite) openAccount(balance string) string {
	code, env := s.do(http.MethodPost, "/accounts", map[string]string{"initial_balance": balance})
	s.Require().Equal(http.StatusCreated, code)

	var account map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &account))
	return account["account_id"]
}

func (s *RouterTestSuite) errorCode(env envelope) string {
	s.Require().NotNil(env.Error)
	return env.Error.Code
}

func (s *RouterTestSuite) TestHealth() {
	code, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)
}

func (s *RouterTestSuite) TestTransferFlow() {
	a := s.openAccount("5000")
	b := s.openAccount("2000")

	code, env := s.do(http.MethodPost, "/transfers", map[string]string{
		"from_account_id": a,
		"to_account_id":   b,
		"amount":          "1500",
	})
	s.Require().Equal(http.StatusCreated, code)

	var transfer map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &transfer))
	s.Equal("3500.00", transfer["from_balance"])
	s.Equal("3500.00", transfer["to_balance"])
	s.NotEmpty(transfer["correlation_id"])

	code, env = s.do(http.MethodPost, "/accounts/"+a+"/debit", map[string]string{"amount": "4000"})
	s.Equal(http.StatusUnprocessableEntity, code)
	s.Equal("insufficient_funds", s.errorCode(env))

	code, env = s.do(http.MethodPost, "/accounts/"+b+"/credit", map[string]string{"amount": "500"})
	s.Require().Equal(http.StatusOK, code)
	var balance map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &balance))
	s.Equal("4000.00", balance["balance"])

	code, env = s.do(http.MethodGet, "/accounts/"+a+"/entries", nil)
	s.Require().Equal(http.StatusOK, code)
	var entries []map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &entries))
	s.Require().Len(entries, 1)
	s.Equal("Debit", entries[0]["kind"])
	s.Equal("1500.00", entries[0]["amount"])
	s.Equal(transfer["correlation_id"], entries[0]["correlation_id"])

	code, env = s.do(http.MethodGet, "/accounts/"+a+"/balance", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &balance))
	s.Equal("3500.00", balance["balance"])
}

func (s *RouterTestSuite) TestValidationErrors() {
	a := s.openAccount("5000")

	code, env := s.do(http.MethodPost, "/transfers", map[string]string{
		"from_account_id": a,
		"to_account_id":   a,
		"amount":          "100",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("same_account_transfer", s.errorCode(env))

	code, env = s.do(http.MethodPost, "/accounts/"+a+"/credit", map[string]string{"amount": "0"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_amount", s.errorCode(env))

	code, env = s.do(http.MethodPost, "/accounts/"+a+"/credit", map[string]string{"amount": "ten"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_amount", s.errorCode(env))

	code, env = s.do(http.MethodPost, "/accounts/"+a+"/credit", map[string]string{"value": "1"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_input", s.errorCode(env))

	code, env = s.do(http.MethodGet, "/accounts/12345/balance", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_account_id", s.errorCode(env))

	code, env = s.do(http.MethodGet, "/accounts/9999999999", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("account_not_found", s.errorCode(env))

	code, env = s.do(http.MethodPost, "/accounts", map[string]string{"initial_balance": "100"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_amount", s.errorCode(env))
}

func (s *RouterTestSuite) TestStatusChange() {
	a := s.openAccount("5000")

	code, env := s.do(http.MethodPut, "/accounts/"+a+"/status", map[string]string{"status": "Inactive"})
	s.Require().Equal(http.StatusOK, code)
	var account map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &account))
	s.Equal("Inactive", account["status"])

	code, env = s.do(http.MethodPost, "/accounts/"+a+"/debit", map[string]string{"amount": "1"})
	s.Equal(http.StatusUnprocessableEntity, code)
	s.Equal("inactive_account", s.errorCode(env))

	code, env = s.do(http.MethodPut, "/accounts/"+a+"/status", map[string]string{"status": "Closed"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("invalid_input", s.errorCode(env))
}

func (s *RouterTestSuite) TestListAccounts() {
	s.openAccount("2000")
	s.openAccount("3000")

	code, env := s.do(http.MethodGet, "/accounts", nil)
	s.Require().Equal(http.StatusOK, code)
	var accounts []map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &accounts))
	s.Len(accounts, 2)
}

func (s *RouterTestSuite) TestMetricsEndpoint() {
	a := s.openAccount("5000")
	s.do(http.MethodPost, "/accounts/"+a+"/credit", map[string]string{"amount": "1"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.server.GetRouter().ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `ledger_operations_total{operation="credit",outcome="ok"} 1`)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestStartAndStop(t *testing.T) {
	cfg := &config.Config{
		ServerPort:        "0",
		Store:             config.StoreMemory,
		GuardTimeout:      time.Second,
		MinOpeningBalance: decimal.NewFromInt(2000),
	}

	srv, port, err := StartServer(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, "0", port)

	resp, err := http.Get(srv.GetBaseURL() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(context.Background()))
}

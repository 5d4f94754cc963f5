package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/blockrepublic/subledger/internal/authz"
	"github.com/blockrepublic/subledger/internal/config"
	"github.com/blockrepublic/subledger/internal/logging"
	"github.com/blockrepublic/subledger/internal/transfer"
)

const (
	testSecret      = "test-secret"
	testIssuerToken = "issuer-token"
)

func setupApp(t *testing.T) (*fiber.App, *transfer.Recorder) {
	t.Helper()

	cfg := config.Config{
		AppName:        "SubLedger",
		AppEnv:         "development",
		JWTSecret:      testSecret,
		IssuerToken:    testIssuerToken,
		LedgerAccount:  "subledger",
		LedgerSymbol:   "SYS",
		LedgerPrec:     4,
		IdempotencyTTL: time.Minute,
	}

	gateway := transfer.NewRecorder()
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard(), Gateway: gateway}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app, gateway
}

func bearerFor(t *testing.T, principal string) string {
	t.Helper()
	token, err := authz.SignToken(principal, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	app, gateway := setupApp(t)
	alice := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "alice")}
	issuer := map[string]string{"X-Issuer-Token": testIssuerToken}

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts",
		map[string]string{"owner": "alice"}, alice)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["balance"] != "0.0000 SYS" {
		t.Fatalf("open: expected zero balance, got %v", body["balance"])
	}

	// Issuer reports an incoming deposit of 50 SYS from alice.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers/notify",
		map[string]string{"from": "alice", "to": "subledger", "quantity": "50.0000 SYS", "memo": "deposit"}, issuer)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("notify: expected 202, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/withdrawals",
		map[string]string{"owner": "alice", "quantity": "20.0000 SYS", "memo": "rent"}, alice)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["balance"] != "30.0000 SYS" {
		t.Fatalf("withdraw: expected 30.0000 SYS, got %v", body["balance"])
	}
	if reqs := gateway.Requests(); len(reqs) != 1 || reqs[0].To != "alice" || reqs[0].Memo != "rent" {
		t.Fatalf("expected payout to alice, got %+v", reqs)
	}

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/accounts/alice", nil, alice)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("close with funds: expected 409, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/withdrawals",
		map[string]string{"owner": "alice", "quantity": "30.0000 SYS"}, alice)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("final withdraw: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/accounts/alice", nil, alice)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close at zero: expected 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/alice/balance", nil, alice)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("balance after close: expected 404, got %d", resp.StatusCode)
	}
}

func TestUnknownDepositorRefundedOverHTTP(t *testing.T) {
	app, gateway := setupApp(t)
	issuer := map[string]string{"X-Issuer-Token": testIssuerToken}

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers/notify",
		map[string]string{"from": "carol", "to": "subledger", "quantity": "10.0000 SYS"}, issuer)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("notify: expected 202, got %d", resp.StatusCode)
	}

	reqs := gateway.Requests()
	if len(reqs) != 1 || reqs[0].To != "carol" || reqs[0].Quantity.String() != "10.0000 SYS" {
		t.Fatalf("expected full refund to carol, got %+v", reqs)
	}
}

func TestNotifyRejectsUnknownIssuer(t *testing.T) {
	app, _ := setupApp(t)

	for _, headers := range []map[string]string{
		nil,
		{"X-Issuer-Token": "wrong"},
	} {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers/notify",
			map[string]string{"from": "carol", "to": "subledger", "quantity": "1.0000 SYS"}, headers)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for headers %v, got %d", headers, resp.StatusCode)
		}
	}
}

func TestWithdrawRequiresOwnersAuthority(t *testing.T) {
	app, _ := setupApp(t)
	alice := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "alice")}
	mallory := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "mallory")}
	issuer := map[string]string{"X-Issuer-Token": testIssuerToken}

	doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]string{"owner": "alice"}, alice)
	doJSON(t, app, fiber.MethodPost, "/api/v1/transfers/notify",
		map[string]string{"from": "alice", "to": "subledger", "quantity": "5.0000 SYS"}, issuer)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/withdrawals",
		map[string]string{"owner": "alice", "quantity": "5.0000 SYS"}, mallory)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/withdrawals",
		map[string]string{"owner": "alice", "quantity": "5.0000 SYS"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestOpenRequiresPayersAuthority(t *testing.T) {
	app, _ := setupApp(t)
	alice := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "alice")}

	// Alice cannot bill bob for her account's storage.
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts",
		map[string]string{"owner": "alice", "payer": "bob"}, alice)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Bob may pay for alice's account.
	bob := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "bob")}
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts",
		map[string]string{"owner": "alice", "payer": "bob"}, bob)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["payer"] != "bob" {
		t.Fatalf("expected payer bob, got %v", body["payer"])
	}
}

func TestDuplicateOpenIsRejected(t *testing.T) {
	app, _ := setupApp(t)
	alice := map[string]string{fiber.HeaderAuthorization: bearerFor(t, "alice")}

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]string{"owner": "alice"}, alice)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first open: expected 201, got %d", resp.StatusCode)
	}
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts", map[string]string{"owner": "alice"}, alice)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second open: expected 409, got %d (%v)", resp.StatusCode, body)
	}
}

func TestPingReportsRequestID(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/ping", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
	if reqID, _ := body["request_id"].(string); reqID == "" {
		t.Fatal("expected a request id")
	}
}

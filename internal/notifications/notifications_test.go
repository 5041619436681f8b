package notifications

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
)

func TestTelegramSendAlert(t *testing.T) {
	var gotPath, gotChatID, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
	}))
	defer server.Close()

	n := NewTelegramNotifier("token123", "chat456")
	n.apiBase = server.URL

	require.NoError(t, n.SendAlert("success", "bought the dip"))
	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, "chat456", gotChatID)
	assert.Contains(t, gotText, "✅")
	assert.Contains(t, gotText, "bought the dip")
}

func TestTelegramSendAlert_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := NewTelegramNotifier("token", "chat")
	n.apiBase = server.URL

	err := n.SendAlert("error", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFormatPurchase(t *testing.T) {
	msg := FormatPurchase(PurchaseEvent{
		Pair:        "XBT/GBP",
		DryRun:      true,
		Regime:      regime.Bearish,
		MassiveBear: true,
		Price:       45000,
		Spend:       50,
		Volume:      0.00110943,
		TxID:        "dry-1700000000000",
		Verdict: triggers.Verdict{
			Ok:   true,
			Rule: "bear-massive",
			Conditions: []triggers.Condition{
				{Name: "lower-band", Met: true, Detail: "close=45000.00 <= lower=45120.50"},
				{Name: "rsi-early", Met: false, Detail: "RSI14=55.20 ≤50.00"},
			},
		},
	})

	assert.Contains(t, msg, "Triggered purchase")
	assert.Contains(t, msg, "[DRY RUN]")
	assert.Contains(t, msg, "bearish (massive)")
	assert.Contains(t, msg, "✓ lower-band")
	assert.Contains(t, msg, "✗ rsi-early")
	assert.Contains(t, msg, "dry-1700000000000")
}

func TestFormatPurchase_Fallback(t *testing.T) {
	msg := FormatPurchase(PurchaseEvent{
		Pair:     "XBT/GBP",
		Fallback: true,
		Regime:   regime.Sideways,
		Price:    50000,
		Spend:    50,
		Volume:   0.000998,
		Verdict:  triggers.Verdict{Ok: true, Rule: "fallback/sideways"},
	})

	assert.Contains(t, msg, "Fallback purchase (window expired)")
	assert.NotContains(t, msg, "DRY RUN")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.SendAlert("info", "ignored"))
}

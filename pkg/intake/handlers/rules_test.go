package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/intake/types"
)

func TestRulesHandler(t *testing.T) {
	handler := NewRulesHandler(allocation.NewEvaluator(), discardLogger())

	t.Run("returns ordered chain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var resp types.RulesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		chain := allocation.DefaultRuleChain()
		if resp.Count != len(chain) {
			t.Errorf("count = %d, want %d", resp.Count, len(chain))
		}
		for i, info := range resp.Rules {
			if info.Position != i+1 {
				t.Errorf("rule %d position = %d, want %d", i, info.Position, i+1)
			}
			if info.ID != chain[i].ID {
				t.Errorf("rule %d id = %s, want %s", i, info.ID, chain[i].ID)
			}
		}
		if resp.Rules[0].ID != allocation.RuleCUIOverride {
			t.Errorf("first rule = %s, want %s", resp.Rules[0].ID, allocation.RuleCUIOverride)
		}
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", w.Code)
		}
		if w.Header().Get("Allow") != http.MethodGet {
			t.Errorf("Allow header = %s, want GET", w.Header().Get("Allow"))
		}
	})
}

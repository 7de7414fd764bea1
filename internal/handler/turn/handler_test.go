package turn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
	turnservice "github.com/zhouzirui/bot-duet/internal/service/turn"
)

type stubRunner struct {
	result *turnservice.Result
	err    error
}

func (s stubRunner) RunTurn(context.Context) (*turnservice.Result, error) {
	return s.result, s.err
}

func serve(runner turnservice.Runner) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(runner, zerolog.Nop()).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/turn", nil))
	return resp
}

func TestRunTurnSuccess(t *testing.T) {
	resp := serve(stubRunner{result: &turnservice.Result{
		RunID: "run-1",
		Turn:  chat.Turn{Speaker: bot.B, Utterance: "そうだね"},
	}})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body Response
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body != (Response{RunID: "run-1", Bot: "B", Message: "そうだね"}) {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRunTurnInProgress(t *testing.T) {
	resp := serve(stubRunner{err: turnservice.ErrTurnInProgress})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestRunTurnFailureHidesDetails(t *testing.T) {
	resp := serve(stubRunner{err: &turnservice.StageError{State: turnservice.StateGenerating, Err: errors.New("api key leaked here")}})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != "{\"error\":\"turn failed\"}\n" {
		t.Fatalf("unexpected body %s", got)
	}
}

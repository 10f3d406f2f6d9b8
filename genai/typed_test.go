package genai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/verdantlabs/googleai/schema"
)

type recipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

func TestTypedModelSendsSchemaAndDecodes(t *testing.T) {
	var gotBody GenerateContentRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Body did not decode: %v", err)
		}
		json.NewEncoder(w).Encode(textResponse(`{"name":"stew","ingredients":["carrot"]}`))
	})

	tm, err := NewTypedModel[recipe](client, "gemini-2.0-flash", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	res, err := tm.GenerateText(context.Background(), "a stew recipe")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if res.Data.Name != "stew" || len(res.Data.Ingredients) != 1 {
		t.Errorf("Unexpected data: %+v", res.Data)
	}
	if res.Response == nil || res.Response.Text() == "" {
		t.Error("Expected the raw response alongside the data")
	}
	if gotBody.GenerationConfig == nil {
		t.Fatal("Expected a generation config")
	}
	if gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("Expected application/json, got %q", gotBody.GenerationConfig.ResponseMIMEType)
	}
	if !strings.Contains(string(gotBody.GenerationConfig.ResponseSchema), `"ingredients"`) {
		t.Errorf("Expected the derived schema on the wire, got %s", gotBody.GenerationConfig.ResponseSchema)
	}
}

func TestTypedModelConstructionFailsForInvalidType(t *testing.T) {
	type loop struct {
		Self *loop
	}
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := NewTypedModel[loop](client, "m", nil)
	if err == nil {
		t.Fatal("Expected a derivation error at construction")
	}
	var derr *schema.DerivationError
	if !errors.As(err, &derr) {
		t.Errorf("Expected *schema.DerivationError, got %T", err)
	}
}

func TestTypedModelDecodesFencedOutput(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse("```json\n{\"name\":\"stew\",\"ingredients\":[]}\n```"))
	})
	tm, err := NewTypedModel[recipe](client, "m", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	res, err := tm.GenerateText(context.Background(), "x")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Data.Name != "stew" {
		t.Errorf("Unexpected data: %+v", res.Data)
	}
}

func TestTypedModelSurfacesDecodeErrorWithRaw(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse(`{"name":"stew"}`))
	})
	tm, err := NewTypedModel[recipe](client, "m", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = tm.GenerateText(context.Background(), "x")
	var derr *schema.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected *schema.DecodeError, got %T (%v)", err, err)
	}
	if !strings.Contains(string(derr.Raw), "stew") {
		t.Errorf("Expected the raw payload on the error, got %s", derr.Raw)
	}
}

func TestTypedModelReportsBlockedPrompt(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateContentResponse{
			PromptFeedback: &PromptFeedback{BlockReason: "SAFETY"},
		})
	})
	tm, err := NewTypedModel[recipe](client, "m", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = tm.GenerateText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("Expected the block reason, got %v", err)
	}
}

func TestChatAccumulatesHistory(t *testing.T) {
	var gotContents int
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body GenerateContentRequest
		json.NewDecoder(r.Body).Decode(&body)
		gotContents = len(body.Contents)
		json.NewEncoder(w).Encode(textResponse("reply"))
	})

	chat := client.NewChat("m", WithSystemInstruction("be brief"))
	if _, err := chat.SendText(context.Background(), "first"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotContents != 1 {
		t.Errorf("Expected 1 content on the first turn, got %d", gotContents)
	}
	if _, err := chat.SendText(context.Background(), "second"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotContents != 3 {
		t.Errorf("Expected 3 contents on the second turn, got %d", gotContents)
	}
	if h := chat.History(); len(h) != 4 {
		t.Errorf("Expected 4 recorded turns, got %d", len(h))
	}
}

func TestChatFailedSendLeavesHistoryUntouched(t *testing.T) {
	fail := true
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		json.NewEncoder(w).Encode(textResponse("ok"))
	})

	chat := client.NewChat("m")
	if _, err := chat.SendText(context.Background(), "hi"); err == nil {
		t.Fatal("Expected an error")
	}
	if len(chat.History()) != 0 {
		t.Errorf("Expected empty history after a failure, got %d turns", len(chat.History()))
	}

	fail = false
	if _, err := chat.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(chat.History()) != 2 {
		t.Errorf("Expected 2 turns, got %d", len(chat.History()))
	}
}

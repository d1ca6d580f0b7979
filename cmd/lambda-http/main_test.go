package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestHandlerReportsBootstrapFailure(t *testing.T) {
	initOnce.Do(func() {})
	initErr = errors.New("DATABASE_URL is required")
	t.Cleanup(func() { initErr = nil })

	resp, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/health"})
	if err == nil {
		t.Fatalf("expected bootstrap error")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Error.Code != "internal_error" || resp.Headers["Content-Type"] != "application/json" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

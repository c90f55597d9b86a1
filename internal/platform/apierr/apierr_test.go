package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFrom(t *testing.T) {
	base := New(http.StatusConflict, "no_file_selected", errors.New("no file selected"))
	wrapped := fmt.Errorf("submit: %w", base)
	if got := From(wrapped); got != base {
		t.Fatalf("got=%v", got)
	}
	if got := From(errors.New("boom")); got.Status != http.StatusInternalServerError || got.Code != "internal" {
		t.Fatalf("got=%+v", got)
	}
	if New(http.StatusBadRequest, "bad", nil).Error() != "bad" {
		t.Fatalf("Error() without cause")
	}
}

package handlers

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  Ann@Example.COM "); got != "ann@example.com" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeEmail(strings.Repeat("a", 250) + "@x.com"); got != "" {
		t.Errorf("overlong email kept: %q", got)
	}
}

func TestTaskRules_FirstFailurePerField(t *testing.T) {
	v := validator.New()
	err := taskRules.check(v, taskRequest{Title: "  ", Status: "TODO", Priority: "LOW"})
	var verr *domerrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Message != "title is required" {
		t.Errorf("fields = %+v", verr.Fields)
	}

	id := int64(4)
	ok := taskRequest{Title: "Fix bug", Description: strings.Repeat("d", 500), Status: "DONE", Priority: "HIGH", DueDate: "2026-02-28", AssignedToID: &id}
	if err := taskRules.check(v, ok); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	ok.Description += "d"
	if err := taskRules.check(v, ok); err == nil {
		t.Error("501 character description accepted")
	}
}

func TestPageParams(t *testing.T) {
	v := validator.New()
	page, size, err := readListQuery(url.Values{}).pageParams(v)
	if err != nil || page != 0 || size != DefaultPageSize {
		t.Errorf("defaults = %d %d %v", page, size, err)
	}
	page, size, err = readListQuery(url.Values{"page": {"3"}, "size": {"100"}}).pageParams(v)
	if err != nil || page != 3 || size != 100 {
		t.Errorf("explicit = %d %d %v", page, size, err)
	}
	_, _, err = readListQuery(url.Values{"page": {"99999999999999999999"}}).pageParams(v)
	if err == nil {
		t.Error("overflowing page accepted")
	}
}

func TestFilter(t *testing.T) {
	v := validator.New()
	f, err := readListQuery(url.Values{"status": {"in_progress"}, "assignedToId": {"7"}}).filter(v)
	if err != nil {
		t.Fatal(err)
	}
	if f.Status == nil || *f.Status != "IN_PROGRESS" || f.Priority != nil || f.AssigneeID == nil || *f.AssigneeID != 7 {
		t.Errorf("filter = %+v", f)
	}
}

func TestTaskRules_LengthOnRawTitle(t *testing.T) {
	v := validator.New()
	if err := taskRules.check(v, taskRequest{Title: "  ab  ", Status: "TODO", Priority: "LOW"}); err != nil {
		t.Errorf("padded title rejected: %v", err)
	}
	if err := taskRules.check(v, taskRequest{Title: "ab", Status: "TODO", Priority: "LOW"}); err == nil {
		t.Error("two character title accepted")
	}
	if err := userRules.check(v, userRequest{Name: " A", Email: "a@x.com"}); err != nil {
		t.Errorf("padded name rejected: %v", err)
	}
}

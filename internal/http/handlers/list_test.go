package handlers_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/roster/internal/domain/group"
	"github.com/geocoder89/roster/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestRespondList(t *testing.T) {
	var groups []group.Group

	r := setupRouter(http.MethodGet, "/groups", func(c *gin.Context) {
		handlers.RespondList(c, groups)
	})

	w := do(r, http.MethodGet, "/groups", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if got := w.Body.String(); got != `[]` {
		t.Fatalf("unexpected body %s", got)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	tests := []struct {
		name        string
		ifNoneMatch string
		want        int
	}{
		{"exact", etag, http.StatusNotModified},
		{"weak", "W/" + etag, http.StatusNotModified},
		{"in list", `"other", ` + etag, http.StatusNotModified},
		{"wildcard", "*", http.StatusNotModified},
		{"stale", `"other"`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/groups", "", map[string]string{"If-None-Match": tt.ifNoneMatch})
			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d", w.Code, tt.want)
			}
		})
	}

	groups = append(groups, group.Group{ID: 1, Name: "Group 1", Users: []string{}})
	w = do(r, http.MethodGet, "/groups", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK {
		t.Fatalf("changed list must not match the old ETag, got %d", w.Code)
	}
}

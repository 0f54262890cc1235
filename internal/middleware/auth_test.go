package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// grantlessResolver denies every normal resolution and only yields the
// zero-capability record for the manual-entry marker, mirroring a user with
// no HR grant at all.
type grantlessResolver struct{}

func (grantlessResolver) ResolveForUser(_ context.Context, _ *model.User, forManualEntry bool) (access.Capabilities, error) {
	if forManualEntry {
		return access.Capabilities{}, nil
	}
	return access.Capabilities{}, access.ErrForbidden
}

type singleUserSource struct{ user *model.User }

func (s singleUserSource) FindByID(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return s.user, nil
}

func (s singleUserSource) LoadRoles(_ context.Context, _ *model.User) error { return nil }

func seedUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", user.ID.String())
		c.Set("currentUser", user)
		c.Next()
	}
}

func TestManualEntryMarkerOnlyBypassesOnListingRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &model.User{ID: uuid.New(), Username: "grantless", Status: model.UserStatusActive}
	InitAccessMiddleware(singleUserSource{user: user}, grantlessResolver{})
	ClearCapabilityCache("")

	mutated := false
	router := gin.New()
	router.GET("/users", seedUser(user), HRAccessManualEntry(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.PUT("/users/:id", seedUser(user), HRAccess(), func(c *gin.Context) {
		mutated = true
		c.Status(http.StatusOK)
	})
	router.GET("/users/:id", seedUser(user), HRAccess(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"listing with marker is allowed", http.MethodGet, "/users?forManualEntry=true", http.StatusOK},
		{"listing without marker is denied for the grantless", http.MethodGet, "/users", http.StatusForbidden},
		{"marker does not open user mutation", http.MethodPut, "/users/" + uuid.NewString() + "?forManualEntry=true", http.StatusForbidden},
		{"marker does not open user detail", http.MethodGet, "/users/" + uuid.NewString() + "?forManualEntry=true", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ClearCapabilityCache("")
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.target, nil)
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("%s %s: got status %d, want %d", tc.method, tc.target, rec.Code, tc.want)
			}
		})
	}

	if mutated {
		t.Fatalf("mutation handler ran for a user with no HR grant")
	}
}

func TestManualEntryResolutionIsNotCached(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &model.User{ID: uuid.New(), Username: "grantless", Status: model.UserStatusActive}
	InitAccessMiddleware(singleUserSource{user: user}, grantlessResolver{})
	ClearCapabilityCache("")

	router := gin.New()
	router.GET("/users", seedUser(user), HRAccessManualEntry(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// A marker request must not leave a cached record that a later
	// unmarked request could ride on.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?forManualEntry=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("marker listing: got status %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unmarked listing after marker: got status %d, want %d", rec.Code, http.StatusForbidden)
	}
}

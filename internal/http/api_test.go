package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/recommend"
)

type recordingQueue struct {
	mu      sync.Mutex
	reasons []string
}

func (q *recordingQueue) EnqueueSnapshot(reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reasons = append(q.reasons, reason)
	return nil
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reasons)
}

type memorySnapshots struct {
	saved   *catalog.Snapshot
	savedAt time.Time
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, snap catalog.Snapshot) error {
	m.saved = &snap
	m.savedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return nil
}

func (m *memorySnapshots) LastSavedAt(context.Context) (time.Time, error) {
	return m.savedAt, nil
}

type testAPI struct {
	router    *gin.Engine
	store     *catalog.Store
	queue     *recordingQueue
	snapshots *memorySnapshots
}

func newTestAPI(t *testing.T, authCfg config.Auth) *testAPI {
	t.Helper()
	store := catalog.NewStore(catalog.DefaultOptions())
	queue := &recordingQueue{}
	snapshots := &memorySnapshots{}

	router := NewRouter(RouterConfig{
		Catalog:        store,
		Recommender:    recommend.NewEngine(store),
		RecommendLimit: 5,
		Snapshots:      snapshots,
		SnapshotQueue:  queue,
		AuthConfig:     authCfg,
		Version:        "test",
	})
	return &testAPI{router: router, store: store, queue: queue, snapshots: snapshots}
}

func (a *testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type listOf[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

type bookJSON struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
	GenreID   string `json:"genre_id"`
}

type loanJSON struct {
	ID          uint   `json:"id"`
	MemberEmail string `json:"member_email"`
	ISBN        string `json:"isbn"`
	Status      string `json:"status"`
}

func (a *testAPI) seed(t *testing.T) {
	t.Helper()
	books := []string{
		`{"title":"Don Quijote de la Mancha","author":"Miguel de Cervantes","isbn":"9788420412146"}`,
		`{"title":"Donde los árboles cantan","author":"Laura Gallego","isbn":"9788467552027"}`,
		`{"title":"Cien años de soledad","author":"Gabriel García Márquez","isbn":"9780307474728"}`,
		`{"title":"Rayuela","author":"Julio Cortázar","isbn":"9788437604572"}`,
	}
	for _, b := range books {
		require.Equal(t, http.StatusCreated, a.do("POST", "/api/books", b).Code)
	}
	members := []string{
		`{"name":"Juan Pérez","phone":"555-123-4567","email":"juan@email.com"}`,
		`{"name":"María García","phone":"555 987 6543","email":"maria@email.com"}`,
	}
	for _, m := range members {
		require.Equal(t, http.StatusCreated, a.do("POST", "/api/members", m).Code)
	}
}

func TestBooksAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	t.Run("list", func(t *testing.T) {
		w := api.do("GET", "/api/books", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 4, decode[listOf[bookJSON]](t, w).Count)
	})

	t.Run("create normalizes isbn", func(t *testing.T) {
		w := api.do("POST", "/api/books", `{"title":"Ficciones","author":"Jorge Luis Borges","isbn":"978-0-8021-3030-9"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "9780802130309", decode[bookJSON](t, w).ISBN)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		w := api.do("POST", "/api/books", `{"title":"Otro libro","author":"Alguien","isbn":"9788437604572"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeDuplicate, decode[ErrorResponse](t, w).Code)
	})

	t.Run("invalid isbn", func(t *testing.T) {
		w := api.do("POST", "/api/books", `{"title":"Otro libro","author":"Alguien","isbn":"97804410135X3"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[ErrorResponse](t, w).Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := api.do("POST", "/api/books", `{"title":"Solo título"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get unknown", func(t *testing.T) {
		w := api.do("GET", "/api/books/9780000000000", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("search by title prefix", func(t *testing.T) {
		w := api.do("GET", "/api/books/search?by=title&q=don", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[listOf[bookJSON]](t, w)
		require.Len(t, got.Data, 2)
		assert.Equal(t, "Don Quijote de la Mancha", got.Data[0].Title)
		assert.Equal(t, "Donde los árboles cantan", got.Data[1].Title)
	})

	t.Run("search by accent-free author", func(t *testing.T) {
		w := api.do("GET", "/api/books/search?by=author&q=gabriel%20garcia", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listOf[bookJSON]](t, w).Count)
	})

	t.Run("search with unknown criterion", func(t *testing.T) {
		w := api.do("GET", "/api/books/search?by=color&q=red", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch reports change", func(t *testing.T) {
		w := api.do("PATCH", "/api/books/9788437604572", `{"title":"Rayuela (edición conmemorativa)"}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[struct {
			Book    bookJSON `json:"book"`
			Changed bool     `json:"changed"`
		}](t, w)
		assert.True(t, resp.Changed)
		assert.Equal(t, "Rayuela (edición conmemorativa)", resp.Book.Title)

		w = api.do("PATCH", "/api/books/9788437604572", `{"title":"Rayuela (edición conmemorativa)"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"changed":false`)
	})

	t.Run("patch with unknown genre", func(t *testing.T) {
		w := api.do("PATCH", "/api/books/9788437604572", `{"genre_id":"no-such-genre"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do("DELETE", "/api/books/9780802130309", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/books/9780802130309", "").Code)
		assert.Equal(t, http.StatusNotFound, api.do("DELETE", "/api/books/9780802130309", "").Code)
	})
}

func TestMembersAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	t.Run("duplicate email is case-insensitive", func(t *testing.T) {
		w := api.do("POST", "/api/members", `{"name":"Juan Otro","phone":"5550000000","email":"JUAN@email.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid name", func(t *testing.T) {
		w := api.do("POST", "/api/members", `{"name":"R2D2","phone":"5550000000","email":"r2@email.com"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, map[string]any{"field": "name"}, resp.Details)
	})

	t.Run("get and patch", func(t *testing.T) {
		w := api.do("GET", "/api/members/maria@email.com", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "María García")

		w = api.do("PATCH", "/api/members/maria@email.com", `{"phone":"555-000-1111"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "555-000-1111")
	})

	t.Run("search by name prefix ignores accents", func(t *testing.T) {
		w := api.do("GET", "/api/members/search?by=name&q=maria", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listOf[map[string]any]](t, w).Count)
	})

	t.Run("unknown member loans", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/members/ghost@email.com/loans", "").Code)
	})
}

func TestLoansAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	lend := func(email, isbn string) *httptest.ResponseRecorder {
		return api.do("POST", "/api/loans", `{"email":"`+email+`","isbn":"`+isbn+`"}`)
	}

	w := lend("juan@email.com", "9788420412146")
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[loanJSON](t, w)
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, "active", first.Status)

	require.Equal(t, http.StatusCreated, lend("juan@email.com", "9788467552027").Code)
	require.Equal(t, http.StatusCreated, lend("juan@email.com", "9780307474728").Code)

	t.Run("book already lent", func(t *testing.T) {
		w := lend("maria@email.com", "9788420412146")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("fourth active loan is refused", func(t *testing.T) {
		w := lend("juan@email.com", "9788437604572")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("lent book cannot be deleted", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, api.do("DELETE", "/api/books/9788420412146", "").Code)
	})

	t.Run("member with loans cannot be deleted", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, api.do("DELETE", "/api/members/juan@email.com", "").Code)
	})

	t.Run("return then return again", func(t *testing.T) {
		w := api.do("POST", "/api/loans/1/return", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "returned", decode[loanJSON](t, w).Status)

		w = api.do("POST", "/api/loans/1/return", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("return unknown loan", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, api.do("POST", "/api/loans/99/return", "").Code)
		assert.Equal(t, http.StatusBadRequest, api.do("POST", "/api/loans/abc/return", "").Code)
	})

	t.Run("filter by status", func(t *testing.T) {
		w := api.do("GET", "/api/loans?status=active", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decode[listOf[loanJSON]](t, w).Count)

		w = api.do("GET", "/api/loans?status=returned", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[listOf[loanJSON]](t, w).Count)

		w = api.do("GET", "/api/loans", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, decode[listOf[loanJSON]](t, w).Count)

		assert.Equal(t, http.StatusBadRequest, api.do("GET", "/api/loans?status=lost", "").Code)
	})

	t.Run("member history", func(t *testing.T) {
		w := api.do("GET", "/api/members/juan@email.com/loans", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, decode[listOf[loanJSON]](t, w).Count)
	})

	t.Run("writes queue a snapshot", func(t *testing.T) {
		// 4 books, 2 members, 3 loans and 1 return
		assert.Equal(t, 10, api.queue.count())
	})
}

func TestRecommendationsAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	for _, isbn := range []string{"9788420412146", "9780307474728"} {
		w := api.do("POST", "/api/loans", `{"email":"juan@email.com","isbn":"`+isbn+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		id := decode[loanJSON](t, w).ID
		require.Equal(t, http.StatusOK, api.do("POST", "/api/loans/"+strconv.FormatUint(uint64(id), 10)+"/return", "").Code)
	}
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/loans", `{"email":"maria@email.com","isbn":"9788420412146"}`).Code)

	w := api.do("GET", "/api/members/maria@email.com/recommendations", "")
	require.Equal(t, http.StatusOK, w.Code)
	recs := decode[listOf[struct {
		Book  bookJSON `json:"book"`
		Score int      `json:"score"`
	}]](t, w)
	require.Len(t, recs.Data, 1)
	assert.Equal(t, "9780307474728", recs.Data[0].Book.ISBN)
	assert.Equal(t, 1, recs.Data[0].Score)

	w = api.do("GET", "/api/members/maria@email.com/similar?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "juan@email.com")

	assert.Equal(t, http.StatusBadRequest, api.do("GET", "/api/members/maria@email.com/similar?limit=x", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/members/ghost@email.com/recommendations", "").Code)
}

func TestTaxonomyAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	w := api.do("POST", "/api/genres", `{"id":"novel","name":"Novela"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusConflict, api.do("POST", "/api/genres", `{"id":"novel","name":"Otra"}`).Code)

	w = api.do("POST", "/api/authors", `{"name":"Julio Cortázar"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	author := decode[struct {
		ID string `json:"id"`
	}](t, w)
	assert.NotEmpty(t, author.ID)

	w = api.do("GET", "/api/authors/search?q=julio", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listOf[map[string]any]](t, w).Count)

	require.Equal(t, http.StatusOK, api.do("PATCH", "/api/books/9788437604572", `{"genre_id":"novel"}`).Code)
	assert.Equal(t, http.StatusConflict, api.do("DELETE", "/api/genres/novel", "").Code)

	require.Equal(t, http.StatusOK, api.do("DELETE", "/api/authors/"+author.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do("DELETE", "/api/authors/"+author.ID, "").Code)

	w = api.do("GET", "/api/genres", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listOf[map[string]any]](t, w).Count)
}

func TestIndexesAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	w := api.do("GET", "/api/indexes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[listOf[string]](t, w).Data, "book.title")

	w = api.do("GET", "/api/indexes/book.title", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rayuela")

	assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/indexes/book.colour", "").Code)
}

func TestSnapshotAPI(t *testing.T) {
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeNone})
	api.seed(t)

	w := api.do("GET", "/api/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"saved":false}`, w.Body.String())

	w = api.do("POST", "/api/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, api.snapshots.saved)
	assert.Len(t, api.snapshots.saved.Books, 4)

	w = api.do("GET", "/api/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-10-01T12:00:00Z")

	before := api.queue.count()
	w = api.do("POST", "/api/snapshot?async=true", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, before+1, api.queue.count())
}

func TestAPI_TokenMode(t *testing.T) {
	const token = "front-desk-token-0001"
	hash, err := auth.HashToken(token, bcrypt.MinCost)
	require.NoError(t, err)
	api := newTestAPI(t, config.Auth{Mode: config.AuthModeToken, TokenHash: hash})

	body := `{"title":"Rayuela","author":"Julio Cortázar","isbn":"9788437604572"}`

	assert.Equal(t, http.StatusUnauthorized, api.do("POST", "/api/books", body).Code)
	assert.Equal(t, http.StatusOK, api.do("GET", "/api/books", "").Code)
	assert.Equal(t, http.StatusCreated, api.do("POST", "/api/books", body, "Authorization", "Bearer "+token).Code)
	assert.Equal(t, http.StatusOK, api.do("GET", "/health", "").Code)
}

package recordstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/database"
	"medcore/m/internal/logger"
	"medcore/m/internal/migrations"
	"medcore/m/internal/recordstore"
	"medcore/m/internal/remote"
	"medcore/m/internal/repository"
)

const secret = "test-secret"

func newStore(t *testing.T) *recordstore.Store {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunRecords(db))
	return recordstore.NewStore(db)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(recordstore.New(newStore(t), secret, logger.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func authed(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	token, err := remote.SignToken(secret, time.Now())
	require.NoError(t, err)
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestStore_UpsertGetDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.Upsert(ctx, domain.EntityPatients, json.RawMessage(`{"id":"P1001","name":"Karim"}`))
	require.NoError(t, err)
	assert.Equal(t, "P1001", id)

	_, err = store.Upsert(ctx, domain.EntityPatients, json.RawMessage(`{"id":"P1001","name":"Karim Uddin"}`))
	require.NoError(t, err)

	rec, err := store.Get(ctx, domain.EntityPatients, "P1001")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"P1001","name":"Karim Uddin"}`, string(rec))

	require.NoError(t, store.Delete(ctx, domain.EntityPatients, "P1001"))
	rec, err = store.Get(ctx, domain.EntityPatients, "P1001")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Delete(ctx, domain.EntityPatients, "nobody"))
}

func TestStore_UpsertAssignsID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.Upsert(ctx, domain.EntityExpenses, json.RawMessage(`{"description":"Gloves","amount":300}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.Get(ctx, domain.EntityExpenses, id)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec, &got))
	assert.Equal(t, id, got["id"])

	_, err = store.Upsert(ctx, domain.EntityExpenses, json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, recordstore.ErrInvalidRecord)
}

func TestStore_BillFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	bills := []string{
		`{"id":"INV-1","date":"2024-05-01T08:00:00Z","totalAmount":500,"paidAmount":500,"dueAmount":0,"patientId":"P1","referringDoctorId":"PRO-101"}`,
		`{"id":"INV-2","date":"2024-05-10T08:00:00Z","totalAmount":900,"paidAmount":400,"dueAmount":500,"patientId":"P2","referringDoctorId":"PRO-102","consultantDoctorId":"PRO-101"}`,
		`{"id":"INV-3","date":"2024-05-20T08:00:00Z","totalAmount":300,"paidAmount":0,"dueAmount":300,"patientId":"P1"}`,
	}
	for _, b := range bills {
		_, err := store.Upsert(ctx, domain.EntityBills, json.RawMessage(b))
		require.NoError(t, err)
	}

	ids := func(f recordstore.BillFilter) []string {
		recs, err := store.List(ctx, domain.EntityBills, f)
		require.NoError(t, err)
		var out []string
		for _, r := range recs {
			var b domain.Bill
			require.NoError(t, json.Unmarshal(r, &b))
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"INV-1", "INV-2", "INV-3"}, ids(recordstore.BillFilter{}))
	assert.Equal(t, []string{"INV-1", "INV-3"}, ids(recordstore.BillFilter{PatientID: "P1"}))
	assert.Equal(t, []string{"INV-1"}, ids(recordstore.BillFilter{ReferringDoctorID: "PRO-101"}))
	assert.Equal(t, []string{"INV-2"}, ids(recordstore.BillFilter{ConsultantDoctorID: "PRO-101"}))
	assert.Equal(t, []string{"INV-2", "INV-3"}, ids(recordstore.BillFilter{DueOnly: true}))
	assert.Equal(t, []string{"INV-2"}, ids(recordstore.BillFilter{From: "2024-05-05", To: "2024-05-10"}))
}

func TestHandler_Health(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_RequiresToken(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/bills")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	wrong, err := remote.SignToken("other-secret", time.Now())
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/bills", nil)
	req.Header.Set("Authorization", "Bearer "+wrong)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestHandler_CRUD(t *testing.T) {
	srv := newServer(t)

	resp := authed(t, http.MethodPost, srv.URL+"/api/rooms", `{"id":"RM9","number":"909"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"success","id":"RM9"}`, readBody(t, resp))

	resp = authed(t, http.MethodGet, srv.URL+"/api/rooms/RM9", "")
	assert.JSONEq(t, `{"id":"RM9","number":"909"}`, readBody(t, resp))

	resp = authed(t, http.MethodGet, srv.URL+"/api/rooms", "")
	assert.JSONEq(t, `[{"id":"RM9","number":"909"}]`, readBody(t, resp))

	resp = authed(t, http.MethodDelete, srv.URL+"/api/rooms/RM9", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = authed(t, http.MethodGet, srv.URL+"/api/rooms/RM9", "")
	assert.Equal(t, "null", strings.TrimSpace(readBody(t, resp)))

	resp = authed(t, http.MethodGet, srv.URL+"/api/pharmacies", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = authed(t, http.MethodPost, srv.URL+"/api/rooms", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_ListFilterQuery(t *testing.T) {
	srv := newServer(t)
	authed(t, http.MethodPost, srv.URL+"/api/bills", `{"id":"INV-1","date":"2024-05-01T08:00:00Z","totalAmount":100,"paidAmount":100,"dueAmount":0}`)
	authed(t, http.MethodPost, srv.URL+"/api/bills", `{"id":"INV-2","date":"2024-05-02T08:00:00Z","totalAmount":100,"paidAmount":20,"dueAmount":80}`)

	resp := authed(t, http.MethodGet, srv.URL+"/api/bills?status=due", "")
	var got []domain.Bill
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "INV-2", got[0].ID)
}

func TestEndToEndSync(t *testing.T) {
	srv := newServer(t)
	client := remote.NewHTTPClient(srv.URL, secret)

	adapter := remote.NewAdapter(cache.New(cache.NewMemoryBackend()), remote.Options{
		Client:        client,
		Connectivity:  remote.Static(true),
		OutboxEnabled: true,
		Logger:        logger.Nop(),
	})
	repos := repository.NewSet(adapter)
	ctx := context.Background()

	require.NoError(t, repos.Patients.Put(ctx, domain.Patient{ID: "P1001", Name: "Karim", RegDate: "2024-05-01"}))
	adapter.Wait()

	remoteList, err := client.Fetch(ctx, domain.EntityPatients)
	require.NoError(t, err)
	require.Len(t, remoteList, 1)

	// A second device starts from an empty cache and picks up the record.
	other := repository.NewSet(remote.NewAdapter(cache.New(cache.NewMemoryBackend()), remote.Options{
		Client:       client,
		Connectivity: remote.Static(true),
		Logger:       logger.Nop(),
	}))
	require.NoError(t, other.Patients.Load(ctx))
	p, ok := other.Patients.Get("P1001")
	require.True(t, ok)
	assert.Equal(t, "Karim", p.Name)
}

package register_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aragel-soft/chulada-pos-sub001/internal/catalog"
	"github.com/aragel-soft/chulada-pos-sub001/internal/kits"
	"github.com/aragel-soft/chulada-pos-sub001/internal/obs"
	"github.com/aragel-soft/chulada-pos-sub001/internal/register"
)

// emptySource stands in for the database; every lookup the tests rely on is
// seeded into the Redis cache instead.
type emptySource struct{}

func (emptySource) GetByID(context.Context, uuid.UUID) (catalog.Product, error) {
	return catalog.Product{}, catalog.ErrNotFound
}

func (emptySource) GetByBarcode(context.Context, string) (catalog.Product, error) {
	return catalog.Product{}, catalog.ErrNotFound
}

func (emptySource) Search(context.Context, string, int, int) ([]catalog.Product, int, error) {
	return nil, 0, nil
}

type fixture struct {
	router  *chi.Mux
	cache   *catalog.Cache
	product catalog.Product
	kit     kits.Definition
}

// newFixture wires the register handler against miniredis. Product and kit
// lookups are pre-seeded into the cache so no database is needed.
func newFixture(t *testing.T, maxTickets int) *fixture {
	t.Helper()
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := catalog.NewCache(client, time.Minute)
	product := catalog.Product{
		ID:             uuid.New(),
		Code:           "PIN-001",
		Barcode:        "7501001000011",
		Name:           "Piñata Estrella",
		RetailPrice:    35000,
		WholesalePrice: 28000,
		Stock:          10,
	}
	gift := uuid.New()
	kit := kits.Definition{
		ID:               uuid.New(),
		Name:             "Piñata + Dulces",
		TriggerProductID: product.ID,
		MaxPerTrigger:    1,
		Items: []kits.GiftItem{
			{ProductID: gift, Code: "DUL-001", Name: "Bolsa Dulce", Price: 9500},
		},
	}

	ctx := context.Background()
	require.NoError(t, cache.SetJSON(ctx, "catalog:barcode:"+product.Barcode, product))
	require.NoError(t, cache.SetJSON(ctx, "catalog:product:"+product.ID.String(), product))
	require.NoError(t, cache.SetJSON(ctx, "kits:trigger:"+product.ID.String(), kit))
	require.NoError(t, cache.SetJSON(ctx, "kits:id:"+kit.ID.String(), kit))

	svc, err := catalog.NewService(catalog.ServiceConfig{Store: emptySource{}, Cache: cache})
	require.NoError(t, err)

	hub := register.NewHub(&register.SnapshotStore{Client: client, TTL: time.Hour}, maxTickets, zerolog.Nop())
	h := &register.Handler{
		Hub:             hub,
		Catalog:         svc,
		Kits:            &kits.Store{Cache: cache},
		Validate:        validator.New(validator.WithRequiredStructEnabled()),
		DiscountPresets: []int{10, 20},
	}

	r := chi.NewRouter()
	r.Route("/api/v1/registers/{rid}", func(reg chi.Router) {
		reg.Get("/", h.Get)
		reg.Post("/tickets", h.CreateTicket)
		reg.Post("/tickets/{tid}/activate", h.ActivateTicket)
		reg.Delete("/tickets/{tid}", h.CloseTicket)
		reg.Post("/lines", h.AddLine)
		reg.Patch("/lines/{lid}/qty", h.SetQty)
		reg.Post("/discount", h.Discount)
		reg.Get("/gifts", h.Obligations)
		reg.Post("/gifts/confirm", h.ConfirmGifts)
	})
	return &fixture{router: r, cache: cache, product: product, kit: kit}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateTicketEnforcesLimit(t *testing.T) {
	f := newFixture(t, 2)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/registers/caja-1/tickets", nil).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/registers/caja-1/tickets", nil).Code)

	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/tickets", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "TICKET_LIMIT")
}

func TestAddLineReportsObligation(t *testing.T) {
	f := newFixture(t, 5)

	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/lines",
		map[string]string{"barcode": f.product.Barcode})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	require.Equal(t, true, data["added"])
	obligation, ok := data["obligation"].(map[string]any)
	require.True(t, ok, "scan of a kit trigger must surface the obligation")
	require.Equal(t, float64(1), obligation["needed"])
}

func TestAddLineUnknownBarcode(t *testing.T) {
	f := newFixture(t, 5)
	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/lines",
		map[string]string{"barcode": "0000000000000"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiscountRequiresPreset(t *testing.T) {
	f := newFixture(t, 5)
	f.do(t, http.MethodPost, "/api/v1/registers/caja-1/lines",
		map[string]string{"barcode": f.product.Barcode})

	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/discount", map[string]int{"pct": 7})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/registers/caja-1/discount", map[string]int{"pct": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	summary := data["summary"].(map[string]any)
	require.Equal(t, float64(31500), summary["total"])
}

func TestConfirmGiftsExactMatchOnly(t *testing.T) {
	f := newFixture(t, 5)
	f.do(t, http.MethodPost, "/api/v1/registers/caja-1/lines",
		map[string]string{"barcode": f.product.Barcode})

	giftID := f.kit.Items[0].ProductID.String()

	// Over-picking is rejected without mutating the ticket.
	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/gifts/confirm", map[string]any{
		"kitId": f.kit.ID.String(),
		"picks": []map[string]any{{"productId": giftID, "qty": 2}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Items outside the kit are rejected.
	rec = f.do(t, http.MethodPost, "/api/v1/registers/caja-1/gifts/confirm", map[string]any{
		"kitId": f.kit.ID.String(),
		"picks": []map[string]any{{"productId": uuid.NewString(), "qty": 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The exact selection lands as gift lines and clears the obligation.
	rec = f.do(t, http.MethodPost, "/api/v1/registers/caja-1/gifts/confirm", map[string]any{
		"kitId": f.kit.ID.String(),
		"picks": []map[string]any{{"productId": giftID, "qty": 1}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/registers/caja-1/gifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":null}`, rec.Body.String())

	// Gifts never move the total.
	rec = f.do(t, http.MethodGet, "/api/v1/registers/caja-1/", nil)
	data := decodeData(t, rec)
	summary := data["summary"].(map[string]any)
	require.Equal(t, float64(35000), summary["total"])
}

func TestSetQtyClampsToStock(t *testing.T) {
	f := newFixture(t, 5)
	rec := f.do(t, http.MethodPost, "/api/v1/registers/caja-1/lines",
		map[string]string{"barcode": f.product.Barcode})
	data := decodeData(t, rec)
	lineID := data["line"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/registers/caja-1/lines/%s/qty", lineID), map[string]int{"qty": 99})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData(t, rec)["summary"].(map[string]any)
	require.Equal(t, float64(350000), summary["subtotal"])
}

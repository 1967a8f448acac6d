package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/common"
	"github.com/fastship/fastship/pkg/domain"
	"github.com/fastship/fastship/pkg/domain/partner"
	"github.com/fastship/fastship/pkg/domain/shipment"
	handlers "github.com/fastship/fastship/pkg/handlers/http"
)

type fakeShipmentRepo struct {
	byID   map[uuid.UUID]*shipment.Shipment
	events []*shipment.Event
}

func (f *fakeShipmentRepo) Create(_ context.Context, s *shipment.Shipment) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeShipmentRepo) Update(_ context.Context, s *shipment.Shipment) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeShipmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeShipmentRepo) ListBySeller(context.Context, uuid.UUID) ([]*shipment.Shipment, error) {
	return nil, nil
}

func (f *fakeShipmentRepo) CountActiveByPartner(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeShipmentRepo) AddEvent(_ context.Context, e *shipment.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeShipmentRepo) ListEvents(_ context.Context, shipmentID uuid.UUID) ([]*shipment.Event, error) {
	var out []*shipment.Event
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].ShipmentID == shipmentID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

type fakePartnerRepo struct {
	partners []*partner.DeliveryPartner
}

func (f *fakePartnerRepo) Create(context.Context, *partner.DeliveryPartner) error { return nil }
func (f *fakePartnerRepo) FindByID(context.Context, uuid.UUID) (*partner.DeliveryPartner, error) {
	return nil, domain.ErrNotFound
}
func (f *fakePartnerRepo) FindByEmail(context.Context, string) (*partner.DeliveryPartner, error) {
	return nil, domain.ErrNotFound
}
func (f *fakePartnerRepo) List(context.Context) ([]*partner.DeliveryPartner, error) {
	return f.partners, nil
}

func newShipmentService(repo *fakeShipmentRepo, partners ...*partner.DeliveryPartner) *appshipment.Service {
	return appshipment.NewService(repo, &fakePartnerRepo{partners: partners}, logrus.New())
}

func TestTrackShipmentHandler_PublicView(t *testing.T) {
	repo := &fakeShipmentRepo{byID: make(map[uuid.UUID]*shipment.Shipment)}
	id := uuid.New()
	repo.byID[id] = &shipment.Shipment{
		ID:                 id,
		SellerID:           uuid.New(),
		Status:             shipment.StatusInTransit,
		ClientContactEmail: "client@example.com",
	}
	repo.events = []*shipment.Event{
		{ID: uuid.New(), ShipmentID: id, Status: shipment.StatusPlaced, Description: "assigned delivery partner"},
		{ID: uuid.New(), ShipmentID: id, Status: shipment.StatusInTransit, Location: "10001", Description: "scanned at 10001"},
	}

	app := fiber.New()
	app.Get("/api/v1/shipment/track", handlers.NewTrackShipmentHandler(logrus.New(), newShipmentService(repo)).Handle)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/shipment/track?id="+id.String(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "in_transit", view["status"])
	assert.NotContains(t, view, "client_contact_email", "tracking must not leak contact details")
	assert.NotContains(t, view, "seller_id")

	timeline, ok := view["timeline"].([]interface{})
	require.True(t, ok, "tracking view carries the event timeline")
	require.Len(t, timeline, 2)
	newest, ok := timeline[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "in_transit", newest["status"], "newest event first")
	assert.Equal(t, "scanned at 10001", newest["description"])
	assert.NotContains(t, newest, "shipment_id")
}

func TestTrackShipmentHandler_NotFound(t *testing.T) {
	repo := &fakeShipmentRepo{byID: make(map[uuid.UUID]*shipment.Shipment)}

	app := fiber.New()
	app.Get("/api/v1/shipment/track", handlers.NewTrackShipmentHandler(logrus.New(), newShipmentService(repo)).Handle)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/shipment/track?id="+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	bad, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/shipment/track?id=not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestCreateShipmentHandler_RequiresSeller(t *testing.T) {
	repo := &fakeShipmentRepo{byID: make(map[uuid.UUID]*shipment.Shipment)}

	app := fiber.New()
	app.Post("/api/v1/shipment", handlers.NewCreateShipmentHandler(logrus.New(), newShipmentService(repo)).Handle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipment",
		strings.NewReader(`{"content":"books","weight_kg":2,"destination_zip":"10001"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateShipmentHandler_PlacesShipment(t *testing.T) {
	repo := &fakeShipmentRepo{byID: make(map[uuid.UUID]*shipment.Shipment)}
	p := &partner.DeliveryPartner{
		ID:                  uuid.New(),
		ServiceableZipCodes: []string{"10001"},
		MaxHandlingCapacity: 5,
	}
	sellerID := uuid.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(common.PrincipalContextKey, sellerID.String())
		c.Locals(common.RoleContextKey, "seller")
		return c.Next()
	})
	app.Post("/api/v1/shipment", handlers.NewCreateShipmentHandler(logrus.New(), newShipmentService(repo, p)).Handle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipment",
		strings.NewReader(`{"content":"books","weight_kg":2,"destination_zip":"10001"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var placed shipment.Shipment
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.Equal(t, sellerID, placed.SellerID)
	assert.Equal(t, shipment.StatusPlaced, placed.Status)
	require.NotNil(t, placed.PartnerID)
	assert.Equal(t, p.ID, *placed.PartnerID)
}

func TestCreateShipmentHandler_NoServingPartner(t *testing.T) {
	repo := &fakeShipmentRepo{byID: make(map[uuid.UUID]*shipment.Shipment)}
	sellerID := uuid.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(common.PrincipalContextKey, sellerID.String())
		c.Locals(common.RoleContextKey, "seller")
		return c.Next()
	})
	app.Post("/api/v1/shipment", handlers.NewCreateShipmentHandler(logrus.New(), newShipmentService(repo)).Handle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipment",
		strings.NewReader(`{"content":"books","weight_kg":2,"destination_zip":"10001"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
}

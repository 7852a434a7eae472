package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/internal/application/batch"
	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/application/returns"
	"github.com/jhoicas/onu-almacen-api/internal/application/sectorreturn"
	"github.com/jhoicas/onu-almacen-api/internal/application/usecase"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/spreadsheet"
	apphttp "github.com/jhoicas/onu-almacen-api/internal/interfaces/http"
	"github.com/jhoicas/onu-almacen-api/internal/testutil"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

type apiTest struct {
	t   *testing.T
	app *fiber.App
	fx  *testutil.Fixture
}

func newAPI(t *testing.T) *apiTest {
	t.Helper()
	fx := testutil.NewFixture(t)
	log := logger.Nop()
	store := fx.Store

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		EquipmentUC:    equipment.NewUseCase(store, log),
		InspectionUC:   inspection.NewUseCase(store, log, inspection.Options{ApprovedState: entity.StateAvailable}),
		SectorReturnUC: sectorreturn.NewUseCase(store, log),
		ReturnUC:       returns.NewUseCase(store, log, returns.Options{}),
		BatchUC:        batch.NewUseCase(store, spreadsheet.NewReader(100), log, batch.Options{SampleSize: 3}),
		DeliveryUC:     delivery.NewUseCase(store, log, delivery.Options{SampleSize: 3}),
		WarehouseUC:    usecase.NewWarehouseUseCase(store),
		ModelUC:        usecase.NewModelUseCase(store),
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return &apiTest{t: t, app: app, fx: fx}
}

// call envía body como JSON con un token del rol dado y decodifica la respuesta.
func (a *apiTest) call(method, path, role string, body any) (int, map[string]any) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(a.t, role))
	}
	return a.do(req)
}

func (a *apiTest) do(req *http.Request) (int, map[string]any) {
	a.t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func id(v any) int64 {
	return int64(v.(float64))
}

func (a *apiTest) seedBatchWithEquipment(code string, n int) (batchID int64, deliveryID int64, equipmentIDs []int64) {
	a.t.Helper()
	status, b := a.call(http.MethodPost, "/api/batches", "bodeguero", map[string]any{
		"code": code, "vendor": "Huawei", "expected_quantity": n,
		"warehouse_id": a.fx.WarehouseID, "model_id": a.fx.ModelID, "unit_cost": "85000.50",
	})
	require.Equal(a.t, http.StatusCreated, status, b)
	batchID = id(b["id"])

	status, d := a.call(http.MethodPost, fmt.Sprintf("/api/batches/%d/deliveries", batchID), "bodeguero", map[string]any{
		"delivery_date": "2026-03-14", "quantity": n, "state": "COMPLETE",
	})
	require.Equal(a.t, http.StatusCreated, status, d)
	assert.EqualValues(a.t, 1, d["number"])
	deliveryID = id(d["id"])

	rows := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]string{
			"mac":         fmt.Sprintf("48:57:02:%s:00:%02X", code[len(code)-2:], i+1),
			"gpon_serial": fmt.Sprintf("HWTC%s%06X", code[len(code)-2:], i+1),
		})
	}
	status, imp := a.call(http.MethodPost, fmt.Sprintf("/api/batches/%d/import", batchID), "bodeguero", map[string]any{
		"delivery_number": 1, "rows": rows,
	})
	require.Equal(a.t, http.StatusOK, status, imp)
	assert.EqualValues(a.t, n, imp["created"])
	for _, v := range imp["equipment_ids"].([]any) {
		equipmentIDs = append(equipmentIDs, id(v))
	}
	return batchID, deliveryID, equipmentIDs
}

func TestHealth_Publico(t *testing.T) {
	api := newAPI(t)
	status, body := api.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAPI_RequiereToken(t *testing.T) {
	api := newAPI(t)
	status, body := api.call(http.MethodGet, "/api/equipment", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAPI_RequestIDEnRespuesta(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestFlujoLaboratorioYDevolucion(t *testing.T) {
	api := newAPI(t)
	batchID, _, ids := api.seedBatchWithEquipment("L-01", 2)
	eq := ids[0]

	status, body := api.call(http.MethodPost, fmt.Sprintf("/api/equipment/%d/state", eq), "tecnico",
		map[string]any{"state": "EN_LAB", "reason": "prueba de ingreso"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "EN_LAB", body["state"])

	status, body = api.call(http.MethodPost, "/api/inspections", "tecnico", map[string]any{
		"equipment_id": eq, "logical_serial_match": true, "wifi_2_4ghz": true,
		"wifi_5ghz": false, "ethernet_port": true, "lan_port": true,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, false, body["approved"])
	assert.Equal(t, "DEFECTIVE", body["resulting_state"])

	// el técnico no gestiona devoluciones a proveedor
	status, _ = api.call(http.MethodPost, "/api/returns", "tecnico", map[string]any{})
	assert.Equal(t, http.StatusForbidden, status)

	// RETURNED_TO_VENDOR solo por el flujo de devoluciones
	status, body = api.call(http.MethodPost, fmt.Sprintf("/api/equipment/%d/state", eq), "bodeguero",
		map[string]any{"state": "RETURNED_TO_VENDOR"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	// el segundo equipo sigue NEW: la devolución lo rechaza con su estado
	status, body = api.call(http.MethodPost, "/api/returns", "bodeguero", map[string]any{
		"batch_id": batchID, "reason": "falla wifi 5GHz", "lab_report_number": "LAB-77",
		"equipment_ids": []int64{eq, ids[1]},
	})
	require.Equal(t, http.StatusConflict, status, body)
	assert.Equal(t, "NOT_DEFECTIVE", body["code"])

	status, body = api.call(http.MethodPost, "/api/returns", "bodeguero", map[string]any{
		"batch_id": batchID, "reason": "falla wifi 5GHz", "lab_report_number": "LAB-77",
		"equipment_ids": []int64{eq},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "PENDING", body["state"])
	returnID := id(body["id"])

	status, body = api.call(http.MethodPost, fmt.Sprintf("/api/returns/%d/send", returnID), "bodeguero", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "SENT", body["state"])

	status, body = api.call(http.MethodGet, fmt.Sprintf("/api/equipment/%d", eq), "tecnico", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "RETURNED_TO_VENDOR", body["state"])
	assert.Len(t, body["history"], 4)
}

func TestBorradoEntrega_PideConfirmacion(t *testing.T) {
	api := newAPI(t)
	_, deliveryID, _ := api.seedBatchWithEquipment("L-02", 3)

	path := fmt.Sprintf("/api/deliveries/%d", deliveryID)
	status, body := api.call(http.MethodDelete, path, "bodeguero", nil)
	require.Equal(t, http.StatusConflict, status, body)
	assert.Equal(t, "REQUIRES_CONFIRMATION", body["code"])
	details := body["details"].(map[string]any)
	assert.EqualValues(t, 3, details["dependent_count"])
	assert.ElementsMatch(t, []any{"detach", "purge"}, details["strategies"])

	status, body = api.call(http.MethodDelete, path+"?force=true&strategy=detach", "bodeguero", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["deleted"])
	assert.EqualValues(t, 3, body["affected"])
}

func TestErrores_Mapeo(t *testing.T) {
	api := newAPI(t)
	api.seedBatchWithEquipment("L-03", 1)

	status, body := api.call(http.MethodGet, "/api/equipment/9999", "tecnico", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = api.call(http.MethodGet, "/api/equipment/abc", "tecnico", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])

	status, body = api.call(http.MethodPost, "/api/batches", "bodeguero", map[string]any{
		"code": "l-03", "vendor": "Huawei", "expected_quantity": 1,
		"warehouse_id": api.fx.WarehouseID, "model_id": api.fx.ModelID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_IDENTIFIER", body["code"])
	assert.Equal(t, "batch_code", body["details"].(map[string]any)["field"])

	status, body = api.call(http.MethodPost, "/api/batches", "bodeguero", map[string]any{
		"code": "L-99", "vendor": "Huawei", "expected_quantity": 0,
		"warehouse_id": api.fx.WarehouseID, "model_id": api.fx.ModelID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])

	status, body = api.call(http.MethodPost, "/api/returns", "bodeguero", map[string]any{
		"batch_id": 1, "reason": "x", "lab_report_number": "LAB-1", "equipment_ids": []int64{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_SELECTION", body["code"])
}

func TestImportFile_CSV(t *testing.T) {
	api := newAPI(t)
	status, b := api.call(http.MethodPost, "/api/batches", "bodeguero", map[string]any{
		"code": "L-04", "vendor": "ZTE", "expected_quantity": 2,
		"warehouse_id": api.fx.WarehouseID, "model_id": api.fx.ModelID,
	})
	require.Equal(t, http.StatusCreated, status, b)
	batchID := id(b["id"])
	status, _ = api.call(http.MethodPost, fmt.Sprintf("/api/batches/%d/deliveries", batchID), "bodeguero",
		map[string]any{"delivery_date": "2026-03-14", "quantity": 2, "state": "PARTIAL"})
	require.Equal(t, http.StatusCreated, status)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "entrega1.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("MAC,Serie GPON\n48:57:02:04:00:01,ZTEG00000001\n48:57:02:04:00:01,ZTEG00000002\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("delivery_number", "1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/batches/%d/import/file", batchID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	status, body := api.do(req)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["created"])
	assert.Len(t, body["errors"], 1)
}

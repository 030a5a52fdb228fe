package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dualtherm"
	"dualtherm/internal/service"
)

func addAuth(req *http.Request, token string) {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
}

func TestThermostatHandlers_StateModeTemperaturePreset(t *testing.T) {
	cur := 19.4
	target := 21.0
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{state: dualtherm.ThermostatState{
		Mode:         "HEAT",
		Action:       "heating",
		Preset:       "none",
		CurrentTempC: &cur,
		TargetTempC:  &target,
		HeaterOn:     true,
	}}
	th := &mockThermostat{}
	s := &service.Service{
		Authorization: auth,
		Monitoring:    mon,
		Thermostat:    th,
	}
	r := newTestRouter(s)

	// GET state requires auth → 401 without header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/thermostat/state", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// With auth → 200 and state body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/thermostat/state", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st dualtherm.ThermostatState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Mode != "HEAT" || st.Action != "heating" || !st.HeaterOn {
		t.Fatalf("unexpected state: %+v", st)
	}

	// POST /mode → 200, passes mode through and includes state
	body := bytes.NewBufferString(`{"mode":"HEAT_COOL"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/thermostat/mode", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("mode status=%d, body=%s", w.Code, w.Body.String())
	}
	if th.setModeCalls != 1 || th.lastMode != "HEAT_COOL" {
		t.Fatalf("SetMode calls=%d last=%q", th.setModeCalls, th.lastMode)
	}
	var modeResp struct {
		Status string                    `json:"status"`
		Mode   string                    `json:"mode"`
		State  dualtherm.ThermostatState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &modeResp)
	if modeResp.Status != statusModeSet || modeResp.Mode != "HEAT_COOL" {
		t.Fatalf("bad mode response: %+v", modeResp)
	}
	if modeResp.State.Mode != "HEAT" {
		t.Fatalf("state missing/invalid in response: %+v", modeResp.State)
	}

	// POST /temperature → 200, forwards pointer params
	body = bytes.NewBufferString(`{"target_temp_low_c":18,"target_temp_high_c":26}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/thermostat/temperature", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("temperature status=%d, body=%s", w.Code, w.Body.String())
	}
	if th.setTempCalls != 1 {
		t.Fatalf("SetTemperature calls=%d", th.setTempCalls)
	}
	p := th.lastParams
	if p.TargetTempC != nil || p.TargetTempLowC == nil || *p.TargetTempLowC != 18 ||
		p.TargetTempHighC == nil || *p.TargetTempHighC != 26 {
		t.Fatalf("wrong SetTemperature params: %+v", p)
	}

	// POST /preset → 200
	body = bytes.NewBufferString(`{"preset":"away"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/thermostat/preset", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preset status=%d, body=%s", w.Code, w.Body.String())
	}
	if th.setPreCalls != 1 || th.lastPreset != "away" {
		t.Fatalf("SetPreset calls=%d last=%q", th.setPreCalls, th.lastPreset)
	}
}

func TestSetMode_BadBodyAndServiceError(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	th := &mockThermostat{setModeErr: errors.New("unknown mode")}
	s := &service.Service{
		Authorization: auth,
		Thermostat:    th,
		Monitoring:    &mockMonitoring{},
	}
	r := newTestRouter(s)

	// Missing required field → 400, service never called
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/thermostat/mode", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing mode, got %d", w.Code)
	}
	if th.setModeCalls != 0 {
		t.Fatalf("service called despite bad body")
	}

	// Service rejection → 400 with error body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/thermostat/mode", bytes.NewBufferString(`{"mode":"TURBO"}`))
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rejected mode, got %d", w.Code)
	}
}

func TestGetState_ServiceError(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Monitoring:    &mockMonitoring{err: errors.New("boom")},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/thermostat/state", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}

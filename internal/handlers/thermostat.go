package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dualtherm/internal/service"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusModeSet = "mode_set"
	statusTargets = "temperature_set"
	statusPreset  = "preset_set"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for setting the operating mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // OFF | HEAT | COOL | HEAT_COOL
}

// Request DTO for setpoint changes. Single-target installs use target_temp_c;
// range installs use the low/high pair.
type temperatureRequest struct {
	TargetTempC     *float64 `json:"target_temp_c,omitempty"`
	TargetTempLowC  *float64 `json:"target_temp_low_c,omitempty"`
	TargetTempHighC *float64 `json:"target_temp_high_c,omitempty"`
}

// Request DTO for preset changes.
type presetRequest struct {
	Preset string `json:"preset" binding:"required"` // none | away
}

// SetModeRequest is an exported model for Swagger docs of the setMode payload.
type SetModeRequest struct {
	// Mode to set. Allowed: OFF, HEAT, COOL, HEAT_COOL
	Mode string `json:"mode" example:"HEAT"`
}

// SetTemperatureRequest is an exported model for Swagger docs of the setTemperature payload.
type SetTemperatureRequest struct {
	// Single target temperature in Celsius (single-target installs)
	TargetTempC *float64 `json:"target_temp_c,omitempty" example:"21.5"`
	// Lower bound of the comfort range in Celsius (range installs)
	TargetTempLowC *float64 `json:"target_temp_low_c,omitempty" example:"18"`
	// Upper bound of the comfort range in Celsius (range installs)
	TargetTempHighC *float64 `json:"target_temp_high_c,omitempty" example:"26"`
}

// SetPresetRequest is an exported model for Swagger docs of the setPreset payload.
type SetPresetRequest struct {
	// Preset to apply. Allowed: none, away
	Preset string `json:"preset" example:"away"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get thermostat state
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "thermostat_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Set operating mode
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetMode(ctx, req.Mode); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_mode_failed", "err", err, "mode", req.Mode)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusModeSet, gin.H{"mode": req.Mode})
}

// @Summary      Set target temperature(s)
// @Description  Single-target installs take target_temp_c; range installs take target_temp_low_c/target_temp_high_c (either side may be omitted)
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetTemperatureRequest  true  "Setpoint payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	params := service.TemperatureParams{
		TargetTempC:     req.TargetTempC,
		TargetTempLowC:  req.TargetTempLowC,
		TargetTempHighC: req.TargetTempHighC,
	}
	if err := h.services.Thermostat.SetTemperature(ctx, params); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_temperature_failed", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusTargets, gin.H{})
}

// @Summary      Set preset
// @Description  "away" saves the current target and applies the configured away temperature; "none" restores it
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetPresetRequest  true  "Preset payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/preset [post]
// @Security     BearerAuth
func (h *Handler) setPreset(c *gin.Context) {
	var req presetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetPreset(ctx, req.Preset); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_preset_failed", "err", err, "preset", req.Preset)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusPreset, gin.H{"preset": req.Preset})
}

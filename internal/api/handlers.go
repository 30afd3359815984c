package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"netalab-backend/internal/bus"
	"netalab-backend/internal/catalog"
	"netalab-backend/internal/classify"
	"netalab-backend/internal/sampler"
)

type Handler struct {
	Registry *catalog.Registry
	Sampler  *sampler.Sampler
	Bus      *bus.Publisher
}

type classifyRequest struct {
	Value       *float64           `json:"value"`
	Gases       map[string]float64 `json:"gases"`
	Baseline    *float64           `json:"baseline"`
	NameplateKv *float64           `json:"nameplateKv"`
	AppliedKv   *float64           `json:"appliedKv"`
}

type seriesRequest struct {
	Values   []float64 `json:"values"`
	Raw      string    `json:"raw"`
	Baseline *float64  `json:"baseline"`
}

type simulateRequest struct {
	Scenario string `json:"scenario"`
	Count    int    `json:"count"`
}

type criterionSummary struct {
	ID         string                  `json:"id"`
	TestID     string                  `json:"testId"`
	TestName   string                  `json:"testName"`
	Label      string                  `json:"label"`
	Parameter  string                  `json:"parameter"`
	Unit       string                  `json:"unit"`
	Evaluation catalog.EvaluationType  `json:"evaluation"`
	Rules      []catalog.ThresholdRule `json:"rules,omitempty"`
	Note       string                  `json:"note,omitempty"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/library", func(r chi.Router) {
		r.Get("/", h.handleLibraryList)
		r.Get("/{testId}", h.handleLibraryGet)
		r.Get("/{testId}/voltage", h.handleVoltage)
	})
	r.Route("/criteria", func(r chi.Router) {
		r.Get("/", h.handleCriteriaList)
		r.Post("/{id}/classify", h.handleClassify)
		r.Post("/{id}/series", h.handleSeries)
		r.Post("/{id}/simulate", h.handleSimulate)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "criteria": len(h.Registry.CriterionIDs())})
}

func (h *Handler) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	phases := []string{"Acceptance", "Maintenance"}
	if raw := r.URL.Query().Get("phase"); raw != "" {
		phases = strings.Split(raw, ",")
	}
	tests := h.Registry.Filter(keyword, phases)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tests": tests})
}

func (h *Handler) handleLibraryGet(w http.ResponseWriter, r *http.Request) {
	test, ok := h.Registry.Test(chi.URLParam(r, "testId"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "test not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "test": test})
}

func (h *Handler) handleVoltage(w http.ResponseWriter, r *http.Request) {
	test, ok := h.Registry.Test(chi.URLParam(r, "testId"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "test not found"})
		return
	}
	if len(test.KvTable) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "test has no voltage selection table"})
		return
	}
	nameplate, err := strconv.ParseFloat(r.URL.Query().Get("nameplateKv"), 64)
	if err != nil || nameplate <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "code": "VALUE_REQUIRED", "message": "nameplateKv must be a positive number"})
		return
	}
	recommended := test.RecommendTestVoltage(nameplate)
	applied := recommended
	if raw := r.URL.Query().Get("appliedKv"); raw != "" {
		applied, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "code": "VALUE_REQUIRED", "message": "appliedKv must be a number"})
			return
		}
	}
	assessment := catalog.AssessAppliedVoltage(applied, recommended)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "nameplateKv": nameplate, "appliedKv": applied, "assessment": assessment})
}

func (h *Handler) handleCriteriaList(w http.ResponseWriter, r *http.Request) {
	items := make([]criterionSummary, 0)
	for _, id := range h.Registry.CriterionIDs() {
		ref, _ := h.Registry.Criterion(id)
		items = append(items, criterionSummary{
			ID:         ref.Criterion.ID,
			TestID:     ref.Test.ID,
			TestName:   ref.Test.Name,
			Label:      ref.Criterion.Label,
			Parameter:  ref.Criterion.Parameter,
			Unit:       ref.Criterion.Unit,
			Evaluation: ref.Criterion.Evaluation,
			Rules:      ref.Criterion.Rules,
			Note:       ref.Criterion.Note,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "criteria": items})
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.Registry.Criterion(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "criterion not found"})
		return
	}
	var req classifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}

	var result classify.Result
	var err error
	switch {
	case ref.Criterion.Evaluation == catalog.EvaluationComposite:
		result, err = classify.ClassifyGases(ref, req.Gases)
	case ref.Criterion.Evaluation == catalog.EvaluationQualitative:
		result, err = classify.Classify(ref, 0, nil)
	case req.Value == nil:
		err = &classify.InputError{Code: "VALUE_REQUIRED", Message: "a numeric value is required"}
	default:
		result, err = classify.Classify(ref, *req.Value, req.Baseline)
	}
	if err != nil {
		writeClassifyError(w, err)
		return
	}

	payload := map[string]any{"ok": true, "result": result}
	if req.NameplateKv != nil && len(ref.Test.KvTable) > 0 {
		recommended := ref.Test.RecommendTestVoltage(*req.NameplateKv)
		applied := recommended
		if req.AppliedKv != nil {
			applied = *req.AppliedKv
		}
		payload["voltage"] = catalog.AssessAppliedVoltage(applied, recommended)
	}

	if h.Bus != nil {
		event := bus.ClassificationEvent{
			ID:          uuid.NewString(),
			CriterionID: ref.Criterion.ID,
			Status:      result.Status,
			At:          time.Now().UTC(),
		}
		if req.Value != nil {
			event.Value = *req.Value
		}
		_ = h.Bus.Publish(bus.SubjectClassifications, event)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.Registry.Criterion(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "criterion not found"})
		return
	}
	var req seriesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	values := req.Values
	var invalid []string
	if len(values) == 0 && req.Raw != "" {
		values, invalid = classify.ParseSeries(req.Raw)
	}
	results, err := classify.ClassifySeries(ref, values, req.Baseline)
	if err != nil {
		writeClassifyError(w, err)
		return
	}
	summary := classify.SummarizeSeries(values, results, ref.Criterion)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"values":      values,
		"invalid":     invalid,
		"assessments": results,
		"summary":     summary,
	})
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.Registry.Criterion(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "criterion not found"})
		return
	}
	var req simulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	scenario, ok := catalog.ParseScenario(req.Scenario)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "code": "SCENARIO_UNKNOWN", "message": "scenario must be Healthy, Drifting, or Out of tolerance"})
		return
	}
	series, err := h.Sampler.SimulateSeries(ref.Criterion.ID, scenario, req.Count)
	if err != nil {
		var cfgErr *catalog.ConfigError
		if errors.As(err, &cfgErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "code": cfgErr.Code, "message": cfgErr.Message})
			return
		}
		writeClassifyError(w, err)
		return
	}
	results, err := classify.ClassifySeries(ref, series.Values, series.Baseline)
	if err != nil {
		writeClassifyError(w, err)
		return
	}
	summary := classify.SummarizeSeries(series.Values, results, ref.Criterion)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"scenario":    scenario,
		"values":      series.Values,
		"baseline":    series.Baseline,
		"assessments": results,
		"summary":     summary,
	})
}

func writeClassifyError(w http.ResponseWriter, err error) {
	var inputErr *classify.InputError
	if errors.As(err, &inputErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "code": inputErr.Code, "message": inputErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

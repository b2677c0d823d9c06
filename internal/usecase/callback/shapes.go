package callback

import (
	"encoding/json"

	apperrors "github.com/meetsync-team/meetsync/errors"
)

// PayloadShape identifies which of the known automation result layouts a
// callback body follows.
type PayloadShape string

const (
	// ShapeFlat carries analysis fields at the top level.
	ShapeFlat PayloadShape = "flat"
	// ShapeAnalyze nests everything under an "analyze" object.
	ShapeAnalyze PayloadShape = "analyze"
	// ShapeInsights splits results into "action_items" and "ai_insights".
	ShapeInsights PayloadShape = "insights"
)

// Analysis is the normalized internal result every shape maps into. Fields
// not covered by the known layouts survive in Extra.
type Analysis struct {
	Summary      *string                `json:"summary,omitempty"`
	ActionItems  []string               `json:"action_items,omitempty"`
	Insights     map[string]interface{} `json:"insights,omitempty"`
	OverallScore *float64               `json:"overall_score,omitempty"`
	Transcript   *string                `json:"transcript,omitempty"`
	Failed       bool                   `json:"failed,omitempty"`
	FailReason   *string                `json:"fail_reason,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// classified ties a recognized shape to its raw body
type classified struct {
	Shape PayloadShape
	body  map[string]interface{}
}

// reserved keys consumed by the mappers; everything else is passthrough
var reservedKeys = map[string]bool{
	"meeting_id": true, "callback_token": true, "token": true,
	"summary": true, "action_items": true, "ai_insights": true,
	"analyze": true, "overall_score": true, "score": true,
	"transcript": true, "status": true, "error": true, "insights": true,
}

// Classify decides the payload shape before any mapping happens, so a
// malformed body is rejected in one place instead of half-applied.
func Classify(raw []byte) (*classified, error) {
	body := map[string]interface{}{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperrors.ErrInvalidPayload()
	}

	if _, ok := body["analyze"].(map[string]interface{}); ok {
		return &classified{Shape: ShapeAnalyze, body: body}, nil
	}
	_, hasActions := body["action_items"]
	_, hasAI := body["ai_insights"]
	if hasActions || hasAI {
		return &classified{Shape: ShapeInsights, body: body}, nil
	}
	return &classified{Shape: ShapeFlat, body: body}, nil
}

// Map converts the classified body into the normalized analysis structure
func (c *classified) Map() *Analysis {
	switch c.Shape {
	case ShapeAnalyze:
		return mapAnalyze(c.body)
	case ShapeInsights:
		return mapInsights(c.body)
	default:
		return mapFlat(c.body)
	}
}

func mapFlat(body map[string]interface{}) *Analysis {
	a := &Analysis{}
	a.Summary = strPtr(body, "summary")
	a.Transcript = strPtr(body, "transcript")
	a.OverallScore = numPtr(body, "overall_score")
	if a.OverallScore == nil {
		a.OverallScore = numPtr(body, "score")
	}
	a.ActionItems = strSlice(body, "action_items")
	if insights, ok := body["insights"].(map[string]interface{}); ok {
		a.Insights = insights
	}
	applyStatus(a, body)
	a.Extra = passthrough(body)
	return a
}

func mapAnalyze(body map[string]interface{}) *Analysis {
	nested, _ := body["analyze"].(map[string]interface{})
	a := mapFlat(nested)
	// failure markers and extras can live on the envelope too
	applyStatus(a, body)
	for k, v := range passthrough(body) {
		if a.Extra == nil {
			a.Extra = map[string]interface{}{}
		}
		a.Extra[k] = v
	}
	return a
}

func mapInsights(body map[string]interface{}) *Analysis {
	a := &Analysis{}
	a.Summary = strPtr(body, "summary")
	a.Transcript = strPtr(body, "transcript")
	a.ActionItems = strSlice(body, "action_items")
	if insights, ok := body["ai_insights"].(map[string]interface{}); ok {
		a.Insights = insights
		a.OverallScore = numPtr(insights, "overall_score")
	}
	if a.OverallScore == nil {
		a.OverallScore = numPtr(body, "overall_score")
	}
	applyStatus(a, body)
	a.Extra = passthrough(body)
	return a
}

func applyStatus(a *Analysis, body map[string]interface{}) {
	if status, ok := body["status"].(string); ok && status == "failed" {
		a.Failed = true
	}
	if errText, ok := body["error"].(string); ok && errText != "" {
		a.Failed = true
		a.FailReason = &errText
	}
}

func passthrough(body map[string]interface{}) map[string]interface{} {
	extra := map[string]interface{}{}
	for k, v := range body {
		if !reservedKeys[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

func strPtr(body map[string]interface{}, key string) *string {
	value, ok := body[key].(string)
	if !ok || value == "" {
		return nil
	}
	return &value
}

func numPtr(body map[string]interface{}, key string) *float64 {
	value, ok := body[key].(float64)
	if !ok {
		return nil
	}
	return &value
}

func strSlice(body map[string]interface{}, key string) []string {
	raw, ok := body[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, entry := range raw {
		if text, ok := entry.(string); ok {
			items = append(items, text)
		}
	}
	return items
}

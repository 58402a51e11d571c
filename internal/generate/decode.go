package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acheong08/neuromap/pkg/models"
)

var validate = validator.New()

// DecodeRoadmap parses and validates roadmap JSON produced by the model
func DecodeRoadmap(text []byte) (*models.RoadmapData, error) {
	var data models.RoadmapData
	if err := json.Unmarshal(text, &data); err != nil {
		return nil, fmt.Errorf("failed to parse roadmap: %w", err)
	}
	for i := range data.Nodes {
		data.Nodes[i].ID = strings.TrimSpace(data.Nodes[i].ID)
		data.Nodes[i].ParentID = strings.TrimSpace(data.Nodes[i].ParentID)
	}
	if err := validateStruct(&data); err != nil {
		return nil, fmt.Errorf("invalid roadmap: %w", err)
	}
	return &data, nil
}

// DecodeDetails parses and validates node details JSON produced by the model.
// Resource URLs that are not valid URLs are dropped instead of failing the response.
func DecodeDetails(text []byte) (*models.NodeDetailsResponse, error) {
	var details models.NodeDetailsResponse
	if err := json.Unmarshal(text, &details); err != nil {
		return nil, fmt.Errorf("failed to parse node details: %w", err)
	}
	for i := range details.Resources {
		res := &details.Resources[i]
		res.URL = strings.TrimSpace(res.URL)
		if res.URL != "" && validate.Var(res.URL, "url") != nil {
			res.URL = ""
		}
	}
	if err := validateStruct(&details); err != nil {
		return nil, fmt.Errorf("invalid node details: %w", err)
	}
	return &details, nil
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError flattens validator errors into one readable message
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s (got %q)", field, e.Param(), e.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

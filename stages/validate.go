package stages

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/slipway-sh/slipway/pipeline"
)

//go:embed deploy_request_schema.json
var deployRequestSchema []byte

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewBytesLoader(deployRequestSchema)
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// ValidateExecutor performs the structural checks of the validation
// stage: the deploy request is checked against the embedded request
// schema and the source bundle is analyzed for emptiness and size.
type ValidateExecutor struct {
	Unit        time.Duration
	MaxSourceKB int
	FailReason  string
}

func (e *ValidateExecutor) Execute(ctx context.Context, in pipeline.Input, emit pipeline.EmitFunc) (string, error) {
	if err := emit(pipeline.Emission{Kind: pipeline.KindInfo, Message: "Analyzing source bundle", Delay: e.Unit}); err != nil {
		return "", err
	}
	if e.FailReason != "" {
		return "", &pipeline.ValidationError{Reason: e.FailReason}
	}

	if strings.TrimSpace(in.Source) == "" {
		return "", &pipeline.ValidationError{Reason: "source is empty"}
	}
	sizeKB := float64(len(in.Source)) / 1024
	if e.MaxSourceKB > 0 && sizeKB > float64(e.MaxSourceKB) {
		return "", &pipeline.ValidationError{
			Reason: fmt.Sprintf("source bundle is %.1f KB, limit is %d KB", sizeKB, e.MaxSourceKB),
		}
	}

	if errs, err := validateRequest(in); err != nil {
		return "", err
	} else if len(errs) > 0 {
		return "", &pipeline.ValidationError{Reason: strings.Join(errs, "; ")}
	}

	size := fmt.Sprintf("%.1f KB", sizeKB)
	if err := emit(pipeline.Emission{
		Kind:    pipeline.KindSuccess,
		Message: fmt.Sprintf("Source validated (%s)", size),
		Delay:   e.Unit,
	}); err != nil {
		return "", err
	}
	return size, nil
}

// validateRequest checks the deploy request against the embedded JSON
// schema. It returns schema violation descriptions, or an error when
// the schema itself cannot be compiled or evaluated.
func validateRequest(in pipeline.Input) ([]string, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling deploy request schema: %w", err)
	}

	doc, err := json.Marshal(map[string]any{
		"project":   in.Project,
		"sizeBytes": len(in.Source),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding deploy request: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating deploy request: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

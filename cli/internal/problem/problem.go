// Package problem reads MDP problem files for dsctl.
//
// A problem file holds the same keys as the solve request body (TPM, TRM,
// s_ref, epsilon, mode and the optional budgets). Files ending in .json are
// decoded as JSON; anything else as YAML, which also accepts JSON text.
package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decisionstack/decisionstack/pkg/rvi"
	"github.com/decisionstack/decisionstack/pkg/types"
)

// Format selects the decoder.
type Format int

const (
	YAML Format = iota
	JSON
)

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Load reads and decodes the problem file at path.
func Load(path string) (types.SolveRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.SolveRequest{}, fmt.Errorf("problem: read %q: %w", path, err)
	}
	req, err := Decode(data, FormatFor(path))
	if err != nil {
		return types.SolveRequest{}, fmt.Errorf("problem: %s: %w", path, err)
	}
	return req, nil
}

// Decode parses one problem document. Unknown keys are rejected, and TPM,
// TRM and s_ref must be present, so a typo such as "sref" fails loudly
// instead of defaulting to state 0.
func Decode(data []byte, f Format) (types.SolveRequest, error) {
	var req types.SolveRequest
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return types.SolveRequest{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil {
			return types.SolveRequest{}, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if len(req.TPM) == 0 {
		return types.SolveRequest{}, errors.New("missing TPM")
	}
	if len(req.TRM) == 0 {
		return types.SolveRequest{}, errors.New("missing TRM")
	}
	if req.SRef == nil {
		return types.SolveRequest{}, fmt.Errorf("%w: missing s_ref", rvi.ErrInvalidParameter)
	}
	return req, nil
}

// Build validates req and turns it into a solver problem. req must come from
// Decode or otherwise carry a non-nil SRef.
func Build(req types.SolveRequest) (rvi.Problem, error) {
	return rvi.NewProblem(req.TPM, req.TRM, *req.SRef, req.Epsilon, req.Mode)
}

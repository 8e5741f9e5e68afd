// internal/search/command.go
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"foldrun-core/template"
	"foldrun/internal/extcmd"
)

// Command runs an external program per search. The Request is written to its
// stdin as JSON and a Response is read back from stdout.
type Command struct {
	Argv []string
}

func (c Command) Search(ctx context.Context, req Request) (Response, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	out, err := extcmd.Run(ctx, c.Argv, in)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return Response{}, fmt.Errorf("search: decode response: %w", err)
	}
	if err := resp.check(req); err != nil {
		return Response{}, err
	}
	return resp, nil
}

type templateRequest struct {
	A3M          string `json:"a3m"`
	TemplatePath string `json:"template_path"`
	Sequence     string `json:"sequence"`
}

// TemplateCommand featurizes templates through an external program that
// answers with a JSON feature dict.
type TemplateCommand struct {
	Argv []string
}

func (c TemplateCommand) Featurize(ctx context.Context, a3m, templatePath, seq string) (template.Features, error) {
	in, err := json.Marshal(templateRequest{A3M: a3m, TemplatePath: templatePath, Sequence: seq})
	if err != nil {
		return nil, err
	}
	out, err := extcmd.Run(ctx, c.Argv, in)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	var f template.Features
	if err := json.Unmarshal(out, &f); err != nil {
		return nil, fmt.Errorf("templates: decode features: %w", err)
	}
	return f, nil
}

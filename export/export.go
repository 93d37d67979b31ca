// Package export renders patterns into files for other programs: a text
// step grid, a C header with the step table, and the JSON and YAML pattern
// formats that acidbox itself reads.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/version"
)

//go:embed templates/*
var templates embed.FS

type (
	Exporter struct {
		Template *template.Template
	}

	// Data is what the templates are executed with.
	Data struct {
		Params       acidbox.Params
		Steps        []StepData
		Version      string
		TickInterval float64 // seconds
		Cutoff       float64 // effective filter cutoff, Hz
	}

	StepData struct {
		acidbox.Step
		Index     int
		Pitch     acidbox.Pitch
		Name      string // the pitch, or "--" for an inactive step
		Frequency float64
	}
)

// templateFormats maps output formats to the template rendering them.
var templateFormats = map[string]string{
	"txt": "pattern.txt",
	"h":   "pattern.h",
}

// New returns an exporter using the built-in templates.
func New() (*Exporter, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templates, "templates/*")
	if err != nil {
		return nil, fmt.Errorf("could not parse export templates: %v", err)
	}
	return &Exporter{Template: tmpl}, nil
}

// Formats lists the supported output formats, which are also the file
// extensions of the output.
func Formats() []string {
	ret := []string{"json", "yml"}
	for f := range templateFormats {
		ret = append(ret, f)
	}
	sort.Strings(ret)
	return ret
}

// Export renders the pattern in the given format.
func (e *Exporter) Export(format string, pattern acidbox.Pattern, params acidbox.Params) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "json":
		if err := pattern.WriteJSON(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yml", "yaml":
		if err := pattern.WriteYAML(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	name, ok := templateFormats[format]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if err := e.Template.ExecuteTemplate(&buf, name, NewData(pattern, params)); err != nil {
		return nil, fmt.Errorf(`could not execute template "%v": %v`, name, err)
	}
	return buf.Bytes(), nil
}

func NewData(pattern acidbox.Pattern, params acidbox.Params) Data {
	d := Data{
		Params:       params,
		Version:      version.VersionOrHash,
		TickInterval: params.TickInterval(),
		Cutoff:       params.FilterCutoff(),
	}
	for i, s := range pattern {
		sd := StepData{
			Step:      s,
			Index:     i,
			Pitch:     s.Pitch(),
			Name:      "--",
			Frequency: s.Pitch().Frequency(params.Tuning, params.MasterTune),
		}
		if s.Active {
			sd.Name = sd.Pitch.String()
		}
		d.Steps = append(d.Steps, sd)
	}
	return d
}

// Package appdag loads application (job) DAG descriptors: a task list plus
// the inter-task communication-volume matrix, decoded from the same YAML
// style as pkg/config for consistency across the run's input files.
package appdag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dashsim/simcore/pkg/model"
	"gopkg.in/yaml.v3"
)

// taskDoc mirrors model.TaskTemplate field-for-field but with YAML tags;
// kept separate so model stays free of serialization concerns.
type taskDoc struct {
	Name             string `yaml:"name"`
	BaseID           int    `yaml:"base_id"`
	Predecessors     []int  `yaml:"predecessors"`
	InputPacketSize  uint64 `yaml:"input_packet_size"`
	OutputPacketSize uint64 `yaml:"output_packet_size"`
}

type appDoc struct {
	Name    string     `yaml:"name"`
	Tasks   []taskDoc  `yaml:"tasks"`
	CommVol [][]uint64 `yaml:"comm_vol"`
}

// Load decodes a single application descriptor file.
func Load(path string, allowMultiHeadTail bool) (*model.Application, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("appdag: read %s: %w", path, err)
	}
	var doc appDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("appdag: parse %s: %w", path, err)
	}
	app := toApplication(doc)
	if err := app.Validate(allowMultiHeadTail); err != nil {
		return nil, err
	}
	return app, nil
}

// LoadDir decodes every "*.yaml"/"*.yml" file in dir, keyed by Application.Name.
func LoadDir(dir string, allowMultiHeadTail bool) (map[string]*model.Application, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("appdag: read dir %s: %w", dir, err)
	}
	out := make(map[string]*model.Application, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		app, err := Load(filepath.Join(dir, e.Name()), allowMultiHeadTail)
		if err != nil {
			return nil, err
		}
		out[app.Name] = app
	}
	return out, nil
}

func toApplication(doc appDoc) *model.Application {
	tasks := make([]model.TaskTemplate, len(doc.Tasks))
	for i, td := range doc.Tasks {
		tasks[i] = model.TaskTemplate{
			Name:             td.Name,
			BaseID:           td.BaseID,
			Predecessors:     td.Predecessors,
			InputPacketSize:  model.Bits(td.InputPacketSize),
			OutputPacketSize: model.Bits(td.OutputPacketSize),
		}
	}
	// Head: no predecessors. Tail: referenced by nobody as a predecessor.
	referenced := make(map[int]bool, len(doc.Tasks))
	for _, td := range doc.Tasks {
		for _, p := range td.Predecessors {
			referenced[p] = true
		}
	}
	for i := range tasks {
		tasks[i].Head = len(tasks[i].Predecessors) == 0
		tasks[i].Tail = !referenced[tasks[i].BaseID]
	}

	var commVol [][]model.Bits
	if len(doc.CommVol) > 0 {
		commVol = make([][]model.Bits, len(doc.CommVol))
		for i, row := range doc.CommVol {
			r := make([]model.Bits, len(row))
			for j, v := range row {
				r[j] = model.Bits(v)
			}
			commVol[i] = r
		}
	}

	return &model.Application{
		Name:    doc.Name,
		Tasks:   tasks,
		CommVol: commVol,
	}
}

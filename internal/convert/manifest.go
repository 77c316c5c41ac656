// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sos-convert/pkg/types"
)

// Manifest is the on-disk list of conversions run by the batch command.
type Manifest struct {
	Defaults ManifestDefaults `yaml:"defaults"`
	Jobs     []ManifestJob    `yaml:"jobs"`

	// dir is the manifest directory; relative paths resolve against it.
	dir string
}

// ManifestDefaults apply to every job that does not set the field.
type ManifestDefaults struct {
	To           string `yaml:"to,omitempty"`
	All          bool   `yaml:"all,omitempty"`
	Python3ToSoS bool   `yaml:"python3_to_sos,omitempty"`
	Force        bool   `yaml:"force,omitempty"`
}

// ManifestJob is one entry of a manifest.
type ManifestJob struct {
	Source       string `yaml:"source"`
	Dest         string `yaml:"dest,omitempty"`
	To           string `yaml:"to,omitempty"`
	All          *bool  `yaml:"all,omitempty"`
	Python3ToSoS *bool  `yaml:"python3_to_sos,omitempty"`
}

// ReadManifest loads a manifest from path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, j := range m.Jobs {
		if j.Source == "" {
			return nil, fmt.Errorf("manifest job %d: source is required", i+1)
		}
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// ConvertJobs returns the manifest entries as jobs with defaults applied
// and relative paths resolved against the manifest directory.
func (m *Manifest) ConvertJobs() []Job {
	jobs := make([]Job, 0, len(m.Jobs))
	for _, mj := range m.Jobs {
		job := Job{
			Source:       m.resolve(mj.Source),
			Dest:         m.resolve(mj.Dest),
			To:           mj.To,
			Python3ToSoS: m.Defaults.Python3ToSoS,
			Force:        m.Defaults.Force,
		}
		if job.To == "" {
			job.To = m.Defaults.To
		}
		all := m.Defaults.All
		if mj.All != nil {
			all = *mj.All
		}
		if all {
			job.Variant = types.ExportAll
		}
		if mj.Python3ToSoS != nil {
			job.Python3ToSoS = *mj.Python3ToSoS
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func (m *Manifest) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

package bulkupload

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report describes one bulk upload run.
type Report struct {
	Slug       string         `yaml:"slug"`
	DocumentID string         `yaml:"document_id,omitempty"`
	Title      string         `yaml:"title,omitempty"`
	Folder     string         `yaml:"folder"`
	Found      int            `yaml:"found"`
	Uploaded   []UploadedFile `yaml:"uploaded"`
	Failed     []FailedFile   `yaml:"failed"`
	Revision   string         `yaml:"revision,omitempty"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at"`
}

// UploadedFile is a file that became a gallery reference.
type UploadedFile struct {
	File     string `yaml:"file"`
	Key      string `yaml:"key"`
	AssetRef string `yaml:"asset_ref"`
}

// FailedFile is a file whose upload failed.
type FailedFile struct {
	File  string `yaml:"file"`
	Error string `yaml:"error"`
}

// WriteYAML saves the report to path.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

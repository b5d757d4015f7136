package registry

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"queuepulse.board/internal/core/domain"
)

// FileRegistry serves queue topology from a YAML file loaded once at startup.
//
// The file keeps enumeration and metadata separate, mirroring how queues are
// declared by one team and display hints tuned by another:
//
//	queues:
//	  - id: emails
//	    processors: [send-digest, send-receipt]
//	metadata:
//	  queues:
//	    emails: {display_name: Email delivery}
//	  processors:
//	    emails/send-digest: {display_name: Digest mailer, show_run_command: true}
//
// Metadata values stay undecoded yaml nodes until an entry is resolved, so a
// misconfigured entry fails that entry alone instead of the whole file.
type FileRegistry struct {
	queues    []queueEntry
	queueMeta map[string]yaml.Node
	procMeta  map[string]yaml.Node
}

type queueEntry struct {
	ID         string   `yaml:"id"`
	Processors []string `yaml:"processors"`
}

type topologyFile struct {
	Queues   []queueEntry `yaml:"queues"`
	Metadata struct {
		Queues     map[string]yaml.Node `yaml:"queues"`
		Processors map[string]yaml.Node `yaml:"processors"`
	} `yaml:"metadata"`
}

type metadataEntry struct {
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	Hidden         bool   `yaml:"hidden"`
	ShowRunCommand bool   `yaml:"show_run_command"`
}

// NewFileRegistry loads the topology file at path.
func NewFileRegistry(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a registry from raw YAML.
func Parse(data []byte) (*FileRegistry, error) {
	var file topologyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	reg := &FileRegistry{
		queues:    file.Queues,
		queueMeta: file.Metadata.Queues,
		procMeta:  file.Metadata.Processors,
	}
	if reg.queueMeta == nil {
		reg.queueMeta = make(map[string]yaml.Node)
	}
	if reg.procMeta == nil {
		reg.procMeta = make(map[string]yaml.Node)
	}
	return reg, nil
}

// Queues returns queue IDs in file order. IDs are returned as declared,
// blanks included; visibility filtering is the assembler's job.
func (r *FileRegistry) Queues(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.queues))
	for _, q := range r.queues {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

// Processors returns the task types declared for a queue, in file order.
func (r *FileRegistry) Processors(ctx context.Context, queueID string) ([]string, error) {
	for _, q := range r.queues {
		if q.ID == queueID {
			return append([]string(nil), q.Processors...), nil
		}
	}
	return nil, nil
}

func (r *FileRegistry) ResolveQueueMetadata(ctx context.Context, queueID string) (domain.EntryMetadata, error) {
	node, ok := r.queueMeta[queueID]
	if !ok {
		return domain.EntryMetadata{}, domain.ErrMetadataNotFound
	}
	return decodeMetadata(queueID, node)
}

// ResolveProcessorMetadata resolves the entry keyed queueID/taskType. The
// slash keeps the key unambiguous for IDs containing hyphens.
func (r *FileRegistry) ResolveProcessorMetadata(ctx context.Context, queueID, taskType string) (domain.EntryMetadata, error) {
	key := queueID + "/" + taskType
	node, ok := r.procMeta[key]
	if !ok {
		return domain.EntryMetadata{}, domain.ErrMetadataNotFound
	}
	return decodeMetadata(key, node)
}

func decodeMetadata(key string, node yaml.Node) (domain.EntryMetadata, error) {
	raw, err := yaml.Marshal(&node)
	if err != nil {
		return domain.EntryMetadata{}, domain.InvalidMetadataError{Key: key, Reason: err.Error()}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields

	var entry metadataEntry
	if err := decoder.Decode(&entry); err != nil {
		return domain.EntryMetadata{}, domain.InvalidMetadataError{Key: key, Reason: err.Error()}
	}

	return domain.EntryMetadata{
		DisplayName:    entry.DisplayName,
		Description:    entry.Description,
		Hidden:         entry.Hidden,
		ShowRunCommand: entry.ShowRunCommand,
	}, nil
}

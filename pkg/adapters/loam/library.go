// Package loam serves a read-only library of flows kept as markdown
// documents, using the Loam document store.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/logicflow/internal/compiler"
	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
)

// Library implements ports.FlowStore over a Loam repository.
// Documents are parsed on every Get; writes return domain.ErrReadOnly.
type Library struct {
	Repo *loam.TypedRepository[FlowMetadata]
	mode compiler.Mode
}

// New creates a library over an existing typed repository.
func New(repo *loam.TypedRepository[FlowMetadata], mode compiler.Mode) *Library {
	return &Library{Repo: repo, mode: mode}
}

// Open initializes a read-only Loam repository at path.
func Open(path string, mode compiler.Mode) (*Library, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[FlowMetadata](repo), mode), nil
}

// Get parses the document named id into a flow.
func (l *Library) Get(ctx context.Context, id string) (*domain.Flow, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFlowNotFound, id, err)
	}

	mode := l.mode
	if doc.Data.Anchors {
		mode.SynthesizeAnchors = true
	}
	res := compiler.Parse(doc.Content, mode)

	meta := doc.Data
	flow := &domain.Flow{
		ID:          flowID(meta, doc.ID),
		Title:       meta.Title,
		Description: meta.Description,
		Graph:       *res.Graph,
		Layout:      domain.DefaultLayout(res.Graph),
	}
	if flow.Title == "" {
		flow.Title = flow.ID
	}
	flow.Graph.Title = flow.Title
	return flow, nil
}

// List returns one summary per document, ordered by id.
func (l *Library) List(ctx context.Context) ([]domain.FlowSummary, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := make([]domain.FlowSummary, 0, len(docs))
	for _, doc := range docs {
		id := flowID(doc.Data, doc.ID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: flow %q is defined in both %q and %q", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		title := doc.Data.Title
		if title == "" {
			title = id
		}
		out = append(out, domain.FlowSummary{ID: id, Title: title, Description: doc.Data.Description})
	}
	memory.SortSummaries(out)
	return out, nil
}

// Save always fails: the library is edited on disk, not through the API.
func (l *Library) Save(ctx context.Context, flow *domain.Flow) error {
	return domain.ErrReadOnly
}

// Delete always fails.
func (l *Library) Delete(ctx context.Context, id string) error {
	return domain.ErrReadOnly
}

func flowID(meta FlowMetadata, docID string) string {
	raw := meta.ID
	if raw == "" {
		raw = docID
	}
	return trimExtension(raw)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}
